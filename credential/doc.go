// Package credential holds the short-lived access credential in memory only.
//
// The store is the single source of truth for authentication state: a session
// is authenticated exactly when the store returns a live token. The read path
// performs a lazy expiry check, so a stale token is never handed out even if
// the proactive near-expiry timer has not fired yet. The token is never
// written to durable storage.
package credential
