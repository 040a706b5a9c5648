// Package refresh exchanges the durable refresh handle for a new access
// credential. The refresher is pure request/response and keeps no internal
// state; coordination of concurrent refreshes belongs to the transport
// pipeline.
//
// Failures are classified so callers can tell a rejected handle (fatal for
// the session, never retried) from a transport failure (retryable at the
// caller's discretion).
package refresh
