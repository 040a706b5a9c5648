// Package transport wraps outbound HTTP calls with uniform credential
// attachment and a one-shot refresh-and-retry recovery for expired
// credentials.
//
// Concurrent requests that observe an authorization failure share a single
// in-flight refresh: the first 401 starts it, every later 401 awaits its
// outcome, and all callers resume with either a retried request carrying the
// new token or the forced-logout teardown. Without this discipline a server
// that rotates the refresh handle on each use would reject all but the first
// of N racing refreshes.
package transport
