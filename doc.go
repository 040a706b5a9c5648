// Package sessionkit provides the client-side session and credential-lifecycle
// core for an HTTP API consumer: an in-memory access-token store with expiry
// tracking and proactive near-expiry signaling, a request pipeline that
// transparently attaches credentials and recovers from expired-credential
// failures through a single-flight refresh-and-retry protocol, and a
// role-sensitive inactivity watchdog that force-ends idle sessions after an
// advance warning.
//
// The package is the public surface. It exposes [Controller], [Builder],
// [Config], and value types (Grant, Event, MetricsSnapshot, etc.). Internal
// coordination (event dispatch, metric storage) lives under internal/ and is
// never exported. Per-concern building blocks live in their own subpackages
// (credential, refresh, transport, inactivity, handle) and are usable on their
// own.
//
// # Architecture boundaries
//
//   - The access credential lives only in memory, inside [credential.Store].
//     It is never written to durable storage.
//   - The long-lived refresh handle lives in a pluggable [handle.Store]
//     (in-memory or Redis-backed).
//   - Session state is derived: the controller is authenticated exactly when
//     the credential store holds an unexpired token. There is no separate
//     boolean flag to keep in sync.
//
// # Concurrency contract
//
// Controller methods are safe to call from multiple goroutines after
// initialization through [Builder.Build]. Concurrent requests that observe an
// authorization failure share one in-flight credential refresh; the refresh
// endpoint is never called more than once per expiry incident.
package sessionkit
