package sessionkit

import (
	internalmetrics "github.com/verimark/sessionkit/internal/metrics"
)

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricGrantAccepted counts session grants ingested through Begin.
	MetricGrantAccepted = internalmetrics.MetricGrantAccepted
	// MetricTokenTTLDefaulted counts tokens stored without a server-declared
	// lifetime.
	MetricTokenTTLDefaulted = internalmetrics.MetricTokenTTLDefaulted
	// MetricTokenExpiredLazily counts stale tokens discarded on read.
	MetricTokenExpiredLazily = internalmetrics.MetricTokenExpiredLazily
	// MetricNearExpirySignal counts emitted near-expiry notifications.
	MetricNearExpirySignal = internalmetrics.MetricNearExpirySignal
	// MetricRefreshSuccess counts successful credential refreshes.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshRejected counts refreshes the server refused.
	MetricRefreshRejected = internalmetrics.MetricRefreshRejected
	// MetricRefreshUnavailable counts transport-level refresh failures.
	MetricRefreshUnavailable = internalmetrics.MetricRefreshUnavailable
	// MetricRefreshCoalesced counts callers that shared an in-flight refresh.
	MetricRefreshCoalesced = internalmetrics.MetricRefreshCoalesced
	// MetricRetryAfterRefresh counts requests re-sent with a fresh token.
	MetricRetryAfterRefresh = internalmetrics.MetricRetryAfterRefresh
	// MetricLogout counts explicit logouts.
	MetricLogout = internalmetrics.MetricLogout
	// MetricForcedLogout counts forced session teardowns.
	MetricForcedLogout = internalmetrics.MetricForcedLogout
	// MetricInactivityWarning counts inactivity warnings.
	MetricInactivityWarning = internalmetrics.MetricInactivityWarning
	// MetricInactivityExpiry counts inactivity-driven expirations.
	MetricInactivityExpiry = internalmetrics.MetricInactivityExpiry
)

// Metrics holds atomic counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance. When cfg.Enabled is false, all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{Enabled: cfg.Enabled})
}
