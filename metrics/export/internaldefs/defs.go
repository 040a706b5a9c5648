package internaldefs

import (
	sessionkit "github.com/verimark/sessionkit"
)

// CounterDef describes one exported counter.
type CounterDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter in export order.
var CounterDefs = []CounterDef{
	{sessionkit.MetricGrantAccepted, "sessionkit_grants_accepted_total", "Session grants ingested through Begin."},
	{sessionkit.MetricTokenTTLDefaulted, "sessionkit_token_ttl_defaulted_total", "Tokens stored without a server-declared lifetime."},
	{sessionkit.MetricTokenExpiredLazily, "sessionkit_token_expired_lazily_total", "Stale tokens discarded by the read-path expiry guard."},
	{sessionkit.MetricNearExpirySignal, "sessionkit_near_expiry_signals_total", "Emitted near-expiry notifications."},
	{sessionkit.MetricRefreshSuccess, "sessionkit_refresh_success_total", "Successful credential refreshes."},
	{sessionkit.MetricRefreshRejected, "sessionkit_refresh_rejected_total", "Refreshes the server refused."},
	{sessionkit.MetricRefreshUnavailable, "sessionkit_refresh_unavailable_total", "Transport-level refresh failures."},
	{sessionkit.MetricRefreshCoalesced, "sessionkit_refresh_coalesced_total", "Callers that shared an in-flight refresh."},
	{sessionkit.MetricRetryAfterRefresh, "sessionkit_retry_after_refresh_total", "Requests re-sent with a freshly minted token."},
	{sessionkit.MetricLogout, "sessionkit_logout_total", "Explicit logouts."},
	{sessionkit.MetricForcedLogout, "sessionkit_forced_logout_total", "Forced session teardowns."},
	{sessionkit.MetricInactivityWarning, "sessionkit_inactivity_warnings_total", "Inactivity warning emissions."},
	{sessionkit.MetricInactivityExpiry, "sessionkit_inactivity_expiry_total", "Inactivity-driven session expirations."},
}
