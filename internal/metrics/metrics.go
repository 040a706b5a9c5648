package metrics

import "sync/atomic"

// MetricID identifies a single counter slot.
type MetricID uint16

const (
	// MetricGrantAccepted counts session grants ingested through Begin.
	MetricGrantAccepted MetricID = iota
	// MetricTokenTTLDefaulted counts tokens stored without a server-declared
	// lifetime, for which the configured default was applied.
	MetricTokenTTLDefaulted
	// MetricTokenExpiredLazily counts stale tokens discarded by the read-path
	// expiry guard.
	MetricTokenExpiredLazily
	// MetricNearExpirySignal counts emitted near-expiry notifications.
	MetricNearExpirySignal
	// MetricRefreshSuccess counts successful credential refreshes.
	MetricRefreshSuccess
	// MetricRefreshRejected counts refreshes the server refused.
	MetricRefreshRejected
	// MetricRefreshUnavailable counts refreshes that failed at the transport level.
	MetricRefreshUnavailable
	// MetricRefreshCoalesced counts callers that joined an in-flight refresh
	// instead of starting their own.
	MetricRefreshCoalesced
	// MetricRetryAfterRefresh counts requests re-sent with a freshly minted token.
	MetricRetryAfterRefresh
	// MetricLogout counts explicit logouts.
	MetricLogout
	// MetricForcedLogout counts sessions torn down by refresh failure or
	// inactivity expiry.
	MetricForcedLogout
	// MetricInactivityWarning counts inactivity warning emissions.
	MetricInactivityWarning
	// MetricInactivityExpiry counts inactivity-driven session expirations.
	MetricInactivityExpiry

	// MetricIDCount is the number of defined counters.
	MetricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config controls metric collection.
type Config struct {
	Enabled bool
}

// Metrics holds atomic counters. When disabled, all operations are no-ops.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]paddedCounter
}

// New creates a Metrics instance.
func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments a counter by one.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Get returns the current value of a counter.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot is a point-in-time deep copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies every counter value.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snap
}
