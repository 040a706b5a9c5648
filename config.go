package sessionkit

import (
	"errors"
	"time"

	"github.com/verimark/sessionkit/credential"
	"github.com/verimark/sessionkit/handle"
	"github.com/verimark/sessionkit/inactivity"
	"github.com/verimark/sessionkit/refresh"
)

// Config is the controller configuration tree. Configure it before Build and
// treat it as immutable afterwards.
type Config struct {
	Token      TokenConfig
	Refresh    RefreshConfig
	Inactivity InactivityConfig
	Events     EventsConfig
	Metrics    MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls in-memory credential storage and the proactive
// near-expiry signal.
type TokenConfig struct {
	// DefaultTTL applies when neither the grant nor the token itself
	// declares a lifetime. The server-declared lifetime is authoritative
	// when present; hitting this fallback is flagged via metrics and logs.
	DefaultTTL time.Duration
	// NearExpiryWindow is the remaining-lifetime threshold below which the
	// near-expiry notice fires.
	NearExpiryWindow time.Duration
	// NearExpiryFraction positions the deferred check within the token's
	// lifetime (0 < f ≤ 1).
	NearExpiryFraction float64
	// MaxCheckDelay caps how long the deferred check may wait from the
	// moment the token is stored.
	MaxCheckDelay time.Duration
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig controls the credential-refresh exchange.
type RefreshConfig struct {
	// Endpoint receives POST {"refresh": <handle>} and answers
	// {"access": <token>}. Required.
	Endpoint string
	// Timeout bounds one refresh round-trip so a hung network cannot stall
	// the waiters queued behind the single-flight lock.
	Timeout time.Duration
	// HandleKey is the durable storage key for the refresh handle when the
	// Redis-backed store is used.
	HandleKey string
	// HandleTTL optionally expires the stored handle to match its
	// server-side lifetime. Zero stores it without expiry.
	HandleTTL time.Duration
}

/*
====================================
INACTIVITY CONFIG
====================================
*/

// InactivityConfig controls the idle-session watchdog.
type InactivityConfig struct {
	// Timeouts maps roles to countdown durations.
	Timeouts map[Role]time.Duration
	// DefaultTimeout applies to roles absent from Timeouts.
	DefaultTimeout time.Duration
	// WarningLead is how far ahead of expiry the warning fires.
	WarningLead time.Duration
	// Signals is the qualifying interaction set. Empty means all signals
	// qualify.
	Signals []Signal
}

/*
====================================
EVENTS / METRICS CONFIG
====================================
*/

// EventsConfig controls the in-process notification bus.
type EventsConfig struct {
	Enabled bool
	// Buffer is the per-subscriber channel depth.
	Buffer int64
}

// MetricsConfig controls counter collection.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			DefaultTTL:         credential.DefaultTTL,
			NearExpiryWindow:   credential.DefaultNearExpiryWindow,
			NearExpiryFraction: credential.DefaultNearExpiryFraction,
			MaxCheckDelay:      credential.DefaultMaxCheckDelay,
		},
		Refresh: RefreshConfig{
			Timeout:   refresh.DefaultTimeout,
			HandleKey: handle.DefaultRedisKey,
		},
		Inactivity: InactivityConfig{
			Timeouts: map[Role]time.Duration{
				RoleAdmin:  inactivity.DefaultAdminTimeout,
				RoleEditor: inactivity.DefaultEditorTimeout,
				RoleViewer: inactivity.DefaultViewerTimeout,
			},
			DefaultTimeout: inactivity.DefaultTimeout,
			WarningLead:    inactivity.DefaultWarningLead,
		},
		Events: EventsConfig{
			Enabled: true,
			Buffer:  16,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Inactivity.Timeouts != nil {
		out.Inactivity.Timeouts = make(map[Role]time.Duration, len(cfg.Inactivity.Timeouts))
		for role, timeout := range cfg.Inactivity.Timeouts {
			out.Inactivity.Timeouts[role] = timeout
		}
	}
	if cfg.Inactivity.Signals != nil {
		out.Inactivity.Signals = append([]Signal(nil), cfg.Inactivity.Signals...)
	}
	return out
}

// Validate rejects configurations that would break the session state machine.
func (c Config) Validate() error {
	if c.Token.DefaultTTL <= 0 {
		return errors.New("Token.DefaultTTL must be positive")
	}
	if c.Token.NearExpiryFraction <= 0 || c.Token.NearExpiryFraction > 1 {
		return errors.New("Token.NearExpiryFraction must be in (0, 1]")
	}
	if c.Token.NearExpiryWindow <= 0 {
		return errors.New("Token.NearExpiryWindow must be positive")
	}
	if c.Token.MaxCheckDelay <= 0 {
		return errors.New("Token.MaxCheckDelay must be positive")
	}
	if c.Refresh.Timeout <= 0 {
		return errors.New("Refresh.Timeout must be positive")
	}
	if c.Inactivity.DefaultTimeout <= 0 {
		return errors.New("Inactivity.DefaultTimeout must be positive")
	}
	if c.Inactivity.WarningLead <= 0 {
		return errors.New("Inactivity.WarningLead must be positive")
	}
	if c.Inactivity.WarningLead >= c.Inactivity.DefaultTimeout {
		return errors.New("Inactivity.WarningLead must be shorter than Inactivity.DefaultTimeout")
	}
	for role, timeout := range c.Inactivity.Timeouts {
		if timeout <= 0 {
			return errors.New("Inactivity.Timeouts[" + string(role) + "] must be positive")
		}
	}
	if c.Events.Enabled && c.Events.Buffer < 0 {
		return errors.New("Events.Buffer must not be negative")
	}
	return nil
}
