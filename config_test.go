package sessionkit

import (
	"testing"
	"time"

	"github.com/verimark/sessionkit/credential"
	"github.com/verimark/sessionkit/inactivity"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Token.DefaultTTL != credential.DefaultTTL {
		t.Fatalf("default ttl = %v, want %v", cfg.Token.DefaultTTL, credential.DefaultTTL)
	}
	if got := cfg.Inactivity.Timeouts[RoleAdmin]; got != inactivity.DefaultAdminTimeout {
		t.Fatalf("admin timeout = %v, want %v", got, inactivity.DefaultAdminTimeout)
	}
	if !cfg.Events.Enabled || !cfg.Metrics.Enabled {
		t.Fatalf("events/metrics not enabled by default")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero default ttl", func(c *Config) { c.Token.DefaultTTL = 0 }},
		{"fraction zero", func(c *Config) { c.Token.NearExpiryFraction = 0 }},
		{"fraction above one", func(c *Config) { c.Token.NearExpiryFraction = 1.5 }},
		{"zero near-expiry window", func(c *Config) { c.Token.NearExpiryWindow = 0 }},
		{"zero check delay cap", func(c *Config) { c.Token.MaxCheckDelay = 0 }},
		{"zero refresh timeout", func(c *Config) { c.Refresh.Timeout = 0 }},
		{"zero inactivity default", func(c *Config) { c.Inactivity.DefaultTimeout = 0 }},
		{"zero warning lead", func(c *Config) { c.Inactivity.WarningLead = 0 }},
		{"lead not shorter than timeout", func(c *Config) {
			c.Inactivity.DefaultTimeout = time.Minute
			c.Inactivity.WarningLead = time.Minute
		}},
		{"non-positive role timeout", func(c *Config) {
			c.Inactivity.Timeouts = map[Role]time.Duration{RoleAdmin: 0}
		}},
		{"negative event buffer", func(c *Config) { c.Events.Buffer = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestFractionOfOneIsAllowed(t *testing.T) {
	cfg := defaultConfig()
	cfg.Token.NearExpiryFraction = 1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("fraction 1 rejected: %v", err)
	}
}

func TestCloneConfigIsolatesCallerState(t *testing.T) {
	original := defaultConfig()
	original.Inactivity.Signals = []Signal{SignalClick}

	clone := cloneConfig(original)
	clone.Inactivity.Timeouts[RoleAdmin] = time.Second
	clone.Inactivity.Signals[0] = SignalWheel

	if original.Inactivity.Timeouts[RoleAdmin] == time.Second {
		t.Fatalf("clone shares the timeout map")
	}
	if original.Inactivity.Signals[0] != SignalClick {
		t.Fatalf("clone shares the signal slice")
	}
}
