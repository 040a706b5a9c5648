package inactivity

import (
	"testing"
	"time"
)

// Timer-driven tests use generous windows so slow CI machines do not flake.
const (
	testTimeout = 300 * time.Millisecond
	testLead    = 100 * time.Millisecond
	testSlack   = 2 * time.Second
)

func newTestMonitor(warnings, expiries chan struct{}) *Monitor {
	return NewMonitor(Config{
		Timeouts:       map[string]time.Duration{"admin": testTimeout},
		DefaultTimeout: testTimeout,
		WarningLead:    testLead,
		OnWarning:      func() { warnings <- struct{}{} },
		OnExpire:       func() { expiries <- struct{}{} },
	})
}

func TestTimeoutTiers(t *testing.T) {
	m := NewMonitor(Config{})

	cases := []struct {
		role string
		want time.Duration
	}{
		{"admin", DefaultAdminTimeout},
		{"Admin", DefaultAdminTimeout},
		{"EDITOR", DefaultEditorTimeout},
		{"viewer", DefaultViewerTimeout},
		{"auditor", DefaultTimeout},
		{"", DefaultTimeout},
	}
	for _, tc := range cases {
		if got := m.TimeoutFor(tc.role); got != tc.want {
			t.Fatalf("TimeoutFor(%q) = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestWarningThenExpiry(t *testing.T) {
	warnings := make(chan struct{}, 1)
	expiries := make(chan struct{}, 1)
	m := newTestMonitor(warnings, expiries)

	m.Start("admin")

	select {
	case <-warnings:
	case <-expiries:
		t.Fatalf("expired before warning")
	case <-time.After(testSlack):
		t.Fatalf("warning never fired")
	}
	if got := m.State(); got != StateWarned {
		t.Fatalf("state after warning = %d, want StateWarned", got)
	}

	select {
	case <-expiries:
	case <-time.After(testSlack):
		t.Fatalf("expiry never fired")
	}
	if got := m.State(); got != StateExpired {
		t.Fatalf("state after expiry = %d, want StateExpired", got)
	}
}

func TestTouchRestartsCountdown(t *testing.T) {
	warnings := make(chan struct{}, 4)
	expiries := make(chan struct{}, 1)
	m := newTestMonitor(warnings, expiries)

	m.Start("admin")

	// Wait for the warning, then signal activity: the warning state must
	// clear and the expiry must not fire on the original schedule.
	select {
	case <-warnings:
	case <-time.After(testSlack):
		t.Fatalf("warning never fired")
	}
	m.Touch()
	if got := m.State(); got != StateWatching {
		t.Fatalf("state after touch = %d, want StateWatching", got)
	}

	select {
	case <-expiries:
		t.Fatalf("expiry fired despite activity")
	case <-time.After(testTimeout - testLead):
	}

	// Untouched from here, the restarted countdown runs to expiry.
	select {
	case <-expiries:
	case <-time.After(testSlack):
		t.Fatalf("restarted countdown never expired")
	}
}

func TestStopCancelsTimers(t *testing.T) {
	warnings := make(chan struct{}, 1)
	expiries := make(chan struct{}, 1)
	m := newTestMonitor(warnings, expiries)

	m.Start("admin")
	m.Stop()

	if got := m.State(); got != StateIdle {
		t.Fatalf("state after stop = %d, want StateIdle", got)
	}
	select {
	case <-warnings:
		t.Fatalf("warning fired after stop")
	case <-expiries:
		t.Fatalf("expiry fired after stop")
	case <-time.After(testTimeout + testLead):
	}
}

func TestTouchIgnoredWhenIdle(t *testing.T) {
	m := NewMonitor(Config{})
	m.Touch()
	if got := m.State(); got != StateIdle {
		t.Fatalf("idle touch armed the monitor: state %d", got)
	}
}

func TestObserveFiltersNonQualifyingSignals(t *testing.T) {
	warnings := make(chan struct{}, 1)
	m := NewMonitor(Config{
		DefaultTimeout: testTimeout,
		WarningLead:    testLead,
		Signals:        []Signal{SignalClick, SignalKeyDown},
		OnWarning:      func() { warnings <- struct{}{} },
	})

	m.Start("viewer")
	select {
	case <-warnings:
	case <-time.After(testSlack):
		t.Fatalf("warning never fired")
	}

	// Pointer movement is outside the qualifying set here and must not
	// clear the warning.
	m.Observe(SignalPointerMove)
	if got := m.State(); got != StateWarned {
		t.Fatalf("non-qualifying signal changed state to %d", got)
	}

	m.Observe(SignalClick)
	if got := m.State(); got != StateWatching {
		t.Fatalf("qualifying signal did not re-arm: state %d", got)
	}
	m.Stop()
}

func TestStartSupersedesPreviousArming(t *testing.T) {
	expiries := make(chan struct{}, 2)
	m := NewMonitor(Config{
		DefaultTimeout: testTimeout,
		WarningLead:    testLead,
		OnExpire:       func() { expiries <- struct{}{} },
	})

	m.Start("viewer")
	m.Start("viewer")

	select {
	case <-expiries:
	case <-time.After(testSlack):
		t.Fatalf("expiry never fired")
	}
	// The first arming was disarmed; only one expiry may arrive.
	select {
	case <-expiries:
		t.Fatalf("superseded arming expired as well")
	case <-time.After(testTimeout + testLead):
	}
}

func TestExpiryWithoutWarningWhenLeadExceedsTimeout(t *testing.T) {
	warnings := make(chan struct{}, 1)
	expiries := make(chan struct{}, 1)
	m := NewMonitor(Config{
		DefaultTimeout: testLead,
		WarningLead:    testTimeout, // lead longer than the countdown
		OnWarning:      func() { warnings <- struct{}{} },
		OnExpire:       func() { expiries <- struct{}{} },
	})

	m.Start("viewer")
	select {
	case <-expiries:
	case <-time.After(testSlack):
		t.Fatalf("expiry never fired")
	}
	select {
	case <-warnings:
		t.Fatalf("warning fired although the lead exceeds the countdown")
	default:
	}
}
