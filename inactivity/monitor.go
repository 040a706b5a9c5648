package inactivity

import (
	"strings"
	"sync"
	"time"
)

// Signal is a user-interaction kind observed by the host application.
type Signal uint8

const (
	// SignalPointerDown is a mouse-button or pen press.
	SignalPointerDown Signal = iota
	// SignalPointerMove is pointer movement.
	SignalPointerMove
	// SignalKeyDown is a key press.
	SignalKeyDown
	// SignalScroll is a scroll of any surface.
	SignalScroll
	// SignalTouchStart is a touch contact.
	SignalTouchStart
	// SignalClick is a completed click or tap.
	SignalClick
	// SignalWheel is wheel input.
	SignalWheel

	signalCount
)

// State is the monitor's lifecycle state.
type State uint8

const (
	// StateIdle means no timers are armed.
	StateIdle State = iota
	// StateWatching means timers are armed and no warning has fired.
	StateWatching
	// StateWarned means the warning fired and the expiry timer is pending.
	StateWarned
	// StateExpired is terminal for the arming: the session was force-ended.
	StateExpired
)

// Default countdown tiers. More privileged roles idle out sooner.
const (
	DefaultAdminTimeout  = 2 * time.Minute
	DefaultEditorTimeout = 3 * time.Minute
	DefaultViewerTimeout = 5 * time.Minute
	DefaultTimeout       = 3 * time.Minute
	// DefaultWarningLead is how far ahead of expiry the warning fires.
	DefaultWarningLead = 30 * time.Second
)

// Config controls timeouts, the qualifying signal set, and the hooks.
type Config struct {
	// Timeouts maps a lowercase role name to its countdown. Roles absent
	// from the map use DefaultTimeout.
	Timeouts       map[string]time.Duration
	DefaultTimeout time.Duration
	WarningLead    time.Duration

	// Signals is the qualifying interaction set. Empty means every signal
	// qualifies.
	Signals []Signal

	// OnWarning fires once per arming when the countdown enters the warning
	// window without interruption.
	OnWarning func()
	// OnExpire fires when the countdown exhausts. The hook owns the session
	// teardown; the monitor only transitions to StateExpired and disarms.
	OnExpire func()
}

// Monitor maintains the role-dependent inactivity countdown. Safe for
// concurrent use; hooks run without the monitor lock held.
type Monitor struct {
	cfg        Config
	qualifying [signalCount]bool

	mu      sync.Mutex
	state   State
	timeout time.Duration
	gen     uint64
	warn    *time.Timer
	expire  *time.Timer
}

// NewMonitor creates an idle monitor, filling zero config fields with
// defaults.
func NewMonitor(cfg Config) *Monitor {
	if cfg.Timeouts == nil {
		cfg.Timeouts = map[string]time.Duration{
			"admin":  DefaultAdminTimeout,
			"editor": DefaultEditorTimeout,
			"viewer": DefaultViewerTimeout,
		}
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}
	if cfg.WarningLead <= 0 {
		cfg.WarningLead = DefaultWarningLead
	}

	m := &Monitor{cfg: cfg}
	if len(cfg.Signals) == 0 {
		for i := range m.qualifying {
			m.qualifying[i] = true
		}
	} else {
		for _, sig := range cfg.Signals {
			if sig < signalCount {
				m.qualifying[sig] = true
			}
		}
	}
	return m
}

// TimeoutFor returns the countdown for a role. Role matching is
// case-insensitive; unknown roles use the default tier.
func (m *Monitor) TimeoutFor(role string) time.Duration {
	if t, ok := m.cfg.Timeouts[strings.ToLower(role)]; ok && t > 0 {
		return t
	}
	return m.cfg.DefaultTimeout
}

// Start arms the countdown for the given role. An already-running monitor is
// stopped first, so only one timer pair is ever pending.
func (m *Monitor) Start(role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disarmLocked()
	m.timeout = m.TimeoutFor(role)
	m.state = StateWatching
	m.armLocked()
}

// Observe reports a host interaction signal. Non-qualifying signals are
// ignored; qualifying ones re-arm the countdown.
func (m *Monitor) Observe(sig Signal) {
	if sig >= signalCount || !m.qualifying[sig] {
		return
	}
	m.Touch()
}

// Touch re-arms the countdown from now. Clears any pending warning state.
// No-op unless the monitor is watching or warned.
func (m *Monitor) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateWatching && m.state != StateWarned {
		return
	}
	m.disarmLocked()
	m.state = StateWatching
	m.armLocked()
}

// Stop cancels both timers and returns to Idle from any state. Must be called
// on logout and on teardown so no orphaned timer outlives the session.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disarmLocked()
	m.state = StateIdle
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Monitor) armLocked() {
	gen := m.gen
	if lead := m.timeout - m.cfg.WarningLead; lead > 0 {
		m.warn = time.AfterFunc(lead, func() { m.onWarnTimer(gen) })
	}
	m.expire = time.AfterFunc(m.timeout, func() { m.onExpireTimer(gen) })
}

// disarmLocked advances the generation so any timer already fired but not yet
// holding the lock becomes a no-op.
func (m *Monitor) disarmLocked() {
	m.gen++
	if m.warn != nil {
		m.warn.Stop()
		m.warn = nil
	}
	if m.expire != nil {
		m.expire.Stop()
		m.expire = nil
	}
}

func (m *Monitor) onWarnTimer(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != StateWatching {
		m.mu.Unlock()
		return
	}
	m.state = StateWarned
	cb := m.cfg.OnWarning
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (m *Monitor) onExpireTimer(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || (m.state != StateWatching && m.state != StateWarned) {
		m.mu.Unlock()
		return
	}
	m.disarmLocked()
	m.state = StateExpired
	cb := m.cfg.OnExpire
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
}
