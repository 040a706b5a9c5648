package credential

import (
	"sync"
	"time"
)

const (
	// DefaultTTL is applied when a caller stores a token without a
	// server-declared lifetime.
	DefaultTTL = 15 * time.Minute
	// DefaultNearExpiryWindow is the remaining-lifetime threshold below which
	// the near-expiry notice fires.
	DefaultNearExpiryWindow = 60 * time.Second
	// DefaultNearExpiryFraction positions the deferred check within the
	// token's lifetime.
	DefaultNearExpiryFraction = 0.9
	// DefaultMaxCheckDelay caps how long the deferred check may wait from the
	// moment the token is stored.
	DefaultMaxCheckDelay = 60 * time.Second
)

// Config controls store defaults and hooks. The zero value is usable.
type Config struct {
	DefaultTTL         time.Duration
	NearExpiryWindow   time.Duration
	NearExpiryFraction float64
	MaxCheckDelay      time.Duration

	// OnNearExpiry receives the remaining lifetime when the deferred check
	// fires inside the near-expiry window. At most one call per stored token.
	OnNearExpiry func(remaining time.Duration)
	// OnLazyExpiry fires when the read path discards a stale token.
	OnLazyExpiry func()

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Store holds the current access token and its absolute expiry instant.
// Safe for concurrent use. The token exists only in process memory.
type Store struct {
	cfg Config

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	gen       uint64
	check     *time.Timer
}

// NewStore creates a store, filling zero config fields with defaults.
func NewStore(cfg Config) *Store {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTL
	}
	if cfg.NearExpiryWindow <= 0 {
		cfg.NearExpiryWindow = DefaultNearExpiryWindow
	}
	if cfg.NearExpiryFraction <= 0 || cfg.NearExpiryFraction > 1 {
		cfg.NearExpiryFraction = DefaultNearExpiryFraction
	}
	if cfg.MaxCheckDelay <= 0 {
		cfg.MaxCheckDelay = DefaultMaxCheckDelay
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Store{cfg: cfg}
}

// SetToken stores a token expiring ttl from now. A non-positive ttl falls back
// to the configured default; callers that know the server-declared lifetime
// must pass it. Overwrites any previous token and re-arms the deferred
// near-expiry check.
func (s *Store) SetToken(token string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.expiresAt = s.cfg.Now().Add(ttl)
	s.gen++
	if s.check != nil {
		s.check.Stop()
		s.check = nil
	}
	if s.cfg.OnNearExpiry == nil {
		return
	}

	delay := time.Duration(float64(ttl) * s.cfg.NearExpiryFraction)
	if delay > s.cfg.MaxCheckDelay {
		delay = s.cfg.MaxCheckDelay
	}
	gen := s.gen
	s.check = time.AfterFunc(delay, func() { s.nearExpiryCheck(gen) })
}

// nearExpiryCheck fires the near-expiry notice when the token from the arming
// generation is still current and inside the window. Best effort only; the
// authoritative guard is the lazy check in Token.
func (s *Store) nearExpiryCheck(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.token == "" {
		s.mu.Unlock()
		return
	}
	remaining := s.expiresAt.Sub(s.cfg.Now())
	cb := s.cfg.OnNearExpiry
	s.mu.Unlock()

	if remaining > 0 && remaining < s.cfg.NearExpiryWindow && cb != nil {
		cb(remaining)
	}
}

// Token returns the current token when its expiry is still in the future.
// A stale token is cleared on the spot and never returned.
func (s *Store) Token() (string, bool) {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return "", false
	}
	if !s.cfg.Now().Before(s.expiresAt) {
		s.clearLocked()
		cb := s.cfg.OnLazyExpiry
		s.mu.Unlock()
		if cb != nil {
			cb()
		}
		return "", false
	}
	token := s.token
	s.mu.Unlock()
	return token, true
}

// Authenticated reports whether the store holds a live token.
func (s *Store) Authenticated() bool {
	_, ok := s.Token()
	return ok
}

// RemainingSeconds returns the whole seconds of lifetime left, floored at zero.
func (s *Store) RemainingSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return 0
	}
	remaining := s.expiresAt.Sub(s.cfg.Now())
	if remaining <= 0 {
		return 0
	}
	return int(remaining / time.Second)
}

// ExpiresAt returns the absolute expiry instant of the held token.
func (s *Store) ExpiresAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return time.Time{}, false
	}
	return s.expiresAt, true
}

// Clear discards the token immediately. Idempotent.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	s.token = ""
	s.expiresAt = time.Time{}
	s.gen++
	if s.check != nil {
		s.check.Stop()
		s.check = nil
	}
}
