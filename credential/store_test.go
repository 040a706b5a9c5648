package credential

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSetTokenRoundTrip(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(Config{Now: clock.Now})

	store.SetToken("tok-abc", 900*time.Second)

	got, ok := store.Token()
	if !ok {
		t.Fatalf("expected live token")
	}
	if got != "tok-abc" {
		t.Fatalf("token changed in storage: %q", got)
	}
}

func TestAuthenticatedAcrossLifetime(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(Config{Now: clock.Now})
	store.SetToken("tok", 100*time.Second)

	if !store.Authenticated() {
		t.Fatalf("expected authenticated immediately after store")
	}

	clock.Advance(99 * time.Second)
	if !store.Authenticated() {
		t.Fatalf("expected authenticated before expiry")
	}

	clock.Advance(1 * time.Second)
	if store.Authenticated() {
		t.Fatalf("expected unauthenticated at exact expiry instant")
	}
}

func TestLazyExpiryNeverHandsOutStaleToken(t *testing.T) {
	clock := newFakeClock()
	lazyFired := 0
	store := NewStore(Config{
		Now:          clock.Now,
		OnLazyExpiry: func() { lazyFired++ },
	})
	store.SetToken("tok", 10*time.Second)

	clock.Advance(11 * time.Second)

	if _, ok := store.Token(); ok {
		t.Fatalf("stale token handed out")
	}
	if lazyFired != 1 {
		t.Fatalf("expected one lazy-expiry callback, got %d", lazyFired)
	}
	// State is cleared; a second read is a plain miss.
	if _, ok := store.Token(); ok {
		t.Fatalf("token resurrected after lazy clear")
	}
	if lazyFired != 1 {
		t.Fatalf("lazy-expiry callback fired on empty store")
	}
}

func TestDefaultTTLApplied(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(Config{Now: clock.Now})

	store.SetToken("tok", 0)

	expiresAt, ok := store.ExpiresAt()
	if !ok {
		t.Fatalf("expected stored token")
	}
	want := clock.Now().Add(DefaultTTL)
	if !expiresAt.Equal(want) {
		t.Fatalf("default ttl not applied: got %v want %v", expiresAt, want)
	}
}

func TestRemainingSecondsFloor(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(Config{Now: clock.Now})

	if got := store.RemainingSeconds(); got != 0 {
		t.Fatalf("empty store remaining = %d", got)
	}

	store.SetToken("tok", 90*time.Second+500*time.Millisecond)
	if got := store.RemainingSeconds(); got != 90 {
		t.Fatalf("remaining = %d, want floor 90", got)
	}

	clock.Advance(95 * time.Second)
	if got := store.RemainingSeconds(); got != 0 {
		t.Fatalf("remaining after expiry = %d, want 0", got)
	}
}

func TestClearIdempotent(t *testing.T) {
	store := NewStore(Config{})
	store.SetToken("tok", time.Minute)
	store.Clear()
	store.Clear()
	if _, ok := store.Token(); ok {
		t.Fatalf("token survived clear")
	}
}

func TestNearExpirySignalFires(t *testing.T) {
	signals := make(chan time.Duration, 1)
	store := NewStore(Config{
		OnNearExpiry: func(remaining time.Duration) {
			select {
			case signals <- remaining:
			default:
			}
		},
	})

	// Check is scheduled at 0.9 x ttl = 900ms; ~100ms remain, inside the window.
	store.SetToken("tok", time.Second)

	select {
	case remaining := <-signals:
		if remaining <= 0 || remaining > time.Second {
			t.Fatalf("implausible remaining lifetime %v", remaining)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("near-expiry signal never fired")
	}

	// One signal per issued token.
	select {
	case <-signals:
		t.Fatalf("near-expiry signal fired twice for one token")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNearExpirySignalCanceledByClear(t *testing.T) {
	signals := make(chan time.Duration, 1)
	store := NewStore(Config{
		OnNearExpiry: func(remaining time.Duration) { signals <- remaining },
	})

	store.SetToken("tok", 100*time.Millisecond)
	store.Clear()

	select {
	case <-signals:
		t.Fatalf("near-expiry signal fired for a cleared token")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestNearExpirySignalSupersededByNewToken(t *testing.T) {
	signals := make(chan time.Duration, 2)
	store := NewStore(Config{
		OnNearExpiry: func(remaining time.Duration) { signals <- remaining },
	})

	store.SetToken("old", 100*time.Millisecond)
	// Overwriting re-arms the check for the new token only.
	store.SetToken("new", time.Hour)

	select {
	case <-signals:
		t.Fatalf("near-expiry signal fired for a superseded token")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestNearExpiryCheckCappedForLongTokens(t *testing.T) {
	signals := make(chan time.Duration, 1)
	store := NewStore(Config{
		OnNearExpiry: func(remaining time.Duration) { signals <- remaining },
	})

	// Long-lived token: the deferred check waits the full 60s cap, so
	// nothing may fire in the near term.
	store.SetToken("tok", 15*time.Minute)

	select {
	case <-signals:
		t.Fatalf("near-expiry signal fired immediately for a long-lived token")
	case <-time.After(150 * time.Millisecond):
	}
}
