package sessionkit

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/verimark/sessionkit/credential"
	"github.com/verimark/sessionkit/handle"
	"github.com/verimark/sessionkit/inactivity"
	internalevents "github.com/verimark/sessionkit/internal/events"
	internalmetrics "github.com/verimark/sessionkit/internal/metrics"
	"github.com/verimark/sessionkit/refresh"
	"github.com/verimark/sessionkit/transport"
)

// Controller is the session composition root. It owns the credential store,
// the refresh pipeline and the inactivity watchdog, and exposes the lifecycle
// operations consumed by the rest of the application.
//
// Construct exactly one Controller per running application instance, at
// startup, through [Builder.Build], and pass it by reference to whatever
// needs it. The access credential lives only inside the controller's
// in-memory store and dies with the process.
type Controller struct {
	config    Config
	logger    watermill.LoggerAdapter
	creds     *credential.Store
	handles   handle.Store
	refresher *refresh.Refresher
	pipeline  *transport.Pipeline
	monitor   *inactivity.Monitor
	bus       *internalevents.Bus
	metrics   *internalmetrics.Metrics
	navigate  Navigator
	client    *http.Client

	mu      sync.Mutex
	role    Role
	hasRole bool
	closed  bool
}

// Begin ingests the outcome of an externally performed login: it stores the
// access credential, persists the refresh handle, records the role and arms
// the inactivity watchdog. Beginning while a session is active replaces it;
// the previous watchdog arming is stopped first.
//
// The server-declared token lifetime is authoritative. When the grant
// declares none, the lifetime is derived from the token's exp claim; when
// that is absent too, the configured default applies and the fallback is
// flagged rather than silently adopted.
func (c *Controller) Begin(ctx context.Context, grant Grant) error {
	if grant.AccessToken == "" {
		return ErrGrantInvalid
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	c.mu.Unlock()

	ttl := grant.ExpiresIn
	if ttl <= 0 {
		ttl = refresh.DeclaredLifetime(grant.AccessToken)
	}
	if ttl <= 0 {
		c.metrics.Inc(MetricTokenTTLDefaulted)
		c.logger.Info("session grant declared no token lifetime, applying default", watermill.LogFields{
			"default_ttl": c.config.Token.DefaultTTL.String(),
		})
	}
	c.creds.SetToken(grant.AccessToken, ttl)

	if grant.RefreshHandle != "" {
		if err := c.handles.Save(ctx, grant.RefreshHandle); err != nil {
			c.creds.Clear()
			return fmt.Errorf("save refresh handle: %w", err)
		}
	}

	role := ParseRole(string(grant.Role))
	c.mu.Lock()
	c.role = role
	c.hasRole = true
	c.mu.Unlock()

	c.monitor.Start(string(role))
	c.metrics.Inc(MetricGrantAccepted)
	return nil
}

// Logout ends the session explicitly: watchdog stopped, credential and
// refresh handle cleared, host notified and navigated away.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	role := c.role
	c.role = ""
	c.hasRole = false
	c.mu.Unlock()

	c.monitor.Stop()
	c.creds.Clear()
	err := c.handles.Clear(ctx)

	c.metrics.Inc(MetricLogout)
	c.publish(internalevents.TopicLoggedOut, Event{
		Reason: string(ReasonUserLogout),
		Role:   string(role),
	})
	if c.navigate != nil {
		c.navigate(ReasonUserLogout)
	}
	return err
}

// forceLogout tears the session down after a failed refresh or an exhausted
// inactivity countdown. The notification and navigation signals fire only
// when a session was actually active, so racing triggers collapse into one
// user-visible logout.
func (c *Controller) forceLogout(reason Reason) {
	c.mu.Lock()
	active := c.hasRole
	role := c.role
	c.role = ""
	c.hasRole = false
	c.mu.Unlock()

	c.monitor.Stop()
	c.creds.Clear()
	if err := c.handles.Clear(context.Background()); err != nil {
		c.logger.Error("clear refresh handle", err, watermill.LogFields{"reason": string(reason)})
	}

	if !active {
		return
	}
	c.metrics.Inc(MetricForcedLogout)
	c.publish(internalevents.TopicLoggedOut, Event{
		Reason: string(reason),
		Role:   string(role),
	})
	if c.navigate != nil {
		c.navigate(reason)
	}
}

// IsAuthenticated reports whether an unexpired access credential is held.
// This is derived state: there is no separate flag to fall out of sync.
func (c *Controller) IsAuthenticated() bool {
	return c.creds.Authenticated()
}

// CurrentRole returns the authenticated identity's role, when a session is
// active.
func (c *Controller) CurrentRole() (Role, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasRole {
		return "", false
	}
	return c.role, true
}

// AccessToken returns the raw bearer credential for transports that cannot
// route through [Controller.Client], e.g. websocket handshakes. Returns
// ErrNotAuthenticated when no unexpired credential is held.
func (c *Controller) AccessToken() (string, error) {
	token, ok := c.creds.Token()
	if !ok {
		return "", ErrNotAuthenticated
	}
	return token, nil
}

// RemainingSeconds returns the whole seconds until credential expiry, floored
// at zero.
func (c *Controller) RemainingSeconds() int {
	return c.creds.RemainingSeconds()
}

// Decorate attaches the current credential and a request ID to an outbound
// request. Calls made through [Controller.Client] are decorated automatically.
func (c *Controller) Decorate(req *http.Request) *http.Request {
	return c.pipeline.Decorate(req)
}

// Client returns an http.Client routed through the session pipeline:
// credential attachment plus single-flight refresh-and-retry on expiry.
func (c *Controller) Client() *http.Client {
	return c.client
}

// Observe reports a user-interaction signal to the inactivity watchdog.
func (c *Controller) Observe(sig Signal) {
	c.monitor.Observe(sig)
}

// Touch re-arms the inactivity countdown directly, for hosts that pre-filter
// their own interaction events.
func (c *Controller) Touch() {
	c.monitor.Touch()
}

// Events subscribes to one notification topic. The channel closes when ctx
// is canceled or the controller is closed.
func (c *Controller) Events(ctx context.Context, topic string) (<-chan Event, error) {
	if c.bus == nil {
		return nil, ErrEventsDisabled
	}
	return c.bus.Subscribe(ctx, topic)
}

// NearExpiryEvents subscribes to "session about to expire" notices.
func (c *Controller) NearExpiryEvents(ctx context.Context) (<-chan Event, error) {
	return c.Events(ctx, internalevents.TopicTokenNearingExpiry)
}

// InactivityWarnings subscribes to pre-expiry inactivity warnings.
func (c *Controller) InactivityWarnings(ctx context.Context) (<-chan Event, error) {
	return c.Events(ctx, internalevents.TopicInactivityWarning)
}

// LogoutEvents subscribes to session teardown notifications, explicit and
// forced. The Reason field distinguishes the trigger.
func (c *Controller) LogoutEvents(ctx context.Context) (<-chan Event, error) {
	return c.Events(ctx, internalevents.TopicLoggedOut)
}

// MetricsSnapshot returns a deep copy of all counters.
func (c *Controller) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// Close releases timers and the event bus. The in-memory credential is
// discarded; the durable refresh handle is left in place, since Close is
// process teardown, not logout.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.monitor.Stop()
	c.creds.Clear()
	if c.bus != nil {
		return c.bus.Close()
	}
	return nil
}

func (c *Controller) publish(topic string, ev Event) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(topic, ev)
}

func (c *Controller) onNearExpiry(remaining time.Duration) {
	c.mu.Lock()
	role := c.role
	c.mu.Unlock()

	c.metrics.Inc(MetricNearExpirySignal)
	c.publish(internalevents.TopicTokenNearingExpiry, Event{
		Role:             string(role),
		RemainingSeconds: int(remaining / time.Second),
	})
}

func (c *Controller) onInactivityWarning() {
	c.mu.Lock()
	role := c.role
	c.mu.Unlock()

	c.metrics.Inc(MetricInactivityWarning)
	c.publish(internalevents.TopicInactivityWarning, Event{
		Role:             string(role),
		RemainingSeconds: int(c.config.Inactivity.WarningLead / time.Second),
	})
}
