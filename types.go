package sessionkit

import (
	"strings"
	"time"

	"github.com/verimark/sessionkit/inactivity"
	internalevents "github.com/verimark/sessionkit/internal/events"
)

// Role parameterizes the inactivity countdown. It is not otherwise
// interpreted by this subsystem.
type Role string

const (
	// RoleAdmin idles out fastest.
	RoleAdmin Role = "admin"
	// RoleEditor uses the middle tier.
	RoleEditor Role = "editor"
	// RoleViewer uses the longest tier.
	RoleViewer Role = "viewer"
)

// ParseRole normalizes a role string. Unknown values are preserved
// (lowercased) and fall into the default inactivity tier.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// Grant is the outcome of an externally performed login, ingested through
// [Controller.Begin]. The login call itself is owned by the host application;
// this core only stores the results and starts the watchdog.
type Grant struct {
	// AccessToken is the short-lived bearer credential. Required.
	AccessToken string
	// RefreshHandle is the long-lived exchange value. Optional; sessions
	// without one cannot recover from credential expiry.
	RefreshHandle string
	// Role selects the inactivity tier.
	Role Role
	// ExpiresIn is the server-declared access-token lifetime. When zero, the
	// lifetime is derived from the token's exp claim; if that is absent too,
	// the configured default applies and the fallback is flagged.
	ExpiresIn time.Duration
}

// Reason explains a session teardown.
type Reason string

const (
	// ReasonUserLogout is an explicit logout.
	ReasonUserLogout Reason = "user_logout"
	// ReasonSessionExpired is a failed credential refresh.
	ReasonSessionExpired Reason = "session_expired"
	// ReasonInactivity is an exhausted inactivity countdown.
	ReasonInactivity Reason = "inactivity"
)

// Navigator is the host's "go to the login surface" signal, invoked on every
// session teardown with the reason. The host decides what navigation means.
type Navigator func(reason Reason)

// Event is a session lifecycle notification delivered over the event bus.
type Event = internalevents.Event

// Topics re-exported for subscription through [Controller.Events].
const (
	TopicTokenNearingExpiry = internalevents.TopicTokenNearingExpiry
	TopicInactivityWarning  = internalevents.TopicInactivityWarning
	TopicLoggedOut          = internalevents.TopicLoggedOut
)

// Signal re-exports the inactivity interaction kinds for host wiring.
type Signal = inactivity.Signal

const (
	SignalPointerDown = inactivity.SignalPointerDown
	SignalPointerMove = inactivity.SignalPointerMove
	SignalKeyDown     = inactivity.SignalKeyDown
	SignalScroll      = inactivity.SignalScroll
	SignalTouchStart  = inactivity.SignalTouchStart
	SignalClick       = inactivity.SignalClick
	SignalWheel       = inactivity.SignalWheel
)
