package sessionkit

import "errors"

var (
	// ErrNotAuthenticated is returned by operations that require a live session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrControllerClosed is returned after Close has torn the controller down.
	ErrControllerClosed = errors.New("controller closed")
	// ErrGrantInvalid is returned by Begin when the grant carries no access token.
	ErrGrantInvalid = errors.New("invalid session grant")
	// ErrEventsDisabled is returned by subscription helpers when the event bus
	// was disabled through configuration.
	ErrEventsDisabled = errors.New("event bus disabled")
)
