// Package events carries session lifecycle notifications over an in-process
// Watermill pub/sub. The root package exposes typed subscription helpers; the
// host's UI layer decides how to render the messages.
package events
