// Package inactivity watches user-interaction signals and force-ends idle
// sessions after a role-dependent countdown, with a 30-second advance warning.
//
// The monitor is a four-state machine (Idle, Watching, Warned, Expired).
// Every qualifying interaction re-arms both timers; a generation counter
// makes stale timer fires after a re-arm or Stop harmless. At most one timer
// pair is ever armed: starting an active monitor stops the previous arming
// first.
package inactivity
