// Package app implements the standard protocol's application lifecycle
// (spec.md C5): the Paused/Running state machine, reserved-cipher control
// dispatch, and the default hook behaviors every Application starts with.
package app

// State is the application's two-state lifecycle.
type State int32

const (
	Paused State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "Running"
	}
	return "Paused"
}
