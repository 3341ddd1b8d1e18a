package param

import "github.com/Roy2player/MSAPI-sub000/internal/wire"

// Constraints captures a mutable slot's validation rules (spec.md §4.4).
// Min/Max are only meaningful for numeric, optional-numeric, and duration
// kinds; EmptyAllowed is only meaningful for kinds that admit emptiness
// (optionals, string, timestamp, duration, table).
type Constraints struct {
	HasMin       bool
	HasMax       bool
	Min          wire.Value
	Max          wire.Value
	EmptyAllowed bool
}

// None is the zero-value constraint set: no bounds, emptiness not allowed.
// Used for kinds (bool, plain string without an explicit opt-in) that
// don't declare bounds.
var None = Constraints{}

// EnumRange builds the min/max bounds for an integer-backed enum slot per
// spec.md §4.4's table: "[Undefined+1, Max-1] unless canBeUndefined=true,
// then [Undefined, Max-1]". undefined and max are the enum's sentinel
// ordinals (Undefined is typically 0, Max is one past the last valid
// member).
func EnumRange(undefined, max int64, canBeUndefined bool) Constraints {
	lo := undefined + 1
	if canBeUndefined {
		lo = undefined
	}
	return Constraints{
		HasMin: true,
		HasMax: true,
		Min:    wire.I64(lo),
		Max:    wire.I64(max - 1),
	}
}
