// Package param implements the standard protocol's parameter registry
// (spec.md C4): typed slots backed by accessor closures into application
// state, constrained merge, metadata JSON generation, and parameter
// snapshots.
package param

import (
	"fmt"

	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

// Slot is one registered piece of application state: an id, a name, a
// typed accessor pair into the application's own field, and — for mutable
// slots — constraints and an error string. Per the design notes in
// spec.md §9, the slot never holds a raw pointer into the application
// struct; it holds getter/setter closures the application supplies at
// registration, which is the idiomatic replacement for the original's
// pointer-to-field parameters.
type Slot struct {
	ID    uint64
	Name  string
	Kind  wire.Tag // logical kind: column/opt pairs collapsed via LogicalTag
	Const bool

	get func() wire.Value
	set func(wire.Value)

	Constraints Constraints

	// DurationUnit only applies when Kind == wire.TagDuration.
	DurationUnit DurationUnit

	// StringInterpretations renders an integer-backed enum's ordinal
	// values as names in the metadata JSON ("stringInterpretations").
	StringInterpretations map[int64]string

	// TableColumns carries per-column metadata for a table-kind slot,
	// surfaced under the metadata JSON's "columns" field.
	TableColumns []TableColumnMeta

	err string
}

// TableColumnMeta mirrors one table.Column's identity for metadata
// rendering without internal/param importing internal/table (which would
// create a cycle, since tables carry wire.Value cells).
type TableColumnMeta struct {
	ID       uint64
	Type     wire.Tag
	Metadata string
}

// NewSlot constructs a mutable slot. get must always return a value whose
// Tag().LogicalTag() equals kind.
func NewSlot(id uint64, name string, kind wire.Tag, get func() wire.Value, set func(wire.Value), c Constraints) *Slot {
	return &Slot{ID: id, Name: name, Kind: kind, get: get, set: set, Constraints: c}
}

// NewConstSlot constructs a read-only slot: it appears in metadata and
// snapshots but Merge always refuses it (spec.md §3 "merging them is
// refused").
func NewConstSlot(id uint64, name string, kind wire.Tag, get func() wire.Value) *Slot {
	return &Slot{ID: id, Name: name, Kind: kind, Const: true, get: get}
}

// Value returns the slot's current value by invoking its getter.
func (s *Slot) Value() wire.Value { return s.get() }

// Error returns the slot's current error string, empty if the slot is
// valid.
func (s *Slot) Error() string { return s.err }

// SetCustomError lets application code outside the normal merge path flag
// a slot as invalid (e.g. a cross-field business rule). Per spec.md §4.4,
// custom errors are concatenated onto the slot's error string and are
// cleared only by a subsequent successful merge.
func (s *Slot) SetCustomError(msg string) {
	s.appendError(msg)
}

func (s *Slot) appendError(msg string) {
	if s.err == "" {
		s.err = msg
		return
	}
	s.err = s.err + "; " + msg
}

func (s *Slot) clearError() { s.err = "" }

// mergeOne applies a single incoming value to the slot per spec.md §4.4's
// merge algorithm. It never touches other slots; the slot's own error
// string is the only error record, which Registry reads back via Error().
func (s *Slot) mergeOne(incoming wire.Value) error {
	if s.Const {
		return fmt.Errorf("parameter %s(%d) is const and cannot be modified", s.Name, s.ID)
	}
	if incoming.Tag().LogicalTag() != s.Kind {
		msg := fmt.Sprintf("Parameter %s(%d) has incorrect type, update is skipped", s.Name, s.ID)
		s.appendError(msg)
		return fmt.Errorf("%s", msg)
	}

	current := s.get()
	if current.Equal(incoming) {
		// Idempotent merge: no mutation, error status unchanged either way.
		if s.err != "" {
			return fmt.Errorf("%s", s.err)
		}
		return nil
	}

	if msg, ok := s.violatesConstraints(incoming); ok {
		s.appendError(msg)
		s.set(incoming)
		return fmt.Errorf("%s", msg)
	}

	s.set(incoming)
	s.clearError()
	return nil
}

// violatesConstraints checks incoming against the slot's declared
// constraints, returning the spec.md-worded error message and true if a
// rule is broken.
func (s *Slot) violatesConstraints(incoming wire.Value) (string, bool) {
	if s.Kind.IsOptional() {
		if !incoming.Present() {
			if !s.Constraints.EmptyAllowed {
				return fmt.Sprintf("Parameter %s(%d) is empty and empty is not allowed", s.Name, s.ID), true
			}
			return "", false
		}
	}
	switch s.Kind {
	case wire.TagStr:
		if incoming.Str() == "" && !s.Constraints.EmptyAllowed {
			return fmt.Sprintf("Parameter %s(%d) is empty and empty is not allowed", s.Name, s.ID), true
		}
		return "", false
	case wire.TagTimestamp:
		if incoming.Timestamp().UnixNano() == 0 && !s.Constraints.EmptyAllowed {
			return fmt.Sprintf("Parameter %s(%d) is empty and empty is not allowed", s.Name, s.ID), true
		}
		return "", false
	case wire.TagTableBlob:
		return "", false
	}

	if s.Constraints.HasMin && belowMin(s.Kind, incoming, s.Constraints.Min) {
		return fmt.Sprintf("Parameter %s(%d) is less than min value: %s < %s",
			s.Name, s.ID, numericString(s.Kind, incoming), numericString(s.Kind, s.Constraints.Min)), true
	}
	if s.Constraints.HasMax && aboveMax(s.Kind, incoming, s.Constraints.Max) {
		return fmt.Sprintf("Parameter %s(%d) is greater than max value: %s > %s",
			s.Name, s.ID, numericString(s.Kind, incoming), numericString(s.Kind, s.Constraints.Max)), true
	}
	return "", false
}
