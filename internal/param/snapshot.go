package param

import (
	"strconv"

	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

// SnapshotEntry is one slot's current value and error status, as handed to
// the OnParameters hook on a parameters request and served by the admin
// introspection surface. A parameters-response frame carries the slots'
// wire values instead.
type SnapshotEntry struct {
	ID    uint64
	Name  string
	Value string
	Error string
}

// Snapshot returns every registered slot's rendered value and error
// string, sorted by id. Values are rendered through wire.Value.String()
// (or the slot's configured duration unit), never re-encoded onto the
// wire: snapshots are a read surface, not a wire frame.
func (r *Registry) Snapshot() []SnapshotEntry {
	ids := r.SortedIDs()
	out := make([]SnapshotEntry, 0, len(ids))
	for _, id := range ids {
		s := r.Slot(id)
		out = append(out, SnapshotEntry{
			ID:    s.ID,
			Name:  s.Name,
			Value: s.renderValue(),
			Error: s.Error(),
		})
	}
	return out
}

func (s *Slot) renderValue() string {
	v := s.get()
	if v.Tag() == wire.TagDuration && s.DurationUnit != Nanoseconds {
		return strconv.FormatFloat(s.DurationUnit.Render(v.Duration()), 'g', -1, 64)
	}
	return v.String()
}
