package param

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

// Registry holds every slot registered by an application (C5) or server
// (C6) instance and implements spec.md §4.4's merge semantics: merging a
// batch of incoming values touches only the named slots, each
// independently, and never partially applies a single slot's update.
type Registry struct {
	mu    sync.Mutex
	slots map[uint64]*Slot
	order []uint64 // registration order, used by OrderedIDs and the validity scans

	metadataOnce sync.Once
	metadataJSON []byte
	metadataErr  error
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{slots: make(map[uint64]*Slot)}
}

// Register adds a slot to the registry. Registering a duplicate id panics:
// this always indicates a programming error in wiring up an application
// or server, never a runtime condition an operator could trigger.
func (r *Registry) Register(s *Slot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.slots[s.ID]; exists {
		panic(fmt.Sprintf("param: duplicate slot id %d (%s)", s.ID, s.Name))
	}
	r.slots[s.ID] = s
	r.order = append(r.order, s.ID)
}

// Slot returns the registered slot for id, or nil if none is registered.
func (r *Registry) Slot(id uint64) *Slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[id]
}

// ValueUpdate is one (id, value) pair from an incoming parameters-update
// frame.
type ValueUpdate struct {
	ID    uint64
	Value wire.Value
}

// MergeResult reports, per touched slot id, whether the merge for that
// slot succeeded and the resulting error string (empty on success).
type MergeResult struct {
	Errors map[uint64]string
}

// Merge applies a batch of incoming values to the registry per spec.md
// §4.4: unknown ids are reported as errors but never panic; a slot whose
// merge fails keeps (or gains) its error entry in the result and the
// slot's own Error(); a slot whose merge succeeds is removed from the
// result and its slot error is cleared. Slots not named in updates are
// untouched.
func (r *Registry) Merge(updates []ValueUpdate) MergeResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := MergeResult{Errors: make(map[uint64]string)}
	for _, u := range updates {
		slot, ok := r.slots[u.ID]
		if !ok {
			res.Errors[u.ID] = fmt.Sprintf("Parameter id %d is not registered", u.ID)
			continue
		}
		if err := slot.mergeOne(u.Value); err != nil {
			res.Errors[u.ID] = err.Error()
			continue
		}
	}
	return res
}

// AllParametersValid reports whether every registered mutable slot is
// currently free of an error, per spec.md §4.4's "the application can
// query whether all parameters are currently valid" requirement.
func (r *Registry) AllParametersValid() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if s := r.slots[id]; s.Error() != "" {
			return false
		}
	}
	return true
}

// InvalidSlots returns the ids and error strings of every slot currently
// carrying an error, as a map keyed by slot id.
func (r *Registry) InvalidSlots() map[uint64]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uint64]string)
	for _, id := range r.order {
		if s := r.slots[id]; s.Error() != "" {
			out[id] = s.Error()
		}
	}
	return out
}

// OrderedIDs returns every registered slot id in registration order.
func (r *Registry) OrderedIDs() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint64, len(r.order))
	copy(out, r.order)
	return out
}

// SortedIDs returns every registered slot id sorted ascending, used by
// metadata and snapshot rendering where spec.md requires a stable,
// reproducible ordering independent of registration order.
func (r *Registry) SortedIDs() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint64, 0, len(r.slots))
	for id := range r.slots {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MutableThenConstIDs returns every registered slot id sorted ascending
// within two groups: mutable slots first, then const slots, matching
// spec.md §4.5's parameters_response ordering.
func (r *Registry) MutableThenConstIDs() []uint64 {
	r.mu.Lock()
	ids := make([]uint64, 0, len(r.slots))
	for id := range r.slots {
		ids = append(ids, id)
	}
	slots := r.slots
	r.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool {
		si, sj := slots[ids[i]], slots[ids[j]]
		if si.Const != sj.Const {
			return !si.Const
		}
		return ids[i] < ids[j]
	})
	return ids
}
