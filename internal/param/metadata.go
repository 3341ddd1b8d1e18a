package param

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

// orderedObject renders as a JSON object whose keys appear in exactly the
// order they were added. Plain map[string]any marshaling sorts keys by
// UTF-8 byte order, which disagrees with numeric ascending order once ids
// have different digit counts (e.g. "10" sorts before "9"); spec.md §4.4
// requires numeric ascending, so every id-keyed object in the metadata
// document is built through this type instead.
type orderedObject struct {
	keys   []string
	values []any
}

func newOrderedObject() *orderedObject { return &orderedObject{} }

func (o *orderedObject) add(key string, value any) {
	o.keys = append(o.keys, key)
	o.values = append(o.values, value)
}

func (o *orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ColumnMetadata is the JSON shape of one table column inside a
// table-kind slot's "columns" entry.
type ColumnMetadata struct {
	Type     string `json:"type"`
	Metadata string `json:"metadata,omitempty"`
}

// SlotMetadata is the JSON shape of one registered slot's metadata entry.
// Field order is spec.md §4.4's fixed order: name, type, then the
// optional fields min, max, canBeEmpty, durationType,
// stringInterpretations, columns.
type SlotMetadata struct {
	Name                  string         `json:"name"`
	Type                  string         `json:"type"`
	Min                   *string        `json:"min,omitempty"`
	Max                   *string        `json:"max,omitempty"`
	CanBeEmpty            bool           `json:"canBeEmpty,omitempty"`
	DurationType          string         `json:"durationType,omitempty"`
	StringInterpretations *orderedObject `json:"stringInterpretations,omitempty"`
	Columns               *orderedObject `json:"columns,omitempty"`
}

// MetadataDocument is the metadata_response body, spec.md §4.4's two-bucket
// shape: every slot split into "mutable" and "const", each an object keyed
// by slot id (decimal string, numeric ascending).
type MetadataDocument struct {
	Mutable *orderedObject `json:"mutable"`
	Const   *orderedObject `json:"const"`
}

// Metadata builds the full metadata document, grouping slots into mutable
// and const buckets in numeric-ascending id order within each bucket.
func (r *Registry) Metadata() MetadataDocument {
	ids := r.MutableThenConstIDs()
	mutable := newOrderedObject()
	constBucket := newOrderedObject()
	for _, id := range ids {
		s := r.Slot(id)
		key := strconv.FormatUint(id, 10)
		if s.Const {
			constBucket.add(key, s.metadata())
		} else {
			mutable.add(key, s.metadata())
		}
	}
	return MetadataDocument{Mutable: mutable, Const: constBucket}
}

// MetadataJSON renders the metadata document as indented JSON, computed
// once per registry lifetime and cached thereafter (spec.md §4.4: "once
// per application lifetime (cached)"). Safe to call concurrently.
func (r *Registry) MetadataJSON() ([]byte, error) {
	r.metadataOnce.Do(func() {
		r.metadataJSON, r.metadataErr = json.MarshalIndent(r.Metadata(), "", "  ")
	})
	return r.metadataJSON, r.metadataErr
}

func (s *Slot) metadata() SlotMetadata {
	m := SlotMetadata{
		Name:       s.Name,
		Type:       s.Kind.String(),
		CanBeEmpty: s.Constraints.EmptyAllowed,
	}
	if s.Kind == wire.TagDuration {
		m.DurationType = s.DurationUnit.String()
	}
	if s.Constraints.HasMin {
		v := numericString(s.Kind, s.Constraints.Min)
		m.Min = &v
	}
	if s.Constraints.HasMax {
		v := numericString(s.Kind, s.Constraints.Max)
		m.Max = &v
	}
	if len(s.StringInterpretations) > 0 {
		keys := make([]int64, 0, len(s.StringInterpretations))
		for k := range s.StringInterpretations {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		si := newOrderedObject()
		for _, k := range keys {
			si.add(numericString(wire.TagI64, wire.I64(k)), s.StringInterpretations[k])
		}
		m.StringInterpretations = si
	}
	if s.Kind == wire.TagTableBlob && len(s.TableColumns) > 0 {
		cols := make([]TableColumnMeta, len(s.TableColumns))
		copy(cols, s.TableColumns)
		sort.Slice(cols, func(i, j int) bool { return cols[i].ID < cols[j].ID })
		cm := newOrderedObject()
		for _, c := range cols {
			cm.add(strconv.FormatUint(c.ID, 10), ColumnMetadata{Type: c.Type.String(), Metadata: c.Metadata})
		}
		m.Columns = cm
	}
	return m
}
