package param

import (
	"encoding/json"
	"testing"

	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

// TestMergeAboveMaxRejectedAndStored exercises S3 from spec.md §8: an
// out-of-range update is still stored, and the slot records the
// "X > max" style error, but AllParametersValid reports false.
func TestMergeAboveMaxRejectedAndStored(t *testing.T) {
	var current int64 = 1000
	reg := NewRegistry()
	slot := NewSlot(7, "Threshold", wire.TagI64,
		func() wire.Value { return wire.I64(current) },
		func(v wire.Value) { current = v.I64() },
		Constraints{HasMin: true, Min: wire.I64(0), HasMax: true, Max: wire.I64(6000)},
	)
	reg.Register(slot)

	res := reg.Merge([]ValueUpdate{{ID: 7, Value: wire.I64(6790004)}})
	if _, bad := res.Errors[7]; !bad {
		t.Fatalf("expected merge error for out-of-range update")
	}
	if current != 6790004 {
		t.Fatalf("expected out-of-range value to still be stored, got %d", current)
	}
	if reg.AllParametersValid() {
		t.Fatalf("expected AllParametersValid to be false after a constraint violation")
	}
	if slot.Error() == "" {
		t.Fatalf("expected slot to carry an error")
	}

	// A subsequent valid merge clears the error.
	res = reg.Merge([]ValueUpdate{{ID: 7, Value: wire.I64(500)}})
	if len(res.Errors) != 0 {
		t.Fatalf("expected no errors for valid merge, got %v", res.Errors)
	}
	if !reg.AllParametersValid() {
		t.Fatalf("expected AllParametersValid to be true after fixing the value")
	}
}

func TestMergeWrongTypeSkipsUpdate(t *testing.T) {
	var current int32 = 5
	reg := NewRegistry()
	slot := NewSlot(1, "Count", wire.TagI32,
		func() wire.Value { return wire.I32(current) },
		func(v wire.Value) { current = v.I32() },
		None,
	)
	reg.Register(slot)

	res := reg.Merge([]ValueUpdate{{ID: 1, Value: wire.Str("nope")}})
	if _, bad := res.Errors[1]; !bad {
		t.Fatalf("expected a type-mismatch error")
	}
	if current != 5 {
		t.Fatalf("expected value to be left untouched on type mismatch, got %d", current)
	}
}

func TestMergeConstSlotRejected(t *testing.T) {
	reg := NewRegistry()
	slot := NewConstSlot(2000001, "Name", wire.TagStr, func() wire.Value { return wire.Str("app") })
	reg.Register(slot)

	res := reg.Merge([]ValueUpdate{{ID: 2000001, Value: wire.Str("renamed")}})
	if _, bad := res.Errors[2000001]; !bad {
		t.Fatalf("expected const slot merge to be rejected")
	}
}

func TestMergeUnknownIDReported(t *testing.T) {
	reg := NewRegistry()
	res := reg.Merge([]ValueUpdate{{ID: 999, Value: wire.I32(1)}})
	if _, bad := res.Errors[999]; !bad {
		t.Fatalf("expected unknown id to be reported as an error")
	}
}

func TestEnumRangeBounds(t *testing.T) {
	c := EnumRange(0, 5, false)
	if c.Min.I64() != 1 || c.Max.I64() != 4 {
		t.Fatalf("expected [1,4], got [%d,%d]", c.Min.I64(), c.Max.I64())
	}
	c = EnumRange(0, 5, true)
	if c.Min.I64() != 0 || c.Max.I64() != 4 {
		t.Fatalf("expected [0,4], got [%d,%d]", c.Min.I64(), c.Max.I64())
	}
}

func TestMetadataIncludesBoundsAndDurationUnit(t *testing.T) {
	reg := NewRegistry()
	slot := NewSlot(3, "Timeout", wire.TagDuration,
		func() wire.Value { return wire.Duration(0) },
		func(wire.Value) {},
		Constraints{HasMin: true, Min: wire.Duration(0), HasMax: true, Max: wire.Duration(1e9)},
	)
	slot.DurationUnit = Seconds
	reg.Register(slot)

	raw, err := reg.MetadataJSON()
	if err != nil {
		t.Fatalf("MetadataJSON: %v", err)
	}
	var doc struct {
		Mutable map[string]struct {
			DurationType string  `json:"durationType"`
			Min          *string `json:"min"`
			Max          *string `json:"max"`
		} `json:"mutable"`
		Const map[string]any `json:"const"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal metadata JSON: %v", err)
	}
	entry, ok := doc.Mutable["3"]
	if !ok {
		t.Fatalf("expected slot 3 in mutable bucket, got %v", doc.Mutable)
	}
	if entry.DurationType != "Seconds" {
		t.Fatalf("expected durationType Seconds, got %q", entry.DurationType)
	}
	if entry.Min == nil || entry.Max == nil {
		t.Fatalf("expected min/max to be populated")
	}
}

// TestMetadataJSONIsCachedAfterFirstCall exercises spec.md §4.4's "once
// per application lifetime (cached)" requirement: a slot registered after
// the first MetadataJSON call must not appear in a later call's output.
func TestMetadataJSONIsCachedAfterFirstCall(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewConstSlot(1, "First", wire.TagStr, func() wire.Value { return wire.Str("a") }))

	first, err := reg.MetadataJSON()
	if err != nil {
		t.Fatalf("MetadataJSON: %v", err)
	}

	reg.Register(NewConstSlot(2, "Second", wire.TagStr, func() wire.Value { return wire.Str("b") }))
	second, err := reg.MetadataJSON()
	if err != nil {
		t.Fatalf("MetadataJSON: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("expected cached metadata JSON to be stable across calls, got %s then %s", first, second)
	}
}

func TestSnapshotRendersDurationInConfiguredUnit(t *testing.T) {
	reg := NewRegistry()
	slot := NewSlot(4, "Interval", wire.TagDuration,
		func() wire.Value { return wire.Duration(2e9) },
		func(wire.Value) {},
		None,
	)
	slot.DurationUnit = Seconds
	reg.Register(slot)

	snap := reg.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 snapshot entry")
	}
	if snap[0].Value != "2" {
		t.Fatalf("expected rendered duration '2', got %q", snap[0].Value)
	}
}
