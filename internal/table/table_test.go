package table

import (
	"testing"

	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

// TestTableEncodeCopyFrom exercises S2 from spec.md §8.
func TestTableEncodeCopyFrom(t *testing.T) {
	ids := []uint64{411, 412, 413, 415}
	types := []wire.Tag{wire.TagBool, wire.TagBool, wire.TagStr, wire.TagOptF64}
	tbl, err := New(ids, types)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	one := 1.5
	if err := tbl.AppendRow(wire.Bool(true), wire.Bool(true), wire.Str("alpha"), wire.OptF64(&one)); err != nil {
		t.Fatalf("append row 1: %v", err)
	}
	if err := tbl.AppendRow(wire.Bool(false), wire.Bool(false), wire.Str(""), wire.OptF64(nil)); err != nil {
		t.Fatalf("append row 2: %v", err)
	}

	blob := tbl.Encode()
	if len(blob.Bytes()) != tbl.EncodedLen() {
		t.Fatalf("blob length %d != EncodedLen %d", len(blob.Bytes()), tbl.EncodedLen())
	}

	fresh, err := New(ids, types)
	if err != nil {
		t.Fatalf("new fresh: %v", err)
	}
	if err := fresh.CopyFrom(blob); err != nil {
		t.Fatalf("copy from: %v", err)
	}
	if fresh.RowCount() != 2 {
		t.Fatalf("expected 2 rows, got %d", fresh.RowCount())
	}
	if fresh.EncodedLen() != len(blob.Bytes()) {
		t.Fatalf("encoded len mismatch after copy: %d vs %d", fresh.EncodedLen(), len(blob.Bytes()))
	}

	for r := 0; r < 2; r++ {
		for c := 0; c < 4; c++ {
			want, _ := tbl.Cell(c, r)
			got, err := fresh.Cell(c, r)
			if err != nil {
				t.Fatalf("cell(%d,%d): %v", c, r, err)
			}
			if !got.Equal(want) {
				t.Fatalf("cell(%d,%d): got %v want %v", c, r, got, want)
			}
		}
	}
}

func TestNewDuplicateColumnIDs(t *testing.T) {
	_, err := New([]uint64{1, 1}, []wire.Tag{wire.TagI32, wire.TagI32})
	if err != ErrDuplicateIDs {
		t.Fatalf("expected ErrDuplicateIDs, got %v", err)
	}
}

func TestAppendRowArityMismatch(t *testing.T) {
	tbl, _ := New([]uint64{1}, []wire.Tag{wire.TagI32})
	if err := tbl.AppendRow(wire.I32(1), wire.I32(2)); err != ErrArity {
		t.Fatalf("expected ErrArity, got %v", err)
	}
	if tbl.RowCount() != 0 {
		t.Fatalf("partial append leaked a row")
	}
}

func TestAppendRowTypeMismatch(t *testing.T) {
	tbl, _ := New([]uint64{1, 2}, []wire.Tag{wire.TagI32, wire.TagStr})
	if err := tbl.AppendRow(wire.I32(1), wire.I32(2)); err != ErrTypeMismatch {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
	if tbl.RowCount() != 0 {
		t.Fatalf("partial append leaked a row")
	}
}

func TestUpdateCellEncodedLenTracksStringDelta(t *testing.T) {
	tbl, _ := New([]uint64{1}, []wire.Tag{wire.TagStr})
	if err := tbl.AppendRow(wire.Str("ab")); err != nil {
		t.Fatalf("append: %v", err)
	}
	before := tbl.EncodedLen()
	if err := tbl.UpdateCell(0, 0, wire.Str("abcdef")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if tbl.EncodedLen() != before+4 {
		t.Fatalf("expected encoded len to grow by 4, got delta %d", tbl.EncodedLen()-before)
	}
	blob := tbl.Encode()
	if len(blob.Bytes()) != tbl.EncodedLen() {
		t.Fatalf("encode length mismatch: %d vs %d", len(blob.Bytes()), tbl.EncodedLen())
	}
}

func TestUpdateCellOutOfRange(t *testing.T) {
	tbl, _ := New([]uint64{1}, []wire.Tag{wire.TagI32})
	_ = tbl.AppendRow(wire.I32(1))
	if err := tbl.UpdateCell(5, 0, wire.I32(2)); err != ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange for column, got %v", err)
	}
	if err := tbl.UpdateCell(0, 5, wire.I32(2)); err != ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange for row, got %v", err)
	}
}

func TestClearResetsEncodedLen(t *testing.T) {
	tbl, _ := New([]uint64{1}, []wire.Tag{wire.TagI32})
	_ = tbl.AppendRow(wire.I32(1))
	_ = tbl.AppendRow(wire.I32(2))
	tbl.Clear()
	if tbl.EncodedLen() != 8 {
		t.Fatalf("expected encoded len 8 after clear, got %d", tbl.EncodedLen())
	}
	if tbl.RowCount() != 0 {
		t.Fatalf("expected 0 rows after clear")
	}
}

func TestCopyFromSchemaMismatch(t *testing.T) {
	ids := []uint64{1, 2}
	tbl, _ := New(ids, []wire.Tag{wire.TagI32, wire.TagI32})
	_ = tbl.AppendRow(wire.I32(1), wire.I32(2))
	blob := tbl.Encode()

	other, _ := New(ids, []wire.Tag{wire.TagI64, wire.TagI32})
	if err := other.CopyFrom(blob); err != ErrSchemaMismatch {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
