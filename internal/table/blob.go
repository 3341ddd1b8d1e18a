package table

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

// Blob is the TableBlob carrier described in spec.md §3: either owned
// (produced by Encode, reference-counted so it can be cheaply copied into
// frames) or borrowed (a view into bytes owned by someone else, typically
// a connection's recv buffer). It implements wire.TableBlob.
type Blob struct {
	raw    []byte
	owned  *int32 // nil for a borrowed blob; refcount for an owned one
}

// newOwnedBlob wraps freshly encoded bytes as a ref-counted owned blob
// with an initial count of one.
func newOwnedBlob(raw []byte) Blob {
	count := int32(1)
	return Blob{raw: raw, owned: &count}
}

// Borrow wraps bytes the caller does not own — typically a slice of a
// connection's recv buffer decoded via wire.ReadValue(TagTableBlob, ...).
// The returned Blob must not outlive the buffer it points into; the
// server's dispatcher enforces this by consuming such blobs synchronously
// (spec.md §5).
func Borrow(raw []byte) Blob {
	return Blob{raw: raw}
}

// Bytes returns the blob's encoded bytes, including the 8-byte
// self-declared length prefix.
func (b Blob) Bytes() []byte { return b.raw }

// IsOwned reports whether this blob holds a reference-counted copy of its
// bytes (true) or borrows bytes from a longer-lived buffer (false).
func (b Blob) IsOwned() bool { return b.owned != nil }

// Clone returns a cheap copy of an owned blob, incrementing its reference
// count; cloning a borrowed blob just copies the slice header (still
// subject to the same lifetime constraint as the original).
func (b Blob) Clone() Blob {
	if b.owned != nil {
		atomic.AddInt32(b.owned, 1)
	}
	return b
}

// Release decrements an owned blob's reference count. It is a no-op for
// borrowed blobs, which are never freed by the blob (spec.md §3).
func (b Blob) Release() {
	if b.owned != nil {
		atomic.AddInt32(b.owned, -1)
	}
}

// Encode allocates exactly t.EncodedLen() bytes and writes the total
// length followed by row-major cell bytes: rows in insertion order,
// columns in declaration order, no per-row framing (spec.md §4.2).
func (t *Table) Encode() Blob {
	buf := make([]byte, t.encodedLen)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(t.encodedLen))
	off := 8
	for _, row := range t.rows {
		for i, cell := range row {
			off += cellWriteInto(buf[off:], t.columns[i].Type, cell)
		}
	}
	return newOwnedBlob(buf)
}

// CopyFrom clears the table and repopulates it by decoding rows out of
// blob using the table's own column schema. Only the blob's byte layout is
// trusted; the schema comes entirely from the receiver (spec.md §4.2).
// Returns ErrSchemaMismatch if the blob's declared length doesn't square
// with a whole number of rows under the current schema.
func (t *Table) CopyFrom(blob wire.TableBlob) error {
	raw := blob.Bytes()
	if len(raw) < 8 {
		return ErrSchemaMismatch
	}
	total := int(binary.LittleEndian.Uint64(raw))
	if total != len(raw) {
		return ErrSchemaMismatch
	}

	t.Clear()
	body := raw[8:]
	if len(t.columns) == 0 {
		if len(body) != 0 {
			return ErrSchemaMismatch
		}
		t.encodedLen = total
		return nil
	}

	off := 0
	for off < len(body) {
		row := make([]wire.Value, len(t.columns))
		for i, col := range t.columns {
			v, n, err := cellReadFrom(body[off:], col.Type)
			if err != nil {
				t.Clear()
				return ErrSchemaMismatch
			}
			row[i] = v
			off += n
		}
		t.rows = append(t.rows, row)
	}
	if off != len(body) {
		t.Clear()
		return ErrSchemaMismatch
	}
	t.encodedLen = total
	return nil
}
