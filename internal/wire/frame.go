package wire

import (
	"encoding/binary"
	"sort"
	"strconv"
)

// HeaderSize is the fixed 16-byte frame header: an 8-byte cipher followed
// by an 8-byte total_length (spec.md §4.3/§6).
const HeaderSize = 16

// ReservedCipherLo and ReservedCipherHi bound the standard-protocol
// control cipher band (spec.md §4.5). A frame whose cipher falls outside
// this band is handed unchanged to the application's handle_buffer hook.
const (
	ReservedCipherLo uint64 = 934875930
	ReservedCipherHi uint64 = 934875939
)

// record is one (tag, value) entry keyed by its property id within a
// frame body.
type record struct {
	tag   Tag
	value Value
}

// Frame is the in-memory decoded (or not-yet-encoded) form of one standard
// protocol message: a cipher plus an ordered key→(tag,value) mapping.
type Frame struct {
	Cipher  uint64
	records map[uint64]record
	order   []uint64 // preserves Set/decode order for iteration and String()
}

// NewFrame constructs an empty frame ready to accept Set calls before
// Encode.
func NewFrame(cipher uint64) *Frame {
	return &Frame{Cipher: cipher, records: make(map[uint64]record)}
}

// Set inserts a keyed value into the frame. If key is already present the
// existing entry is left untouched and Set returns false — the caller is
// expected to log a warning, mirroring spec.md §4.3's "rejects duplicate
// key insertion at call time with a warning."
func (f *Frame) Set(key uint64, v Value) bool {
	if _, exists := f.records[key]; exists {
		return false
	}
	f.records[key] = record{tag: v.Tag(), value: v}
	f.order = append(f.order, key)
	return true
}

// Get looks up a keyed value.
func (f *Frame) Get(key uint64) (Value, bool) {
	r, ok := f.records[key]
	if !ok {
		return Value{}, false
	}
	return r.value, true
}

// Len reports the number of keyed records in the frame.
func (f *Frame) Len() int { return len(f.records) }

// Keys returns the keys in the order they were inserted (for an
// encoder-built frame) or decoded (for a frame parsed off the wire).
func (f *Frame) Keys() []uint64 {
	out := make([]uint64, len(f.order))
	copy(out, f.order)
	return out
}

// bodyLen computes the exact byte length of the encoded body, in ascending
// key order, without allocating the body itself.
func (f *Frame) bodyLen() int {
	n := 0
	for _, r := range f.records {
		n += 1 + 8 + EncodedLen(r.value)
	}
	return n
}

// Encode serializes the frame to exactly HeaderSize+bodyLen bytes: the
// 16-byte header followed by records in ascending key order (spec.md
// §4.3's "Encode: allocates exactly total_length bytes ... iterates
// records in key order").
func (f *Frame) Encode() []byte {
	keys := make([]uint64, 0, len(f.records))
	for k := range f.records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	total := HeaderSize + f.bodyLen()
	buf := make([]byte, total)
	binary.LittleEndian.PutUint64(buf[0:8], f.Cipher)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(total))

	off := HeaderSize
	for _, k := range keys {
		r := f.records[k]
		buf[off] = byte(r.tag)
		off++
		binary.LittleEndian.PutUint64(buf[off:off+8], k)
		off += 8
		off += WriteInto(buf[off:], r.value)
	}
	return buf
}

// DecodeFrame parses a complete frame from buf. buf must contain at least
// the header's declared total_length bytes; trailing bytes beyond that are
// ignored (the caller — internal/server's worker loop — already sliced the
// buffer to exactly one frame before calling this). Only total_length from
// the header is trusted: a buffer shorter than total_length, or a
// total_length below 16, is ErrLengthMismatch; a record that runs past the
// end of the declared body is ErrTruncatedRecord.
func DecodeFrame(buf []byte) (*Frame, error) {
	if len(buf) < HeaderSize {
		return nil, ErrLengthMismatch
	}
	cipher := binary.LittleEndian.Uint64(buf[0:8])
	total := binary.LittleEndian.Uint64(buf[8:16])
	if total < HeaderSize {
		return nil, ErrLengthMismatch
	}
	if uint64(len(buf)) < total {
		return nil, ErrLengthMismatch
	}
	bodyLen := int(total) - HeaderSize
	body := buf[HeaderSize : HeaderSize+bodyLen]

	f := NewFrame(cipher)
	off := 0
	for off < len(body) {
		if off+1+8 > len(body) {
			return nil, ErrTruncatedRecord
		}
		tag := Tag(body[off])
		off++
		key := binary.LittleEndian.Uint64(body[off : off+8])
		off += 8
		v, n, err := ReadValue(tag, body[off:])
		if err != nil {
			return nil, err
		}
		off += n
		if _, exists := f.records[key]; exists {
			return nil, ErrDuplicateKey
		}
		f.records[key] = record{tag: tag, value: v}
		f.order = append(f.order, key)
	}
	if off != len(body) {
		return nil, ErrLengthMismatch
	}
	return f, nil
}

// String renders a debug form of the frame, in the spirit of the original
// protocol's Data::ToString() (see SPEC_FULL.md's supplemented-features
// section). It is a debug rendering only, never the wire format.
func (f *Frame) String() string {
	out := "{\n\tCipher : "
	out += strconv.FormatUint(f.Cipher, 10)
	out += "\n\tBuffer size : "
	out += strconv.Itoa(HeaderSize + f.bodyLen())
	out += "\n"
	for _, k := range f.order {
		r := f.records[k]
		out += "\t" + strconv.FormatUint(k, 10) + " (" + r.tag.String() + ") : " + r.value.String() + "\n"
	}
	out += "}"
	return out
}
