package wire

import (
	"encoding/binary"
)

// RawBlob is the TableBlob implementation produced when the wire codec
// decodes a TagTableBlob record: a borrowed view into the frame's own
// receive buffer. It is not reference-counted and must not outlive the
// buffer it points into — internal/table.Blob wraps it (or copies it) for
// anything the caller wants to hold past the current dispatch.
type RawBlob struct {
	raw []byte
}

// NewRawBlob wraps an already-encoded table byte slice (self-describing:
// first 8 bytes are its own total length) for use as a wire.Value.
func NewRawBlob(b []byte) RawBlob { return RawBlob{raw: b} }

func (b RawBlob) Bytes() []byte { return b.raw }

// EncodedLen returns the number of bytes WriteInto will write for this
// value's payload (excluding the 1-byte tag and 8-byte key of its frame
// record). Fixed per tag except present strings (8+n) and table blobs
// (the blob's own declared length).
func EncodedLen(v Value) int {
	switch v.tag {
	case TagI8, TagU8, TagBool:
		return 1
	case TagI16, TagU16:
		return 2
	case TagI32, TagU32, TagF32:
		return 4
	case TagI64, TagU64, TagF64, TagTimestamp, TagDuration:
		return 8
	case TagOptI8, TagOptU8:
		return 1
	case TagOptI16, TagOptU16:
		return 2
	case TagOptI32, TagOptU32, TagOptF32:
		return 4
	case TagOptI64, TagOptU64, TagOptF64:
		return 8
	case TagOptI8Empty, TagOptI16Empty, TagOptI32Empty, TagOptI64Empty,
		TagOptU8Empty, TagOptU16Empty, TagOptU32Empty, TagOptU64Empty,
		TagOptF32Empty, TagOptF64Empty, TagStrEmpty:
		return 0
	case TagStr:
		return 8 + len(v.str)
	case TagTableBlob:
		if v.blob == nil {
			return 0
		}
		return len(v.blob.Bytes())
	default:
		return 0
	}
}

// WriteInto serializes the value's payload into buf (which must be at
// least EncodedLen(v) bytes) and returns the number of bytes written.
// Integers and floats are written little-endian in their native width;
// bool as a single 0/1 byte; Timestamp/Duration as 8-byte nanosecond
// counts.
func WriteInto(buf []byte, v Value) int {
	switch v.tag {
	case TagI8, TagU8:
		buf[0] = byte(v.bits)
		return 1
	case TagBool:
		buf[0] = byte(v.bits)
		return 1
	case TagI16, TagU16:
		binary.LittleEndian.PutUint16(buf, uint16(v.bits))
		return 2
	case TagI32, TagU32:
		binary.LittleEndian.PutUint32(buf, uint32(v.bits))
		return 4
	case TagF32:
		binary.LittleEndian.PutUint32(buf, uint32(v.bits))
		return 4
	case TagI64, TagU64:
		binary.LittleEndian.PutUint64(buf, v.bits)
		return 8
	case TagF64, TagTimestamp, TagDuration:
		binary.LittleEndian.PutUint64(buf, v.bits)
		return 8
	case TagOptI8, TagOptU8:
		buf[0] = byte(v.bits)
		return 1
	case TagOptI16, TagOptU16:
		binary.LittleEndian.PutUint16(buf, uint16(v.bits))
		return 2
	case TagOptI32, TagOptU32:
		binary.LittleEndian.PutUint32(buf, uint32(v.bits))
		return 4
	case TagOptF32:
		binary.LittleEndian.PutUint32(buf, uint32(v.bits))
		return 4
	case TagOptI64, TagOptU64, TagOptF64:
		binary.LittleEndian.PutUint64(buf, v.bits)
		return 8
	case TagOptI8Empty, TagOptI16Empty, TagOptI32Empty, TagOptI64Empty,
		TagOptU8Empty, TagOptU16Empty, TagOptU32Empty, TagOptU64Empty,
		TagOptF32Empty, TagOptF64Empty, TagStrEmpty:
		return 0
	case TagStr:
		binary.LittleEndian.PutUint64(buf, uint64(len(v.str)))
		copy(buf[8:], v.str)
		return 8 + len(v.str)
	case TagTableBlob:
		if v.blob == nil {
			return 0
		}
		return copy(buf, v.blob.Bytes())
	default:
		return 0
	}
}

// ReadValue decodes a value of the given tag from the front of buf,
// returning the value and the number of bytes consumed. The tag itself is
// assumed already read (it precedes the key in a frame record); callers
// pass it in so ReadValue never needs to re-derive it.
func ReadValue(tag Tag, buf []byte) (Value, int, error) {
	need := func(n int) error {
		if len(buf) < n {
			return ErrTruncatedRecord
		}
		return nil
	}
	switch tag {
	case TagI8:
		if err := need(1); err != nil {
			return Value{}, 0, err
		}
		return Value{tag: tag, bits: uint64(buf[0])}, 1, nil
	case TagU8:
		if err := need(1); err != nil {
			return Value{}, 0, err
		}
		return Value{tag: tag, bits: uint64(buf[0])}, 1, nil
	case TagBool:
		if err := need(1); err != nil {
			return Value{}, 0, err
		}
		return Value{tag: tag, bits: uint64(buf[0])}, 1, nil
	case TagI16, TagU16:
		if err := need(2); err != nil {
			return Value{}, 0, err
		}
		return Value{tag: tag, bits: uint64(binary.LittleEndian.Uint16(buf))}, 2, nil
	case TagI32, TagU32:
		if err := need(4); err != nil {
			return Value{}, 0, err
		}
		return Value{tag: tag, bits: uint64(binary.LittleEndian.Uint32(buf))}, 4, nil
	case TagF32:
		if err := need(4); err != nil {
			return Value{}, 0, err
		}
		return Value{tag: tag, bits: uint64(binary.LittleEndian.Uint32(buf))}, 4, nil
	case TagI64, TagU64:
		if err := need(8); err != nil {
			return Value{}, 0, err
		}
		return Value{tag: tag, bits: binary.LittleEndian.Uint64(buf)}, 8, nil
	case TagF64, TagTimestamp, TagDuration:
		if err := need(8); err != nil {
			return Value{}, 0, err
		}
		return Value{tag: tag, bits: binary.LittleEndian.Uint64(buf)}, 8, nil
	case TagOptI8, TagOptU8:
		if err := need(1); err != nil {
			return Value{}, 0, err
		}
		return Value{tag: tag, bits: uint64(buf[0]), present: true}, 1, nil
	case TagOptI16, TagOptU16:
		if err := need(2); err != nil {
			return Value{}, 0, err
		}
		return Value{tag: tag, bits: uint64(binary.LittleEndian.Uint16(buf)), present: true}, 2, nil
	case TagOptI32, TagOptU32:
		if err := need(4); err != nil {
			return Value{}, 0, err
		}
		return Value{tag: tag, bits: uint64(binary.LittleEndian.Uint32(buf)), present: true}, 4, nil
	case TagOptF32:
		if err := need(4); err != nil {
			return Value{}, 0, err
		}
		return Value{tag: tag, bits: uint64(binary.LittleEndian.Uint32(buf)), present: true}, 4, nil
	case TagOptI64, TagOptU64, TagOptF64:
		if err := need(8); err != nil {
			return Value{}, 0, err
		}
		return Value{tag: tag, bits: binary.LittleEndian.Uint64(buf), present: true}, 8, nil
	case TagOptI8Empty, TagOptI16Empty, TagOptI32Empty, TagOptI64Empty,
		TagOptU8Empty, TagOptU16Empty, TagOptU32Empty, TagOptU64Empty,
		TagOptF32Empty, TagOptF64Empty:
		return Value{tag: tag}, 0, nil
	case TagStrEmpty:
		return Value{tag: tag}, 0, nil
	case TagStr:
		if err := need(8); err != nil {
			return Value{}, 0, err
		}
		n := int(binary.LittleEndian.Uint64(buf))
		if n < 0 {
			return Value{}, 0, ErrTruncatedRecord
		}
		if err := need(8 + n); err != nil {
			return Value{}, 0, ErrTruncatedRecord
		}
		s := string(buf[8 : 8+n])
		return Value{tag: tag, str: s, present: true}, 8 + n, nil
	case TagTableBlob:
		if err := need(8); err != nil {
			return Value{}, 0, err
		}
		total := int(binary.LittleEndian.Uint64(buf))
		if total < 8 {
			return Value{}, 0, ErrTruncatedRecord
		}
		if err := need(total); err != nil {
			return Value{}, 0, ErrTruncatedRecord
		}
		return Value{tag: tag, blob: RawBlob{raw: buf[:total]}}, total, nil
	default:
		return Value{}, 0, ErrUnknownTag
	}
}
