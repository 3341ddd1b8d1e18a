package wire

import (
	"fmt"
	"math"
	"time"
)

// TableBlob is the minimal surface the wire codec needs from a table's
// encoded byte carrier. internal/table.Blob implements this; wire never
// imports internal/table directly to avoid a dependency cycle (tables
// encode cells using wire.Value).
type TableBlob interface {
	// Bytes returns the blob's raw encoded bytes, including the 8-byte
	// self-declared length prefix.
	Bytes() []byte
}

// Value is a closed tagged union over every transportable scalar kind plus
// the table blob carrier. It is a single concrete type switched on Tag,
// not an interface — there is no dynamic dispatch or reflection anywhere
// in the codec.
type Value struct {
	tag     Tag
	bits    uint64 // raw bit pattern for ints/floats/bool/timestamp/duration
	present bool   // Opt* present vs Opt*Empty; also set by Str, left false by StrEmpty (see Str note)
	str     string
	blob    TableBlob
}

func I8(v int8) Value   { return Value{tag: TagI8, bits: uint64(uint8(v))} }
func I16(v int16) Value { return Value{tag: TagI16, bits: uint64(uint16(v))} }
func I32(v int32) Value { return Value{tag: TagI32, bits: uint64(uint32(v))} }
func I64(v int64) Value { return Value{tag: TagI64, bits: uint64(v)} }
func U8(v uint8) Value  { return Value{tag: TagU8, bits: uint64(v)} }
func U16(v uint16) Value { return Value{tag: TagU16, bits: uint64(v)} }
func U32(v uint32) Value { return Value{tag: TagU32, bits: uint64(v)} }
func U64(v uint64) Value { return Value{tag: TagU64, bits: v} }
func F32(v float32) Value { return Value{tag: TagF32, bits: uint64(math.Float32bits(v))} }
func F64(v float64) Value { return Value{tag: TagF64, bits: math.Float64bits(v)} }
func Bool(v bool) Value {
	var b uint64
	if v {
		b = 1
	}
	return Value{tag: TagBool, bits: b}
}

// Str builds a present string value. An empty string still serializes as
// TagStr with a zero-length body, per spec: StrEmpty is a distinct wire
// marker reserved for the "absent" channel, which this constructor never
// produces — callers that need the absent marker use StrAbsent.
func Str(v string) Value { return Value{tag: TagStr, str: v, present: true} }

// StrAbsent constructs the StrEmpty wire marker (absent string, distinct
// from a present empty string). Both decode to the same semantic value
// (""), but they serialize to different tag bytes.
func StrAbsent() Value { return Value{tag: TagStrEmpty} }

// Timestamp builds a Timestamp value from a point in time. The codec does
// not range-check the instant, and internal/param only checks a timestamp
// slot for emptiness (zero), so negative instants are accepted.
func Timestamp(t time.Time) Value {
	return Value{tag: TagTimestamp, bits: uint64(t.UnixNano())}
}

// Duration builds a signed nanosecond Duration value.
func Duration(d time.Duration) Value {
	return Value{tag: TagDuration, bits: uint64(int64(d))}
}

// Table builds a TableBlob value from an encoded table blob.
func Table(b TableBlob) Value { return Value{tag: TagTableBlob, blob: b} }

func OptI8(v *int8) Value {
	if v == nil {
		return Value{tag: TagOptI8Empty}
	}
	return Value{tag: TagOptI8, bits: uint64(uint8(*v)), present: true}
}

func OptI16(v *int16) Value {
	if v == nil {
		return Value{tag: TagOptI16Empty}
	}
	return Value{tag: TagOptI16, bits: uint64(uint16(*v)), present: true}
}

func OptI32(v *int32) Value {
	if v == nil {
		return Value{tag: TagOptI32Empty}
	}
	return Value{tag: TagOptI32, bits: uint64(uint32(*v)), present: true}
}

func OptI64(v *int64) Value {
	if v == nil {
		return Value{tag: TagOptI64Empty}
	}
	return Value{tag: TagOptI64, bits: uint64(*v), present: true}
}

func OptU8(v *uint8) Value {
	if v == nil {
		return Value{tag: TagOptU8Empty}
	}
	return Value{tag: TagOptU8, bits: uint64(*v), present: true}
}

func OptU16(v *uint16) Value {
	if v == nil {
		return Value{tag: TagOptU16Empty}
	}
	return Value{tag: TagOptU16, bits: uint64(*v), present: true}
}

func OptU32(v *uint32) Value {
	if v == nil {
		return Value{tag: TagOptU32Empty}
	}
	return Value{tag: TagOptU32, bits: uint64(*v), present: true}
}

func OptU64(v *uint64) Value {
	if v == nil {
		return Value{tag: TagOptU64Empty}
	}
	return Value{tag: TagOptU64, bits: *v, present: true}
}

func OptF32(v *float32) Value {
	if v == nil {
		return Value{tag: TagOptF32Empty}
	}
	return Value{tag: TagOptF32, bits: uint64(math.Float32bits(*v)), present: true}
}

func OptF64(v *float64) Value {
	if v == nil {
		return Value{tag: TagOptF64Empty}
	}
	return Value{tag: TagOptF64, bits: math.Float64bits(*v), present: true}
}

// Tag reports the value's wire tag.
func (v Value) Tag() Tag { return v.tag }

// Present reports, for an Opt* value, whether it carries data. It is
// meaningless for non-optional tags.
func (v Value) Present() bool { return v.present }

func (v Value) I8() int8   { return int8(uint8(v.bits)) }
func (v Value) I16() int16 { return int16(uint16(v.bits)) }
func (v Value) I32() int32 { return int32(uint32(v.bits)) }
func (v Value) I64() int64 { return int64(v.bits) }
func (v Value) U8() uint8   { return uint8(v.bits) }
func (v Value) U16() uint16 { return uint16(v.bits) }
func (v Value) U32() uint32 { return uint32(v.bits) }
func (v Value) U64() uint64 { return v.bits }
func (v Value) F32() float32 { return math.Float32frombits(uint32(v.bits)) }
func (v Value) F64() float64 { return math.Float64frombits(v.bits) }
func (v Value) Bool() bool   { return v.bits != 0 }
func (v Value) Str() string  { return v.str }
func (v Value) Timestamp() time.Time {
	return time.Unix(0, int64(v.bits)).UTC()
}
func (v Value) Duration() time.Duration { return time.Duration(int64(v.bits)) }
func (v Value) Blob() TableBlob         { return v.blob }

// OptI8Ptr and its siblings materialize an optional scalar as a Go pointer,
// nil when the wire tag is the *Empty variant.
func (v Value) OptI8Ptr() *int8 {
	if !v.present {
		return nil
	}
	x := v.I8()
	return &x
}

func (v Value) OptI16Ptr() *int16 {
	if !v.present {
		return nil
	}
	x := v.I16()
	return &x
}

func (v Value) OptI32Ptr() *int32 {
	if !v.present {
		return nil
	}
	x := v.I32()
	return &x
}

func (v Value) OptI64Ptr() *int64 {
	if !v.present {
		return nil
	}
	x := v.I64()
	return &x
}

func (v Value) OptU8Ptr() *uint8 {
	if !v.present {
		return nil
	}
	x := v.U8()
	return &x
}

func (v Value) OptU16Ptr() *uint16 {
	if !v.present {
		return nil
	}
	x := v.U16()
	return &x
}

func (v Value) OptU32Ptr() *uint32 {
	if !v.present {
		return nil
	}
	x := v.U32()
	return &x
}

func (v Value) OptU64Ptr() *uint64 {
	if !v.present {
		return nil
	}
	x := v.U64()
	return &x
}

func (v Value) OptF32Ptr() *float32 {
	if !v.present {
		return nil
	}
	x := v.F32()
	return &x
}

func (v Value) OptF64Ptr() *float64 {
	if !v.present {
		return nil
	}
	x := v.F64()
	return &x
}

// IsStrEmptyMarker reports whether this value is the absent-string wire
// marker (TagStrEmpty), as opposed to a present empty string.
func (v Value) IsStrEmptyMarker() bool { return v.tag == TagStrEmpty }

const float32Epsilon = 1e-6
const float64Epsilon = 1e-10

// Equal implements the spec's epsilon-based float comparison and
// present/absent-aware optional comparison used by parameter merge
// idempotence checks (spec.md invariant 4). NaN is never equal to
// anything, including itself, per §9's Open Question resolution.
func (v Value) Equal(other Value) bool {
	if v.tag != other.tag {
		return false
	}
	switch v.tag {
	case TagF32:
		a, b := v.F32(), other.F32()
		if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
			return false
		}
		return math.Abs(float64(a-b)) < float32Epsilon
	case TagF64:
		a, b := v.F64(), other.F64()
		if math.IsNaN(a) || math.IsNaN(b) {
			return false
		}
		return math.Abs(a-b) < float64Epsilon
	case TagOptF32:
		if v.present != other.present {
			return false
		}
		if !v.present {
			return true
		}
		a, b := v.F32(), other.F32()
		if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
			return false
		}
		return math.Abs(float64(a-b)) < float32Epsilon
	case TagOptF64:
		if v.present != other.present {
			return false
		}
		if !v.present {
			return true
		}
		a, b := v.F64(), other.F64()
		if math.IsNaN(a) || math.IsNaN(b) {
			return false
		}
		return math.Abs(a-b) < float64Epsilon
	case TagStr:
		return v.str == other.str
	case TagTableBlob:
		ab, bb := v.blob, other.blob
		if ab == nil || bb == nil {
			return ab == bb
		}
		return string(ab.Bytes()) == string(bb.Bytes())
	default:
		return v.bits == other.bits && v.present == other.present
	}
}

// String renders a human-readable debug form, mirroring the original
// protocol's Data::ToString() example blocks; used by parameter snapshots
// (the admin introspection surface), the params command and
// Frame.String(), never the wire format.
func (v Value) String() string {
	switch v.tag {
	case TagStrEmpty:
		return ""
	case TagStr:
		return v.str
	case TagBool:
		return fmt.Sprintf("%t", v.Bool())
	case TagTimestamp:
		return v.Timestamp().Format(time.RFC3339Nano)
	case TagDuration:
		return v.Duration().String()
	case TagTableBlob:
		if v.blob == nil {
			return "<nil table>"
		}
		return fmt.Sprintf("table(%d bytes)", len(v.blob.Bytes()))
	case TagF32:
		return fmt.Sprintf("%v", v.F32())
	case TagF64:
		return fmt.Sprintf("%v", v.F64())
	case TagI8:
		return fmt.Sprintf("%d", v.I8())
	case TagI16:
		return fmt.Sprintf("%d", v.I16())
	case TagI32:
		return fmt.Sprintf("%d", v.I32())
	case TagI64:
		return fmt.Sprintf("%d", v.I64())
	case TagU8:
		return fmt.Sprintf("%d", v.U8())
	case TagU16:
		return fmt.Sprintf("%d", v.U16())
	case TagU32:
		return fmt.Sprintf("%d", v.U32())
	case TagU64:
		return fmt.Sprintf("%d", v.U64())
	default:
		if v.tag.IsOptional() {
			if !v.present {
				return "<empty>"
			}
			switch v.tag {
			case TagOptF32:
				return fmt.Sprintf("%v", v.F32())
			case TagOptF64:
				return fmt.Sprintf("%v", v.F64())
			default:
				return fmt.Sprintf("%d", int64(v.bits))
			}
		}
		return v.tag.String()
	}
}
