package param

import (
	"math"
	"strconv"

	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

const float32Epsilon = 1e-6
const float64Epsilon = 1e-10

// belowMin and aboveMax implement spec.md §4.4's per-kind min/max
// comparison, epsilon-aware for floats. Kinds with no min/max concept
// (bool, string, timestamp, table) always report false — their slots
// simply never declare HasMin/HasMax.
func belowMin(kind wire.Tag, v, min wire.Value) bool {
	switch kind {
	case wire.TagI8, wire.TagI16, wire.TagI32, wire.TagI64,
		wire.TagOptI8, wire.TagOptI16, wire.TagOptI32, wire.TagOptI64:
		return signedOf(v) < signedOf(min)
	case wire.TagU8, wire.TagU16, wire.TagU32, wire.TagU64,
		wire.TagOptU8, wire.TagOptU16, wire.TagOptU32, wire.TagOptU64:
		return unsignedOf(v) < unsignedOf(min)
	case wire.TagF32, wire.TagOptF32:
		vf, mf := float64(v.F32()), float64(min.F32())
		return math.IsNaN(vf) || math.IsNaN(mf) || mf-vf > float32Epsilon
	case wire.TagF64, wire.TagOptF64:
		vf, mf := v.F64(), min.F64()
		return math.IsNaN(vf) || math.IsNaN(mf) || mf-vf > float64Epsilon
	case wire.TagDuration:
		return int64(v.Duration()) < int64(min.Duration())
	default:
		return false
	}
}

func aboveMax(kind wire.Tag, v, max wire.Value) bool {
	switch kind {
	case wire.TagI8, wire.TagI16, wire.TagI32, wire.TagI64,
		wire.TagOptI8, wire.TagOptI16, wire.TagOptI32, wire.TagOptI64:
		return signedOf(v) > signedOf(max)
	case wire.TagU8, wire.TagU16, wire.TagU32, wire.TagU64,
		wire.TagOptU8, wire.TagOptU16, wire.TagOptU32, wire.TagOptU64:
		return unsignedOf(v) > unsignedOf(max)
	case wire.TagF32, wire.TagOptF32:
		vf, mf := float64(v.F32()), float64(max.F32())
		return math.IsNaN(vf) || math.IsNaN(mf) || vf-mf > float32Epsilon
	case wire.TagF64, wire.TagOptF64:
		vf, mf := v.F64(), max.F64()
		return math.IsNaN(vf) || math.IsNaN(mf) || vf-mf > float64Epsilon
	case wire.TagDuration:
		return int64(v.Duration()) > int64(max.Duration())
	default:
		return false
	}
}

func signedOf(v wire.Value) int64 {
	switch v.Tag().LogicalTag() {
	case wire.TagI8, wire.TagOptI8:
		return int64(v.I8())
	case wire.TagI16, wire.TagOptI16:
		return int64(v.I16())
	case wire.TagI32, wire.TagOptI32:
		return int64(v.I32())
	case wire.TagI64, wire.TagOptI64:
		return v.I64()
	default:
		return 0
	}
}

func unsignedOf(v wire.Value) uint64 {
	switch v.Tag().LogicalTag() {
	case wire.TagU8, wire.TagOptU8:
		return uint64(v.U8())
	case wire.TagU16, wire.TagOptU16:
		return uint64(v.U16())
	case wire.TagU32, wire.TagOptU32:
		return uint64(v.U32())
	case wire.TagU64, wire.TagOptU64:
		return v.U64()
	default:
		return 0
	}
}

// numericString renders a value for use inside constraint error messages,
// matching the "6790004 > 6000" style of spec.md's S3 scenario.
func numericString(kind wire.Tag, v wire.Value) string {
	switch kind {
	case wire.TagI8, wire.TagI16, wire.TagI32, wire.TagI64,
		wire.TagOptI8, wire.TagOptI16, wire.TagOptI32, wire.TagOptI64:
		return strconv.FormatInt(signedOf(v), 10)
	case wire.TagU8, wire.TagU16, wire.TagU32, wire.TagU64,
		wire.TagOptU8, wire.TagOptU16, wire.TagOptU32, wire.TagOptU64:
		return strconv.FormatUint(unsignedOf(v), 10)
	case wire.TagF32, wire.TagOptF32:
		return strconv.FormatFloat(float64(v.F32()), 'g', -1, 32)
	case wire.TagF64, wire.TagOptF64:
		return strconv.FormatFloat(v.F64(), 'g', -1, 64)
	case wire.TagDuration:
		return strconv.FormatInt(int64(v.Duration()), 10)
	default:
		return v.String()
	}
}
