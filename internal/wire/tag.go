// Package wire implements the standard protocol's value model and frame
// codec: the closed set of transportable scalar kinds, their wire tags, and
// the 16-byte-header-plus-records frame layout built on top of them.
package wire

// Tag is the one-byte wire discriminator for a value's kind. The set is
// closed: 36 tags, numbered 1 through 36.
type Tag uint8

const (
	TagI8  Tag = 1
	TagI16 Tag = 2
	TagI32 Tag = 3
	TagI64 Tag = 4
	TagU8  Tag = 5
	TagU16 Tag = 6
	TagU32 Tag = 7
	TagU64 Tag = 8
	TagF32 Tag = 9
	TagF64 Tag = 10
	TagBool Tag = 11

	TagOptI8  Tag = 12
	TagOptI16 Tag = 13
	TagOptI32 Tag = 14
	TagOptI64 Tag = 15
	TagOptU8  Tag = 16
	TagOptU16 Tag = 17
	TagOptU32 Tag = 18
	TagOptU64 Tag = 19

	TagOptI8Empty  Tag = 20
	TagOptI16Empty Tag = 21
	TagOptI32Empty Tag = 22
	TagOptI64Empty Tag = 23
	TagOptU8Empty  Tag = 24
	TagOptU16Empty Tag = 25
	TagOptU32Empty Tag = 26
	TagOptU64Empty Tag = 27

	TagOptF32 Tag = 28
	TagOptF64 Tag = 29

	TagOptF32Empty Tag = 30
	TagOptF64Empty Tag = 31

	TagStr      Tag = 32
	TagStrEmpty Tag = 33

	TagTimestamp Tag = 34
	TagDuration  Tag = 35

	TagTableBlob Tag = 36
)

// String renders the tag's symbolic name, used by Value.String(),
// Frame.String() and the metadata JSON's type names.
func (t Tag) String() string {
	switch t {
	case TagI8:
		return "I8"
	case TagI16:
		return "I16"
	case TagI32:
		return "I32"
	case TagI64:
		return "I64"
	case TagU8:
		return "U8"
	case TagU16:
		return "U16"
	case TagU32:
		return "U32"
	case TagU64:
		return "U64"
	case TagF32:
		return "F32"
	case TagF64:
		return "F64"
	case TagBool:
		return "Bool"
	case TagOptI8:
		return "OptI8"
	case TagOptI16:
		return "OptI16"
	case TagOptI32:
		return "OptI32"
	case TagOptI64:
		return "OptI64"
	case TagOptU8:
		return "OptU8"
	case TagOptU16:
		return "OptU16"
	case TagOptU32:
		return "OptU32"
	case TagOptU64:
		return "OptU64"
	case TagOptI8Empty:
		return "OptI8Empty"
	case TagOptI16Empty:
		return "OptI16Empty"
	case TagOptI32Empty:
		return "OptI32Empty"
	case TagOptI64Empty:
		return "OptI64Empty"
	case TagOptU8Empty:
		return "OptU8Empty"
	case TagOptU16Empty:
		return "OptU16Empty"
	case TagOptU32Empty:
		return "OptU32Empty"
	case TagOptU64Empty:
		return "OptU64Empty"
	case TagOptF32:
		return "OptF32"
	case TagOptF64:
		return "OptF64"
	case TagOptF32Empty:
		return "OptF32Empty"
	case TagOptF64Empty:
		return "OptF64Empty"
	case TagStr:
		return "Str"
	case TagStrEmpty:
		return "StrEmpty"
	case TagTimestamp:
		return "Timestamp"
	case TagDuration:
		return "Duration"
	case TagTableBlob:
		return "TableBlob"
	default:
		return "Unknown"
	}
}

// IsOptional reports whether the tag belongs to one of the Opt* families
// (present or empty), used by table column validation and constraint
// evaluation in internal/param.
func (t Tag) IsOptional() bool {
	switch t {
	case TagOptI8, TagOptI16, TagOptI32, TagOptI64, TagOptU8, TagOptU16, TagOptU32, TagOptU64,
		TagOptI8Empty, TagOptI16Empty, TagOptI32Empty, TagOptI64Empty,
		TagOptU8Empty, TagOptU16Empty, TagOptU32Empty, TagOptU64Empty,
		TagOptF32, TagOptF64, TagOptF32Empty, TagOptF64Empty:
		return true
	default:
		return false
	}
}

// EmptyTagFor maps a present Opt* tag to its paired *Empty marker tag. It
// is the inverse of LogicalTag for the optional family and is used by
// internal/table when decoding an absent cell: the column schema only
// stores the present-form tag, so the table codec needs a way back to the
// wire-level empty marker to reuse ReadValue's zero-length decode path.
func (t Tag) EmptyTagFor() Tag {
	switch t {
	case TagOptI8:
		return TagOptI8Empty
	case TagOptI16:
		return TagOptI16Empty
	case TagOptI32:
		return TagOptI32Empty
	case TagOptI64:
		return TagOptI64Empty
	case TagOptU8:
		return TagOptU8Empty
	case TagOptU16:
		return TagOptU16Empty
	case TagOptU32:
		return TagOptU32Empty
	case TagOptU64:
		return TagOptU64Empty
	case TagOptF32:
		return TagOptF32Empty
	case TagOptF64:
		return TagOptF64Empty
	default:
		return t
	}
}

// LogicalTag collapses a present/empty pair onto the tag that identifies
// their shared column kind: OptI8Empty and StrEmpty normalize to OptI8 and
// Str respectively. Used wherever a column's declared type must be
// compared against an incoming cell regardless of presence (table cell
// validation, parameter slot type matching).
func (t Tag) LogicalTag() Tag {
	switch t {
	case TagOptI8Empty:
		return TagOptI8
	case TagOptI16Empty:
		return TagOptI16
	case TagOptI32Empty:
		return TagOptI32
	case TagOptI64Empty:
		return TagOptI64
	case TagOptU8Empty:
		return TagOptU8
	case TagOptU16Empty:
		return TagOptU16
	case TagOptU32Empty:
		return TagOptU32
	case TagOptU64Empty:
		return TagOptU64
	case TagOptF32Empty:
		return TagOptF32
	case TagOptF64Empty:
		return TagOptF64
	case TagStrEmpty:
		return TagStr
	default:
		return t
	}
}
