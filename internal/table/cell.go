package table

import (
	"encoding/binary"

	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

// cellEncodedLen returns the row-data byte contribution of one cell, per
// spec.md §6's table blob layout: string columns carry an 8-byte length
// prefix, optional columns carry a 1-byte presence flag ahead of their
// inner value, and everything else uses the tag-less scalar encoding
// already provided by wire.EncodedLen.
func cellEncodedLen(colType wire.Tag, v wire.Value) int {
	switch {
	case colType == wire.TagStr:
		return 8 + len(v.Str())
	case colType.IsOptional():
		return 1 + wire.EncodedLen(v)
	default:
		return wire.EncodedLen(v)
	}
}

// cellWriteInto serializes one cell's row-data bytes into buf and returns
// the number of bytes written.
func cellWriteInto(buf []byte, colType wire.Tag, v wire.Value) int {
	switch {
	case colType == wire.TagStr:
		s := v.Str()
		binary.LittleEndian.PutUint64(buf, uint64(len(s)))
		copy(buf[8:], s)
		return 8 + len(s)
	case colType.IsOptional():
		if v.Present() {
			buf[0] = 0
			n := wire.WriteInto(buf[1:], v)
			return 1 + n
		}
		buf[0] = 1
		return 1
	default:
		return wire.WriteInto(buf, v)
	}
}

// cellReadFrom decodes one cell's row-data bytes for the given column
// type, returning the value and bytes consumed.
func cellReadFrom(buf []byte, colType wire.Tag) (wire.Value, int, error) {
	switch {
	case colType == wire.TagStr:
		if len(buf) < 8 {
			return wire.Value{}, 0, wire.ErrTruncatedRecord
		}
		n := int(binary.LittleEndian.Uint64(buf))
		if n < 0 || len(buf) < 8+n {
			return wire.Value{}, 0, wire.ErrTruncatedRecord
		}
		return wire.Str(string(buf[8 : 8+n])), 8 + n, nil
	case colType.IsOptional():
		if len(buf) < 1 {
			return wire.Value{}, 0, wire.ErrTruncatedRecord
		}
		if buf[0] == 0 {
			v, n, err := wire.ReadValue(colType, buf[1:])
			if err != nil {
				return wire.Value{}, 0, err
			}
			return v, 1 + n, nil
		}
		v, _, err := wire.ReadValue(colType.EmptyTagFor(), buf[1:])
		if err != nil {
			return wire.Value{}, 0, err
		}
		return v, 1, nil
	default:
		v, n, err := wire.ReadValue(colType, buf)
		if err != nil {
			return wire.Value{}, 0, err
		}
		return v, n, nil
	}
}
