// Package table implements the standard protocol's row-oriented typed
// table (spec.md C2): column schema, row mutation, and the self-describing
// TableBlob byte carrier used to move a table's rows inside a frame
// record.
package table

import (
	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

// Column describes one table column: a stable id, its value kind (stored
// in logical/present form — see wire.Tag.LogicalTag), and a free-form JSON
// metadata fragment. The codec never interprets Metadata; the parameter
// registry's metadata generator reads its own param.TableColumnMeta list,
// not this field.
type Column struct {
	ID       uint64
	Type     wire.Tag
	Metadata string
}

// Table is an ordered list of columns plus a dense row set. Mutations
// (AppendRow, UpdateCell, Clear) keep an incrementally maintained encoded
// length so Encode allocates exactly once.
type Table struct {
	columns    []Column
	colIndex   map[uint64]int
	rows       [][]wire.Value
	encodedLen int // running total, see spec.md §4.2 "encoded buffer size"
}

// New constructs a table from parallel id/type slices. Column ids must be
// unique; on failure the table is left inert (zero columns, zero rows),
// per spec.md §4.2.
func New(ids []uint64, types []wire.Tag) (*Table, error) {
	t := &Table{encodedLen: 8}
	if len(ids) != len(types) {
		return t, ErrArity
	}
	index := make(map[uint64]int, len(ids))
	cols := make([]Column, len(ids))
	for i, id := range ids {
		if _, dup := index[id]; dup {
			return &Table{encodedLen: 8}, ErrDuplicateIDs
		}
		index[id] = i
		cols[i] = Column{ID: id, Type: types[i].LogicalTag()}
	}
	t.columns = cols
	t.colIndex = index
	return t, nil
}

// SetColumnMetadata attaches a JSON metadata fragment (e.g. a human name or
// an enum string-interpretation table) to the column identified by id.
// No-op if id is unknown.
func (t *Table) SetColumnMetadata(id uint64, metadata string) {
	if idx, ok := t.colIndex[id]; ok {
		t.columns[idx].Metadata = metadata
	}
}

// Columns returns the table's column schema in declaration order.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// RowCount reports the number of rows currently held.
func (t *Table) RowCount() int { return len(t.rows) }

// EncodedLen returns the exact byte length Encode will produce, including
// the 8-byte length prefix.
func (t *Table) EncodedLen() int { return t.encodedLen }

// cellMatches reports whether a cell's runtime kind matches a column's
// declared kind, collapsing present/empty tag pairs via LogicalTag.
func cellMatches(col Column, v wire.Value) bool {
	return v.Tag().LogicalTag() == col.Type
}

// AppendRow appends one row. Arity must equal the column count and every
// cell's kind must match its column; on any mismatch the table is left
// unchanged (no partial append).
func (t *Table) AppendRow(cells ...wire.Value) error {
	if len(cells) != len(t.columns) {
		return ErrArity
	}
	for i, cell := range cells {
		if !cellMatches(t.columns[i], cell) {
			return ErrTypeMismatch
		}
	}
	added := 0
	for i, cell := range cells {
		added += cellEncodedLen(t.columns[i].Type, cell)
	}
	row := make([]wire.Value, len(cells))
	copy(row, cells)
	t.rows = append(t.rows, row)
	t.encodedLen += added
	return nil
}

// UpdateCell replaces the cell at (colIndex, rowIndex). Both indices must
// be in range and the new value's kind must match the column. The running
// encoded length is adjusted by the delta between the old and new cell's
// contribution (matters for optional presence flips and string length
// changes).
func (t *Table) UpdateCell(colIndex, rowIndex int, v wire.Value) error {
	if colIndex < 0 || colIndex >= len(t.columns) {
		return ErrOutOfRange
	}
	if rowIndex < 0 || rowIndex >= len(t.rows) {
		return ErrOutOfRange
	}
	col := t.columns[colIndex]
	if !cellMatches(col, v) {
		return ErrTypeMismatch
	}
	old := t.rows[rowIndex][colIndex]
	delta := cellEncodedLen(col.Type, v) - cellEncodedLen(col.Type, old)
	t.rows[rowIndex][colIndex] = v
	t.encodedLen += delta
	return nil
}

// Cell returns the cell at (colIndex, rowIndex).
func (t *Table) Cell(colIndex, rowIndex int) (wire.Value, error) {
	if colIndex < 0 || colIndex >= len(t.columns) {
		return wire.Value{}, ErrOutOfRange
	}
	if rowIndex < 0 || rowIndex >= len(t.rows) {
		return wire.Value{}, ErrOutOfRange
	}
	return t.rows[rowIndex][colIndex], nil
}

// Clear drops all rows and resets the encoded length to 8 (the length
// prefix alone).
func (t *Table) Clear() {
	t.rows = nil
	t.encodedLen = 8
}
