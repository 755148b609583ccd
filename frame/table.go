// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package frame implements the immutable columnar table the editor works on.
//
// A Table is an ordered list of typed fields with one Arrow array per field.
// Every operation returns a new Table; columns that are not touched are
// shared between the old and the new table, so keeping older tables around
// as undo snapshots costs only the rebuilt columns.
package frame

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"parqcel/datatable"
)

// allocator backs every array built by this package. Arrays are reclaimed by
// the garbage collector once no table references them.
var allocator memory.Allocator = memory.NewGoAllocator()

// Field describes one column.
type Field struct {
	Name string
	Type datatable.ColumnType
}

// Table is an immutable set of equally long typed columns.
type Table struct {
	fields []Field
	cols   []arrow.Array
	rows   int
}

// New assembles a table from fields and their arrays. Arrays must have the
// Arrow type of their field (see ArrowType) and equal lengths.
func New(fields []Field, cols []arrow.Array) (*Table, error) {
	if len(fields) != len(cols) {
		return nil, fmt.Errorf("%w: %d fields but %d columns", datatable.ErrInvalidColumn, len(fields), len(cols))
	}

	seen := make(map[string]struct{}, len(fields))
	rows := 0
	for i, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("%w: %s", datatable.ErrDuplicateColumn, f.Name)
		}
		seen[f.Name] = struct{}{}

		if !f.Type.Valid() {
			return nil, fmt.Errorf("%w: column %s has unknown type", datatable.ErrInvalidColumn, f.Name)
		}
		if !arrow.TypeEqual(cols[i].DataType(), ArrowType(f.Type)) {
			return nil, fmt.Errorf("%w: column %s is %s, expected %s",
				datatable.ErrInvalidColumn, f.Name, cols[i].DataType(), ArrowType(f.Type))
		}
		if i == 0 {
			rows = cols[i].Len()
		} else if cols[i].Len() != rows {
			return nil, fmt.Errorf("%w: column %s has %d rows, expected %d",
				datatable.ErrInvalidRow, f.Name, cols[i].Len(), rows)
		}
	}

	return &Table{
		fields: append([]Field(nil), fields...),
		cols:   append([]arrow.Array(nil), cols...),
		rows:   rows,
	}, nil
}

// Empty returns a table with no columns and no rows.
func Empty() *Table {
	return &Table{}
}

// FromRows builds a table from row-major Go values. Each value is coerced to
// its field type (strings are parsed); nil is stored as null.
func FromRows(fields []Field, rows [][]interface{}) (*Table, error) {
	builders := make([]*ColumnBuilder, len(fields))
	for i, f := range fields {
		builders[i] = NewColumnBuilder(f.Type)
		builders[i].Reserve(len(rows))
	}

	for r, row := range rows {
		if len(row) != len(fields) {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", datatable.ErrInvalidRow, r, len(row), len(fields))
		}
		for c, v := range row {
			if err := builders[c].Append(v); err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", r, fields[c].Name, err)
			}
		}
	}

	cols := make([]arrow.Array, len(fields))
	for i, b := range builders {
		cols[i] = b.Finish()
	}
	return New(fields, cols)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.fields) }

// Fields returns a copy of the column descriptions.
func (t *Table) Fields() []Field {
	return append([]Field(nil), t.fields...)
}

// Field returns the description of column col.
func (t *Table) Field(col int) Field { return t.fields[col] }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.fields))
	for i, f := range t.fields {
		names[i] = f.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, f := range t.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the Arrow array backing column col.
func (t *Table) Column(col int) arrow.Array { return t.cols[col] }

func (t *Table) lookup(name string) (int, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return -1, fmt.Errorf("%w: %s", datatable.ErrColumnNotFound, name)
	}
	return idx, nil
}

func (t *Table) checkCell(row, col int) error {
	if col < 0 || col >= len(t.fields) {
		return fmt.Errorf("%w: %d (have %d columns)", datatable.ErrInvalidColumn, col, len(t.fields))
	}
	if row < 0 || row >= t.rows {
		return fmt.Errorf("%w: %d (have %d rows)", datatable.ErrInvalidRow, row, t.rows)
	}
	return nil
}

// Raw returns the raw value of a cell (nil for null). It panics on
// out-of-range positions like slice indexing does.
func (t *Table) Raw(row, col int) interface{} {
	return valueAt(t.cols[col], row)
}

// Value returns a cell as a typed, formatted value.
func (t *Table) Value(row, col int) (datatable.Value, error) {
	if err := t.checkCell(row, col); err != nil {
		return datatable.Value{}, err
	}
	return datatable.NewValue(t.Raw(row, col), t.fields[col].Type), nil
}

// Text returns the display text of a cell; null cells are empty.
func (t *Table) Text(row, col int) string {
	if t.checkCell(row, col) != nil {
		return ""
	}
	return datatable.FormatRaw(t.Raw(row, col), t.fields[col].Type)
}

// Row returns all values of one row.
func (t *Table) Row(row int) ([]datatable.Value, error) {
	if row < 0 || row >= t.rows {
		return nil, fmt.Errorf("%w: %d (have %d rows)", datatable.ErrInvalidRow, row, t.rows)
	}
	out := make([]datatable.Value, len(t.fields))
	for c, f := range t.fields {
		out[c] = datatable.NewValue(t.Raw(row, c), f.Type)
	}
	return out, nil
}

// ColumnValues returns the raw values of one column.
func (t *Table) ColumnValues(col int) []interface{} {
	out := make([]interface{}, t.rows)
	for r := range out {
		out[r] = valueAt(t.cols[col], r)
	}
	return out
}

// Slice returns rows [offset, offset+length) clipped to the table. The
// arrays are zero-copy views. Out of range requests yield an empty table
// with the same schema.
func (t *Table) Slice(offset, length int) *Table {
	if offset < 0 {
		offset = 0
	}
	if offset > t.rows {
		offset = t.rows
	}
	end := offset + length
	if length < 0 || end > t.rows {
		end = t.rows
	}
	if end < offset {
		end = offset
	}

	cols := make([]arrow.Array, len(t.cols))
	for i, c := range t.cols {
		cols[i] = array.NewSlice(c, int64(offset), int64(end))
	}
	return &Table{fields: t.fields, cols: cols, rows: end - offset}
}

// withColumn returns a copy of t with column idx replaced.
func (t *Table) withColumn(idx int, f Field, col arrow.Array) *Table {
	fields := append([]Field(nil), t.fields...)
	cols := append([]arrow.Array(nil), t.cols...)
	fields[idx] = f
	cols[idx] = col
	return &Table{fields: fields, cols: cols, rows: t.rows}
}

// String summarises the table shape.
func (t *Table) String() string {
	return fmt.Sprintf("Table(%d rows x %d columns)", t.rows, len(t.fields))
}
