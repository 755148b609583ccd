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

package frame

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"parqcel/datatable"
)

// reservedNameChars may not appear in column names.
const reservedNameChars = `<>:"/\|?*`

// ValidateName checks a new column name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is empty", datatable.ErrInvalidName)
	}
	if i := strings.IndexAny(name, reservedNameChars); i >= 0 {
		return fmt.Errorf("%w: %q contains %q", datatable.ErrInvalidName, name, name[i])
	}
	return nil
}

// SetCell stores text in a cell, parsed according to the column type.
// Empty text in a non-text column stores null. Only the edited column is
// rebuilt.
func (t *Table) SetCell(row, col int, text string) (*Table, error) {
	if err := t.checkCell(row, col); err != nil {
		return nil, err
	}
	f := t.fields[col]
	raw, err := f.Type.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("column %s, row %d: %w", f.Name, row, err)
	}

	values := t.ColumnValues(col)
	values[row] = raw
	return t.withColumn(col, f, buildColumn(f.Type, values)), nil
}

// SetCellByName is SetCell with the column given by name.
func (t *Table) SetCellByName(row int, name, text string) (*Table, error) {
	col, err := t.lookup(name)
	if err != nil {
		return nil, err
	}
	return t.SetCell(row, col, text)
}

// AddColumn appends a column filled with def, parsed by the column type.
func (t *Table) AddColumn(name string, typ datatable.ColumnType, def string) (*Table, error) {
	if t.ColumnIndex(name) >= 0 {
		return nil, fmt.Errorf("%w: %s", datatable.ErrDuplicateColumn, name)
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown column type %d", datatable.ErrConversion, int(typ))
	}
	raw, err := typ.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("default for %s: %w", name, err)
	}

	values := make([]interface{}, t.rows)
	for i := range values {
		values[i] = raw
	}
	return &Table{
		fields: append(append([]Field(nil), t.fields...), Field{Name: name, Type: typ}),
		cols:   append(append([]arrow.Array(nil), t.cols...), buildColumn(typ, values)),
		rows:   t.rows,
	}, nil
}

// DropColumn removes the named column.
func (t *Table) DropColumn(name string) (*Table, error) {
	idx, err := t.lookup(name)
	if err != nil {
		return nil, err
	}

	fields := make([]Field, 0, len(t.fields)-1)
	cols := make([]arrow.Array, 0, len(t.cols)-1)
	fields = append(append(fields, t.fields[:idx]...), t.fields[idx+1:]...)
	cols = append(append(cols, t.cols[:idx]...), t.cols[idx+1:]...)

	rows := t.rows
	if len(cols) == 0 {
		rows = 0
	}
	return &Table{fields: fields, cols: cols, rows: rows}, nil
}

// Rename changes a column name.
func (t *Table) Rename(from, to string) (*Table, error) {
	idx, err := t.lookup(from)
	if err != nil {
		return nil, err
	}
	if from == to {
		return t, nil
	}
	if t.ColumnIndex(to) >= 0 {
		return nil, fmt.Errorf("%w: %s", datatable.ErrDuplicateColumn, to)
	}
	if err := ValidateName(to); err != nil {
		return nil, err
	}
	return t.withColumn(idx, Field{Name: to, Type: t.fields[idx].Type}, t.cols[idx]), nil
}

// Select keeps the named columns in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	fields := make([]Field, 0, len(names))
	cols := make([]arrow.Array, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		idx, err := t.lookup(name)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %s selected twice", datatable.ErrDuplicateColumn, name)
		}
		seen[name] = struct{}{}
		fields = append(fields, t.fields[idx])
		cols = append(cols, t.cols[idx])
	}

	rows := t.rows
	if len(cols) == 0 {
		rows = 0
	}
	return &Table{fields: fields, cols: cols, rows: rows}, nil
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	return t.Slice(0, n)
}

// Tail returns the last n rows.
func (t *Table) Tail(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > t.rows {
		n = t.rows
	}
	return t.Slice(t.rows-n, n)
}

// Take returns the rows at the given positions, in that order.
func (t *Table) Take(indices []int) (*Table, error) {
	for _, i := range indices {
		if i < 0 || i >= t.rows {
			return nil, fmt.Errorf("%w: %d (have %d rows)", datatable.ErrInvalidRow, i, t.rows)
		}
	}

	cols := make([]arrow.Array, len(t.cols))
	for c, arr := range t.cols {
		cols[c] = gather(arr, indices)
	}
	return &Table{fields: t.fields, cols: cols, rows: len(indices)}, nil
}

// Concat stacks tables with identical fields on top of each other.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return Empty(), nil
	}
	first := tables[0]
	if len(tables) == 1 {
		return first, nil
	}
	for _, t := range tables[1:] {
		if len(t.fields) != len(first.fields) {
			return nil, fmt.Errorf("%w: %d columns, expected %d", datatable.ErrInvalidColumn, len(t.fields), len(first.fields))
		}
		for i, f := range t.fields {
			if f != first.fields[i] {
				return nil, fmt.Errorf("%w: column %d is %s %s, expected %s %s",
					datatable.ErrInvalidColumn, i, f.Name, f.Type, first.fields[i].Name, first.fields[i].Type)
			}
		}
	}

	cols := make([]arrow.Array, len(first.fields))
	for c := range first.fields {
		parts := make([]arrow.Array, len(tables))
		for i, t := range tables {
			parts[i] = t.cols[c]
		}
		joined, err := array.Concatenate(parts, allocator)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", first.fields[c].Name, err)
		}
		cols[c] = joined
	}
	return New(first.fields, cols)
}
