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

// Package tbl is the only package visible to transformation code. It wraps a
// table in a chainable Frame:
//
//	dataset.Filter(tbl.Col("age").Gt(30)).Sort("name", false).Head(10)
//
// A Frame carries the first error of a chain; later calls are no-ops and the
// error is reported by Err.
package tbl

import (
	"fmt"

	"parqcel/datatable"
	"parqcel/datatable/filter"
	"parqcel/frame"
)

// Frame is a table handle with a sticky error.
type Frame struct {
	t   *frame.Table
	err error
}

// SortKey orders a Sort by one column.
type SortKey struct {
	Column     string
	Descending bool
}

// Asc sorts by column in ascending order.
func Asc(column string) SortKey { return SortKey{Column: column} }

// Desc sorts by column in descending order.
func Desc(column string) SortKey { return SortKey{Column: column, Descending: true} }

// Wrap returns a Frame over t.
func Wrap(t *frame.Table) *Frame { return &Frame{t: t} }

// Failed returns a Frame holding err.
func Failed(err error) *Frame { return &Frame{err: err} }

// Table returns the wrapped table, nil after an error.
func (f *Frame) Table() *frame.Table {
	if f == nil || f.err != nil {
		return nil
	}
	return f.t
}

// Err returns the first error of the chain that produced f.
func (f *Frame) Err() error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", datatable.ErrEmptyData)
	}
	return f.err
}

func (f *Frame) then(op func(*frame.Table) (*frame.Table, error)) *Frame {
	if err := f.Err(); err != nil {
		return Failed(err)
	}
	t, err := op(f.t)
	if err != nil {
		return Failed(err)
	}
	return Wrap(t)
}

// Filter keeps the rows matching e.
func (f *Frame) Filter(e Expr) *Frame {
	return f.then(func(t *frame.Table) (*frame.Table, error) {
		if e.err != nil {
			return nil, e.err
		}
		return t.Where(e.f)
	})
}

// Where filters with a query string such as "age > 30 AND city = Paris".
func (f *Frame) Where(query string) *Frame {
	return f.then(func(t *frame.Table) (*frame.Table, error) {
		q, err := filter.NewQueryParser(t.Names()).Parse(query)
		if err != nil {
			return nil, err
		}
		return t.Where(q)
	})
}

// Sort orders rows by one column.
func (f *Frame) Sort(column string, descending bool) *Frame {
	return f.SortBy(SortKey{Column: column, Descending: descending})
}

// SortBy orders rows by several columns, first key primary.
func (f *Frame) SortBy(keys ...SortKey) *Frame {
	return f.then(func(t *frame.Table) (*frame.Table, error) {
		fk := make([]frame.SortKey, len(keys))
		for i, k := range keys {
			fk[i] = frame.SortKey{Column: k.Column, Descending: k.Descending}
		}
		return t.Sort(fk...)
	})
}

// Head keeps the first n rows.
func (f *Frame) Head(n int) *Frame {
	return f.then(func(t *frame.Table) (*frame.Table, error) { return t.Head(n), nil })
}

// Tail keeps the last n rows.
func (f *Frame) Tail(n int) *Frame {
	return f.then(func(t *frame.Table) (*frame.Table, error) { return t.Tail(n), nil })
}

// Select keeps the named columns in order.
func (f *Frame) Select(columns ...string) *Frame {
	return f.then(func(t *frame.Table) (*frame.Table, error) { return t.Select(columns...) })
}

// Drop removes the named columns.
func (f *Frame) Drop(columns ...string) *Frame {
	return f.then(func(t *frame.Table) (*frame.Table, error) {
		var err error
		for _, c := range columns {
			if t, err = t.DropColumn(c); err != nil {
				return nil, err
			}
		}
		return t, nil
	})
}

// Rename renames a column.
func (f *Frame) Rename(from, to string) *Frame {
	return f.then(func(t *frame.Table) (*frame.Table, error) { return t.Rename(from, to) })
}

// Cast converts a column to the named type ("Int64", "float", "date", ...).
func (f *Frame) Cast(column, typeName string) *Frame {
	return f.then(func(t *frame.Table) (*frame.Table, error) {
		typ, err := datatable.ParseColumnType(typeName)
		if err != nil {
			return nil, err
		}
		return t.ConvertColumnType(column, typ)
	})
}

// WithColumn adds a column filled with def.
func (f *Frame) WithColumn(name, typeName, def string) *Frame {
	return f.then(func(t *frame.Table) (*frame.Table, error) {
		typ, err := datatable.ParseColumnType(typeName)
		if err != nil {
			return nil, err
		}
		return t.AddColumn(name, typ, def)
	})
}

// SetCell sets one cell from text, coerced to the column type. row is zero
// based.
func (f *Frame) SetCell(row int, column, text string) *Frame {
	return f.then(func(t *frame.Table) (*frame.Table, error) { return t.SetCellByName(row, column, text) })
}

// Height returns the number of rows, 0 after an error.
func (f *Frame) Height() int {
	if t := f.Table(); t != nil {
		return t.NumRows()
	}
	return 0
}

// Width returns the number of columns, 0 after an error.
func (f *Frame) Width() int {
	if t := f.Table(); t != nil {
		return t.NumCols()
	}
	return 0
}

// Columns returns the column names.
func (f *Frame) Columns() []string {
	if t := f.Table(); t != nil {
		return t.Names()
	}
	return nil
}
