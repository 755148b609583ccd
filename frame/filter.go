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
	"parqcel/datatable"
	"parqcel/datatable/filter"
)

// Filter keeps the rows whose value in column satisfies op. Comparison
// operands are coerced to the column type, between bounds are inclusive and
// may be given in either order, and null cells never match.
func (t *Table) Filter(column string, op datatable.FilterOp, values ...interface{}) (*Table, error) {
	idx, err := t.lookup(column)
	if err != nil {
		return nil, err
	}
	p, err := filter.NewPredicate(column, op, values...)
	if err != nil {
		return nil, err
	}
	typ := t.fields[idx].Type
	match, err := p.Compile(typ)
	if err != nil {
		return nil, err
	}

	keep := make([]int, 0, t.rows)
	arr := t.cols[idx]
	for r := 0; r < t.rows; r++ {
		if match(datatable.NewValue(valueAt(arr, r), typ)) {
			keep = append(keep, r)
		}
	}
	return t.Take(keep)
}

// Where keeps the rows for which f holds. Every column f names must exist,
// even when the table has no rows to test.
func (t *Table) Where(f datatable.Filter) (*Table, error) {
	if f == nil {
		return t, nil
	}
	for _, name := range filter.Columns(f) {
		if _, err := t.lookup(name); err != nil {
			return nil, err
		}
	}
	names := t.Names()
	keep := make([]int, 0, t.rows)
	for r := 0; r < t.rows; r++ {
		row, err := t.Row(r)
		if err != nil {
			return nil, err
		}
		ok, err := f.Evaluate(row, names)
		if err != nil {
			return nil, err
		}
		if ok {
			keep = append(keep, r)
		}
	}
	return t.Take(keep)
}
