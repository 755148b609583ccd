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
	"slices"
	"strings"

	"parqcel/datatable"
)

// SortKey names a sort column and its direction.
type SortKey struct {
	Column     string
	Descending bool
}

func (k SortKey) String() string {
	if k.Descending {
		return k.Column + " desc"
	}
	return k.Column + " asc"
}

// ParseSortKey reads "name", "name:desc" or "name:asc".
func ParseSortKey(s string) SortKey {
	name, dir, found := strings.Cut(s, ":")
	if !found {
		return SortKey{Column: s}
	}
	return SortKey{Column: name, Descending: strings.EqualFold(strings.TrimSpace(dir), "desc")}
}

// Sort orders rows by the keys, first key primary. The sort is stable and
// nulls come first in either direction. With no keys the table is returned
// unchanged.
func (t *Table) Sort(keys ...SortKey) (*Table, error) {
	type column struct {
		typ    datatable.ColumnType
		values []interface{}
		desc   bool
	}

	cols := make([]column, len(keys))
	for i, k := range keys {
		idx := t.ColumnIndex(k.Column)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", datatable.ErrColumnNotFound, k.Column)
		}
		cols[i] = column{typ: t.fields[idx].Type, values: t.ColumnValues(idx), desc: k.Descending}
	}
	if len(keys) == 0 {
		return t, nil
	}

	order := make([]int, t.rows)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		for _, c := range cols {
			x, y := c.values[a], c.values[b]
			switch {
			case x == nil && y == nil:
				continue
			case x == nil:
				return -1
			case y == nil:
				return 1
			}
			r := c.typ.Compare(x, y)
			if c.desc {
				r = -r
			}
			if r != 0 {
				return r
			}
		}
		return 0
	})

	return t.Take(order)
}
