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

package tbl

import (
	"parqcel/datatable"
	"parqcel/datatable/filter"
)

// Expr is a row predicate built from Col.
type Expr struct {
	f   datatable.Filter
	err error
}

// Column refers to a column by name inside an expression.
type Column struct {
	name string
}

// Col starts an expression on the named column.
func Col(name string) Column { return Column{name: name} }

// Lit marks a literal operand; operands are coerced to the column type.
func Lit(v interface{}) interface{} { return v }

func (c Column) pred(op datatable.FilterOp, values ...interface{}) Expr {
	p, err := filter.NewPredicate(c.name, op, values...)
	if err != nil {
		return Expr{err: err}
	}
	return Expr{f: p}
}

// Gt matches values greater than v.
func (c Column) Gt(v interface{}) Expr { return c.pred(datatable.OpGreater, v) }

// Ge matches values greater than or equal to v.
func (c Column) Ge(v interface{}) Expr { return c.pred(datatable.OpGreaterEqual, v) }

// Lt matches values less than v.
func (c Column) Lt(v interface{}) Expr { return c.pred(datatable.OpLess, v) }

// Le matches values less than or equal to v.
func (c Column) Le(v interface{}) Expr { return c.pred(datatable.OpLessEqual, v) }

// Eq matches values equal to v.
func (c Column) Eq(v interface{}) Expr { return c.pred(datatable.OpEqual, v) }

// Ne matches values different from v.
func (c Column) Ne(v interface{}) Expr { return c.pred(datatable.OpNotEqual, v) }

// Between matches values in [lo, hi]; reversed bounds are swapped.
func (c Column) Between(lo, hi interface{}) Expr { return c.pred(datatable.OpBetween, lo, hi) }

// Contains matches display text containing s.
func (c Column) Contains(s string) Expr { return c.pred(datatable.OpContains, s) }

// StartsWith matches display text starting with s.
func (c Column) StartsWith(s string) Expr { return c.pred(datatable.OpStartsWith, s) }

// EndsWith matches display text ending with s.
func (c Column) EndsWith(s string) Expr { return c.pred(datatable.OpEndsWith, s) }

// IsNull matches null cells.
func (c Column) IsNull() Expr { return c.pred(datatable.OpIsNull) }

// IsNotNull matches non-null cells.
func (c Column) IsNotNull() Expr { return c.pred(datatable.OpIsNotNull) }

// And matches rows matching both expressions.
func (e Expr) And(other Expr) Expr { return combine(filter.LogicAND, e, other) }

// Or matches rows matching either expression.
func (e Expr) Or(other Expr) Expr { return combine(filter.LogicOR, e, other) }

// Not inverts the expression.
func (e Expr) Not() Expr {
	if e.err != nil {
		return e
	}
	return Expr{f: filter.Not{Filter: e.f}}
}

// String describes the expression.
func (e Expr) String() string {
	if e.err != nil {
		return "invalid: " + e.err.Error()
	}
	if e.f == nil {
		return "true"
	}
	return e.f.Description()
}

func combine(op filter.LogicOp, a, b Expr) Expr {
	if a.err != nil {
		return a
	}
	if b.err != nil || a.f == nil {
		return b
	}
	if b.f == nil {
		return a
	}
	return Expr{f: &filter.CompositeFilter{Filters: []datatable.Filter{a.f, b.f}, Logic: op}}
}
