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

// Package filter provides row filters for tables: single column predicates,
// AND/OR composition and a small text query language.
package filter

import (
	"fmt"
	"strings"

	"parqcel/datatable"
)

// Predicate tests one column against an operator and its operands.
// Operands may be text (coerced with the column type's parser) or Go values.
type Predicate struct {
	Column   string
	Op       datatable.FilterOp
	Operands []interface{}

	// compiled matcher, keyed by the column type it was compiled for
	match     func(datatable.Value) bool
	matchType datatable.ColumnType
}

// NewPredicate builds a predicate and checks the operand count.
func NewPredicate(column string, op datatable.FilterOp, operands ...interface{}) (*Predicate, error) {
	if _, err := datatable.ParseFilterOp(op.String()); err != nil {
		return nil, err
	}
	if want := op.Arity(); len(operands) != want {
		if op == datatable.OpBetween {
			return nil, fmt.Errorf("%w: between requires exactly two values, got %d", datatable.ErrFilterOperator, len(operands))
		}
		return nil, fmt.Errorf("%w: %s takes %d value(s), got %d", datatable.ErrFilterOperator, op, want, len(operands))
	}
	return &Predicate{Column: column, Op: op, Operands: operands}, nil
}

// Columns returns the single column the predicate tests.
func (p *Predicate) Columns() []string { return []string{p.Column} }

// Compile returns a matcher for values of the given column type.
// Comparison operands are coerced to the column type; between bounds are
// put in ascending order.
func (p *Predicate) Compile(t datatable.ColumnType) (func(datatable.Value) bool, error) {
	switch p.Op {
	case datatable.OpIsNull:
		return func(v datatable.Value) bool { return v.IsNull }, nil
	case datatable.OpIsNotNull:
		return func(v datatable.Value) bool { return !v.IsNull }, nil
	}

	if p.Op.IsText() {
		needle := operandText(p.Operands[0])
		var test func(string, string) bool
		switch p.Op {
		case datatable.OpContains:
			test = strings.Contains
		case datatable.OpStartsWith:
			test = strings.HasPrefix
		default:
			test = strings.HasSuffix
		}
		return func(v datatable.Value) bool {
			return !v.IsNull && test(v.Formatted, needle)
		}, nil
	}

	bounds := make([]interface{}, len(p.Operands))
	for i, operand := range p.Operands {
		raw, err := t.Coerce(operand)
		if err != nil {
			return nil, fmt.Errorf("filter on %q: %w", p.Column, err)
		}
		if raw == nil {
			return nil, fmt.Errorf("%w: filter on %q needs a non-empty value", datatable.ErrTypeCoercion, p.Column)
		}
		bounds[i] = raw
	}

	var keep func(c int) bool
	switch p.Op {
	case datatable.OpLess:
		keep = func(c int) bool { return c < 0 }
	case datatable.OpLessEqual:
		keep = func(c int) bool { return c <= 0 }
	case datatable.OpEqual:
		keep = func(c int) bool { return c == 0 }
	case datatable.OpNotEqual:
		keep = func(c int) bool { return c != 0 }
	case datatable.OpGreater:
		keep = func(c int) bool { return c > 0 }
	case datatable.OpGreaterEqual:
		keep = func(c int) bool { return c >= 0 }
	case datatable.OpBetween:
		lo, hi := bounds[0], bounds[1]
		if t.Compare(lo, hi) > 0 {
			lo, hi = hi, lo
		}
		return func(v datatable.Value) bool {
			if v.IsNull {
				return false
			}
			return t.Compare(v.Raw, lo) >= 0 && t.Compare(v.Raw, hi) <= 0
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", datatable.ErrFilterOperator, p.Op)
	}

	operand := bounds[0]
	return func(v datatable.Value) bool {
		if v.IsNull {
			return false
		}
		return keep(t.Compare(v.Raw, operand))
	}, nil
}

// Evaluate implements the Filter interface.
func (p *Predicate) Evaluate(row []datatable.Value, columnNames []string) (bool, error) {
	idx := -1
	for i, name := range columnNames {
		if name == p.Column {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(row) {
		return false, fmt.Errorf("%w: %s", datatable.ErrColumnNotFound, p.Column)
	}

	v := row[idx]
	if p.match == nil || p.matchType != v.Type {
		m, err := p.Compile(v.Type)
		if err != nil {
			return false, err
		}
		p.match, p.matchType = m, v.Type
	}
	return p.match(v), nil
}

// Description implements the Filter interface.
func (p *Predicate) Description() string {
	switch len(p.Operands) {
	case 0:
		return fmt.Sprintf("%s %s", p.Column, p.Op)
	case 2:
		return fmt.Sprintf("%s between %s and %s", p.Column, operandText(p.Operands[0]), operandText(p.Operands[1]))
	default:
		return fmt.Sprintf("%s %s %s", p.Column, p.Op, operandText(p.Operands[0]))
	}
}

func operandText(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := datatable.TypeUtf8.Coerce(v)
	if err != nil || raw == nil {
		return fmt.Sprint(v)
	}
	return raw.(string)
}
