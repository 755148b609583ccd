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

package datatable

import (
	"fmt"
	"strings"
)

// Filter decides whether a row is kept.
type Filter interface {
	// Evaluate reports whether the row passes. columnNames is parallel to row.
	Evaluate(row []Value, columnNames []string) (bool, error)

	// Description returns a human readable form of the filter.
	Description() string
}

// FilterOp is a comparison or text operator used by column filters.
type FilterOp int

const (
	OpLess FilterOp = iota
	OpLessEqual
	OpEqual
	OpGreater
	OpGreaterEqual
	OpBetween
	OpContains
	OpStartsWith
	OpEndsWith
	OpNotEqual
	OpIsNull
	OpIsNotNull
)

var filterOpSymbols = map[FilterOp]string{
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpEqual:        "==",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpBetween:      "between",
	OpContains:     "contains",
	OpStartsWith:   "starts_with",
	OpEndsWith:     "ends_with",
	OpNotEqual:     "!=",
	OpIsNull:       "is_null",
	OpIsNotNull:    "is_not_null",
}

// String returns the operator symbol.
func (op FilterOp) String() string {
	if s, ok := filterOpSymbols[op]; ok {
		return s
	}
	return fmt.Sprintf("unknown(%d)", int(op))
}

// Arity returns how many operand values the operator takes.
func (op FilterOp) Arity() int {
	switch op {
	case OpBetween:
		return 2
	case OpIsNull, OpIsNotNull:
		return 0
	default:
		return 1
	}
}

// IsText reports whether the operator tests the display text of a cell.
func (op FilterOp) IsText() bool {
	return op == OpContains || op == OpStartsWith || op == OpEndsWith
}

// ParseFilterOp resolves an operator symbol. "=" and spaced spellings such as
// "starts with" are accepted as well.
func ParseFilterOp(s string) (FilterOp, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, " ", "_")
	if norm == "=" {
		return OpEqual, nil
	}
	for op, sym := range filterOpSymbols {
		if sym == norm {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrFilterOperator, s)
}
