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

package filter

import (
	"fmt"
	"strings"

	"parqcel/datatable"
)

// QueryParser turns search expressions such as
//
//	age >= 30 AND city = Paris OR name ~ ann
//
// into filters. AND binds tighter than OR. An expression without an operator
// matches rows where any cell contains the text.
type QueryParser struct {
	columnMap map[string]string // lower-cased name -> real column name
}

// queryOperators are tried in order, longer symbols before their prefixes.
var queryOperators = []struct {
	symbol string
	op     datatable.FilterOp
}{
	{">=", datatable.OpGreaterEqual},
	{"<=", datatable.OpLessEqual},
	{"!=", datatable.OpNotEqual},
	{"^=", datatable.OpStartsWith},
	{"$=", datatable.OpEndsWith},
	{"==", datatable.OpEqual},
	{"=", datatable.OpEqual},
	{">", datatable.OpGreater},
	{"<", datatable.OpLess},
	{"~", datatable.OpContains},
}

// NewQueryParser creates a new query parser with column name mapping.
func NewQueryParser(headers []string) *QueryParser {
	columnMap := make(map[string]string, len(headers))
	for _, header := range headers {
		columnMap[strings.ToLower(header)] = header
	}
	return &QueryParser{columnMap: columnMap}
}

// Parse parses a query string. An empty query yields a nil filter.
func (qp *QueryParser) Parse(queryStr string) (datatable.Filter, error) {
	if strings.TrimSpace(queryStr) == "" {
		return nil, nil
	}

	parts := splitByLogicOps(queryStr)

	var (
		groups   []datatable.Filter
		current  []datatable.Filter
		expectOp bool
	)
	closeGroup := func() {
		if len(current) == 1 {
			groups = append(groups, current[0])
		} else {
			groups = append(groups, And(current...))
		}
		current = nil
	}

	for _, part := range parts {
		if part.isOperator {
			if !expectOp {
				return nil, fmt.Errorf("%w: %s without a preceding expression", datatable.ErrFilterOperator, part.text)
			}
			if part.text == "OR" {
				closeGroup()
			}
			expectOp = false
			continue
		}
		if expectOp {
			return nil, fmt.Errorf("%w: missing AND/OR before %q", datatable.ErrFilterOperator, part.text)
		}
		f, err := qp.parseExpression(part.text)
		if err != nil {
			return nil, err
		}
		current = append(current, f)
		expectOp = true
	}
	if !expectOp {
		return nil, fmt.Errorf("%w: query ends with an operator", datatable.ErrFilterOperator)
	}
	closeGroup()

	if len(groups) == 1 {
		return groups[0], nil
	}
	return Or(groups...), nil
}

type queryPart struct {
	text       string
	isOperator bool
}

// splitByLogicOps splits query by AND/OR while preserving the operators.
// Quoted values are never split.
func splitByLogicOps(query string) []queryPart {
	var (
		parts   []queryPart
		current strings.Builder
		quote   byte
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			parts = append(parts, queryPart{text: s})
		}
		current.Reset()
	}

	for i := 0; i < len(query); {
		c := query[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			current.WriteByte(c)
			i++
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			current.WriteByte(c)
			i++
			continue
		}
		if word := logicWordAt(query, i); word != "" {
			flush()
			parts = append(parts, queryPart{text: word, isOperator: true})
			i += len(word)
			continue
		}
		current.WriteByte(c)
		i++
	}
	flush()
	return parts
}

// logicWordAt returns "AND" or "OR" when one starts at i on word boundaries.
func logicWordAt(s string, i int) string {
	for _, word := range []string{"AND", "OR"} {
		end := i + len(word)
		if end > len(s) || !strings.EqualFold(s[i:end], word) {
			continue
		}
		if (i == 0 || isWhitespace(s[i-1])) && (end == len(s) || isWhitespace(s[end])) {
			return word
		}
	}
	return ""
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// parseExpression parses a single expression like "column = value".
func (qp *QueryParser) parseExpression(exprStr string) (datatable.Filter, error) {
	exprStr = strings.TrimSpace(exprStr)

	lower := strings.ToLower(exprStr)
	for _, suffix := range []struct {
		text string
		op   datatable.FilterOp
	}{{" is not null", datatable.OpIsNotNull}, {" is null", datatable.OpIsNull}} {
		if strings.HasSuffix(lower, suffix.text) {
			column, err := qp.column(exprStr[:len(exprStr)-len(suffix.text)])
			if err != nil {
				return nil, err
			}
			return NewPredicate(column, suffix.op)
		}
	}

	for _, opInfo := range queryOperators {
		idx := strings.Index(exprStr, opInfo.symbol)
		if idx <= 0 {
			continue
		}
		column, err := qp.column(exprStr[:idx])
		if err != nil {
			return nil, err
		}
		value := strings.TrimSpace(exprStr[idx+len(opInfo.symbol):])
		value = strings.Trim(value, "\"'")
		return NewPredicate(column, opInfo.op, value)
	}

	return AnyColumn{Term: strings.Trim(exprStr, "\"'")}, nil
}

func (qp *QueryParser) column(name string) (string, error) {
	name = strings.TrimSpace(name)
	real, ok := qp.columnMap[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: %s", datatable.ErrColumnNotFound, name)
	}
	return real, nil
}
