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

// Package stats summarises a single column for the statistics view.
package stats

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"parqcel/datatable"
	"parqcel/frame"
)

// Share is the fraction of rows holding one distinct text value.
type Share struct {
	Value   string
	Count   int
	Percent float64
}

// Numeric holds the moments of a numeric column. Nulls are ignored.
type Numeric struct {
	Min, Max  float64
	Mean      float64
	Median    float64
	StdDev    float64
	Variance  float64
	Count     int
	IsInteger bool
}

// Report is the statistics of one column. Exactly one of Text and Numeric is
// set for supported types.
type Report struct {
	Column string
	Type   datatable.ColumnType
	Rows   int
	Nulls  int

	Unique  int
	Blanks  int
	Shares  []Share
	Numeric *Numeric
}

// Supported reports whether a column type has statistics.
func Supported(t datatable.ColumnType) bool {
	return t.IsText() || t == datatable.TypeInt64 || t == datatable.TypeFloat64
}

// Column computes the report for the named column.
func Column(t *frame.Table, name string) (*Report, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", datatable.ErrColumnNotFound, name)
	}
	f := t.Field(idx)
	r := &Report{Column: f.Name, Type: f.Type, Rows: t.NumRows()}
	values := t.ColumnValues(idx)

	switch {
	case f.Type.IsText():
		r.textStats(values)
	case f.Type == datatable.TypeInt64 || f.Type == datatable.TypeFloat64:
		r.numericStats(values, f.Type == datatable.TypeInt64)
	default:
		for _, v := range values {
			if v == nil {
				r.Nulls++
			}
		}
	}
	return r, nil
}

func (r *Report) textStats(values []interface{}) {
	counts := make(map[string]int)
	nullKey := "\x00null"
	for _, v := range values {
		if v == nil {
			r.Nulls++
			counts[nullKey]++
			continue
		}
		s := v.(string)
		if s == "" {
			r.Blanks++
		}
		counts[s]++
	}
	r.Unique = len(counts)

	for k, n := range counts {
		label := k
		if k == nullKey {
			label = "null"
		}
		r.Shares = append(r.Shares, Share{Value: label, Count: n, Percent: float64(n) / float64(r.Rows) * 100})
	}
	slices.SortFunc(r.Shares, func(a, b Share) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Value, b.Value)
	})
}

func (r *Report) numericStats(values []interface{}, integer bool) {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		switch x := v.(type) {
		case nil:
			r.Nulls++
		case int64:
			xs = append(xs, float64(x))
		case float64:
			if !math.IsNaN(x) {
				xs = append(xs, x)
			}
		}
	}
	n := &Numeric{Count: len(xs), IsInteger: integer, Mean: math.NaN(), Median: math.NaN(),
		StdDev: math.NaN(), Variance: math.NaN(), Min: math.NaN(), Max: math.NaN()}
	r.Numeric = n
	if len(xs) == 0 {
		return
	}

	slices.Sort(xs)
	n.Min, n.Max = xs[0], xs[len(xs)-1]

	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	n.Mean = sum / float64(len(xs))

	mid := len(xs) / 2
	if len(xs)%2 == 1 {
		n.Median = xs[mid]
	} else {
		n.Median = (xs[mid-1] + xs[mid]) / 2
	}

	// sample variance, undefined for a single value
	if len(xs) > 1 {
		ss := 0.0
		for _, x := range xs {
			d := x - n.Mean
			ss += d * d
		}
		n.Variance = ss / float64(len(xs)-1)
		n.StdDev = math.Sqrt(n.Variance)
	}
}

// String renders the report the way the statistics dialog shows it.
func (r *Report) String() string {
	var sb strings.Builder
	switch {
	case r.Numeric != nil:
		n := r.Numeric
		fmt.Fprintf(&sb, "Min: %s\n", r.number(n.Min))
		fmt.Fprintf(&sb, "Max: %s\n", r.number(n.Max))
		fmt.Fprintf(&sb, "Mean: %.2f\n", n.Mean)
		fmt.Fprintf(&sb, "Median: %s\n", datatable.FormatFloat(n.Median))
		fmt.Fprintf(&sb, "Std Dev: %.2f\n", n.StdDev)
		fmt.Fprintf(&sb, "Variance: %.2f\n", n.Variance)
		fmt.Fprintf(&sb, "Nulls: %d\n", r.Nulls)
	case r.Type.IsText():
		fmt.Fprintf(&sb, "Unique Values: %d\n", r.Unique)
		fmt.Fprintf(&sb, "Blanks: %d\n", r.Blanks)
		fmt.Fprintf(&sb, "Nulls: %d\n", r.Nulls)
		for _, s := range r.Shares {
			fmt.Fprintf(&sb, "'%s': %.2f%%\n", s.Value, s.Percent)
		}
	default:
		sb.WriteString("Statistics not supported for this column type.")
	}
	return sb.String()
}

func (r *Report) number(f float64) string {
	if r.Numeric.IsInteger && !math.IsNaN(f) {
		return fmt.Sprintf("%d", int64(f))
	}
	return datatable.FormatFloat(f)
}
