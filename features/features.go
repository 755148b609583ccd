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

// Package features turns table columns into numeric feature matrices:
// scaled numeric columns, one-hot encoded categories and TF-IDF weighted
// terms. The matrices can be appended to the table or projected onto their
// principal components.
package features

import (
	"fmt"
	"sort"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"parqcel/datatable"
	"parqcel/frame"
)

// MaxCategories is the largest number of distinct values a text column may
// have and still be one-hot encoded. Columns with more are treated as text.
const MaxCategories = 50

// DefaultMaxTerms bounds the TF-IDF vocabulary of each text column.
const DefaultMaxTerms = 200

// Scaling selects how numeric columns are rescaled.
type Scaling int

const (
	// ScaleStandard centers to mean 0 and scales to unit variance.
	ScaleStandard Scaling = iota
	// ScaleMinMax maps the column range onto [0, 1].
	ScaleMinMax
	// ScaleNone keeps the values.
	ScaleNone
)

var scalingNames = map[Scaling]string{
	ScaleStandard: "standard",
	ScaleMinMax:   "minmax",
	ScaleNone:     "none",
}

func (s Scaling) String() string {
	if name, ok := scalingNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// ParseScaling resolves "standard", "minmax" or "none". Empty text selects
// standard scaling.
func ParseScaling(name string) (Scaling, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	if norm == "" {
		return ScaleStandard, nil
	}
	for s, n := range scalingNames {
		if n == norm {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown scaling %q", datatable.ErrFeatures, name)
}

// Kinds groups column names by how they are featurized.
type Kinds struct {
	Numeric     []string
	Categorical []string
	Text        []string
}

// Detect sorts the columns of t: Int64 and Float64 columns are numeric,
// text columns with at most MaxCategories distinct values are categorical
// and other text columns are free text. Remaining types are skipped.
func Detect(t *frame.Table) Kinds {
	var k Kinds
	for i, f := range t.Fields() {
		switch f.Type {
		case datatable.TypeInt64, datatable.TypeFloat64:
			k.Numeric = append(k.Numeric, f.Name)
		case datatable.TypeUtf8, datatable.TypeCategorical:
			if len(categories(t.ColumnValues(i), f.Type)) <= MaxCategories {
				k.Categorical = append(k.Categorical, f.Name)
			} else {
				k.Text = append(k.Text, f.Name)
			}
		}
	}
	return k
}

// Options selects columns and transformations. Nil column lists are taken
// from Detect; an empty, non-nil list selects no columns of that kind.
type Options struct {
	Numeric     []string
	Categorical []string
	Text        []string
	Scale       Scaling
	OneHot      bool
	MaxTerms    int
}

// DefaultOptions featurizes every detected column with standard scaling,
// one-hot encoding and DefaultMaxTerms terms per text column.
func DefaultOptions() Options {
	return Options{Scale: ScaleStandard, OneHot: true, MaxTerms: DefaultMaxTerms}
}

// Matrix is a dense feature matrix stored column by column.
type Matrix struct {
	Names   []string
	Columns [][]float64
	Rows    int
}

func (m *Matrix) add(name string, values []float64) {
	m.Names = append(m.Names, name)
	m.Columns = append(m.Columns, values)
}

// Dense returns the matrix as rows x features.
func (m *Matrix) Dense() (*mat.Dense, error) {
	if m.Rows == 0 || len(m.Columns) == 0 {
		return nil, fmt.Errorf("%w: matrix is %d x %d", datatable.ErrFeatures, m.Rows, len(m.Columns))
	}
	d := mat.NewDense(m.Rows, len(m.Columns), nil)
	for j, col := range m.Columns {
		d.SetCol(j, col)
	}
	return d, nil
}

// Table returns the features as Float64 columns.
func (m *Matrix) Table() (*frame.Table, error) {
	fields := make([]frame.Field, len(m.Names))
	cols := make([]arrow.Array, len(m.Columns))
	for j, values := range m.Columns {
		fields[j] = frame.Field{Name: m.Names[j], Type: datatable.TypeFloat64}
		b := frame.NewColumnBuilder(datatable.TypeFloat64)
		b.Reserve(len(values))
		for _, v := range values {
			if err := b.Append(v); err != nil {
				return nil, err
			}
		}
		cols[j] = b.Finish()
	}
	return frame.New(fields, cols)
}

// Generate builds the feature matrix of t. Numeric features are named
// column__scaling, one-hot features column_value and text features
// column__tfidf__term.
func Generate(t *frame.Table, opts Options) (*Matrix, error) {
	detected := Detect(t)
	pick := func(given, found []string) []string {
		if given == nil {
			return found
		}
		return given
	}
	numeric := pick(opts.Numeric, detected.Numeric)
	categorical := pick(opts.Categorical, detected.Categorical)
	text := pick(opts.Text, detected.Text)
	maxTerms := opts.MaxTerms
	if maxTerms <= 0 {
		maxTerms = DefaultMaxTerms
	}

	m := &Matrix{Rows: t.NumRows()}
	for _, name := range numeric {
		values, err := numericColumn(t, name)
		if err != nil {
			return nil, err
		}
		m.add(name+"__"+opts.Scale.String(), scale(values, opts.Scale))
	}
	if opts.OneHot {
		for _, name := range categorical {
			if err := oneHot(m, t, name); err != nil {
				return nil, err
			}
		}
	}
	for _, name := range text {
		idx, f, err := textColumn(t, name)
		if err != nil {
			return nil, err
		}
		docs := make([]string, t.NumRows())
		for r, raw := range t.ColumnValues(idx) {
			if raw != nil {
				docs[r] = datatable.FormatRaw(raw, f.Type)
			}
		}
		terms, weights := tfidf(docs, maxTerms)
		for i, term := range terms {
			m.add(name+"__tfidf__"+term, weights[i])
		}
	}
	return m, nil
}

// AddToTable returns t with the columns of m appended.
func AddToTable(t *frame.Table, m *Matrix) (*frame.Table, error) {
	if t.NumCols() > 0 && t.NumRows() != m.Rows {
		return nil, fmt.Errorf("%w: %d feature rows for a table of %d rows", datatable.ErrInvalidRow, m.Rows, t.NumRows())
	}
	ft, err := m.Table()
	if err != nil {
		return nil, err
	}
	fields := append(t.Fields(), ft.Fields()...)
	cols := make([]arrow.Array, 0, len(fields))
	for i := 0; i < t.NumCols(); i++ {
		cols = append(cols, t.Column(i))
	}
	for i := 0; i < ft.NumCols(); i++ {
		cols = append(cols, ft.Column(i))
	}
	return frame.New(fields, cols)
}

// Featurize generates features for t and appends them.
func Featurize(t *frame.Table, opts Options) (*frame.Table, error) {
	m, err := Generate(t, opts)
	if err != nil {
		return nil, err
	}
	return AddToTable(t, m)
}

func lookup(t *frame.Table, name string) (int, frame.Field, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return -1, frame.Field{}, fmt.Errorf("%w: %s", datatable.ErrColumnNotFound, name)
	}
	return idx, t.Field(idx), nil
}

// numericColumn reads a numeric column as floats. Nulls are replaced by the
// mean of the other values, or 0 when the column has none.
func numericColumn(t *frame.Table, name string) ([]float64, error) {
	idx, f, err := lookup(t, name)
	if err != nil {
		return nil, err
	}
	if f.Type != datatable.TypeInt64 && f.Type != datatable.TypeFloat64 {
		return nil, fmt.Errorf("%w: %s is %s, not numeric", datatable.ErrFeatures, name, f.Type)
	}

	raws := t.ColumnValues(idx)
	values := make([]float64, len(raws))
	present := make([]float64, 0, len(raws))
	for i, raw := range raws {
		switch v := raw.(type) {
		case int64:
			values[i] = float64(v)
		case float64:
			values[i] = v
		default:
			continue
		}
		present = append(present, values[i])
	}
	if len(present) < len(raws) {
		fill := 0.0
		if len(present) > 0 {
			fill = stat.Mean(present, nil)
		}
		for i, raw := range raws {
			if raw == nil {
				values[i] = fill
			}
		}
	}
	return values, nil
}

func scale(values []float64, s Scaling) []float64 {
	if len(values) == 0 {
		return values
	}
	switch s {
	case ScaleStandard:
		mean, std := stat.PopMeanStdDev(values, nil)
		if std == 0 {
			std = 1
		}
		for i := range values {
			values[i] = (values[i] - mean) / std
		}
	case ScaleMinMax:
		lo, hi := floats.Min(values), floats.Max(values)
		span := hi - lo
		if span == 0 {
			span = 1
		}
		for i := range values {
			values[i] = (values[i] - lo) / span
		}
	}
	return values
}

func textColumn(t *frame.Table, name string) (int, frame.Field, error) {
	idx, f, err := lookup(t, name)
	if err != nil {
		return -1, f, err
	}
	if !f.Type.IsText() {
		return -1, f, fmt.Errorf("%w: %s is %s, not text", datatable.ErrFeatures, name, f.Type)
	}
	return idx, f, nil
}

// oneHot adds one 0/1 column per distinct value, named column_value, in
// sorted value order. Null cells are 0 in every column.
func oneHot(m *Matrix, t *frame.Table, name string) error {
	idx, f, err := textColumn(t, name)
	if err != nil {
		return err
	}
	raws := t.ColumnValues(idx)
	for _, category := range categories(raws, f.Type) {
		values := make([]float64, len(raws))
		for i, raw := range raws {
			if raw != nil && datatable.FormatRaw(raw, f.Type) == category {
				values[i] = 1
			}
		}
		m.add(name+"_"+category, values)
	}
	return nil
}

// categories returns the sorted distinct non-null display values.
func categories(raws []interface{}, typ datatable.ColumnType) []string {
	seen := make(map[string]struct{})
	for _, raw := range raws {
		if raw != nil {
			seen[datatable.FormatRaw(raw, typ)] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
