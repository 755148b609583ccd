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
	"math"
	"time"

	"parqcel/datatable"
)

// converter turns the raw values of a column into raw values of another type.
type converter func(values []interface{}, from, to datatable.ColumnType) ([]interface{}, error)

type conversion struct {
	from, to datatable.ColumnType
}

var (
	textTypes     = []datatable.ColumnType{datatable.TypeUtf8, datatable.TypeCategorical}
	numericTypes  = []datatable.ColumnType{datatable.TypeInt64, datatable.TypeFloat64}
	temporalTypes = []datatable.ColumnType{datatable.TypeDate, datatable.TypeDatetime}
)

// conversions is the dispatch table of supported (from, to) pairs.
var conversions = buildConversions()

func buildConversions() map[conversion]converter {
	m := make(map[conversion]converter)
	set := func(froms []datatable.ColumnType, tos []datatable.ColumnType, fn converter) {
		for _, from := range froms {
			for _, to := range tos {
				m[conversion{from, to}] = fn
			}
		}
	}
	all := datatable.ColumnTypes()

	set(all, textTypes, toText)
	set(textTypes, []datatable.ColumnType{datatable.TypeInt64, datatable.TypeFloat64, datatable.TypeBoolean}, parseStrict)
	set(textTypes, temporalTypes, func(values []interface{}, _, to datatable.ColumnType) ([]interface{}, error) {
		out, _ := ParseDates(values, to)
		return out, nil
	})
	set(numericTypes, numericTypes, perValue(numberToNumber))
	set(numericTypes, []datatable.ColumnType{datatable.TypeBoolean}, perValue(numberToBool))
	set([]datatable.ColumnType{datatable.TypeBoolean}, numericTypes, perValue(boolToNumber))
	set(temporalTypes, temporalTypes, perValue(temporalToTemporal))
	return m
}

// CanConvert reports whether a column of type from can be cast to to.
func CanConvert(from, to datatable.ColumnType) bool {
	if from == to {
		return true
	}
	_, ok := conversions[conversion{from, to}]
	return ok
}

// ConvertColumnType casts the named column to target.
func (t *Table) ConvertColumnType(name string, target datatable.ColumnType) (*Table, error) {
	idx, err := t.lookup(name)
	if err != nil {
		return nil, err
	}
	f := t.fields[idx]
	if f.Type == target {
		return t, nil
	}
	fn, ok := conversions[conversion{f.Type, target}]
	if !ok {
		return nil, fmt.Errorf("%w: %s from %s to %s", datatable.ErrConversion, name, f.Type, target)
	}

	values, err := fn(t.ColumnValues(idx), f.Type, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s from %s to %s: %w", datatable.ErrConversion, name, f.Type, target, err)
	}
	return t.withColumn(idx, Field{Name: f.Name, Type: target}, buildColumn(target, values)), nil
}

func perValue(fn func(raw interface{}, to datatable.ColumnType) (interface{}, error)) converter {
	return func(values []interface{}, _, to datatable.ColumnType) ([]interface{}, error) {
		out := make([]interface{}, len(values))
		for i, v := range values {
			if v == nil {
				continue
			}
			c, err := fn(v, to)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	}
}

func toText(values []interface{}, from, _ datatable.ColumnType) ([]interface{}, error) {
	out := make([]interface{}, len(values))
	for i, v := range values {
		if v != nil {
			out[i] = datatable.FormatRaw(v, from)
		}
	}
	return out, nil
}

func parseStrict(values []interface{}, _, to datatable.ColumnType) ([]interface{}, error) {
	out := make([]interface{}, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		raw, err := to.Parse(v.(string))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = raw
	}
	return out, nil
}

func numberToNumber(raw interface{}, to datatable.ColumnType) (interface{}, error) {
	switch x := raw.(type) {
	case int64:
		if to == datatable.TypeFloat64 {
			return float64(x), nil
		}
		return x, nil
	case float64:
		if to == datatable.TypeFloat64 {
			return x, nil
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%v has no integer value", x)
		}
		tr := math.Trunc(x)
		if tr < math.MinInt64 || tr >= math.MaxInt64 {
			return nil, fmt.Errorf("%v overflows Int64", x)
		}
		return int64(tr), nil
	}
	return nil, fmt.Errorf("unexpected %T", raw)
}

func numberToBool(raw interface{}, _ datatable.ColumnType) (interface{}, error) {
	switch x := raw.(type) {
	case int64:
		return x != 0, nil
	case float64:
		return x != 0, nil
	}
	return nil, fmt.Errorf("unexpected %T", raw)
}

func boolToNumber(raw interface{}, to datatable.ColumnType) (interface{}, error) {
	var n int64
	if raw.(bool) {
		n = 1
	}
	if to == datatable.TypeFloat64 {
		return float64(n), nil
	}
	return n, nil
}

func temporalToTemporal(raw interface{}, to datatable.ColumnType) (interface{}, error) {
	ts := raw.(time.Time)
	if to == datatable.TypeDate {
		y, m, d := ts.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return ts, nil
}
