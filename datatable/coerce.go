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
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Display layouts for temporal values.
const (
	DateLayout     = "2006-01-02"
	DatetimeLayout = "2006-01-02 15:04:05.999999"
)

// isoDatetimeLayouts are tried in order when coercing text to a Datetime.
// Fractional seconds after the seconds field are accepted by time.Parse.
var isoDatetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	DateLayout,
}

// typeOps is the per-type behaviour used for coercion, display and ordering.
type typeOps struct {
	name string
	// parse converts user text to the raw representation.
	parse func(text string) (interface{}, error)
	// coerce converts an arbitrary Go value to the raw representation.
	coerce func(v interface{}) (interface{}, error)
	// format renders a raw value for display.
	format func(raw interface{}) string
	// compare orders two raw values of this type.
	compare func(a, b interface{}) int
}

var typeTable = [typeCount]typeOps{
	TypeInt64: {
		name: "Int64",
		parse: func(text string) (interface{}, error) {
			return strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		},
		coerce:  coerceInt,
		format:  func(raw interface{}) string { return strconv.FormatInt(raw.(int64), 10) },
		compare: func(a, b interface{}) int { return cmp.Compare(a.(int64), b.(int64)) },
	},
	TypeFloat64: {
		name: "Float64",
		parse: func(text string) (interface{}, error) {
			return strconv.ParseFloat(strings.TrimSpace(text), 64)
		},
		coerce:  coerceFloat,
		format:  func(raw interface{}) string { return FormatFloat(raw.(float64)) },
		compare: func(a, b interface{}) int { return cmp.Compare(a.(float64), b.(float64)) },
	},
	TypeUtf8: {
		name:    "Utf8",
		parse:   func(text string) (interface{}, error) { return text, nil },
		coerce:  coerceText,
		format:  func(raw interface{}) string { return raw.(string) },
		compare: func(a, b interface{}) int { return strings.Compare(a.(string), b.(string)) },
	},
	TypeBoolean: {
		name:    "Boolean",
		parse:   func(text string) (interface{}, error) { return ParseBool(text) },
		coerce:  coerceBool,
		format:  func(raw interface{}) string { return strconv.FormatBool(raw.(bool)) },
		compare: compareBool,
	},
	TypeDate: {
		name: "Date",
		parse: func(text string) (interface{}, error) {
			t, err := time.Parse(DateLayout, strings.TrimSpace(text))
			if err != nil {
				return nil, err
			}
			return t, nil
		},
		coerce:  coerceDate,
		format:  func(raw interface{}) string { return raw.(time.Time).Format(DateLayout) },
		compare: compareTime,
	},
	TypeDatetime: {
		name: "Datetime",
		parse: func(text string) (interface{}, error) {
			return ParseISODatetime(text)
		},
		coerce:  coerceDatetime,
		format:  func(raw interface{}) string { return raw.(time.Time).Format(DatetimeLayout) },
		compare: compareTime,
	},
	TypeCategorical: {
		name:    "Categorical",
		parse:   func(text string) (interface{}, error) { return text, nil },
		coerce:  coerceText,
		format:  func(raw interface{}) string { return raw.(string) },
		compare: func(a, b interface{}) int { return strings.Compare(a.(string), b.(string)) },
	},
}

// Parse coerces user-entered text to the raw representation of t.
// Empty text on a non-text column yields a nil raw value (null).
func (t ColumnType) Parse(text string) (interface{}, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown column type %d", ErrTypeCoercion, int(t))
	}
	if !t.IsText() && strings.TrimSpace(text) == "" {
		return nil, nil
	}
	raw, err := typeTable[t].parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid %s", ErrTypeCoercion, text, t)
	}
	return raw, nil
}

// Coerce converts a Go value (int, float, string, bool, time.Time) to the
// raw representation of t. Strings go through Parse.
func (t ColumnType) Coerce(v interface{}) (interface{}, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown column type %d", ErrTypeCoercion, int(t))
	}
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		return t.Parse(s)
	}
	raw, err := typeTable[t].coerce(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (%T) cannot be used as %s", ErrTypeCoercion, v, v, t)
	}
	return raw, nil
}

// Compare orders two raw values of type t. Nil sorts before any value.
func (t ColumnType) Compare(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return typeTable[t].compare(a, b)
}

// ParseBool accepts true/false, 1/0, yes/no, y/n and t/f in any case.
func ParseBool(text string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "t", "1", "yes", "y":
		return true, nil
	case "false", "f", "0", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", text)
}

// ParseISODatetime parses ISO-8601 style datetimes, normalising zoned values to UTC.
func ParseISODatetime(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	var lastErr error
	for _, layout := range isoDatetimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// FormatFloat renders floats without exponent for ordinary magnitudes.
func FormatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e15) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func coerceInt(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, fmt.Errorf("overflow")
		}
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("overflow")
		}
		return int64(x), nil
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	}
	return nil, fmt.Errorf("not an integer")
}

func floatToInt(f float64) (interface{}, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("not integral")
	}
	return int64(f), nil
}

func coerceFloat(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	}
	i, err := coerceInt(v)
	if err != nil {
		return nil, err
	}
	return float64(i.(int64)), nil
}

func coerceText(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	case time.Time:
		return x.Format(DatetimeLayout), nil
	case float64:
		return FormatFloat(x), nil
	}
	return fmt.Sprint(v), nil
}

func coerceBool(v interface{}) (interface{}, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return nil, fmt.Errorf("not a boolean")
}

func coerceDate(v interface{}) (interface{}, error) {
	if t, ok := v.(time.Time); ok {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return nil, fmt.Errorf("not a date")
}

func coerceDatetime(v interface{}) (interface{}, error) {
	if t, ok := v.(time.Time); ok {
		return t.UTC(), nil
	}
	return nil, fmt.Errorf("not a datetime")
}

func compareBool(a, b interface{}) int {
	x, y := a.(bool), b.(bool)
	switch {
	case x == y:
		return 0
	case !x:
		return -1
	default:
		return 1
	}
}

func compareTime(a, b interface{}) int {
	return a.(time.Time).Compare(b.(time.Time))
}
