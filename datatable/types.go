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

// Package datatable defines the column types, cell values, filters and errors
// shared by the table model, the sandbox and the view layers.
package datatable

import (
	"fmt"
	"strings"
)

// ColumnType is the declared type of a column. The set is closed; every
// per-type behaviour is looked up in a table indexed by ColumnType.
type ColumnType int

const (
	// TypeInt64 represents 64-bit signed integers.
	TypeInt64 ColumnType = iota
	// TypeFloat64 represents 64-bit floating point numbers.
	TypeFloat64
	// TypeUtf8 represents free text.
	TypeUtf8
	// TypeBoolean represents true/false values.
	TypeBoolean
	// TypeDate represents a calendar date without time.
	TypeDate
	// TypeDatetime represents a date and time (microsecond precision, no zone).
	TypeDatetime
	// TypeCategorical represents text drawn from a small dictionary of values.
	TypeCategorical

	typeCount
)

// ColumnTypes lists every column type in declaration order.
func ColumnTypes() []ColumnType {
	out := make([]ColumnType, 0, typeCount)
	for t := ColumnType(0); t < typeCount; t++ {
		out = append(out, t)
	}
	return out
}

// Valid reports whether t is one of the declared column types.
func (t ColumnType) Valid() bool {
	return t >= 0 && t < typeCount
}

// String returns the display name of the type, as used in header labels.
func (t ColumnType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
	return typeTable[t].name
}

// IsText reports whether values of this type are stored as strings.
func (t ColumnType) IsText() bool {
	return t == TypeUtf8 || t == TypeCategorical
}

// typeAliases maps the names accepted from users and config to column types.
// Display names are matched case-insensitively as well.
var typeAliases = map[string]ColumnType{
	"int":         TypeInt64,
	"integer":     TypeInt64,
	"int64":       TypeInt64,
	"float":       TypeFloat64,
	"float64":     TypeFloat64,
	"double":      TypeFloat64,
	"string":      TypeUtf8,
	"str":         TypeUtf8,
	"text":        TypeUtf8,
	"utf8":        TypeUtf8,
	"bool":        TypeBoolean,
	"boolean":     TypeBoolean,
	"date":        TypeDate,
	"datetime":    TypeDatetime,
	"timestamp":   TypeDatetime,
	"categorical": TypeCategorical,
	"category":    TypeCategorical,
}

// ParseColumnType resolves a user supplied type name.
func ParseColumnType(name string) (ColumnType, error) {
	if t, ok := typeAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: unknown column type %q", ErrConversion, name)
}

// Value is a typed container for cell values.
// It holds the raw value, type information, and a pre-formatted string for display.
type Value struct {
	// Raw holds the underlying value: int64, float64, string, bool or time.Time
	// depending on Type. Nil when IsNull is set.
	Raw interface{}

	// Type indicates the data type of this value.
	Type ColumnType

	// IsNull indicates whether this value is null/nil.
	IsNull bool

	// Formatted is a pre-formatted string representation for display.
	Formatted string
}

// NewValue creates a new Value from a raw value and type.
func NewValue(raw interface{}, columnType ColumnType) Value {
	if raw == nil {
		return NewNullValue(columnType)
	}

	return Value{
		Raw:       raw,
		Type:      columnType,
		IsNull:    false,
		Formatted: FormatRaw(raw, columnType),
	}
}

// NewNullValue creates a null value of the specified type.
func NewNullValue(columnType ColumnType) Value {
	return Value{
		Raw:       nil,
		Type:      columnType,
		IsNull:    true,
		Formatted: "",
	}
}

// FormatRaw converts a raw value of the given type to its display string.
func FormatRaw(raw interface{}, columnType ColumnType) string {
	if raw == nil {
		return ""
	}
	if !columnType.Valid() {
		return fmt.Sprintf("%v", raw)
	}
	return typeTable[columnType].format(raw)
}

// Metadata holds optional metadata about a data source.
type Metadata map[string]interface{}
