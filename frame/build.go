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
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"parqcel/datatable"
)

var (
	datetimeType    = &arrow.TimestampType{Unit: arrow.Microsecond}
	categoricalType = &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int32, ValueType: arrow.BinaryTypes.String}
)

// ArrowType returns the Arrow type used to store columns of type t.
func ArrowType(t datatable.ColumnType) arrow.DataType {
	switch t {
	case datatable.TypeInt64:
		return arrow.PrimitiveTypes.Int64
	case datatable.TypeFloat64:
		return arrow.PrimitiveTypes.Float64
	case datatable.TypeBoolean:
		return arrow.FixedWidthTypes.Boolean
	case datatable.TypeDate:
		return arrow.FixedWidthTypes.Date32
	case datatable.TypeDatetime:
		return datetimeType
	case datatable.TypeCategorical:
		return categoricalType
	default:
		return arrow.BinaryTypes.String
	}
}

// ColumnBuilder accumulates values of one column type into an Arrow array.
type ColumnBuilder struct {
	typ datatable.ColumnType
	b   array.Builder
}

// NewColumnBuilder returns a builder for columns of type t.
func NewColumnBuilder(t datatable.ColumnType) *ColumnBuilder {
	return &ColumnBuilder{typ: t, b: array.NewBuilder(allocator, ArrowType(t))}
}

// Reserve grows the builder for n more values.
func (cb *ColumnBuilder) Reserve(n int) { cb.b.Reserve(n) }

// Len returns the number of values appended so far.
func (cb *ColumnBuilder) Len() int { return cb.b.Len() }

// Append coerces v to the column type and appends it; nil appends a null.
func (cb *ColumnBuilder) Append(v interface{}) error {
	raw, err := cb.typ.Coerce(v)
	if err != nil {
		return err
	}
	appendRaw(cb.b, raw)
	return nil
}

// AppendText parses user text and appends it.
func (cb *ColumnBuilder) AppendText(text string) error {
	raw, err := cb.typ.Parse(text)
	if err != nil {
		return err
	}
	appendRaw(cb.b, raw)
	return nil
}

// AppendNull appends a null value.
func (cb *ColumnBuilder) AppendNull() { cb.b.AppendNull() }

// Finish returns the built array and releases the builder.
func (cb *ColumnBuilder) Finish() arrow.Array {
	defer cb.b.Release()
	return cb.b.NewArray()
}

// appendRaw appends an already coerced raw value to a builder.
func appendRaw(b array.Builder, raw interface{}) {
	if raw == nil {
		b.AppendNull()
		return
	}
	switch bb := b.(type) {
	case *array.Int64Builder:
		bb.Append(raw.(int64))
	case *array.Float64Builder:
		bb.Append(raw.(float64))
	case *array.StringBuilder:
		bb.Append(raw.(string))
	case *array.BooleanBuilder:
		bb.Append(raw.(bool))
	case *array.Date32Builder:
		bb.Append(arrow.Date32FromTime(raw.(time.Time)))
	case *array.TimestampBuilder:
		bb.Append(arrow.Timestamp(raw.(time.Time).UnixMicro()))
	case *array.BinaryDictionaryBuilder:
		if err := bb.AppendString(raw.(string)); err != nil {
			bb.AppendNull()
		}
	default:
		b.AppendNull()
	}
}

// valueAt reads the raw value at position i of an array built by this package.
func valueAt(arr arrow.Array, i int) interface{} {
	if arr.IsNull(i) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Int64:
		return a.Value(i)
	case *array.Float64:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.Date32:
		return a.Value(i).ToTime()
	case *array.Timestamp:
		return time.UnixMicro(int64(a.Value(i))).UTC()
	case *array.Dictionary:
		if dict, ok := a.Dictionary().(*array.String); ok {
			return dict.Value(a.GetValueIndex(i))
		}
	}
	return nil
}

// buildColumn builds an array of type t from raw values that already have
// the type's raw representation.
func buildColumn(t datatable.ColumnType, values []interface{}) arrow.Array {
	b := array.NewBuilder(allocator, ArrowType(t))
	defer b.Release()
	b.Reserve(len(values))
	for _, v := range values {
		appendRaw(b, v)
	}
	return b.NewArray()
}

// gather builds a new array holding arr's values at the given positions.
func gather(arr arrow.Array, indices []int) arrow.Array {
	b := array.NewBuilder(allocator, arr.DataType())
	defer b.Release()
	b.Reserve(len(indices))
	for _, i := range indices {
		appendRaw(b, valueAt(arr, i))
	}
	return b.NewArray()
}
