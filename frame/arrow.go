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
	"context"
	"fmt"
	"log"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"

	"parqcel/datatable"
)

// Schema returns the Arrow schema of the table.
func (t *Table) Schema() *arrow.Schema {
	fields := make([]arrow.Field, len(t.fields))
	for i, f := range t.fields {
		fields[i] = arrow.Field{Name: f.Name, Type: ArrowType(f.Type), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// ToRecord returns the table as a single Arrow record batch.
func (t *Table) ToRecord() arrow.Record {
	return array.NewRecord(t.Schema(), t.cols, int64(t.rows))
}

// ToArrowTable returns the table as an Arrow table with one chunk per column.
func (t *Table) ToArrowTable() arrow.Table {
	rec := t.ToRecord()
	defer rec.Release()
	return array.NewTableFromRecords(t.Schema(), []arrow.Record{rec})
}

// FromArrowTable normalises an Arrow table read from a file into a Table.
// Integer columns become Int64, floating point columns Float64, timestamps
// Datetime (microseconds, zone dropped), string dictionaries Categorical;
// anything without a native column type is rendered as text.
func FromArrowTable(ctx context.Context, tbl arrow.Table) (*Table, error) {
	schema := tbl.Schema()
	fields := make([]Field, 0, schema.NumFields())
	cols := make([]arrow.Array, 0, schema.NumFields())

	for i := 0; i < int(tbl.NumCols()); i++ {
		col := tbl.Column(i)
		chunks := col.Data().Chunks()

		var arr arrow.Array
		switch len(chunks) {
		case 0:
			arr = array.MakeArrayOfNull(allocator, col.DataType(), 0)
		case 1:
			// the caller may release tbl once we return
			arr = chunks[0]
			arr.Retain()
		default:
			joined, err := array.Concatenate(chunks, allocator)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name(), err)
			}
			arr = joined
		}

		typ, norm := normalize(ctx, arr)
		fields = append(fields, Field{Name: UniqueName(fields, col.Name(), i), Type: typ})
		cols = append(cols, norm)
	}
	return New(fields, cols)
}

// UniqueName replaces empty or repeated names so every column can be addressed.
func UniqueName(existing []Field, name string, idx int) string {
	if name == "" {
		name = fmt.Sprintf("column_%d", idx+1)
	}
	candidate := name
	for n := 2; ; n++ {
		taken := false
		for _, f := range existing {
			if f.Name == candidate {
				taken = true
				break
			}
		}
		if !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d", name, n)
	}
}

func normalize(ctx context.Context, arr arrow.Array) (datatable.ColumnType, arrow.Array) {
	switch arr.DataType().ID() {
	case arrow.INT64:
		return datatable.TypeInt64, arr
	case arrow.FLOAT64:
		return datatable.TypeFloat64, arr
	case arrow.STRING:
		return datatable.TypeUtf8, arr
	case arrow.BOOL:
		return datatable.TypeBoolean, arr
	case arrow.DATE32:
		return datatable.TypeDate, arr

	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		if out, err := compute.CastArray(ctx, arr, compute.SafeCastOptions(arrow.PrimitiveTypes.Int64)); err == nil {
			return datatable.TypeInt64, out
		} else {
			log.Printf("cast %s to int64 failed, keeping text: %v", arr.DataType(), err)
		}
	case arrow.FLOAT16, arrow.FLOAT32:
		if out, err := compute.CastArray(ctx, arr, compute.SafeCastOptions(arrow.PrimitiveTypes.Float64)); err == nil {
			return datatable.TypeFloat64, out
		}

	case arrow.LARGE_STRING:
		a := arr.(*array.LargeString)
		return datatable.TypeUtf8, rebuild(datatable.TypeUtf8, arr.Len(), func(i int) interface{} { return a.Value(i) }, arr)

	case arrow.DATE64:
		a := arr.(*array.Date64)
		return datatable.TypeDate, rebuild(datatable.TypeDate, arr.Len(), func(i int) interface{} {
			y, m, d := a.Value(i).ToTime().Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		}, arr)

	case arrow.TIMESTAMP:
		a := arr.(*array.Timestamp)
		unit := a.DataType().(*arrow.TimestampType).Unit
		return datatable.TypeDatetime, rebuild(datatable.TypeDatetime, arr.Len(), func(i int) interface{} {
			return a.Value(i).ToTime(unit).UTC()
		}, arr)

	case arrow.DICTIONARY:
		d := arr.(*array.Dictionary)
		if dict, ok := d.Dictionary().(*array.String); ok {
			return datatable.TypeCategorical, rebuild(datatable.TypeCategorical, arr.Len(), func(i int) interface{} {
				return dict.Value(d.GetValueIndex(i))
			}, arr)
		}
	}

	return datatable.TypeUtf8, rebuild(datatable.TypeUtf8, arr.Len(), func(i int) interface{} {
		return formatArrowValue(arr, i)
	}, arr)
}

// rebuild builds a column of type t from a value accessor, keeping arr's nulls.
func rebuild(t datatable.ColumnType, n int, at func(i int) interface{}, arr arrow.Array) arrow.Array {
	values := make([]interface{}, n)
	for i := range values {
		if !arr.IsNull(i) {
			values[i] = at(i)
		}
	}
	return buildColumn(t, values)
}

// formatArrowValue converts an Arrow value of any type to display text.
func formatArrowValue(col arrow.Array, pos int) string {
	if col.IsNull(pos) {
		return ""
	}

	switch c := col.(type) {
	case *array.Struct:
		b, _ := c.MarshalJSON()
		return string(b)
	case *array.Binary:
		return string(c.Value(pos))
	case *array.Decimal128:
		return c.Value(pos).BigInt().String()
	case *array.Float16:
		return c.Value(pos).String()
	case *array.Dictionary:
		return formatArrowValue(c.Dictionary(), c.GetValueIndex(pos))
	case *array.MonthInterval:
		return fmt.Sprintf("%v", c.Value(pos))
	case *array.DayTimeInterval:
		return fmt.Sprintf("%v", c.Value(pos))
	}
	return col.ValueStr(pos)
}
