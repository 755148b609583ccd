package frame

import (
	"context"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parqcel/datatable"
)

func TestArrowTableRoundTrip(t *testing.T) {
	tbl := people(t)

	at := tbl.ToArrowTable()
	defer at.Release()
	assert.Equal(t, int64(3), at.NumRows())

	back, err := FromArrowTable(context.Background(), at)
	require.NoError(t, err)
	assert.True(t, Equal(tbl, back))
	assert.Equal(t, tbl.Fingerprint(), back.Fingerprint())
}

func TestFromArrowTableNormalizes(t *testing.T) {
	mem := memory.NewGoAllocator()

	i32 := array.NewInt32Builder(mem)
	i32.AppendValues([]int32{1, 2}, []bool{true, false})
	f32 := array.NewFloat32Builder(mem)
	f32.AppendValues([]float32{0.5, 2}, nil)
	tsType := &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"}
	ts := array.NewTimestampBuilder(mem, tsType)
	ts.AppendValues([]arrow.Timestamp{0, 1500}, nil)
	bin := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
	bin.AppendValues([][]byte{[]byte("ab"), []byte("c")}, nil)

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "small", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "ratio", Type: arrow.PrimitiveTypes.Float32},
		{Name: "at", Type: tsType},
		{Name: "", Type: arrow.BinaryTypes.Binary},
	}, nil)
	rec := array.NewRecord(schema, []arrow.Array{i32.NewArray(), f32.NewArray(), ts.NewArray(), bin.NewArray()}, 2)
	defer rec.Release()
	at := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer at.Release()

	tbl, err := FromArrowTable(context.Background(), at)
	require.NoError(t, err)

	assert.Equal(t, []Field{
		{Name: "small", Type: datatable.TypeInt64},
		{Name: "ratio", Type: datatable.TypeFloat64},
		{Name: "at", Type: datatable.TypeDatetime},
		{Name: "column_4", Type: datatable.TypeUtf8},
	}, tbl.Fields())
	assert.Equal(t, []interface{}{int64(1), nil}, tbl.ColumnValues(0))
	assert.Equal(t, []interface{}{0.5, 2.0}, tbl.ColumnValues(1))
	assert.Equal(t, time.UnixMilli(1500).UTC(), tbl.Raw(1, 2))
	assert.Equal(t, "ab", tbl.Text(0, 3))
}

func TestFingerprintAndEqual(t *testing.T) {
	tbl := people(t)
	same := people(t)
	assert.True(t, Equal(tbl, same))
	assert.Equal(t, tbl.Fingerprint(), same.Fingerprint())

	edited, err := tbl.SetCell(0, 0, "anne")
	require.NoError(t, err)
	assert.False(t, Equal(tbl, edited))
	assert.NotEqual(t, tbl.Fingerprint(), edited.Fingerprint())

	renamed, err := tbl.Rename("name", "who")
	require.NoError(t, err)
	assert.False(t, Equal(tbl, renamed))

	assert.False(t, Equal(tbl, nil))
	assert.True(t, Equal(Empty(), Empty()))
}
