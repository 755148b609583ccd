package frame

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parqcel/datatable"
)

func column(t *testing.T, typ datatable.ColumnType, values ...interface{}) *Table {
	t.Helper()
	rows := make([][]interface{}, len(values))
	for i, v := range values {
		rows[i] = []interface{}{v}
	}
	tbl, err := FromRows([]Field{{Name: "c", Type: typ}}, rows)
	require.NoError(t, err)
	return tbl
}

func convert(t *testing.T, tbl *Table, to datatable.ColumnType) []interface{} {
	t.Helper()
	out, err := tbl.ConvertColumnType("c", to)
	require.NoError(t, err)
	assert.Equal(t, to, out.Field(0).Type)
	return out.ColumnValues(0)
}

func TestConvertToText(t *testing.T) {
	assert.Equal(t, []interface{}{"1.5", nil}, convert(t, column(t, datatable.TypeFloat64, 1.5, nil), datatable.TypeUtf8))
	assert.Equal(t, []interface{}{"true"}, convert(t, column(t, datatable.TypeBoolean, true), datatable.TypeCategorical))
	assert.Equal(t, []interface{}{"2024-03-04"}, convert(t, column(t, datatable.TypeDate, "2024-03-04"), datatable.TypeUtf8))
}

func TestConvertTextStrict(t *testing.T) {
	assert.Equal(t, []interface{}{int64(1), nil, int64(-3)}, convert(t, column(t, datatable.TypeUtf8, "1", "", "-3"), datatable.TypeInt64))
	assert.Equal(t, []interface{}{true, false}, convert(t, column(t, datatable.TypeCategorical, "yes", "no"), datatable.TypeBoolean))

	_, err := column(t, datatable.TypeUtf8, "1", "x").ConvertColumnType("c", datatable.TypeFloat64)
	assert.ErrorIs(t, err, datatable.ErrConversion)
	assert.ErrorIs(t, err, datatable.ErrTypeCoercion)
}

func TestConvertNumeric(t *testing.T) {
	assert.Equal(t, []interface{}{2.0}, convert(t, column(t, datatable.TypeInt64, 2), datatable.TypeFloat64))
	assert.Equal(t, []interface{}{int64(2), int64(-2)}, convert(t, column(t, datatable.TypeFloat64, 2.9, -2.9), datatable.TypeInt64))
	assert.Equal(t, []interface{}{true, false}, convert(t, column(t, datatable.TypeFloat64, 0.1, 0.0), datatable.TypeBoolean))
	assert.Equal(t, []interface{}{int64(1), int64(0)}, convert(t, column(t, datatable.TypeBoolean, true, false), datatable.TypeInt64))

	_, err := column(t, datatable.TypeFloat64, math.NaN()).ConvertColumnType("c", datatable.TypeInt64)
	assert.ErrorIs(t, err, datatable.ErrConversion)
}

func TestConvertTemporal(t *testing.T) {
	ts := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, []interface{}{time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)}, convert(t, column(t, datatable.TypeDatetime, ts), datatable.TypeDate))

	got := convert(t, column(t, datatable.TypeUtf8, "03/04/2024", "bogus", nil), datatable.TypeDate)
	assert.Equal(t, []interface{}{time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), nil, nil}, got)
}

func TestConvertUnsupported(t *testing.T) {
	_, err := column(t, datatable.TypeDate, "2024-01-01").ConvertColumnType("c", datatable.TypeInt64)
	assert.ErrorIs(t, err, datatable.ErrConversion)

	_, err = column(t, datatable.TypeBoolean, true).ConvertColumnType("c", datatable.TypeDate)
	assert.ErrorIs(t, err, datatable.ErrConversion)

	_, err = column(t, datatable.TypeBoolean, true).ConvertColumnType("d", datatable.TypeUtf8)
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)

	assert.True(t, CanConvert(datatable.TypeUtf8, datatable.TypeDatetime))
	assert.False(t, CanConvert(datatable.TypeDatetime, datatable.TypeFloat64))
}

func TestConvertIdentityKeepsTable(t *testing.T) {
	tbl := column(t, datatable.TypeInt64, 1)
	out, err := tbl.ConvertColumnType("c", datatable.TypeInt64)
	require.NoError(t, err)
	assert.Same(t, tbl, out)
}
