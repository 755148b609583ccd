package frame

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parqcel/datatable"
)

var peopleFields = []Field{
	{Name: "name", Type: datatable.TypeUtf8},
	{Name: "age", Type: datatable.TypeInt64},
	{Name: "score", Type: datatable.TypeFloat64},
	{Name: "active", Type: datatable.TypeBoolean},
	{Name: "joined", Type: datatable.TypeDate},
	{Name: "team", Type: datatable.TypeCategorical},
}

func people(t *testing.T) *Table {
	t.Helper()
	tbl, err := FromRows(peopleFields, [][]interface{}{
		{"ann", 30, 1.5, true, "2024-01-02", "red"},
		{"bob", nil, 2.0, false, nil, "blue"},
		{"cy", 19, nil, nil, "2023-12-31", "red"},
	})
	require.NoError(t, err)
	return tbl
}

func TestFromRowsAndAccess(t *testing.T) {
	tbl := people(t)

	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, 6, tbl.NumCols())
	assert.Equal(t, []string{"name", "age", "score", "active", "joined", "team"}, tbl.Names())
	assert.Equal(t, 1, tbl.ColumnIndex("age"))
	assert.Equal(t, -1, tbl.ColumnIndex("missing"))

	assert.Equal(t, int64(30), tbl.Raw(0, 1))
	assert.Nil(t, tbl.Raw(1, 1))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), tbl.Raw(0, 4))
	assert.Equal(t, "red", tbl.Raw(2, 5))

	assert.Equal(t, "1.5", tbl.Text(0, 2))
	assert.Equal(t, "", tbl.Text(1, 1))
	assert.Equal(t, "2023-12-31", tbl.Text(2, 4))
	assert.Equal(t, "", tbl.Text(99, 0))

	v, err := tbl.Value(1, 3)
	require.NoError(t, err)
	assert.False(t, v.IsNull)
	assert.Equal(t, "false", v.Formatted)

	_, err = tbl.Value(3, 0)
	assert.ErrorIs(t, err, datatable.ErrInvalidRow)
	_, err = tbl.Value(0, 6)
	assert.ErrorIs(t, err, datatable.ErrInvalidColumn)

	row, err := tbl.Row(2)
	require.NoError(t, err)
	assert.Equal(t, "cy", row[0].Formatted)
	assert.True(t, row[2].IsNull)
}

func TestFromRowsRejectsBadValues(t *testing.T) {
	_, err := FromRows(peopleFields[:2], [][]interface{}{{"ann", "thirty"}})
	assert.ErrorIs(t, err, datatable.ErrTypeCoercion)

	_, err = FromRows(peopleFields[:2], [][]interface{}{{"ann"}})
	assert.ErrorIs(t, err, datatable.ErrInvalidRow)

	_, err = FromRows([]Field{{Name: "a", Type: datatable.TypeUtf8}, {Name: "a", Type: datatable.TypeInt64}}, nil)
	assert.ErrorIs(t, err, datatable.ErrDuplicateColumn)
}

func TestNewChecksArrowTypes(t *testing.T) {
	col := buildColumn(datatable.TypeInt64, []interface{}{int64(1)})
	_, err := New([]Field{{Name: "x", Type: datatable.TypeUtf8}}, []arrow.Array{col})
	assert.ErrorIs(t, err, datatable.ErrInvalidColumn)
}

func TestSlice(t *testing.T) {
	tbl := people(t)

	s := tbl.Slice(1, 5)
	assert.Equal(t, 2, s.NumRows())
	assert.Equal(t, "bob", s.Text(0, 0))
	assert.Equal(t, "blue", s.Text(0, 5))
	assert.Equal(t, "red", s.Text(1, 5))

	empty := tbl.Slice(10, 2)
	assert.Equal(t, 0, empty.NumRows())
	assert.Equal(t, tbl.Names(), empty.Names())

	assert.Equal(t, 2, tbl.Head(2).NumRows())
	assert.Equal(t, "cy", tbl.Tail(1).Text(0, 0))
	assert.Equal(t, 3, tbl.Tail(10).NumRows())
	assert.Equal(t, 0, tbl.Head(-1).NumRows())
}
