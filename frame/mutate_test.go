package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parqcel/datatable"
)

func TestSetCell(t *testing.T) {
	tbl := people(t)

	out, err := tbl.SetCell(1, 1, " 41 ")
	require.NoError(t, err)
	assert.Equal(t, int64(41), out.Raw(1, 1))
	assert.Nil(t, tbl.Raw(1, 1), "input table is unchanged")

	// untouched columns are shared
	assert.Same(t, tbl.Column(0), out.Column(0))
	assert.NotSame(t, tbl.Column(1), out.Column(1))

	out, err = out.SetCell(0, 1, "")
	require.NoError(t, err)
	assert.Nil(t, out.Raw(0, 1))

	out, err = out.SetCellByName(2, "team", "green")
	require.NoError(t, err)
	assert.Equal(t, "green", out.Text(2, 5))
	assert.Equal(t, datatable.TypeCategorical, out.Field(5).Type)
}

func TestSetCellCoercionFailure(t *testing.T) {
	tbl := people(t)

	_, err := tbl.SetCell(0, 1, "abc")
	assert.ErrorIs(t, err, datatable.ErrTypeCoercion)
	assert.Equal(t, int64(30), tbl.Raw(0, 1))

	_, err = tbl.SetCell(5, 1, "1")
	assert.ErrorIs(t, err, datatable.ErrInvalidRow)

	_, err = tbl.SetCellByName(0, "nope", "1")
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)
}

func TestAddColumn(t *testing.T) {
	tbl := people(t)

	out, err := tbl.AddColumn("bonus", datatable.TypeFloat64, "0.5")
	require.NoError(t, err)
	assert.Equal(t, 7, out.NumCols())
	for r := 0; r < out.NumRows(); r++ {
		assert.Equal(t, 0.5, out.Raw(r, 6))
	}

	out, err = tbl.AddColumn("note", datatable.TypeUtf8, "")
	require.NoError(t, err)
	assert.Equal(t, "", out.Raw(0, 6))

	out, err = tbl.AddColumn("when", datatable.TypeDate, "")
	require.NoError(t, err)
	assert.Nil(t, out.Raw(0, 6))
}

func TestAddColumnErrors(t *testing.T) {
	tbl := people(t)

	_, err := tbl.AddColumn("age", datatable.TypeInt64, "0")
	assert.ErrorIs(t, err, datatable.ErrDuplicateColumn)

	_, err = tbl.AddColumn("", datatable.TypeInt64, "0")
	assert.ErrorIs(t, err, datatable.ErrInvalidName)

	_, err = tbl.AddColumn("a/b", datatable.TypeInt64, "0")
	assert.ErrorIs(t, err, datatable.ErrInvalidName)

	_, err = tbl.AddColumn("n", datatable.TypeInt64, "x")
	assert.ErrorIs(t, err, datatable.ErrTypeCoercion)

	assert.Equal(t, 6, tbl.NumCols())
}

func TestDropRenameSelect(t *testing.T) {
	tbl := people(t)

	out, err := tbl.DropColumn("score")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age", "active", "joined", "team"}, out.Names())
	assert.Equal(t, 3, out.NumRows())

	_, err = tbl.DropColumn("score2")
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)

	out, err = tbl.Rename("age", "years")
	require.NoError(t, err)
	assert.Equal(t, 1, out.ColumnIndex("years"))
	assert.Same(t, tbl.Column(1), out.Column(1))

	_, err = tbl.Rename("age", "name")
	assert.ErrorIs(t, err, datatable.ErrDuplicateColumn)

	out, err = tbl.Select("team", "name")
	require.NoError(t, err)
	assert.Equal(t, []string{"team", "name"}, out.Names())
	assert.Equal(t, "ann", out.Text(0, 1))

	_, err = tbl.Select("team", "team")
	assert.ErrorIs(t, err, datatable.ErrDuplicateColumn)
}

func TestTake(t *testing.T) {
	tbl := people(t)

	out, err := tbl.Take([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, "cy", out.Text(0, 0))
	assert.Equal(t, "red", out.Text(1, 5))
	assert.Equal(t, "2024-01-02", out.Text(1, 4))

	_, err = tbl.Take([]int{3})
	assert.ErrorIs(t, err, datatable.ErrInvalidRow)
}

func TestConcat(t *testing.T) {
	tbl := people(t)

	out, err := Concat(tbl, tbl.Head(1))
	require.NoError(t, err)
	assert.Equal(t, 4, out.NumRows())
	assert.Equal(t, tbl.Text(0, 0), out.Text(3, 0))
	assert.Equal(t, tbl.Text(0, 5), out.Text(3, 5))

	narrow, err := tbl.Select("name")
	require.NoError(t, err)
	_, err = Concat(tbl, narrow)
	assert.ErrorIs(t, err, datatable.ErrInvalidColumn)

	single, err := Concat(tbl)
	require.NoError(t, err)
	assert.Same(t, tbl, single)
}
