package pager

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parqcel/datatable"
	"parqcel/frame"
)

func TestMaxPages(t *testing.T) {
	assert.Equal(t, 0, MaxPages(0, 10))
	assert.Equal(t, 1, MaxPages(1, 10))
	assert.Equal(t, 1, MaxPages(10, 10))
	assert.Equal(t, 2, MaxPages(11, 10))
	assert.Equal(t, 0, MaxPages(5, 0))
}

func TestProperty_MaxPages(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("pages cover every row exactly once", prop.ForAll(
		func(rows, size int) bool {
			pages := MaxPages(rows, size)
			if rows == 0 {
				return pages == 0
			}
			// every row fits and the last page is not empty
			return pages*size >= rows && (pages-1)*size < rows
		},
		gen.IntRange(0, 1_000_000),
		gen.IntRange(1, 50_000),
	))

	properties.TestingRun(t)
}

func threeRows(t *testing.T) *frame.Table {
	t.Helper()
	tbl, err := frame.FromRows([]frame.Field{{Name: "n", Type: datatable.TypeInt64}},
		[][]interface{}{{1}, {2}, {3}})
	require.NoError(t, err)
	return tbl
}

func TestSlice(t *testing.T) {
	tbl := threeRows(t)

	p0 := Slice(tbl, 0, 2)
	assert.Equal(t, []interface{}{int64(1), int64(2)}, p0.ColumnValues(0))

	p1 := Slice(tbl, 1, 2)
	assert.Equal(t, []interface{}{int64(3)}, p1.ColumnValues(0))

	p2 := Slice(tbl, 2, 2)
	assert.Equal(t, 0, p2.NumRows())
	assert.Equal(t, []string{"n"}, p2.Names())

	assert.Equal(t, 0, Slice(tbl, -1, 2).NumRows())
}

func TestWindowNavigation(t *testing.T) {
	w := NewWindow(2, 3)
	assert.Equal(t, 2, w.MaxPages())
	assert.Equal(t, "Page 1 of 2", w.String())

	assert.False(t, w.Previous())
	assert.True(t, w.Next())
	assert.Equal(t, 1, w.Page())
	assert.Equal(t, 2, w.Absolute(0))
	assert.False(t, w.Next())
	assert.Equal(t, 1, w.Page())

	assert.True(t, w.First())
	assert.True(t, w.Last())
	assert.False(t, w.Last())

	assert.False(t, w.JumpTo(5))
	assert.False(t, w.JumpTo(-1))
	assert.Equal(t, 1, w.Page())
	assert.True(t, w.JumpTo(0))
}

func TestWindowClamp(t *testing.T) {
	w := NewWindow(10, 95)
	w.Last()
	assert.Equal(t, 9, w.Page())

	w.SetTotal(30)
	assert.Equal(t, 2, w.Page())

	w.SetTotal(0)
	assert.Equal(t, 0, w.Page())
	assert.Equal(t, "Page 0 of 0", w.String())
	assert.False(t, w.Next())
	assert.False(t, w.Last())

	w.Reset(100)
	w.JumpTo(5)
	w.SetSize(25)
	assert.Equal(t, 2, w.Page())

	assert.Equal(t, DefaultPageSize, NewWindow(0, 1).Size())
}
