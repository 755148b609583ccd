package tbl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parqcel/datatable"
	"parqcel/frame"
)

func sample(t *testing.T) *Frame {
	t.Helper()
	table, err := frame.FromRows([]frame.Field{
		{Name: "name", Type: datatable.TypeUtf8},
		{Name: "age", Type: datatable.TypeInt64},
	}, [][]interface{}{{"ann", 30}, {"bob", 45}, {"cy", 19}, {"dee", nil}})
	require.NoError(t, err)
	return Wrap(table)
}

func TestFrameChain(t *testing.T) {
	out := sample(t).Filter(Col("age").Gt(20)).Sort("age", true).Head(1)
	require.NoError(t, out.Err())
	assert.Equal(t, 1, out.Height())
	assert.Equal(t, "bob", out.Table().Text(0, 0))

	out = sample(t).SortBy(Desc("name")).Select("name")
	require.NoError(t, out.Err())
	assert.Equal(t, []string{"name"}, out.Columns())
	assert.Equal(t, "dee", out.Table().Text(0, 0))

	out = sample(t).Where("age < 40 AND name ~ a")
	require.NoError(t, out.Err())
	assert.Equal(t, 1, out.Height())
}

func TestExprCombinators(t *testing.T) {
	e := Col("age").Between(40, 20).Or(Col("age").IsNull())
	out := sample(t).Filter(e)
	require.NoError(t, out.Err())
	assert.Equal(t, []interface{}{"ann", "dee"}, out.Table().ColumnValues(0))

	out = sample(t).Filter(Col("name").StartsWith("b").Not().And(Col("age").IsNotNull()))
	require.NoError(t, out.Err())
	assert.Equal(t, 2, out.Height())
}

func TestStickyError(t *testing.T) {
	out := sample(t).Filter(Col("salary").Eq(1)).Head(2).Sort("name", false)
	assert.ErrorIs(t, out.Err(), datatable.ErrColumnNotFound)
	assert.Nil(t, out.Table())
	assert.Equal(t, 0, out.Height())
	assert.Equal(t, 0, out.Width())

	out = sample(t).Cast("age", "money")
	assert.ErrorIs(t, out.Err(), datatable.ErrConversion)

	out = sample(t).Head(0).Filter(Col("salary").Gt(1))
	assert.ErrorIs(t, out.Err(), datatable.ErrColumnNotFound)

	var nilFrame *Frame
	assert.Error(t, nilFrame.Head(1).Err())
}

func TestShapeOperations(t *testing.T) {
	out := sample(t).WithColumn("flag", "bool", "true").Rename("flag", "ok").Drop("age").Cast("ok", "Utf8")
	require.NoError(t, out.Err())
	assert.Equal(t, []string{"name", "ok"}, out.Columns())
	assert.Equal(t, "true", out.Table().Text(0, 1))
	assert.Equal(t, 2, out.Tail(2).Height())
}

func TestSetCell(t *testing.T) {
	out := sample(t).SetCell(3, "age", "52")
	require.NoError(t, out.Err())
	assert.Equal(t, "52", out.Table().Text(3, 1))

	out = sample(t).SetCell(0, "age", "old")
	assert.ErrorIs(t, out.Err(), datatable.ErrTypeCoercion)
	out = sample(t).SetCell(0, "salary", "1")
	assert.ErrorIs(t, out.Err(), datatable.ErrColumnNotFound)
}
