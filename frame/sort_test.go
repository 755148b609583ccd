package frame

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parqcel/datatable"
)

func TestSortMultiKey(t *testing.T) {
	tbl, err := FromRows([]Field{
		{Name: "group", Type: datatable.TypeUtf8},
		{Name: "n", Type: datatable.TypeInt64},
	}, [][]interface{}{
		{"b", 1},
		{"a", 2},
		{"b", nil},
		{"a", 1},
		{nil, 5},
	})
	require.NoError(t, err)

	out, err := tbl.Sort(SortKey{Column: "group"}, SortKey{Column: "n", Descending: true})
	require.NoError(t, err)

	var got []string
	for r := 0; r < out.NumRows(); r++ {
		got = append(got, out.Text(r, 0)+":"+out.Text(r, 1))
	}
	assert.Equal(t, []string{":5", "a:2", "a:1", "b:", "b:1"}, got)
}

func TestSortIsStable(t *testing.T) {
	tbl, err := FromRows([]Field{
		{Name: "k", Type: datatable.TypeInt64},
		{Name: "id", Type: datatable.TypeUtf8},
	}, [][]interface{}{{2, "x"}, {1, "y"}, {2, "z"}, {1, "w"}})
	require.NoError(t, err)

	out, err := tbl.Sort(SortKey{Column: "k", Descending: true})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"x", "z", "y", "w"}, out.ColumnValues(1))
}

func TestSortErrors(t *testing.T) {
	tbl := people(t)

	_, err := tbl.Sort(SortKey{Column: "nope"})
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)

	out, err := tbl.Sort()
	require.NoError(t, err)
	assert.True(t, Equal(tbl, out))
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortKey{Column: "age"}, ParseSortKey("age"))
	assert.Equal(t, SortKey{Column: "age", Descending: true}, ParseSortKey("age:DESC"))
	assert.Equal(t, SortKey{Column: "age"}, ParseSortKey("age:asc"))
}

func TestProperty_SortIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	fields := []Field{
		{Name: "a", Type: datatable.TypeInt64},
		{Name: "b", Type: datatable.TypeUtf8},
	}

	properties.Property("sorting a sorted table changes nothing", prop.ForAll(
		func(as []int64, bs []string, desc bool) bool {
			n := len(as)
			if len(bs) < n {
				n = len(bs)
			}
			rows := make([][]interface{}, n)
			for i := 0; i < n; i++ {
				var a interface{} = as[i]
				if as[i]%7 == 0 {
					a = nil
				}
				rows[i] = []interface{}{a, bs[i]}
			}
			tbl, err := FromRows(fields, rows)
			if err != nil {
				return false
			}

			keys := []SortKey{{Column: "a", Descending: desc}, {Column: "b"}}
			once, err := tbl.Sort(keys...)
			if err != nil {
				return false
			}
			twice, err := once.Sort(keys...)
			if err != nil {
				return false
			}
			return Equal(once, twice) && once.NumRows() == tbl.NumRows()
		},
		gen.SliceOf(gen.Int64Range(-20, 20)),
		gen.SliceOf(gen.AlphaString()),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
