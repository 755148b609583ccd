package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parqcel/datatable"
	"parqcel/frame"
)

func sample(t *testing.T) *frame.Table {
	t.Helper()
	tbl, err := frame.FromRows([]frame.Field{
		{Name: "city", Type: datatable.TypeUtf8},
		{Name: "n", Type: datatable.TypeInt64},
		{Name: "x", Type: datatable.TypeFloat64},
		{Name: "d", Type: datatable.TypeDate},
	}, [][]interface{}{
		{"oslo", 1, 1.5, "2024-01-01"},
		{"", 2, nil, nil},
		{"oslo", 3, 2.5, nil},
		{nil, 4, 3.5, nil},
	})
	require.NoError(t, err)
	return tbl
}

func TestTextColumn(t *testing.T) {
	r, err := Column(sample(t), "city")
	require.NoError(t, err)
	assert.Equal(t, 3, r.Unique)
	assert.Equal(t, 1, r.Blanks)
	assert.Equal(t, 1, r.Nulls)
	require.NotEmpty(t, r.Shares)
	assert.Equal(t, Share{Value: "oslo", Count: 2, Percent: 50}, r.Shares[0])

	out := r.String()
	assert.Contains(t, out, "Unique Values: 3\n")
	assert.Contains(t, out, "'oslo': 50.00%\n")
}

func TestNumericColumn(t *testing.T) {
	r, err := Column(sample(t), "n")
	require.NoError(t, err)
	require.NotNil(t, r.Numeric)
	assert.Equal(t, 1.0, r.Numeric.Min)
	assert.Equal(t, 4.0, r.Numeric.Max)
	assert.Equal(t, 2.5, r.Numeric.Mean)
	assert.Equal(t, 2.5, r.Numeric.Median)
	assert.InDelta(t, 1.6667, r.Numeric.Variance, 1e-3)
	assert.Contains(t, r.String(), "Min: 1\n")

	r, err = Column(sample(t), "x")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Nulls)
	assert.Equal(t, 3, r.Numeric.Count)
	assert.Equal(t, 2.5, r.Numeric.Median)
	assert.Contains(t, r.String(), "Min: 1.5\n")
}

func TestSingleValueHasNoVariance(t *testing.T) {
	tbl, err := frame.FromRows([]frame.Field{{Name: "v", Type: datatable.TypeFloat64}}, [][]interface{}{{2.0}})
	require.NoError(t, err)
	r, err := Column(tbl, "v")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(r.Numeric.Variance))
}

func TestUnsupportedAndMissing(t *testing.T) {
	r, err := Column(sample(t), "d")
	require.NoError(t, err)
	assert.Equal(t, 3, r.Nulls)
	assert.Equal(t, "Statistics not supported for this column type.", r.String())
	assert.False(t, Supported(datatable.TypeDate))

	_, err = Column(sample(t), "nope")
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)
}
