package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parqcel/datatable"
)

var testColumns = []string{"name", "age", "city"}

func row(name string, age interface{}, city string) []datatable.Value {
	ageVal := datatable.NewNullValue(datatable.TypeInt64)
	if age != nil {
		ageVal = datatable.NewValue(int64(age.(int)), datatable.TypeInt64)
	}
	return []datatable.Value{
		datatable.NewValue(name, datatable.TypeUtf8),
		ageVal,
		datatable.NewValue(city, datatable.TypeCategorical),
	}
}

func eval(t *testing.T, f datatable.Filter, r []datatable.Value) bool {
	t.Helper()
	ok, err := f.Evaluate(r, testColumns)
	require.NoError(t, err)
	return ok
}

func TestPredicateComparisons(t *testing.T) {
	r := row("ann", 30, "Paris")
	tests := []struct {
		op      datatable.FilterOp
		operand interface{}
		want    bool
	}{
		{datatable.OpGreater, "29", true},
		{datatable.OpGreater, 30, false},
		{datatable.OpGreaterEqual, "30", true},
		{datatable.OpLess, int64(31), true},
		{datatable.OpLessEqual, "29", false},
		{datatable.OpEqual, "30", true},
		{datatable.OpNotEqual, "30", false},
	}
	for _, tt := range tests {
		p, err := NewPredicate("age", tt.op, tt.operand)
		require.NoError(t, err)
		assert.Equal(t, tt.want, eval(t, p, r), p.Description())
	}
}

func TestPredicateBetweenSwapsBounds(t *testing.T) {
	p, err := NewPredicate("age", datatable.OpBetween, "10", "5")
	require.NoError(t, err)

	assert.True(t, eval(t, p, row("a", 5, "x")))
	assert.True(t, eval(t, p, row("a", 7, "x")))
	assert.True(t, eval(t, p, row("a", 10, "x")))
	assert.False(t, eval(t, p, row("a", 11, "x")))
}

func TestPredicateBetweenArity(t *testing.T) {
	_, err := NewPredicate("age", datatable.OpBetween, "1")
	assert.ErrorIs(t, err, datatable.ErrFilterOperator)

	_, err = NewPredicate("age", datatable.FilterOp(99), "1")
	assert.ErrorIs(t, err, datatable.ErrFilterOperator)
}

func TestPredicateNullsNeverMatch(t *testing.T) {
	r := row("bob", nil, "Rome")
	for _, op := range []datatable.FilterOp{datatable.OpEqual, datatable.OpNotEqual, datatable.OpLess, datatable.OpContains} {
		p, err := NewPredicate("age", op, "1")
		require.NoError(t, err)
		assert.False(t, eval(t, p, r), op.String())
	}

	isNull, err := NewPredicate("age", datatable.OpIsNull)
	require.NoError(t, err)
	assert.True(t, eval(t, isNull, r))
}

func TestPredicateTextOps(t *testing.T) {
	r := row("annabel", 30, "Paris")

	p, _ := NewPredicate("name", datatable.OpContains, "nab")
	assert.True(t, eval(t, p, r))

	p, _ = NewPredicate("name", datatable.OpStartsWith, "ann")
	assert.True(t, eval(t, p, r))

	p, _ = NewPredicate("name", datatable.OpEndsWith, "Bel")
	assert.False(t, eval(t, p, r))

	p, _ = NewPredicate("age", datatable.OpContains, 3)
	assert.True(t, eval(t, p, r))
}

func TestPredicateCoercionError(t *testing.T) {
	p, err := NewPredicate("age", datatable.OpGreater, "old")
	require.NoError(t, err)

	_, err = p.Evaluate(row("a", 1, "x"), testColumns)
	assert.ErrorIs(t, err, datatable.ErrTypeCoercion)
}

func TestPredicateUnknownColumn(t *testing.T) {
	p, err := NewPredicate("salary", datatable.OpEqual, "1")
	require.NoError(t, err)

	_, err = p.Evaluate(row("a", 1, "x"), testColumns)
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)
}

func TestCompositeFilter(t *testing.T) {
	old, _ := NewPredicate("age", datatable.OpGreater, "40")
	paris, _ := NewPredicate("city", datatable.OpEqual, "Paris")

	r := row("ann", 30, "Paris")
	assert.False(t, eval(t, And(old, paris), r))
	assert.True(t, eval(t, Or(old, paris), r))
	assert.True(t, eval(t, Not{Filter: old}, r))
	assert.True(t, eval(t, And(), r))
	assert.Equal(t, "(age > 40 OR city == Paris)", Or(old, paris).Description())
}

func TestFilterColumns(t *testing.T) {
	old, _ := NewPredicate("age", datatable.OpGreater, "40")
	paris, _ := NewPredicate("city", datatable.OpEqual, "Paris")

	assert.Equal(t, []string{"age"}, Columns(old))
	assert.Equal(t, []string{"age", "city"}, Columns(Or(old, Not{Filter: paris})))
	assert.Empty(t, Columns(AnyColumn{Term: "x"}))
	assert.Empty(t, Columns(And()))
}

func TestQueryParser(t *testing.T) {
	qp := NewQueryParser(testColumns)

	rows := [][]datatable.Value{
		row("ann", 30, "Paris"),
		row("bob", 45, "Rome"),
		row("cy", 19, "Oslo"),
		row("dee", nil, "Paris"),
	}
	matches := func(query string) []string {
		f, err := qp.Parse(query)
		require.NoError(t, err, query)
		var names []string
		for _, r := range rows {
			if eval(t, f, r) {
				names = append(names, r[0].Formatted)
			}
		}
		return names
	}

	assert.Equal(t, []string{"bob"}, matches("AGE > 40"))
	assert.Equal(t, []string{"ann", "dee"}, matches("city = 'Paris'"))
	assert.Equal(t, []string{"ann", "cy"}, matches("age < 40 and city != Rome"))
	assert.Equal(t, []string{"bob", "cy"}, matches("city = Rome OR age < 20 AND city = Oslo"))
	assert.Equal(t, []string{"dee"}, matches("age is null"))
	assert.Equal(t, []string{"cy"}, matches("name ^= c"))
	assert.Equal(t, []string{"bob"}, matches("ROM"))
	assert.Equal(t, []string{"ann", "dee"}, matches(`city = "Paris or Rome" OR city = Paris`))

	f, err := qp.Parse("   ")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestQueryParserErrors(t *testing.T) {
	qp := NewQueryParser(testColumns)

	_, err := qp.Parse("salary > 3")
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)

	_, err = qp.Parse("age > 3 AND")
	assert.ErrorIs(t, err, datatable.ErrFilterOperator)

	_, err = qp.Parse("OR age > 3")
	assert.ErrorIs(t, err, datatable.ErrFilterOperator)
}
