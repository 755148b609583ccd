package model

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parqcel/datatable"
	"parqcel/features"
	"parqcel/frame"
)

func abTable(t *testing.T) *frame.Table {
	t.Helper()
	tbl, err := frame.FromRows([]frame.Field{
		{Name: "a", Type: datatable.TypeInt64},
		{Name: "b", Type: datatable.TypeUtf8},
	}, [][]interface{}{{1, "x"}, {2, "y"}, {3, "z"}})
	require.NoError(t, err)
	return tbl
}

func newModel(t *testing.T, pageSize int) *TableModel {
	t.Helper()
	m := New(Options{PageSize: pageSize, HistoryLimit: 0})
	m.Load(abTable(t), "test")
	return m
}

func TestPaging(t *testing.T) {
	m := newModel(t, 2)
	assert.Equal(t, 2, m.MaxPages())
	assert.Equal(t, 2, m.RowCount())
	assert.Equal(t, "1", m.CellText(0, 0))
	assert.Equal(t, "y", m.CellText(1, 1))

	require.True(t, m.NextPage())
	assert.Equal(t, 1, m.RowCount())
	assert.Equal(t, "3", m.CellText(0, 0))
	assert.Equal(t, "z", m.CellText(0, 1))
	assert.False(t, m.NextPage())

	assert.False(t, m.JumpToPage(7))
	assert.Equal(t, 1, m.CurrentPage())
	assert.True(t, m.FirstPage())
	assert.True(t, m.LastPage())
	assert.True(t, m.PreviousPage())
	assert.Equal(t, "Page 1 of 2", m.PageLabel())
}

func TestAddColumnScenario(t *testing.T) {
	m := newModel(t, 10)
	require.NoError(t, m.AddColumn("flag", datatable.TypeBoolean, "True"))
	assert.Equal(t, 3, m.ColumnCount())
	for r := 0; r < 3; r++ {
		assert.Equal(t, "true", m.CellText(r, 2))
	}
	assert.Equal(t, "flag (Boolean)", m.HeaderLabel(2))

	depth := m.UndoDepth()
	err := m.AddColumn("flag", datatable.TypeBoolean, "True")
	assert.ErrorIs(t, err, datatable.ErrDuplicateColumn)
	assert.Equal(t, 3, m.ColumnCount())
	assert.Equal(t, depth, m.UndoDepth())
}

func TestSetCellScenario(t *testing.T) {
	m := newModel(t, 2)
	err := m.SetCellText(0, 0, "abc")
	assert.ErrorIs(t, err, datatable.ErrTypeCoercion)
	assert.Equal(t, "1", m.CellText(0, 0))
	assert.Equal(t, 0, m.UndoDepth())

	var changes []Change
	m.OnChange(func(c Change) { changes = append(changes, c) })
	require.True(t, m.NextPage())
	require.NoError(t, m.SetCellText(0, 0, "30"))
	assert.Equal(t, "30", m.Current().Text(2, 0))
	assert.Equal(t, 1, m.CurrentPage())
	assert.Equal(t, Change{Kind: ChangeCell, Row: 0, Col: 0}, changes[len(changes)-1])

	assert.ErrorIs(t, m.SetCellText(5, 0, "1"), datatable.ErrInvalidRow)
}

func TestFilterBetweenScenario(t *testing.T) {
	m := New(Options{})
	tbl, err := frame.FromRows([]frame.Field{{Name: "v", Type: datatable.TypeInt64}},
		[][]interface{}{{3}, {5}, {7}, {10}, {12}})
	require.NoError(t, err)
	m.Load(tbl, "numbers")

	require.NoError(t, m.Filter("v", "between", 10, 5))
	assert.Equal(t, []interface{}{int64(5), int64(7), int64(10)}, m.Current().ColumnValues(0))

	assert.ErrorIs(t, m.Filter("v", "between", 1), datatable.ErrFilterOperator)
	assert.ErrorIs(t, m.Filter("v", "like", 1), datatable.ErrFilterOperator)
	assert.Equal(t, 1, m.UndoDepth())
}

func TestFailedMutationsKeepHistory(t *testing.T) {
	m := newModel(t, 10)
	require.NoError(t, m.DropColumn("b"))
	require.True(t, m.Undo())
	undo, redo := m.UndoDepth(), m.RedoDepth()

	failures := []error{
		m.DropColumn("missing"),
		m.RenameColumn("a", "b"),
		m.AddColumn("bad/name", datatable.TypeUtf8, ""),
		m.Sort(frame.SortKey{Column: "missing"}),
		m.ConvertType("b", datatable.TypeInt64),
		m.Query("missing = 1"),
		m.ApplyTransformation(context.Background(), "import os\nos.system('x')"),
	}
	for _, err := range failures {
		assert.Error(t, err)
	}
	assert.Equal(t, undo, m.UndoDepth())
	assert.Equal(t, redo, m.RedoDepth())
	assert.Equal(t, 2, m.ColumnCount())
}

func TestUndoRedo(t *testing.T) {
	m := newModel(t, 2)
	assert.False(t, m.Undo())

	require.NoError(t, m.Sort(frame.SortKey{Column: "a", Descending: true}))
	require.NoError(t, m.RenameColumn("b", "label"))
	after := m.Current()

	require.True(t, m.Undo())
	require.True(t, m.Undo())
	assert.True(t, frame.Equal(abTable(t), m.Current()))
	assert.False(t, m.CanUndo())

	require.True(t, m.Redo())
	require.True(t, m.Redo())
	assert.True(t, frame.Equal(after, m.Current()))
	assert.False(t, m.CanRedo())
}

func TestReplaceRecordsPrevious(t *testing.T) {
	m := New(Options{PageSize: 2})
	m.Replace(abTable(t))
	assert.Equal(t, 0, m.UndoDepth())

	require.True(t, m.NextPage())
	m.Replace(abTable(t).Head(1))
	assert.Equal(t, 1, m.UndoDepth())
	assert.Equal(t, 0, m.CurrentPage())
	assert.Equal(t, 1, m.MaxPages())
}

func TestQueryAndTransformation(t *testing.T) {
	m := newModel(t, 10)
	require.NoError(t, m.Query("a >= 2 AND b != z"))
	assert.Equal(t, 1, m.TotalRows())
	require.True(t, m.Undo())

	before := m.TotalRows()
	require.NoError(t, m.ApplyTransformation(context.Background(), `dataset.Filter(tbl.Col("a").Gt(1))`))
	assert.LessOrEqual(t, m.TotalRows(), before)
	assert.Equal(t, 2, m.TotalRows())
	assert.Equal(t, 1, m.UndoDepth())
	assert.False(t, m.CanRedo())

	err := m.ApplyTransformation(context.Background(), "import os\nos.system('x')")
	assert.ErrorIs(t, err, datatable.ErrSandboxPolicy)
	assert.Equal(t, 2, m.TotalRows())
}

func TestConvertAndTypes(t *testing.T) {
	m := newModel(t, 10)
	require.NoError(t, m.ConvertType("a", datatable.TypeFloat64))
	assert.Equal(t, map[string]string{"a": "Float64", "b": "Utf8"}, m.ColumnTypes())

	r, err := m.Statistics("a")
	require.NoError(t, err)
	assert.Equal(t, 2.0, r.Numeric.Mean)
}

func TestDirty(t *testing.T) {
	m := newModel(t, 10)
	assert.False(t, m.Dirty())
	require.NoError(t, m.SetCellText(0, 1, "changed"))
	assert.True(t, m.Dirty())
	require.True(t, m.Undo())
	assert.False(t, m.Dirty())
	require.True(t, m.Redo())
	m.MarkSaved()
	assert.False(t, m.Dirty())
}

func TestDataSource(t *testing.T) {
	m := newModel(t, 2)
	name, err := m.ColumnName(1)
	require.NoError(t, err)
	assert.Equal(t, "b", name)
	_, err = m.ColumnType(4)
	assert.ErrorIs(t, err, datatable.ErrInvalidColumn)

	v, err := m.Cell(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "2", v.Formatted)
	_, err = m.Cell(2, 0)
	assert.ErrorIs(t, err, datatable.ErrInvalidRow)

	row, err := m.Row(0)
	require.NoError(t, err)
	assert.Len(t, row, 2)
	assert.Equal(t, 3, m.Metadata()["total_rows"])
}

func TestEmptyTableMutationsAreUndoable(t *testing.T) {
	m := newModel(t, 10)
	require.NoError(t, m.DropColumn("b"))
	require.NoError(t, m.DropColumn("a"))
	empty := m.Current()
	require.Equal(t, 0, m.ColumnCount())
	require.Equal(t, 2, m.UndoDepth())

	require.NoError(t, m.ApplyTransformation(context.Background(), `dataset.WithColumn("c", "int", "1")`))
	assert.Equal(t, 1, m.ColumnCount())
	assert.Equal(t, 3, m.UndoDepth())

	require.True(t, m.Undo())
	assert.Same(t, empty, m.Current())
	require.True(t, m.Undo())
	assert.Equal(t, []string{"a"}, m.Current().Names())
}

func TestReplaceRecordsEmptyTables(t *testing.T) {
	m := New(Options{})
	m.Replace(frame.Empty())
	assert.Equal(t, 0, m.UndoDepth())

	m.Replace(abTable(t))
	assert.Equal(t, 1, m.UndoDepth())
	require.True(t, m.Undo())
	assert.Equal(t, 0, m.ColumnCount())
}

func TestFilterEmptyTableChecksColumns(t *testing.T) {
	m := newModel(t, 10)
	require.NoError(t, m.Filter("a", ">", 100))
	require.Equal(t, 0, m.TotalRows())
	depth := m.UndoDepth()

	err := m.ApplyTransformation(context.Background(), `dataset.Filter(tbl.Col("nope").Gt(1))`)
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)
	assert.ErrorIs(t, m.Query("nope = 1"), datatable.ErrColumnNotFound)
	assert.Equal(t, depth, m.UndoDepth())

	require.NoError(t, m.ApplyTransformation(context.Background(), `dataset.Filter(tbl.Col("a").Gt(1))`))
	assert.Equal(t, depth+1, m.UndoDepth())
}

func TestLoadStartsNewSession(t *testing.T) {
	m := newModel(t, 10)
	require.NoError(t, m.SetCellText(0, 1, "edited"))
	require.NoError(t, m.DropColumn("a"))
	require.True(t, m.Undo())
	require.True(t, m.CanUndo())
	require.True(t, m.CanRedo())

	other := abTable(t).Head(1)
	m.Load(other, "other")
	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())
	assert.False(t, m.Dirty())
	assert.Equal(t, "other", m.Source())

	m.Replace(abTable(t))
	assert.Equal(t, 1, m.UndoDepth())
	require.True(t, m.Undo())
	assert.Same(t, other, m.Current())
}

func TestFeaturizeAndPCA(t *testing.T) {
	m := newModel(t, 2)
	base := m.Current()

	opts := features.DefaultOptions()
	require.NoError(t, m.Featurize(opts))
	assert.Equal(t, []string{"a", "b", "a__standard", "b_x", "b_y", "b_z"}, m.Current().Names())
	assert.Equal(t, 1, m.UndoDepth())
	assert.Equal(t, "Float64", m.ColumnTypes()["b_x"])

	require.True(t, m.Undo())
	assert.Same(t, base, m.Current())

	ratio, err := m.AddPCA(2, opts)
	require.NoError(t, err)
	require.Len(t, ratio, 2)
	assert.Equal(t, []string{"a", "b", "pca_1", "pca_2"}, m.Current().Names())
	assert.Equal(t, 1, m.UndoDepth())

	_, err = m.AddPCA(2, opts)
	assert.ErrorIs(t, err, datatable.ErrDuplicateColumn)
	_, err = m.AddPCA(9, opts)
	assert.ErrorIs(t, err, datatable.ErrFeatures)
	assert.Equal(t, 1, m.UndoDepth())
}

// mutate applies one generated step to m. step selects the operation and v
// its argument; some steps fail on some tables, which is part of the test.
func mutate(m *TableModel, i, step int) error {
	v := step/8 - 5
	first := ""
	if m.ColumnCount() > 0 {
		first, _ = m.ColumnName(0)
	}
	switch step % 8 {
	case 0:
		return m.SetCellText(0, 0, strconv.Itoa(v))
	case 1:
		return m.AddColumn(fmt.Sprintf("c%d", i), datatable.TypeInt64, strconv.Itoa(v))
	case 2:
		return m.DropColumn(first)
	case 3:
		return m.RenameColumn(first, first+"r")
	case 4:
		return m.Sort(frame.SortKey{Column: first, Descending: v%2 == 0})
	case 5:
		return m.Filter(first, ">=", strconv.Itoa(v))
	case 6:
		return m.ApplyTransformation(context.Background(), "dataset.Head(2)")
	default:
		return m.ApplyTransformation(context.Background(), `dataset.WithColumn("w", "int", "1")`)
	}
}

func TestProperty_UndoRedoRestoresFinalTable(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	parameters.MaxSize = 16
	properties := gopter.NewProperties(parameters)

	properties.Property("undo walks back through every successful mutation and redo returns", prop.ForAll(
		func(steps []int) bool {
			m := New(Options{PageSize: 2})
			tbl, err := frame.FromRows([]frame.Field{
				{Name: "a", Type: datatable.TypeInt64},
				{Name: "b", Type: datatable.TypeUtf8},
			}, [][]interface{}{{0, "x"}, {1, "y"}, {2, "z"}})
			if err != nil {
				return false
			}
			m.Load(tbl, "prop")

			states := []*frame.Table{m.Current()}
			for i, step := range steps {
				before, depth := m.Current(), m.UndoDepth()
				if err := mutate(m, i, step); err != nil {
					if m.Current() != before || m.UndoDepth() != depth {
						return false
					}
					continue
				}
				if m.UndoDepth() != depth+1 || m.CanRedo() {
					return false
				}
				states = append(states, m.Current())
			}

			for j := len(states) - 2; j >= 0; j-- {
				if !m.Undo() || !frame.Equal(states[j], m.Current()) {
					return false
				}
			}
			if m.Undo() {
				return false
			}
			for j := 1; j < len(states); j++ {
				if !m.Redo() || !frame.Equal(states[j], m.Current()) {
					return false
				}
			}
			return !m.CanRedo()
		},
		gen.SliceOf(gen.IntRange(0, 87)),
	))

	properties.TestingRun(t)
}
