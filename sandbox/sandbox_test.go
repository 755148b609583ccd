package sandbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parqcel/datatable"
	"parqcel/frame"
)

func input(t *testing.T) *frame.Table {
	t.Helper()
	tbl, err := frame.FromRows([]frame.Field{
		{Name: "name", Type: datatable.TypeUtf8},
		{Name: "age", Type: datatable.TypeInt64},
	}, [][]interface{}{{"ann", 30}, {"bob", 45}, {"cy", 19}})
	require.NoError(t, err)
	return tbl
}

func TestValidateRejectsImports(t *testing.T) {
	for _, code := range []string{
		"import os\nos.system('x')",
		"import \"os\"",
		"dataset.Head(1)\nimport (\n\"fmt\"\n)",
	} {
		_, err := Validate(code)
		assert.ErrorIs(t, err, datatable.ErrSandboxPolicy, code)
	}
}

func TestValidatePolicy(t *testing.T) {
	rejected := map[string]string{
		"bare call":        `print("x")`,
		"unknown name":     `os.Exit(1)`,
		"loop":             "for {}\ndataset",
		"func literal":     `dataset.Filter(func() {})`,
		"go statement":     "go dataset.Head(1)\ndataset",
		"defer":            "defer dataset.Head(1)\ndataset",
		"other variable":   "x := dataset\nx",
		"index":            `dataset.Columns()[0]`,
		"composite":        `dataset.Select([]string{"a"}...)`,
		"declaration":      "var x = 1\ndataset",
		"unexported":       `dataset.then(nil)`,
		"operators":        `dataset.Head(dataset.Height() - 1)`,
		"escape wrapper":   "}\nfunc init() {\n",
		"if":               "if true { result = dataset }",
		"assign to other":  `dataset = dataset.Head(1)`,
		"multi assignment": "result, x := dataset, dataset",
	}
	for name, code := range rejected {
		_, err := Validate(code)
		assert.ErrorIs(t, err, datatable.ErrSandboxPolicy, name)
	}
}

func TestValidateSyntax(t *testing.T) {
	_, err := Validate("dataset.Filter(")
	assert.ErrorIs(t, err, datatable.ErrSandboxSyntax)

	_, err = Validate("df[df['a'] > 3]")
	assert.Error(t, err)
}

func TestValidateResultBinding(t *testing.T) {
	body, err := Validate(`dataset.Filter(tbl.Col("age").Gt(20))`)
	require.NoError(t, err)
	assert.Equal(t, "result = dataset.Filter(tbl.Col(\"age\").Gt(20))\n", body)

	body, err = Validate("result := dataset.Head(2)\nresult = result.Tail(1)")
	require.NoError(t, err)
	assert.Equal(t, "result = dataset.Head(2)\nresult = result.Tail(1)\n", body)

	body, err = Validate("dataset.Head(-1 + 3)")
	require.NoError(t, err)
	assert.Contains(t, body, "Head(-1 + 3)")

	_, err = Validate("   ")
	assert.ErrorIs(t, err, datatable.ErrSandboxResult)
}

func TestRunFilter(t *testing.T) {
	r := NewRunner(nil, 0)
	in := input(t)

	out, err := r.Run(context.Background(), `dataset.Filter(tbl.Col("age").Gt(20)).Sort("age", true)`, in)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"bob", "ann"}, out.ColumnValues(0))
	assert.Equal(t, 3, in.NumRows())
}

func TestRunResultAssignment(t *testing.T) {
	r := NewRunner(nil, 0)

	code := "result = dataset.SortBy(tbl.Desc(\"name\"))\nresult = result.Head(tbl.Lit(2).(int))"
	_, err := r.Run(context.Background(), code, input(t))
	assert.ErrorIs(t, err, datatable.ErrSandboxPolicy)

	out, err := r.Run(context.Background(), "result = dataset.SortBy(tbl.Desc(\"name\"))\nresult = result.Head(2)", input(t))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"cy", "bob"}, out.ColumnValues(0))
}

func TestRunReportsFrameErrors(t *testing.T) {
	r := NewRunner(nil, 0)

	_, err := r.Run(context.Background(), `dataset.Filter(tbl.Col("salary").Gt(1))`, input(t))
	assert.ErrorIs(t, err, datatable.ErrSandboxResult)
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)

	_, err = r.Run(context.Background(), `nil`, input(t))
	assert.ErrorIs(t, err, datatable.ErrSandboxResult)

	_, err = r.Run(context.Background(), `dataset.Height()`, input(t))
	assert.ErrorIs(t, err, datatable.ErrSandboxResult)
}

func TestProgram(t *testing.T) {
	src, err := Program("dataset")
	require.NoError(t, err)
	assert.Contains(t, src, `import tbl "parqcel/sandbox/tbl"`)
	assert.Contains(t, src, "result = dataset\n")
}
