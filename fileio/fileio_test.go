package fileio

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parqcel/datatable"
	"parqcel/frame"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func typedTable(t *testing.T) *frame.Table {
	t.Helper()
	tbl, err := frame.FromRows([]frame.Field{
		{Name: "id", Type: datatable.TypeInt64},
		{Name: "score", Type: datatable.TypeFloat64},
		{Name: "name", Type: datatable.TypeUtf8},
		{Name: "ok", Type: datatable.TypeBoolean},
		{Name: "day", Type: datatable.TypeDate},
		{Name: "at", Type: datatable.TypeDatetime},
	}, [][]interface{}{
		{1, 1.25, "ann", true, "2024-03-01", "2024-03-01T10:30:00"},
		{2, nil, "bob, jr", false, nil, "2024-03-02 08:00"},
		{nil, -3.5, nil, nil, "1999-12-31", nil},
	})
	require.NoError(t, err)
	return tbl
}

func TestParquetRoundTrip(t *testing.T) {
	in := typedTable(t)
	p := filepath.Join(t.TempDir(), "out.parquet")
	require.NoError(t, SaveParquet(in, p))

	out, err := Load(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, in.Names(), out.Names())
	assert.Equal(t, in.NumRows(), out.NumRows())
	assert.True(t, frame.Equal(in, out), "got %v", out)
}

func TestLoadCSVDetectsSeparator(t *testing.T) {
	p := writeFile(t, "data.csv", "a;b;c\n1;x;2024-01-05\n2;y;2024-02-10\n")
	tbl, err := Load(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Names())
	assert.Equal(t, datatable.TypeUtf8, tbl.Field(0).Type)
	assert.Equal(t, "2024-01-05", tbl.Text(0, 2))

	tbl, err = Load(context.Background(), p, Options{DetectDates: true})
	require.NoError(t, err)
	assert.Equal(t, datatable.TypeDate, tbl.Field(2).Type)
	assert.Equal(t, datatable.TypeUtf8, tbl.Field(0).Type)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), tbl.Raw(1, 2))
}

func TestLoadCSVShortRowsAndHeaders(t *testing.T) {
	p := writeFile(t, "data.tsv", "a\t\ta\n1\t2\n")
	tbl, err := Load(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "column_2", "a_2"}, tbl.Names())
	assert.Nil(t, tbl.Raw(0, 2))

	_, err = Load(context.Background(), writeFile(t, "empty.csv", ""), Options{})
	assert.ErrorIs(t, err, datatable.ErrEmptyData)
}

func TestDetectSeparator(t *testing.T) {
	assert.Equal(t, '|', DetectSeparator(strings.NewReader("a|b|c\n")))
	assert.Equal(t, '\t', DetectSeparator(strings.NewReader("a\tb\n")))
	assert.Equal(t, ',', DetectSeparator(strings.NewReader("single\n")))
	assert.Equal(t, "semicolon", SeparatorName(';'))
}

func TestLoadJSON(t *testing.T) {
	p := writeFile(t, "data.json", `[
		{"name": "ann", "age": 30, "score": 1.5, "ok": true, "tags": ["a"]},
		{"age": 41, "name": "bob", "score": 2, "ok": false, "extra": "x"}
	]`)
	tbl, err := Load(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age", "score", "ok", "tags", "extra"}, tbl.Names())
	types := make([]datatable.ColumnType, tbl.NumCols())
	for i, f := range tbl.Fields() {
		types[i] = f.Type
	}
	assert.Equal(t, []datatable.ColumnType{
		datatable.TypeUtf8, datatable.TypeInt64, datatable.TypeFloat64,
		datatable.TypeBoolean, datatable.TypeUtf8, datatable.TypeUtf8,
	}, types)
	assert.Equal(t, `["a"]`, tbl.Text(0, 4))
	assert.Nil(t, tbl.Raw(0, 5))

	p = writeFile(t, "one.json", `{"a": 1}`)
	tbl, err = Load(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.NumRows())

	_, err = Load(context.Background(), writeFile(t, "none.json", `[]`), Options{})
	assert.ErrorIs(t, err, datatable.ErrEmptyData)
}

func TestDeltaSharingProfileDetection(t *testing.T) {
	profile := `{"shareCredentialsVersion": 1, "endpoint": "https://example.com", "bearerToken": "t"}`
	assert.True(t, IsDeltaSharingProfile([]byte(profile)))
	assert.Equal(t, FileTypeDeltaSharingProfile, DetectFileType("x.share", []byte(profile)))
	assert.Equal(t, FileTypeJSON, DetectFileType("x.json", []byte(`[{"a":1}]`)))
	assert.Equal(t, FileTypeUnknown, DetectFileType("x.txt", []byte("hello")))

	_, err := Load(context.Background(), writeFile(t, "p.share", profile), Options{})
	assert.ErrorIs(t, err, datatable.ErrUnsupportedFile)
	_, err = Load(context.Background(), writeFile(t, "x.bin", "??"), Options{})
	assert.ErrorIs(t, err, datatable.ErrUnsupportedFile)
}

func TestLoadXLSX(t *testing.T) {
	p := filepath.Join(t.TempDir(), "book.xlsx")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	files := map[string]string{
		"xl/workbook.xml": `<workbook xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
			<sheets><sheet name="Data" sheetId="1" r:id="rId1"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<Relationships>
			<Relationship Id="rId1" Target="worksheets/sheet1.xml"/></Relationships>`,
		"xl/sharedStrings.xml": `<sst><si><t>city</t></si><si><t>count</t></si><si><t>Oslo</t></si></sst>`,
		"xl/worksheets/sheet1.xml": `<worksheet><sheetData>
			<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
			<row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>12</v></c></row>
			<row r="3"><c r="B3" t="inlineStr"><is><t>7</t></is></c></row>
			</sheetData></worksheet>`,
	}
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	tbl, err := Load(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "count"}, tbl.Names())
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, "Oslo", tbl.Text(0, 0))
	assert.Equal(t, "", tbl.Text(1, 0))
	assert.Equal(t, "7", tbl.Text(1, 1))

	_, err = Load(context.Background(), p, Options{Sheet: "Missing"})
	assert.Error(t, err)
}

func TestExportCSVAndJSON(t *testing.T) {
	in := typedTable(t)
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "out.csv")
	require.NoError(t, Save(in, csvPath))
	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Equal(t, "id,score,name,ok,day,at", lines[0])
	assert.Equal(t, `2,,"bob, jr",false,,2024-03-02 08:00:00`, lines[2])

	back, err := Load(context.Background(), csvPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, in.NumRows(), back.NumRows())

	jsonPath := filepath.Join(dir, "out.json")
	require.NoError(t, Save(in, jsonPath))
	back, err = Load(context.Background(), jsonPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, in.Names(), back.Names())
	assert.Equal(t, datatable.TypeInt64, back.Field(0).Type)
	assert.Equal(t, datatable.TypeBoolean, back.Field(3).Type)
	assert.Equal(t, "2024-03-01", back.Text(0, 4))

	assert.ErrorIs(t, Save(in, filepath.Join(dir, "out.xlsx")), datatable.ErrUnsupportedFile)
}
