package assistant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parqcel/datatable"
	"parqcel/frame"
	"parqcel/sandbox"
)

func TestRulesSuggest(t *testing.T) {
	cases := map[string]string{
		"show top 5 customers by revenue":    `dataset.Sort("revenue", true).Head(5)`,
		"bottom 3 rows by age":               `dataset.Sort("age", false).Head(3)`,
		"show rows where status == 'active'": `dataset.Filter(tbl.Col("status").Eq("active"))`,
		"rows where age >= 30":               `dataset.Filter(tbl.Col("age").Ge(30))`,
		"sort by name desc":                  `dataset.Sort("name", true)`,
		"please drop column notes":           `dataset.Drop("notes")`,
		"first 10":                           `dataset.Head(10)`,
		"make it nicer":                      `dataset`,
	}
	for prompt, code := range cases {
		s, err := Rules{}.Suggest(context.Background(), prompt)
		require.NoError(t, err)
		assert.Equal(t, code, s.Code, prompt)
		assert.NotEmpty(t, s.Text, prompt)

		_, err = sandbox.Validate(s.Code)
		assert.NoError(t, err, prompt)
	}
}

func TestRulesCodeRuns(t *testing.T) {
	tbl, err := frame.FromRows([]frame.Field{
		{Name: "name", Type: datatable.TypeUtf8},
		{Name: "revenue", Type: datatable.TypeInt64},
	}, [][]interface{}{{"a", 10}, {"b", 30}, {"c", 20}})
	require.NoError(t, err)

	s, err := Rules{}.Suggest(context.Background(), "top 2 by revenue")
	require.NoError(t, err)
	out, err := sandbox.NewRunner(nil, 0).Run(context.Background(), s.Code, tbl)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"b", "c"}, out.ColumnValues(0))
}

func TestNewBackend(t *testing.T) {
	b, err := New(Settings{})
	require.NoError(t, err)
	assert.IsType(t, Rules{}, b)

	b, err = New(Settings{Backend: "ollama", Host: "http://localhost:1"})
	require.NoError(t, err)
	assert.IsType(t, &Ollama{}, b)

	_, err = New(Settings{Backend: "gpt"})
	assert.Error(t, err)
}

func TestOllamaSuggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tiny", req.Model)
		assert.Len(t, req.Messages, 2)

		reply := `{"text": "Keeps adults.", "code": "dataset.Filter(tbl.Col(\"age\").Ge(18))"}`
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaChatMessage{Role: "assistant", Content: reply}})
	}))
	defer srv.Close()

	s, err := NewOllama(srv.URL, "tiny", 0).Suggest(context.Background(), "adults only")
	require.NoError(t, err)
	assert.Equal(t, "Keeps adults.", s.Text)
	assert.Equal(t, `dataset.Filter(tbl.Col("age").Ge(18))`, s.Code)
}

func TestOllamaErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model not found"}`))
	}))
	defer srv.Close()

	_, err := NewOllama(srv.URL, "missing", 0).Suggest(context.Background(), "x")
	assert.ErrorContains(t, err, "model not found")

	_, err = NewOllama(srv.URL, "", 0).Suggest(context.Background(), " ")
	assert.Error(t, err)
}

func TestParseReply(t *testing.T) {
	s := parseReply("Here you go:\n```go\ndataset.Head(3)\n```")
	assert.Equal(t, "dataset.Head(3)", s.Code)
	assert.Equal(t, "Here you go:", s.Text)

	s = parseReply("no idea")
	assert.Equal(t, "dataset", s.Code)
}

func TestExplainColumn(t *testing.T) {
	tbl, err := frame.FromRows([]frame.Field{{Name: "c", Type: datatable.TypeUtf8}},
		[][]interface{}{{"x"}, {"y"}, {"x"}})
	require.NoError(t, err)
	assert.Equal(t, "Column `c` (Utf8): 3 sampled values, 2 unique values.", ExplainColumn(tbl, "c"))
	assert.Equal(t, "Column `d` not found.", ExplainColumn(tbl, "d"))
}
