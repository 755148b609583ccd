// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package assistant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const systemPrompt = `You write short Go transformation programs for a table editor.
The table is bound to the name dataset. Only these calls exist:
dataset.Filter(expr), dataset.Where(query), dataset.Sort(column, descending), dataset.SortBy(tbl.Asc(column), tbl.Desc(column)),
dataset.Head(n), dataset.Tail(n), dataset.Select(columns...), dataset.Drop(columns...), dataset.Rename(old, new),
dataset.Cast(column, type), dataset.WithColumn(name, type, default).
Expressions: tbl.Col(name).Gt/Ge/Lt/Le/Eq/Ne(value), .Between(lo, hi), .Contains/StartsWith/EndsWith(text),
.IsNull(), .IsNotNull(), combined with .And(expr), .Or(expr), .Not().
No imports, loops, variables or functions. The last expression is the result.
Reply with a JSON object with keys "text" (one sentence) and "code".`

// Ollama asks a local Ollama runtime for suggestions.
type Ollama struct {
	httpClient *http.Client
	host       string
	model      string
}

// NewOllama creates a client targeting host (e.g. http://127.0.0.1:11434).
func NewOllama(host, model string, timeout time.Duration) *Ollama {
	if host == "" {
		host = "http://127.0.0.1:11434"
	}
	if model == "" {
		model = "llama3"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Ollama{httpClient: &http.Client{Timeout: timeout}, host: strings.TrimRight(host, "/"), model: model}
}

// Structures aligned with Ollama /api/chat (non-streaming)
type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Format   string              `json:"format,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
	Error   string            `json:"error"`
}

// UnreachableError indicates the runtime could not be contacted.
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("endpoint unreachable at %s: %v", e.Host, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// Suggest sends prompt to the model and extracts the proposed program.
func (c *Ollama) Suggest(ctx context.Context, prompt string) (Suggestion, error) {
	if strings.TrimSpace(prompt) == "" {
		return Suggestion{}, errors.New("prompt cannot be empty")
	}
	payload, err := json.Marshal(ollamaChatRequest{
		Model: c.model,
		Messages: []ollamaChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Format: "json",
	})
	if err != nil {
		return Suggestion{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return Suggestion{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Suggestion{}, &UnreachableError{Host: c.host, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Suggestion{}, fmt.Errorf("read response: %w", err)
	}
	var out ollamaChatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return Suggestion{}, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error == "" {
			out.Error = http.StatusText(resp.StatusCode)
		}
		return Suggestion{}, fmt.Errorf("ollama: %s (status %d)", out.Error, resp.StatusCode)
	}
	return parseReply(out.Message.Content), nil
}

var fencedCode = regexp.MustCompile("(?s)```(?:go)?\\s*\\n(.*?)```")

// parseReply accepts a JSON object, a fenced code block, or plain text.
func parseReply(content string) Suggestion {
	var s Suggestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &s); err == nil && s.Code != "" {
		s.Code = strings.TrimSpace(s.Code)
		return s
	}
	if m := fencedCode.FindStringSubmatch(content); m != nil {
		text := strings.TrimSpace(strings.Replace(content, m[0], "", 1))
		return Suggestion{Text: text, Code: strings.TrimSpace(m[1])}
	}
	return Suggestion{Text: strings.TrimSpace(content), Code: "dataset"}
}
