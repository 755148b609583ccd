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

// Package assistant turns natural language requests into transformation
// programs for the sandbox.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parqcel/frame"
)

// Suggestion is a proposed transformation. Code is a sandbox program; Text
// explains it to the user.
type Suggestion struct {
	Text string `json:"text"`
	Code string `json:"code"`
}

// Backend produces suggestions for a prompt.
type Backend interface {
	Suggest(ctx context.Context, prompt string) (Suggestion, error)
}

// Backend names accepted by New.
const (
	BackendRules  = "rules"
	BackendOllama = "ollama"
)

// Settings selects and configures a backend.
type Settings struct {
	Backend string
	Host    string
	Model   string
	Timeout time.Duration
}

// New creates the backend named in s. Unknown names are an error; an empty
// name selects the rule-based backend.
func New(s Settings) (Backend, error) {
	switch strings.ToLower(s.Backend) {
	case "", BackendRules, "dummy":
		return Rules{}, nil
	case BackendOllama:
		return NewOllama(s.Host, s.Model, s.Timeout), nil
	}
	return nil, fmt.Errorf("unknown assistant backend %q", s.Backend)
}

// ExplainColumn gives a short description of a column based on its first
// hundred values.
func ExplainColumn(t *frame.Table, column string) string {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return fmt.Sprintf("Column `%s` not found.", column)
	}
	n := t.NumRows()
	if n > 100 {
		n = 100
	}
	unique := make(map[string]struct{}, n)
	for r := 0; r < n; r++ {
		unique[t.Text(r, idx)] = struct{}{}
	}
	return fmt.Sprintf("Column `%s` (%s): %d sampled values, %d unique values.", column, t.Field(idx).Type, n, len(unique))
}
