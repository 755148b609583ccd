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
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Rules is a small rule-based backend. It recognises a handful of phrasings
// and never needs a network.
type Rules struct{}

type rule struct {
	re    *regexp.Regexp
	build func(m []string) Suggestion
}

var rules = []rule{
	{
		// "show top 5 customers by revenue"
		re: regexp.MustCompile(`(?i)\btop\s+(\d+)\b.*\bby\s+(\w+)`),
		build: func(m []string) Suggestion {
			return Suggestion{
				Text: fmt.Sprintf("Sorting `%s` descending and returning top %s rows.", m[2], m[1]),
				Code: fmt.Sprintf("dataset.Sort(%s, true).Head(%s)", strconv.Quote(m[2]), m[1]),
			}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\bbottom\s+(\d+)\b.*\bby\s+(\w+)`),
		build: func(m []string) Suggestion {
			return Suggestion{
				Text: fmt.Sprintf("Sorting `%s` ascending and returning the first %s rows.", m[2], m[1]),
				Code: fmt.Sprintf("dataset.Sort(%s, false).Head(%s)", strconv.Quote(m[2]), m[1]),
			}
		},
	},
	{
		// "show rows where status == 'active'"
		re: regexp.MustCompile(`(?i)\bwhere\s+(\w+)\s*(==|=)\s*'([\w\s-]+)'`),
		build: func(m []string) Suggestion {
			return Suggestion{
				Text: fmt.Sprintf("Filtering where `%s` == '%s'.", m[1], m[3]),
				Code: fmt.Sprintf("dataset.Filter(tbl.Col(%s).Eq(%s))", strconv.Quote(m[1]), strconv.Quote(m[3])),
			}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\bwhere\s+(\w+)\s*(>=|<=|>|<)\s*(-?\d+(?:\.\d+)?)`),
		build: func(m []string) Suggestion {
			method := map[string]string{">": "Gt", ">=": "Ge", "<": "Lt", "<=": "Le"}[m[2]]
			return Suggestion{
				Text: fmt.Sprintf("Filtering where `%s` %s %s.", m[1], m[2], m[3]),
				Code: fmt.Sprintf("dataset.Filter(tbl.Col(%s).%s(%s))", strconv.Quote(m[1]), method, m[3]),
			}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\bsort\s+by\s+(\w+)(\s+desc\w*)?`),
		build: func(m []string) Suggestion {
			desc := strings.TrimSpace(m[2]) != ""
			order := "ascending"
			if desc {
				order = "descending"
			}
			return Suggestion{
				Text: fmt.Sprintf("Sorting by `%s` %s.", m[1], order),
				Code: fmt.Sprintf("dataset.Sort(%s, %t)", strconv.Quote(m[1]), desc),
			}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\b(?:drop|remove)\s+(?:the\s+)?(?:column\s+)?(\w+)`),
		build: func(m []string) Suggestion {
			return Suggestion{
				Text: fmt.Sprintf("Dropping column `%s`.", m[1]),
				Code: fmt.Sprintf("dataset.Drop(%s)", strconv.Quote(m[1])),
			}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\b(?:first|head)\s+(\d+)`),
		build: func(m []string) Suggestion {
			return Suggestion{
				Text: fmt.Sprintf("Keeping the first %s rows.", m[1]),
				Code: fmt.Sprintf("dataset.Head(%s)", m[1]),
			}
		},
	},
}

// Suggest matches prompt against the rules in order. When nothing matches
// it returns a program that leaves the table unchanged.
func (Rules) Suggest(_ context.Context, prompt string) (Suggestion, error) {
	for _, r := range rules {
		if m := r.re.FindStringSubmatch(prompt); m != nil {
			return r.build(m), nil
		}
	}
	return Suggestion{
		Text: "I couldn't identify a simple transformation; here's a placeholder suggestion.",
		Code: "dataset",
	}, nil
}
