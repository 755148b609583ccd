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

package frame

import (
	"strings"
	"time"

	"parqcel/datatable"
)

// DetectSampleSize is the number of leading non-blank values inspected when
// guessing a date layout.
const DetectSampleSize = 500

// DateLayouts are tried in order. Four digit years come first so that
// "01/02/2024" is never read with a two digit year layout.
var DateLayouts = []string{
	// four digit year, date only
	"2006-1-2",
	"1/2/2006",
	"2006/1/2",
	"2-1-2006",
	"2/1/2006",
	// four digit year, date and time
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2006-1-2T15:04:05",
	// two digit year
	"1/2/06",
	"2-1-06",
	"2/1/06",
	"1/2/06 15:04:05",
	"1/2/06 15:04",
	"2-1-06 15:04:05",
	"2-1-06 15:04",
	"2/1/06 15:04:05",
	"2/1/06 15:04",
}

// DetectLayout returns the first layout that parses every sample.
func DetectLayout(samples []string) (string, bool) {
	if len(samples) == 0 {
		return "", false
	}
	for _, layout := range DateLayouts {
		ok := true
		for _, s := range samples {
			if _, err := time.Parse(layout, s); err != nil {
				ok = false
				break
			}
		}
		if ok {
			return layout, true
		}
	}
	return "", false
}

// ParseDate parses one value with every layout in turn.
func ParseDate(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ParseDates converts text values (string or nil) to raw Date or Datetime
// values. A layout detected from the leading sample is applied to the whole
// column; values it misses fall back to ParseDate, and values nothing can
// parse become nil. It returns the detected layout, if any.
func ParseDates(values []interface{}, target datatable.ColumnType) ([]interface{}, string) {
	samples := make([]string, 0, DetectSampleSize)
	for _, v := range values {
		s, _ := v.(string)
		if s = strings.TrimSpace(s); s != "" {
			samples = append(samples, s)
			if len(samples) >= DetectSampleSize {
				break
			}
		}
	}
	layout, detected := DetectLayout(samples)

	out := make([]interface{}, len(values))
	for i, v := range values {
		s, _ := v.(string)
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		var (
			ts  time.Time
			ok  bool
			err error
		)
		if detected {
			ts, err = time.Parse(layout, s)
			ok = err == nil
		}
		if !ok {
			ts, ok = ParseDate(s)
		}
		if !ok {
			continue
		}
		if target == datatable.TypeDate {
			y, m, d := ts.Date()
			ts = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		}
		out[i] = ts.UTC()
	}
	return out, layout
}
