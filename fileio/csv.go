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

package fileio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"parqcel/datatable"
	"parqcel/frame"
)

// DetectSeparator guesses the CSV separator from the first line.
func DetectSeparator(r io.Reader) rune {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	if !scanner.Scan() {
		return ','
	}
	firstLine := scanner.Text()

	// Count occurrences of common separators; ties go to the earlier entry
	candidates := []rune{',', ';', '\t', '|'}
	maxCount := 0
	detected := ','
	for _, sep := range candidates {
		if count := strings.Count(firstLine, string(sep)); count > maxCount {
			maxCount = count
			detected = sep
		}
	}
	return detected
}

// SeparatorName returns a human-readable name for the separator
func SeparatorName(sep rune) string {
	switch sep {
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '\t':
		return "tab"
	case '|':
		return "pipe"
	default:
		return string(sep)
	}
}

func loadCSV(path string, opts Options) (*frame.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sep := opts.Delimiter
	if sep == 0 {
		if strings.EqualFold(filepath.Ext(path), ".tsv") {
			sep = '\t'
		} else {
			sep = DetectSeparator(f)
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}
		}
	}
	opts.logger().Printf("reading %s with %s separator", filepath.Base(path), SeparatorName(sep))
	return readCSV(f, sep, opts.DetectDates)
}

// readCSV reads every column as Utf8. Short rows are padded with nulls.
func readCSV(r io.Reader, sep rune, detectDates bool) (*frame.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, datatable.ErrEmptyData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return textTable(header, rows, detectDates)
}

// textTable builds an all-Utf8 table from a header and string rows.
func textTable(header []string, rows [][]string, detectDates bool) (*frame.Table, error) {
	fields := make([]frame.Field, len(header))
	for i, h := range header {
		fields[i] = frame.Field{Name: frame.UniqueName(fields[:i], strings.TrimSpace(h), i), Type: datatable.TypeUtf8}
	}

	builders := make([]*frame.ColumnBuilder, len(fields))
	for i := range fields {
		builders[i] = frame.NewColumnBuilder(datatable.TypeUtf8)
		builders[i].Reserve(len(rows))
	}
	for _, rec := range rows {
		for c, b := range builders {
			if c < len(rec) {
				if err := b.AppendText(rec[c]); err != nil {
					return nil, err
				}
			} else {
				b.AppendNull()
			}
		}
	}

	cols := make([]arrow.Array, len(builders))
	for i, b := range builders {
		cols[i] = b.Finish()
	}
	t, err := frame.New(fields, cols)
	if err != nil {
		return nil, err
	}
	if detectDates {
		return convertDateColumns(t)
	}
	return t, nil
}

// convertDateColumns turns text columns whose leading values share a date
// layout into Date (or Datetime when the layout has a time part).
func convertDateColumns(t *frame.Table) (*frame.Table, error) {
	for c, f := range t.Fields() {
		if !f.Type.IsText() {
			continue
		}
		samples := make([]string, 0, frame.DetectSampleSize)
		for r := 0; r < t.NumRows() && len(samples) < frame.DetectSampleSize; r++ {
			if s := strings.TrimSpace(t.Text(r, c)); s != "" {
				samples = append(samples, s)
			}
		}
		layout, ok := frame.DetectLayout(samples)
		if !ok {
			continue
		}
		target := datatable.TypeDate
		if strings.Contains(layout, "15") {
			target = datatable.TypeDatetime
		}
		next, err := t.ConvertColumnType(f.Name, target)
		if err != nil {
			return nil, err
		}
		t = next
	}
	return t, nil
}
