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
	"fmt"
	"math"
	"os"
	"time"

	"github.com/goccy/go-json"

	"parqcel/datatable"
	"parqcel/frame"
)

// ExportCSV writes t as comma separated text with a header row. Nulls are
// written as empty fields.
func ExportCSV(t *frame.Table, filePath string) error {
	out, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.Write(t.Names()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, t.NumCols())
	for r := 0; r < t.NumRows(); r++ {
		for c := range row {
			row[c] = t.Text(r, c)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return out.Close()
}

// ExportJSON writes t as an indented array of objects. Numbers and booleans
// keep their JSON types, dates are written as text.
func ExportJSON(t *frame.Table, filePath string) error {
	out, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer out.Close()

	records := make([]orderedRecord, t.NumRows())
	fields := t.Fields()
	for r := range records {
		rec := orderedRecord{keys: make([]string, len(fields)), values: make([]interface{}, len(fields))}
		for c, f := range fields {
			rec.keys[c] = f.Name
			rec.values[c] = exportValue(t.Raw(r, c), f.Type)
		}
		records[r] = rec
	}

	w := bufio.NewWriter(out)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return out.Close()
}

func exportValue(raw interface{}, t datatable.ColumnType) interface{} {
	switch x := raw.(type) {
	case time.Time:
		return datatable.FormatRaw(raw, t)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	}
	return raw
}

// orderedRecord marshals as an object with keys in column order.
type orderedRecord struct {
	keys   []string
	values []interface{}
}

func (o orderedRecord) MarshalJSON() ([]byte, error) {
	var buf []byte
	buf = append(buf, '{')
	for i, k := range o.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	return append(buf, '}'), nil
}
