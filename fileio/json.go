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
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"parqcel/datatable"
	"parqcel/frame"
)

type jsonRecord map[string]interface{}

// decodeJSON reads an array of objects (or a single object). Columns appear
// in order of first use; a column whose values are all integers becomes
// Int64, all numbers Float64, all booleans Boolean, anything else Utf8.
func decodeJSON(content []byte) (*frame.Table, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	var (
		records []jsonRecord
		order   []string
		seen    = map[string]bool{}
	)
	collect := func() error {
		rec, keys, err := readObjectBody(dec)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
		records = append(records, rec)
		return nil
	}

	switch tok {
	case json.Delim('['):
		for dec.More() {
			open, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("failed to parse JSON: %w", err)
			}
			if open != json.Delim('{') {
				return nil, fmt.Errorf("failed to parse JSON: expected an object, got %v", open)
			}
			if err := collect(); err != nil {
				return nil, err
			}
		}
	case json.Delim('{'):
		if err := collect(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to parse JSON: expected an array of objects")
	}

	if len(records) == 0 || len(order) == 0 {
		return nil, fmt.Errorf("%w: JSON file has no records", datatable.ErrEmptyData)
	}

	fields := make([]frame.Field, len(order))
	for i, name := range order {
		fields[i] = frame.Field{Name: frame.UniqueName(fields[:i], name, i), Type: inferJSONType(records, name)}
	}
	rows := make([][]interface{}, len(records))
	for r, rec := range records {
		row := make([]interface{}, len(order))
		for c, name := range order {
			v, err := jsonValue(rec[name], fields[c].Type)
			if err != nil {
				return nil, fmt.Errorf("record %d, field %s: %w", r, name, err)
			}
			row[c] = v
		}
		rows[r] = row
	}
	return frame.FromRows(fields, rows)
}

// readObjectBody reads key/value pairs after an opening brace, including the
// closing brace.
func readObjectBody(dec *json.Decoder) (jsonRecord, []string, error) {
	rec := jsonRecord{}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("failed to parse JSON: unexpected %v", tok)
		}
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		if _, dup := rec[key]; !dup {
			keys = append(keys, key)
		}
		rec[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return rec, keys, nil
}

func isInteger(n json.Number) bool {
	if strings.ContainsAny(n.String(), ".eE") {
		return false
	}
	_, err := n.Int64()
	return err == nil
}

func inferJSONType(records []jsonRecord, name string) datatable.ColumnType {
	ints, floats, bools, others := 0, 0, 0, 0
	for _, rec := range records {
		switch v := rec[name].(type) {
		case nil:
		case json.Number:
			if isInteger(v) {
				ints++
			} else {
				floats++
			}
		case bool:
			bools++
		default:
			others++
		}
	}
	switch {
	case others > 0:
		return datatable.TypeUtf8
	case bools > 0 && ints+floats == 0:
		return datatable.TypeBoolean
	case bools > 0:
		return datatable.TypeUtf8
	case floats > 0:
		return datatable.TypeFloat64
	case ints > 0:
		return datatable.TypeInt64
	}
	return datatable.TypeUtf8
}

func jsonValue(v interface{}, t datatable.ColumnType) (interface{}, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		switch t {
		case datatable.TypeInt64:
			return x.Int64()
		case datatable.TypeFloat64:
			return x.Float64()
		}
		return x.String(), nil
	case bool:
		if t == datatable.TypeBoolean {
			return x, nil
		}
		return fmt.Sprint(x), nil
	case string:
		return x, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
