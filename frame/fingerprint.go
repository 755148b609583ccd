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
	"encoding/binary"

	"github.com/spaolacci/murmur3"

	"parqcel/datatable"
)

// Fingerprint hashes the schema and every cell's display text with murmur3.
// Equal tables have equal fingerprints.
func (t *Table) Fingerprint() uint64 {
	h := murmur3.New64()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(t.rows))
	h.Write(buf[:])
	for _, f := range t.fields {
		h.Write([]byte(f.Name))
		h.Write([]byte{0, byte(f.Type)})
	}

	for c, f := range t.fields {
		arr := t.cols[c]
		for r := 0; r < t.rows; r++ {
			raw := valueAt(arr, r)
			if raw == nil {
				h.Write([]byte{1})
				continue
			}
			h.Write([]byte{2})
			h.Write([]byte(datatable.FormatRaw(raw, f.Type)))
			h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

// Equal reports whether two tables have the same schema and values.
func Equal(a, b *Table) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.rows != b.rows || len(a.fields) != len(b.fields) {
		return false
	}
	for i := range a.fields {
		if a.fields[i] != b.fields[i] {
			return false
		}
	}
	for c, f := range a.fields {
		x, y := a.cols[c], b.cols[c]
		if x == y {
			continue
		}
		for r := 0; r < a.rows; r++ {
			if f.Type.Compare(valueAt(x, r), valueAt(y, r)) != 0 {
				return false
			}
		}
	}
	return true
}
