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

// Package pager splits a table into fixed size pages and tracks the page
// being viewed.
package pager

import (
	"fmt"

	"parqcel/frame"
)

// DefaultPageSize is the number of rows per page unless configured otherwise.
const DefaultPageSize = 10000

// MaxPages returns ceil(rows/size); an empty table has no pages.
func MaxPages(rows, size int) int {
	if rows <= 0 || size <= 0 {
		return 0
	}
	return (rows + size - 1) / size
}

// Slice returns rows [page*size, page*size+size) of t, clipped to the table.
// Pages past the end yield an empty table with t's columns.
func Slice(t *frame.Table, page, size int) *frame.Table {
	if page < 0 || size <= 0 {
		return t.Slice(0, 0)
	}
	return t.Slice(page*size, size)
}

// Window is the position of the viewer within a paginated table.
// The page always satisfies 0 <= page < max(MaxPages, 1).
type Window struct {
	page  int
	size  int
	total int
}

// NewWindow creates a window on page 0. A non-positive size selects
// DefaultPageSize.
func NewWindow(size, total int) *Window {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}
	return &Window{size: size, total: total}
}

// Page returns the current page index.
func (w *Window) Page() int { return w.page }

// Size returns the page size.
func (w *Window) Size() int { return w.size }

// Total returns the number of rows being paged.
func (w *Window) Total() int { return w.total }

// MaxPages returns the number of pages.
func (w *Window) MaxPages() int { return MaxPages(w.total, w.size) }

// Offset returns the absolute row of the first row on the current page.
func (w *Window) Offset() int { return w.page * w.size }

// Absolute converts a page-relative row to a table row.
func (w *Window) Absolute(row int) int { return w.Offset() + row }

// Reset moves to page 0 with a new row count.
func (w *Window) Reset(total int) {
	w.page = 0
	w.SetTotal(total)
}

// SetTotal changes the row count, keeping the page when it still exists.
func (w *Window) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	w.total = total
	w.clamp()
}

// SetSize changes the page size and keeps the first visible row on screen.
func (w *Window) SetSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	first := w.Offset()
	w.size = size
	w.page = first / size
	w.clamp()
}

func (w *Window) clamp() {
	last := w.MaxPages() - 1
	if last < 0 {
		last = 0
	}
	if w.page > last {
		w.page = last
	}
	if w.page < 0 {
		w.page = 0
	}
}

// Next advances one page; it reports whether the page changed.
func (w *Window) Next() bool {
	if w.page+1 >= w.MaxPages() {
		return false
	}
	w.page++
	return true
}

// Previous goes back one page; it reports whether the page changed.
func (w *Window) Previous() bool {
	if w.page == 0 {
		return false
	}
	w.page--
	return true
}

// First moves to page 0.
func (w *Window) First() bool {
	if w.page == 0 {
		return false
	}
	w.page = 0
	return true
}

// Last moves to the final page.
func (w *Window) Last() bool {
	last := w.MaxPages() - 1
	if last < 0 || w.page == last {
		return false
	}
	w.page = last
	return true
}

// JumpTo moves to page p. Pages outside [0, MaxPages) are ignored and
// reported as false.
func (w *Window) JumpTo(p int) bool {
	if p < 0 || p >= w.MaxPages() || p == w.page {
		return false
	}
	w.page = p
	return true
}

// String describes the position for status bars, e.g. "Page 2 of 5".
func (w *Window) String() string {
	pages := w.MaxPages()
	if pages == 0 {
		return "Page 0 of 0"
	}
	return fmt.Sprintf("Page %d of %d", w.page+1, pages)
}
