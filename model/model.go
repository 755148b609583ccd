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

// Package model owns the table being edited and adapts it to page based
// views. All edits go through TableModel so that history, paging and the
// column type map stay consistent.
package model

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"parqcel/datatable"
	"parqcel/datatable/filter"
	"parqcel/features"
	"parqcel/frame"
	"parqcel/history"
	"parqcel/pager"
	"parqcel/sandbox"
	"parqcel/stats"
)

// ChangeKind tells listeners how much of the view must be redrawn.
type ChangeKind int

const (
	// ChangeCell means a single cell of the current page changed.
	ChangeCell ChangeKind = iota
	// ChangeLayout means the page content, shape or position changed.
	ChangeLayout
)

// Change describes a region of the current page. Row and Col are page
// relative and only meaningful for ChangeCell.
type Change struct {
	Kind ChangeKind
	Row  int
	Col  int
}

// Listener is notified after every successful change.
type Listener func(Change)

// Options configures a TableModel.
type Options struct {
	PageSize     int
	HistoryLimit int
	Logger       *log.Logger
	Runner       *sandbox.Runner
}

// TableModel is the editable, paginated table behind the views. It is not
// safe for concurrent use.
type TableModel struct {
	data      *frame.Table
	page      *frame.Table
	window    *pager.Window
	history   *history.Stack[*frame.Table]
	types     map[string]string
	listeners []Listener
	saved     uint64
	hasSaved  bool
	loaded    bool
	logger    *log.Logger
	runner    *sandbox.Runner
	source    string
}

// New creates an empty model.
func New(opts Options) *TableModel {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	runner := opts.Runner
	if runner == nil {
		runner = sandbox.NewRunner(logger, 0)
	}
	limit := opts.HistoryLimit
	if limit < 0 {
		limit = history.DefaultLimit
	}
	m := &TableModel{
		data:    frame.Empty(),
		window:  pager.NewWindow(opts.PageSize, 0),
		history: history.New[*frame.Table](limit),
		logger:  logger,
		runner:  runner,
	}
	m.refresh()
	return m
}

// Load starts a new editing session on t, as when a file is opened: undo
// and redo history is cleared and the table is marked saved. Each open file
// owns its model, so loading never has anything to undo back to; use Replace
// to swap tables within a session.
func (m *TableModel) Load(t *frame.Table, source string) {
	if t == nil {
		t = frame.Empty()
	}
	m.history.Clear()
	m.data = t
	m.loaded = true
	m.source = source
	m.window.Reset(t.NumRows())
	m.refresh()
	m.MarkSaved()
	m.logger.Printf("loaded %s: %d rows, %d columns", source, t.NumRows(), t.NumCols())
	m.notify(Change{Kind: ChangeLayout})
}

// Source returns the name given to Load.
func (m *TableModel) Source() string { return m.source }

// Current returns the full table.
func (m *TableModel) Current() *frame.Table { return m.data }

// Page returns the rows of the current page.
func (m *TableModel) Page() *frame.Table { return m.page }

// Replace swaps in a new table, recording the previous one for undo, and
// goes back to the first page. The first table installed in a fresh model
// has no predecessor and records nothing; an empty table installed later is
// recorded like any other.
func (m *TableModel) Replace(t *frame.Table) {
	if t == nil {
		return
	}
	if m.loaded {
		m.history.Record(m.data)
	}
	m.data = t
	m.loaded = true
	m.window.Reset(t.NumRows())
	m.refresh()
	m.notify(Change{Kind: ChangeLayout})
}

// apply records the current table and swaps in the result of fn, keeping the
// page. A failed fn leaves the model untouched.
func (m *TableModel) apply(fn func(*frame.Table) (*frame.Table, error)) error {
	next, err := fn(m.data)
	if err != nil {
		return err
	}
	m.history.Record(m.data)
	m.data = next
	m.loaded = true
	m.window.SetTotal(next.NumRows())
	m.refresh()
	return nil
}

// replaceWith is apply for operations that reorder or reshape rows.
func (m *TableModel) replaceWith(fn func(*frame.Table) (*frame.Table, error)) error {
	next, err := fn(m.data)
	if err != nil {
		return err
	}
	m.Replace(next)
	return nil
}

func (m *TableModel) refresh() {
	m.page = pager.Slice(m.data, m.window.Page(), m.window.Size())
	types := make(map[string]string, m.data.NumCols())
	for _, f := range m.data.Fields() {
		types[f.Name] = f.Type.String()
	}
	m.types = types
}

func (m *TableModel) notify(c Change) {
	for _, l := range m.listeners {
		l(c)
	}
}

// OnChange registers a listener.
func (m *TableModel) OnChange(l Listener) {
	m.listeners = append(m.listeners, l)
}

// SetCellText edits a cell of the current page. row is page relative.
func (m *TableModel) SetCellText(row, col int, text string) error {
	if row < 0 || row >= m.page.NumRows() {
		return fmt.Errorf("%w: %d (page has %d rows)", datatable.ErrInvalidRow, row, m.page.NumRows())
	}
	abs := m.window.Absolute(row)
	err := m.apply(func(t *frame.Table) (*frame.Table, error) {
		return t.SetCell(abs, col, text)
	})
	if err != nil {
		return err
	}
	m.notify(Change{Kind: ChangeCell, Row: row, Col: col})
	return nil
}

// AddColumn appends a column filled with def.
func (m *TableModel) AddColumn(name string, typ datatable.ColumnType, def string) error {
	return m.layoutChange(func(t *frame.Table) (*frame.Table, error) {
		return t.AddColumn(name, typ, def)
	})
}

// DropColumn removes a column.
func (m *TableModel) DropColumn(name string) error {
	return m.layoutChange(func(t *frame.Table) (*frame.Table, error) {
		return t.DropColumn(name)
	})
}

// RenameColumn renames a column.
func (m *TableModel) RenameColumn(from, to string) error {
	return m.layoutChange(func(t *frame.Table) (*frame.Table, error) {
		return t.Rename(from, to)
	})
}

func (m *TableModel) layoutChange(fn func(*frame.Table) (*frame.Table, error)) error {
	if err := m.apply(fn); err != nil {
		return err
	}
	m.notify(Change{Kind: ChangeLayout})
	return nil
}

// Sort orders the whole table by keys.
func (m *TableModel) Sort(keys ...frame.SortKey) error {
	return m.replaceWith(func(t *frame.Table) (*frame.Table, error) {
		return t.Sort(keys...)
	})
}

// Filter keeps the rows where column op values holds. op is one of the
// names accepted by datatable.ParseFilterOp.
func (m *TableModel) Filter(column, op string, values ...interface{}) error {
	fop, err := datatable.ParseFilterOp(op)
	if err != nil {
		return err
	}
	return m.replaceWith(func(t *frame.Table) (*frame.Table, error) {
		return t.Filter(column, fop, values...)
	})
}

// Query filters with a text query such as "age >= 30 AND city = Oslo".
// An empty query leaves the table alone.
func (m *TableModel) Query(text string) error {
	f, err := filter.NewQueryParser(m.data.Names()).Parse(text)
	if err != nil {
		return err
	}
	if f == nil {
		return nil
	}
	return m.replaceWith(func(t *frame.Table) (*frame.Table, error) {
		return t.Where(f)
	})
}

// ConvertType changes the type of a column.
func (m *TableModel) ConvertType(column string, target datatable.ColumnType) error {
	start := time.Now()
	err := m.replaceWith(func(t *frame.Table) (*frame.Table, error) {
		return t.ConvertColumnType(column, target)
	})
	if err != nil {
		return err
	}
	m.logger.Printf("converted %s to %s in %s", column, target, time.Since(start).Round(time.Microsecond))
	return nil
}

// ApplyTransformation runs sandboxed code against the table and replaces it
// with the result.
func (m *TableModel) ApplyTransformation(ctx context.Context, code string) error {
	return m.replaceWith(func(t *frame.Table) (*frame.Table, error) {
		return m.runner.Run(ctx, code, t)
	})
}

// Featurize appends the feature columns described by opts: scaled numeric
// columns, one-hot categories and TF-IDF terms.
func (m *TableModel) Featurize(opts features.Options) error {
	start := time.Now()
	before := m.data.NumCols()
	err := m.layoutChange(func(t *frame.Table) (*frame.Table, error) {
		return features.Featurize(t, opts)
	})
	if err != nil {
		return err
	}
	m.logger.Printf("added %d feature columns in %s", m.data.NumCols()-before, time.Since(start).Round(time.Millisecond))
	return nil
}

// AddPCA appends the first k principal components of the features described
// by opts as columns pca_1..pca_k and returns the variance ratio of each.
func (m *TableModel) AddPCA(k int, opts features.Options) ([]float64, error) {
	var ratio []float64
	err := m.layoutChange(func(t *frame.Table) (*frame.Table, error) {
		p, err := features.Project(t, opts, k)
		if err != nil {
			return nil, err
		}
		ratio = p.VarianceRatio
		return features.AddToTable(t, &p.Matrix)
	})
	if err != nil {
		return nil, err
	}
	return ratio, nil
}

// Undo restores the previous table.
func (m *TableModel) Undo() bool {
	prev, ok := m.history.Undo(m.data)
	if !ok {
		return false
	}
	m.restore(prev)
	return true
}

// Redo reapplies the last undone change.
func (m *TableModel) Redo() bool {
	next, ok := m.history.Redo(m.data)
	if !ok {
		return false
	}
	m.restore(next)
	return true
}

func (m *TableModel) restore(t *frame.Table) {
	m.data = t
	m.window.SetTotal(t.NumRows())
	m.refresh()
	m.notify(Change{Kind: ChangeLayout})
}

// CanUndo reports whether there is something to undo.
func (m *TableModel) CanUndo() bool { return m.history.CanUndo() }

// CanRedo reports whether there is something to redo.
func (m *TableModel) CanRedo() bool { return m.history.CanRedo() }

// UndoDepth returns the number of undo snapshots.
func (m *TableModel) UndoDepth() int { return m.history.UndoDepth() }

// RedoDepth returns the number of redo snapshots.
func (m *TableModel) RedoDepth() int { return m.history.RedoDepth() }

func (m *TableModel) move(moved bool) bool {
	if moved {
		m.refresh()
		m.notify(Change{Kind: ChangeLayout})
	}
	return moved
}

// NextPage moves forward one page.
func (m *TableModel) NextPage() bool { return m.move(m.window.Next()) }

// PreviousPage moves back one page.
func (m *TableModel) PreviousPage() bool { return m.move(m.window.Previous()) }

// FirstPage moves to the first page.
func (m *TableModel) FirstPage() bool { return m.move(m.window.First()) }

// LastPage moves to the last page.
func (m *TableModel) LastPage() bool { return m.move(m.window.Last()) }

// JumpToPage moves to a zero based page; out of range pages are ignored.
func (m *TableModel) JumpToPage(page int) bool { return m.move(m.window.JumpTo(page)) }

// SetPageSize changes the number of rows per page.
func (m *TableModel) SetPageSize(size int) {
	m.window.SetSize(size)
	m.refresh()
	m.notify(Change{Kind: ChangeLayout})
}

// CurrentPage returns the zero based page index.
func (m *TableModel) CurrentPage() int { return m.window.Page() }

// MaxPages returns the number of pages.
func (m *TableModel) MaxPages() int { return m.window.MaxPages() }

// PageSize returns the number of rows per page.
func (m *TableModel) PageSize() int { return m.window.Size() }

// PageLabel describes the position, e.g. "Page 1 of 3".
func (m *TableModel) PageLabel() string { return m.window.String() }

// TotalRows returns the row count of the full table.
func (m *TableModel) TotalRows() int { return m.data.NumRows() }

// CellText returns the display text of a cell of the current page.
func (m *TableModel) CellText(row, col int) string { return m.page.Text(row, col) }

// HeaderLabel returns "name (type)" for a column.
func (m *TableModel) HeaderLabel(col int) string {
	if col < 0 || col >= m.data.NumCols() {
		return ""
	}
	f := m.data.Field(col)
	return fmt.Sprintf("%s (%s)", f.Name, f.Type)
}

// ColumnTypes maps column names to their type names.
func (m *TableModel) ColumnTypes() map[string]string {
	out := make(map[string]string, len(m.types))
	for k, v := range m.types {
		out[k] = v
	}
	return out
}

// Statistics summarises a column of the full table.
func (m *TableModel) Statistics(column string) (*stats.Report, error) {
	return stats.Column(m.data, column)
}

// Dirty reports whether the table differs from the last saved one.
func (m *TableModel) Dirty() bool {
	return !m.hasSaved || m.data.Fingerprint() != m.saved
}

// MarkSaved records the current table as saved.
func (m *TableModel) MarkSaved() {
	m.saved = m.data.Fingerprint()
	m.hasSaved = true
}

// RowCount returns the rows of the current page.
func (m *TableModel) RowCount() int { return m.page.NumRows() }

// ColumnCount returns the number of columns.
func (m *TableModel) ColumnCount() int { return m.data.NumCols() }

// ColumnName returns the name of a column.
func (m *TableModel) ColumnName(col int) (string, error) {
	if col < 0 || col >= m.data.NumCols() {
		return "", fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return m.data.Field(col).Name, nil
}

// ColumnType returns the type of a column.
func (m *TableModel) ColumnType(col int) (datatable.ColumnType, error) {
	if col < 0 || col >= m.data.NumCols() {
		return 0, fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return m.data.Field(col).Type, nil
}

// Cell returns a value of the current page.
func (m *TableModel) Cell(row, col int) (datatable.Value, error) {
	return m.page.Value(row, col)
}

// Row returns a row of the current page.
func (m *TableModel) Row(row int) ([]datatable.Value, error) {
	return m.page.Row(row)
}

// Metadata describes the source and position of the view.
func (m *TableModel) Metadata() datatable.Metadata {
	return datatable.Metadata{
		"source":     m.source,
		"total_rows": m.data.NumRows(),
		"page":       m.window.Page(),
		"page_size":  m.window.Size(),
		"max_pages":  m.window.MaxPages(),
	}
}

var _ datatable.DataSource = (*TableModel)(nil)
