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

package windows

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"parqcel/assistant"
	"parqcel/config"
	"parqcel/datatable"
	"parqcel/frame"
	"parqcel/model"
)

// Data holds one open table tab.
type Data struct {
	model     *model.TableModel
	table     *widget.Table
	pageLabel *widget.Label
	tab       *container.TabItem
	tableName string
}

// DataBrowser manages the open table tabs.
type DataBrowser struct {
	w              fyne.Window
	session        *config.Session
	tabs           *container.DocTabs
	tabDataMap     map[*container.TabItem]*Data
	statusCallback func(string)
	onSelect       func(*Data)
}

// NewDataBrowser creates the browser and its tab container.
func NewDataBrowser(w fyne.Window, session *config.Session, statusCallback func(string)) *DataBrowser {
	t := &DataBrowser{
		w:              w,
		session:        session,
		tabs:           container.NewDocTabs(),
		tabDataMap:     make(map[*container.TabItem]*Data),
		statusCallback: statusCallback,
	}

	t.tabs.CloseIntercept = func(ti *container.TabItem) {
		data, exists := t.tabDataMap[ti]
		if !exists || !data.model.Dirty() {
			t.closeTab(ti)
			return
		}
		dialog.ShowConfirm("Unsaved changes",
			fmt.Sprintf("%s has unsaved changes. Close it anyway?", data.tableName),
			func(ok bool) {
				if ok {
					t.closeTab(ti)
				}
			}, t.w)
	}
	t.tabs.OnSelected = func(ti *container.TabItem) {
		t.updateStatusForTab(ti)
		if t.onSelect != nil {
			t.onSelect(t.tabDataMap[ti])
		}
	}
	return t
}

// Container returns the tab container.
func (t *DataBrowser) Container() fyne.CanvasObject { return t.tabs }

// Current returns the selected tab, or nil.
func (t *DataBrowser) Current() *Data {
	if sel := t.tabs.Selected(); sel != nil {
		return t.tabDataMap[sel]
	}
	return nil
}

// HasUnsaved reports whether any open tab has unsaved changes.
func (t *DataBrowser) HasUnsaved() bool {
	for _, d := range t.tabDataMap {
		if d.model.Dirty() {
			return true
		}
	}
	return false
}

func (t *DataBrowser) closeTab(ti *container.TabItem) {
	delete(t.tabDataMap, ti)
	t.tabs.Remove(ti)
	if sel := t.tabs.Selected(); sel != nil {
		t.updateStatusForTab(sel)
	} else if t.statusCallback != nil {
		t.statusCallback("Ready")
	}
	if t.onSelect != nil {
		t.onSelect(t.Current())
	}
}

// Open shows tbl in a new tab.
func (t *DataBrowser) Open(tbl *frame.Table, name, source string) *Data {
	m := t.session.NewModel()
	m.Load(tbl, source)

	data := &Data{model: m, tableName: name}
	data.table = t.newTableWidget(data)
	data.pageLabel = widget.NewLabel("")

	content := container.NewBorder(nil, t.pageBar(data), nil, nil, data.table)
	data.tab = container.NewTabItem(name, content)

	m.OnChange(func(c model.Change) {
		switch c.Kind {
		case model.ChangeCell:
			data.table.RefreshItem(widget.TableCellID{Row: c.Row, Col: c.Col})
		default:
			t.layoutColumns(data)
			data.table.Refresh()
		}
		t.refreshChrome(data)
	})

	t.tabDataMap[data.tab] = data
	t.tabs.Append(data.tab)
	t.layoutColumns(data)
	t.refreshChrome(data)
	t.tabs.Select(data.tab)
	return data
}

func (t *DataBrowser) newTableWidget(data *Data) *widget.Table {
	m := data.model
	tbl := widget.NewTable(
		func() (int, int) { return m.RowCount(), m.ColumnCount() },
		func() fyne.CanvasObject {
			l := widget.NewLabel("template")
			l.Truncation = fyne.TextTruncateEllipsis
			return l
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(m.CellText(id.Row, id.Col))
		})

	tbl.ShowHeaderRow = true
	tbl.ShowHeaderColumn = true
	tbl.CreateHeader = func() fyne.CanvasObject {
		b := widget.NewButton("000000", nil)
		b.Importance = widget.LowImportance
		return b
	}
	tbl.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		b := o.(*widget.Button)
		switch {
		case id.Row < 0 && id.Col >= 0:
			col := id.Col
			b.SetText(m.HeaderLabel(col))
			b.OnTapped = func() { t.showColumnMenu(data, col, b) }
		case id.Col < 0 && id.Row >= 0:
			b.SetText(strconv.Itoa(m.CurrentPage()*m.PageSize() + id.Row + 1))
			b.OnTapped = nil
		default:
			b.SetText("")
			b.OnTapped = nil
		}
	}

	tbl.OnSelected = func(id widget.TableCellID) {
		tbl.UnselectAll()
		if id.Row >= 0 && id.Col >= 0 {
			t.editCell(data, id.Row, id.Col)
		}
	}
	return tbl
}

// layoutColumns sizes columns to fit their header labels.
func (t *DataBrowser) layoutColumns(data *Data) {
	m := data.model
	for c := 0; c < m.ColumnCount(); c++ {
		size := fyne.MeasureText(m.HeaderLabel(c), theme.TextSize(), fyne.TextStyle{})
		width := size.Width + 4*theme.Padding()
		if width < 100 {
			width = 100
		}
		data.table.SetColumnWidth(c, width)
	}
}

func (t *DataBrowser) pageBar(data *Data) fyne.CanvasObject {
	m := data.model
	first := widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), func() { m.FirstPage() })
	prev := widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() { m.PreviousPage() })
	next := widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() { m.NextPage() })
	last := widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), func() { m.LastPage() })

	jump := widget.NewEntry()
	jump.SetPlaceHolder("Page")
	jump.OnSubmitted = func(s string) {
		n, err := strconv.Atoi(s)
		if err != nil || !m.JumpToPage(n-1) {
			t.setStatus(fmt.Sprintf("No page %s (1-%d)", s, m.MaxPages()))
		}
		jump.SetText("")
	}

	sizes := []string{"100", "1000", "10000", "50000"}
	size := widget.NewSelect(sizes, func(s string) {
		if n, err := strconv.Atoi(s); err == nil && n != m.PageSize() {
			m.SetPageSize(n)
		}
	})
	size.PlaceHolder = strconv.Itoa(m.PageSize())

	return container.NewHBox(first, prev, data.pageLabel, next, last,
		container.NewGridWrap(fyne.NewSize(80, jump.MinSize().Height), jump),
		widget.NewLabel("Rows per page:"), size)
}

// refreshChrome updates the page label, tab title and status bar.
func (t *DataBrowser) refreshChrome(data *Data) {
	m := data.model
	data.pageLabel.SetText(m.PageLabel())
	title := data.tableName
	if m.Dirty() {
		title += " *"
	}
	if data.tab.Text != title {
		data.tab.Text = title
		t.tabs.Refresh()
	}
	if t.tabs.Selected() == data.tab {
		t.updateStatusForTab(data.tab)
		if t.onSelect != nil {
			t.onSelect(data)
		}
	}
}

// updateStatusForTab updates the status bar with information about the given tab.
func (t *DataBrowser) updateStatusForTab(ti *container.TabItem) {
	if ti == nil || t.statusCallback == nil {
		return
	}
	data, exists := t.tabDataMap[ti]
	if !exists {
		return
	}
	m := data.model
	status := fmt.Sprintf("Table %s (%d columns x %d rows) | %s", data.tableName, m.ColumnCount(), m.TotalRows(), m.PageLabel())
	if m.CanUndo() {
		status += fmt.Sprintf(" | %d undo", m.UndoDepth())
	}
	if m.Dirty() {
		status += " | modified"
	}
	t.statusCallback(status)
}

func (t *DataBrowser) setStatus(msg string) {
	if t.statusCallback != nil {
		t.statusCallback(msg)
	}
}

// editCell asks for a new value of a page cell.
func (t *DataBrowser) editCell(data *Data, row, col int) {
	m := data.model
	name, err := m.ColumnName(col)
	if err != nil {
		return
	}
	entry := widget.NewEntry()
	entry.SetText(m.CellText(row, col))
	entry.SetPlaceHolder("empty for null")

	absolute := m.CurrentPage()*m.PageSize() + row + 1
	items := []*widget.FormItem{
		widget.NewFormItem(m.HeaderLabel(col), entry),
	}
	form := dialog.NewForm(fmt.Sprintf("Edit row %d", absolute), "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		err := m.SetCellText(row, col, entry.Text)
		showResult(t.w, t.statusCallback, err, fmt.Sprintf("Updated %s in row %d", name, absolute))
	}, t.w)
	form.Resize(fyne.NewSize(400, 160))
	form.Show()
	t.w.Canvas().Focus(entry)
}

func (t *DataBrowser) showColumnMenu(data *Data, col int, anchor fyne.CanvasObject) {
	m := data.model
	name, err := m.ColumnName(col)
	if err != nil {
		return
	}

	convert := fyne.NewMenuItem("Convert to", nil)
	current, _ := m.ColumnType(col)
	convert.ChildMenu = fyne.NewMenu("", convertMenuItems(current, func(target datatable.ColumnType) {
		err := m.ConvertType(name, target)
		showResult(t.w, t.statusCallback, err, fmt.Sprintf("Converted %s to %s", name, target))
	})...)

	menu := fyne.NewMenu(name,
		fyne.NewMenuItem("Sort ascending", func() {
			err := m.Sort(frame.SortKey{Column: name})
			showResult(t.w, t.statusCallback, err, fmt.Sprintf("Sorted by %s ↑", name))
		}),
		fyne.NewMenuItem("Sort descending", func() {
			err := m.Sort(frame.SortKey{Column: name, Descending: true})
			showResult(t.w, t.statusCallback, err, fmt.Sprintf("Sorted by %s ↓", name))
		}),
		fyne.NewMenuItem("Filter...", func() {
			ShowFilterDialog(t.w, m, name, t.statusCallback)
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Rename...", func() { t.renameColumn(data, name) }),
		convert,
		fyne.NewMenuItem("Drop column", func() {
			err := m.DropColumn(name)
			showResult(t.w, t.statusCallback, err, fmt.Sprintf("Dropped %s", name))
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Statistics", func() { t.showStatistics(data, name) }),
		fyne.NewMenuItem("Describe", func() {
			dialog.ShowInformation(name, assistant.ExplainColumn(m.Current(), name), t.w)
		}),
	)

	pos := fyne.CurrentApp().Driver().AbsolutePositionForObject(anchor)
	pos = pos.AddXY(0, anchor.Size().Height)
	widget.ShowPopUpMenuAtPosition(menu, t.w.Canvas(), pos)
}

func (t *DataBrowser) renameColumn(data *Data, name string) {
	entry := widget.NewEntry()
	entry.SetText(name)
	dialog.ShowForm("Rename column", "Rename", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("New name", entry)},
		func(ok bool) {
			if !ok || entry.Text == name {
				return
			}
			err := data.model.RenameColumn(name, entry.Text)
			showResult(t.w, t.statusCallback, err, fmt.Sprintf("Renamed %s to %s", name, entry.Text))
		}, t.w)
}

// AddColumn asks for the name, type and default value of a new column.
func (t *DataBrowser) AddColumn(data *Data) {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("column name")
	var names []string
	for _, ct := range datatable.ColumnTypes() {
		names = append(names, ct.String())
	}
	typeSelect := widget.NewSelect(names, nil)
	typeSelect.SetSelected(datatable.TypeUtf8.String())
	defEntry := widget.NewEntry()
	defEntry.SetPlaceHolder("default value (empty for null)")

	dialog.ShowForm("Add column", "Add", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
		widget.NewFormItem("Type", typeSelect),
		widget.NewFormItem("Default", defEntry),
	}, func(ok bool) {
		if !ok {
			return
		}
		typ, err := datatable.ParseColumnType(typeSelect.Selected)
		if err == nil {
			err = data.model.AddColumn(nameEntry.Text, typ, defEntry.Text)
		}
		showResult(t.w, t.statusCallback, err, fmt.Sprintf("Added column %s", nameEntry.Text))
	}, t.w)
}

func (t *DataBrowser) showStatistics(data *Data, name string) {
	report, err := data.model.Statistics(name)
	if err != nil {
		dialog.ShowError(err, t.w)
		return
	}
	text := widget.NewLabel(report.String())
	text.TextStyle = fyne.TextStyle{Monospace: true}
	scroll := container.NewVScroll(text)
	scroll.SetMinSize(fyne.NewSize(360, 300))
	dialog.ShowCustom(fmt.Sprintf("Statistics for %s (%s)", report.Column, report.Type), "Close", scroll, t.w)
}

// convertMenuItems lists every column type for a column of type from. The
// current type is checked and targets it cannot be converted to are disabled.
func convertMenuItems(from datatable.ColumnType, convert func(datatable.ColumnType)) []*fyne.MenuItem {
	items := make([]*fyne.MenuItem, 0, len(datatable.ColumnTypes()))
	for _, ct := range datatable.ColumnTypes() {
		target := ct
		item := fyne.NewMenuItem(target.String(), func() { convert(target) })
		item.Checked = target == from
		item.Disabled = target != from && !frame.CanConvert(from, target)
		items = append(items, item)
	}
	return items
}
