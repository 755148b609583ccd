package windows

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"parqcel/datatable"
	"parqcel/frame"
	"parqcel/model"
)

// filterOperators lists the operators offered by the filter dialog.
var filterOperators = []datatable.FilterOp{
	datatable.OpEqual, datatable.OpNotEqual,
	datatable.OpLess, datatable.OpLessEqual, datatable.OpGreater, datatable.OpGreaterEqual,
	datatable.OpBetween,
	datatable.OpContains, datatable.OpStartsWith, datatable.OpEndsWith,
	datatable.OpIsNull, datatable.OpIsNotNull,
}

// QueryOptionsDialog filters a table, either by a single condition or by a
// query expression.
type QueryOptionsDialog struct {
	dialog      dialog.Dialog
	window      fyne.Window
	model       *model.TableModel
	columns     *widget.Select
	operators   *widget.Select
	valuesEntry *widget.Entry
	queryEntry  *widget.Entry
	status      func(string)
}

// ShowFilterDialog opens the filter dialog with column preselected.
func ShowFilterDialog(w fyne.Window, m *model.TableModel, column string, status func(string)) {
	qod := &QueryOptionsDialog{window: w, model: m, status: status}
	qod.createDialog(column)
	qod.dialog.Show()
}

func (qod *QueryOptionsDialog) createDialog(column string) {
	conditionLabel := widget.NewLabel("Condition:")
	conditionLabel.TextStyle = fyne.TextStyle{Bold: true}

	qod.columns = widget.NewSelect(qod.model.Current().Names(), nil)
	if column != "" {
		qod.columns.SetSelected(column)
	}

	ops := make([]string, len(filterOperators))
	for i, op := range filterOperators {
		ops[i] = op.String()
	}
	qod.operators = widget.NewSelect(ops, func(s string) {
		op, err := datatable.ParseFilterOp(s)
		if err == nil && op.Arity() == 0 {
			qod.valuesEntry.Disable()
		} else {
			qod.valuesEntry.Enable()
		}
	})

	qod.valuesEntry = widget.NewEntry()
	qod.valuesEntry.SetPlaceHolder("value, or low, high for between")
	qod.operators.SetSelected(datatable.OpEqual.String())

	queryLabel := widget.NewLabel("Or a query (replaces the condition):")
	queryLabel.TextStyle = fyne.TextStyle{Bold: true}

	qod.queryEntry = widget.NewMultiLineEntry()
	qod.queryEntry.SetPlaceHolder("e.g., age >= 30 AND city = Oslo OR name ~ ann")
	qod.queryEntry.SetMinRowsVisible(3)

	queryHelp := widget.NewLabel("Operators: = != < <= > >= ~ (contains) ^= (starts) $= (ends), joined by AND/OR.")
	queryHelp.TextStyle = fyne.TextStyle{Italic: true}

	content := container.NewVBox(
		conditionLabel,
		container.NewGridWithColumns(2, widget.NewLabel("Column"), qod.columns),
		container.NewGridWithColumns(2, widget.NewLabel("Operator"), qod.operators),
		container.NewGridWithColumns(2, widget.NewLabel("Value"), qod.valuesEntry),
		widget.NewSeparator(),
		queryLabel,
		qod.queryEntry,
		queryHelp,
	)

	qod.dialog = dialog.NewCustomConfirm("Filter rows", "Apply", "Cancel", content,
		func(confirmed bool) {
			if confirmed {
				qod.handleConfirm()
			}
		}, qod.window)
	qod.dialog.Resize(fyne.NewSize(480, 380))
}

func (qod *QueryOptionsDialog) handleConfirm() {
	if query := strings.TrimSpace(qod.queryEntry.Text); query != "" {
		before := qod.model.TotalRows()
		err := qod.model.Query(query)
		showResult(qod.window, qod.status, err,
			fmt.Sprintf("Query kept %d of %d rows", qod.model.TotalRows(), before))
		return
	}

	if qod.columns.Selected == "" {
		dialog.ShowError(fmt.Errorf("please select a column"), qod.window)
		return
	}
	before := qod.model.TotalRows()
	err := qod.model.Filter(qod.columns.Selected, qod.operators.Selected, splitValues(qod.valuesEntry.Text)...)
	showResult(qod.window, qod.status, err,
		fmt.Sprintf("Filter on %s kept %d of %d rows", qod.columns.Selected, qod.model.TotalRows(), before))
}

// ShowSortDialog asks for up to three sort keys, the first one primary.
func ShowSortDialog(w fyne.Window, m *model.TableModel, status func(string)) {
	names := append([]string{""}, m.Current().Names()...)
	type keyRow struct {
		column *widget.Select
		desc   *widget.Check
	}
	rows := make([]keyRow, 3)
	items := make([]*widget.FormItem, len(rows))
	for i := range rows {
		rows[i] = keyRow{column: widget.NewSelect(names, nil), desc: widget.NewCheck("descending", nil)}
		label := "Then by"
		if i == 0 {
			label = "Sort by"
		}
		items[i] = widget.NewFormItem(label, container.NewHBox(rows[i].column, rows[i].desc))
	}

	dialog.ShowForm("Sort rows", "Sort", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		var keys []frame.SortKey
		for _, r := range rows {
			if r.column.Selected != "" {
				keys = append(keys, frame.SortKey{Column: r.column.Selected, Descending: r.desc.Checked})
			}
		}
		if len(keys) == 0 {
			return
		}
		err := m.Sort(keys...)
		labels := make([]string, len(keys))
		for i, k := range keys {
			labels[i] = k.String()
		}
		showResult(w, status, err, "Sorted by "+strings.Join(labels, ", "))
	}, w)
}
