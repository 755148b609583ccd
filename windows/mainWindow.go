package windows

import (
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"parqcel/config"
)

// MainWindow is the parqcel desktop editor.
type MainWindow struct {
	a           fyne.App
	w           fyne.Window
	session     *config.Session
	dataBrowser *DataBrowser
	editor      *GoEditor
	navTree     *NavigationTree
	treeWidget  *widget.Tree
	left        fyne.CanvasObject
	tabs        *container.AppTabs
	statusBar   *widget.Label
	undoButton  *widget.Button
	redoButton  *widget.Button
	lastDir     string
}

// Run opens the main window, loads path when it is not empty and blocks
// until the window is closed.
func Run(session *config.Session, path string) {
	t := &MainWindow{session: session}
	t.NewMainWindow()
	if path != "" {
		t.LoadDataFile(path)
	}
	t.w.ShowAndRun()
	t.editor.Cleanup()
}

// SetStatus updates the status bar message
func (t *MainWindow) SetStatus(message string) {
	if t.statusBar != nil {
		t.statusBar.SetText(message)
	}
}

func (t *MainWindow) NewMainWindow() {
	t.a = app.NewWithID("io.parqcel")
	t.a.Settings().SetTheme(NewTheme(t.session.Config.Theme))
	t.w = t.a.NewWindow("parqcel")
	t.w.Resize(fyne.NewSize(1100, 750))

	t.statusBar = widget.NewLabel("Ready")
	t.statusBar.TextStyle = fyne.TextStyle{Italic: true}
	t.statusBar.Truncation = fyne.TextTruncateEllipsis

	t.dataBrowser = NewDataBrowser(t.w, t.session, t.SetStatus)
	t.dataBrowser.onSelect = t.updateActions
	t.editor = NewGoEditor(t.w, t.session, t.dataBrowser.Current, t.SetStatus)

	t.navTree = NewNavigationTree()
	t.treeWidget = t.navTree.Widget(t.loadDeltaTable)
	t.left = container.NewGridWrap(fyne.NewSize(220, 700), widget.NewCard("", "Shares", t.treeWidget))
	t.left.Hide()

	t.tabs = container.NewAppTabs(
		container.NewTabItemWithIcon("Data", theme.GridIcon(), t.dataBrowser.Container()),
		container.NewTabItemWithIcon("Transform", theme.ComputerIcon(), t.editor.GetContainer()),
	)

	t.w.SetMainMenu(t.mainMenu())
	t.addShortcuts()

	content := container.NewBorder(t.toolbar(), container.NewHBox(t.statusBar), t.left, nil, t.tabs)
	t.w.SetContent(content)
	t.updateActions(nil)

	t.w.SetCloseIntercept(func() {
		if !t.dataBrowser.HasUnsaved() {
			t.w.Close()
			return
		}
		dialog.ShowConfirm("Unsaved changes", "Some tables have unsaved changes. Quit anyway?", func(ok bool) {
			if ok {
				t.w.Close()
			}
		}, t.w)
	})
}

func (t *MainWindow) toolbar() fyne.CanvasObject {
	t.undoButton = widget.NewButtonWithIcon("Undo", theme.ContentUndoIcon(), t.undo)
	t.redoButton = widget.NewButtonWithIcon("Redo", theme.ContentRedoIcon(), t.redo)
	t.undoButton.Importance = widget.LowImportance
	t.redoButton.Importance = widget.LowImportance

	bar := widget.NewToolbar(
		widget.NewToolbarAction(theme.MenuIcon(), func() { t.showShares(!t.left.Visible()) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FolderOpenIcon(), t.OpenFile),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), t.withTable(t.dataBrowser.Save)),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentAddIcon(), t.withTable(t.dataBrowser.AddColumn)),
		widget.NewToolbarAction(theme.MenuDropDownIcon(), t.withTable(func(d *Data) {
			ShowSortDialog(t.w, d.model, t.SetStatus)
		})),
		widget.NewToolbarAction(theme.SearchIcon(), t.withTable(func(d *Data) {
			ShowFilterDialog(t.w, d.model, "", t.SetStatus)
		})),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.ComputerIcon(), func() { t.tabs.SelectIndex(1) }),
	)
	return container.NewBorder(nil, nil, container.NewHBox(t.undoButton, t.redoButton), nil, bar)
}

func (t *MainWindow) mainMenu() *fyne.MainMenu {
	saveAs := fyne.NewMenuItem("Save As", nil)
	saveAs.ChildMenu = fyne.NewMenu("",
		fyne.NewMenuItem(FormatParquet.String(), t.withTable(func(d *Data) { t.dataBrowser.SaveAs(d, FormatParquet) })),
		fyne.NewMenuItem(FormatCSV.String(), t.withTable(func(d *Data) { t.dataBrowser.SaveAs(d, FormatCSV) })),
		fyne.NewMenuItem(FormatJSON.String(), t.withTable(func(d *Data) { t.dataBrowser.SaveAs(d, FormatJSON) })),
	)

	file := fyne.NewMenu("File",
		fyne.NewMenuItem("Open...", t.OpenFile),
		fyne.NewMenuItem("Save", t.withTable(t.dataBrowser.Save)),
		saveAs,
	)
	edit := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", t.undo),
		fyne.NewMenuItem("Redo", t.redo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Add Column...", t.withTable(t.dataBrowser.AddColumn)),
		fyne.NewMenuItem("Sort...", t.withTable(func(d *Data) { ShowSortDialog(t.w, d.model, t.SetStatus) })),
		fyne.NewMenuItem("Filter...", t.withTable(func(d *Data) { ShowFilterDialog(t.w, d.model, "", t.SetStatus) })),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Featurize...", t.withTable(func(d *Data) { ShowFeaturizeDialog(t.w, d.model, t.SetStatus) })),
		fyne.NewMenuItem("Principal Components...", t.withTable(func(d *Data) { ShowPCADialog(t.w, d.model, t.SetStatus) })),
	)
	view := fyne.NewMenu("View",
		fyne.NewMenuItem("First Page", t.withTable(func(d *Data) { d.model.FirstPage() })),
		fyne.NewMenuItem("Previous Page", t.withTable(func(d *Data) { d.model.PreviousPage() })),
		fyne.NewMenuItem("Next Page", t.withTable(func(d *Data) { d.model.NextPage() })),
		fyne.NewMenuItem("Last Page", t.withTable(func(d *Data) { d.model.LastPage() })),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Shares", func() { t.showShares(!t.left.Visible()) }),
		fyne.NewMenuItem("Transform", func() { t.tabs.SelectIndex(1) }),
	)
	return fyne.NewMainMenu(file, edit, view)
}

func (t *MainWindow) addShortcuts() {
	bind := func(key fyne.KeyName, fn func()) {
		t.w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierShortcutDefault},
			func(fyne.Shortcut) { fn() })
	}
	bind(fyne.KeyO, t.OpenFile)
	bind(fyne.KeyS, t.withTable(t.dataBrowser.Save))
	bind(fyne.KeyZ, t.undo)
	bind(fyne.KeyY, t.redo)
}

// withTable adapts an action on the selected tab into a callback.
func (t *MainWindow) withTable(fn func(*Data)) func() {
	return func() {
		d := t.dataBrowser.Current()
		if d == nil {
			dialog.ShowInformation("No table", "Open a table first.", t.w)
			return
		}
		fn(d)
	}
}

func (t *MainWindow) undo() {
	if d := t.dataBrowser.Current(); d != nil && !d.model.Undo() {
		t.SetStatus("Nothing to undo")
	}
}

func (t *MainWindow) redo() {
	if d := t.dataBrowser.Current(); d != nil && !d.model.Redo() {
		t.SetStatus("Nothing to redo")
	}
}

// updateActions enables undo and redo for the selected tab.
func (t *MainWindow) updateActions(d *Data) {
	if t.undoButton == nil {
		return
	}
	if d != nil && d.model.CanUndo() {
		t.undoButton.Enable()
	} else {
		t.undoButton.Disable()
	}
	if d != nil && d.model.CanRedo() {
		t.redoButton.Enable()
	} else {
		t.redoButton.Disable()
	}
}

// OpenFile shows the file browser.
func (t *MainWindow) OpenFile() {
	NewFileDialog(t.w, t.lastDir, func(path string) {
		t.lastDir = filepath.Dir(path)
		t.LoadDataFile(path)
	}).Show()
}

func (t *MainWindow) showShares(show bool) {
	if show {
		t.left.Show()
	} else {
		t.left.Hide()
	}
}
