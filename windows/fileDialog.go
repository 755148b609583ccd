package windows

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// dataExtensions are the files the open dialog lists.
var dataExtensions = []string{".csv", ".tsv", ".parquet", ".json", ".xlsx", ".share", ".txt"}

// FileDialog browses the local file system for data files and Delta Sharing
// profiles.
type FileDialog struct {
	dialog      dialog.Dialog
	window      fyne.Window
	callback    func(string)
	fileList    *widget.List
	files       []string
	homeDir     string
	currentPath string
	pathLabel   *widget.Label
}

// NewFileDialog creates a dialog starting in dir, or the home directory when
// dir is empty. callback receives the chosen file path.
func NewFileDialog(w fyne.Window, dir string, callback func(string)) *FileDialog {
	fd := &FileDialog{
		window:   w,
		callback: callback,
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	fd.homeDir = homeDir
	fd.currentPath = homeDir
	if dir != "" {
		fd.currentPath = dir
	}
	return fd
}

func (fd *FileDialog) Show() {
	fd.pathLabel = widget.NewLabel(fd.currentPath)
	fd.pathLabel.Truncation = fyne.TextTruncateEllipsis
	fd.pathLabel.TextStyle = fyne.TextStyle{Bold: true}

	fd.fileList = widget.NewList(
		func() int {
			return len(fd.files)
		},
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.DocumentIcon()), widget.NewLabel("template"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			cont := obj.(*fyne.Container)
			icon := cont.Objects[0].(*widget.Icon)
			label := cont.Objects[1].(*widget.Label)

			name := fd.files[id]
			label.SetText(name)
			switch {
			case strings.HasSuffix(name, string(os.PathSeparator)):
				icon.SetResource(theme.FolderIcon())
			case strings.HasSuffix(name, ".share"):
				icon.SetResource(theme.StorageIcon())
			default:
				icon.SetResource(theme.DocumentIcon())
			}
		},
	)

	fd.fileList.OnSelected = func(id widget.ListItemID) {
		name := fd.files[id]
		fd.fileList.UnselectAll()
		if dir, ok := strings.CutSuffix(name, string(os.PathSeparator)); ok {
			fd.currentPath = filepath.Join(fd.currentPath, dir)
			fd.loadDirectory()
			return
		}
		fd.dialog.Hide()
		fd.callback(filepath.Join(fd.currentPath, name))
	}

	homeButton := widget.NewButtonWithIcon("Home", theme.HomeIcon(), func() {
		fd.currentPath = fd.homeDir
		fd.loadDirectory()
	})
	upButton := widget.NewButtonWithIcon("Up", theme.NavigateBackIcon(), func() {
		if parent := filepath.Dir(fd.currentPath); parent != fd.currentPath {
			fd.currentPath = parent
			fd.loadDirectory()
		}
	})
	refreshButton := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), func() {
		fd.loadDirectory()
	})

	filterInfo := widget.NewLabel("Showing: " + strings.Join(dataExtensions, ", ") + " and directories")
	filterInfo.TextStyle = fyne.TextStyle{Italic: true}

	navToolbar := container.NewBorder(nil, nil,
		container.NewHBox(homeButton, upButton, refreshButton), nil,
		fd.pathLabel)

	content := container.NewBorder(
		container.NewVBox(navToolbar, widget.NewSeparator(), filterInfo),
		nil, nil, nil,
		fd.fileList,
	)

	fd.dialog = dialog.NewCustom("Open Table", "Close", content, fd.window)
	fd.dialog.Resize(fyne.NewSize(720, 540))
	fd.loadDirectory()
	fd.dialog.Show()
}

func (fd *FileDialog) loadDirectory() {
	files, err := listDataFiles(fd.currentPath)
	if err != nil {
		dialog.ShowError(err, fd.window)
		return
	}
	fd.files = files
	fd.pathLabel.SetText(fd.currentPath)
	fd.fileList.Refresh()
}

// listDataFiles returns the visible subdirectories of dir, marked with a
// trailing separator, followed by the data files, each group sorted by name.
func listDataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var dirs, files []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			dirs = append(dirs, name+string(os.PathSeparator))
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		for _, e := range dataExtensions {
			if ext == e {
				files = append(files, name)
				break
			}
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)
	return append(dirs, files...), nil
}
