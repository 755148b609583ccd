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
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"parqcel/fileio"
)

// ExportFormat represents the supported export formats
type ExportFormat int

const (
	FormatParquet ExportFormat = iota
	FormatCSV
	FormatJSON
)

// Extension returns the file extension written for the format.
func (f ExportFormat) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	}
	return ".parquet"
}

func (f ExportFormat) String() string {
	switch f {
	case FormatCSV:
		return "CSV"
	case FormatJSON:
		return "JSON"
	}
	return "Parquet"
}

// exportPath makes sure path ends in the extension of format.
func exportPath(path string, format ExportFormat) string {
	if strings.EqualFold(filepath.Ext(path), format.Extension()) {
		return path
	}
	return path + format.Extension()
}

// SaveAs asks for a destination and writes the whole table of data in format.
func (t *DataBrowser) SaveAs(data *Data, format ExportFormat) {
	saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, t.w)
			return
		}
		if writer == nil {
			return
		}
		// fileio writes by path; the dialog only reserves the name
		writer.Close()
		t.writeTable(data, exportPath(writer.URI().Path(), format))
	}, t.w)

	saveDialog.SetFileName(cleanFilename(strings.TrimSuffix(data.tableName, filepath.Ext(data.tableName))) + format.Extension())
	saveDialog.SetFilter(storage.NewExtensionFileFilter([]string{format.Extension()}))
	saveDialog.Show()
}

// Save writes data back to its source when that is a writable format, and
// falls back to SaveAs otherwise.
func (t *DataBrowser) Save(data *Data) {
	source := data.model.Source()
	switch strings.ToLower(filepath.Ext(source)) {
	case ".parquet", ".csv", ".json":
		t.writeTable(data, source)
	default:
		t.SaveAs(data, FormatParquet)
	}
}

func (t *DataBrowser) writeTable(data *Data, path string) {
	tbl := data.model.Current()
	runWithProgress(t.w, "Saving...", func() error {
		return fileio.Save(tbl, path)
	}, func(err error) {
		if err != nil {
			dialog.ShowError(fmt.Errorf("export failed: %w", err), t.w)
			return
		}
		if data.model.Current() == tbl {
			data.model.MarkSaved()
			t.refreshChrome(data)
		}
		t.setStatus(fmt.Sprintf("Saved %d rows to %s", tbl.NumRows(), path))
	})
}
