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

// Package fileio reads and writes the file formats the editor supports.
package fileio

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"parqcel/datatable"
	"parqcel/frame"
)

// FileType represents the type of data file
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeCSV
	FileTypeParquet
	FileTypeJSON
	FileTypeExcel
	FileTypeDeltaSharingProfile
)

func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "CSV"
	case FileTypeParquet:
		return "Parquet"
	case FileTypeJSON:
		return "JSON"
	case FileTypeExcel:
		return "Excel"
	case FileTypeDeltaSharingProfile:
		return "Delta Sharing profile"
	}
	return "unknown"
}

// Options controls how files are read.
type Options struct {
	// Delimiter overrides CSV separator detection when non-zero.
	Delimiter rune
	// DetectDates converts CSV text columns whose values all look like
	// dates to Date or Datetime.
	DetectDates bool
	// Sheet selects an Excel worksheet by name; empty means the first.
	Sheet string
	// Logger receives load summaries. Nil discards them.
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return o.Logger
}

// DetectFileType determines the type of file based on extension and content
func DetectFileType(filePath string, content []byte) FileType {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".csv", ".tsv":
		return FileTypeCSV
	case ".parquet":
		return FileTypeParquet
	case ".xlsx":
		return FileTypeExcel
	case ".json", ".share", ".txt":
		// Try to detect if it's a Delta Sharing profile or JSON data
		if IsDeltaSharingProfile(content) {
			return FileTypeDeltaSharingProfile
		}
		if ext == ".json" {
			return FileTypeJSON
		}
	}
	return FileTypeUnknown
}

// IsDeltaSharingProfile checks if the content looks like a Delta Sharing profile
func IsDeltaSharingProfile(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	var profile map[string]interface{}
	if err := json.Unmarshal(content, &profile); err != nil {
		return false
	}

	_, hasVersion := profile["shareCredentialsVersion"]
	_, hasEndpoint := profile["endpoint"]
	_, hasBearerToken := profile["bearerToken"]

	return hasVersion && hasEndpoint && hasBearerToken
}

// Load reads a data file into a table.
func Load(ctx context.Context, path string, opts Options) (*frame.Table, error) {
	var head []byte
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".json" || ext == ".share" || ext == ".txt" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
		}
		head = b
	}

	var (
		t   *frame.Table
		err error
	)
	fileType := DetectFileType(path, head)
	switch fileType {
	case FileTypeCSV:
		t, err = loadCSV(path, opts)
	case FileTypeParquet:
		t, err = loadParquet(ctx, path)
	case FileTypeExcel:
		t, err = loadXLSX(path, opts.Sheet)
	case FileTypeJSON:
		t, err = decodeJSON(head)
	case FileTypeDeltaSharingProfile:
		return nil, fmt.Errorf("%w: %s is a Delta Sharing profile; choose a table to load", datatable.ErrUnsupportedFile, filepath.Base(path))
	default:
		return nil, fmt.Errorf("%w: %s", datatable.ErrUnsupportedFile, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s file %s: %w", fileType, filepath.Base(path), err)
	}

	opts.logger().Printf("loaded %s file %s (%d rows, %d columns)", fileType, filepath.Base(path), t.NumRows(), t.NumCols())
	return t, nil
}

// Save writes t in the format implied by the extension of path.
func Save(t *frame.Table, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return SaveParquet(t, path)
	case ".csv":
		return ExportCSV(t, path)
	case ".json":
		return ExportJSON(t, path)
	}
	return fmt.Errorf("%w: cannot save as %s", datatable.ErrUnsupportedFile, filepath.Base(path))
}
