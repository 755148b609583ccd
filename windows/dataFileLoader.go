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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"parqcel/fileio"
	"parqcel/frame"
)

// LoadDataFile opens a data file in a new tab, or the share browser when the
// file is a Delta Sharing profile.
func (t *MainWindow) LoadDataFile(filePath string) {
	name := filepath.Base(filePath)

	if ext := strings.ToLower(filepath.Ext(filePath)); ext == ".share" || ext == ".json" || ext == ".txt" {
		content, err := os.ReadFile(filePath)
		if err != nil {
			showResult(t.w, t.SetStatus, err, "")
			return
		}
		if fileio.IsDeltaSharingProfile(content) {
			t.LoadProfile(string(content), name)
			return
		}
	}

	t.SetStatus("Loading " + name)
	var tbl *frame.Table
	runWithProgress(t.w, fmt.Sprintf("Loading %s...", name), func() error {
		var err error
		tbl, err = fileio.Load(context.Background(), filePath, t.session.LoadOptions())
		return err
	}, func(err error) {
		if !showResult(t.w, t.SetStatus, err, "") {
			return
		}
		t.dataBrowser.Open(tbl, name, filePath)
		t.SetStatus(fmt.Sprintf("Loaded %s (%d rows, %d columns)", name, tbl.NumRows(), tbl.NumCols()))
	})
}

// LoadProfile lists the tables of a Delta Sharing profile in the share tree.
func (t *MainWindow) LoadProfile(profile, name string) {
	t.SetStatus("Loading profile " + name)
	runWithProgress(t.w, "Listing shared tables...", func() error {
		ctx, cancel := t.session.TimeoutContext(context.Background())
		defer cancel()
		return t.navTree.LoadShares(ctx, profile)
	}, func(err error) {
		if !showResult(t.w, t.SetStatus, err, "") {
			return
		}
		t.treeWidget.Refresh()
		t.showShares(true)
		t.SetStatus(fmt.Sprintf("Profile %s loaded", name))
	})
}

// loadDeltaTable downloads a shared table into a new tab.
func (t *MainWindow) loadDeltaTable(ref fileio.TableRef) {
	profile := t.navTree.Profile()
	var tbl *frame.Table
	runWithProgress(t.w, fmt.Sprintf("Loading %s...", ref.Name), func() error {
		ctx, cancel := t.session.TimeoutContext(context.Background())
		defer cancel()
		var err error
		tbl, err = fileio.LoadDeltaSharing(ctx, profile, ref.Share, ref.Schema, ref.Name)
		return err
	}, func(err error) {
		if !showResult(t.w, t.SetStatus, err, "") {
			return
		}
		t.dataBrowser.Open(tbl, ref.Name, ref.String())
		t.SetStatus(fmt.Sprintf("Table loaded: %s (%d rows, %d columns)", ref, tbl.NumRows(), tbl.NumCols()))
	})
}
