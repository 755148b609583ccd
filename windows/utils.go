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
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// runWithProgress shows an infinite progress dialog while work runs in the
// background, then calls done on the fyne thread.
func runWithProgress(w fyne.Window, title string, work func() error, done func(error)) {
	pbi := widget.NewProgressBarInfinite()
	di := dialog.NewCustomWithoutButtons(title, pbi, w)
	di.Resize(fyne.NewSize(300, 100))
	di.Show()
	pbi.Start()

	go func() {
		err := work()
		fyne.Do(func() {
			pbi.Stop()
			di.Hide()
			if done != nil {
				done(err)
			}
		})
	}()
}

// showResult reports err in an error dialog, or msg in the status bar.
func showResult(w fyne.Window, status func(string), err error, msg string) bool {
	if err != nil {
		dialog.ShowError(err, w)
		if status != nil {
			status(fmt.Sprintf("Error: %v", err))
		}
		return false
	}
	if status != nil && msg != "" {
		status(msg)
	}
	return true
}

// cleanFilename removes spaces and special characters from a filename.
func cleanFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "table"
	}
	return b.String()
}

// splitValues reads a comma separated operand list from a form field.
func splitValues(s string) []interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]interface{}, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}
