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
	"image/color"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// SyntaxEditor is a read-only, highlighted preview of a transformation program.
type SyntaxEditor struct {
	widget.BaseWidget
	textGrid        *widget.TextGrid
	text            string
	highlightedLine int // 1-indexed, 0 = none
	mu              sync.Mutex
}

var errorLineStyle = &widget.CustomTextGridStyle{BGColor: color.NRGBA{R: 0xff, G: 0x00, B: 0x00, A: 0x30}}

// NewSyntaxEditor creates a new syntax editor widget
func NewSyntaxEditor() *SyntaxEditor {
	se := &SyntaxEditor{textGrid: widget.NewTextGrid()}
	se.textGrid.ShowLineNumbers = true
	se.ExtendBaseWidget(se)
	return se
}

// SetText replaces the content and applies syntax highlighting.
func (se *SyntaxEditor) SetText(text string) {
	se.mu.Lock()
	defer se.mu.Unlock()
	se.text = text
	se.render()
}

// SetHighlightedLine marks a line, typically the one an error refers to.
func (se *SyntaxEditor) SetHighlightedLine(line int) {
	se.mu.Lock()
	defer se.mu.Unlock()
	if se.highlightedLine == line {
		return
	}
	se.highlightedLine = line
	se.render()
}

// Text returns the current content.
func (se *SyntaxEditor) Text() string {
	se.mu.Lock()
	defer se.mu.Unlock()
	return se.text
}

func (se *SyntaxEditor) render() {
	lines := strings.Split(se.text, "\n")
	kinds := HighlightLines(se.text)

	rows := make([]widget.TextGridRow, len(lines))
	for i, line := range lines {
		row := widget.TextGridRow{Cells: make([]widget.TextGridCell, 0, len(line))}
		for _, r := range line {
			row.Cells = append(row.Cells, widget.TextGridCell{Rune: r, Style: SyntaxStyles[kinds[i][len(row.Cells)]]})
		}
		if i+1 == se.highlightedLine {
			row.Style = errorLineStyle
		}
		rows[i] = row
	}
	se.textGrid.Rows = rows
	se.textGrid.Refresh()
}

// CreateRenderer implements fyne.Widget interface
func (se *SyntaxEditor) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(se.textGrid)
}
