package windows

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"parqcel/config"
	"parqcel/datatable"
	"parqcel/sandbox"
)

const editorPlaceholder = `// The current table is dataset. Examples:
// dataset.Filter(tbl.Col("age").Gt(30)).Sort("name", false)
// result = dataset.Drop("notes")
// result = result.Head(100)`

var errorLinePattern = regexp.MustCompile(`line (\d+):`)

// GoEditor is the transformation pane: an assistant prompt, the program
// editor with a highlighted preview, and the output of the last run.
type GoEditor struct {
	w             fyne.Window
	session       *config.Session
	current       func() *Data
	status        func(string)
	promptEntry   *widget.Entry
	codeEditor    *widget.Entry
	syntaxEditor  *SyntaxEditor
	outputText    *widget.RichText
	applyButton   *widget.Button
	suggestButton *widget.Button
	container     *fyne.Container

	syntaxUpdateChan chan string
	stopSyntaxUpdate chan bool
}

// NewGoEditor creates the editor. current returns the table tab programs run
// against.
func NewGoEditor(w fyne.Window, session *config.Session, current func() *Data, status func(string)) *GoEditor {
	ge := &GoEditor{
		w:                w,
		session:          session,
		current:          current,
		status:           status,
		syntaxUpdateChan: make(chan string, 10),
		stopSyntaxUpdate: make(chan bool),
	}
	ge.createUI()
	ge.startSyntaxHighlighter()
	return ge
}

func (ge *GoEditor) createUI() {
	ge.promptEntry = widget.NewEntry()
	ge.promptEntry.SetPlaceHolder(`Ask the assistant, e.g. "top 10 by revenue" or "where city == 'Oslo'"`)
	ge.promptEntry.OnSubmitted = func(string) { ge.suggest() }
	ge.suggestButton = widget.NewButtonWithIcon("Suggest", theme.HelpIcon(), ge.suggest)

	ge.codeEditor = widget.NewMultiLineEntry()
	ge.codeEditor.SetPlaceHolder(editorPlaceholder)
	ge.codeEditor.Wrapping = fyne.TextWrapOff
	ge.codeEditor.TextStyle = fyne.TextStyle{Monospace: true}
	ge.codeEditor.OnChanged = func(text string) {
		select {
		case ge.syntaxUpdateChan <- text:
		default:
			// superseded by the next keystroke
		}
	}

	ge.syntaxEditor = NewSyntaxEditor()

	ge.outputText = widget.NewRichText()
	ge.outputText.Wrapping = fyne.TextWrapWord
	ge.setOutput("Output will appear here...")

	ge.applyButton = widget.NewButtonWithIcon("Apply", theme.MediaPlayIcon(), ge.applyCode)
	ge.applyButton.Importance = widget.HighImportance
	checkButton := widget.NewButtonWithIcon("Check", theme.ConfirmIcon(), ge.checkCode)
	clearButton := widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), ge.clearOutput)
	loadButton := widget.NewButtonWithIcon("Open", theme.FolderOpenIcon(), ge.loadCode)
	saveButton := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), ge.saveCode)

	promptRow := container.NewBorder(nil, nil, widget.NewLabel("Assistant:"), ge.suggestButton, ge.promptEntry)

	editorSplit := container.NewVSplit(
		container.NewBorder(widget.NewLabel("Program:"), nil, nil, nil, ge.codeEditor),
		container.NewBorder(widget.NewLabel("Preview:"), nil, nil, nil, container.NewScroll(ge.syntaxEditor)),
	)
	editorSplit.SetOffset(0.6)

	outputCard := widget.NewCard("", "Result", container.NewScroll(ge.outputText))

	split := container.NewHSplit(widget.NewCard("", "", editorSplit), outputCard)
	split.SetOffset(0.6)

	buttons := container.NewHBox(ge.applyButton, checkButton, clearButton, widget.NewSeparator(), loadButton, saveButton)
	ge.container = container.NewBorder(promptRow, buttons, nil, nil, split)
}

// GetContainer returns the main container for the editor
func (ge *GoEditor) GetContainer() *fyne.Container {
	return ge.container
}

// SetCode sets the code in the editor
func (ge *GoEditor) SetCode(code string) {
	ge.codeEditor.SetText(code)
}

// GetCode returns the current code in the editor
func (ge *GoEditor) GetCode() string {
	return ge.codeEditor.Text
}

// suggest asks the assistant backend for code in the background.
func (ge *GoEditor) suggest() {
	prompt := strings.TrimSpace(ge.promptEntry.Text)
	if prompt == "" {
		return
	}
	ge.suggestButton.Disable()
	ge.setOutput(fmt.Sprintf("Asking the assistant: %s\n", prompt))

	go func() {
		ctx, cancel := ge.session.TimeoutContext(context.Background())
		defer cancel()
		s, err := ge.session.Assistant.Suggest(ctx, prompt)

		fyne.Do(func() {
			ge.suggestButton.Enable()
			if err != nil {
				ge.appendOutput(fmt.Sprintf("\nAssistant error: %v\n", err))
				return
			}
			if s.Text != "" {
				ge.appendOutputBold(s.Text + "\n")
			}
			ge.codeEditor.SetText(s.Code)
			ge.appendOutput("Review the program and press Apply.\n")
		})
	}()
}

// checkCode validates the program without running it and shows the code
// that would be executed.
func (ge *GoEditor) checkCode() {
	src, err := sandbox.Program(ge.codeEditor.Text)
	if err != nil {
		ge.showError(err)
		return
	}
	ge.syntaxEditor.SetHighlightedLine(0)
	ge.setOutput("The program is allowed. It runs as:\n\n")
	ge.appendOutputStyled(src, false, true)
}

// applyCode runs the program in the sandbox and replaces the current table
// with the result.
func (ge *GoEditor) applyCode() {
	code := ge.codeEditor.Text
	if strings.TrimSpace(code) == "" {
		ge.setOutput("Error: No code to execute\n")
		return
	}
	data := ge.current()
	if data == nil {
		ge.setOutput("Error: Open a table first\n")
		return
	}

	input := data.model.Current()
	ge.setOutput(fmt.Sprintf("Running against %s (%d rows)...\n", data.tableName, input.NumRows()))
	ge.applyButton.Disable()

	go func() {
		start := time.Now()
		out, err := ge.session.Runner.Run(context.Background(), code, input)

		fyne.Do(func() {
			ge.applyButton.Enable()
			if err != nil {
				ge.showError(err)
				return
			}
			if data.model.Current() != input {
				ge.appendOutput("\nThe table changed while the program ran; result discarded.\n")
				return
			}
			data.model.Replace(out)
			ge.syntaxEditor.SetHighlightedLine(0)
			ge.appendOutputBold(fmt.Sprintf("%d rows, %d columns -> %d rows, %d columns\n",
				input.NumRows(), input.NumCols(), out.NumRows(), out.NumCols()))
			ge.appendOutput(fmt.Sprintf("Completed in %s. Use Undo to revert.\n", time.Since(start).Round(time.Millisecond)))
			if ge.status != nil {
				ge.status(fmt.Sprintf("Transformation applied to %s", data.tableName))
			}
		})
	}()
}

func (ge *GoEditor) showError(err error) {
	kind := "Error"
	switch {
	case errors.Is(err, datatable.ErrSandboxPolicy):
		kind = "Not allowed"
	case errors.Is(err, datatable.ErrSandboxSyntax):
		kind = "Syntax error"
	case errors.Is(err, datatable.ErrSandboxResult):
		kind = "Execution error"
	}
	ge.appendOutput(fmt.Sprintf("\n%s: %v\n", kind, err))
	ge.syntaxEditor.SetHighlightedLine(errorLine(err))
}

// errorLine extracts the program line an error refers to, or 0.
func errorLine(err error) int {
	m := errorLinePattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// setOutput replaces the output window content with normal text
func (ge *GoEditor) setOutput(text string) {
	ge.outputText.Segments = nil
	ge.appendOutputStyled(text, false, false)
}

func (ge *GoEditor) appendOutput(text string) {
	ge.appendOutputStyled(text, false, false)
}

func (ge *GoEditor) appendOutputBold(text string) {
	ge.appendOutputStyled(text, true, false)
}

func (ge *GoEditor) appendOutputStyled(text string, bold, mono bool) {
	segment := &widget.TextSegment{
		Text: text,
		Style: widget.RichTextStyle{
			TextStyle: fyne.TextStyle{Bold: bold, Monospace: mono},
			ColorName: theme.ColorNameForeground,
		},
	}
	if mono {
		segment.Style = widget.RichTextStyleCodeBlock
	}
	ge.outputText.Segments = append(ge.outputText.Segments, segment)
	ge.outputText.Refresh()
}

func (ge *GoEditor) clearOutput() {
	ge.outputText.Segments = []widget.RichTextSegment{}
	ge.outputText.Refresh()
}

// saveCode opens a file dialog and saves the program.
func (ge *GoEditor) saveCode() {
	code := ge.codeEditor.Text
	if code == "" {
		dialog.ShowInformation("Nothing to Save", "The editor is empty.", ge.w)
		return
	}

	saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, ge.w)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if _, err := writer.Write([]byte(code)); err != nil {
			dialog.ShowError(fmt.Errorf("failed to save file: %w", err), ge.w)
			return
		}
		if ge.status != nil {
			ge.status(fmt.Sprintf("Program saved to %s (%d bytes)", writer.URI().Name(), len(code)))
		}
	}, ge.w)

	saveDialog.SetFileName("transform.go")
	saveDialog.SetFilter(storage.NewExtensionFileFilter([]string{".go", ".txt"}))
	saveDialog.Show()
}

// loadCode opens a file dialog and loads a program into the editor.
func (ge *GoEditor) loadCode() {
	openDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, ge.w)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		content, err := io.ReadAll(reader)
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to read file: %w", err), ge.w)
			return
		}
		ge.codeEditor.SetText(string(content))
		ge.setOutput(fmt.Sprintf("Loaded program from %s (%d bytes)\n", reader.URI().Name(), len(content)))
	}, ge.w)

	openDialog.SetFilter(storage.NewExtensionFileFilter([]string{".go", ".txt"}))
	openDialog.Show()
}

// startSyntaxHighlighter starts a goroutine that debounces syntax highlighting updates
func (ge *GoEditor) startSyntaxHighlighter() {
	go func() {
		var debounceTimer *time.Timer
		const debounceDelay = 150 * time.Millisecond

		for {
			select {
			case <-ge.stopSyntaxUpdate:
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				return

			case text := <-ge.syntaxUpdateChan:
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDelay, func() {
					fyne.Do(func() {
						ge.syntaxEditor.SetHighlightedLine(0)
						ge.syntaxEditor.SetText(text)
					})
				})
			}
		}
	}()
}

// Cleanup stops the background goroutine.
func (ge *GoEditor) Cleanup() {
	close(ge.stopSyntaxUpdate)
}
