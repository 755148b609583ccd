package windows

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"parqcel/features"
	"parqcel/frame"
	"parqcel/model"
)

// featureForm holds the inputs shared by the featurize and PCA dialogs.
type featureForm struct {
	columns  *widget.CheckGroup
	scale    *widget.Select
	oneHot   *widget.Check
	maxTerms *widget.Entry
}

func newFeatureForm(t *frame.Table) *featureForm {
	kinds := features.Detect(t)
	var usable []string
	for _, name := range t.Names() {
		if slices.Contains(kinds.Numeric, name) || slices.Contains(kinds.Categorical, name) || slices.Contains(kinds.Text, name) {
			usable = append(usable, name)
		}
	}
	ff := &featureForm{
		columns:  widget.NewCheckGroup(usable, nil),
		scale:    widget.NewSelect([]string{"standard", "minmax", "none"}, nil),
		oneHot:   widget.NewCheck("One-hot encode categorical columns", nil),
		maxTerms: widget.NewEntry(),
	}
	ff.columns.SetSelected(usable)
	ff.scale.SetSelected("standard")
	ff.oneHot.SetChecked(true)
	ff.maxTerms.SetText(strconv.Itoa(features.DefaultMaxTerms))
	return ff
}

func (ff *featureForm) items() []*widget.FormItem {
	return []*widget.FormItem{
		widget.NewFormItem("Columns", container.NewVScroll(ff.columns)),
		widget.NewFormItem("Scale numeric", ff.scale),
		widget.NewFormItem("", ff.oneHot),
		widget.NewFormItem("TF-IDF max terms", ff.maxTerms),
	}
}

func (ff *featureForm) options(t *frame.Table) (features.Options, error) {
	return featureOptions(t, ff.columns.Selected, ff.scale.Selected, ff.oneHot.Checked, ff.maxTerms.Text)
}

// featureOptions restricts the detected column kinds of t to selected.
func featureOptions(t *frame.Table, selected []string, scale string, oneHot bool, maxTerms string) (features.Options, error) {
	s, err := features.ParseScaling(scale)
	if err != nil {
		return features.Options{}, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(maxTerms))
	if err != nil || n < 1 {
		return features.Options{}, fmt.Errorf("TF-IDF max terms must be a positive number, got %q", maxTerms)
	}
	keep := func(names []string) []string {
		out := []string{}
		for _, name := range names {
			if slices.Contains(selected, name) {
				out = append(out, name)
			}
		}
		return out
	}
	kinds := features.Detect(t)
	return features.Options{
		Numeric:     keep(kinds.Numeric),
		Categorical: keep(kinds.Categorical),
		Text:        keep(kinds.Text),
		Scale:       s,
		OneHot:      oneHot,
		MaxTerms:    n,
	}, nil
}

// ShowFeaturizeDialog appends feature columns for the chosen columns.
func ShowFeaturizeDialog(w fyne.Window, m *model.TableModel, status func(string)) {
	ff := newFeatureForm(m.Current())
	d := dialog.NewForm("Featurize columns", "Featurize and add", "Cancel", ff.items(), func(ok bool) {
		if !ok {
			return
		}
		opts, err := ff.options(m.Current())
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		before := m.ColumnCount()
		err = m.Featurize(opts)
		showResult(w, status, err, fmt.Sprintf("Added %d feature columns", m.ColumnCount()-before))
	}, w)
	d.Resize(fyne.NewSize(460, 420))
	d.Show()
}

// ShowPCADialog appends principal components of the chosen columns.
func ShowPCADialog(w fyne.Window, m *model.TableModel, status func(string)) {
	ff := newFeatureForm(m.Current())
	components := widget.NewEntry()
	components.SetText("2")
	items := append([]*widget.FormItem{widget.NewFormItem("Components", components)}, ff.items()...)

	d := dialog.NewForm("Principal components", "Add components", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		opts, err := ff.options(m.Current())
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		k, err := strconv.Atoi(strings.TrimSpace(components.Text))
		if err != nil {
			dialog.ShowError(fmt.Errorf("components must be a number, got %q", components.Text), w)
			return
		}
		ratio, err := m.AddPCA(k, opts)
		parts := make([]string, len(ratio))
		for i, r := range ratio {
			parts[i] = fmt.Sprintf("%.1f%%", r*100)
		}
		showResult(w, status, err, "Added components explaining "+strings.Join(parts, ", "))
	}, w)
	d.Resize(fyne.NewSize(460, 460))
	d.Show()
}
