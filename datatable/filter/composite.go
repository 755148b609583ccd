package filter

import (
	"fmt"
	"strings"

	"parqcel/datatable"
)

// LogicOp represents a logical operator for combining filters.
type LogicOp int

const (
	// LogicAND requires all filters to pass.
	LogicAND LogicOp = iota
	// LogicOR requires at least one filter to pass.
	LogicOR
)

// String returns the string representation of a LogicOp.
func (op LogicOp) String() string {
	switch op {
	case LogicAND:
		return "AND"
	case LogicOR:
		return "OR"
	default:
		return fmt.Sprintf("unknown(%d)", op)
	}
}

// CompositeFilter combines multiple filters with AND or OR logic.
type CompositeFilter struct {
	// Filters is the list of filters to combine.
	Filters []datatable.Filter

	// Logic specifies how to combine the filters (AND or OR).
	Logic LogicOp
}

// And returns a filter that passes when every given filter passes.
func And(filters ...datatable.Filter) *CompositeFilter {
	return &CompositeFilter{Filters: filters, Logic: LogicAND}
}

// Or returns a filter that passes when any given filter passes.
func Or(filters ...datatable.Filter) *CompositeFilter {
	return &CompositeFilter{Filters: filters, Logic: LogicOR}
}

// Evaluate implements the Filter interface.
func (f *CompositeFilter) Evaluate(row []datatable.Value, columnNames []string) (bool, error) {
	if len(f.Filters) == 0 {
		return true, nil
	}

	// AND short-circuits on the first false, OR on the first true.
	var stopOn bool
	switch f.Logic {
	case LogicAND:
		stopOn = false
	case LogicOR:
		stopOn = true
	default:
		return false, fmt.Errorf("%w: unknown logic operator %d", datatable.ErrFilterOperator, f.Logic)
	}

	for _, filter := range f.Filters {
		passes, err := filter.Evaluate(row, columnNames)
		if err != nil {
			return false, err
		}
		if passes == stopOn {
			return stopOn, nil
		}
	}
	return !stopOn, nil
}

// Description implements the Filter interface.
func (f *CompositeFilter) Description() string {
	if len(f.Filters) == 0 {
		return "empty filter"
	}
	if len(f.Filters) == 1 {
		return f.Filters[0].Description()
	}

	descriptions := make([]string, len(f.Filters))
	for i, filter := range f.Filters {
		descriptions[i] = filter.Description()
	}
	return "(" + strings.Join(descriptions, " "+f.Logic.String()+" ") + ")"
}

// Columns returns the columns read by the combined filters.
func (f *CompositeFilter) Columns() []string {
	var names []string
	for _, filter := range f.Filters {
		names = append(names, Columns(filter)...)
	}
	return names
}

// Not inverts another filter.
type Not struct {
	Filter datatable.Filter
}

// Evaluate implements the Filter interface.
func (n Not) Evaluate(row []datatable.Value, columnNames []string) (bool, error) {
	passes, err := n.Filter.Evaluate(row, columnNames)
	if err != nil {
		return false, err
	}
	return !passes, nil
}

// Description implements the Filter interface.
func (n Not) Description() string {
	return "NOT " + n.Filter.Description()
}

// Columns returns the columns read by the inverted filter.
func (n Not) Columns() []string { return Columns(n.Filter) }

// AnyColumn passes when any cell's display text contains Term, ignoring case.
type AnyColumn struct {
	Term string
}

// Evaluate implements the Filter interface.
func (a AnyColumn) Evaluate(row []datatable.Value, _ []string) (bool, error) {
	term := strings.ToLower(a.Term)
	for _, v := range row {
		if !v.IsNull && strings.Contains(strings.ToLower(v.Formatted), term) {
			return true, nil
		}
	}
	return false, nil
}

// Description implements the Filter interface.
func (a AnyColumn) Description() string {
	return fmt.Sprintf("any column contains %q", a.Term)
}

// Columns returns the column names f reads, in the order they appear.
// Filters that do not name columns, such as AnyColumn, contribute none.
func Columns(f datatable.Filter) []string {
	cr, ok := f.(interface{ Columns() []string })
	if !ok {
		return nil
	}
	return cr.Columns()
}
