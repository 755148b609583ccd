package datatable

import "errors"

// Common errors returned by the datatable, frame, model and sandbox packages.
// Callers match them with errors.Is; the returned errors wrap them with detail.
var (
	// ErrInvalidColumn is returned when a column index is out of range.
	ErrInvalidColumn = errors.New("invalid column index")

	// ErrInvalidRow is returned when a row index is out of range.
	ErrInvalidRow = errors.New("invalid row index")

	// ErrEmptyData is returned when data is empty where it shouldn't be.
	ErrEmptyData = errors.New("data is empty")

	// ErrTypeCoercion is returned when text does not match a column's type.
	ErrTypeCoercion = errors.New("type coercion failed")

	// ErrDuplicateColumn is returned when adding a column whose name is taken.
	ErrDuplicateColumn = errors.New("column already exists")

	// ErrInvalidName is returned for empty column names or names with reserved characters.
	ErrInvalidName = errors.New("invalid column name")

	// ErrColumnNotFound is returned when a column name is not found.
	ErrColumnNotFound = errors.New("column not found")

	// ErrConversion is returned when a column cannot be cast to the requested type.
	ErrConversion = errors.New("unsupported conversion")

	// ErrFilterOperator is returned for unknown operators or malformed between bounds.
	ErrFilterOperator = errors.New("invalid filter operator")

	// ErrSandboxSyntax is returned when transformation code does not parse.
	ErrSandboxSyntax = errors.New("sandbox: syntax error")

	// ErrSandboxPolicy is returned when transformation code uses a forbidden construct.
	ErrSandboxPolicy = errors.New("sandbox: policy violation")

	// ErrSandboxResult is returned when transformation code yields no usable table.
	ErrSandboxResult = errors.New("sandbox: invalid result")

	// ErrFeatures is returned when columns cannot be turned into a feature matrix.
	ErrFeatures = errors.New("feature extraction failed")

	// ErrUnsupportedFile is returned when a file extension has no loader or writer.
	ErrUnsupportedFile = errors.New("unsupported file type")
)
