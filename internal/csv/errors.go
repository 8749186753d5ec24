package csv

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrNilReader is returned by NewParser when no stream is supplied.
	ErrNilReader = errors.New("csv: nil reader")

	// ErrNilFactory is returned by NewParser when no row factory is supplied.
	ErrNilFactory = errors.New("csv: nil row factory")

	// ErrInconsistentColumns classifies a FactoryFailure raised because a row
	// did not have the column count established by the first data row.
	ErrInconsistentColumns = errors.New("inconsistent number of columns")

	// ErrConsumed is returned when Parse is called on a parser whose stream
	// has already been read.
	ErrConsumed = errors.New("csv: stream already consumed")

	// ErrInvalidCoordinates is returned by NewStar when the coordinate slice
	// does not hold exactly three values.
	ErrInvalidCoordinates = errors.New("coordinates must contain exactly 3 elements")
)

// FactoryFailure reports a row that could not be turned into a value.
// It is the single failure type shared by every RowFactory and by the
// parser's column-count check.
type FactoryFailure struct {
	Message string
	Row     []string

	// Line is the raw input line, set when the parser rejected the row itself.
	Line string

	// Err classifies the failure (e.g. ErrInconsistentColumns). It is never
	// the underlying conversion error of a field.
	Err error
}

// NewFactoryFailure builds a FactoryFailure holding a copy of row.
func NewFactoryFailure(message string, row []string) *FactoryFailure {
	return &FactoryFailure{Message: message, Row: slices.Clone(row)}
}

func (e *FactoryFailure) Error() string {
	return e.Message
}

func (e *FactoryFailure) Unwrap() error {
	return e.Err
}

// ReadError reports a failure of the underlying stream.
type ReadError struct {
	LineNumber int // 1-based line being read when the stream failed
	Err        error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("csv: read line %d: %v", e.LineNumber, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
