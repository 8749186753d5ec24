package csv

import (
	"fmt"
	"strconv"
	"strings"
)

// RowFactory converts one tokenized row into a value of T.
// Implementations report malformed rows with *FactoryFailure.
type RowFactory[T any] interface {
	Create(row []string) (T, error)
}

// Identity returns each row unchanged.
type Identity struct{}

func (Identity) Create(row []string) ([]string, error) {
	return row, nil
}

// FixedArity builds values from rows with an exact number of columns.
// Any conversion problem inside Build is reported as a single
// FactoryFailure naming the record type; the underlying strconv error is
// not propagated.
type FixedArity[T any] struct {
	Name    string
	Columns int
	Build   func(f *Fields) (T, error)
}

func (fa FixedArity[T]) Create(row []string) (T, error) {
	var zero T

	if len(row) != fa.Columns {
		return zero, NewFactoryFailure(
			fmt.Sprintf("error creating %s: expected %d columns, got %d", fa.Name, fa.Columns, len(row)),
			row,
		)
	}

	f := &Fields{row: row, bad: -1}
	v, err := fa.Build(f)
	if f.bad >= 0 {
		return zero, NewFactoryFailure(
			fmt.Sprintf("error creating %s: invalid value %q in column %d", fa.Name, row[f.bad], f.bad),
			row,
		)
	}
	if err != nil {
		return zero, NewFactoryFailure(fmt.Sprintf("error creating %s: %v", fa.Name, err), row)
	}
	return v, nil
}

// Fields gives typed access to the columns of one row. The first failed
// conversion is remembered and later calls return zero values.
type Fields struct {
	row []string
	bad int
}

// String returns column i verbatim.
func (f *Fields) String(i int) string {
	if f.bad >= 0 {
		return ""
	}
	return f.row[i]
}

// Int parses column i as a base-10 integer, ignoring surrounding spaces.
func (f *Fields) Int(i int) int {
	if f.bad >= 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(f.row[i]))
	if err != nil {
		f.bad = i
		return 0
	}
	return n
}

// Float parses column i as a float64, ignoring surrounding spaces.
func (f *Fields) Float(i int) float64 {
	if f.bad >= 0 {
		return 0
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(f.row[i]), 64)
	if err != nil {
		f.bad = i
		return 0
	}
	return x
}
