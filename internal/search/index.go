// Package search answers exact-value queries over a parsed dataset.
//
// An Index keeps every parsed row, including the header row when there is
// one, and skips the header logically during queries. Values compare
// case-insensitively. Indexes are immutable and safe for concurrent use.
package search

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/JonMunkholm/csvsearch/internal/csv"
)

var (
	// ErrInvalidArgument classifies caller mistakes such as an out-of-range
	// column index. It is never returned for malformed data.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyValue is returned by every search when the value is empty.
	// An empty value means no value was given, so it never matches empty
	// fields.
	ErrEmptyValue = fmt.Errorf("%w: search value is required", ErrInvalidArgument)

	// ErrNameRequired is returned by Open when the dataset name is empty.
	ErrNameRequired = fmt.Errorf("%w: dataset name is required", ErrInvalidArgument)

	// ErrNoHeader is returned by column-name queries on a dataset that was
	// opened without a header row.
	ErrNoHeader = errors.New("header row not present, cannot resolve column name")
)

// ColumnNotFoundError reports a column name that matches no header.
type ColumnNotFoundError struct {
	Column    string
	Dataset   string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column name %s not found in dataset %s. Columns in dataset: %s",
		e.Column, e.Dataset, strings.Join(e.Available, ", "))
}

// Resolver turns a dataset name into an open stream.
type Resolver interface {
	Open(name string) (io.ReadCloser, string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(name string) (io.ReadCloser, string, error)

func (f ResolverFunc) Open(name string) (io.ReadCloser, string, error) {
	return f(name)
}

// Index is an in-memory, read-only table of rows.
type Index struct {
	name      string
	path      string
	rows      [][]string
	hasHeader bool
}

// Open resolves name, parses it with column-count enforcement and keeps the
// header row (if any) as the first row of the index.
func Open(res Resolver, name string, hasHeader bool) (*Index, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	rc, path, err := res.Open(name)
	if err != nil {
		return nil, err
	}

	p, err := csv.NewParser[[]string](rc, csv.Identity{}, csv.Options{EnforceColumns: true})
	if err != nil {
		rc.Close()
		return nil, err
	}
	rows, err := p.Parse()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	idx := New(name, rows, hasHeader)
	idx.path = path
	return idx, nil
}

// New builds an Index from rows that are already parsed. The rows are used
// as given and must not be modified afterwards.
func New(name string, rows [][]string, hasHeader bool) *Index {
	if rows == nil {
		rows = [][]string{}
	}
	return &Index{name: name, rows: rows, hasHeader: hasHeader}
}

func (idx *Index) Name() string { return idx.name }

// Path is the file the index was parsed from, empty for New.
func (idx *Index) Path() string { return idx.path }

func (idx *Index) HasHeader() bool { return idx.hasHeader }

// Len counts data rows, excluding the header.
func (idx *Index) Len() int {
	if idx.hasHeader && len(idx.rows) > 0 {
		return len(idx.rows) - 1
	}
	return len(idx.rows)
}

// Header returns a copy of the header row, or nil without one.
func (idx *Index) Header() []string {
	if !idx.hasHeader || len(idx.rows) == 0 {
		return nil
	}
	return slices.Clone(idx.rows[0])
}

// Search returns every data row with a field equal to value, ignoring
// case. An empty value is treated as no value and fails with
// ErrEmptyValue rather than matching empty fields.
func (idx *Index) Search(value string) ([][]string, error) {
	if value == "" {
		return nil, ErrEmptyValue
	}

	out := [][]string{}
	for _, row := range idx.data() {
		if slices.ContainsFunc(row, func(field string) bool { return strings.EqualFold(field, value) }) {
			out = append(out, slices.Clone(row))
		}
	}
	return out, nil
}

// SearchColumnName resolves column against the header and searches that
// column. When several headers match, the leftmost one is used.
func (idx *Index) SearchColumnName(value, column string) ([][]string, error) {
	if value == "" && column == "" {
		return nil, fmt.Errorf("%w: search value and column name are required", ErrInvalidArgument)
	}
	if value == "" {
		return nil, ErrEmptyValue
	}
	if column == "" {
		return nil, fmt.Errorf("%w: column name is required", ErrInvalidArgument)
	}

	if len(idx.rows) == 0 {
		return [][]string{}, nil
	}
	if !idx.hasHeader {
		return nil, ErrNoHeader
	}

	header := idx.rows[0]
	col := slices.IndexFunc(header, func(h string) bool { return strings.EqualFold(h, column) })
	if col < 0 {
		return nil, &ColumnNotFoundError{Column: column, Dataset: idx.name, Available: slices.Clone(header)}
	}
	return idx.SearchColumnIndex(value, col)
}

// SearchColumnIndex returns every data row whose field at index equals
// value. Rows narrower than index+1 never match.
func (idx *Index) SearchColumnIndex(value string, index int) ([][]string, error) {
	if value == "" {
		return nil, ErrEmptyValue
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: column index %d must be zero or greater", ErrInvalidArgument, index)
	}
	if len(idx.rows) == 0 {
		return [][]string{}, nil
	}
	if width := len(idx.rows[0]); index >= width {
		return nil, fmt.Errorf("%w: column index %d out of range of %d columns", ErrInvalidArgument, index, width)
	}

	out := [][]string{}
	for _, row := range idx.data() {
		if index < len(row) && strings.EqualFold(row[index], value) {
			out = append(out, slices.Clone(row))
		}
	}
	return out, nil
}

func (idx *Index) data() [][]string {
	if idx.hasHeader && len(idx.rows) > 0 {
		return idx.rows[1:]
	}
	return idx.rows
}
