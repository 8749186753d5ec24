package csv

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// MaxLineSize bounds the length of a single input line.
var MaxLineSize = 16 * 1024 * 1024

// Options controls how a Parser treats its input.
type Options struct {
	// HasHeader discards the first line before any row is built.
	HasHeader bool

	// EnforceColumns fails the parse when a data row's token count differs
	// from the first data row's.
	EnforceColumns bool
}

// Parser turns a character stream into a dataset of T.
// A Parser reads its stream once; it is not safe for concurrent use.
type Parser[T any] struct {
	src      io.Reader
	factory  RowFactory[T]
	opts     Options
	consumed bool
}

// NewParser validates its inputs before any reading happens.
// If r implements io.Closer it is closed when Parse returns.
func NewParser[T any](r io.Reader, factory RowFactory[T], opts Options) (*Parser[T], error) {
	var errs []error
	if r == nil {
		errs = append(errs, ErrNilReader)
	}
	if factory == nil {
		errs = append(errs, ErrNilFactory)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Parser[T]{src: r, factory: factory, opts: opts}, nil
}

// Parse reads the stream to exhaustion and returns one value per data row,
// in input order. The first malformed row aborts the parse.
func (p *Parser[T]) Parse() (result []T, err error) {
	if p.consumed {
		return nil, ErrConsumed
	}
	p.consumed = true

	if c, ok := p.src.(io.Closer); ok {
		defer func() {
			if cerr := c.Close(); cerr != nil && err == nil {
				result, err = nil, &ReadError{Err: fmt.Errorf("close: %w", cerr)}
			}
		}()
	}

	scanner := bufio.NewScanner(p.src)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	scanner.Split(scanLines)

	lineNo := 0
	if p.opts.HasHeader {
		lineNo++
		scanner.Scan()
	}

	result = []T{}
	width := -1
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		row := SplitRow(line)

		if p.opts.EnforceColumns {
			if width < 0 {
				width = len(row)
			} else if len(row) != width {
				return nil, &FactoryFailure{
					Message: "inconsistent number of columns at row: " + line,
					Row:     row,
					Line:    line,
					Err:     ErrInconsistentColumns,
				}
			}
		}

		v, err := p.factory.Create(row)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ReadError{LineNumber: lineNo + 1, Err: err}
	}

	return result, nil
}

// scanLines is a bufio.SplitFunc accepting \n, \r\n and \r terminators.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// A trailing \r may be the first half of \r\n.
		return 0, nil, nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
