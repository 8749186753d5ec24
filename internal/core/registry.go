package core

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/JonMunkholm/csvsearch/internal/csv"
)

// ErrUnknownRecordKind is returned for a record kind nobody registered.
var ErrUnknownRecordKind = errors.New("unknown record type")

// RecordKind describes how /viewcsv turns a file into values.
type RecordKind struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// Parse reads r to the end and returns the dataset and its length.
	Parse func(r io.Reader, hasHeader bool) (data any, rows int, err error) `json:"-"`
}

var (
	kinds   = make(map[string]RecordKind)
	kindsMu sync.RWMutex
)

// RegisterKind adds a record kind. Names are case-insensitive.
// Panics if the name is already registered.
func RegisterKind(k RecordKind) {
	kindsMu.Lock()
	defer kindsMu.Unlock()

	key := strings.ToLower(k.Name)
	if _, exists := kinds[key]; exists {
		panic(fmt.Sprintf("record kind already registered: %s", k.Name))
	}
	kinds[key] = k
}

// Kind returns the record kind registered under name.
func Kind(name string) (RecordKind, bool) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()

	k, ok := kinds[strings.ToLower(name)]
	return k, ok
}

// Kinds returns every registered kind sorted by name.
func Kinds() []RecordKind {
	kindsMu.RLock()
	defer kindsMu.RUnlock()

	result := make([]RecordKind, 0, len(kinds))
	for _, k := range kinds {
		result = append(result, k)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// ParserKind builds a RecordKind that parses with factory.
func ParserKind[T any](name, description string, factory csv.RowFactory[T], enforceColumns bool) RecordKind {
	return RecordKind{
		Name:        name,
		Description: description,
		Parse: func(r io.Reader, hasHeader bool) (any, int, error) {
			p, err := csv.NewParser(r, factory, csv.Options{HasHeader: hasHeader, EnforceColumns: enforceColumns})
			if err != nil {
				return nil, 0, err
			}
			rows, err := p.Parse()
			if err != nil {
				return nil, 0, err
			}
			return rows, len(rows), nil
		},
	}
}
