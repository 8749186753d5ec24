package core

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFileNotLoaded = errors.New("file not loaded")
	ErrTooManyFiles  = errors.New("maximum number of loaded files reached")
)

// LoadedFile is a data file registered for viewing and searching.
type LoadedFile struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"filename"`
	Path     string    `json:"filepath"`
	LoadedAt time.Time `json:"loadedAt"`
}

// LoadedFiles maps file names to loaded files. Names are case-sensitive.
type LoadedFiles struct {
	mu    sync.RWMutex
	max   int
	files map[string]LoadedFile
}

func NewLoadedFiles(max int) *LoadedFiles {
	return &LoadedFiles{max: max, files: make(map[string]LoadedFile)}
}

// Put registers f under f.Name, replacing any file with the same name.
// A new name is refused with ErrTooManyFiles once the limit is reached.
func (l *LoadedFiles) Put(f LoadedFile) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.files[f.Name]; !exists && l.max > 0 && len(l.files) >= l.max {
		return ErrTooManyFiles
	}
	l.files[f.Name] = f
	return nil
}

func (l *LoadedFiles) Get(name string) (LoadedFile, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, ok := l.files[name]
	return f, ok
}

// All returns the loaded files sorted by name.
func (l *LoadedFiles) All() []LoadedFile {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]LoadedFile, 0, len(l.files))
	for _, f := range l.files {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

func (l *LoadedFiles) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.files)
}
