// Package resource locates data files under a single root directory.
package resource

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/csvsearch/internal/csv"
)

var (
	ErrNotFound    = errors.New("resource not found")
	ErrOutsideRoot = errors.New("path is outside the data directory")
)

// Dir resolves names and paths against a root directory.
type Dir struct {
	root string
}

// NewDir returns a Dir rooted at root, made absolute.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory %q: %w", root, err)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute root directory.
func (d *Dir) Root() string {
	return d.root
}

// Resolve finds a file by name anywhere below the root. The ".csv"
// extension is appended when missing and names compare case-insensitively.
// The walk is depth-first in lexical order and the first match wins.
func (d *Dir) Resolve(name string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		name += ".csv"
	}

	var found string
	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped; a missing root surfaces below.
			if path == d.root {
				return err
			}
			return nil
		}
		if !entry.IsDir() && strings.EqualFold(entry.Name(), name) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("search %s for %s: %w", d.root, name, err)
	}
	if found == "" {
		return "", fmt.Errorf("%s: %w in %s", name, ErrNotFound, d.root)
	}
	return found, nil
}

// Open resolves name and opens it for reading. The returned reader strips a
// byte order mark and replaces invalid UTF-8.
func (d *Dir) Open(name string) (io.ReadCloser, string, error) {
	path, err := d.Resolve(name)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	return sanitizedFile{Reader: csv.Sanitize(f), Closer: f}, path, nil
}

// OpenPath opens a file previously accepted by Within.
func (d *Dir) OpenPath(path string) (io.ReadCloser, string, error) {
	if _, err := d.Within(path); err != nil {
		return nil, "", err
	}

	abs, _ := filepath.Abs(path)
	f, err := os.Open(abs)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", abs, err)
	}
	return sanitizedFile{Reader: csv.Sanitize(f), Closer: f}, abs, nil
}

type sanitizedFile struct {
	io.Reader
	io.Closer
}

// Within checks that path names an existing file below the root and
// returns its base name without extension.
func (d *Dir) Within(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}

	rel, err := filepath.Rel(d.root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}

	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	base := filepath.Base(abs)
	if dot := strings.LastIndexByte(base, '.'); dot > 0 {
		base = base[:dot]
	}
	return base, nil
}
