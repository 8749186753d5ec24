package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/JonMunkholm/csvsearch/internal/cache"
	"github.com/JonMunkholm/csvsearch/internal/census"
	"github.com/JonMunkholm/csvsearch/internal/resource"
	"github.com/JonMunkholm/csvsearch/internal/search"
	"github.com/google/uuid"
)

// ErrMissingParameter is wrapped with the parameter name by callers that
// validate request input.
var ErrMissingParameter = errors.New("missing required parameter")

// ErrInvalidParameter marks request input that is present but malformed.
var ErrInvalidParameter = errors.New("invalid parameter")

// ServiceConfig sizes the service's registries and caches.
type ServiceConfig struct {
	MaxLoadedFiles      int
	MaxConcurrentParses int
	ParseWait           time.Duration
	IndexCacheSize      int
}

// Service provides the operations behind the HTTP API.
type Service struct {
	dir       *resource.Dir
	files     *LoadedFiles
	limiter   *ParseLimiter
	indexes   *cache.Proxy[indexKey, *search.Index]
	broadband *census.CachingSource
	now       func() time.Time
}

// indexKey identifies one parse of one file version.
type indexKey struct {
	Path      string
	Name      string
	HasHeader bool
	ModTime   int64
	Size      int64
}

// NewService wires a Service over the data directory and broadband source.
func NewService(dir *resource.Dir, broadband *census.CachingSource, cfg ServiceConfig) (*Service, error) {
	if dir == nil {
		return nil, errors.New("core: nil data directory")
	}
	if broadband == nil {
		return nil, errors.New("core: nil broadband source")
	}
	if cfg.IndexCacheSize <= 0 {
		cfg.IndexCacheSize = 32
	}

	s := &Service{
		dir:       dir,
		files:     NewLoadedFiles(cfg.MaxLoadedFiles),
		limiter:   NewParseLimiter(cfg.MaxConcurrentParses, cfg.ParseWait),
		broadband: broadband,
		now:       time.Now,
	}

	indexes, err := cache.New(s.buildIndex, cfg.IndexCacheSize)
	if err != nil {
		return nil, fmt.Errorf("index cache: %w", err)
	}
	s.indexes = indexes
	return s, nil
}

// Limiter exposes the parse limiter for shutdown draining.
func (s *Service) Limiter() *ParseLimiter {
	return s.limiter
}

// LoadFile registers the file at path. The path must be inside the data
// directory; the file is registered under its name without extension.
func (s *Service) LoadFile(ctx context.Context, path string) (LoadedFile, error) {
	if path == "" {
		return LoadedFile{}, fmt.Errorf("%w: filepath", ErrMissingParameter)
	}

	name, err := s.dir.Within(path)
	if err != nil {
		return LoadedFile{}, err
	}

	f := LoadedFile{
		ID:       uuid.New(),
		Name:     name,
		Path:     path,
		LoadedAt: s.now(),
	}
	if err := s.files.Put(f); err != nil {
		return LoadedFile{}, err
	}
	return f, nil
}

// LoadedFiles lists the registered files.
func (s *Service) LoadedFiles() []LoadedFile {
	return s.files.All()
}

func (s *Service) loaded(name string) (LoadedFile, error) {
	if name == "" {
		return LoadedFile{}, fmt.Errorf("%w: filename", ErrMissingParameter)
	}
	f, ok := s.files.Get(name)
	if !ok {
		return LoadedFile{}, fmt.Errorf("%w: %s", ErrFileNotLoaded, name)
	}
	return f, nil
}

// View parses a loaded file with the named record kind ("raw" if empty).
func (s *Service) View(ctx context.Context, name, kind string, hasHeader bool) (ViewResult, error) {
	f, err := s.loaded(name)
	if err != nil {
		return ViewResult{}, err
	}

	if kind == "" {
		kind = "raw"
	}
	rk, ok := Kind(kind)
	if !ok {
		return ViewResult{}, fmt.Errorf("%w: %s", ErrUnknownRecordKind, kind)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return ViewResult{}, err
	}
	defer s.limiter.Release()

	rc, _, err := s.dir.OpenPath(f.Path)
	if err != nil {
		return ViewResult{}, err
	}
	data, n, err := rk.Parse(rc, hasHeader)
	if err != nil {
		return ViewResult{}, fmt.Errorf("view %s as %s: %w", f.Name, rk.Name, err)
	}

	return ViewResult{File: f, Kind: rk.Name, Rows: n, Data: data}, nil
}

// Search queries a loaded file. See SearchRequest for how Column is read.
// An empty Value is rejected with search.ErrEmptyValue, so it never
// matches empty fields.
func (s *Service) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	f, err := s.loaded(req.File)
	if err != nil {
		return SearchResult{}, err
	}
	if req.Value == "" {
		return SearchResult{}, search.ErrEmptyValue
	}

	idx, err := s.index(ctx, f, req.HasHeader)
	if err != nil {
		return SearchResult{}, err
	}

	rows, err := searchColumn(idx, req.Value, req.Column)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{
		File:    f,
		Value:   req.Value,
		Column:  req.Column,
		Columns: idx.Header(),
		Rows:    rows,
	}, nil
}

// searchColumn treats a numeric column as an index, retrying it as a
// header name when the index is rejected.
func searchColumn(idx *search.Index, value, column string) ([][]string, error) {
	if column == "" {
		return idx.Search(value)
	}

	n, convErr := strconv.Atoi(column)
	if convErr != nil {
		return idx.SearchColumnName(value, column)
	}

	rows, err := idx.SearchColumnIndex(value, n)
	if err == nil {
		return rows, nil
	}
	if byName, nameErr := idx.SearchColumnName(value, column); nameErr == nil {
		return byName, nil
	}
	return nil, err
}

func (s *Service) index(ctx context.Context, f LoadedFile, hasHeader bool) (*search.Index, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", f.Path, resource.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", f.Path, err)
	}

	return s.indexes.Get(ctx, indexKey{
		Path:      f.Path,
		Name:      f.Name,
		HasHeader: hasHeader,
		ModTime:   info.ModTime().UnixNano(),
		Size:      info.Size(),
	})
}

func (s *Service) buildIndex(ctx context.Context, key indexKey) (*search.Index, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	open := search.ResolverFunc(func(string) (io.ReadCloser, string, error) {
		return s.dir.OpenPath(key.Path)
	})
	return search.Open(open, key.Name, key.HasHeader)
}

// Broadband looks up broadband coverage for a county, through the cache.
func (s *Service) Broadband(ctx context.Context, state, county string) (census.Broadband, error) {
	loc, err := census.NewLocation(state, county)
	if err != nil {
		return census.Broadband{}, err
	}
	return s.broadband.Broadband(ctx, loc)
}

// CacheReport snapshots cache contents and counters.
func (s *Service) CacheReport() CacheReport {
	peek := s.broadband.Peek()
	entries := make([]BroadbandEntry, 0, len(peek))
	for loc, data := range peek {
		entries = append(entries, BroadbandEntry{Location: loc, Data: data})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Location, entries[j].Location
		if a.State != b.State {
			return a.State < b.State
		}
		return a.County < b.County
	})

	return CacheReport{
		Broadband:      entries,
		BroadbandStats: s.broadband.Stats(),
		IndexStats:     s.indexes.Stats(),
		Parses:         s.limiter.Status(),
		LoadedFiles:    s.files.Len(),
	}
}
