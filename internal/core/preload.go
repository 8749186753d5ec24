package core

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrManifest classifies failures reading a preload manifest.
var ErrManifest = errors.New("invalid preload manifest")

// PreloadManifest lists files to load at startup:
//
//	files:
//	  - data/resources/stars/ten-star.csv
//	  - data/resources/census/income.csv
type PreloadManifest struct {
	Files []string `yaml:"files"`
}

func ReadPreloadManifest(path string) (PreloadManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PreloadManifest{}, fmt.Errorf("%w: %v", ErrManifest, err)
	}

	var m PreloadManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return PreloadManifest{}, fmt.Errorf("%w: %s: %v", ErrManifest, path, err)
	}
	return m, nil
}

// Preload loads every file in m. Files that fail are skipped and their
// errors joined; the files that loaded are returned either way.
func (s *Service) Preload(ctx context.Context, m PreloadManifest) ([]LoadedFile, error) {
	var loaded []LoadedFile
	var errs []error
	for _, path := range m.Files {
		f, err := s.LoadFile(ctx, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("preload %s: %w", path, err))
			continue
		}
		loaded = append(loaded, f)
	}
	return loaded, errors.Join(errs...)
}
