package core

import (
	"github.com/JonMunkholm/csvsearch/internal/cache"
	"github.com/JonMunkholm/csvsearch/internal/census"
)

// ViewResult is a parsed file rendered through a record kind.
type ViewResult struct {
	File LoadedFile `json:"file"`
	Kind string     `json:"kind"`
	Rows int        `json:"rows"`
	Data any        `json:"data"`
}

// SearchRequest selects rows of a loaded file. An empty Column searches
// every field; a numeric Column is tried as an index before a name.
type SearchRequest struct {
	File      string
	HasHeader bool
	Value     string
	Column    string
}

// SearchResult holds the matching rows. Columns is the file's header row
// and is empty when the file was searched without one.
type SearchResult struct {
	File    LoadedFile `json:"file"`
	Value   string     `json:"searchKey"`
	Column  string     `json:"columnID,omitempty"`
	Columns []string   `json:"columns,omitempty"`
	Rows    [][]string `json:"data"`
}

// BroadbandEntry is one cached census result.
type BroadbandEntry struct {
	Location census.Location  `json:"location"`
	Data     census.Broadband `json:"data"`
}

// CacheReport summarizes the service's caches for diagnostics.
type CacheReport struct {
	Broadband      []BroadbandEntry   `json:"broadband"`
	BroadbandStats cache.Stats        `json:"broadbandStats"`
	IndexStats     cache.Stats        `json:"indexStats"`
	Parses         ParseLimiterStatus `json:"parses"`
	LoadedFiles    int                `json:"loadedFiles"`
}
