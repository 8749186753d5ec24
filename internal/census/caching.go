package census

import (
	"context"

	"github.com/JonMunkholm/csvsearch/internal/cache"
)

// CachingSource memoizes another Source in a bounded LRU cache. Failed
// lookups are not cached.
type CachingSource struct {
	proxy *cache.Proxy[Location, Broadband]
}

func NewCachingSource(src Source, maxEntries int) (*CachingSource, error) {
	if src == nil {
		return nil, cache.ErrNilLookup
	}
	p, err := cache.New[Location, Broadband](src.Broadband, maxEntries)
	if err != nil {
		return nil, err
	}
	return &CachingSource{proxy: p}, nil
}

func (c *CachingSource) Broadband(ctx context.Context, loc Location) (Broadband, error) {
	return c.proxy.Get(ctx, loc)
}

// Peek returns a copy of the cached entries.
func (c *CachingSource) Peek() map[Location]Broadband {
	return c.proxy.Snapshot()
}

func (c *CachingSource) Stats() cache.Stats {
	return c.proxy.Stats()
}
