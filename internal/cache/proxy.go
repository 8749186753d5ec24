// Package cache memoizes an expensive keyed lookup in a bounded LRU cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNilLookup   = errors.New("cache: nil lookup function")
	ErrInvalidSize = errors.New("cache: max entries must be positive")
)

// LookupFunc computes the value for key. Errors are returned to the caller
// of Get and never cached.
type LookupFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Entries    int    `json:"entries"`
	MaxEntries int    `json:"maxEntries"`
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	Evictions  uint64 `json:"evictions"`
}

// Proxy wraps a LookupFunc with a least-recently-used cache holding at most
// maxEntries values. Concurrent misses on the same key share one lookup.
type Proxy[K comparable, V any] struct {
	lookup     LookupFunc[K, V]
	maxEntries int
	group      singleflight.Group

	mu        sync.Mutex
	lru       *lru.Cache
	entries   map[K]V // mirrors lru so Snapshot leaves recency alone
	hits      uint64
	misses    uint64
	evictions uint64

	// flights names the in-progress lookup for each key.
	flights    map[K]string
	nextFlight uint64
}

// New returns a Proxy in front of lookup.
func New[K comparable, V any](lookup LookupFunc[K, V], maxEntries int) (*Proxy[K, V], error) {
	if lookup == nil {
		return nil, ErrNilLookup
	}
	if maxEntries <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, maxEntries)
	}

	p := &Proxy[K, V]{
		lookup:     lookup,
		maxEntries: maxEntries,
		lru:        lru.New(maxEntries),
		entries:    make(map[K]V, maxEntries),
		flights:    make(map[K]string),
	}
	p.lru.OnEvicted = func(key lru.Key, _ any) {
		delete(p.entries, key.(K))
		p.evictions++
	}
	return p, nil
}

// result boxes V so a nil interface value survives singleflight's any.
type result[V any] struct{ v V }

// Get returns the cached value for key, calling the lookup on a miss.
// A hit marks key as most recently used. When several goroutines miss on
// the same key, one lookup runs detached from any single caller's
// cancellation; a caller whose ctx ends stops waiting with ctx.Err()
// while the others still receive the result.
func (p *Proxy[K, V]) Get(ctx context.Context, key K) (V, error) {
	if v, ok := p.load(key, true); ok {
		return v, nil
	}

	id := p.beginFlight(key)
	lookupCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan(id, func() (any, error) {
		defer p.endFlight(key, id)

		// A flight that finished between load and DoChan has already stored it.
		if v, ok := p.load(key, false); ok {
			return result[V]{v}, nil
		}

		v, err := p.lookup(lookupCtx, key)
		if err != nil {
			return nil, err
		}
		p.store(key, v)
		return result[V]{v}, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(result[V]).v, nil
	}
}

// beginFlight returns the flight id for key, allocating one if no lookup
// for key is in progress.
func (p *Proxy[K, V]) beginFlight(key K) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id, ok := p.flights[key]; ok {
		return id
	}
	p.nextFlight++
	id := strconv.FormatUint(p.nextFlight, 10)
	p.flights[key] = id
	return id
}

func (p *Proxy[K, V]) endFlight(key K, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.flights[key] == id {
		delete(p.flights, key)
	}
}

func (p *Proxy[K, V]) load(key K, count bool) (V, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.lru.Get(key)
	if count {
		if ok {
			p.hits++
		} else {
			p.misses++
		}
	}
	if !ok {
		var zero V
		return zero, false
	}
	return v.(result[V]).v, true
}

func (p *Proxy[K, V]) store(key K, v V) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lru.Add(key, result[V]{v})
	p.entries[key] = v
}

// Snapshot copies the current contents without touching recency.
func (p *Proxy[K, V]) Snapshot() map[K]V {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[K]V, len(p.entries))
	for k, v := range p.entries {
		out[k] = v
	}
	return out
}

// Len returns the number of cached entries.
func (p *Proxy[K, V]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lru.Len()
}

func (p *Proxy[K, V]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Entries:    p.lru.Len(),
		MaxEntries: p.maxEntries,
		Hits:       p.hits,
		Misses:     p.misses,
		Evictions:  p.evictions,
	}
}
