package skyqa

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash"
	"golang.org/x/sync/singleflight"
)

// listTimeout bounds a shared listing, which no longer follows any single caller's context.
const listTimeout = 30 * time.Second

// NameCache memoizes the name list of a NameLister.
//
// Get fills the cache on first use and Invalidate clears it. Concurrent Get calls share one listing
// call. An Invalidate that lands while a listing is in flight wins: the in-flight result is handed
// to the callers that asked for it but is not stored, so the next Get lists again.
type NameCache struct {
	lister NameLister

	mu          sync.Mutex
	names       []string
	valid       bool
	generation  uint64
	fingerprint uint64

	group singleflight.Group
}

// NewNameCache creates an empty cache in front of lister.
func NewNameCache(lister NameLister) *NameCache {
	return &NameCache{lister: lister}
}

// Get returns the cached names, listing them from the backing lister when the cache is empty.
// A cancelled ctx only abandons the wait; a listing in flight completes for the other callers.
func (c *NameCache) Get(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	if c.valid {
		names := slices.Clone(c.names)
		c.mu.Unlock()
		return names, nil
	}
	generation := c.generation
	c.mu.Unlock()

	// The listing is shared, so one caller giving up must not fail the others. It runs detached
	// from ctx and each caller waits on its own ctx.
	listCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(strconv.FormatUint(generation, 10), func() (any, error) {
		// A flight of the same generation may have completed since the check above.
		c.mu.Lock()
		if c.valid {
			names := c.names
			c.mu.Unlock()
			return names, nil
		}
		c.mu.Unlock()

		ctx, cancel := context.WithTimeout(listCtx, listTimeout)
		defer cancel()
		names, err := c.lister.ListNames(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation == generation {
			c.names = names
			c.valid = true
			c.fingerprint = fingerprint(names)
		}
		return names, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	names, _ := res.Val.([]string)
	return slices.Clone(names), nil
}

// Invalidate drops the cached names. The next Get lists them again.
func (c *NameCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.names = nil
	c.valid = false
	c.generation++
}

// Refresh invalidates the cache and lists the names again. It reports whether the new list
// differs from the one cached before, which is always the case when nothing was cached.
func (c *NameCache) Refresh(ctx context.Context) ([]string, bool, error) {
	c.mu.Lock()
	hadNames, previous := c.valid, c.fingerprint
	c.mu.Unlock()

	c.Invalidate()
	names, err := c.Get(ctx)
	if err != nil {
		return nil, false, err
	}
	return names, !hadNames || fingerprint(names) != previous, nil
}

// ListNames implements NameLister, so a cache can stand wherever a lister is expected.
func (c *NameCache) ListNames(ctx context.Context) ([]string, error) {
	return c.Get(ctx)
}

func fingerprint(names []string) uint64 {
	return xxhash.Sum64String(strings.Join(names, "\x00"))
}
