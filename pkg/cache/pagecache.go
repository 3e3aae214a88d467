// Package cache memoizes public page lookups for a bounded time. Entries are
// dropped explicitly when the page, its links or its owner's profile change.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
	"github.com/wadjakorntonsri/linkpage/pkg/ports"
)

var _ ports.PublicPageCache = (*PageCache)(nil)

// loadTimeout bounds a shared load once it no longer follows any one caller.
const loadTimeout = 10 * time.Second

// PageCache is an LRU with a per-entry TTL. Concurrent misses on the same key
// share one load.
type PageCache struct {
	lru   *expirable.LRU[string, *domain.PublicPage]
	group singleflight.Group

	// epoch counts invalidations. A load that started before the latest
	// invalidation returns its result but does not store it.
	mu    sync.Mutex
	epoch uint64
}

func New(size int, ttl time.Duration) *PageCache {
	return &PageCache{lru: expirable.NewLRU[string, *domain.PublicPage](size, nil, ttl)}
}

// Key builds the cache key of a public lookup.
func Key(username, slug string) string {
	return username + "/" + slug
}

// Get returns the cached page for key or calls load. Errors are not cached.
// The load runs detached from ctx so one caller giving up does not fail the
// others waiting on it; ctx still bounds how long this caller waits.
func (c *PageCache) Get(ctx context.Context, key string, load func(ctx context.Context) (*domain.PublicPage, error)) (*domain.PublicPage, error) {
	if page, ok := c.lru.Get(key); ok {
		return page, nil
	}

	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	flight := strconv.FormatUint(epoch, 10) + "|" + key
	ch := c.group.DoChan(flight, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		page, err := load(lctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.epoch == epoch {
			c.lru.Add(key, page)
		}
		c.mu.Unlock()
		return page, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.PublicPage), nil
	}
}

// InvalidatePage drops every entry that renders pageID.
func (c *PageCache) InvalidatePage(pageID string) {
	c.removeWhere(func(p *domain.PublicPage) bool { return p.Page.ID == pageID })
}

// InvalidateOwner drops every entry owned by ownerID.
func (c *PageCache) InvalidateOwner(ownerID string) {
	c.removeWhere(func(p *domain.PublicPage) bool { return p.Page.OwnerID == ownerID })
}

func (c *PageCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.lru.Purge()
}

func (c *PageCache) Len() int {
	return c.lru.Len()
}

func (c *PageCache) removeWhere(match func(*domain.PublicPage) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	for _, key := range c.lru.Keys() {
		if page, ok := c.lru.Peek(key); ok && match(page) {
			c.lru.Remove(key)
		}
	}
}
