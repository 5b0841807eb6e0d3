// Package urlcache caches signed read URLs so listing pages do not re-sign
// every object on every request. Entries carry an absolute expiry; a small
// safety margin guarantees a returned URL is never handed out at the edge of
// its validity window.
package urlcache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// readMargin: an entry this close to expiry is treated as a miss.
	readMargin = time.Second
	// writeMargin: stored expiry is shortened by this much relative to the
	// actual validity of the signed URL.
	writeMargin = 2 * time.Second
)

type entry struct {
	url       string
	expiresAt time.Time
}

// Cache is a bounded LRU of signed URLs keyed by object key.
type Cache struct {
	lru *lru.Cache[string, entry]
	now func() time.Time
}

// New creates a cache holding at most size entries. now may be nil, in which
// case time.Now is used; tests inject a fake clock.
func New(size int, now func() time.Time) (*Cache, error) {
	if now == nil {
		now = time.Now
	}
	l, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, now: now}, nil
}

// Get returns the cached URL for key, or ok=false when absent or within the
// safety margin of expiry.
func (c *Cache) Get(key string) (string, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return "", false
	}
	if !e.expiresAt.After(c.now().Add(readMargin)) {
		c.lru.Remove(key)
		return "", false
	}
	return e.url, true
}

// Put stores a URL that is valid for validFor from now. The recorded expiry
// is shortened by the write margin so Get never returns a URL past its
// actual validity.
func (c *Cache) Put(key, url string, validFor time.Duration) {
	c.lru.Add(key, entry{
		url:       url,
		expiresAt: c.now().Add(validFor - writeMargin),
	})
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
