package store

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/lumensyntax-org/truthgit/internal/object"
)

// Cached wraps a Store with a read-through in-memory cache. Objects are
// immutable once published, so cached entries never go stale; the TTL only
// bounds memory.
type Cached struct {
	store *Store
	cache *gocache.Cache
}

// NewCached creates a caching layer over s.
func NewCached(s *Store, ttl, cleanupInterval time.Duration) *Cached {
	return &Cached{
		store: s,
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Put stores the object and primes the cache.
func (c *Cached) Put(o object.TruthObject) (string, error) {
	h, err := c.store.Put(o)
	if err != nil {
		return "", err
	}
	c.cache.Set(cacheKey(o.ObjectType(), h), o, gocache.DefaultExpiration)
	return h, nil
}

// Update rewrites a stored record and refreshes the cache entry.
func (c *Cached) Update(o object.TruthObject) error {
	if err := c.store.Update(o); err != nil {
		return err
	}
	c.cache.Set(cacheKey(o.ObjectType(), o.ObjectHash()), o, gocache.DefaultExpiration)
	return nil
}

// Load returns the cached object if present, otherwise reads through to the
// store (which verifies integrity) and caches the result.
func (c *Cached) Load(t object.Type, hash string) (object.TruthObject, error) {
	if cached, found := c.cache.Get(cacheKey(t, hash)); found {
		return cached.(object.TruthObject), nil
	}
	obj, err := c.store.Load(t, hash)
	if err != nil {
		return nil, err
	}
	c.cache.Set(cacheKey(t, hash), obj, gocache.DefaultExpiration)
	return obj, nil
}

// Exists reports record presence, bypassing the cache.
func (c *Cached) Exists(t object.Type, hash string) bool {
	if _, found := c.cache.Get(cacheKey(t, hash)); found {
		return true
	}
	return c.store.Exists(t, hash)
}

// IterObjects delegates to the underlying store; traversal always reflects
// disk, not the cache.
func (c *Cached) IterObjects(t object.Type, fn func(object.TruthObject) error) error {
	return c.store.IterObjects(t, fn)
}

// CountObjects delegates to the underlying store.
func (c *Cached) CountObjects() (map[object.Type]int, error) {
	return c.store.CountObjects()
}

// Store returns the underlying uncached store.
func (c *Cached) Store() *Store {
	return c.store
}

func cacheKey(t object.Type, hash string) string {
	return string(t) + ":" + hash
}
