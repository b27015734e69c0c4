package diagnosis

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultCacheTTL is how long detection results stay cached for an image
// fingerprint.
const DefaultCacheTTL = time.Hour

// ResponseCache memoizes detection results keyed by image fingerprint.
// Entries expire after the configured TTL; there is no size cap. Writes for
// the same key are last-write-wins.
type ResponseCache struct {
	store *cache.Cache
}

// NewResponseCache creates a cache with the given TTL. A non-positive TTL
// falls back to the default.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResponseCache{
		store: cache.New(ttl, 2*ttl),
	}
}

// Get returns the cached result for a fingerprint, if present and fresh.
func (rc *ResponseCache) Get(fingerprint string) (*Result, bool) {
	v, found := rc.store.Get(fingerprint)
	if !found {
		return nil, false
	}
	result, ok := v.(*Result)
	if !ok {
		return nil, false
	}
	return result, true
}

// Put stores a result under the image fingerprint with the default TTL.
func (rc *ResponseCache) Put(fingerprint string, result *Result) {
	rc.store.Set(fingerprint, result, cache.DefaultExpiration)
}

// Len returns the number of non-expired entries.
func (rc *ResponseCache) Len() int {
	return rc.store.ItemCount()
}

// Flush removes all entries.
func (rc *ResponseCache) Flush() {
	rc.store.Flush()
}
