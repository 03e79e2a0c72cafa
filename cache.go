package gacha

import (
	"bytes"
	"hash/fnv"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// InMemoryCache is the default Cache: sharded maps with lazy expiry.
type InMemoryCache struct {
	shards    []*cacheShard
	numShards int
}

type cacheShard struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
}

// NewInMemoryCache creates an empty sharded in-memory cache.
func NewInMemoryCache() *InMemoryCache {
	numShards := 16
	shards := make([]*cacheShard, numShards)
	for i := range shards {
		shards[i] = &cacheShard{
			store: make(map[string]*CacheEntry),
		}
	}
	return &InMemoryCache{
		shards:    shards,
		numShards: numShards,
	}
}

func (c *InMemoryCache) getShard(key string) *cacheShard {
	hash := fnv.New32a()
	hash.Write([]byte(key))
	return c.shards[hash.Sum32()%uint32(c.numShards)]
}

// Get returns the live entry for key. An expired entry is deleted and
// reported as absent.
func (c *InMemoryCache) Get(key string) (*CacheEntry, bool) {
	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	entry, exists := shard.store[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		delete(shard.store, key)
		return nil, false
	}

	return entry, true
}

// Set stores entry under key, unconditionally replacing any previous entry.
func (c *InMemoryCache) Set(key string, entry *CacheEntry, ttl time.Duration) {
	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	entry.ExpiresAt = time.Now().Add(ttl)
	shard.store[key] = entry
}

// Delete removes a single entry.
func (c *InMemoryCache) Delete(key string) {
	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	delete(shard.store, key)
}

// DeleteMatching removes every entry whose key contains pattern.
func (c *InMemoryCache) DeleteMatching(pattern string) {
	for _, shard := range c.shards {
		shard.mu.Lock()
		for key := range shard.store {
			if strings.Contains(key, pattern) {
				delete(shard.store, key)
			}
		}
		shard.mu.Unlock()
	}
}

// Clear removes all entries.
func (c *InMemoryCache) Clear() {
	for _, shard := range c.shards {
		shard.mu.Lock()
		shard.store = make(map[string]*CacheEntry)
		shard.mu.Unlock()
	}
}

// Len reports the number of stored entries, expired ones included.
func (c *InMemoryCache) Len() int {
	total := 0
	for _, shard := range c.shards {
		shard.mu.RLock()
		total += len(shard.store)
		shard.mu.RUnlock()
	}
	return total
}

// Response synthesizes a fresh *http.Response from the buffered entry. Each
// call returns an independently readable body so joined and cached readers
// never share a reader.
func (e *CacheEntry) Response() *http.Response {
	return &http.Response{
		StatusCode: e.StatusCode,
		Header:     e.Header.Clone(),
		Body:       io.NopCloser(bytes.NewReader(e.Body)),
	}
}

// newCacheEntry buffers resp into a CacheEntry and restores resp.Body so the
// original response stays readable downstream.
func newCacheEntry(resp *http.Response) (*CacheEntry, error) {
	const maxCacheSize = 10 * 1024 * 1024

	var body []byte
	if resp.Body != nil {
		var err error
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxCacheSize))
		if err != nil && err != io.EOF {
			_ = resp.Body.Close()
			return nil, err
		}
		_ = resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}

	return &CacheEntry{
		Body:       body,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
	}, nil
}

// DefaultCacheCondition caches idempotent reads only.
func DefaultCacheCondition(req *http.Request) bool {
	// A verb-less request is a GET.
	return req.Method == "" || req.Method == http.MethodGet
}
