/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/opsdeck/flowcore/internal/system/log"
)

// inMemoryCacheEntry is a cached value with its position in the access order.
type inMemoryCacheEntry[T any] struct {
	key         string
	value       T
	expiryTime  time.Time
	listElement *list.Element
}

// InMemoryCache is a CacheInterface keeping at most size entries. The least
// recently used entry is evicted first and entries expire after ttl.
type InMemoryCache[T any] struct {
	enabled     bool
	name        string
	cache       map[string]*inMemoryCacheEntry[T]
	accessOrder *list.List
	mu          sync.Mutex
	size        int
	ttl         time.Duration
	hitCount    int64
	missCount   int64
	evictCount  int64
	now         func() time.Time
}

var _ CacheInterface[any] = (*InMemoryCache[any])(nil)

// NewInMemoryCache creates a cache. A disabled cache stores nothing and reports every lookup as a miss.
func NewInMemoryCache[T any](name string, enabled bool, size int, ttl time.Duration) *InMemoryCache[T] {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "InMemoryCache"),
		log.String("name", name))

	if !enabled {
		logger.Debug("In-memory cache is disabled")
		return &InMemoryCache[T]{name: name, now: time.Now}
	}

	logger.Debug("Initializing in-memory cache", log.Int("size", size), log.Duration("ttl", ttl))
	return &InMemoryCache[T]{
		enabled:     true,
		name:        name,
		cache:       make(map[string]*inMemoryCacheEntry[T]),
		accessOrder: list.New(),
		size:        size,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Set adds or replaces an entry.
func (c *InMemoryCache[T]) Set(key string, value T) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiryTime := c.now().Add(c.ttl)
	if existing, ok := c.cache[key]; ok {
		existing.value = value
		existing.expiryTime = expiryTime
		c.accessOrder.MoveToFront(existing.listElement)
		return
	}

	if c.size > 0 && len(c.cache) >= c.size {
		c.evictOldest()
	}
	entry := &inMemoryCacheEntry[T]{key: key, value: value, expiryTime: expiryTime}
	entry.listElement = c.accessOrder.PushFront(entry)
	c.cache[key] = entry
}

// Get returns a live entry and marks it as recently used.
func (c *InMemoryCache[T]) Get(key string) (T, bool) {
	var zero T
	if !c.enabled {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[key]
	if !ok {
		c.missCount++
		return zero, false
	}
	if !c.now().Before(entry.expiryTime) {
		c.remove(entry)
		c.missCount++
		return zero, false
	}

	c.accessOrder.MoveToFront(entry.listElement)
	c.hitCount++
	return entry.value, true
}

// Delete removes an entry.
func (c *InMemoryCache[T]) Delete(key string) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.cache[key]; ok {
		c.remove(entry)
	}
}

// Clear removes every entry.
func (c *InMemoryCache[T]) Clear() {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*inMemoryCacheEntry[T])
	c.accessOrder.Init()
}

// IsEnabled reports whether the cache stores entries.
func (c *InMemoryCache[T]) IsEnabled() bool {
	return c.enabled
}

// GetName returns the name of the cache.
func (c *InMemoryCache[T]) GetName() string {
	return c.name
}

// GetStats returns the usage of the cache.
func (c *InMemoryCache[T]) GetStats() CacheStat {
	if !c.enabled {
		return CacheStat{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stat := CacheStat{
		Enabled:    true,
		Size:       len(c.cache),
		MaxSize:    c.size,
		HitCount:   c.hitCount,
		MissCount:  c.missCount,
		EvictCount: c.evictCount,
	}
	if total := c.hitCount + c.missCount; total > 0 {
		stat.HitRate = float64(c.hitCount) / float64(total)
	}
	return stat
}

// evictOldest removes the least recently used entry. Callers hold the lock.
func (c *InMemoryCache[T]) evictOldest() {
	oldest := c.accessOrder.Back()
	if oldest == nil {
		return
	}
	c.remove(oldest.Value.(*inMemoryCacheEntry[T]))
	c.evictCount++
}

func (c *InMemoryCache[T]) remove(entry *inMemoryCacheEntry[T]) {
	c.accessOrder.Remove(entry.listElement)
	delete(c.cache, entry.key)
}
