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

// Package cache provides in-memory caches with size bounded LRU eviction and entry expiry.
package cache

// CacheInterface defines the operations of a cache holding values of type T.
type CacheInterface[T any] interface {
	Set(key string, value T)
	Get(key string) (T, bool)
	Delete(key string)
	Clear()
	IsEnabled() bool
	GetName() string
	GetStats() CacheStat
}

// CacheStat reports the usage of a cache.
type CacheStat struct {
	Enabled    bool    `json:"enabled"`
	Size       int     `json:"size"`
	MaxSize    int     `json:"maxSize"`
	HitCount   int64   `json:"hitCount"`
	MissCount  int64   `json:"missCount"`
	HitRate    float64 `json:"hitRate"`
	EvictCount int64   `json:"evictCount"`
}
