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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type InMemoryCacheTestSuite struct {
	suite.Suite
	now   time.Time
	cache *InMemoryCache[string]
}

func TestInMemoryCacheSuite(t *testing.T) {
	suite.Run(t, new(InMemoryCacheTestSuite))
}

func (suite *InMemoryCacheTestSuite) SetupTest() {
	suite.now = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
	suite.cache = NewInMemoryCache[string]("test", true, 2, time.Minute)
	suite.cache.now = func() time.Time { return suite.now }
}

func (suite *InMemoryCacheTestSuite) TestSetAndGet() {
	suite.cache.Set("a", "alpha")

	value, ok := suite.cache.Get("a")
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "alpha", value)

	_, ok = suite.cache.Get("b")
	assert.False(suite.T(), ok)

	stats := suite.cache.GetStats()
	assert.Equal(suite.T(), int64(1), stats.HitCount)
	assert.Equal(suite.T(), int64(1), stats.MissCount)
	assert.InDelta(suite.T(), 0.5, stats.HitRate, 0.0001)
}

func (suite *InMemoryCacheTestSuite) TestEvictsLeastRecentlyUsed() {
	suite.cache.Set("a", "alpha")
	suite.cache.Set("b", "beta")
	_, _ = suite.cache.Get("a")
	suite.cache.Set("c", "gamma")

	_, ok := suite.cache.Get("b")
	assert.False(suite.T(), ok)
	_, ok = suite.cache.Get("a")
	assert.True(suite.T(), ok)
	_, ok = suite.cache.Get("c")
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), int64(1), suite.cache.GetStats().EvictCount)
	assert.Equal(suite.T(), 2, suite.cache.GetStats().Size)
}

func (suite *InMemoryCacheTestSuite) TestEntriesExpire() {
	suite.cache.Set("a", "alpha")
	suite.now = suite.now.Add(time.Minute)

	_, ok := suite.cache.Get("a")
	assert.False(suite.T(), ok)
	assert.Zero(suite.T(), suite.cache.GetStats().Size)
}

func (suite *InMemoryCacheTestSuite) TestSetRefreshesExistingEntry() {
	suite.cache.Set("a", "alpha")
	suite.now = suite.now.Add(30 * time.Second)
	suite.cache.Set("a", "alpha-2")
	suite.now = suite.now.Add(45 * time.Second)

	value, ok := suite.cache.Get("a")
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "alpha-2", value)
}

func (suite *InMemoryCacheTestSuite) TestDeleteAndClear() {
	suite.cache.Set("a", "alpha")
	suite.cache.Set("b", "beta")

	suite.cache.Delete("a")
	_, ok := suite.cache.Get("a")
	assert.False(suite.T(), ok)

	suite.cache.Clear()
	_, ok = suite.cache.Get("b")
	assert.False(suite.T(), ok)
}

func (suite *InMemoryCacheTestSuite) TestDisabledCache() {
	disabled := NewInMemoryCache[string]("off", false, 2, time.Minute)
	disabled.Set("a", "alpha")

	_, ok := disabled.Get("a")
	assert.False(suite.T(), ok)
	assert.False(suite.T(), disabled.IsEnabled())
	assert.Equal(suite.T(), "off", disabled.GetName())
	assert.Equal(suite.T(), CacheStat{}, disabled.GetStats())
}
