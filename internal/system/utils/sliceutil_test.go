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

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SliceUtilTestSuite struct {
	suite.Suite
}

func TestSliceUtilSuite(t *testing.T) {
	suite.Run(t, new(SliceUtilTestSuite))
}

func (suite *SliceUtilTestSuite) TestDeepCopyMapIsIndependent() {
	src := map[string]any{
		"url":     "https://example.com",
		"headers": map[string]any{"X-Trace": "1"},
		"items":   []any{1, map[string]any{"k": "v"}},
		"tags":    []string{"a"},
	}

	dst := DeepCopyMap(src)
	assert.Equal(suite.T(), src, dst)

	dst["headers"].(map[string]any)["X-Trace"] = "2"
	dst["items"].([]any)[1].(map[string]any)["k"] = "changed"
	dst["tags"].([]string)[0] = "b"

	assert.Equal(suite.T(), "1", src["headers"].(map[string]any)["X-Trace"])
	assert.Equal(suite.T(), "v", src["items"].([]any)[1].(map[string]any)["k"])
	assert.Equal(suite.T(), "a", src["tags"].([]string)[0])
}

func (suite *SliceUtilTestSuite) TestDeepCopyMapNil() {
	assert.Nil(suite.T(), DeepCopyMap(nil))
}
