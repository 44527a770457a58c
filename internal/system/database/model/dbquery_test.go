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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type DBQueryTestSuite struct {
	suite.Suite
}

func TestDBQuerySuite(t *testing.T) {
	suite.Run(t, new(DBQueryTestSuite))
}

func (suite *DBQueryTestSuite) TestGetQueryDialects() {
	query := DBQuery{
		ID:            "WFQ-TEST-01",
		Query:         "SELECT 1",
		PostgresQuery: "SELECT 1::int",
		SQLiteQuery:   "SELECT 1 AS one",
	}

	assert.Equal(suite.T(), "WFQ-TEST-01", query.GetID())
	assert.Equal(suite.T(), "SELECT 1::int", query.GetQuery(DBTypePostgres))
	assert.Equal(suite.T(), "SELECT 1 AS one", query.GetQuery(DBTypeSQLite))
	assert.Equal(suite.T(), "SELECT 1", query.GetQuery("mock"))
}

func (suite *DBQueryTestSuite) TestGetQueryFallsBackToDefault() {
	query := DBQuery{ID: "WFQ-TEST-02", Query: "SELECT 2"}

	assert.Equal(suite.T(), "SELECT 2", query.GetQuery(DBTypePostgres))
	assert.Equal(suite.T(), "SELECT 2", query.GetQuery(DBTypeSQLite))
}
