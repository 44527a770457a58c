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

package healthcheck

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/opsdeck/flowcore/internal/system/database/provider"
	"github.com/opsdeck/flowcore/tests/mocks/databasemock"
)

type HealthCheckTestSuite struct {
	suite.Suite
	dbProvider *databasemock.DBProviderInterfaceMock
	dbClient   *databasemock.DBClientInterfaceMock
}

func TestHealthCheckSuite(t *testing.T) {
	suite.Run(t, new(HealthCheckTestSuite))
}

func (suite *HealthCheckTestSuite) SetupTest() {
	suite.dbProvider = &databasemock.DBProviderInterfaceMock{}
	suite.dbClient = &databasemock.DBClientInterfaceMock{}
}

func (suite *HealthCheckTestSuite) TestReadinessUp() {
	suite.dbProvider.On("GetDBClient", provider.DataSourceWorkflow).Return(suite.dbClient, nil)
	suite.dbClient.On("Query", queryWorkflowDBTable).Return([]map[string]interface{}{}, nil)

	status := newHealthCheckService(suite.dbProvider, false).CheckReadiness()

	assert.Equal(suite.T(), StatusUp, status.Status)
	assert.Len(suite.T(), status.ServiceStatus, 1)
	suite.dbClient.AssertExpectations(suite.T())
}

func (suite *HealthCheckTestSuite) TestReadinessDownWhenDataSourceFails() {
	suite.dbProvider.On("GetDBClient", provider.DataSourceWorkflow).Return(suite.dbClient, nil)
	suite.dbProvider.On("GetDBClient", provider.DataSourceData).Return(nil, errors.New("not configured"))
	suite.dbClient.On("Query", mock.Anything).Return([]map[string]interface{}{}, nil)

	status := newHealthCheckService(suite.dbProvider, true).CheckReadiness()

	assert.Equal(suite.T(), StatusDown, status.Status)
	assert.Equal(suite.T(), StatusUp, status.ServiceStatus[0].Status)
	assert.Equal(suite.T(), StatusDown, status.ServiceStatus[1].Status)
}

func (suite *HealthCheckTestSuite) TestReadinessEndpoints() {
	suite.dbProvider.On("GetDBClient", provider.DataSourceWorkflow).Return(suite.dbClient, nil)
	suite.dbClient.On("Query", queryWorkflowDBTable).Return(nil, errors.New("no such table"))

	mux := http.NewServeMux()
	Initialize(mux, suite.dbProvider, false)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/liveness", nil))
	assert.Equal(suite.T(), http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))
	assert.Equal(suite.T(), http.StatusServiceUnavailable, rr.Code)

	var body ServerStatus
	assert.NoError(suite.T(), json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(suite.T(), StatusDown, body.Status)
	assert.Equal(suite.T(), "WorkflowDB", body.ServiceStatus[0].ServiceName)
}
