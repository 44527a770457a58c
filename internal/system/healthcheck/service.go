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

// Package healthcheck provides liveness and readiness checks for the server.
package healthcheck

import (
	dbmodel "github.com/opsdeck/flowcore/internal/system/database/model"
	"github.com/opsdeck/flowcore/internal/system/database/provider"
	"github.com/opsdeck/flowcore/internal/system/log"
)

var queryWorkflowDBTable = dbmodel.DBQuery{
	ID:    "HLC-00001",
	Query: "SELECT WORKFLOW_ID FROM WORKFLOW LIMIT 1",
}

var queryDataDBPing = dbmodel.DBQuery{
	ID:    "HLC-00002",
	Query: "SELECT 1",
}

// HealthCheckServiceInterface defines the interface for the health check service.
type HealthCheckServiceInterface interface {
	CheckReadiness() ServerStatus
}

// healthCheckService is the default implementation of the HealthCheckServiceInterface.
type healthCheckService struct {
	dbProvider provider.DBProviderInterface
	checkData  bool
}

// newHealthCheckService creates a health check service. The data source is only checked when configured.
func newHealthCheckService(dbProvider provider.DBProviderInterface, checkData bool) HealthCheckServiceInterface {
	return &healthCheckService{
		dbProvider: dbProvider,
		checkData:  checkData,
	}
}

// CheckReadiness checks the readiness of the server and its dependencies.
func (hcs *healthCheckService) CheckReadiness() ServerStatus {
	statuses := []ServiceStatus{
		{
			ServiceName: "WorkflowDB",
			Status:      hcs.checkDatabaseStatus(provider.DataSourceWorkflow, queryWorkflowDBTable),
		},
	}
	if hcs.checkData {
		statuses = append(statuses, ServiceStatus{
			ServiceName: "DataDB",
			Status:      hcs.checkDatabaseStatus(provider.DataSourceData, queryDataDBPing),
		})
	}

	status := StatusUp
	for _, s := range statuses {
		if s.Status == StatusDown {
			status = StatusDown
		}
	}
	return ServerStatus{
		Status:        status,
		ServiceStatus: statuses,
	}
}

// checkDatabaseStatus checks the status of the specified database with the specified query.
func (hcs *healthCheckService) checkDatabaseStatus(dbName string, query dbmodel.DBQuery) Status {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckService"))

	dbClient, err := hcs.dbProvider.GetDBClient(dbName)
	if err != nil {
		logger.Error("Failed to get database client", log.String("dataSource", dbName), log.Error(err))
		return StatusDown
	}

	if _, err = dbClient.Query(query); err != nil {
		logger.Error("Failed to execute query", log.String("dataSource", dbName), log.Error(err))
		return StatusDown
	}
	return StatusUp
}
