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

// Package databasemock provides testify mocks for the database layer.
package databasemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/opsdeck/flowcore/internal/system/database/model"
)

// DBClientInterfaceMock is a mock implementation of client.DBClientInterface.
type DBClientInterfaceMock struct {
	mock.Mock
}

// Query mocks the Query method.
func (m *DBClientInterfaceMock) Query(query model.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
	ret := m.Called(append([]interface{}{query}, args...)...)
	var rows []map[string]interface{}
	if ret.Get(0) != nil {
		rows = ret.Get(0).([]map[string]interface{})
	}
	return rows, ret.Error(1)
}

// Execute mocks the Execute method.
func (m *DBClientInterfaceMock) Execute(query model.DBQuery, args ...interface{}) (int64, error) {
	ret := m.Called(append([]interface{}{query}, args...)...)
	return ret.Get(0).(int64), ret.Error(1)
}

// QueryContext mocks the QueryContext method. The context is not recorded.
func (m *DBClientInterfaceMock) QueryContext(_ context.Context, query model.DBQuery,
	args ...interface{}) ([]map[string]interface{}, error) {
	ret := m.Called(append([]interface{}{query}, args...)...)
	var rows []map[string]interface{}
	if ret.Get(0) != nil {
		rows = ret.Get(0).([]map[string]interface{})
	}
	return rows, ret.Error(1)
}

// ExecuteContext mocks the ExecuteContext method. The context is not recorded.
func (m *DBClientInterfaceMock) ExecuteContext(_ context.Context, query model.DBQuery,
	args ...interface{}) (int64, error) {
	ret := m.Called(append([]interface{}{query}, args...)...)
	return ret.Get(0).(int64), ret.Error(1)
}

// BeginTx mocks the BeginTx method.
func (m *DBClientInterfaceMock) BeginTx() (model.TxInterface, error) {
	ret := m.Called()
	var tx model.TxInterface
	if ret.Get(0) != nil {
		tx = ret.Get(0).(model.TxInterface)
	}
	return tx, ret.Error(1)
}

// GetDBType mocks the GetDBType method.
func (m *DBClientInterfaceMock) GetDBType() string {
	ret := m.Called()
	return ret.String(0)
}

// Ping mocks the Ping method.
func (m *DBClientInterfaceMock) Ping() error {
	ret := m.Called()
	return ret.Error(0)
}

// Close mocks the Close method.
func (m *DBClientInterfaceMock) Close() error {
	ret := m.Called()
	return ret.Error(0)
}
