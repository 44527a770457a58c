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

package workflowmock

import (
	"github.com/stretchr/testify/mock"

	"github.com/opsdeck/flowcore/internal/workflow/model"
)

// RunStoreInterfaceMock is a mock implementation of runstore.RunStoreInterface.
type RunStoreInterfaceMock struct {
	mock.Mock
}

// BeginRun mocks the BeginRun method.
func (m *RunStoreInterfaceMock) BeginRun(workflowID string, nodeCount int) (string, error) {
	ret := m.Called(workflowID, nodeCount)
	return ret.String(0), ret.Error(1)
}

// CompleteRun mocks the CompleteRun method.
func (m *RunStoreInterfaceMock) CompleteRun(runID string, outcome model.RunOutcome) error {
	ret := m.Called(runID, outcome)
	return ret.Error(0)
}

// GetRun mocks the GetRun method.
func (m *RunStoreInterfaceMock) GetRun(runID string) (*model.ExecutionRecord, error) {
	ret := m.Called(runID)
	var record *model.ExecutionRecord
	if ret.Get(0) != nil {
		record = ret.Get(0).(*model.ExecutionRecord)
	}
	return record, ret.Error(1)
}

// ListRuns mocks the ListRuns method.
func (m *RunStoreInterfaceMock) ListRuns(workflowID string, limit int) ([]model.ExecutionRecord, error) {
	ret := m.Called(workflowID, limit)
	var records []model.ExecutionRecord
	if ret.Get(0) != nil {
		records = ret.Get(0).([]model.ExecutionRecord)
	}
	return records, ret.Error(1)
}
