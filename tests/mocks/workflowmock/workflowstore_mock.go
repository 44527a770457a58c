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

// Package workflowmock provides testify mocks for the workflow packages.
package workflowmock

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/opsdeck/flowcore/internal/workflow/model"
)

// WorkflowStoreInterfaceMock is a mock implementation of store.WorkflowStoreInterface.
type WorkflowStoreInterfaceMock struct {
	mock.Mock
}

// CreateWorkflow mocks the CreateWorkflow method.
func (m *WorkflowStoreInterfaceMock) CreateWorkflow(workflow *model.Workflow) error {
	ret := m.Called(workflow)
	return ret.Error(0)
}

// GetWorkflow mocks the GetWorkflow method.
func (m *WorkflowStoreInterfaceMock) GetWorkflow(workflowID string) (*model.Workflow, error) {
	ret := m.Called(workflowID)
	var workflow *model.Workflow
	if ret.Get(0) != nil {
		workflow = ret.Get(0).(*model.Workflow)
	}
	return workflow, ret.Error(1)
}

// ListWorkflows mocks the ListWorkflows method.
func (m *WorkflowStoreInterfaceMock) ListWorkflows() ([]model.WorkflowSummary, error) {
	ret := m.Called()
	var summaries []model.WorkflowSummary
	if ret.Get(0) != nil {
		summaries = ret.Get(0).([]model.WorkflowSummary)
	}
	return summaries, ret.Error(1)
}

// ListActiveWorkflows mocks the ListActiveWorkflows method.
func (m *WorkflowStoreInterfaceMock) ListActiveWorkflows() ([]*model.Workflow, error) {
	ret := m.Called()
	var workflows []*model.Workflow
	if ret.Get(0) != nil {
		workflows = ret.Get(0).([]*model.Workflow)
	}
	return workflows, ret.Error(1)
}

// UpdateWorkflow mocks the UpdateWorkflow method.
func (m *WorkflowStoreInterfaceMock) UpdateWorkflow(workflow *model.Workflow) error {
	ret := m.Called(workflow)
	return ret.Error(0)
}

// DeleteWorkflow mocks the DeleteWorkflow method.
func (m *WorkflowStoreInterfaceMock) DeleteWorkflow(workflowID string) error {
	ret := m.Called(workflowID)
	return ret.Error(0)
}

// RecordRun mocks the RecordRun method.
func (m *WorkflowStoreInterfaceMock) RecordRun(workflowID string, at time.Time) error {
	ret := m.Called(workflowID, at)
	return ret.Error(0)
}
