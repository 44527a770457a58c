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
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/opsdeck/flowcore/internal/workflow/engine"
)

// EngineInterfaceMock is a mock implementation of engine.EngineInterface.
type EngineInterfaceMock struct {
	mock.Mock
}

// Start mocks the Start method.
func (m *EngineInterfaceMock) Start(ctx context.Context, req engine.ExecutionRequest) (*engine.RunHandle, error) {
	ret := m.Called(ctx, req)
	var handle *engine.RunHandle
	if ret.Get(0) != nil {
		handle = ret.Get(0).(*engine.RunHandle)
	}
	return handle, ret.Error(1)
}

// Execute mocks the Execute method.
func (m *EngineInterfaceMock) Execute(ctx context.Context, req engine.ExecutionRequest) (*engine.RunResult, error) {
	ret := m.Called(ctx, req)
	var result *engine.RunResult
	if ret.Get(0) != nil {
		result = ret.Get(0).(*engine.RunResult)
	}
	return result, ret.Error(1)
}
