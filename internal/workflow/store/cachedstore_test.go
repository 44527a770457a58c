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

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/opsdeck/flowcore/internal/system/cache"
	"github.com/opsdeck/flowcore/internal/workflow/model"
	"github.com/opsdeck/flowcore/tests/mocks/workflowmock"
)

type CachedWorkflowStoreTestSuite struct {
	suite.Suite
	inner *workflowmock.WorkflowStoreInterfaceMock
	store *CachedWorkflowStore
}

func TestCachedWorkflowStoreSuite(t *testing.T) {
	suite.Run(t, new(CachedWorkflowStoreTestSuite))
}

func (suite *CachedWorkflowStoreTestSuite) SetupTest() {
	suite.inner = &workflowmock.WorkflowStoreInterfaceMock{}
	suite.store = NewCachedWorkflowStore(suite.inner,
		cache.NewInMemoryCache[*model.Workflow]("WorkflowDefinitionCache", true, 10, time.Minute))
}

func (suite *CachedWorkflowStoreTestSuite) TestGetWorkflowIsCached() {
	suite.inner.On("GetWorkflow", "wf-1").Return(&model.Workflow{ID: "wf-1", Name: "Orders"}, nil).Once()

	first, err := suite.store.GetWorkflow("wf-1")
	suite.Require().NoError(err)
	first.Name = "changed by caller"

	second, err := suite.store.GetWorkflow("wf-1")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Orders", second.Name)
	suite.inner.AssertNumberOfCalls(suite.T(), "GetWorkflow", 1)
}

func (suite *CachedWorkflowStoreTestSuite) TestWritesInvalidate() {
	suite.inner.On("GetWorkflow", "wf-1").Return(&model.Workflow{ID: "wf-1"}, nil)
	suite.inner.On("UpdateWorkflow", mock.Anything).Return(nil)
	suite.inner.On("RecordRun", "wf-1", mock.Anything).Return(nil)
	suite.inner.On("DeleteWorkflow", "wf-1").Return(nil)

	_, _ = suite.store.GetWorkflow("wf-1")
	suite.Require().NoError(suite.store.UpdateWorkflow(&model.Workflow{ID: "wf-1"}))
	_, _ = suite.store.GetWorkflow("wf-1")
	suite.Require().NoError(suite.store.RecordRun("wf-1", time.Now()))
	_, _ = suite.store.GetWorkflow("wf-1")
	suite.Require().NoError(suite.store.DeleteWorkflow("wf-1"))
	_, _ = suite.store.GetWorkflow("wf-1")

	suite.inner.AssertNumberOfCalls(suite.T(), "GetWorkflow", 4)
}

func (suite *CachedWorkflowStoreTestSuite) TestMissesAreNotCached() {
	suite.inner.On("GetWorkflow", "wf-2").Return(nil, ErrWorkflowNotFound)

	_, err := suite.store.GetWorkflow("wf-2")
	assert.ErrorIs(suite.T(), err, ErrWorkflowNotFound)
	_, err = suite.store.GetWorkflow("wf-2")
	assert.ErrorIs(suite.T(), err, ErrWorkflowNotFound)
	suite.inner.AssertNumberOfCalls(suite.T(), "GetWorkflow", 2)
}
