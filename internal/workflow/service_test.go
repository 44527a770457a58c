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

package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/nodetype/builtin"
	"github.com/opsdeck/flowcore/internal/workflow/engine"
	"github.com/opsdeck/flowcore/internal/workflow/graph"
	"github.com/opsdeck/flowcore/internal/workflow/model"
	"github.com/opsdeck/flowcore/internal/workflow/runstore"
	"github.com/opsdeck/flowcore/internal/workflow/store"
	"github.com/opsdeck/flowcore/internal/workflow/trigger"
	"github.com/opsdeck/flowcore/tests/mocks/workflowmock"
)

type listenerRecorder struct {
	mutex   sync.Mutex
	saved   []string
	deleted []string
	synced  int
}

func (l *listenerRecorder) Sync(workflows []*model.Workflow) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.synced = len(workflows)
}

func (l *listenerRecorder) OnWorkflowSaved(workflow *model.Workflow) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.saved = append(l.saved, workflow.ID)
}

func (l *listenerRecorder) OnWorkflowDeleted(workflowID string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.deleted = append(l.deleted, workflowID)
}

type WorkflowServiceTestSuite struct {
	suite.Suite
	registry *nodetype.Registry
	store    *workflowmock.WorkflowStoreInterfaceMock
	runStore *runstore.InMemoryRunStore
	listener *listenerRecorder
	service  *workflowService
	started  chan string
	release  chan struct{}
	now      time.Time
}

func TestWorkflowServiceSuite(t *testing.T) {
	suite.Run(t, new(WorkflowServiceTestSuite))
}

func (suite *WorkflowServiceTestSuite) SetupTest() {
	suite.registry = nodetype.NewRegistry()
	builtin.Register(suite.registry, builtin.Dependencies{})
	suite.started = make(chan string, 4)
	suite.release = make(chan struct{})
	started, release := suite.started, suite.release
	suite.registry.Register("test.wait", nodetype.NodeType{
		Category: "Test",
		Kind:     nodetype.KindAction,
		Inputs:   []nodetype.PortSpec{{Name: "in"}},
		Outputs:  []nodetype.PortSpec{{Name: "out", Multiple: true}},
		Executor: nodetype.ExecutorFunc(func(_ context.Context, req *nodetype.ExecutionRequest) (*nodetype.NodeResult, error) {
			started <- req.NodeID
			<-release
			return &nodetype.NodeResult{Outputs: map[string]any{"out": nil}}, nil
		}),
	})

	suite.store = &workflowmock.WorkflowStoreInterfaceMock{}
	suite.runStore = runstore.NewInMemoryRunStore()
	suite.listener = &listenerRecorder{}
	suite.now = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

	workflowEngine := engine.New(suite.registry, suite.runStore, engine.DefaultConfig())
	suite.service = newWorkflowService(suite.registry, suite.store, suite.runStore, workflowEngine, 50)
	suite.service.now = func() time.Time { return suite.now }
	suite.service.addListener(suite.listener)
}

func (suite *WorkflowServiceTestSuite) webhookWorkflow(id string, active bool) *model.Workflow {
	return &model.Workflow{
		ID:     id,
		Name:   "Order intake",
		Active: active,
		Nodes: []model.WorkflowNode{
			{ID: "hook", Type: builtin.TypeWebhookTrigger, Properties: map[string]any{"path": "orders"}},
			{ID: "check", Type: builtin.TypeConditional, Properties: map[string]any{"condition": "true"}},
		},
		Edges: []model.Edge{
			{
				ID:     "e1",
				Source: model.Endpoint{NodeID: "hook", Port: builtin.PortPayload},
				Target: model.Endpoint{NodeID: "check", Port: builtin.PortInput},
			},
		},
	}
}

func (suite *WorkflowServiceTestSuite) TestListNodeTypes() {
	all := suite.service.ListNodeTypes("")
	assert.Len(suite.T(), all, 8)
	for i := 1; i < len(all); i++ {
		assert.Less(suite.T(), all[i-1].Type, all[i].Type)
	}

	triggers := suite.service.ListNodeTypes(builtin.CategoryTriggers)
	assert.Len(suite.T(), triggers, 2)
	assert.Contains(suite.T(), suite.service.ListNodeCategories(), builtin.CategoryLogic)
}

func (suite *WorkflowServiceTestSuite) TestGetNodeType() {
	nodeType, svcErr := suite.service.GetNodeType(builtin.TypeForEach)
	assert.Nil(suite.T(), svcErr)
	assert.Equal(suite.T(), nodetype.KindLoop, nodeType.Kind)

	_, svcErr = suite.service.GetNodeType("missing.type")
	assert.Equal(suite.T(), ErrorNodeTypeNotFound.Code, svcErr.Code)
}

func (suite *WorkflowServiceTestSuite) TestCreateWorkflowGeneratesIDs() {
	workflow := suite.webhookWorkflow("", true)
	workflow.Edges[0].ID = ""
	suite.store.On("CreateWorkflow", mock.AnythingOfType("*model.Workflow")).Return(nil)

	created, svcErr := suite.service.CreateWorkflow(workflow)

	assert.Nil(suite.T(), svcErr)
	assert.NotEmpty(suite.T(), created.ID)
	assert.NotEmpty(suite.T(), created.Edges[0].ID)
	assert.Equal(suite.T(), suite.now, created.CreatedAt)
	assert.Equal(suite.T(), suite.now, created.UpdatedAt)
	assert.Equal(suite.T(), []string{created.ID}, suite.listener.saved)
	suite.store.AssertNotCalled(suite.T(), "GetWorkflow", mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestCreateWorkflowConflict() {
	suite.store.On("GetWorkflow", "wf-1").Return(suite.webhookWorkflow("wf-1", true), nil)

	_, svcErr := suite.service.CreateWorkflow(suite.webhookWorkflow("wf-1", true))

	assert.Equal(suite.T(), ErrorWorkflowAlreadyExists.Code, svcErr.Code)
	suite.store.AssertNotCalled(suite.T(), "CreateWorkflow", mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestCreateWorkflowRequiresName() {
	workflow := suite.webhookWorkflow("", false)
	workflow.Name = "  "

	_, svcErr := suite.service.CreateWorkflow(workflow)

	assert.Equal(suite.T(), ErrorInvalidRequestFormat.Code, svcErr.Code)
}

func (suite *WorkflowServiceTestSuite) TestCreateActiveWorkflowRejectsIssues() {
	workflow := suite.webhookWorkflow("wf-1", true)
	delete(workflow.Nodes[1].Properties, "condition")
	suite.store.On("GetWorkflow", "wf-1").Return(nil, store.ErrWorkflowNotFound)

	_, svcErr := suite.service.CreateWorkflow(workflow)

	assert.Equal(suite.T(), ErrorInvalidWorkflow.Code, svcErr.Code)
	assert.Contains(suite.T(), svcErr.ErrorDescription, "condition")
	suite.store.AssertNotCalled(suite.T(), "CreateWorkflow", mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestCreateInactiveDraftWithIssues() {
	workflow := suite.webhookWorkflow("wf-1", false)
	delete(workflow.Nodes[1].Properties, "condition")
	suite.store.On("GetWorkflow", "wf-1").Return(nil, store.ErrWorkflowNotFound)
	suite.store.On("CreateWorkflow", workflow).Return(nil)

	created, svcErr := suite.service.CreateWorkflow(workflow)

	assert.Nil(suite.T(), svcErr)
	assert.Equal(suite.T(), "wf-1", created.ID)
}

func (suite *WorkflowServiceTestSuite) TestCreateWorkflowStoreError() {
	suite.store.On("CreateWorkflow", mock.Anything).Return(errors.New("disk full"))

	_, svcErr := suite.service.CreateWorkflow(suite.webhookWorkflow("", true))

	assert.Equal(suite.T(), ErrorInternalServerError.Code, svcErr.Code)
	assert.Empty(suite.T(), suite.listener.saved)
}

func (suite *WorkflowServiceTestSuite) TestGetWorkflow() {
	suite.store.On("GetWorkflow", "wf-1").Return(suite.webhookWorkflow("wf-1", true), nil)
	suite.store.On("GetWorkflow", "wf-2").Return(nil, store.ErrWorkflowNotFound)
	suite.store.On("GetWorkflow", "wf-3").Return(nil, errors.New("connection reset"))

	workflow, svcErr := suite.service.GetWorkflow("wf-1")
	assert.Nil(suite.T(), svcErr)
	assert.Equal(suite.T(), "wf-1", workflow.ID)

	_, svcErr = suite.service.GetWorkflow("wf-2")
	assert.Equal(suite.T(), ErrorWorkflowNotFound.Code, svcErr.Code)

	_, svcErr = suite.service.GetWorkflow("wf-3")
	assert.Equal(suite.T(), ErrorInternalServerError.Code, svcErr.Code)

	_, svcErr = suite.service.GetWorkflow("")
	assert.Equal(suite.T(), ErrorMissingWorkflowID.Code, svcErr.Code)
}

func (suite *WorkflowServiceTestSuite) TestListWorkflows() {
	suite.store.On("ListWorkflows").Return([]model.WorkflowSummary{{ID: "wf-1"}, {ID: "wf-2"}}, nil)

	response, svcErr := suite.service.ListWorkflows()

	assert.Nil(suite.T(), svcErr)
	assert.Equal(suite.T(), 2, response.TotalResults)
}

func (suite *WorkflowServiceTestSuite) TestUpdateWorkflowKeepsCounters() {
	lastRun := suite.now.Add(-time.Hour)
	existing := suite.webhookWorkflow("wf-1", true)
	existing.CreatedAt = suite.now.Add(-48 * time.Hour)
	existing.RunCount = 7
	existing.LastRun = &lastRun
	suite.store.On("GetWorkflow", "wf-1").Return(existing, nil)
	suite.store.On("UpdateWorkflow", mock.AnythingOfType("*model.Workflow")).Return(nil)

	replacement := suite.webhookWorkflow("ignored", true)
	replacement.Name = "Renamed"
	updated, svcErr := suite.service.UpdateWorkflow("wf-1", replacement)

	assert.Nil(suite.T(), svcErr)
	assert.Equal(suite.T(), "wf-1", updated.ID)
	assert.Equal(suite.T(), "Renamed", updated.Name)
	assert.Equal(suite.T(), 7, updated.RunCount)
	assert.Equal(suite.T(), existing.CreatedAt, updated.CreatedAt)
	assert.Equal(suite.T(), suite.now, updated.UpdatedAt)
	assert.Equal(suite.T(), []string{"wf-1"}, suite.listener.saved)
}

func (suite *WorkflowServiceTestSuite) TestDeleteWorkflow() {
	suite.store.On("DeleteWorkflow", "wf-1").Return(nil)
	suite.store.On("DeleteWorkflow", "wf-2").Return(store.ErrWorkflowNotFound)

	assert.Nil(suite.T(), suite.service.DeleteWorkflow("wf-1"))
	assert.Equal(suite.T(), []string{"wf-1"}, suite.listener.deleted)

	svcErr := suite.service.DeleteWorkflow("wf-2")
	assert.Equal(suite.T(), ErrorWorkflowNotFound.Code, svcErr.Code)
	assert.Equal(suite.T(), []string{"wf-1"}, suite.listener.deleted)
}

func (suite *WorkflowServiceTestSuite) TestValidateWorkflow() {
	response := suite.service.ValidateWorkflow(suite.webhookWorkflow("wf-1", true))
	assert.True(suite.T(), response.Valid)
	assert.Empty(suite.T(), response.Issues)

	broken := suite.webhookWorkflow("wf-1", true)
	broken.Nodes[1].Type = "missing.type"
	response = suite.service.ValidateWorkflow(broken)
	assert.False(suite.T(), response.Valid)
	assert.NotEmpty(suite.T(), response.Issues)
}

func (suite *WorkflowServiceTestSuite) TestAddNodeSavesWorkflow() {
	suite.store.On("GetWorkflow", "wf-1").Return(suite.webhookWorkflow("wf-1", false), nil)
	suite.store.On("UpdateWorkflow", mock.MatchedBy(func(workflow *model.Workflow) bool {
		return len(workflow.Nodes) == 3
	})).Return(nil)

	node, svcErr := suite.service.AddNode("wf-1", model.WorkflowNode{Type: builtin.TypeHTTPRequest})

	assert.Nil(suite.T(), svcErr)
	assert.NotEmpty(suite.T(), node.ID)
	suite.store.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestGraphEditErrors() {
	suite.store.On("GetWorkflow", "wf-1").Return(suite.webhookWorkflow("wf-1", false), nil)

	_, svcErr := suite.service.AddNode("wf-1", model.WorkflowNode{Type: "missing.type"})
	assert.Equal(suite.T(), ErrorNodeTypeNotFound.Code, svcErr.Code)

	svcErr = suite.service.RemoveNode("wf-1", "ghost")
	assert.Equal(suite.T(), ErrorNodeNotFound.Code, svcErr.Code)

	svcErr = suite.service.RemoveEdge("wf-1", "ghost")
	assert.Equal(suite.T(), ErrorEdgeNotFound.Code, svcErr.Code)

	_, svcErr = suite.service.AddEdge("wf-1", model.Edge{
		Source: model.Endpoint{NodeID: "hook", Port: builtin.PortPayload},
		Target: model.Endpoint{NodeID: "hook", Port: "missing"},
	})
	assert.Equal(suite.T(), ErrorInvalidGraphEdit.Code, svcErr.Code)

	label := "Renamed"
	_, svcErr = suite.service.UpdateNode("wf-1", "ghost", graph.NodePatch{Label: &label})
	assert.Equal(suite.T(), ErrorNodeNotFound.Code, svcErr.Code)

	suite.store.AssertNotCalled(suite.T(), "UpdateWorkflow", mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestGraphEditOnActiveWorkflowIsValidated() {
	suite.store.On("GetWorkflow", "wf-1").Return(suite.webhookWorkflow("wf-1", true), nil)

	svcErr := suite.service.RemoveEdge("wf-1", "e1")

	assert.Equal(suite.T(), ErrorInvalidWorkflow.Code, svcErr.Code)
	suite.store.AssertNotCalled(suite.T(), "UpdateWorkflow", mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestExecuteWorkflowRecordsRun() {
	suite.store.On("GetWorkflow", "wf-1").Return(suite.webhookWorkflow("wf-1", true), nil)
	suite.store.On("RecordRun", "wf-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	runID, svcErr := suite.service.ExecuteWorkflow(context.Background(), "wf-1", trigger.Event{
		Source:  trigger.SourceWebhook,
		NodeID:  "hook",
		Payload: map[string]any{"order": "A-1"},
	})
	assert.Nil(suite.T(), svcErr)
	assert.NotEmpty(suite.T(), runID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(suite.T(), suite.service.Shutdown(ctx))

	record, svcErr := suite.service.GetRun(runID)
	assert.Nil(suite.T(), svcErr)
	assert.Equal(suite.T(), model.RunStatusSuccess, record.Status)
	suite.store.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestExecuteInactiveWorkflow() {
	suite.store.On("GetWorkflow", "wf-1").Return(suite.webhookWorkflow("wf-1", false), nil)
	suite.store.On("RecordRun", "wf-1", mock.AnythingOfType("time.Time")).Return(nil)

	_, svcErr := suite.service.ExecuteWorkflow(context.Background(), "wf-1",
		trigger.Event{Source: trigger.SourceSchedule})
	assert.Equal(suite.T(), ErrorWorkflowInactive.Code, svcErr.Code)

	runID, svcErr := suite.service.ExecuteWorkflow(context.Background(), "wf-1",
		trigger.Event{Source: trigger.SourceManual})
	assert.Nil(suite.T(), svcErr)
	assert.NotEmpty(suite.T(), runID)
	assert.NoError(suite.T(), suite.service.Shutdown(context.Background()))
}

func (suite *WorkflowServiceTestSuite) TestExecuteWorkflowStartErrors() {
	invalid := suite.webhookWorkflow("wf-2", false)
	delete(invalid.Nodes[0].Properties, "path")
	suite.store.On("GetWorkflow", "wf-1").Return(suite.webhookWorkflow("wf-1", true), nil)
	suite.store.On("GetWorkflow", "wf-2").Return(invalid, nil)
	suite.store.On("GetWorkflow", "wf-3").Return(nil, store.ErrWorkflowNotFound)

	_, svcErr := suite.service.ExecuteWorkflow(context.Background(), "wf-1",
		trigger.Event{Source: trigger.SourceManual, NodeID: "check"})
	assert.Equal(suite.T(), ErrorInvalidTrigger.Code, svcErr.Code)

	_, svcErr = suite.service.ExecuteWorkflow(context.Background(), "wf-2",
		trigger.Event{Source: trigger.SourceManual})
	assert.Equal(suite.T(), ErrorInvalidWorkflow.Code, svcErr.Code)

	_, svcErr = suite.service.ExecuteWorkflow(context.Background(), "wf-3",
		trigger.Event{Source: trigger.SourceManual})
	assert.Equal(suite.T(), ErrorWorkflowNotFound.Code, svcErr.Code)
}

func (suite *WorkflowServiceTestSuite) TestExecuteWorkflowEngineFailure() {
	engineMock := &workflowmock.EngineInterfaceMock{}
	engineMock.On("Start", mock.Anything, mock.AnythingOfType("engine.ExecutionRequest")).
		Return(nil, errors.New("failed to record run"))
	suite.store.On("GetWorkflow", "wf-1").Return(suite.webhookWorkflow("wf-1", true), nil)
	service := newWorkflowService(suite.registry, suite.store, suite.runStore, engineMock, 50)

	_, svcErr := service.ExecuteWorkflow(context.Background(), "wf-1", trigger.Event{Source: trigger.SourceManual})
	assert.Equal(suite.T(), ErrorRunStartFailed.Code, svcErr.Code)

	_, err := service.LaunchWorkflow(context.Background(), "wf-1", trigger.Event{Source: trigger.SourceWebhook})
	assert.ErrorContains(suite.T(), err, ErrorRunStartFailed.Code)
}

func (suite *WorkflowServiceTestSuite) TestCancelRun() {
	workflow := suite.webhookWorkflow("wf-1", true)
	workflow.Nodes = append(workflow.Nodes,
		model.WorkflowNode{ID: "wait", Type: "test.wait", Properties: map[string]any{}})
	workflow.Edges = []model.Edge{
		{ID: "e1", Source: model.Endpoint{NodeID: "hook", Port: builtin.PortPayload},
			Target: model.Endpoint{NodeID: "wait", Port: "in"}},
		{ID: "e2", Source: model.Endpoint{NodeID: "wait", Port: "out"},
			Target: model.Endpoint{NodeID: "check", Port: builtin.PortInput}},
	}
	suite.store.On("GetWorkflow", "wf-1").Return(workflow, nil)
	suite.store.On("RecordRun", "wf-1", mock.AnythingOfType("time.Time")).Return(nil)

	runID, svcErr := suite.service.ExecuteWorkflow(context.Background(), "wf-1",
		trigger.Event{Source: trigger.SourceManual})
	assert.Nil(suite.T(), svcErr)

	select {
	case <-suite.started:
	case <-time.After(5 * time.Second):
		suite.T().Fatal("node never started")
	}

	assert.Nil(suite.T(), suite.service.CancelRun(runID))
	close(suite.release)
	assert.NoError(suite.T(), suite.service.Shutdown(context.Background()))

	record, _ := suite.service.GetRun(runID)
	assert.Equal(suite.T(), model.RunStatusCancelled, record.Status)

	svcErr = suite.service.CancelRun(runID)
	assert.Equal(suite.T(), ErrorRunNotActive.Code, svcErr.Code)

	svcErr = suite.service.CancelRun("unknown")
	assert.Equal(suite.T(), ErrorRunNotFound.Code, svcErr.Code)
}

func (suite *WorkflowServiceTestSuite) TestShutdownWaitsForActiveRuns() {
	workflow := suite.webhookWorkflow("wf-1", true)
	workflow.Nodes = append(workflow.Nodes,
		model.WorkflowNode{ID: "wait", Type: "test.wait", Properties: map[string]any{}})
	workflow.Edges = []model.Edge{
		{ID: "e1", Source: model.Endpoint{NodeID: "hook", Port: builtin.PortPayload},
			Target: model.Endpoint{NodeID: "wait", Port: "in"}},
		{ID: "e2", Source: model.Endpoint{NodeID: "wait", Port: "out"},
			Target: model.Endpoint{NodeID: "check", Port: builtin.PortInput}},
	}
	suite.store.On("GetWorkflow", "wf-1").Return(workflow, nil)
	suite.store.On("RecordRun", "wf-1", mock.AnythingOfType("time.Time")).Return(nil)

	runID, svcErr := suite.service.ExecuteWorkflow(context.Background(), "wf-1",
		trigger.Event{Source: trigger.SourceManual})
	assert.Nil(suite.T(), svcErr)
	select {
	case <-suite.started:
	case <-time.After(5 * time.Second):
		suite.T().Fatal("node never started")
	}

	done := make(chan error, 1)
	go func() {
		done <- suite.service.Shutdown(context.Background())
	}()
	select {
	case <-done:
		suite.T().Fatal("shutdown returned while a node was still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(suite.release)
	select {
	case err := <-done:
		assert.NoError(suite.T(), err)
	case <-time.After(5 * time.Second):
		suite.T().Fatal("shutdown never returned")
	}

	record, _ := suite.service.GetRun(runID)
	assert.Equal(suite.T(), model.RunStatusCancelled, record.Status)
	suite.store.AssertCalled(suite.T(), "RecordRun", "wf-1", mock.AnythingOfType("time.Time"))
}

func (suite *WorkflowServiceTestSuite) TestExecuteAfterShutdownIsRejected() {
	suite.store.On("GetWorkflow", "wf-1").Return(suite.webhookWorkflow("wf-1", true), nil)
	engineMock := &workflowmock.EngineInterfaceMock{}
	service := newWorkflowService(suite.registry, suite.store, suite.runStore, engineMock, 50)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(suite.T(), service.Shutdown(shutdownCtx))

	runID, svcErr := service.ExecuteWorkflow(context.Background(), "wf-1",
		trigger.Event{Source: trigger.SourceWebhook})
	assert.Empty(suite.T(), runID)
	assert.Equal(suite.T(), ErrorRunStartFailed.Code, svcErr.Code)
	engineMock.AssertNotCalled(suite.T(), "Start", mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestListRuns() {
	runStoreMock := &workflowmock.RunStoreInterfaceMock{}
	runStoreMock.On("ListRuns", "wf-1", 50).Return([]model.ExecutionRecord{{ID: "run-1"}}, nil)
	runStoreMock.On("ListRuns", "wf-1", 5).Return([]model.ExecutionRecord{}, nil)
	suite.store.On("GetWorkflow", "wf-1").Return(suite.webhookWorkflow("wf-1", true), nil)
	suite.store.On("GetWorkflow", "wf-2").Return(nil, store.ErrWorkflowNotFound)
	service := newWorkflowService(suite.registry, suite.store, runStoreMock, &workflowmock.EngineInterfaceMock{}, 50)

	response, svcErr := service.ListRuns("wf-1", 0)
	assert.Nil(suite.T(), svcErr)
	assert.Equal(suite.T(), 1, response.Count)

	response, svcErr = service.ListRuns("wf-1", 5)
	assert.Nil(suite.T(), svcErr)
	assert.Equal(suite.T(), 0, response.Count)

	_, svcErr = service.ListRuns("wf-2", 0)
	assert.Equal(suite.T(), ErrorWorkflowNotFound.Code, svcErr.Code)
	runStoreMock.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestRefreshTriggers() {
	suite.store.On("ListActiveWorkflows").Return([]*model.Workflow{suite.webhookWorkflow("wf-1", true)}, nil).Once()
	assert.Nil(suite.T(), suite.service.RefreshTriggers())
	assert.Equal(suite.T(), 1, suite.listener.synced)

	suite.store.On("ListActiveWorkflows").Return(nil, errors.New("connection reset"))
	svcErr := suite.service.RefreshTriggers()
	assert.Equal(suite.T(), ErrorInternalServerError.Code, svcErr.Code)
}
