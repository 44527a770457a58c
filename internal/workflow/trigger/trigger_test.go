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

package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/nodetype/builtin"
	"github.com/opsdeck/flowcore/internal/workflow/model"
)

type launcherMock struct {
	mock.Mock
}

func (m *launcherMock) LaunchWorkflow(ctx context.Context, workflowID string, event Event) (string, error) {
	ret := m.Called(ctx, workflowID, event)
	return ret.String(0), ret.Error(1)
}

type TriggerTestSuite struct {
	suite.Suite
	registry *nodetype.Registry
	launcher *launcherMock
}

func TestTriggerSuite(t *testing.T) {
	suite.Run(t, new(TriggerTestSuite))
}

func (suite *TriggerTestSuite) SetupTest() {
	suite.registry = nodetype.NewRegistry()
	builtin.Register(suite.registry, builtin.Dependencies{})
	suite.launcher = &launcherMock{}
}

func scheduledWorkflow(id string, active bool) *model.Workflow {
	return &model.Workflow{
		ID:       id,
		Name:     "Nightly report",
		Active:   active,
		Schedule: &model.Schedule{Enabled: true, Cron: "0 2 * * *"},
		Nodes: []model.WorkflowNode{
			{ID: "tick", Type: builtin.TypeScheduleTrigger,
				Properties: map[string]any{"cron": "*/5 * * * *", "timezone": "Europe/Paris"}},
			{ID: "broken", Type: builtin.TypeScheduleTrigger, Properties: map[string]any{"cron": "not a cron"}},
			{ID: "hook", Type: builtin.TypeWebhookTrigger, Properties: map[string]any{"path": "/orders/"}},
		},
	}
}

func (suite *TriggerTestSuite) TestSchedulerSync() {
	scheduler := NewScheduler(suite.registry, suite.launcher)

	scheduler.Sync([]*model.Workflow{scheduledWorkflow("wf-1", true), scheduledWorkflow("wf-2", false)})
	assert.Equal(suite.T(), 2, scheduler.EntryCount("wf-1"))
	assert.Equal(suite.T(), 0, scheduler.EntryCount("wf-2"))
	assert.Len(suite.T(), scheduler.cron.Entries(), 2)

	scheduler.Sync(nil)
	assert.Equal(suite.T(), 0, scheduler.EntryCount("wf-1"))
	assert.Empty(suite.T(), scheduler.cron.Entries())
}

func (suite *TriggerTestSuite) TestSchedulerFollowsWorkflowChanges() {
	scheduler := NewScheduler(suite.registry, suite.launcher)

	workflow := scheduledWorkflow("wf-1", true)
	scheduler.OnWorkflowSaved(workflow)
	assert.Equal(suite.T(), 2, scheduler.EntryCount("wf-1"))

	workflow.Schedule.Enabled = false
	scheduler.OnWorkflowSaved(workflow)
	assert.Equal(suite.T(), 1, scheduler.EntryCount("wf-1"))

	workflow.Active = false
	scheduler.OnWorkflowSaved(workflow)
	assert.Equal(suite.T(), 0, scheduler.EntryCount("wf-1"))

	workflow.Active = true
	scheduler.OnWorkflowSaved(workflow)
	scheduler.OnWorkflowDeleted("wf-1")
	assert.Equal(suite.T(), 0, scheduler.EntryCount("wf-1"))
	assert.Empty(suite.T(), scheduler.cron.Entries())
}

func (suite *TriggerTestSuite) TestSchedulerFireLaunchesRun() {
	scheduler := NewScheduler(suite.registry, suite.launcher)
	suite.launcher.On("LaunchWorkflow", mock.Anything, "wf-1", mock.MatchedBy(func(event Event) bool {
		payload, ok := event.Payload.(map[string]any)
		return ok && event.Source == SourceSchedule && event.NodeID == "tick" && payload["cron"] == "*/5 * * * *" &&
			payload["firedAt"] != ""
	})).Return("run-1", nil).Once()
	suite.launcher.On("LaunchWorkflow", mock.Anything, "wf-1", mock.Anything).
		Return("", errors.New("workflow is inactive")).Once()

	scheduler.fire("wf-1", "tick", "*/5 * * * *")
	scheduler.fire("wf-1", "", "0 2 * * *")

	suite.launcher.AssertNumberOfCalls(suite.T(), "LaunchWorkflow", 2)
}

func (suite *TriggerTestSuite) TestSchedulerStartStop() {
	scheduler := NewScheduler(suite.registry, suite.launcher)
	scheduler.Start()
	scheduler.Stop(context.Background())
}

func (suite *TriggerTestSuite) newDispatcher(workflows ...*model.Workflow) *WebhookDispatcher {
	dispatcher := NewWebhookDispatcher(suite.registry, suite.launcher, "/hooks/")
	dispatcher.Sync(workflows)
	return dispatcher
}

func webhookWorkflow(id, path, method string) *model.Workflow {
	properties := map[string]any{"path": path}
	if method != "" {
		properties["method"] = method
	}
	return &model.Workflow{
		ID:     id,
		Name:   "Order intake",
		Active: true,
		Nodes:  []model.WorkflowNode{{ID: "hook", Type: builtin.TypeWebhookTrigger, Properties: properties}},
	}
}

func (suite *TriggerTestSuite) TestWebhookStartsMatchingRuns() {
	dispatcher := suite.newDispatcher(webhookWorkflow("wf-1", "/orders", ""), webhookWorkflow("wf-2", "orders", "POST"),
		webhookWorkflow("wf-3", "orders", "PUT"))
	assert.Equal(suite.T(), "/hooks", dispatcher.BasePath())

	suite.launcher.On("LaunchWorkflow", mock.Anything, "wf-1", mock.MatchedBy(func(event Event) bool {
		payload := event.Payload.(map[string]any)
		body := payload["body"].(map[string]any)
		query := payload["query"].(map[string]any)
		headers := payload["headers"].(map[string]any)
		return event.Source == SourceWebhook && event.NodeID == "hook" && payload["method"] == "POST" &&
			payload["path"] == "orders" && body["id"] == json.Number("42") && query["source"] == "shop" &&
			headers["X-Request-Id"] == "abc"
	})).Return("run-b", nil)
	suite.launcher.On("LaunchWorkflow", mock.Anything, "wf-2", mock.Anything).Return("run-a", nil)

	req := httptest.NewRequest(http.MethodPost, "/hooks/orders?source=shop", strings.NewReader(`{"id": 42}`))
	req.Header.Set("X-Request-Id", "abc")
	rec := httptest.NewRecorder()
	dispatcher.ServeHTTP(rec, req)

	assert.Equal(suite.T(), http.StatusAccepted, rec.Code)
	var response WebhookResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(suite.T(), []string{"run-a", "run-b"}, response.RunIDs)
	suite.launcher.AssertExpectations(suite.T())
}

func (suite *TriggerTestSuite) TestWebhookPlainTextBody() {
	dispatcher := suite.newDispatcher(webhookWorkflow("wf-1", "ping", "PUT"))
	suite.launcher.On("LaunchWorkflow", mock.Anything, "wf-1", mock.MatchedBy(func(event Event) bool {
		return event.Payload.(map[string]any)["body"] == "hello there"
	})).Return("run-1", nil)

	rec := httptest.NewRecorder()
	dispatcher.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/hooks/ping", strings.NewReader("hello there")))

	assert.Equal(suite.T(), http.StatusAccepted, rec.Code)
}

func (suite *TriggerTestSuite) TestWebhookUnknownRoute() {
	dispatcher := suite.newDispatcher(webhookWorkflow("wf-1", "orders", ""))

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/hooks/unknown", nil),
		httptest.NewRequest(http.MethodGet, "/hooks/orders", nil),
	} {
		rec := httptest.NewRecorder()
		dispatcher.ServeHTTP(rec, req)
		assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
	}
	suite.launcher.AssertNotCalled(suite.T(), "LaunchWorkflow", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TriggerTestSuite) TestWebhookLaunchFailure() {
	dispatcher := suite.newDispatcher(webhookWorkflow("wf-1", "orders", ""))
	suite.launcher.On("LaunchWorkflow", mock.Anything, "wf-1", mock.Anything).Return("", errors.New("store down"))

	rec := httptest.NewRecorder()
	dispatcher.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hooks/orders", nil))

	assert.Equal(suite.T(), http.StatusInternalServerError, rec.Code)
}

func (suite *TriggerTestSuite) TestWebhookFollowsWorkflowChanges() {
	dispatcher := suite.newDispatcher()
	workflow := webhookWorkflow("wf-1", "orders", "")

	dispatcher.OnWorkflowSaved(workflow)
	assert.Len(suite.T(), dispatcher.lookup(http.MethodPost, "orders"), 1)

	workflow.Nodes[0].Properties["path"] = "invoices"
	dispatcher.OnWorkflowSaved(workflow)
	assert.Empty(suite.T(), dispatcher.lookup(http.MethodPost, "orders"))
	assert.Len(suite.T(), dispatcher.lookup(http.MethodPost, "invoices"), 1)

	workflow.Active = false
	dispatcher.OnWorkflowSaved(workflow)
	assert.Empty(suite.T(), dispatcher.lookup(http.MethodPost, "invoices"))

	workflow.Active = true
	dispatcher.OnWorkflowSaved(workflow)
	dispatcher.OnWorkflowDeleted("wf-1")
	assert.Empty(suite.T(), dispatcher.routes)
}

func (suite *TriggerTestSuite) TestParseSchedule() {
	_, err := ParseSchedule("*/10 * * * *", "")
	assert.NoError(suite.T(), err)
	_, err = ParseSchedule("0 */10 * * * *", "America/New_York")
	assert.NoError(suite.T(), err)
	_, err = ParseSchedule("@daily", "UTC")
	assert.NoError(suite.T(), err)

	_, err = ParseSchedule("", "")
	assert.Error(suite.T(), err)
	_, err = ParseSchedule("61 * * * *", "")
	assert.ErrorContains(suite.T(), err, "invalid cron expression")
	_, err = ParseSchedule("* * * * *", "Mars/Olympus")
	assert.ErrorContains(suite.T(), err, "invalid timezone")
	_, err = ParseSchedule("CRON_TZ=UTC * * * * *", "")
	assert.Error(suite.T(), err)
}
