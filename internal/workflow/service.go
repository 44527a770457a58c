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

// Package workflow provides workflow management, execution and run history operations.
package workflow

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/system/error/serviceerror"
	"github.com/opsdeck/flowcore/internal/system/log"
	"github.com/opsdeck/flowcore/internal/system/utils"
	"github.com/opsdeck/flowcore/internal/workflow/engine"
	"github.com/opsdeck/flowcore/internal/workflow/graph"
	"github.com/opsdeck/flowcore/internal/workflow/model"
	"github.com/opsdeck/flowcore/internal/workflow/runstore"
	"github.com/opsdeck/flowcore/internal/workflow/store"
	"github.com/opsdeck/flowcore/internal/workflow/trigger"
	"github.com/opsdeck/flowcore/internal/workflow/validator"
)

const loggerComponentName = "WorkflowMgtService"

// WorkflowServiceInterface defines the interface for the workflow service.
type WorkflowServiceInterface interface {
	ListNodeTypes(category string) []nodetype.NodeType
	ListNodeCategories() []string
	GetNodeType(nodeTypeID string) (*nodetype.NodeType, *serviceerror.ServiceError)

	CreateWorkflow(workflow *model.Workflow) (*model.Workflow, *serviceerror.ServiceError)
	GetWorkflow(workflowID string) (*model.Workflow, *serviceerror.ServiceError)
	ListWorkflows() (*WorkflowListResponse, *serviceerror.ServiceError)
	UpdateWorkflow(workflowID string, workflow *model.Workflow) (*model.Workflow, *serviceerror.ServiceError)
	DeleteWorkflow(workflowID string) *serviceerror.ServiceError
	ValidateWorkflow(workflow *model.Workflow) *ValidationResponse

	AddNode(workflowID string, node model.WorkflowNode) (*model.WorkflowNode, *serviceerror.ServiceError)
	UpdateNode(workflowID, nodeID string, patch graph.NodePatch) (*model.WorkflowNode, *serviceerror.ServiceError)
	RemoveNode(workflowID, nodeID string) *serviceerror.ServiceError
	AddEdge(workflowID string, edge model.Edge) (*model.Edge, *serviceerror.ServiceError)
	RemoveEdge(workflowID, edgeID string) *serviceerror.ServiceError

	ExecuteWorkflow(ctx context.Context, workflowID string, event trigger.Event) (string, *serviceerror.ServiceError)
	GetRun(runID string) (*model.ExecutionRecord, *serviceerror.ServiceError)
	ListRuns(workflowID string, limit int) (*RunListResponse, *serviceerror.ServiceError)
	CancelRun(runID string) *serviceerror.ServiceError

	RefreshTriggers() *serviceerror.ServiceError
	Shutdown(ctx context.Context) error
}

// workflowService is the default implementation of WorkflowServiceInterface.
type workflowService struct {
	registry     nodetype.RegistryInterface
	store        store.WorkflowStoreInterface
	runStore     runstore.RunStoreInterface
	engine       engine.EngineInterface
	listeners    []trigger.ListenerInterface
	historyLimit int
	activeRuns   map[string]*engine.RunHandle
	runs         sync.WaitGroup
	shuttingDown bool
	mutex        sync.Mutex
	now          func() time.Time
}

var _ trigger.LauncherInterface = (*workflowService)(nil)

// newWorkflowService creates a new instance of workflowService with injected dependencies.
func newWorkflowService(registry nodetype.RegistryInterface, workflowStore store.WorkflowStoreInterface,
	runStore runstore.RunStoreInterface, workflowEngine engine.EngineInterface, historyLimit int) *workflowService {
	return &workflowService{
		registry:     registry,
		store:        workflowStore,
		runStore:     runStore,
		engine:       workflowEngine,
		historyLimit: historyLimit,
		activeRuns:   make(map[string]*engine.RunHandle),
		now:          time.Now,
	}
}

// addListener registers a listener notified about saved and deleted workflows.
func (ws *workflowService) addListener(listener trigger.ListenerInterface) {
	ws.listeners = append(ws.listeners, listener)
}

// ListNodeTypes returns the registered node types sorted by id, optionally filtered by category.
func (ws *workflowService) ListNodeTypes(category string) []nodetype.NodeType {
	if category != "" {
		return ws.registry.ListByCategory(category)
	}

	all := ws.registry.GetAll()
	nodeTypes := make([]nodetype.NodeType, 0, len(all))
	for _, definition := range all {
		nodeTypes = append(nodeTypes, definition)
	}
	sort.Slice(nodeTypes, func(i, j int) bool {
		return nodeTypes[i].Type < nodeTypes[j].Type
	})
	return nodeTypes
}

// ListNodeCategories returns the categories of the registered node types.
func (ws *workflowService) ListNodeCategories() []string {
	return ws.registry.Categories()
}

// GetNodeType returns a registered node type.
func (ws *workflowService) GetNodeType(nodeTypeID string) (*nodetype.NodeType, *serviceerror.ServiceError) {
	definition, ok := ws.registry.Get(nodeTypeID)
	if !ok {
		return nil, &ErrorNodeTypeNotFound
	}
	return definition, nil
}

// CreateWorkflow stores a new workflow. Active workflows must pass validation.
func (ws *workflowService) CreateWorkflow(workflow *model.Workflow) (*model.Workflow, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	if svcErr := validateWorkflowRequest(workflow); svcErr != nil {
		return nil, svcErr
	}

	if workflow.ID == "" {
		workflow.ID = utils.GenerateUUID()
	} else if _, err := ws.store.GetWorkflow(workflow.ID); err == nil {
		return nil, &ErrorWorkflowAlreadyExists
	} else if !errors.Is(err, store.ErrWorkflowNotFound) {
		logger.Error("Failed to check workflow existence", log.Error(err))
		return nil, &ErrorInternalServerError
	}

	prepareDocument(workflow)
	if svcErr := ws.checkSavable(workflow); svcErr != nil {
		return nil, svcErr
	}

	now := ws.now().UTC()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now
	workflow.RunCount = 0
	workflow.LastRun = nil

	if err := ws.store.CreateWorkflow(workflow); err != nil {
		logger.Error("Failed to create workflow", log.Error(err))
		return nil, &ErrorInternalServerError
	}
	ws.notifySaved(workflow)

	logger.Debug("Workflow created", log.String(log.LoggerKeyWorkflowID, workflow.ID))
	return workflow, nil
}

// GetWorkflow returns a stored workflow.
func (ws *workflowService) GetWorkflow(workflowID string) (*model.Workflow, *serviceerror.ServiceError) {
	if strings.TrimSpace(workflowID) == "" {
		return nil, &ErrorMissingWorkflowID
	}

	workflow, err := ws.store.GetWorkflow(workflowID)
	if err != nil {
		if errors.Is(err, store.ErrWorkflowNotFound) {
			return nil, &ErrorWorkflowNotFound
		}
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
			Error("Failed to get workflow", log.String(log.LoggerKeyWorkflowID, workflowID), log.Error(err))
		return nil, &ErrorInternalServerError
	}
	return workflow, nil
}

// ListWorkflows returns a summary of every stored workflow.
func (ws *workflowService) ListWorkflows() (*WorkflowListResponse, *serviceerror.ServiceError) {
	summaries, err := ws.store.ListWorkflows()
	if err != nil {
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
			Error("Failed to list workflows", log.Error(err))
		return nil, &ErrorInternalServerError
	}
	return &WorkflowListResponse{
		TotalResults: len(summaries),
		Workflows:    summaries,
	}, nil
}

// UpdateWorkflow replaces the document of a stored workflow. Run counters and
// the creation time are kept from the stored record.
func (ws *workflowService) UpdateWorkflow(workflowID string,
	workflow *model.Workflow) (*model.Workflow, *serviceerror.ServiceError) {
	if svcErr := validateWorkflowRequest(workflow); svcErr != nil {
		return nil, svcErr
	}

	existing, svcErr := ws.GetWorkflow(workflowID)
	if svcErr != nil {
		return nil, svcErr
	}

	workflow.ID = existing.ID
	workflow.CreatedAt = existing.CreatedAt
	workflow.RunCount = existing.RunCount
	workflow.LastRun = existing.LastRun
	prepareDocument(workflow)

	if svcErr := ws.save(workflow); svcErr != nil {
		return nil, svcErr
	}
	return workflow, nil
}

// DeleteWorkflow deletes a workflow and its run history.
func (ws *workflowService) DeleteWorkflow(workflowID string) *serviceerror.ServiceError {
	if strings.TrimSpace(workflowID) == "" {
		return &ErrorMissingWorkflowID
	}

	if err := ws.store.DeleteWorkflow(workflowID); err != nil {
		if errors.Is(err, store.ErrWorkflowNotFound) {
			return &ErrorWorkflowNotFound
		}
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
			Error("Failed to delete workflow", log.String(log.LoggerKeyWorkflowID, workflowID), log.Error(err))
		return &ErrorInternalServerError
	}

	for _, listener := range ws.listeners {
		listener.OnWorkflowDeleted(workflowID)
	}
	return nil
}

// ValidateWorkflow reports every validation issue of a workflow document.
func (ws *workflowService) ValidateWorkflow(workflow *model.Workflow) *ValidationResponse {
	issues := validator.Validate(workflow, ws.registry)
	return &ValidationResponse{
		Valid:  len(issues) == 0,
		Issues: issues,
	}
}

// AddNode adds a node to a stored workflow.
func (ws *workflowService) AddNode(workflowID string,
	node model.WorkflowNode) (*model.WorkflowNode, *serviceerror.ServiceError) {
	var added model.WorkflowNode
	svcErr := ws.edit(workflowID, func(g *graph.Graph) error {
		result, err := g.AddNode(node)
		if err == nil {
			added = *result
		}
		return err
	})
	if svcErr != nil {
		return nil, svcErr
	}
	return &added, nil
}

// UpdateNode changes the label or properties of a node.
func (ws *workflowService) UpdateNode(workflowID, nodeID string,
	patch graph.NodePatch) (*model.WorkflowNode, *serviceerror.ServiceError) {
	var updated model.WorkflowNode
	svcErr := ws.edit(workflowID, func(g *graph.Graph) error {
		result, err := g.UpdateNode(nodeID, patch)
		if err == nil {
			updated = *result
		}
		return err
	})
	if svcErr != nil {
		return nil, svcErr
	}
	return &updated, nil
}

// RemoveNode removes a node and every edge touching it.
func (ws *workflowService) RemoveNode(workflowID, nodeID string) *serviceerror.ServiceError {
	return ws.edit(workflowID, func(g *graph.Graph) error {
		return g.RemoveNode(nodeID)
	})
}

// AddEdge connects two ports of a stored workflow.
func (ws *workflowService) AddEdge(workflowID string, edge model.Edge) (*model.Edge, *serviceerror.ServiceError) {
	var added model.Edge
	svcErr := ws.edit(workflowID, func(g *graph.Graph) error {
		result, err := g.AddEdge(edge)
		if err == nil {
			added = *result
		}
		return err
	})
	if svcErr != nil {
		return nil, svcErr
	}
	return &added, nil
}

// RemoveEdge removes an edge from a stored workflow.
func (ws *workflowService) RemoveEdge(workflowID, edgeID string) *serviceerror.ServiceError {
	return ws.edit(workflowID, func(g *graph.Graph) error {
		return g.RemoveEdge(edgeID)
	})
}

// edit applies a graph operation to a stored workflow and saves the result.
func (ws *workflowService) edit(workflowID string, apply func(g *graph.Graph) error) *serviceerror.ServiceError {
	workflow, svcErr := ws.GetWorkflow(workflowID)
	if svcErr != nil {
		return svcErr
	}

	if err := apply(graph.New(workflow, ws.registry)); err != nil {
		return graphEditError(err)
	}
	return ws.save(workflow)
}

// save validates and updates a stored workflow and notifies the listeners.
func (ws *workflowService) save(workflow *model.Workflow) *serviceerror.ServiceError {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	if svcErr := ws.checkSavable(workflow); svcErr != nil {
		return svcErr
	}

	workflow.UpdatedAt = ws.now().UTC()
	if err := ws.store.UpdateWorkflow(workflow); err != nil {
		if errors.Is(err, store.ErrWorkflowNotFound) {
			return &ErrorWorkflowNotFound
		}
		logger.Error("Failed to update workflow", log.String(log.LoggerKeyWorkflowID, workflow.ID), log.Error(err))
		return &ErrorInternalServerError
	}
	ws.notifySaved(workflow)
	return nil
}

// checkSavable rejects active workflows with validation issues. Inactive
// workflows are drafts and may be saved while incomplete.
func (ws *workflowService) checkSavable(workflow *model.Workflow) *serviceerror.ServiceError {
	if !workflow.Active {
		return nil
	}
	if err := validator.Check(workflow, ws.registry); err != nil {
		return serviceerror.CustomServiceError(ErrorInvalidWorkflow, err.Error())
	}
	return nil
}

func (ws *workflowService) notifySaved(workflow *model.Workflow) {
	for _, listener := range ws.listeners {
		listener.OnWorkflowSaved(workflow.Clone())
	}
}

// RefreshTriggers loads the active workflows into every trigger listener.
func (ws *workflowService) RefreshTriggers() *serviceerror.ServiceError {
	workflows, err := ws.store.ListActiveWorkflows()
	if err != nil {
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
			Error("Failed to load active workflows", log.Error(err))
		return &ErrorInternalServerError
	}
	for _, listener := range ws.listeners {
		listener.Sync(workflows)
	}
	return nil
}

// ExecuteWorkflow starts a run and returns its id without waiting for it to
// finish. The run outlives ctx; use CancelRun to stop it.
func (ws *workflowService) ExecuteWorkflow(ctx context.Context, workflowID string,
	event trigger.Event) (string, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyWorkflowID, workflowID))

	workflow, svcErr := ws.GetWorkflow(workflowID)
	if svcErr != nil {
		return "", svcErr
	}
	if event.Source != trigger.SourceManual && !workflow.Active {
		return "", &ErrorWorkflowInactive
	}
	if ws.isShuttingDown() {
		return "", serviceerror.CustomServiceError(ErrorRunStartFailed, "The service is shutting down")
	}

	handle, err := ws.engine.Start(context.WithoutCancel(ctx), engine.ExecutionRequest{
		Workflow:      workflow,
		TriggerNodeID: event.NodeID,
		Payload:       event.Payload,
	})
	if err != nil {
		switch {
		case errors.Is(err, validator.ErrValidation):
			return "", serviceerror.CustomServiceError(ErrorInvalidWorkflow, err.Error())
		case errors.Is(err, engine.ErrInvalidTrigger):
			return "", serviceerror.CustomServiceError(ErrorInvalidTrigger, err.Error())
		}
		logger.Error("Failed to start workflow run", log.Error(err))
		return "", &ErrorRunStartFailed
	}

	ws.track(workflowID, handle)
	logger.Info("Workflow run started", log.String(log.LoggerKeyRunID, handle.RunID),
		log.String("source", string(event.Source)))
	return handle.RunID, nil
}

// LaunchWorkflow starts a run on behalf of a trigger.
func (ws *workflowService) LaunchWorkflow(ctx context.Context, workflowID string,
	event trigger.Event) (string, error) {
	runID, svcErr := ws.ExecuteWorkflow(ctx, workflowID, event)
	if svcErr != nil {
		return "", errors.New(svcErr.Code + ": " + svcErr.ErrorDescription)
	}
	return runID, nil
}

// track keeps a run cancellable until it finishes and then records it on the workflow.
// A run started while the service shuts down is cancelled and not waited for.
func (ws *workflowService) track(workflowID string, handle *engine.RunHandle) {
	ws.mutex.Lock()
	ws.activeRuns[handle.RunID] = handle
	tracked := !ws.shuttingDown
	if tracked {
		ws.runs.Add(1)
	} else {
		handle.Cancel()
	}
	ws.mutex.Unlock()

	go func() {
		if tracked {
			defer ws.runs.Done()
		}
		<-handle.Done()

		ws.mutex.Lock()
		delete(ws.activeRuns, handle.RunID)
		ws.mutex.Unlock()

		finishedAt := ws.now().UTC()
		if result := handle.Result(); result != nil {
			finishedAt = result.EndTime
		}
		if err := ws.store.RecordRun(workflowID, finishedAt); err != nil {
			log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
				Warn("Failed to record run on workflow", log.String(log.LoggerKeyWorkflowID, workflowID),
					log.String(log.LoggerKeyRunID, handle.RunID), log.Error(err))
		}
	}()
}

func (ws *workflowService) isShuttingDown() bool {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()
	return ws.shuttingDown
}

// GetRun returns a run record.
func (ws *workflowService) GetRun(runID string) (*model.ExecutionRecord, *serviceerror.ServiceError) {
	record, err := ws.runStore.GetRun(runID)
	if err != nil {
		if errors.Is(err, runstore.ErrRunNotFound) {
			return nil, &ErrorRunNotFound
		}
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
			Error("Failed to get run", log.String(log.LoggerKeyRunID, runID), log.Error(err))
		return nil, &ErrorInternalServerError
	}
	return record, nil
}

// ListRuns returns the run history of a workflow, newest first. A non
// positive limit falls back to the configured history limit.
func (ws *workflowService) ListRuns(workflowID string, limit int) (*RunListResponse, *serviceerror.ServiceError) {
	if _, svcErr := ws.GetWorkflow(workflowID); svcErr != nil {
		return nil, svcErr
	}
	if limit <= 0 {
		limit = ws.historyLimit
	}

	records, err := ws.runStore.ListRuns(workflowID, limit)
	if err != nil {
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
			Error("Failed to list runs", log.String(log.LoggerKeyWorkflowID, workflowID), log.Error(err))
		return nil, &ErrorInternalServerError
	}
	return &RunListResponse{
		WorkflowID: workflowID,
		Count:      len(records),
		Runs:       records,
	}, nil
}

// CancelRun requests cancellation of an active run.
func (ws *workflowService) CancelRun(runID string) *serviceerror.ServiceError {
	ws.mutex.Lock()
	handle, ok := ws.activeRuns[runID]
	ws.mutex.Unlock()

	if !ok {
		if _, svcErr := ws.GetRun(runID); svcErr != nil {
			return svcErr
		}
		return &ErrorRunNotActive
	}

	handle.Cancel()
	log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
		Info("Run cancellation requested", log.String(log.LoggerKeyRunID, runID))
	return nil
}

// Shutdown rejects new runs, cancels every active run and waits for them to finish or the context to end.
func (ws *workflowService) Shutdown(ctx context.Context) error {
	ws.mutex.Lock()
	ws.shuttingDown = true
	for _, handle := range ws.activeRuns {
		handle.Cancel()
	}
	ws.mutex.Unlock()

	done := make(chan struct{})
	go func() {
		ws.runs.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// validateWorkflowRequest checks the fields required on every stored workflow.
func validateWorkflowRequest(workflow *model.Workflow) *serviceerror.ServiceError {
	if workflow == nil {
		return &ErrorInvalidRequestFormat
	}
	if strings.TrimSpace(workflow.Name) == "" {
		return serviceerror.CustomServiceError(ErrorInvalidRequestFormat, "Workflow name is required")
	}
	return nil
}

// prepareDocument fills empty collections and generates missing edge ids.
func prepareDocument(workflow *model.Workflow) {
	if workflow.Nodes == nil {
		workflow.Nodes = make([]model.WorkflowNode, 0)
	}
	if workflow.Edges == nil {
		workflow.Edges = make([]model.Edge, 0)
	}
	for i := range workflow.Nodes {
		if workflow.Nodes[i].Properties == nil {
			workflow.Nodes[i].Properties = make(map[string]any)
		}
	}
	for i := range workflow.Edges {
		if workflow.Edges[i].ID == "" {
			workflow.Edges[i].ID = utils.GenerateUUID()
		}
	}
}

// graphEditError maps a graph operation failure to a service error.
func graphEditError(err error) *serviceerror.ServiceError {
	switch {
	case errors.Is(err, graph.ErrNodeNotFound):
		return serviceerror.CustomServiceError(ErrorNodeNotFound, err.Error())
	case errors.Is(err, graph.ErrEdgeNotFound):
		return serviceerror.CustomServiceError(ErrorEdgeNotFound, err.Error())
	case errors.Is(err, nodetype.ErrUnknownNodeType):
		return serviceerror.CustomServiceError(ErrorNodeTypeNotFound, err.Error())
	default:
		return serviceerror.CustomServiceError(ErrorInvalidGraphEdit, err.Error())
	}
}
