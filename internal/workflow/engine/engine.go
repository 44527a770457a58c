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

// Package engine executes workflows: dependency ordered traversal with branching,
// bounded looping, per node timeouts and cancellation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/system/log"
	"github.com/opsdeck/flowcore/internal/workflow/model"
	"github.com/opsdeck/flowcore/internal/workflow/runstore"
	"github.com/opsdeck/flowcore/internal/workflow/validator"
)

const loggerComponentName = "WorkflowEngine"

// Config holds the execution limits of the engine.
type Config struct {
	// LoopLimit is the maximum number of items a loop node may iterate. Zero disables the limit.
	LoopLimit int
	// NodeTimeout bounds every node invocation.
	NodeTimeout time.Duration
	// MaxConcurrency bounds the nodes executing at once within a scope.
	MaxConcurrency int
}

// DefaultConfig returns the default execution limits.
func DefaultConfig() Config {
	return Config{
		LoopLimit:      1000,
		NodeTimeout:    30 * time.Second,
		MaxConcurrency: 8,
	}
}

// ExecutionRequest describes a run to start.
type ExecutionRequest struct {
	Workflow *model.Workflow
	// TriggerNodeID restricts the trigger nodes that start the run. Empty starts every trigger.
	TriggerNodeID string
	// Payload is exposed to every node as the run's trigger value.
	Payload any
}

// RunResult is the outcome of a finished run.
type RunResult struct {
	RunID        string                    `json:"runId"`
	WorkflowID   string                    `json:"workflowId"`
	Status       model.RunStatus           `json:"status"`
	NodeCount    int                       `json:"nodeCount"`
	Invocations  map[string]int            `json:"invocations"`
	FailedNodeID string                    `json:"failedNodeId,omitempty"`
	Error        string                    `json:"error,omitempty"`
	Outputs      map[string]map[string]any `json:"outputs,omitempty"`
	StartTime    time.Time                 `json:"startTime"`
	EndTime      time.Time                 `json:"endTime"`
	Err          error                     `json:"-"`
}

// RunHandle tracks an asynchronously executing run.
type RunHandle struct {
	RunID  string
	cancel context.CancelFunc
	done   chan struct{}
	result *RunResult
}

// Cancel requests cancellation. In-flight nodes finish before the run ends.
func (h *RunHandle) Cancel() {
	h.cancel()
}

// Done is closed when the run has finished.
func (h *RunHandle) Done() <-chan struct{} {
	return h.done
}

// Result returns the run result, or nil while the run is still executing.
func (h *RunHandle) Result() *RunResult {
	select {
	case <-h.done:
		return h.result
	default:
		return nil
	}
}

// Wait blocks until the run finishes or the context ends.
func (h *RunHandle) Wait(ctx context.Context) (*RunResult, error) {
	select {
	case <-h.done:
		return h.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// EngineInterface defines the operations of the execution engine.
type EngineInterface interface {
	Start(ctx context.Context, req ExecutionRequest) (*RunHandle, error)
	Execute(ctx context.Context, req ExecutionRequest) (*RunResult, error)
}

// Engine executes workflows against a node type registry and records runs in a run store.
type Engine struct {
	registry nodetype.RegistryInterface
	runStore runstore.RunStoreInterface
	config   Config
}

// New creates an engine. Zero config values fall back to the defaults.
func New(registry nodetype.RegistryInterface, runStore runstore.RunStoreInterface, config Config) *Engine {
	defaults := DefaultConfig()
	if config.LoopLimit < 0 {
		config.LoopLimit = 0
	} else if config.LoopLimit == 0 {
		config.LoopLimit = defaults.LoopLimit
	}
	if config.NodeTimeout <= 0 {
		config.NodeTimeout = defaults.NodeTimeout
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	return &Engine{
		registry: registry,
		runStore: runStore,
		config:   config,
	}
}

// Start validates the workflow, records a new run and executes it in the
// background. Validation failures return a *validator.ValidationError and no
// run is recorded. Cancelling ctx cancels the run.
func (e *Engine) Start(ctx context.Context, req ExecutionRequest) (*RunHandle, error) {
	if req.Workflow == nil {
		return nil, errors.New("workflow is required")
	}
	if err := validator.Check(req.Workflow, e.registry); err != nil {
		return nil, err
	}
	if err := e.checkTrigger(req); err != nil {
		return nil, err
	}

	workflow := req.Workflow.Clone()
	runID, err := e.runStore.BeginRun(workflow.ID, len(workflow.Nodes))
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	handle := &RunHandle{
		RunID:  runID,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	r := newRun(e, runID, workflow, req)
	go func() {
		defer cancel()
		handle.result = r.execute(runCtx)
		e.complete(handle.result)
		close(handle.done)
	}()
	return handle, nil
}

// Execute starts a run and waits for it to finish.
func (e *Engine) Execute(ctx context.Context, req ExecutionRequest) (*RunResult, error) {
	handle, err := e.Start(ctx, req)
	if err != nil {
		return nil, err
	}
	<-handle.Done()
	return handle.Result(), nil
}

func (e *Engine) checkTrigger(req ExecutionRequest) error {
	if req.TriggerNodeID == "" {
		return nil
	}
	node, ok := req.Workflow.Node(req.TriggerNodeID)
	if !ok {
		return fmt.Errorf("%w: node %s does not exist", ErrInvalidTrigger, req.TriggerNodeID)
	}
	definition, ok := e.registry.Get(node.Type)
	if !ok || !definition.IsTrigger() {
		return fmt.Errorf("%w: node %s is not a trigger", ErrInvalidTrigger, req.TriggerNodeID)
	}
	return nil
}

func (e *Engine) complete(result *RunResult) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyWorkflowID, result.WorkflowID), log.String(log.LoggerKeyRunID, result.RunID))

	err := e.runStore.CompleteRun(result.RunID, model.RunOutcome{
		Status:       result.Status,
		NodeCount:    result.NodeCount,
		FailedNodeID: result.FailedNodeID,
		Error:        result.Error,
	})
	if err != nil {
		logger.Error("Failed to record run completion", log.Error(err))
	}
}
