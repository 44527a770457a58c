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

package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/system/log"
	"github.com/opsdeck/flowcore/internal/workflow/model"
)

// nodeState is the scheduling state of a node within one pass over a scope.
type nodeState int

const (
	nodePending nodeState = iota
	nodeRunning
	nodeExecuted
	nodeSkipped
)

// completion is sent by a node goroutine when the node has finished.
type completion struct {
	nodeID string
	err    error
}

// invocation is the outcome of a single executor call.
type invocation struct {
	result *nodetype.NodeResult
	err    error
}

// run is the state of a single workflow execution.
type run struct {
	engine      *Engine
	id          string
	workflow    *model.Workflow
	request     ExecutionRequest
	plan        *plan
	state       *runState
	logger      *log.Logger
	invocations map[string]int
	mutex       sync.Mutex
}

func newRun(e *Engine, runID string, workflow *model.Workflow, req ExecutionRequest) *run {
	return &run{
		engine:      e,
		id:          runID,
		workflow:    workflow,
		request:     req,
		plan:        buildPlan(workflow, e.registry),
		state:       newRunState(),
		invocations: make(map[string]int),
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
			log.String(log.LoggerKeyWorkflowID, workflow.ID), log.String(log.LoggerKeyRunID, runID)),
	}
}

// execute runs the workflow to a terminal status.
func (r *run) execute(ctx context.Context) *RunResult {
	result := &RunResult{
		RunID:      r.id,
		WorkflowID: r.workflow.ID,
		StartTime:  time.Now().UTC(),
	}

	var err error
	root := newExecutionContext(nil)
	if transitionErr := r.state.Transition(model.RunStatusRunning); transitionErr != nil {
		err = transitionErr
	} else {
		r.logger.Info("Workflow run started", log.Int("nodes", len(r.workflow.Nodes)))
		err = r.runScope(ctx, r.plan.root, root)
	}

	final := model.RunStatusSuccess
	switch {
	case errors.Is(err, ErrRunCancelled):
		final = model.RunStatusCancelled
	case err != nil:
		final = model.RunStatusFailed
	}
	if transitionErr := r.state.Transition(final); transitionErr != nil {
		r.logger.Error("Unexpected run status transition", log.Error(transitionErr))
	}

	r.mutex.Lock()
	result.Invocations = make(map[string]int, len(r.invocations))
	for nodeID, count := range r.invocations {
		result.Invocations[nodeID] = count
	}
	r.mutex.Unlock()

	result.Status = r.state.Status()
	result.NodeCount = len(result.Invocations)
	result.Outputs = root.Snapshot()
	result.EndTime = time.Now().UTC()
	if err != nil {
		result.Err = err
		result.Error = err.Error()
		result.FailedNodeID = failedNodeID(err)
	}

	r.logger.Info("Workflow run finished", log.String("status", string(result.Status)),
		log.Int("executedNodes", result.NodeCount), log.Duration("elapsed", result.EndTime.Sub(result.StartTime)))
	return result
}

// runScope schedules the members of a scope until every member is executed or
// skipped, a node fails, or the run is cancelled. In-flight nodes always finish
// before runScope returns. A cancellation that arrives once every member has
// finished does not change the outcome.
func (r *run) runScope(ctx context.Context, s *scope, execCtx *executionContext) error {
	states := make(map[string]nodeState, len(s.members))
	completions := make(chan completion, len(s.members))
	group := new(errgroup.Group)
	group.SetLimit(r.engine.config.MaxConcurrency)

	var failure error
	cancelled := false
	// interrupted is set when a nested loop stopped before its last iteration.
	interrupted := false
	inFlight := 0
	ctxDone := ctx.Done()

	for {
		if failure == nil && !cancelled {
			if ctx.Err() != nil {
				cancelled = true
			} else {
				for _, nodeID := range r.schedule(s, states, execCtx) {
					inFlight++
					group.Go(func() error {
						completions <- completion{nodeID: nodeID, err: r.runNode(ctx, nodeID, execCtx)}
						return nil
					})
				}
			}
		}
		if inFlight == 0 {
			break
		}

		select {
		case c := <-completions:
			inFlight--
			states[c.nodeID] = nodeExecuted
			switch {
			case c.err == nil:
			case errors.Is(c.err, ErrRunCancelled):
				cancelled = true
				interrupted = true
			case failure == nil:
				failure = c.err
				r.logger.Error("Node failed, halting run", log.String(log.LoggerKeyNodeID, c.nodeID),
					log.Error(c.err))
			}
		case <-ctxDone:
			cancelled = true
			ctxDone = nil
		}
	}
	_ = group.Wait()

	pending := make([]string, 0)
	for _, nodeID := range s.members {
		if states[nodeID] == nodePending {
			pending = append(pending, nodeID)
		}
	}

	switch {
	case failure != nil:
		return failure
	case interrupted || (cancelled && len(pending) > 0):
		return ErrRunCancelled
	case len(pending) > 0:
		return fmt.Errorf("%w: nodes %s are waiting on each other", ErrDeadlock, strings.Join(pending, ", "))
	}
	return nil
}

// schedule marks skipped nodes and returns the members ready to execute, which
// are marked running. Skipping repeats until nothing changes so that a dead path
// propagates through the whole scope at once.
func (r *run) schedule(s *scope, states map[string]nodeState, execCtx *executionContext) []string {
	ready := make([]string, 0)
	for changed := true; changed; {
		changed = false
		for _, nodeID := range s.members {
			if states[nodeID] != nodePending || !r.dependenciesResolved(s, states, nodeID) {
				continue
			}
			if r.isActive(s, nodeID, execCtx) {
				ready = append(ready, nodeID)
				states[nodeID] = nodeRunning
				continue
			}
			states[nodeID] = nodeSkipped
			changed = true
			r.logger.Debug("Skipping node on inactive path", log.String(log.LoggerKeyNodeID, nodeID))
		}
	}
	return ready
}

// dependenciesResolved reports whether every source the node waits on has
// finished. Sources outside the scope were resolved before the scope started.
func (r *run) dependenciesResolved(s *scope, states map[string]nodeState, nodeID string) bool {
	for _, edge := range s.waits[nodeID] {
		if !s.memberSet[edge.Source.NodeID] {
			continue
		}
		if state := states[edge.Source.NodeID]; state != nodeExecuted && state != nodeSkipped {
			return false
		}
	}
	return true
}

// isActive reports whether a node with resolved dependencies should execute.
func (r *run) isActive(s *scope, nodeID string, execCtx *executionContext) bool {
	incoming := r.plan.incoming[nodeID]
	if len(incoming) == 0 {
		if s.owner != "" {
			return false
		}
		definition := r.plan.types[nodeID]
		if definition.IsTrigger() && r.request.TriggerNodeID != "" {
			return nodeID == r.request.TriggerNodeID
		}
		return true
	}
	for _, edge := range incoming {
		if _, ok := execCtx.Get(edge.Source.NodeID, edge.Source.Port); ok {
			return true
		}
	}
	return false
}

// runNode executes a node and writes its outputs to the execution context.
func (r *run) runNode(ctx context.Context, nodeID string, execCtx *executionContext) error {
	node := r.plan.nodes[nodeID]
	definition := r.plan.types[nodeID]

	req := &nodetype.ExecutionRequest{
		RunID:      r.id,
		WorkflowID: r.workflow.ID,
		NodeID:     nodeID,
		Inputs:     r.gatherInputs(nodeID, definition, execCtx),
		Properties: definition.ResolveProperties(node.Properties),
		Trigger:    r.request.Payload,
	}

	r.mutex.Lock()
	r.invocations[nodeID]++
	r.mutex.Unlock()

	if r.logger.IsDebugEnabled() {
		r.logger.Debug("Executing node", log.String(log.LoggerKeyNodeID, nodeID),
			log.String(log.LoggerKeyNodeType, definition.Type))
	}

	result, err := r.invoke(ctx, node, definition, req)
	if err != nil {
		return err
	}

	switch definition.Kind {
	case nodetype.KindBranch:
		if result.Decision == nil {
			return &NodeExecutionError{NodeID: nodeID, NodeType: definition.Type,
				Err: errors.New("branch node returned no decision")}
		}
		port := nodetype.PortFalse
		if *result.Decision {
			port = nodetype.PortTrue
		}
		execCtx.Set(nodeID, port, result.Outputs[port])
	case nodetype.KindLoop:
		return r.runLoop(ctx, nodeID, result.Items, execCtx)
	default:
		for _, port := range definition.Outputs {
			execCtx.Set(nodeID, port.Name, result.Outputs[port.Name])
		}
	}
	return nil
}

// runLoop runs the body of a loop node once per item and then fires the completed port.
func (r *run) runLoop(ctx context.Context, loopID string, items []any, execCtx *executionContext) error {
	if limit := r.engine.config.LoopLimit; limit > 0 && len(items) > limit {
		return &LoopLimitExceededError{NodeID: loopID, Count: len(items), Limit: limit}
	}

	body := r.plan.loops[loopID]
	for index, item := range items {
		if ctx.Err() != nil {
			return ErrRunCancelled
		}
		r.logger.Debug("Starting loop iteration", log.String(log.LoggerKeyNodeID, loopID), log.Int("index", index))

		iteration := newExecutionContext(execCtx)
		iteration.Set(loopID, nodetype.PortItem, item)
		if err := r.runScope(ctx, body, iteration); err != nil {
			return err
		}
	}

	execCtx.Set(loopID, nodetype.PortCompleted, items)
	return nil
}

// gatherInputs collects the values of every input port. Ports without an
// active edge receive nodetype.Absent and multi-edge ports receive a []any.
func (r *run) gatherInputs(nodeID string, definition *nodetype.NodeType,
	execCtx *executionContext) map[string]any {
	inputs := make(map[string]any, len(definition.Inputs))
	for _, port := range definition.Inputs {
		values := make([]any, 0)
		for _, edge := range r.plan.incoming[nodeID] {
			if edge.Target.Port != port.Name {
				continue
			}
			if value, ok := execCtx.Get(edge.Source.NodeID, edge.Source.Port); ok {
				values = append(values, value)
			}
		}

		switch {
		case len(values) == 0:
			inputs[port.Name] = nodetype.Absent
		case port.Multiple:
			inputs[port.Name] = values
		default:
			inputs[port.Name] = values[0]
		}
	}
	return inputs
}

// invoke calls the executor under the node timeout. The node context is
// detached from run cancellation so that an in-flight effect is never interrupted.
func (r *run) invoke(ctx context.Context, node *model.WorkflowNode, definition *nodetype.NodeType,
	req *nodetype.ExecutionRequest) (*nodetype.NodeResult, error) {
	if definition.Executor == nil {
		return nil, &NodeExecutionError{NodeID: node.ID, NodeType: definition.Type,
			Err: errors.New("node type has no executor")}
	}

	timeout := r.engine.config.NodeTimeout
	nodeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	results := make(chan invocation, 1)
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				results <- invocation{err: fmt.Errorf("executor panicked: %v", recovered)}
			}
		}()
		result, err := definition.Executor.Execute(nodeCtx, req)
		results <- invocation{result: result, err: err}
	}()

	select {
	case inv := <-results:
		if inv.err != nil {
			if errors.Is(nodeCtx.Err(), context.DeadlineExceeded) {
				return nil, &TimeoutError{NodeID: node.ID, Timeout: timeout}
			}
			return nil, &NodeExecutionError{NodeID: node.ID, NodeType: definition.Type, Err: inv.err}
		}
		if inv.result == nil {
			inv.result = &nodetype.NodeResult{}
		}
		return inv.result, nil
	case <-nodeCtx.Done():
		return nil, &TimeoutError{NodeID: node.ID, Timeout: timeout}
	}
}
