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
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNodeExecution is matched by every node failure, timeouts included.
	ErrNodeExecution = errors.New("node execution failed")
	// ErrTimeout is matched when a node exceeds the configured timeout.
	ErrTimeout = errors.New("node execution timed out")
	// ErrLoopLimitExceeded is matched when a loop receives more items than allowed.
	ErrLoopLimitExceeded = errors.New("loop limit exceeded")
	// ErrRunCancelled is returned when a run is cancelled before completion.
	ErrRunCancelled = errors.New("run cancelled")
	// ErrInvalidTrigger is returned when the requested trigger node cannot start the run.
	ErrInvalidTrigger = errors.New("invalid trigger node")
	// ErrInvalidTransition is returned for a run status change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid run status transition")
	// ErrDeadlock is returned when pending nodes can never become ready.
	ErrDeadlock = errors.New("workflow cannot make progress")
)

// NodeExecutionError reports a failed node invocation.
type NodeExecutionError struct {
	NodeID   string
	NodeType string
	Err      error
}

// Error implements the error interface.
func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %s (%s) failed: %v", e.NodeID, e.NodeType, e.Err)
}

// Unwrap returns the executor error.
func (e *NodeExecutionError) Unwrap() error {
	return e.Err
}

// Is matches ErrNodeExecution.
func (e *NodeExecutionError) Is(target error) bool {
	return target == ErrNodeExecution
}

// TimeoutError reports a node invocation that exceeded its timeout.
type TimeoutError struct {
	NodeID  string
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("node %s timed out after %s", e.NodeID, e.Timeout)
}

// Is matches ErrTimeout and ErrNodeExecution.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout || target == ErrNodeExecution
}

// LoopLimitExceededError reports a loop whose collection is larger than the configured limit.
type LoopLimitExceededError struct {
	NodeID string
	Count  int
	Limit  int
}

// Error implements the error interface.
func (e *LoopLimitExceededError) Error() string {
	return fmt.Sprintf("loop %s received %d items, limit is %d", e.NodeID, e.Count, e.Limit)
}

// Is matches ErrLoopLimitExceeded.
func (e *LoopLimitExceededError) Is(target error) bool {
	return target == ErrLoopLimitExceeded
}

// failedNodeID returns the id of the node responsible for an error, if known.
func failedNodeID(err error) string {
	var execErr *NodeExecutionError
	if errors.As(err, &execErr) {
		return execErr.NodeID
	}
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return timeoutErr.NodeID
	}
	var loopErr *LoopLimitExceededError
	if errors.As(err, &loopErr) {
		return loopErr.NodeID
	}
	return ""
}
