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

// Package model defines the workflow aggregate and run records.
package model

import (
	"time"

	"github.com/opsdeck/flowcore/internal/system/utils"
)

// RunStatus is the status of a workflow run.
type RunStatus string

// Run statuses.
const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusSuccess   RunStatus = "success"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed from the status.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusSuccess || s == RunStatusFailed || s == RunStatusCancelled
}

// WorkflowNode is an instance of a node type inside a workflow.
type WorkflowNode struct {
	ID         string         `json:"id" yaml:"id"`
	Type       string         `json:"type" yaml:"type"`
	Label      string         `json:"label,omitempty" yaml:"label,omitempty"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

// Endpoint is one end of an edge.
type Endpoint struct {
	NodeID string `json:"nodeId" yaml:"nodeId"`
	Port   string `json:"port" yaml:"port"`
}

// Edge is a directed connection from an output port to an input port.
type Edge struct {
	ID     string   `json:"id" yaml:"id"`
	Source Endpoint `json:"source" yaml:"source"`
	Target Endpoint `json:"target" yaml:"target"`
}

// Schedule is the optional cron schedule of a workflow.
type Schedule struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Cron    string `json:"cron,omitempty" yaml:"cron,omitempty"`
}

// Workflow is the aggregate root persisted and executed as a unit.
type Workflow struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Nodes       []WorkflowNode `json:"nodes" yaml:"nodes"`
	Edges       []Edge         `json:"edges" yaml:"edges"`
	Active      bool           `json:"active" yaml:"active"`
	Schedule    *Schedule      `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	Tags        []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt   time.Time      `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt" yaml:"updatedAt"`
	RunCount    int            `json:"runCount,omitempty" yaml:"runCount,omitempty"`
	LastRun     *time.Time     `json:"lastRun,omitempty" yaml:"lastRun,omitempty"`
}

// Node returns the node with the given id.
func (w *Workflow) Node(id string) (*WorkflowNode, bool) {
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			return &w.Nodes[i], true
		}
	}
	return nil, false
}

// Edge returns the edge with the given id.
func (w *Workflow) Edge(id string) (*Edge, bool) {
	for i := range w.Edges {
		if w.Edges[i].ID == id {
			return &w.Edges[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the workflow.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}
	clone := *w
	clone.Nodes = make([]WorkflowNode, len(w.Nodes))
	for i, node := range w.Nodes {
		node.Properties = utils.DeepCopyMap(node.Properties)
		clone.Nodes[i] = node
	}
	clone.Edges = append([]Edge(nil), w.Edges...)
	clone.Tags = append([]string(nil), w.Tags...)
	if w.Schedule != nil {
		schedule := *w.Schedule
		clone.Schedule = &schedule
	}
	if w.LastRun != nil {
		lastRun := *w.LastRun
		clone.LastRun = &lastRun
	}
	return &clone
}

// WorkflowSummary is the list view of a workflow.
type WorkflowSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Active      bool       `json:"active"`
	Tags        []string   `json:"tags,omitempty"`
	NodeCount   int        `json:"nodeCount"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	RunCount    int        `json:"runCount"`
	LastRun     *time.Time `json:"lastRun,omitempty"`
}

// ExecutionRecord is the persisted record of a single run.
type ExecutionRecord struct {
	ID           string     `json:"id"`
	WorkflowID   string     `json:"workflowId"`
	Status       RunStatus  `json:"status"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	Duration     int64      `json:"duration"`
	NodeCount    int        `json:"nodeCount"`
	FailedNodeID string     `json:"failedNodeId,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// RunOutcome carries the values recorded when a run is finalized.
type RunOutcome struct {
	Status       RunStatus
	NodeCount    int
	FailedNodeID string
	Error        string
}
