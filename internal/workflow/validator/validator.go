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

// Package validator performs the static checks a workflow must pass before it is saved or executed.
package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/workflow/model"
	"github.com/opsdeck/flowcore/internal/workflow/trigger"
)

// IssueKind identifies the check that produced a validation issue.
type IssueKind string

// Issue kinds in the order their checks run.
const (
	IssueMissingID               IssueKind = "MissingId"
	IssueDuplicateID             IssueKind = "DuplicateId"
	IssueUnknownNodeType         IssueKind = "UnknownNodeType"
	IssueDanglingEdge            IssueKind = "DanglingEdge"
	IssuePortOccupied            IssueKind = "PortOccupied"
	IssueRequiredPropertyMissing IssueKind = "RequiredPropertyMissing"
	IssueInvalidPropertyValue    IssueKind = "InvalidPropertyValue"
	IssueCycleDetected           IssueKind = "CycleDetected"
	IssueOrphanRequiredInput     IssueKind = "OrphanRequiredInput"
	IssueInvalidSchedule         IssueKind = "InvalidSchedule"
)

var (
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("workflow validation failed")
	// ErrCycleDetected is matched by a ValidationError reporting a cycle.
	ErrCycleDetected = errors.New("cycle detected")
)

// ValidationIssue is a single problem found in a workflow.
type ValidationIssue struct {
	NodeID  string    `json:"nodeId,omitempty"`
	EdgeID  string    `json:"edgeId,omitempty"`
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

// ValidationError reports every issue found in a workflow.
type ValidationError struct {
	Issues []ValidationIssue
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return ErrValidation.Error()
	}
	messages := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		messages = append(messages, issue.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(messages, "; "))
}

// Is matches ErrValidation, and ErrCycleDetected or nodetype.ErrUnknownNodeType
// when an issue of the corresponding kind is present.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return true
	case ErrCycleDetected:
		return e.HasKind(IssueCycleDetected)
	case nodetype.ErrUnknownNodeType:
		return e.HasKind(IssueUnknownNodeType)
	}
	return false
}

// HasKind reports whether an issue of the given kind is present.
func (e *ValidationError) HasKind(kind IssueKind) bool {
	for _, issue := range e.Issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}

// Check validates the workflow and returns a *ValidationError when any issue is found.
func Check(workflow *model.Workflow, registry nodetype.RegistryInterface) error {
	issues := Validate(workflow, registry)
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

// Validate runs every check and returns the complete list of issues.
func Validate(workflow *model.Workflow, registry nodetype.RegistryInterface) []ValidationIssue {
	v := &validation{
		workflow: workflow,
		registry: registry,
		types:    make(map[string]*nodetype.NodeType, len(workflow.Nodes)),
		nodes:    make(map[string]*model.WorkflowNode, len(workflow.Nodes)),
		issues:   make([]ValidationIssue, 0),
	}
	for i := range workflow.Nodes {
		node := &workflow.Nodes[i]
		if _, seen := v.nodes[node.ID]; !seen {
			v.nodes[node.ID] = node
		}
	}

	v.checkIDs()
	v.checkNodeTypes()
	v.checkEdges()
	v.checkRequiredProperties()
	v.checkPropertyValues()
	v.checkCycles()
	v.checkOrphanInputs()
	v.checkSchedules()
	return v.issues
}

// validation holds the state shared by the checks of a single Validate call.
type validation struct {
	workflow *model.Workflow
	registry nodetype.RegistryInterface
	types    map[string]*nodetype.NodeType
	nodes    map[string]*model.WorkflowNode
	issues   []ValidationIssue
}

func (v *validation) report(kind IssueKind, nodeID, edgeID, format string, args ...any) {
	v.issues = append(v.issues, ValidationIssue{
		NodeID:  nodeID,
		EdgeID:  edgeID,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *validation) checkIDs() {
	seenNodes := make(map[string]bool, len(v.workflow.Nodes))
	for i, node := range v.workflow.Nodes {
		if node.ID == "" {
			v.report(IssueMissingID, "", "", "node at position %d has no id", i)
			continue
		}
		if seenNodes[node.ID] {
			v.report(IssueDuplicateID, node.ID, "", "node id %q is used more than once", node.ID)
		}
		seenNodes[node.ID] = true
	}

	seenEdges := make(map[string]bool, len(v.workflow.Edges))
	for i, edge := range v.workflow.Edges {
		if edge.ID == "" {
			v.report(IssueMissingID, "", "", "edge at position %d has no id", i)
			continue
		}
		if seenEdges[edge.ID] {
			v.report(IssueDuplicateID, "", edge.ID, "edge id %q is used more than once", edge.ID)
		}
		seenEdges[edge.ID] = true
	}
}

func (v *validation) checkNodeTypes() {
	for _, node := range v.workflow.Nodes {
		definition, ok := v.registry.Get(node.Type)
		if !ok {
			v.report(IssueUnknownNodeType, node.ID, "", "node %q has unknown type %q", node.ID, node.Type)
			continue
		}
		if _, seen := v.types[node.ID]; !seen {
			v.types[node.ID] = definition
		}
	}
}

func (v *validation) checkEdges() {
	inbound := make(map[model.Endpoint]int)
	for _, edge := range v.workflow.Edges {
		if !v.edgeResolves(edge) {
			continue
		}
		inbound[edge.Target]++
		if inbound[edge.Target] != 2 {
			continue
		}
		port, _ := v.types[edge.Target.NodeID].InputPort(edge.Target.Port)
		if !port.Multiple {
			v.report(IssuePortOccupied, edge.Target.NodeID, edge.ID,
				"input %q of node %q accepts a single edge", edge.Target.Port, edge.Target.NodeID)
		}
	}
}

// edgeResolves reports dangling edges and returns whether both endpoints resolve.
func (v *validation) edgeResolves(edge model.Edge) bool {
	if _, ok := v.nodes[edge.Source.NodeID]; !ok {
		v.report(IssueDanglingEdge, "", edge.ID, "edge %q references missing source node %q",
			edge.ID, edge.Source.NodeID)
		return false
	}
	if _, ok := v.nodes[edge.Target.NodeID]; !ok {
		v.report(IssueDanglingEdge, "", edge.ID, "edge %q references missing target node %q",
			edge.ID, edge.Target.NodeID)
		return false
	}

	sourceType, sourceKnown := v.types[edge.Source.NodeID]
	targetType, targetKnown := v.types[edge.Target.NodeID]
	if !sourceKnown || !targetKnown {
		return false
	}
	if _, ok := sourceType.OutputPort(edge.Source.Port); !ok {
		v.report(IssueDanglingEdge, edge.Source.NodeID, edge.ID, "edge %q references missing output %q of node %q",
			edge.ID, edge.Source.Port, edge.Source.NodeID)
		return false
	}
	if _, ok := targetType.InputPort(edge.Target.Port); !ok {
		v.report(IssueDanglingEdge, edge.Target.NodeID, edge.ID, "edge %q references missing input %q of node %q",
			edge.ID, edge.Target.Port, edge.Target.NodeID)
		return false
	}
	return true
}

func (v *validation) checkRequiredProperties() {
	for _, node := range v.workflow.Nodes {
		definition, ok := v.types[node.ID]
		if !ok {
			continue
		}
		for _, prop := range definition.Properties {
			if !prop.Required {
				continue
			}
			if !nodetype.IsEmptyValue(node.Properties[prop.Name]) || !nodetype.IsEmptyValue(prop.Default) {
				continue
			}
			v.report(IssueRequiredPropertyMissing, node.ID, "", "node %q is missing required property %q",
				node.ID, prop.Name)
		}
	}
}

func (v *validation) checkPropertyValues() {
	for _, node := range v.workflow.Nodes {
		definition, ok := v.types[node.ID]
		if !ok {
			continue
		}
		for _, prop := range definition.Properties {
			value, present := node.Properties[prop.Name]
			if !present || nodetype.IsEmptyValue(value) {
				continue
			}
			if err := checkPropertyValue(prop, value); err != nil {
				v.report(IssueInvalidPropertyValue, node.ID, "", "property %q of node %q: %s",
					prop.Name, node.ID, err.Error())
			}
		}
	}
}

func (v *validation) checkCycles() {
	exempt := loopBackEdges(v.workflow, v.types)
	adjacency := make(map[string][]model.Edge)
	for _, edge := range v.workflow.Edges {
		if exempt[edge.ID] {
			continue
		}
		if _, ok := v.nodes[edge.Source.NodeID]; !ok {
			continue
		}
		if _, ok := v.nodes[edge.Target.NodeID]; !ok {
			continue
		}
		adjacency[edge.Source.NodeID] = append(adjacency[edge.Source.NodeID], edge)
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(v.nodes))
	stack := make([]string, 0)

	var visit func(nodeID string)
	visit = func(nodeID string) {
		state[nodeID] = visiting
		stack = append(stack, nodeID)
		for _, edge := range adjacency[nodeID] {
			next := edge.Target.NodeID
			switch state[next] {
			case unvisited:
				visit(next)
			case visiting:
				v.report(IssueCycleDetected, next, edge.ID, "cycle detected: %s", describeCycle(stack, next))
			}
		}
		stack = stack[:len(stack)-1]
		state[nodeID] = done
	}

	for _, node := range v.workflow.Nodes {
		if state[node.ID] == unvisited {
			visit(node.ID)
		}
	}
}

func describeCycle(stack []string, start string) string {
	for i, nodeID := range stack {
		if nodeID == start {
			path := append(append([]string(nil), stack[i:]...), start)
			return strings.Join(path, " -> ")
		}
	}
	return start
}

func (v *validation) checkOrphanInputs() {
	connected := make(map[model.Endpoint]bool)
	for _, edge := range v.workflow.Edges {
		connected[edge.Target] = true
	}
	for _, node := range v.workflow.Nodes {
		definition, ok := v.types[node.ID]
		if !ok {
			continue
		}
		for _, port := range definition.Inputs {
			if port.Required && !connected[model.Endpoint{NodeID: node.ID, Port: port.Name}] {
				v.report(IssueOrphanRequiredInput, node.ID, "", "required input %q of node %q is not connected",
					port.Name, node.ID)
			}
		}
	}
}

func (v *validation) checkSchedules() {
	if schedule := v.workflow.Schedule; schedule != nil && schedule.Enabled {
		if _, err := trigger.ParseSchedule(schedule.Cron, ""); err != nil {
			v.report(IssueInvalidSchedule, "", "", "workflow schedule: %s", err.Error())
		}
	}

	for _, node := range v.workflow.Nodes {
		definition, ok := v.types[node.ID]
		if !ok || !definition.IsTrigger() {
			continue
		}
		if _, declared := definition.Property(trigger.PropertyCron); !declared {
			continue
		}
		resolved := definition.ResolveProperties(node.Properties)
		cronSpec, _ := resolved[trigger.PropertyCron].(string)
		if cronSpec == "" {
			continue
		}
		timezone, _ := resolved[trigger.PropertyTimezone].(string)
		if _, err := trigger.ParseSchedule(cronSpec, timezone); err != nil {
			v.report(IssueInvalidSchedule, node.ID, "", "node %q: %s", node.ID, err.Error())
		}
	}
}

// LoopBackEdges returns the ids of edges that close a loop: edges entering the
// continue port of a loop node from its own item or completed subtree. Such
// edges are exempt from the acyclic requirement and are not structural
// dependencies. Any other edge closing a cycle through a loop is a cycle.
func LoopBackEdges(workflow *model.Workflow, registry nodetype.RegistryInterface) map[string]bool {
	types := make(map[string]*nodetype.NodeType, len(workflow.Nodes))
	for _, node := range workflow.Nodes {
		if definition, ok := registry.Get(node.Type); ok {
			types[node.ID] = definition
		}
	}
	return loopBackEdges(workflow, types)
}

func loopBackEdges(workflow *model.Workflow, types map[string]*nodetype.NodeType) map[string]bool {
	exempt := make(map[string]bool)
	loopIDs := make([]string, 0)
	for nodeID, definition := range types {
		if definition.Kind == nodetype.KindLoop {
			loopIDs = append(loopIDs, nodeID)
		}
	}
	sort.Strings(loopIDs)

	for _, loopID := range loopIDs {
		subtree := make(map[string]bool)
		queue := make([]string, 0)
		for _, edge := range workflow.Edges {
			if edge.Source.NodeID == loopID &&
				(edge.Source.Port == nodetype.PortItem || edge.Source.Port == nodetype.PortCompleted) {
				queue = append(queue, edge.Target.NodeID)
			}
		}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			if current == loopID || subtree[current] {
				continue
			}
			subtree[current] = true
			for _, edge := range workflow.Edges {
				if edge.Source.NodeID == current {
					queue = append(queue, edge.Target.NodeID)
				}
			}
		}

		for _, edge := range workflow.Edges {
			if edge.Target.NodeID != loopID || edge.Target.Port != nodetype.PortContinue {
				continue
			}
			fromOwnPort := edge.Source.NodeID == loopID &&
				(edge.Source.Port == nodetype.PortItem || edge.Source.Port == nodetype.PortCompleted)
			if subtree[edge.Source.NodeID] || fromOwnPort {
				exempt[edge.ID] = true
			}
		}
	}
	return exempt
}
