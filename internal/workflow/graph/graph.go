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

// Package graph provides the structural operations of a workflow graph.
package graph

import (
	"errors"
	"fmt"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/system/utils"
	"github.com/opsdeck/flowcore/internal/workflow/model"
)

// Errors returned by graph operations.
var (
	ErrNodeNotFound   = errors.New("node not found")
	ErrDuplicateNode  = errors.New("node id already exists")
	ErrEdgeNotFound   = errors.New("edge not found")
	ErrDuplicateEdge  = errors.New("edge id already exists")
	ErrPortNotFound   = errors.New("port not found")
	ErrPortOccupied   = errors.New("input port accepts a single edge")
	ErrInvalidNode    = errors.New("invalid node")
	ErrDuplicateRoute = errors.New("edge already connects these ports")
)

// NodePatch describes an update to a workflow node. Nil fields are left unchanged.
type NodePatch struct {
	Label            *string        `json:"label,omitempty"`
	Properties       map[string]any `json:"properties,omitempty"`
	RemoveProperties []string       `json:"removeProperties,omitempty"`
}

// Graph wraps a workflow with structural operations resolved against a node type registry.
type Graph struct {
	workflow *model.Workflow
	registry nodetype.RegistryInterface
}

// New wraps the given workflow. Operations mutate the workflow in place.
func New(workflow *model.Workflow, registry nodetype.RegistryInterface) *Graph {
	return &Graph{
		workflow: workflow,
		registry: registry,
	}
}

// Workflow returns the wrapped workflow.
func (g *Graph) Workflow() *model.Workflow {
	return g.workflow
}

// AddNode adds a node. An empty id is replaced by a generated one.
func (g *Graph) AddNode(node model.WorkflowNode) (*model.WorkflowNode, error) {
	if node.Type == "" {
		return nil, fmt.Errorf("%w: node type is required", ErrInvalidNode)
	}
	if _, ok := g.registry.Get(node.Type); !ok {
		return nil, fmt.Errorf("%w: %s", nodetype.ErrUnknownNodeType, node.Type)
	}
	if node.ID == "" {
		node.ID = utils.GenerateUUID()
	}
	if _, exists := g.workflow.Node(node.ID); exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
	}
	if node.Properties == nil {
		node.Properties = map[string]any{}
	}

	g.workflow.Nodes = append(g.workflow.Nodes, node)
	return &g.workflow.Nodes[len(g.workflow.Nodes)-1], nil
}

// RemoveNode removes a node together with every edge touching it.
func (g *Graph) RemoveNode(nodeID string) error {
	index := -1
	for i, node := range g.workflow.Nodes {
		if node.ID == nodeID {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	g.workflow.Nodes = append(g.workflow.Nodes[:index], g.workflow.Nodes[index+1:]...)

	edges := make([]model.Edge, 0, len(g.workflow.Edges))
	for _, edge := range g.workflow.Edges {
		if edge.Source.NodeID == nodeID || edge.Target.NodeID == nodeID {
			continue
		}
		edges = append(edges, edge)
	}
	g.workflow.Edges = edges
	return nil
}

// UpdateNode applies a patch to the label and properties of a node.
func (g *Graph) UpdateNode(nodeID string, patch NodePatch) (*model.WorkflowNode, error) {
	node, ok := g.workflow.Node(nodeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	if patch.Label != nil {
		node.Label = *patch.Label
	}
	if node.Properties == nil {
		node.Properties = map[string]any{}
	}
	for key, value := range patch.Properties {
		node.Properties[key] = utils.DeepCopyValue(value)
	}
	for _, key := range patch.RemoveProperties {
		delete(node.Properties, key)
	}
	return node, nil
}

// AddEdge connects two ports. Both endpoints must exist on the resolved node
// types and a single valued input port may only receive one edge.
func (g *Graph) AddEdge(edge model.Edge) (*model.Edge, error) {
	if edge.ID == "" {
		edge.ID = utils.GenerateUUID()
	}
	if _, exists := g.workflow.Edge(edge.ID); exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateEdge, edge.ID)
	}

	sourceType, err := g.resolveNodeType(edge.Source.NodeID)
	if err != nil {
		return nil, err
	}
	targetType, err := g.resolveNodeType(edge.Target.NodeID)
	if err != nil {
		return nil, err
	}

	if _, ok := sourceType.OutputPort(edge.Source.Port); !ok {
		return nil, fmt.Errorf("%w: output %q on node %s", ErrPortNotFound, edge.Source.Port, edge.Source.NodeID)
	}
	targetPort, ok := targetType.InputPort(edge.Target.Port)
	if !ok {
		return nil, fmt.Errorf("%w: input %q on node %s", ErrPortNotFound, edge.Target.Port, edge.Target.NodeID)
	}

	incoming := g.NeighborsIn(edge.Target.NodeID, edge.Target.Port)
	for _, existing := range incoming {
		if existing.Source == edge.Source {
			return nil, fmt.Errorf("%w: %s.%s -> %s.%s", ErrDuplicateRoute,
				edge.Source.NodeID, edge.Source.Port, edge.Target.NodeID, edge.Target.Port)
		}
	}
	if !targetPort.Multiple && len(incoming) > 0 {
		return nil, fmt.Errorf("%w: %s.%s", ErrPortOccupied, edge.Target.NodeID, edge.Target.Port)
	}

	g.workflow.Edges = append(g.workflow.Edges, edge)
	return &g.workflow.Edges[len(g.workflow.Edges)-1], nil
}

// RemoveEdge removes an edge.
func (g *Graph) RemoveEdge(edgeID string) error {
	for i, edge := range g.workflow.Edges {
		if edge.ID == edgeID {
			g.workflow.Edges = append(g.workflow.Edges[:i], g.workflow.Edges[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrEdgeNotFound, edgeID)
}

// NeighborsOut returns the edges leaving a node. An empty port matches every port.
func (g *Graph) NeighborsOut(nodeID, port string) []model.Edge {
	return NeighborsOut(g.workflow, nodeID, port)
}

// NeighborsIn returns the edges entering a node. An empty port matches every port.
func (g *Graph) NeighborsIn(nodeID, port string) []model.Edge {
	return NeighborsIn(g.workflow, nodeID, port)
}

// NeighborsOut returns the edges of the workflow leaving a node.
func NeighborsOut(workflow *model.Workflow, nodeID, port string) []model.Edge {
	edges := make([]model.Edge, 0)
	for _, edge := range workflow.Edges {
		if edge.Source.NodeID == nodeID && (port == "" || edge.Source.Port == port) {
			edges = append(edges, edge)
		}
	}
	return edges
}

// NeighborsIn returns the edges of the workflow entering a node.
func NeighborsIn(workflow *model.Workflow, nodeID, port string) []model.Edge {
	edges := make([]model.Edge, 0)
	for _, edge := range workflow.Edges {
		if edge.Target.NodeID == nodeID && (port == "" || edge.Target.Port == port) {
			edges = append(edges, edge)
		}
	}
	return edges
}

func (g *Graph) resolveNodeType(nodeID string) (*nodetype.NodeType, error) {
	node, ok := g.workflow.Node(nodeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	definition, ok := g.registry.Get(node.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", nodetype.ErrUnknownNodeType, node.Type)
	}
	return definition, nil
}
