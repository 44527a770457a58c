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
	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/workflow/model"
	"github.com/opsdeck/flowcore/internal/workflow/validator"
)

// scope is a set of nodes scheduled together: the top level of a workflow or
// the body of a loop node.
type scope struct {
	owner     string
	members   []string
	memberSet map[string]bool
	// waits lists, per member, the edges whose sources must be resolved before
	// the member can be scheduled.
	waits map[string][]model.Edge
}

// plan is the static execution structure derived from a validated workflow.
type plan struct {
	nodes    map[string]*model.WorkflowNode
	types    map[string]*nodetype.NodeType
	incoming map[string][]model.Edge
	root     *scope
	loops    map[string]*scope
}

// buildPlan derives the scopes and structural dependencies of a workflow.
// Loop back edges are not dependencies and carry no data.
func buildPlan(workflow *model.Workflow, registry nodetype.RegistryInterface) *plan {
	p := &plan{
		nodes:    make(map[string]*model.WorkflowNode, len(workflow.Nodes)),
		types:    make(map[string]*nodetype.NodeType, len(workflow.Nodes)),
		incoming: make(map[string][]model.Edge),
		loops:    make(map[string]*scope),
	}
	for i := range workflow.Nodes {
		node := &workflow.Nodes[i]
		p.nodes[node.ID] = node
		if definition, ok := registry.Get(node.Type); ok {
			p.types[node.ID] = definition
		}
	}

	loopBack := validator.LoopBackEdges(workflow, registry)
	outgoing := make(map[string][]model.Edge)
	for _, edge := range workflow.Edges {
		if loopBack[edge.ID] {
			continue
		}
		p.incoming[edge.Target.NodeID] = append(p.incoming[edge.Target.NodeID], edge)
		outgoing[edge.Source.NodeID] = append(outgoing[edge.Source.NodeID], edge)
	}

	bodies := make(map[string]map[string]bool)
	for _, node := range workflow.Nodes {
		if definition := p.types[node.ID]; definition != nil && definition.Kind == nodetype.KindLoop {
			bodies[node.ID] = loopBody(node.ID, outgoing)
		}
	}

	owners := make(map[string]string, len(workflow.Nodes))
	for _, node := range workflow.Nodes {
		owners[node.ID] = innermostLoop(node.ID, bodies)
	}

	p.root = newScope("")
	for loopID := range bodies {
		p.loops[loopID] = newScope(loopID)
	}
	for _, node := range workflow.Nodes {
		target := p.root
		if owner := owners[node.ID]; owner != "" {
			target = p.loops[owner]
		}
		target.members = append(target.members, node.ID)
		target.memberSet[node.ID] = true
		target.waits[node.ID] = p.incoming[node.ID]
	}

	// A loop waits for every external input of its body so that iterations
	// only ever read resolved values.
	for loopID, body := range bodies {
		parent := p.root
		if owner := owners[loopID]; owner != "" {
			parent = p.loops[owner]
		}
		waits := append([]model.Edge(nil), parent.waits[loopID]...)
		for bodyNodeID := range body {
			for _, edge := range p.incoming[bodyNodeID] {
				if body[edge.Source.NodeID] || edge.Source.NodeID == loopID {
					continue
				}
				waits = append(waits, edge)
			}
		}
		parent.waits[loopID] = waits
	}
	return p
}

func newScope(owner string) *scope {
	return &scope{
		owner:     owner,
		members:   make([]string, 0),
		memberSet: make(map[string]bool),
		waits:     make(map[string][]model.Edge),
	}
}

// loopBody returns the nodes reachable from the item port of a loop that are
// not also reachable from its other outputs. A node joining the body with the
// completed branch belongs to the enclosing scope and runs once after the loop.
func loopBody(loopID string, outgoing map[string][]model.Edge) map[string]bool {
	body := reachableFrom(loopID, outgoing, func(port string) bool { return port == nodetype.PortItem })
	after := reachableFrom(loopID, outgoing, func(port string) bool { return port != nodetype.PortItem })
	for nodeID := range after {
		delete(body, nodeID)
	}
	return body
}

// reachableFrom returns the nodes reachable from the outputs of a loop whose
// port matches, excluding the loop itself.
func reachableFrom(loopID string, outgoing map[string][]model.Edge, matches func(port string) bool) map[string]bool {
	reached := make(map[string]bool)
	queue := make([]string, 0)
	for _, edge := range outgoing[loopID] {
		if matches(edge.Source.Port) {
			queue = append(queue, edge.Target.NodeID)
		}
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == loopID || reached[current] {
			continue
		}
		reached[current] = true
		for _, edge := range outgoing[current] {
			queue = append(queue, edge.Target.NodeID)
		}
	}
	return reached
}

// innermostLoop returns the loop with the smallest body containing the node.
func innermostLoop(nodeID string, bodies map[string]map[string]bool) string {
	owner := ""
	for loopID, body := range bodies {
		if !body[nodeID] {
			continue
		}
		if owner == "" || len(body) < len(bodies[owner]) || (len(body) == len(bodies[owner]) && loopID < owner) {
			owner = loopID
		}
	}
	return owner
}
