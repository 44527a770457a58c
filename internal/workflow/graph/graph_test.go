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

package graph

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/workflow/model"
)

type GraphTestSuite struct {
	suite.Suite
	registry *nodetype.Registry
	graph    *Graph
}

func TestGraphSuite(t *testing.T) {
	suite.Run(t, new(GraphTestSuite))
}

func (suite *GraphTestSuite) SetupTest() {
	suite.registry = nodetype.NewRegistry()
	suite.registry.Register("test.trigger", nodetype.NodeType{
		Kind:    nodetype.KindTrigger,
		Outputs: []nodetype.PortSpec{{Name: "out", Multiple: true}},
	})
	suite.registry.Register("test.single", nodetype.NodeType{
		Inputs:  []nodetype.PortSpec{{Name: "in"}},
		Outputs: []nodetype.PortSpec{{Name: "out", Multiple: true}},
	})
	suite.registry.Register("test.join", nodetype.NodeType{
		Inputs: []nodetype.PortSpec{{Name: "in", Multiple: true}},
	})

	workflow := &model.Workflow{ID: "wf"}
	suite.graph = New(workflow, suite.registry)
	suite.addNode("t1", "test.trigger")
	suite.addNode("t2", "test.trigger")
	suite.addNode("s", "test.single")
	suite.addNode("j", "test.join")
}

func (suite *GraphTestSuite) addNode(id, nodeType string) {
	_, err := suite.graph.AddNode(model.WorkflowNode{ID: id, Type: nodeType})
	suite.Require().NoError(err)
}

func edge(id, source, sourcePort, target, targetPort string) model.Edge {
	return model.Edge{
		ID:     id,
		Source: model.Endpoint{NodeID: source, Port: sourcePort},
		Target: model.Endpoint{NodeID: target, Port: targetPort},
	}
}

func (suite *GraphTestSuite) TestAddNode() {
	node, err := suite.graph.AddNode(model.WorkflowNode{Type: "test.single"})
	suite.NoError(err)
	suite.NotEmpty(node.ID)
	suite.NotNil(node.Properties)

	_, err = suite.graph.AddNode(model.WorkflowNode{ID: "s", Type: "test.single"})
	suite.ErrorIs(err, ErrDuplicateNode)

	_, err = suite.graph.AddNode(model.WorkflowNode{ID: "x", Type: "test.unknown"})
	suite.ErrorIs(err, nodetype.ErrUnknownNodeType)

	_, err = suite.graph.AddNode(model.WorkflowNode{ID: "y"})
	suite.ErrorIs(err, ErrInvalidNode)
}

func (suite *GraphTestSuite) TestAddEdge() {
	_, err := suite.graph.AddEdge(edge("e1", "t1", "out", "s", "in"))
	suite.NoError(err)

	generated, err := suite.graph.AddEdge(edge("", "t1", "out", "j", "in"))
	suite.NoError(err)
	suite.NotEmpty(generated.ID)

	_, err = suite.graph.AddEdge(edge("e1", "t2", "out", "j", "in"))
	suite.ErrorIs(err, ErrDuplicateEdge)
}

func (suite *GraphTestSuite) TestAddEdgeRejectsInvalidEndpoints() {
	testCases := []struct {
		name     string
		edge     model.Edge
		expected error
	}{
		{"MissingSource", edge("a", "nope", "out", "s", "in"), ErrNodeNotFound},
		{"MissingTarget", edge("b", "t1", "out", "nope", "in"), ErrNodeNotFound},
		{"MissingOutputPort", edge("c", "t1", "bogus", "s", "in"), ErrPortNotFound},
		{"MissingInputPort", edge("d", "t1", "out", "s", "bogus"), ErrPortNotFound},
		{"InputUsedAsOutput", edge("e", "s", "in", "j", "in"), ErrPortNotFound},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := suite.graph.AddEdge(tc.edge)
			suite.ErrorIs(err, tc.expected)
		})
	}
	suite.Empty(suite.graph.Workflow().Edges)
}

func (suite *GraphTestSuite) TestAddEdgeEnforcesSingleValuedInput() {
	_, err := suite.graph.AddEdge(edge("e1", "t1", "out", "s", "in"))
	suite.Require().NoError(err)

	_, err = suite.graph.AddEdge(edge("e2", "t2", "out", "s", "in"))
	suite.ErrorIs(err, ErrPortOccupied)

	_, err = suite.graph.AddEdge(edge("e3", "t1", "out", "j", "in"))
	suite.NoError(err)
	_, err = suite.graph.AddEdge(edge("e4", "t2", "out", "j", "in"))
	suite.NoError(err)

	_, err = suite.graph.AddEdge(edge("e5", "t2", "out", "j", "in"))
	suite.ErrorIs(err, ErrDuplicateRoute)
}

func (suite *GraphTestSuite) TestRemoveNodeCascadesEdges() {
	_, _ = suite.graph.AddEdge(edge("e1", "t1", "out", "s", "in"))
	_, _ = suite.graph.AddEdge(edge("e2", "s", "out", "j", "in"))
	_, _ = suite.graph.AddEdge(edge("e3", "t2", "out", "j", "in"))

	suite.NoError(suite.graph.RemoveNode("s"))

	workflow := suite.graph.Workflow()
	suite.Len(workflow.Nodes, 3)
	suite.Len(workflow.Edges, 1)
	suite.Equal("e3", workflow.Edges[0].ID)

	suite.ErrorIs(suite.graph.RemoveNode("s"), ErrNodeNotFound)
}

func (suite *GraphTestSuite) TestUpdateNode() {
	label := "Renamed"
	_, err := suite.graph.UpdateNode("s", NodePatch{Properties: map[string]any{"a": 1, "b": 2}})
	suite.Require().NoError(err)

	node, err := suite.graph.UpdateNode("s", NodePatch{
		Label:            &label,
		Properties:       map[string]any{"a": 3},
		RemoveProperties: []string{"b"},
	})
	suite.NoError(err)
	suite.Equal("Renamed", node.Label)
	suite.Equal(map[string]any{"a": 3}, node.Properties)

	_, err = suite.graph.UpdateNode("nope", NodePatch{})
	suite.ErrorIs(err, ErrNodeNotFound)
}

func (suite *GraphTestSuite) TestRemoveEdgeAndNeighbors() {
	_, _ = suite.graph.AddEdge(edge("e1", "t1", "out", "s", "in"))
	_, _ = suite.graph.AddEdge(edge("e2", "t1", "out", "j", "in"))

	suite.Len(suite.graph.NeighborsOut("t1", ""), 2)
	suite.Len(suite.graph.NeighborsOut("t1", "out"), 2)
	suite.Len(suite.graph.NeighborsOut("t1", "other"), 0)
	suite.Len(suite.graph.NeighborsIn("j", "in"), 1)

	suite.NoError(suite.graph.RemoveEdge("e2"))
	suite.Len(suite.graph.NeighborsIn("j", ""), 0)
	suite.ErrorIs(suite.graph.RemoveEdge("e2"), ErrEdgeNotFound)
}
