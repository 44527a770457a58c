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
	"strings"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/workflow/model"
)

// Source identifies what started a run.
type Source string

// Run sources.
const (
	SourceManual   Source = "manual"
	SourceSchedule Source = "schedule"
	SourceWebhook  Source = "webhook"
)

// Event describes a request to start a workflow run.
type Event struct {
	Source Source
	// NodeID is the trigger node that fired. Empty starts every trigger node.
	NodeID string
	// Payload becomes the trigger value of the run.
	Payload any
}

// LauncherInterface starts workflow runs on behalf of triggers.
type LauncherInterface interface {
	LaunchWorkflow(ctx context.Context, workflowID string, event Event) (string, error)
}

// ListenerInterface is notified when stored workflows change.
type ListenerInterface interface {
	// Sync replaces the known workflows with the given set.
	Sync(workflows []*model.Workflow)
	OnWorkflowSaved(workflow *model.Workflow)
	OnWorkflowDeleted(workflowID string)
}

// triggerNodes returns the trigger nodes of a workflow whose type declares the given property.
func triggerNodes(workflow *model.Workflow, registry nodetype.RegistryInterface,
	property string) []model.WorkflowNode {
	nodes := make([]model.WorkflowNode, 0)
	for _, node := range workflow.Nodes {
		definition, ok := registry.Get(node.Type)
		if !ok || !definition.IsTrigger() {
			continue
		}
		if _, ok := definition.Property(property); !ok {
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// stringProperty returns a resolved string property of a trigger node.
func stringProperty(node model.WorkflowNode, registry nodetype.RegistryInterface, name string) string {
	definition, ok := registry.Get(node.Type)
	if !ok {
		return ""
	}
	value, _ := definition.ResolveProperties(node.Properties)[name].(string)
	return strings.TrimSpace(value)
}
