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

package workflow

import (
	"github.com/opsdeck/flowcore/internal/workflow/model"
	"github.com/opsdeck/flowcore/internal/workflow/validator"
)

// ExecuteRequest is the body of a manual execution request.
type ExecuteRequest struct {
	TriggerNodeID string `json:"triggerNodeId,omitempty"`
	Payload       any    `json:"payload,omitempty"`
}

// ExecuteResponse is returned when a run was started.
type ExecuteResponse struct {
	RunID string `json:"runId"`
}

// ValidationResponse reports the validation issues of a workflow document.
type ValidationResponse struct {
	Valid  bool                        `json:"valid"`
	Issues []validator.ValidationIssue `json:"issues"`
}

// WorkflowListResponse is the list view of the stored workflows.
type WorkflowListResponse struct {
	TotalResults int                     `json:"totalResults"`
	Workflows    []model.WorkflowSummary `json:"workflows"`
}

// RunListResponse is the run history of a workflow.
type RunListResponse struct {
	WorkflowID string                  `json:"workflowId"`
	Count      int                     `json:"count"`
	Runs       []model.ExecutionRecord `json:"runs"`
}

// CategoryListResponse lists the node type categories.
type CategoryListResponse struct {
	Categories []string `json:"categories"`
}
