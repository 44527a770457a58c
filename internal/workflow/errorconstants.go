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

import "github.com/opsdeck/flowcore/internal/system/error/serviceerror"

// Client errors for workflow management operations.
var (
	// ErrorInvalidRequestFormat is the error returned when the request format is invalid.
	ErrorInvalidRequestFormat = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WF-1001",
		Error:            "Invalid request format",
		ErrorDescription: "The request body is malformed or contains invalid data",
	}
	// ErrorMissingWorkflowID is the error returned when the workflow id is missing.
	ErrorMissingWorkflowID = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WF-1002",
		Error:            "Invalid request format",
		ErrorDescription: "Workflow ID is required",
	}
	// ErrorWorkflowNotFound is the error returned when a workflow is not found.
	ErrorWorkflowNotFound = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WF-1003",
		Error:            "Workflow not found",
		ErrorDescription: "The workflow with the specified id does not exist",
	}
	// ErrorInvalidWorkflow is the error returned when a workflow fails validation.
	ErrorInvalidWorkflow = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WF-1004",
		Error:            "Invalid workflow",
		ErrorDescription: "The workflow failed validation",
	}
	// ErrorNodeTypeNotFound is the error returned when a node type is not registered.
	ErrorNodeTypeNotFound = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WF-1005",
		Error:            "Node type not found",
		ErrorDescription: "The node type with the specified id is not registered",
	}
	// ErrorNodeNotFound is the error returned when a node does not exist in the workflow.
	ErrorNodeNotFound = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WF-1006",
		Error:            "Node not found",
		ErrorDescription: "The node with the specified id does not exist in the workflow",
	}
	// ErrorEdgeNotFound is the error returned when an edge does not exist in the workflow.
	ErrorEdgeNotFound = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WF-1007",
		Error:            "Edge not found",
		ErrorDescription: "The edge with the specified id does not exist in the workflow",
	}
	// ErrorInvalidGraphEdit is the error returned when a graph edit breaks a structural rule.
	ErrorInvalidGraphEdit = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WF-1008",
		Error:            "Invalid graph edit",
		ErrorDescription: "The requested change violates the structure of the workflow graph",
	}
	// ErrorRunNotFound is the error returned when a run is not found.
	ErrorRunNotFound = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WF-1009",
		Error:            "Run not found",
		ErrorDescription: "The run with the specified id does not exist",
	}
	// ErrorWorkflowInactive is the error returned when an inactive workflow is triggered automatically.
	ErrorWorkflowInactive = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WF-1010",
		Error:            "Workflow inactive",
		ErrorDescription: "Only active workflows can be started by schedules and webhooks",
	}
	// ErrorInvalidTrigger is the error returned when the requested trigger node cannot start the run.
	ErrorInvalidTrigger = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WF-1011",
		Error:            "Invalid trigger",
		ErrorDescription: "The requested trigger node does not exist or is not a trigger",
	}
	// ErrorRunNotActive is the error returned when cancelling a run that already finished.
	ErrorRunNotActive = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WF-1012",
		Error:            "Run not active",
		ErrorDescription: "The run has already finished",
	}
	// ErrorInvalidLimit is the error returned when the limit parameter is invalid.
	ErrorInvalidLimit = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WF-1013",
		Error:            "Invalid pagination parameter",
		ErrorDescription: "The limit parameter must be a positive integer",
	}
	// ErrorWorkflowAlreadyExists is the error returned when creating a workflow with a used id.
	ErrorWorkflowAlreadyExists = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WF-1014",
		Error:            "Workflow already exists",
		ErrorDescription: "A workflow with the same id already exists",
	}
)

// Server errors for workflow management operations.
var (
	// ErrorInternalServerError is the error returned when an internal server error occurs.
	ErrorInternalServerError = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "WF-5001",
		Error:            "Internal server error",
		ErrorDescription: "An unexpected error occurred while processing the request",
	}
	// ErrorRunStartFailed is the error returned when a run could not be started.
	ErrorRunStartFailed = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "WF-5002",
		Error:            "Run could not be started",
		ErrorDescription: "The workflow run could not be started",
	}
)
