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
	"encoding/json"
	"net/http"
	"strings"

	serverconst "github.com/opsdeck/flowcore/internal/system/constants"
	"github.com/opsdeck/flowcore/internal/system/error/apierror"
	"github.com/opsdeck/flowcore/internal/system/error/serviceerror"
	"github.com/opsdeck/flowcore/internal/system/log"
	sysutils "github.com/opsdeck/flowcore/internal/system/utils"
	"github.com/opsdeck/flowcore/internal/workflow/graph"
	"github.com/opsdeck/flowcore/internal/workflow/model"
	"github.com/opsdeck/flowcore/internal/workflow/trigger"
)

const (
	handlerLoggerComponentName = "WorkflowHandler"
	maxRunListLimit            = 500
)

// workflowHandler is the handler for workflow management operations.
type workflowHandler struct {
	workflowService WorkflowServiceInterface
}

// newWorkflowHandler creates a new instance of workflowHandler.
func newWorkflowHandler(workflowService WorkflowServiceInterface) *workflowHandler {
	return &workflowHandler{
		workflowService: workflowService,
	}
}

// HandleNodeTypeListRequest handles the list node types request.
func (wh *workflowHandler) HandleNodeTypeListRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	category := sysutils.SanitizeString(r.URL.Query().Get("category"))
	nodeTypes := wh.workflowService.ListNodeTypes(category)

	wh.writeResponse(w, logger, http.StatusOK, nodeTypes)
	logger.Debug("Successfully listed node types", log.Int("count", len(nodeTypes)))
}

// HandleNodeTypeCategoriesRequest handles the list node type categories request.
func (wh *workflowHandler) HandleNodeTypeCategoriesRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	wh.writeResponse(w, logger, http.StatusOK, CategoryListResponse{
		Categories: wh.workflowService.ListNodeCategories(),
	})
}

// HandleNodeTypeGetRequest handles the get node type request.
func (wh *workflowHandler) HandleNodeTypeGetRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	nodeType, svcErr := wh.workflowService.GetNodeType(r.PathValue("type"))
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	wh.writeResponse(w, logger, http.StatusOK, nodeType)
}

// HandleWorkflowListRequest handles the list workflows request.
func (wh *workflowHandler) HandleWorkflowListRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	listResponse, svcErr := wh.workflowService.ListWorkflows()
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}

	wh.writeResponse(w, logger, http.StatusOK, listResponse)
	logger.Debug("Successfully listed workflows", log.Int("totalResults", listResponse.TotalResults))
}

// HandleWorkflowPostRequest handles the create workflow request.
func (wh *workflowHandler) HandleWorkflowPostRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	workflow, ok := wh.decodeWorkflow(w, r, logger)
	if !ok {
		return
	}

	created, svcErr := wh.workflowService.CreateWorkflow(workflow)
	if svcErr != nil {
		wh.handleSaveError(w, logger, svcErr, workflow)
		return
	}

	wh.writeResponse(w, logger, http.StatusCreated, created)
	logger.Debug("Successfully created workflow", log.String(log.LoggerKeyWorkflowID, created.ID))
}

// HandleWorkflowGetRequest handles the get workflow request.
func (wh *workflowHandler) HandleWorkflowGetRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	workflow, svcErr := wh.workflowService.GetWorkflow(r.PathValue("id"))
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	wh.writeResponse(w, logger, http.StatusOK, workflow)
}

// HandleWorkflowPutRequest handles the update workflow request.
func (wh *workflowHandler) HandleWorkflowPutRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	workflow, ok := wh.decodeWorkflow(w, r, logger)
	if !ok {
		return
	}

	updated, svcErr := wh.workflowService.UpdateWorkflow(r.PathValue("id"), workflow)
	if svcErr != nil {
		wh.handleSaveError(w, logger, svcErr, workflow)
		return
	}

	wh.writeResponse(w, logger, http.StatusOK, updated)
	logger.Debug("Successfully updated workflow", log.String(log.LoggerKeyWorkflowID, updated.ID))
}

// HandleWorkflowDeleteRequest handles the delete workflow request.
func (wh *workflowHandler) HandleWorkflowDeleteRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	id := r.PathValue("id")
	if svcErr := wh.workflowService.DeleteWorkflow(id); svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logger.Debug("Successfully deleted workflow", log.String(log.LoggerKeyWorkflowID, id))
}

// HandleWorkflowValidateRequest handles the validate workflow request.
func (wh *workflowHandler) HandleWorkflowValidateRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	workflow, ok := wh.decodeWorkflow(w, r, logger)
	if !ok {
		return
	}
	wh.writeResponse(w, logger, http.StatusOK, wh.workflowService.ValidateWorkflow(workflow))
}

// HandleNodePostRequest handles the add node request.
func (wh *workflowHandler) HandleNodePostRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	node, err := sysutils.DecodeJSONBody[model.WorkflowNode](r)
	if err != nil {
		wh.writeDecodeError(w, logger, err)
		return
	}

	added, svcErr := wh.workflowService.AddNode(r.PathValue("id"), *node)
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	wh.writeResponse(w, logger, http.StatusCreated, added)
}

// HandleNodePatchRequest handles the update node request.
func (wh *workflowHandler) HandleNodePatchRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	patch, err := sysutils.DecodeJSONBody[graph.NodePatch](r)
	if err != nil {
		wh.writeDecodeError(w, logger, err)
		return
	}

	updated, svcErr := wh.workflowService.UpdateNode(r.PathValue("id"), r.PathValue("nodeId"), *patch)
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	wh.writeResponse(w, logger, http.StatusOK, updated)
}

// HandleNodeDeleteRequest handles the remove node request.
func (wh *workflowHandler) HandleNodeDeleteRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	if svcErr := wh.workflowService.RemoveNode(r.PathValue("id"), r.PathValue("nodeId")); svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEdgePostRequest handles the add edge request.
func (wh *workflowHandler) HandleEdgePostRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	edge, err := sysutils.DecodeJSONBody[model.Edge](r)
	if err != nil {
		wh.writeDecodeError(w, logger, err)
		return
	}

	added, svcErr := wh.workflowService.AddEdge(r.PathValue("id"), *edge)
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	wh.writeResponse(w, logger, http.StatusCreated, added)
}

// HandleEdgeDeleteRequest handles the remove edge request.
func (wh *workflowHandler) HandleEdgeDeleteRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	if svcErr := wh.workflowService.RemoveEdge(r.PathValue("id"), r.PathValue("edgeId")); svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleWorkflowExecuteRequest handles the manual execution request. The body is optional.
func (wh *workflowHandler) HandleWorkflowExecuteRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	executeRequest := &ExecuteRequest{}
	if r.ContentLength != 0 {
		decoded, err := sysutils.DecodeJSONBody[ExecuteRequest](r)
		if err != nil {
			wh.writeDecodeError(w, logger, err)
			return
		}
		executeRequest = decoded
	}

	runID, svcErr := wh.workflowService.ExecuteWorkflow(r.Context(), r.PathValue("id"), trigger.Event{
		Source:  trigger.SourceManual,
		NodeID:  strings.TrimSpace(executeRequest.TriggerNodeID),
		Payload: executeRequest.Payload,
	})
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	wh.writeResponse(w, logger, http.StatusAccepted, ExecuteResponse{RunID: runID})
}

// HandleRunListRequest handles the run history request of a workflow.
func (wh *workflowHandler) HandleRunListRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	limit, err := sysutils.ParseLimitParam(r, 0, maxRunListLimit)
	if err != nil {
		wh.handleError(w, logger, serviceerror.CustomServiceError(ErrorInvalidLimit, err.Error()))
		return
	}

	runList, svcErr := wh.workflowService.ListRuns(r.PathValue("id"), limit)
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	wh.writeResponse(w, logger, http.StatusOK, runList)
}

// HandleRunGetRequest handles the get run request.
func (wh *workflowHandler) HandleRunGetRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	record, svcErr := wh.workflowService.GetRun(r.PathValue("runId"))
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	wh.writeResponse(w, logger, http.StatusOK, record)
}

// HandleRunCancelRequest handles the cancel run request.
func (wh *workflowHandler) HandleRunCancelRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))

	if svcErr := wh.workflowService.CancelRun(r.PathValue("runId")); svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (wh *workflowHandler) decodeWorkflow(w http.ResponseWriter, r *http.Request,
	logger *log.Logger) (*model.Workflow, bool) {
	workflow, err := sysutils.DecodeJSONBody[model.Workflow](r)
	if err != nil {
		wh.writeDecodeError(w, logger, err)
		return nil, false
	}
	workflow.Name = sysutils.SanitizeString(workflow.Name)
	return workflow, true
}

func (wh *workflowHandler) writeDecodeError(w http.ResponseWriter, logger *log.Logger, err error) {
	wh.writeErrorResponse(w, logger, http.StatusBadRequest, apierror.ErrorResponse{
		Code:        ErrorInvalidRequestFormat.Code,
		Message:     ErrorInvalidRequestFormat.Error,
		Description: "Failed to parse request body: " + err.Error(),
	})
}

func (wh *workflowHandler) writeResponse(w http.ResponseWriter, logger *log.Logger, statusCode int, value any) {
	w.Header().Set(serverconst.ContentTypeHeaderName, serverconst.ContentTypeJSON)
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(value); err != nil {
		logger.Error("Error encoding response", log.Error(err))
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (wh *workflowHandler) writeErrorResponse(w http.ResponseWriter, logger *log.Logger, statusCode int,
	errResp apierror.ErrorResponse) {
	w.Header().Set(serverconst.ContentTypeHeaderName, serverconst.ContentTypeJSON)
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		logger.Error("Error encoding error response", log.Error(err))
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

// handleSaveError attaches the validation issues of the rejected document to
// an invalid workflow error.
func (wh *workflowHandler) handleSaveError(w http.ResponseWriter, logger *log.Logger,
	svcErr *serviceerror.ServiceError, workflow *model.Workflow) {
	if svcErr.Code != ErrorInvalidWorkflow.Code {
		wh.handleError(w, logger, svcErr)
		return
	}

	wh.writeErrorResponse(w, logger, http.StatusBadRequest, apierror.ErrorResponse{
		Code:        svcErr.Code,
		Message:     svcErr.Error,
		Description: svcErr.ErrorDescription,
		Details:     wh.workflowService.ValidateWorkflow(workflow).Issues,
	})
}

// handleError translates a service error to an HTTP response.
func (wh *workflowHandler) handleError(w http.ResponseWriter, logger *log.Logger,
	svcErr *serviceerror.ServiceError) {
	statusCode := http.StatusInternalServerError
	if svcErr.Type == serviceerror.ClientErrorType {
		switch svcErr.Code {
		case ErrorWorkflowNotFound.Code, ErrorNodeTypeNotFound.Code, ErrorNodeNotFound.Code,
			ErrorEdgeNotFound.Code, ErrorRunNotFound.Code:
			statusCode = http.StatusNotFound
		case ErrorWorkflowAlreadyExists.Code, ErrorRunNotActive.Code, ErrorWorkflowInactive.Code:
			statusCode = http.StatusConflict
		default:
			statusCode = http.StatusBadRequest
		}
	}

	if statusCode == http.StatusInternalServerError {
		logger.Error("Internal server error occurred", log.String("error", svcErr.Error),
			log.String("description", svcErr.ErrorDescription))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	wh.writeErrorResponse(w, logger, statusCode, apierror.ErrorResponse{
		Code:        svcErr.Code,
		Message:     svcErr.Error,
		Description: svcErr.ErrorDescription,
	})
}
