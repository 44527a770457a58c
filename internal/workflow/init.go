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
	"net/http"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/system/config"
	"github.com/opsdeck/flowcore/internal/system/middleware"
	"github.com/opsdeck/flowcore/internal/workflow/engine"
	"github.com/opsdeck/flowcore/internal/workflow/runstore"
	"github.com/opsdeck/flowcore/internal/workflow/store"
	"github.com/opsdeck/flowcore/internal/workflow/trigger"
)

// Initialize initializes the workflow service, its triggers and registers the routes.
// The returned scheduler is nil when scheduled triggers are disabled.
func Initialize(
	mux *http.ServeMux,
	registry nodetype.RegistryInterface,
	workflowStore store.WorkflowStoreInterface,
	runStore runstore.RunStoreInterface,
	workflowEngine engine.EngineInterface,
	cfg config.Config,
) (WorkflowServiceInterface, *trigger.Scheduler) {
	workflowService := newWorkflowService(registry, workflowStore, runStore, workflowEngine,
		cfg.Engine.RunHistoryLimit)

	dispatcher := trigger.NewWebhookDispatcher(registry, workflowService, cfg.Trigger.WebhookBasePath)
	workflowService.addListener(dispatcher)

	var scheduler *trigger.Scheduler
	if cfg.Trigger.SchedulerEnabled {
		scheduler = trigger.NewScheduler(registry, workflowService)
		workflowService.addListener(scheduler)
	}

	workflowHandler := newWorkflowHandler(workflowService)
	registerRoutes(mux, workflowHandler)
	mux.Handle(dispatcher.BasePath()+"/{path...}", dispatcher)

	return workflowService, scheduler
}

// registerRoutes registers the routes for workflow management operations.
func registerRoutes(mux *http.ServeMux, workflowHandler *workflowHandler) {
	opts1 := middleware.CORSOptions{
		AllowedMethods:   "GET",
		AllowedHeaders:   "Content-Type, Authorization",
		AllowCredentials: true,
	}
	mux.HandleFunc(middleware.WithCORS("GET /node-types", workflowHandler.HandleNodeTypeListRequest, opts1))
	mux.HandleFunc(middleware.WithCORS("GET /node-types/categories",
		workflowHandler.HandleNodeTypeCategoriesRequest, opts1))
	mux.HandleFunc(middleware.WithCORS("GET /node-types/{type}", workflowHandler.HandleNodeTypeGetRequest, opts1))
	mux.HandleFunc(middleware.Preflight("OPTIONS /node-types/", opts1))

	opts2 := middleware.CORSOptions{
		AllowedMethods:   "GET, POST",
		AllowedHeaders:   "Content-Type, Authorization",
		AllowCredentials: true,
	}
	mux.HandleFunc(middleware.WithCORS("POST /workflows", workflowHandler.HandleWorkflowPostRequest, opts2))
	mux.HandleFunc(middleware.WithCORS("GET /workflows", workflowHandler.HandleWorkflowListRequest, opts2))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /workflows", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, opts2))
	mux.HandleFunc(middleware.WithCORS("POST /workflows/validate",
		workflowHandler.HandleWorkflowValidateRequest, opts2))
	mux.HandleFunc(middleware.WithCORS("POST /workflows/{id}/execute",
		workflowHandler.HandleWorkflowExecuteRequest, opts2))
	mux.HandleFunc(middleware.WithCORS("GET /workflows/{id}/runs", workflowHandler.HandleRunListRequest, opts2))

	opts3 := middleware.CORSOptions{
		AllowedMethods:   "GET, PUT, DELETE",
		AllowedHeaders:   "Content-Type, Authorization",
		AllowCredentials: true,
	}
	mux.HandleFunc(middleware.WithCORS("GET /workflows/{id}", workflowHandler.HandleWorkflowGetRequest, opts3))
	mux.HandleFunc(middleware.WithCORS("PUT /workflows/{id}", workflowHandler.HandleWorkflowPutRequest, opts3))
	mux.HandleFunc(middleware.WithCORS("DELETE /workflows/{id}", workflowHandler.HandleWorkflowDeleteRequest, opts3))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /workflows/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, opts3))

	opts4 := middleware.CORSOptions{
		AllowedMethods:   "POST, PATCH, DELETE",
		AllowedHeaders:   "Content-Type, Authorization",
		AllowCredentials: true,
	}
	mux.HandleFunc(middleware.WithCORS("POST /workflows/{id}/nodes", workflowHandler.HandleNodePostRequest, opts4))
	mux.HandleFunc(middleware.WithCORS("PATCH /workflows/{id}/nodes/{nodeId}",
		workflowHandler.HandleNodePatchRequest, opts4))
	mux.HandleFunc(middleware.WithCORS("DELETE /workflows/{id}/nodes/{nodeId}",
		workflowHandler.HandleNodeDeleteRequest, opts4))
	mux.HandleFunc(middleware.WithCORS("POST /workflows/{id}/edges", workflowHandler.HandleEdgePostRequest, opts4))
	mux.HandleFunc(middleware.WithCORS("DELETE /workflows/{id}/edges/{edgeId}",
		workflowHandler.HandleEdgeDeleteRequest, opts4))
	mux.HandleFunc(middleware.Preflight("OPTIONS /workflows/{id}/", opts4))

	opts5 := middleware.CORSOptions{
		AllowedMethods:   "GET, POST",
		AllowedHeaders:   "Content-Type, Authorization",
		AllowCredentials: true,
	}
	mux.HandleFunc(middleware.WithCORS("GET /runs/{runId}", workflowHandler.HandleRunGetRequest, opts5))
	mux.HandleFunc(middleware.WithCORS("POST /runs/{runId}/cancel", workflowHandler.HandleRunCancelRequest, opts5))
	mux.HandleFunc(middleware.Preflight("OPTIONS /runs/", opts5))
}
