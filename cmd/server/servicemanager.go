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

package main

import (
	"fmt"
	"net/http"

	"github.com/opsdeck/flowcore/internal/expression"
	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/nodetype/builtin"
	"github.com/opsdeck/flowcore/internal/system/cache"
	"github.com/opsdeck/flowcore/internal/system/config"
	"github.com/opsdeck/flowcore/internal/system/database/provider"
	"github.com/opsdeck/flowcore/internal/system/healthcheck"
	httpservice "github.com/opsdeck/flowcore/internal/system/http"
	"github.com/opsdeck/flowcore/internal/workflow"
	"github.com/opsdeck/flowcore/internal/workflow/engine"
	"github.com/opsdeck/flowcore/internal/workflow/model"
	"github.com/opsdeck/flowcore/internal/workflow/store"
	"github.com/opsdeck/flowcore/internal/workflow/trigger"
)

// serverServices holds the long-running services the server starts and stops.
type serverServices struct {
	workflowService workflow.WorkflowServiceInterface
	scheduler       *trigger.Scheduler
}

// registerServices builds the workflow stack and registers its routes with the provided HTTP multiplexer.
func registerServices(mux *http.ServeMux, cfg *config.Config,
	dbProvider provider.DBProviderInterface) (*serverServices, error) {
	dbClient, err := dbProvider.GetDBClient(provider.DataSourceWorkflow)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the workflow database: %w", err)
	}
	if err := store.EnsureSchema(dbClient); err != nil {
		return nil, err
	}

	registry := nodetype.NewRegistry()
	builtin.Register(registry, builtin.Dependencies{
		HTTPClient: httpservice.NewHTTPClientWithTimeout(cfg.HTTPClient.Timeout),
		DBProvider: dbProvider,
		Evaluator:  expression.NewEvaluator(),
	})

	runStore := store.NewRunStore(dbProvider)
	workflowEngine := engine.New(registry, runStore, engine.Config{
		LoopLimit:      cfg.Engine.LoopLimit,
		NodeTimeout:    cfg.Engine.NodeTimeout,
		MaxConcurrency: cfg.Engine.MaxConcurrency,
	})

	workflowCache := cache.NewInMemoryCache[*model.Workflow]("WorkflowDefinitionCache", !cfg.Cache.Disabled,
		cfg.Cache.Size, cfg.Cache.TTL)
	workflowStore := store.NewCachedWorkflowStore(store.NewWorkflowStore(dbProvider), workflowCache)

	workflowService, scheduler := workflow.Initialize(mux, registry, workflowStore, runStore, workflowEngine, *cfg)

	// Register the health service.
	_ = healthcheck.Initialize(mux, dbProvider, cfg.Database.Data.Type != "")

	return &serverServices{
		workflowService: workflowService,
		scheduler:       scheduler,
	}, nil
}
