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

// Package builtin provides the node types shipped with the workflow engine.
package builtin

import (
	"github.com/opsdeck/flowcore/internal/expression"
	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/system/database/provider"
	httpservice "github.com/opsdeck/flowcore/internal/system/http"
)

const loggerComponentName = "BuiltinNodes"

// Built-in node type ids.
const (
	TypeWebhookTrigger  = "trigger.webhook"
	TypeScheduleTrigger = "trigger.schedule"
	TypeDatabaseQuery   = "database.query"
	TypeDatabaseUpdate  = "database.update"
	TypeConditional     = "logic.conditional"
	TypeForEach         = "logic.foreach"
	TypeHTTPRequest     = "http.request"
)

// Built-in categories.
const (
	CategoryTriggers = "Triggers"
	CategoryDatabase = "Database"
	CategoryLogic    = "Logic"
	CategoryHTTP     = "HTTP"
)

// Port names of the built-in node types.
const (
	PortInput      = "input"
	PortPayload    = "payload"
	PortTick       = "tick"
	PortRows       = "rows"
	PortResult     = "result"
	PortCollection = "collection"
	PortContinue   = nodetype.PortContinue
	PortResponse   = "response"
)

// Dependencies holds the collaborators used by the built-in executors.
type Dependencies struct {
	HTTPClient httpservice.HTTPClientInterface
	DBProvider provider.DBProviderInterface
	Evaluator  expression.EvaluatorInterface
}

// Register adds every built-in node type to the registry.
func Register(registry nodetype.RegistryInterface, deps Dependencies) {
	for _, definition := range NodeTypes(deps) {
		registry.Register(definition.Type, definition)
	}
}

// NodeTypes returns the built-in node type definitions.
func NodeTypes(deps Dependencies) []nodetype.NodeType {
	if deps.Evaluator == nil {
		deps.Evaluator = expression.NewEvaluator()
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = httpservice.NewHTTPClient()
	}

	return []nodetype.NodeType{
		webhookTriggerType(),
		scheduleTriggerType(),
		databaseQueryType(deps),
		databaseUpdateType(deps),
		conditionalType(deps),
		forEachType(deps),
		httpRequestType(deps),
	}
}

// expressionVars returns the variables visible to expressions of a node.
func expressionVars(req *nodetype.ExecutionRequest, primaryInput string) map[string]any {
	input := req.Inputs[primaryInput]
	if nodetype.IsAbsent(input) {
		input = nil
	}
	return map[string]any{
		"input":   input,
		"trigger": req.Trigger,
	}
}

func stringProperty(properties map[string]any, name string) string {
	value, _ := properties[name].(string)
	return value
}
