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

package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/opsdeck/flowcore/internal/nodetype"
)

func conditionalType(deps Dependencies) nodetype.NodeType {
	return nodetype.NodeType{
		Type:        TypeConditional,
		Label:       "If",
		Category:    CategoryLogic,
		Kind:        nodetype.KindBranch,
		Description: "Routes the input to the true or false output depending on a condition",
		Inputs:      []nodetype.PortSpec{{Name: PortInput, Label: "Input", Required: true}},
		Outputs: []nodetype.PortSpec{
			{Name: nodetype.PortTrue, Label: "True", Multiple: true},
			{Name: nodetype.PortFalse, Label: "False", Multiple: true},
		},
		Properties: []nodetype.PropertySpec{
			{Name: "condition", Label: "Condition", Type: nodetype.PropertyTypeCode, Required: true,
				Description: "Boolean expression over input and trigger, e.g. input.total > 100"},
		},
		Executor: nodetype.ExecutorFunc(func(_ context.Context, req *nodetype.ExecutionRequest) (*nodetype.NodeResult, error) {
			condition := stringProperty(req.Properties, "condition")
			vars := expressionVars(req, PortInput)

			decision, err := deps.Evaluator.EvaluateBool(condition, vars)
			if err != nil {
				return nil, err
			}

			port := nodetype.PortFalse
			if decision {
				port = nodetype.PortTrue
			}
			return &nodetype.NodeResult{
				Outputs:  map[string]any{port: vars["input"]},
				Decision: &decision,
			}, nil
		}),
	}
}

func forEachType(deps Dependencies) nodetype.NodeType {
	return nodetype.NodeType{
		Type:        TypeForEach,
		Label:       "For each",
		Category:    CategoryLogic,
		Kind:        nodetype.KindLoop,
		Description: "Runs the item branch once per element of a collection, then fires completed",
		Inputs: []nodetype.PortSpec{
			{Name: PortCollection, Label: "Collection", Required: true},
			{Name: PortContinue, Label: "Next iteration", Multiple: true},
		},
		Outputs: []nodetype.PortSpec{
			{Name: nodetype.PortItem, Label: "Item", Multiple: true},
			{Name: nodetype.PortCompleted, Label: "Completed", Multiple: true},
		},
		Properties: []nodetype.PropertySpec{
			{Name: "items", Label: "Items", Type: nodetype.PropertyTypeCode,
				Description: "Optional expression selecting the list to iterate, e.g. input.orders"},
		},
		Executor: nodetype.ExecutorFunc(func(_ context.Context, req *nodetype.ExecutionRequest) (*nodetype.NodeResult, error) {
			vars := map[string]any{"input": req.Inputs[PortCollection], "trigger": req.Trigger}
			if nodetype.IsAbsent(vars["input"]) {
				vars["input"] = nil
			}

			collection := vars["input"]
			if selector := strings.TrimSpace(stringProperty(req.Properties, "items")); selector != "" {
				selected, err := deps.Evaluator.Evaluate(selector, vars)
				if err != nil {
					return nil, err
				}
				collection = selected
			}

			items, err := toItems(collection)
			if err != nil {
				return nil, err
			}
			return &nodetype.NodeResult{Items: items}, nil
		}),
	}
}

// toItems interprets a value as the collection iterated by a loop.
func toItems(value any) ([]any, error) {
	switch v := value.(type) {
	case nil:
		return []any{}, nil
	case []any:
		return v, nil
	case []map[string]any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = item
		}
		return items, nil
	case []string:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = item
		}
		return items, nil
	}
	return nil, fmt.Errorf("collection must be a list, got %T", value)
}
