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
	"time"

	"github.com/opsdeck/flowcore/internal/nodetype"
)

var httpMethodOptions = []nodetype.PropertyOption{
	{Value: "GET", Label: "GET"},
	{Value: "POST", Label: "POST"},
	{Value: "PUT", Label: "PUT"},
	{Value: "PATCH", Label: "PATCH"},
	{Value: "DELETE", Label: "DELETE"},
}

func webhookTriggerType() nodetype.NodeType {
	return nodetype.NodeType{
		Type:        TypeWebhookTrigger,
		Label:       "Webhook",
		Category:    CategoryTriggers,
		Kind:        nodetype.KindTrigger,
		Description: "Starts the workflow when an HTTP request arrives on the configured path",
		Outputs:     []nodetype.PortSpec{{Name: PortPayload, Label: "Payload", Multiple: true}},
		Properties: []nodetype.PropertySpec{
			{Name: "path", Label: "Path", Type: nodetype.PropertyTypeString, Required: true},
			{Name: "method", Label: "Method", Type: nodetype.PropertyTypeSelect, Default: "POST",
				Options: httpMethodOptions},
		},
		Executor: nodetype.ExecutorFunc(executeWebhookTrigger),
	}
}

func executeWebhookTrigger(_ context.Context, req *nodetype.ExecutionRequest) (*nodetype.NodeResult, error) {
	payload := req.Trigger
	if payload == nil {
		payload = map[string]any{}
	}
	return &nodetype.NodeResult{Outputs: map[string]any{PortPayload: payload}}, nil
}

func scheduleTriggerType() nodetype.NodeType {
	return nodetype.NodeType{
		Type:        TypeScheduleTrigger,
		Label:       "Schedule",
		Category:    CategoryTriggers,
		Kind:        nodetype.KindTrigger,
		Description: "Starts the workflow on a cron schedule",
		Outputs:     []nodetype.PortSpec{{Name: PortTick, Label: "Tick", Multiple: true}},
		Properties: []nodetype.PropertySpec{
			{Name: "cron", Label: "Cron expression", Type: nodetype.PropertyTypeString, Required: true},
			{Name: "timezone", Label: "Timezone", Type: nodetype.PropertyTypeString, Default: "UTC"},
		},
		Executor: nodetype.ExecutorFunc(executeScheduleTrigger),
	}
}

func executeScheduleTrigger(_ context.Context, req *nodetype.ExecutionRequest) (*nodetype.NodeResult, error) {
	tick := req.Trigger
	if tick == nil {
		tick = map[string]any{"firedAt": time.Now().UTC().Format(time.RFC3339)}
	}
	return &nodetype.NodeResult{Outputs: map[string]any{PortTick: tick}}, nil
}
