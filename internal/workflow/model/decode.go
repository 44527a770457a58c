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

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DecodeWorkflowJSON decodes a workflow document from JSON. Numbers are kept
// as json.Number so property values survive a save and load unchanged.
func DecodeWorkflowJSON(data []byte) (*Workflow, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var workflow Workflow
	if err := decoder.Decode(&workflow); err != nil {
		return nil, fmt.Errorf("failed to decode workflow document: %w", err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("failed to decode workflow document: unexpected trailing data")
	}
	normalize(&workflow)
	return &workflow, nil
}

// DecodeWorkflowYAML decodes a workflow document from YAML.
func DecodeWorkflowYAML(data []byte) (*Workflow, error) {
	var workflow Workflow
	if err := yaml.Unmarshal(data, &workflow); err != nil {
		return nil, fmt.Errorf("failed to decode workflow document: %w", err)
	}
	for i := range workflow.Nodes {
		workflow.Nodes[i].Properties = normalizeYAMLMap(workflow.Nodes[i].Properties)
	}
	normalize(&workflow)
	return &workflow, nil
}

// EncodeWorkflowJSON encodes a workflow document as JSON.
func EncodeWorkflowJSON(workflow *Workflow) ([]byte, error) {
	data, err := json.Marshal(workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to encode workflow document: %w", err)
	}
	return data, nil
}

func normalize(workflow *Workflow) {
	if workflow.Nodes == nil {
		workflow.Nodes = []WorkflowNode{}
	}
	if workflow.Edges == nil {
		workflow.Edges = []Edge{}
	}
	for i := range workflow.Nodes {
		if workflow.Nodes[i].Properties == nil {
			workflow.Nodes[i].Properties = map[string]any{}
		}
	}
}

// normalizeYAMLMap converts nested YAML values into JSON-compatible ones.
func normalizeYAMLMap(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	normalized := make(map[string]any, len(values))
	for key, value := range values {
		normalized[key] = normalizeYAMLValue(value)
	}
	return normalized
}

func normalizeYAMLValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return normalizeYAMLMap(v)
	case map[any]any:
		converted := make(map[string]any, len(v))
		for key, item := range v {
			converted[fmt.Sprint(key)] = normalizeYAMLValue(item)
		}
		return converted
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = normalizeYAMLValue(item)
		}
		return items
	case int, int64, uint64, float64:
		return json.Number(fmt.Sprint(v))
	default:
		return v
	}
}
