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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/system/constants"
	"github.com/opsdeck/flowcore/internal/system/log"
)

// maxResponseBodySize bounds the response body read by the http.request node.
const maxResponseBodySize = 10 << 20

func httpRequestType(deps Dependencies) nodetype.NodeType {
	return nodetype.NodeType{
		Type:        TypeHTTPRequest,
		Label:       "HTTP Request",
		Category:    CategoryHTTP,
		Kind:        nodetype.KindAction,
		Description: "Sends an HTTP request and emits the response",
		Inputs:      []nodetype.PortSpec{{Name: PortInput, Label: "Input"}},
		Outputs:     []nodetype.PortSpec{{Name: PortResponse, Label: "Response", Multiple: true}},
		Properties: []nodetype.PropertySpec{
			{Name: "url", Label: "URL", Type: nodetype.PropertyTypeString, Required: true},
			{Name: "method", Label: "Method", Type: nodetype.PropertyTypeSelect, Default: "GET",
				Options: httpMethodOptions},
			{Name: "headers", Label: "Headers", Type: nodetype.PropertyTypeJSON},
			{Name: "body", Label: "Body", Type: nodetype.PropertyTypeTextarea},
			{Name: "failOnError", Label: "Fail on error status", Type: nodetype.PropertyTypeBoolean,
				Default: true},
		},
		Executor: nodetype.ExecutorFunc(func(ctx context.Context, req *nodetype.ExecutionRequest) (*nodetype.NodeResult, error) {
			return executeHTTPRequest(ctx, deps, req)
		}),
	}
}

func executeHTTPRequest(ctx context.Context, deps Dependencies,
	req *nodetype.ExecutionRequest) (*nodetype.NodeResult, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyNodeID, req.NodeID))
	vars := expressionVars(req, PortInput)

	url, err := deps.Evaluator.RenderTemplate(stringProperty(req.Properties, "url"), vars)
	if err != nil {
		return nil, fmt.Errorf("failed to render url: %w", err)
	}
	method := strings.ToUpper(stringProperty(req.Properties, "method"))
	if method == "" {
		method = http.MethodGet
	}

	headers, err := resolveHeaders(deps, req.Properties["headers"], vars)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if rawBody := stringProperty(req.Properties, "body"); rawBody != "" {
		rendered, err := deps.Evaluator.RenderTemplate(rawBody, vars)
		if err != nil {
			return nil, fmt.Errorf("failed to render body: %w", err)
		}
		body = bytes.NewBufferString(rendered)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}
	if body != nil && httpReq.Header.Get(constants.ContentTypeHeaderName) == "" {
		httpReq.Header.Set(constants.ContentTypeHeaderName, constants.ContentTypeJSON)
	}

	logger.Debug("Sending HTTP request", log.String("method", method), log.String("url", url))
	resp, err := deps.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error("Failed to close response body", log.Error(closeErr))
		}
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if failOnError(req.Properties["failOnError"]) && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return nil, fmt.Errorf("request to %s returned status %d", url, resp.StatusCode)
	}

	responseHeaders := make(map[string]any, len(resp.Header))
	for key := range resp.Header {
		responseHeaders[key] = resp.Header.Get(key)
	}
	response := map[string]any{
		"status":  resp.StatusCode,
		"headers": responseHeaders,
		"body":    decodeResponseBody(resp.Header.Get(constants.ContentTypeHeaderName), payload),
	}
	return &nodetype.NodeResult{Outputs: map[string]any{PortResponse: response}}, nil
}

// resolveHeaders renders the header map of an http.request node.
func resolveHeaders(deps Dependencies, raw any, vars map[string]any) (map[string]string, error) {
	if str, ok := raw.(string); ok {
		if strings.TrimSpace(str) == "" {
			return map[string]string{}, nil
		}
		var decoded map[string]any
		if err := json.Unmarshal([]byte(str), &decoded); err != nil {
			return nil, fmt.Errorf("headers must be a JSON object: %w", err)
		}
		raw = decoded
	}
	if raw == nil {
		return map[string]string{}, nil
	}
	headerMap, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("headers must be a JSON object, got %T", raw)
	}

	headers := make(map[string]string, len(headerMap))
	for key, value := range headerMap {
		str := fmt.Sprint(value)
		rendered, err := deps.Evaluator.RenderTemplate(str, vars)
		if err != nil {
			return nil, fmt.Errorf("failed to render header %q: %w", key, err)
		}
		headers[key] = rendered
	}
	return headers, nil
}

func failOnError(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(v)
		return err != nil || parsed
	}
	return true
}

func decodeResponseBody(contentType string, payload []byte) any {
	if strings.Contains(contentType, "json") && len(payload) > 0 {
		decoder := json.NewDecoder(bytes.NewReader(payload))
		decoder.UseNumber()
		var decoded any
		if err := decoder.Decode(&decoded); err == nil {
			return decoded
		}
	}
	return string(payload)
}
