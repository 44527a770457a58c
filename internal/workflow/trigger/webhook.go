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

package trigger

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/system/log"
	"github.com/opsdeck/flowcore/internal/system/utils"
	"github.com/opsdeck/flowcore/internal/workflow/model"
)

const (
	webhookLoggerComponentName = "WebhookDispatcher"
	defaultWebhookMethod       = http.MethodPost
	maxWebhookBodySize         = 1 << 20
)

// routeKey identifies a webhook route.
type routeKey struct {
	method string
	path   string
}

// webhookTarget is a trigger node listening on a route.
type webhookTarget struct {
	workflowID string
	nodeID     string
}

// WebhookResponse is returned when a webhook request started one or more runs.
type WebhookResponse struct {
	RunIDs []string `json:"runIds"`
}

// WebhookDispatcher starts runs of active workflows whose webhook trigger
// nodes match the method and path of an incoming request.
type WebhookDispatcher struct {
	registry nodetype.RegistryInterface
	launcher LauncherInterface
	basePath string
	routes   map[routeKey][]webhookTarget
	mutex    sync.RWMutex
	logger   *log.Logger
}

var _ ListenerInterface = (*WebhookDispatcher)(nil)

// NewWebhookDispatcher creates a dispatcher serving requests under basePath.
func NewWebhookDispatcher(registry nodetype.RegistryInterface, launcher LauncherInterface,
	basePath string) *WebhookDispatcher {
	return &WebhookDispatcher{
		registry: registry,
		launcher: launcher,
		basePath: "/" + strings.Trim(basePath, "/"),
		routes:   make(map[routeKey][]webhookTarget),
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, webhookLoggerComponentName)),
	}
}

// BasePath returns the path prefix the dispatcher serves.
func (d *WebhookDispatcher) BasePath() string {
	return d.basePath
}

// Sync replaces the route index with the webhook nodes of the given workflows.
func (d *WebhookDispatcher) Sync(workflows []*model.Workflow) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.routes = make(map[routeKey][]webhookTarget)
	for _, workflow := range workflows {
		d.addLocked(workflow)
	}
}

// OnWorkflowSaved re-indexes the webhook nodes of a workflow.
func (d *WebhookDispatcher) OnWorkflowSaved(workflow *model.Workflow) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.removeLocked(workflow.ID)
	d.addLocked(workflow)
}

// OnWorkflowDeleted drops the routes of a deleted workflow.
func (d *WebhookDispatcher) OnWorkflowDeleted(workflowID string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.removeLocked(workflowID)
}

func (d *WebhookDispatcher) removeLocked(workflowID string) {
	for key, targets := range d.routes {
		kept := targets[:0]
		for _, target := range targets {
			if target.workflowID != workflowID {
				kept = append(kept, target)
			}
		}
		if len(kept) == 0 {
			delete(d.routes, key)
			continue
		}
		d.routes[key] = kept
	}
}

func (d *WebhookDispatcher) addLocked(workflow *model.Workflow) {
	if workflow == nil || !workflow.Active {
		return
	}
	for _, node := range triggerNodes(workflow, d.registry, PropertyPath) {
		path := normalizePath(stringProperty(node, d.registry, PropertyPath))
		if path == "" {
			continue
		}
		method := strings.ToUpper(stringProperty(node, d.registry, PropertyMethod))
		if method == "" {
			method = defaultWebhookMethod
		}

		key := routeKey{method: method, path: path}
		d.routes[key] = append(d.routes[key], webhookTarget{workflowID: workflow.ID, nodeID: node.ID})
		d.logger.Debug("Registered webhook route", log.String("method", method), log.String("path", path),
			log.String(log.LoggerKeyWorkflowID, workflow.ID), log.String(log.LoggerKeyNodeID, node.ID))
	}
}

func (d *WebhookDispatcher) lookup(method, path string) []webhookTarget {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	return append([]webhookTarget(nil), d.routes[routeKey{method: method, path: path}]...)
}

// ServeHTTP starts a run for every webhook node matching the request.
func (d *WebhookDispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := normalizePath(strings.TrimPrefix(r.URL.Path, d.basePath))
	targets := d.lookup(r.Method, path)
	if len(targets) == 0 {
		utils.WriteJSONError(w, "WF-1404", "No active workflow listens on this webhook", http.StatusNotFound, nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		utils.WriteJSONError(w, "WF-1001", "The webhook request body could not be read", http.StatusBadRequest, nil)
		return
	}

	payload := map[string]any{
		"body":    decodeBody(body),
		"headers": flatten(r.Header),
		"query":   flatten(r.URL.Query()),
		"method":  r.Method,
		"path":    path,
	}

	response := WebhookResponse{RunIDs: make([]string, 0, len(targets))}
	for _, target := range targets {
		event := Event{Source: SourceWebhook, NodeID: target.nodeID, Payload: utils.DeepCopyValue(payload)}
		runID, err := d.launcher.LaunchWorkflow(r.Context(), target.workflowID, event)
		if err != nil {
			d.logger.Error("Webhook run could not be started", log.String(log.LoggerKeyWorkflowID, target.workflowID),
				log.String(log.LoggerKeyNodeID, target.nodeID), log.Error(err))
			continue
		}
		response.RunIDs = append(response.RunIDs, runID)
	}

	if len(response.RunIDs) == 0 {
		utils.WriteJSONError(w, "WF-5002", "The workflow run could not be started", http.StatusInternalServerError, nil)
		return
	}
	sort.Strings(response.RunIDs)
	utils.WriteJSON(w, http.StatusAccepted, response)
}

func normalizePath(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}

// decodeBody returns the JSON value of the body, or the raw text when it is not JSON.
func decodeBody(body []byte) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil || decoder.More() {
		return string(body)
	}
	return value
}

func flatten(values map[string][]string) map[string]any {
	flat := make(map[string]any, len(values))
	for key, list := range values {
		if len(list) > 0 {
			flat[key] = list[0]
		}
	}
	return flat
}
