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

package nodetype

import (
	"errors"
	"sort"
	"sync"

	"github.com/opsdeck/flowcore/internal/system/log"
)

const registryLoggerComponentName = "NodeTypeRegistry"

// ErrUnknownNodeType is returned when a node type is not registered.
var ErrUnknownNodeType = errors.New("unknown node type")

// RegistryInterface defines the read and registration operations of the node type catalog.
type RegistryInterface interface {
	Register(nodeTypeID string, definition NodeType)
	Get(nodeTypeID string) (*NodeType, bool)
	GetAll() map[string]NodeType
	Categories() []string
	ListByCategory(category string) []NodeType
}

// Registry is the default implementation of RegistryInterface. It is safe for concurrent use.
type Registry struct {
	nodeTypes map[string]NodeType
	mutex     sync.RWMutex
}

// NewRegistry creates an empty node type registry.
func NewRegistry() *Registry {
	return &Registry{
		nodeTypes: make(map[string]NodeType),
	}
}

// Register adds the definition under the given type id. An existing definition
// with the same id is replaced.
func (r *Registry) Register(nodeTypeID string, definition NodeType) {
	definition.Type = nodeTypeID

	r.mutex.Lock()
	_, exists := r.nodeTypes[nodeTypeID]
	r.nodeTypes[nodeTypeID] = definition
	r.mutex.Unlock()

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, registryLoggerComponentName))
	if exists {
		logger.Warn("Replacing previously registered node type", log.String(log.LoggerKeyNodeType, nodeTypeID))
		return
	}
	logger.Debug("Registered node type", log.String(log.LoggerKeyNodeType, nodeTypeID),
		log.String("category", definition.Category))
}

// Get returns the node type registered under the given id.
func (r *Registry) Get(nodeTypeID string) (*NodeType, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	definition, ok := r.nodeTypes[nodeTypeID]
	if !ok {
		return nil, false
	}
	return &definition, true
}

// GetAll returns a copy of the catalog keyed by type id.
func (r *Registry) GetAll() map[string]NodeType {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	all := make(map[string]NodeType, len(r.nodeTypes))
	for id, definition := range r.nodeTypes {
		all[id] = definition
	}
	return all
}

// Categories returns the sorted set of categories of the registered node types.
func (r *Registry) Categories() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, definition := range r.nodeTypes {
		if _, ok := seen[definition.Category]; ok {
			continue
		}
		seen[definition.Category] = struct{}{}
		categories = append(categories, definition.Category)
	}
	sort.Strings(categories)
	return categories
}

// ListByCategory returns the node types of a category sorted by type id.
func (r *Registry) ListByCategory(category string) []NodeType {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	nodeTypes := make([]NodeType, 0)
	for _, definition := range r.nodeTypes {
		if definition.Category == category {
			nodeTypes = append(nodeTypes, definition)
		}
	}
	sort.Slice(nodeTypes, func(i, j int) bool {
		return nodeTypes[i].Type < nodeTypes[j].Type
	})
	return nodeTypes
}
