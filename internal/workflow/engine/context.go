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

package engine

import (
	"sync"
)

// portKey addresses a value produced on an output port.
type portKey struct {
	nodeID string
	port   string
}

// executionContext holds the port values of a run. Loop iterations use child
// contexts that fall back to their parent for values produced outside the loop.
type executionContext struct {
	parent *executionContext
	values map[portKey]any
	mutex  sync.RWMutex
}

func newExecutionContext(parent *executionContext) *executionContext {
	return &executionContext{
		parent: parent,
		values: make(map[portKey]any),
	}
}

// Set records the value produced on a port.
func (c *executionContext) Set(nodeID, port string, value any) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.values[portKey{nodeID: nodeID, port: port}] = value
}

// Get returns the value of a port and whether the port was activated.
func (c *executionContext) Get(nodeID, port string) (any, bool) {
	for current := c; current != nil; current = current.parent {
		current.mutex.RLock()
		value, ok := current.values[portKey{nodeID: nodeID, port: port}]
		current.mutex.RUnlock()
		if ok {
			return value, true
		}
	}
	return nil, false
}

// Snapshot returns the values recorded directly in this context grouped by node.
func (c *executionContext) Snapshot() map[string]map[string]any {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	snapshot := make(map[string]map[string]any)
	for key, value := range c.values {
		ports, ok := snapshot[key.nodeID]
		if !ok {
			ports = make(map[string]any)
			snapshot[key.nodeID] = ports
		}
		ports[key.port] = value
	}
	return snapshot
}
