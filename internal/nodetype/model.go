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

// Package nodetype defines node types, their ports and properties, and the registry holding them.
package nodetype

import (
	"context"

	"github.com/opsdeck/flowcore/internal/system/utils"
)

// Kind classifies how the engine treats a node type.
type Kind string

const (
	// KindAction is a regular node that consumes inputs and produces outputs.
	KindAction Kind = "action"
	// KindTrigger is an entry node that starts a run.
	KindTrigger Kind = "trigger"
	// KindBranch activates exactly one of its "true" or "false" output ports.
	KindBranch Kind = "branch"
	// KindLoop emits each element of a collection on its "item" port and then fires "completed".
	KindLoop Kind = "loop"
)

// Well known port names used by branch and loop node types.
const (
	PortTrue      = "true"
	PortFalse     = "false"
	PortItem      = "item"
	PortCompleted = "completed"
	// PortContinue is the loop input that receives edges closing an iteration.
	PortContinue = "continue"
)

// PropertyType is the type of a node property value.
type PropertyType string

// Supported property types.
const (
	PropertyTypeString   PropertyType = "string"
	PropertyTypeNumber   PropertyType = "number"
	PropertyTypeBoolean  PropertyType = "boolean"
	PropertyTypeSelect   PropertyType = "select"
	PropertyTypeJSON     PropertyType = "json"
	PropertyTypeTextarea PropertyType = "textarea"
	PropertyTypeCode     PropertyType = "code"
)

// PortSpec describes an input or output port of a node type.
type PortSpec struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Multiple bool   `json:"multiple"`
	Required bool   `json:"required,omitempty"`
}

// PropertyOption is a selectable value of a select property.
type PropertyOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// PropertySpec describes a configurable property of a node type.
type PropertySpec struct {
	Name        string           `json:"name"`
	Label       string           `json:"label"`
	Type        PropertyType     `json:"type"`
	Required    bool             `json:"required"`
	Default     any              `json:"default,omitempty"`
	Options     []PropertyOption `json:"options,omitempty"`
	Description string           `json:"description,omitempty"`
}

// ExecutionRequest carries everything an executor needs to run a single node invocation.
type ExecutionRequest struct {
	RunID      string
	WorkflowID string
	NodeID     string
	// Inputs maps input port names to values. Unconnected ports hold Absent and
	// ports accepting multiple edges hold a []any.
	Inputs map[string]any
	// Properties are the node's property values with defaults applied.
	Properties map[string]any
	// Trigger is the payload the run was started with.
	Trigger any
}

// NodeResult is the outcome of a successful node invocation.
type NodeResult struct {
	// Outputs maps output port names to produced values.
	Outputs map[string]any
	// Decision selects the active port of a branch node.
	Decision *bool
	// Items is the collection iterated by a loop node.
	Items []any
}

// Executor performs the effect of a node type.
type Executor interface {
	Execute(ctx context.Context, req *ExecutionRequest) (*NodeResult, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req *ExecutionRequest) (*NodeResult, error)

// Execute calls f(ctx, req).
func (f ExecutorFunc) Execute(ctx context.Context, req *ExecutionRequest) (*NodeResult, error) {
	return f(ctx, req)
}

// NodeType is a registered kind of workflow node.
type NodeType struct {
	Type        string         `json:"type"`
	Label       string         `json:"label"`
	Category    string         `json:"category"`
	Kind        Kind           `json:"kind"`
	Description string         `json:"description,omitempty"`
	Inputs      []PortSpec     `json:"inputs"`
	Outputs     []PortSpec     `json:"outputs"`
	Properties  []PropertySpec `json:"properties"`
	Executor    Executor       `json:"-"`
}

// absentValue is the type of the Absent marker.
type absentValue struct{}

// String implements fmt.Stringer.
func (absentValue) String() string { return "<absent>" }

// MarshalJSON renders the marker as null.
func (absentValue) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Absent marks an input port with no connected edge.
var Absent any = absentValue{}

// IsAbsent reports whether the value is the Absent marker.
func IsAbsent(value any) bool {
	_, ok := value.(absentValue)
	return ok
}

// InputPort returns the input port with the given name.
func (nt *NodeType) InputPort(name string) (PortSpec, bool) {
	return findPort(nt.Inputs, name)
}

// OutputPort returns the output port with the given name.
func (nt *NodeType) OutputPort(name string) (PortSpec, bool) {
	return findPort(nt.Outputs, name)
}

// Property returns the property spec with the given name.
func (nt *NodeType) Property(name string) (PropertySpec, bool) {
	for _, prop := range nt.Properties {
		if prop.Name == name {
			return prop, true
		}
	}
	return PropertySpec{}, false
}

// IsTrigger reports whether the node type starts runs.
func (nt *NodeType) IsTrigger() bool {
	return nt.Kind == KindTrigger
}

// ResolveProperties merges the declared defaults with the given values.
// Values for undeclared keys are kept untouched.
func (nt *NodeType) ResolveProperties(values map[string]any) map[string]any {
	resolved := utils.DeepCopyMap(values)
	if resolved == nil {
		resolved = make(map[string]any, len(nt.Properties))
	}
	for _, prop := range nt.Properties {
		if prop.Default == nil {
			continue
		}
		if current, ok := resolved[prop.Name]; !ok || IsEmptyValue(current) {
			resolved[prop.Name] = utils.DeepCopyValue(prop.Default)
		}
	}
	return resolved
}

// IsEmptyValue reports whether a property value counts as unset.
func IsEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

func findPort(ports []PortSpec, name string) (PortSpec, bool) {
	for _, port := range ports {
		if port.Name == name {
			return port, true
		}
	}
	return PortSpec{}, false
}
