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

// Package expression evaluates HCL expressions and string templates against workflow values.
package expression

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

const sourceName = "expression"

// ErrInvalidExpression is returned when an expression cannot be parsed or evaluated.
var ErrInvalidExpression = errors.New("invalid expression")

// EvaluatorInterface defines the expression operations used by node executors.
type EvaluatorInterface interface {
	Evaluate(expr string, vars map[string]any) (any, error)
	EvaluateBool(expr string, vars map[string]any) (bool, error)
	RenderTemplate(tmpl string, vars map[string]any) (string, error)
	RenderValue(value any, vars map[string]any) (any, error)
}

// Evaluator evaluates expressions with a fixed function table.
type Evaluator struct {
	functions map[string]function.Function
}

// NewEvaluator creates an evaluator exposing the standard function table.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		functions: map[string]function.Function{
			"abs":        stdlib.AbsoluteFunc,
			"coalesce":   stdlib.CoalesceFunc,
			"concat":     stdlib.ConcatFunc,
			"contains":   stdlib.ContainsFunc,
			"element":    stdlib.ElementFunc,
			"format":     stdlib.FormatFunc,
			"join":       stdlib.JoinFunc,
			"jsondecode": stdlib.JSONDecodeFunc,
			"jsonencode": stdlib.JSONEncodeFunc,
			"keys":       stdlib.KeysFunc,
			"length":     stdlib.LengthFunc,
			"lookup":     stdlib.LookupFunc,
			"lower":      stdlib.LowerFunc,
			"max":        stdlib.MaxFunc,
			"min":        stdlib.MinFunc,
			"replace":    stdlib.ReplaceFunc,
			"split":      stdlib.SplitFunc,
			"strlen":     stdlib.StrlenFunc,
			"substr":     stdlib.SubstrFunc,
			"tonumber":   stdlib.MakeToFunc(cty.Number),
			"tostring":   stdlib.MakeToFunc(cty.String),
			"trimspace":  stdlib.TrimSpaceFunc,
			"upper":      stdlib.UpperFunc,
			"values":     stdlib.ValuesFunc,
		},
	}
}

// Evaluate evaluates an expression and returns its native Go value.
func (e *Evaluator) Evaluate(expr string, vars map[string]any) (any, error) {
	val, err := e.evaluate(expr, vars)
	if err != nil {
		return nil, err
	}
	return FromCtyValue(val)
}

// EvaluateBool evaluates an expression that must produce a boolean.
func (e *Evaluator) EvaluateBool(expr string, vars map[string]any) (bool, error) {
	val, err := e.evaluate(expr, vars)
	if err != nil {
		return false, err
	}
	if val.IsNull() || !val.IsKnown() {
		return false, fmt.Errorf("%w: %q evaluated to null", ErrInvalidExpression, expr)
	}

	boolVal, err := convert.Convert(val, cty.Bool)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean: %s", ErrInvalidExpression, expr, err.Error())
	}
	return boolVal.True(), nil
}

// RenderTemplate renders a string template. Strings without interpolation are returned as is.
func (e *Evaluator) RenderTemplate(tmpl string, vars map[string]any) (string, error) {
	if !IsTemplate(tmpl) {
		return tmpl, nil
	}

	parsed, diags := hclsyntax.ParseTemplate([]byte(tmpl), sourceName, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return "", fmt.Errorf("%w: %s", ErrInvalidExpression, diags.Error())
	}
	evalCtx, err := e.buildContext(vars)
	if err != nil {
		return "", err
	}
	val, diags := parsed.Value(evalCtx)
	if diags.HasErrors() {
		return "", fmt.Errorf("%w: %s", ErrInvalidExpression, diags.Error())
	}

	strVal, err := convert.Convert(val, cty.String)
	if err != nil || strVal.IsNull() {
		return "", fmt.Errorf("%w: template did not produce a string", ErrInvalidExpression)
	}
	return strVal.AsString(), nil
}

// RenderValue renders every template string nested in a JSON-like value.
func (e *Evaluator) RenderValue(value any, vars map[string]any) (any, error) {
	switch v := value.(type) {
	case string:
		return e.RenderTemplate(v, vars)
	case []any:
		rendered := make([]any, len(v))
		for i, item := range v {
			r, err := e.RenderValue(item, vars)
			if err != nil {
				return nil, err
			}
			rendered[i] = r
		}
		return rendered, nil
	case map[string]any:
		rendered := make(map[string]any, len(v))
		for key, item := range v {
			r, err := e.RenderValue(item, vars)
			if err != nil {
				return nil, fmt.Errorf("in %q: %w", key, err)
			}
			rendered[key] = r
		}
		return rendered, nil
	default:
		return value, nil
	}
}

// IsTemplate reports whether the string contains an interpolation sequence.
func IsTemplate(s string) bool {
	return strings.Contains(s, "${") || strings.Contains(s, "%{")
}

func (e *Evaluator) evaluate(expr string, vars map[string]any) (cty.Value, error) {
	if strings.TrimSpace(expr) == "" {
		return cty.NilVal, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}

	parsed, diags := hclsyntax.ParseExpression([]byte(expr), sourceName, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("%w: %s", ErrInvalidExpression, diags.Error())
	}
	evalCtx, err := e.buildContext(vars)
	if err != nil {
		return cty.NilVal, err
	}
	val, diags := parsed.Value(evalCtx)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("%w: %s", ErrInvalidExpression, diags.Error())
	}
	return val, nil
}

func (e *Evaluator) buildContext(vars map[string]any) (*hcl.EvalContext, error) {
	variables := make(map[string]cty.Value, len(vars))
	for name, value := range vars {
		val, err := ToCtyValue(value)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		variables[name] = val
	}
	return &hcl.EvalContext{
		Variables: variables,
		Functions: e.functions,
	}, nil
}
