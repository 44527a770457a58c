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

package expression

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ToCtyValue converts a JSON-like Go value into a cty value.
// The value passes through its JSON form so json.Number and nested
// maps and slices of any depth are handled uniformly.
func ToCtyValue(value any) (cty.Value, error) {
	if value == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to encode value: %w", err)
	}
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty type: %w", err)
	}
	if ty == cty.DynamicPseudoType {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	val, err := ctyjson.Unmarshal(raw, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to decode value: %w", err)
	}
	return val, nil
}

// FromCtyValue converts a cty value to its natural Go counterpart. Whole
// numbers become int64 and other numbers float64.
func FromCtyValue(val cty.Value) (any, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, nil
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil

	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, accuracy := bf.Int64(); accuracy == 0 {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil

	case ty == cty.Bool:
		return val.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		items := make([]any, 0, val.LengthInt())
		it := val.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := FromCtyValue(elem)
			if err != nil {
				return nil, err
			}
			items = append(items, native)
		}
		return items, nil

	case ty.IsObjectType() || ty.IsMapType():
		result := make(map[string]any)
		it := val.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := FromCtyValue(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			result[key.AsString()] = native
		}
		return result, nil

	default:
		return nil, fmt.Errorf("unsupported cty type: %s", ty.FriendlyName())
	}
}
