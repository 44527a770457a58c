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

package validator

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/opsdeck/flowcore/internal/nodetype"
)

// checkPropertyValue verifies that a non-empty value matches the declared property type.
func checkPropertyValue(prop nodetype.PropertySpec, value any) error {
	switch prop.Type {
	case nodetype.PropertyTypeNumber:
		switch v := value.(type) {
		case json.Number, int, int32, int64, float32, float64:
			return nil
		case string:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return fmt.Errorf("%q is not a number", v)
			}
			return nil
		}
		return fmt.Errorf("expected a number")

	case nodetype.PropertyTypeBoolean:
		switch v := value.(type) {
		case bool:
			return nil
		case string:
			if _, err := strconv.ParseBool(v); err != nil {
				return fmt.Errorf("%q is not a boolean", v)
			}
			return nil
		}
		return fmt.Errorf("expected a boolean")

	case nodetype.PropertyTypeSelect:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected one of the declared options")
		}
		if len(prop.Options) == 0 {
			return nil
		}
		for _, option := range prop.Options {
			if option.Value == str {
				return nil
			}
		}
		return fmt.Errorf("%q is not one of the declared options", str)

	case nodetype.PropertyTypeJSON:
		if str, ok := value.(string); ok && !json.Valid([]byte(str)) {
			return fmt.Errorf("value is not valid JSON")
		}
		return nil

	case nodetype.PropertyTypeString, nodetype.PropertyTypeTextarea, nodetype.PropertyTypeCode:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected a string")
		}
		return nil
	}
	return nil
}
