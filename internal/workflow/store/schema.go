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

package store

import (
	"fmt"
	"time"

	"github.com/opsdeck/flowcore/internal/system/database/client"
	dbmodel "github.com/opsdeck/flowcore/internal/system/database/model"
	"github.com/opsdeck/flowcore/internal/system/utils"
)

// timeLayout keeps stored timestamps fixed width so that they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

var schemaQueries = []dbmodel.DBQuery{
	QueryCreateWorkflowTable,
	QueryCreateRunTable,
	QueryCreateRunIndex,
}

// EnsureSchema creates the workflow and run tables when they do not exist.
func EnsureSchema(dbClient client.DBClientInterface) error {
	for _, query := range schemaQueries {
		if _, err := dbClient.Execute(query); err != nil {
			return fmt.Errorf("failed to execute schema query %s: %w", query.ID, err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case nil:
		return time.Time{}, nil
	default:
		text := utils.ConvertInterfaceValueToString(v)
		if text == "" {
			return time.Time{}, nil
		}
		parsed, err := time.Parse(timeLayout, text)
		if err != nil {
			parsed, err = time.Parse(time.RFC3339Nano, text)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", text, err)
			}
		}
		return parsed.UTC(), nil
	}
}

func parseOptionalTime(value interface{}) (*time.Time, error) {
	parsed, err := parseTime(value)
	if err != nil || parsed.IsZero() {
		return nil, err
	}
	return &parsed, nil
}

func parseInt(value interface{}) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		var parsed int64
		if _, err := fmt.Sscan(utils.ConvertInterfaceValueToString(v), &parsed); err != nil {
			return 0
		}
		return parsed
	}
}

func nullableString(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
