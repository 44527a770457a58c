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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/system/database/client"
	dbmodel "github.com/opsdeck/flowcore/internal/system/database/model"
	"github.com/opsdeck/flowcore/internal/system/database/provider"
	"github.com/opsdeck/flowcore/internal/system/log"
)

var errDataSourceNotAllowed = errors.New("data source is reserved for workflow storage")

func databaseProperties(statementName, statementLabel string) []nodetype.PropertySpec {
	return []nodetype.PropertySpec{
		{Name: statementName, Label: statementLabel, Type: nodetype.PropertyTypeCode, Required: true,
			Description: "SQL using positional placeholders ($1, $2, ...)"},
		{Name: "params", Label: "Parameters", Type: nodetype.PropertyTypeJSON,
			Description: "JSON array of positional parameters; string entries may use ${...} templates"},
		{Name: "datasource", Label: "Data source", Type: nodetype.PropertyTypeString,
			Default: provider.DataSourceData},
	}
}

func databaseQueryType(deps Dependencies) nodetype.NodeType {
	return nodetype.NodeType{
		Type:        TypeDatabaseQuery,
		Label:       "Query",
		Category:    CategoryDatabase,
		Kind:        nodetype.KindAction,
		Description: "Runs a SELECT statement and emits the resulting rows",
		Inputs:      []nodetype.PortSpec{{Name: PortInput, Label: "Input"}},
		Outputs:     []nodetype.PortSpec{{Name: PortRows, Label: "Rows", Multiple: true}},
		Properties:  databaseProperties("query", "Query"),
		Executor: nodetype.ExecutorFunc(func(ctx context.Context, req *nodetype.ExecutionRequest) (*nodetype.NodeResult, error) {
			dbClient, query, params, err := prepareStatement(ctx, deps, req, "query")
			if err != nil {
				return nil, err
			}
			rows, err := dbClient.QueryContext(ctx, query, params...)
			if err != nil {
				return nil, fmt.Errorf("query failed: %w", err)
			}
			return &nodetype.NodeResult{Outputs: map[string]any{PortRows: rows}}, nil
		}),
	}
}

func databaseUpdateType(deps Dependencies) nodetype.NodeType {
	return nodetype.NodeType{
		Type:        TypeDatabaseUpdate,
		Label:       "Update",
		Category:    CategoryDatabase,
		Kind:        nodetype.KindAction,
		Description: "Runs an INSERT, UPDATE or DELETE statement and emits the affected row count",
		Inputs:      []nodetype.PortSpec{{Name: PortInput, Label: "Input"}},
		Outputs:     []nodetype.PortSpec{{Name: PortResult, Label: "Result", Multiple: true}},
		Properties:  databaseProperties("statement", "Statement"),
		Executor: nodetype.ExecutorFunc(func(ctx context.Context, req *nodetype.ExecutionRequest) (*nodetype.NodeResult, error) {
			dbClient, statement, params, err := prepareStatement(ctx, deps, req, "statement")
			if err != nil {
				return nil, err
			}
			affected, err := dbClient.ExecuteContext(ctx, statement, params...)
			if err != nil {
				return nil, fmt.Errorf("statement failed: %w", err)
			}
			return &nodetype.NodeResult{
				Outputs: map[string]any{PortResult: map[string]any{"rowsAffected": affected}},
			}, nil
		}),
	}
}

// prepareStatement resolves the data source client, the statement and its rendered parameters.
func prepareStatement(ctx context.Context, deps Dependencies, req *nodetype.ExecutionRequest,
	statementProperty string) (client.DBClientInterface, dbmodel.DBQuery, []any, error) {
	if err := ctx.Err(); err != nil {
		return nil, dbmodel.DBQuery{}, nil, err
	}
	if deps.DBProvider == nil {
		return nil, dbmodel.DBQuery{}, nil, fmt.Errorf("no database provider is configured")
	}

	dataSource := stringProperty(req.Properties, "datasource")
	if dataSource == "" {
		dataSource = provider.DataSourceData
	}
	if dataSource == provider.DataSourceWorkflow {
		return nil, dbmodel.DBQuery{}, nil, fmt.Errorf("%w: %s", errDataSourceNotAllowed, dataSource)
	}

	statement := strings.TrimSpace(stringProperty(req.Properties, statementProperty))
	if statement == "" {
		return nil, dbmodel.DBQuery{}, nil, fmt.Errorf("property %q is empty", statementProperty)
	}

	params, err := resolveParams(deps, req)
	if err != nil {
		return nil, dbmodel.DBQuery{}, nil, err
	}

	dbClient, err := deps.DBProvider.GetDBClient(dataSource)
	if err != nil {
		return nil, dbmodel.DBQuery{}, nil, fmt.Errorf("failed to get database client: %w", err)
	}

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))
	logger.Debug("Executing database node", log.String(log.LoggerKeyNodeID, req.NodeID),
		log.String("dataSource", dataSource), log.Int("params", len(params)))

	return dbClient, dbmodel.DBQuery{ID: "NDQ-" + req.NodeID, Query: statement}, params, nil
}

// resolveParams renders the positional parameters of a database node.
func resolveParams(deps Dependencies, req *nodetype.ExecutionRequest) ([]any, error) {
	raw := req.Properties["params"]
	if str, ok := raw.(string); ok {
		if strings.TrimSpace(str) == "" {
			return []any{}, nil
		}
		decoder := json.NewDecoder(strings.NewReader(str))
		decoder.UseNumber()
		var decoded any
		if err := decoder.Decode(&decoded); err != nil {
			return nil, fmt.Errorf("params is not valid JSON: %w", err)
		}
		raw = decoded
	}

	var list []any
	switch v := raw.(type) {
	case nil:
		return []any{}, nil
	case []any:
		list = v
	default:
		return nil, fmt.Errorf("params must be a JSON array, got %T", raw)
	}

	rendered, err := deps.Evaluator.RenderValue(list, expressionVars(req, PortInput))
	if err != nil {
		return nil, err
	}

	params := make([]any, 0, len(list))
	for _, value := range rendered.([]any) {
		param, err := toSQLParam(value)
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	return params, nil
}

// toSQLParam converts a JSON value into a value accepted by database/sql drivers.
func toSQLParam(value any) (any, error) {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number parameter %q", v.String())
		}
		return f, nil
	case int:
		return int64(v), nil
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(encoded), nil
	}
	return value, nil
}
