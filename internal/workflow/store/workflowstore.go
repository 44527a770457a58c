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
	"errors"
	"fmt"
	"time"

	"github.com/opsdeck/flowcore/internal/system/database/client"
	dbmodel "github.com/opsdeck/flowcore/internal/system/database/model"
	"github.com/opsdeck/flowcore/internal/system/database/provider"
	"github.com/opsdeck/flowcore/internal/system/log"
	"github.com/opsdeck/flowcore/internal/system/utils"
	"github.com/opsdeck/flowcore/internal/workflow/model"
)

const storeLoggerComponentName = "WorkflowStore"

var (
	// ErrWorkflowNotFound is returned when no workflow exists with the given id.
	ErrWorkflowNotFound = errors.New("workflow not found")
)

// WorkflowStoreInterface defines the persistence operations of workflow definitions.
type WorkflowStoreInterface interface {
	CreateWorkflow(workflow *model.Workflow) error
	GetWorkflow(id string) (*model.Workflow, error)
	ListWorkflows() ([]model.WorkflowSummary, error)
	ListActiveWorkflows() ([]*model.Workflow, error)
	UpdateWorkflow(workflow *model.Workflow) error
	DeleteWorkflow(id string) error
	RecordRun(workflowID string, at time.Time) error
}

// WorkflowStore keeps workflow documents in the workflow database.
type WorkflowStore struct {
	dbProvider provider.DBProviderInterface
}

// NewWorkflowStore creates a workflow store backed by the given provider.
func NewWorkflowStore(dbProvider provider.DBProviderInterface) *WorkflowStore {
	return &WorkflowStore{
		dbProvider: dbProvider,
	}
}

// CreateWorkflow inserts a new workflow. CreatedAt and UpdatedAt must be set by the caller.
func (s *WorkflowStore) CreateWorkflow(workflow *model.Workflow) error {
	dbClient, err := s.getDBClient()
	if err != nil {
		return err
	}

	document, err := model.EncodeWorkflowJSON(workflow)
	if err != nil {
		return fmt.Errorf("failed to encode workflow: %w", err)
	}

	_, err = dbClient.Execute(QueryCreateWorkflow, workflow.ID, workflow.Name, workflow.Description,
		utils.BoolToNumString(workflow.Active), len(workflow.Nodes), string(document),
		formatTime(workflow.CreatedAt), formatTime(workflow.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}

// GetWorkflow reads a workflow by id.
func (s *WorkflowStore) GetWorkflow(id string) (*model.Workflow, error) {
	dbClient, err := s.getDBClient()
	if err != nil {
		return nil, err
	}

	results, err := dbClient.Query(QueryGetWorkflowByID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrWorkflowNotFound
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("unexpected number of results: %d", len(results))
	}

	return buildWorkflowFromResultRow(results[0])
}

// ListWorkflows returns a summary of every workflow ordered by name.
func (s *WorkflowStore) ListWorkflows() ([]model.WorkflowSummary, error) {
	workflows, err := s.queryWorkflows(QueryListWorkflows)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.WorkflowSummary, 0, len(workflows))
	for _, workflow := range workflows {
		summaries = append(summaries, model.WorkflowSummary{
			ID:          workflow.ID,
			Name:        workflow.Name,
			Description: workflow.Description,
			Active:      workflow.Active,
			Tags:        workflow.Tags,
			NodeCount:   len(workflow.Nodes),
			UpdatedAt:   workflow.UpdatedAt,
			RunCount:    workflow.RunCount,
			LastRun:     workflow.LastRun,
		})
	}
	return summaries, nil
}

// ListActiveWorkflows returns the full documents of every active workflow.
func (s *WorkflowStore) ListActiveWorkflows() ([]*model.Workflow, error) {
	return s.queryWorkflows(QueryListActiveWorkflows)
}

// UpdateWorkflow replaces the stored document of an existing workflow.
func (s *WorkflowStore) UpdateWorkflow(workflow *model.Workflow) error {
	dbClient, err := s.getDBClient()
	if err != nil {
		return err
	}

	document, err := model.EncodeWorkflowJSON(workflow)
	if err != nil {
		return fmt.Errorf("failed to encode workflow: %w", err)
	}

	rowsAffected, err := dbClient.Execute(QueryUpdateWorkflow, workflow.ID, workflow.Name, workflow.Description,
		utils.BoolToNumString(workflow.Active), len(workflow.Nodes), string(document),
		formatTime(workflow.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	if rowsAffected == 0 {
		return ErrWorkflowNotFound
	}
	return nil
}

// DeleteWorkflow deletes a workflow together with its run history.
func (s *WorkflowStore) DeleteWorkflow(id string) error {
	dbClient, err := s.getDBClient()
	if err != nil {
		return err
	}

	tx, err := dbClient.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err = tx.Exec(QueryDeleteWorkflowRuns.Query, id); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rollbackErr))
		}
		return fmt.Errorf("failed to delete workflow runs: %w", err)
	}

	result, err := tx.Exec(QueryDeleteWorkflow.Query, id)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rollbackErr))
		}
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		err = ErrWorkflowNotFound
	}
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rollbackErr))
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.GetLogger().With(log.String(log.LoggerKeyComponentName, storeLoggerComponentName)).
		Debug("Workflow deleted", log.String(log.LoggerKeyWorkflowID, id))
	return nil
}

// RecordRun increments the run counter of a workflow and sets its last run time.
func (s *WorkflowStore) RecordRun(workflowID string, at time.Time) error {
	dbClient, err := s.getDBClient()
	if err != nil {
		return err
	}

	rowsAffected, err := dbClient.Execute(QueryRecordWorkflowRun, workflowID, formatTime(at))
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	if rowsAffected == 0 {
		return ErrWorkflowNotFound
	}
	return nil
}

func (s *WorkflowStore) queryWorkflows(query dbmodel.DBQuery) ([]*model.Workflow, error) {
	dbClient, err := s.getDBClient()
	if err != nil {
		return nil, err
	}

	results, err := dbClient.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	workflows := make([]*model.Workflow, 0, len(results))
	for _, row := range results {
		workflow, err := buildWorkflowFromResultRow(row)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, workflow)
	}
	return workflows, nil
}

func (s *WorkflowStore) getDBClient() (client.DBClientInterface, error) {
	dbClient, err := s.dbProvider.GetDBClient(provider.DataSourceWorkflow)
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}
	return dbClient, nil
}

// buildWorkflowFromResultRow decodes the stored document. The counters and
// timestamps held in columns take precedence over the document copy.
func buildWorkflowFromResultRow(row map[string]interface{}) (*model.Workflow, error) {
	workflowID, ok := row["workflow_id"].(string)
	if !ok {
		return nil, errors.New("failed to parse workflow_id as string")
	}

	document := utils.ConvertInterfaceValueToString(row["document"])
	workflow, err := model.DecodeWorkflowJSON([]byte(document))
	if err != nil {
		return nil, fmt.Errorf("failed to decode workflow %s: %w", workflowID, err)
	}
	workflow.ID = workflowID
	workflow.RunCount = int(parseInt(row["run_count"]))

	if workflow.LastRun, err = parseOptionalTime(row["last_run"]); err != nil {
		return nil, err
	}
	if workflow.CreatedAt, err = parseTime(row["created_at"]); err != nil {
		return nil, err
	}
	if workflow.UpdatedAt, err = parseTime(row["updated_at"]); err != nil {
		return nil, err
	}
	return workflow, nil
}
