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
	"github.com/opsdeck/flowcore/internal/system/database/provider"
	"github.com/opsdeck/flowcore/internal/system/utils"
	"github.com/opsdeck/flowcore/internal/workflow/model"
	"github.com/opsdeck/flowcore/internal/workflow/runstore"
)

// RunStore keeps run history in the workflow database.
type RunStore struct {
	dbProvider provider.DBProviderInterface
	now        func() time.Time
}

var _ runstore.RunStoreInterface = (*RunStore)(nil)

// NewRunStore creates a run store backed by the given provider.
func NewRunStore(dbProvider provider.DBProviderInterface) *RunStore {
	return &RunStore{
		dbProvider: dbProvider,
		now:        time.Now,
	}
}

// BeginRun inserts a running record and returns its id.
func (s *RunStore) BeginRun(workflowID string, nodeCount int) (string, error) {
	dbClient, err := s.getDBClient()
	if err != nil {
		return "", err
	}

	runID := utils.GenerateUUID()
	_, err = dbClient.Execute(QueryBeginRun, runID, workflowID, string(model.RunStatusRunning),
		formatTime(s.now()), nodeCount)
	if err != nil {
		return "", fmt.Errorf("failed to execute query: %w", err)
	}
	return runID, nil
}

// CompleteRun finalizes a running record. Only rows still in the running
// status are updated, so a finalized record never changes.
func (s *RunStore) CompleteRun(runID string, outcome model.RunOutcome) error {
	if !outcome.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", runstore.ErrInvalidStatus, outcome.Status)
	}

	record, err := s.GetRun(runID)
	if err != nil {
		return err
	}
	if record.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", runstore.ErrRunFinalized, runID)
	}

	dbClient, err := s.getDBClient()
	if err != nil {
		return err
	}

	endTime := s.now().UTC()
	duration := endTime.Sub(record.StartTime).Milliseconds()
	if duration < 0 {
		duration = 0
	}
	rowsAffected, err := dbClient.Execute(QueryCompleteRun, runID, string(outcome.Status), formatTime(endTime),
		duration, outcome.NodeCount, nullableString(outcome.FailedNodeID), nullableString(outcome.Error))
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", runstore.ErrRunFinalized, runID)
	}
	return nil
}

// GetRun reads a run by id.
func (s *RunStore) GetRun(runID string) (*model.ExecutionRecord, error) {
	dbClient, err := s.getDBClient()
	if err != nil {
		return nil, err
	}

	results, err := dbClient.Query(QueryGetRunByID, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", runstore.ErrRunNotFound, runID)
	}

	record, err := buildRunFromResultRow(results[0])
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListRuns returns at most limit runs of the workflow, newest first. A non
// positive limit returns every run.
func (s *RunStore) ListRuns(workflowID string, limit int) ([]model.ExecutionRecord, error) {
	dbClient, err := s.getDBClient()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}
	if limit > 0 {
		results, err = dbClient.Query(QueryListRunsWithLimit, workflowID, limit)
	} else {
		results, err = dbClient.Query(QueryListRuns, workflowID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	records := make([]model.ExecutionRecord, 0, len(results))
	for _, row := range results {
		record, err := buildRunFromResultRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *RunStore) getDBClient() (client.DBClientInterface, error) {
	dbClient, err := s.dbProvider.GetDBClient(provider.DataSourceWorkflow)
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}
	return dbClient, nil
}

func buildRunFromResultRow(row map[string]interface{}) (model.ExecutionRecord, error) {
	runID, ok := row["run_id"].(string)
	if !ok {
		return model.ExecutionRecord{}, errors.New("failed to parse run_id as string")
	}
	workflowID, ok := row["workflow_id"].(string)
	if !ok {
		return model.ExecutionRecord{}, errors.New("failed to parse workflow_id as string")
	}
	status, ok := row["status"].(string)
	if !ok {
		return model.ExecutionRecord{}, errors.New("failed to parse status as string")
	}

	startTime, err := parseTime(row["start_time"])
	if err != nil {
		return model.ExecutionRecord{}, err
	}
	endTime, err := parseOptionalTime(row["end_time"])
	if err != nil {
		return model.ExecutionRecord{}, err
	}

	return model.ExecutionRecord{
		ID:           runID,
		WorkflowID:   workflowID,
		Status:       model.RunStatus(status),
		StartTime:    startTime,
		EndTime:      endTime,
		Duration:     parseInt(row["duration_ms"]),
		NodeCount:    int(parseInt(row["node_count"])),
		FailedNodeID: utils.ConvertInterfaceValueToString(row["failed_node_id"]),
		Error:        utils.ConvertInterfaceValueToString(row["error"]),
	}, nil
}
