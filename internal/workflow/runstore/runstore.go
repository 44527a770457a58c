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

// Package runstore defines the run history contract and provides an in-memory implementation.
package runstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/opsdeck/flowcore/internal/system/utils"
	"github.com/opsdeck/flowcore/internal/workflow/model"
)

var (
	// ErrRunNotFound is returned when no run exists with the given id.
	ErrRunNotFound = errors.New("run not found")
	// ErrRunFinalized is returned when completing a run that already reached a terminal status.
	ErrRunFinalized = errors.New("run already finalized")
	// ErrInvalidStatus is returned when a run is completed with a non terminal status.
	ErrInvalidStatus = errors.New("run status is not terminal")
)

// RunStoreInterface records and queries workflow runs.
type RunStoreInterface interface {
	// BeginRun creates a running record and returns its id.
	BeginRun(workflowID string, nodeCount int) (string, error)
	// CompleteRun finalizes a running record. Finalized records are never modified again.
	CompleteRun(runID string, outcome model.RunOutcome) error
	// GetRun returns a single run.
	GetRun(runID string) (*model.ExecutionRecord, error)
	// ListRuns returns the runs of a workflow, newest first.
	ListRuns(workflowID string, limit int) ([]model.ExecutionRecord, error)
}

// InMemoryRunStore keeps run records in process memory.
type InMemoryRunStore struct {
	runs  map[string]*model.ExecutionRecord
	order []string
	mutex sync.RWMutex
	now   func() time.Time
}

// NewInMemoryRunStore creates an empty in-memory run store.
func NewInMemoryRunStore() *InMemoryRunStore {
	return &InMemoryRunStore{
		runs: make(map[string]*model.ExecutionRecord),
		now:  time.Now,
	}
}

// BeginRun creates a running record.
func (s *InMemoryRunStore) BeginRun(workflowID string, nodeCount int) (string, error) {
	record := &model.ExecutionRecord{
		ID:         utils.GenerateUUID(),
		WorkflowID: workflowID,
		Status:     model.RunStatusRunning,
		StartTime:  s.now().UTC(),
		NodeCount:  nodeCount,
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.runs[record.ID] = record
	s.order = append(s.order, record.ID)
	return record.ID, nil
}

// CompleteRun finalizes a running record.
func (s *InMemoryRunStore) CompleteRun(runID string, outcome model.RunOutcome) error {
	if !outcome.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, outcome.Status)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	record, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if record.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrRunFinalized, runID)
	}

	endTime := s.now().UTC()
	record.Status = outcome.Status
	record.EndTime = &endTime
	record.Duration = endTime.Sub(record.StartTime).Milliseconds()
	record.NodeCount = outcome.NodeCount
	record.FailedNodeID = outcome.FailedNodeID
	record.Error = outcome.Error
	return nil
}

// GetRun returns a copy of the run record.
func (s *InMemoryRunStore) GetRun(runID string) (*model.ExecutionRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	record, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	copied := copyRecord(record)
	return &copied, nil
}

// ListRuns returns at most limit runs of the workflow, newest first. A non
// positive limit returns every run.
func (s *InMemoryRunStore) ListRuns(workflowID string, limit int) ([]model.ExecutionRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	records := make([]model.ExecutionRecord, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		record := s.runs[s.order[i]]
		if record.WorkflowID != workflowID {
			continue
		}
		records = append(records, copyRecord(record))
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartTime.After(records[j].StartTime)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func copyRecord(record *model.ExecutionRecord) model.ExecutionRecord {
	copied := *record
	if record.EndTime != nil {
		endTime := *record.EndTime
		copied.EndTime = &endTime
	}
	return copied
}
