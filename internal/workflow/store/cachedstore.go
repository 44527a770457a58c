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
	"time"

	"github.com/opsdeck/flowcore/internal/system/cache"
	"github.com/opsdeck/flowcore/internal/workflow/model"
)

// CachedWorkflowStore serves workflow lookups from a cache in front of another store.
// Every write invalidates the cached definition of the affected workflow.
type CachedWorkflowStore struct {
	store WorkflowStoreInterface
	cache cache.CacheInterface[*model.Workflow]
}

var _ WorkflowStoreInterface = (*CachedWorkflowStore)(nil)

// NewCachedWorkflowStore wraps store with the given cache.
func NewCachedWorkflowStore(store WorkflowStoreInterface,
	workflowCache cache.CacheInterface[*model.Workflow]) *CachedWorkflowStore {
	return &CachedWorkflowStore{
		store: store,
		cache: workflowCache,
	}
}

// CreateWorkflow stores a new workflow.
func (s *CachedWorkflowStore) CreateWorkflow(workflow *model.Workflow) error {
	if err := s.store.CreateWorkflow(workflow); err != nil {
		return err
	}
	s.cache.Delete(workflow.ID)
	return nil
}

// GetWorkflow returns a copy of the cached workflow, loading it on a miss.
func (s *CachedWorkflowStore) GetWorkflow(workflowID string) (*model.Workflow, error) {
	if cached, ok := s.cache.Get(workflowID); ok {
		return cached.Clone(), nil
	}

	workflow, err := s.store.GetWorkflow(workflowID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(workflowID, workflow.Clone())
	return workflow, nil
}

// ListWorkflows returns a summary of every stored workflow.
func (s *CachedWorkflowStore) ListWorkflows() ([]model.WorkflowSummary, error) {
	return s.store.ListWorkflows()
}

// ListActiveWorkflows returns every active workflow.
func (s *CachedWorkflowStore) ListActiveWorkflows() ([]*model.Workflow, error) {
	return s.store.ListActiveWorkflows()
}

// UpdateWorkflow replaces a stored workflow.
func (s *CachedWorkflowStore) UpdateWorkflow(workflow *model.Workflow) error {
	defer s.cache.Delete(workflow.ID)
	return s.store.UpdateWorkflow(workflow)
}

// DeleteWorkflow deletes a workflow and its runs.
func (s *CachedWorkflowStore) DeleteWorkflow(workflowID string) error {
	defer s.cache.Delete(workflowID)
	return s.store.DeleteWorkflow(workflowID)
}

// RecordRun updates the run counters of a workflow.
func (s *CachedWorkflowStore) RecordRun(workflowID string, at time.Time) error {
	defer s.cache.Delete(workflowID)
	return s.store.RecordRun(workflowID, at)
}
