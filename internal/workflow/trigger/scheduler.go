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

package trigger

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/system/log"
	"github.com/opsdeck/flowcore/internal/workflow/model"
)

const schedulerLoggerComponentName = "WorkflowScheduler"

// Scheduler starts runs of active workflows on their cron schedules. A
// workflow contributes one entry for an enabled workflow schedule and one per
// schedule trigger node.
type Scheduler struct {
	cron     *cron.Cron
	registry nodetype.RegistryInterface
	launcher LauncherInterface
	entries  map[string][]cron.EntryID
	mutex    sync.Mutex
	logger   *log.Logger
}

var _ ListenerInterface = (*Scheduler)(nil)

// NewScheduler creates a stopped scheduler.
func NewScheduler(registry nodetype.RegistryInterface, launcher LauncherInterface) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithParser(cronParser), cron.WithLocation(time.UTC)),
		registry: registry,
		launcher: launcher,
		entries:  make(map[string][]cron.EntryID),
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, schedulerLoggerComponentName)),
	}
}

// Start begins firing scheduled entries.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Workflow scheduler started", log.Int("entries", len(s.cron.Entries())))
}

// Stop stops the scheduler and waits for running jobs to return or the context to end.
func (s *Scheduler) Stop(ctx context.Context) {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stopped before running jobs finished")
	}
}

// Sync replaces every scheduled entry with those of the given workflows.
func (s *Scheduler) Sync(workflows []*model.Workflow) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for workflowID := range s.entries {
		s.removeLocked(workflowID)
	}
	for _, workflow := range workflows {
		s.addLocked(workflow)
	}
}

// OnWorkflowSaved reschedules a workflow after it was created or updated.
func (s *Scheduler) OnWorkflowSaved(workflow *model.Workflow) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.removeLocked(workflow.ID)
	s.addLocked(workflow)
}

// OnWorkflowDeleted removes the entries of a deleted workflow.
func (s *Scheduler) OnWorkflowDeleted(workflowID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.removeLocked(workflowID)
}

// EntryCount returns the number of scheduled entries of a workflow.
func (s *Scheduler) EntryCount(workflowID string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return len(s.entries[workflowID])
}

func (s *Scheduler) removeLocked(workflowID string) {
	for _, entryID := range s.entries[workflowID] {
		s.cron.Remove(entryID)
	}
	delete(s.entries, workflowID)
}

func (s *Scheduler) addLocked(workflow *model.Workflow) {
	if workflow == nil || !workflow.Active {
		return
	}
	workflowID := workflow.ID

	if workflow.Schedule != nil && workflow.Schedule.Enabled && workflow.Schedule.Cron != "" {
		s.addEntryLocked(workflowID, "", workflow.Schedule.Cron, "")
	}
	for _, node := range triggerNodes(workflow, s.registry, PropertyCron) {
		spec := stringProperty(node, s.registry, PropertyCron)
		if spec == "" {
			continue
		}
		s.addEntryLocked(workflowID, node.ID, spec, stringProperty(node, s.registry, PropertyTimezone))
	}
}

func (s *Scheduler) addEntryLocked(workflowID, nodeID, spec, timezone string) {
	logger := s.logger.With(log.String(log.LoggerKeyWorkflowID, workflowID), log.String(log.LoggerKeyNodeID, nodeID))

	schedule, err := ParseSchedule(spec, timezone)
	if err != nil {
		logger.Warn("Skipping invalid schedule", log.String("cron", spec), log.Error(err))
		return
	}

	entryID := s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.fire(workflowID, nodeID, spec)
	}))
	s.entries[workflowID] = append(s.entries[workflowID], entryID)
	logger.Debug("Scheduled workflow", log.String("cron", spec), log.String("timezone", timezone))
}

func (s *Scheduler) fire(workflowID, nodeID, spec string) {
	event := Event{
		Source: SourceSchedule,
		NodeID: nodeID,
		Payload: map[string]any{
			"firedAt": time.Now().UTC().Format(time.RFC3339),
			"cron":    spec,
		},
	}

	runID, err := s.launcher.LaunchWorkflow(context.Background(), workflowID, event)
	if err != nil {
		s.logger.Error("Scheduled run could not be started", log.String(log.LoggerKeyWorkflowID, workflowID),
			log.String(log.LoggerKeyNodeID, nodeID), log.Error(err))
		return
	}
	s.logger.Debug("Scheduled run started", log.String(log.LoggerKeyWorkflowID, workflowID),
		log.String(log.LoggerKeyRunID, runID))
}
