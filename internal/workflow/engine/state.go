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

package engine

import (
	"fmt"
	"sync"

	"github.com/opsdeck/flowcore/internal/workflow/model"
)

// transitions lists the allowed status changes of a run.
var transitions = map[model.RunStatus][]model.RunStatus{
	model.RunStatusPending: {model.RunStatusRunning, model.RunStatusFailed, model.RunStatusCancelled},
	model.RunStatusRunning: {model.RunStatusSuccess, model.RunStatusFailed, model.RunStatusCancelled},
}

// runState guards the status of a single run.
type runState struct {
	status model.RunStatus
	mutex  sync.Mutex
}

func newRunState() *runState {
	return &runState{status: model.RunStatusPending}
}

// Status returns the current status.
func (s *runState) Status() model.RunStatus {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.status
}

// Transition moves the run to the given status if the state machine allows it.
func (s *runState) Transition(to model.RunStatus) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, allowed := range transitions[s.status] {
		if allowed == to {
			s.status = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.status, to)
}
