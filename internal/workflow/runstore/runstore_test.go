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

package runstore

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/opsdeck/flowcore/internal/workflow/model"
)

type InMemoryRunStoreTestSuite struct {
	suite.Suite
	store *InMemoryRunStore
	clock time.Time
}

func TestInMemoryRunStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryRunStoreTestSuite))
}

func (suite *InMemoryRunStoreTestSuite) SetupTest() {
	suite.store = NewInMemoryRunStore()
	suite.clock = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	suite.store.now = func() time.Time {
		suite.clock = suite.clock.Add(time.Second)
		return suite.clock
	}
}

func (suite *InMemoryRunStoreTestSuite) TestBeginAndComplete() {
	runID, err := suite.store.BeginRun("wf", 4)
	suite.Require().NoError(err)

	record, err := suite.store.GetRun(runID)
	suite.NoError(err)
	suite.Equal(model.RunStatusRunning, record.Status)
	suite.Equal(4, record.NodeCount)
	suite.Nil(record.EndTime)

	err = suite.store.CompleteRun(runID, model.RunOutcome{
		Status: model.RunStatusFailed, NodeCount: 2, FailedNodeID: "b", Error: "boom",
	})
	suite.NoError(err)

	record, err = suite.store.GetRun(runID)
	suite.NoError(err)
	suite.Equal(model.RunStatusFailed, record.Status)
	suite.Equal(2, record.NodeCount)
	suite.Equal("b", record.FailedNodeID)
	suite.Equal("boom", record.Error)
	suite.Require().NotNil(record.EndTime)
	suite.Equal(int64(1000), record.Duration)
}

func (suite *InMemoryRunStoreTestSuite) TestFinalizedRunIsImmutable() {
	runID, _ := suite.store.BeginRun("wf", 1)
	suite.NoError(suite.store.CompleteRun(runID, model.RunOutcome{Status: model.RunStatusSuccess, NodeCount: 1}))

	err := suite.store.CompleteRun(runID, model.RunOutcome{Status: model.RunStatusFailed})
	suite.ErrorIs(err, ErrRunFinalized)

	record, _ := suite.store.GetRun(runID)
	suite.Equal(model.RunStatusSuccess, record.Status)

	record.Status = model.RunStatusFailed
	again, _ := suite.store.GetRun(runID)
	suite.Equal(model.RunStatusSuccess, again.Status)
}

func (suite *InMemoryRunStoreTestSuite) TestCompleteErrors() {
	suite.ErrorIs(suite.store.CompleteRun("missing", model.RunOutcome{Status: model.RunStatusSuccess}),
		ErrRunNotFound)

	runID, _ := suite.store.BeginRun("wf", 1)
	suite.ErrorIs(suite.store.CompleteRun(runID, model.RunOutcome{Status: model.RunStatusRunning}),
		ErrInvalidStatus)

	_, err := suite.store.GetRun("missing")
	suite.ErrorIs(err, ErrRunNotFound)
}

func (suite *InMemoryRunStoreTestSuite) TestListRunsNewestFirst() {
	first, _ := suite.store.BeginRun("wf", 1)
	_, _ = suite.store.BeginRun("other", 1)
	second, _ := suite.store.BeginRun("wf", 1)
	third, _ := suite.store.BeginRun("wf", 1)

	runs, err := suite.store.ListRuns("wf", 0)
	suite.NoError(err)
	suite.Len(runs, 3)
	suite.Equal([]string{third, second, first}, []string{runs[0].ID, runs[1].ID, runs[2].ID})

	runs, err = suite.store.ListRuns("wf", 2)
	suite.NoError(err)
	suite.Len(runs, 2)
	suite.Equal(third, runs[0].ID)

	runs, err = suite.store.ListRuns("none", 10)
	suite.NoError(err)
	suite.Empty(runs)
}

func (suite *InMemoryRunStoreTestSuite) TestConcurrentRuns() {
	store := NewInMemoryRunStore()
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			runID, err := store.BeginRun(fmt.Sprintf("wf-%d", i%5), 1)
			suite.NoError(err)
			suite.NoError(store.CompleteRun(runID, model.RunOutcome{Status: model.RunStatusSuccess}))
		}(i)
	}
	wg.Wait()

	runs, err := store.ListRuns("wf-0", 0)
	suite.NoError(err)
	suite.Len(runs, 5)
}
