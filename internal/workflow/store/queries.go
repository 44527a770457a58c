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

// Package store persists workflow definitions and run history in the workflow database.
package store

import (
	dbmodel "github.com/opsdeck/flowcore/internal/system/database/model"
)

var (
	// QueryCreateWorkflowTable creates the workflow table.
	QueryCreateWorkflowTable = dbmodel.DBQuery{
		ID: "WFQ-SCHEMA-01",
		Query: `CREATE TABLE IF NOT EXISTS WORKFLOW (` +
			`WORKFLOW_ID VARCHAR(64) PRIMARY KEY, ` +
			`NAME VARCHAR(255) NOT NULL, ` +
			`DESCRIPTION TEXT, ` +
			`ACTIVE INTEGER NOT NULL DEFAULT 0, ` +
			`NODE_COUNT INTEGER NOT NULL DEFAULT 0, ` +
			`DOCUMENT TEXT NOT NULL, ` +
			`RUN_COUNT INTEGER NOT NULL DEFAULT 0, ` +
			`LAST_RUN VARCHAR(32), ` +
			`CREATED_AT VARCHAR(32) NOT NULL, ` +
			`UPDATED_AT VARCHAR(32) NOT NULL)`,
	}

	// QueryCreateRunTable creates the run history table.
	QueryCreateRunTable = dbmodel.DBQuery{
		ID: "WFQ-SCHEMA-02",
		Query: `CREATE TABLE IF NOT EXISTS WORKFLOW_RUN (` +
			`RUN_ID VARCHAR(64) PRIMARY KEY, ` +
			`WORKFLOW_ID VARCHAR(64) NOT NULL, ` +
			`STATUS VARCHAR(16) NOT NULL, ` +
			`START_TIME VARCHAR(32) NOT NULL, ` +
			`END_TIME VARCHAR(32), ` +
			`DURATION_MS BIGINT NOT NULL DEFAULT 0, ` +
			`NODE_COUNT INTEGER NOT NULL DEFAULT 0, ` +
			`FAILED_NODE_ID VARCHAR(64), ` +
			`ERROR TEXT)`,
	}

	// QueryCreateRunIndex indexes runs by workflow and start time.
	QueryCreateRunIndex = dbmodel.DBQuery{
		ID:    "WFQ-SCHEMA-03",
		Query: `CREATE INDEX IF NOT EXISTS IDX_WORKFLOW_RUN_WORKFLOW ON WORKFLOW_RUN (WORKFLOW_ID, START_TIME)`,
	}
)

var (
	// QueryCreateWorkflow inserts a workflow.
	QueryCreateWorkflow = dbmodel.DBQuery{
		ID: "WFQ-WF_MGT-01",
		Query: `INSERT INTO WORKFLOW (WORKFLOW_ID, NAME, DESCRIPTION, ACTIVE, NODE_COUNT, DOCUMENT, RUN_COUNT, ` +
			`CREATED_AT, UPDATED_AT) VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8)`,
	}

	// QueryGetWorkflowByID reads a workflow by id.
	QueryGetWorkflowByID = dbmodel.DBQuery{
		ID: "WFQ-WF_MGT-02",
		Query: `SELECT WORKFLOW_ID, DOCUMENT, RUN_COUNT, LAST_RUN, CREATED_AT, UPDATED_AT FROM WORKFLOW ` +
			`WHERE WORKFLOW_ID = $1`,
	}

	// QueryListWorkflows lists every workflow ordered by name.
	QueryListWorkflows = dbmodel.DBQuery{
		ID: "WFQ-WF_MGT-03",
		Query: `SELECT WORKFLOW_ID, DOCUMENT, RUN_COUNT, LAST_RUN, CREATED_AT, UPDATED_AT FROM WORKFLOW ` +
			`ORDER BY NAME, WORKFLOW_ID`,
	}

	// QueryListActiveWorkflows lists the active workflows.
	QueryListActiveWorkflows = dbmodel.DBQuery{
		ID: "WFQ-WF_MGT-04",
		Query: `SELECT WORKFLOW_ID, DOCUMENT, RUN_COUNT, LAST_RUN, CREATED_AT, UPDATED_AT FROM WORKFLOW ` +
			`WHERE ACTIVE = 1 ORDER BY NAME, WORKFLOW_ID`,
	}

	// QueryUpdateWorkflow replaces the document of a workflow.
	QueryUpdateWorkflow = dbmodel.DBQuery{
		ID: "WFQ-WF_MGT-05",
		Query: `UPDATE WORKFLOW SET NAME = $2, DESCRIPTION = $3, ACTIVE = $4, NODE_COUNT = $5, DOCUMENT = $6, ` +
			`UPDATED_AT = $7 WHERE WORKFLOW_ID = $1`,
	}

	// QueryDeleteWorkflow deletes a workflow.
	QueryDeleteWorkflow = dbmodel.DBQuery{
		ID:    "WFQ-WF_MGT-06",
		Query: `DELETE FROM WORKFLOW WHERE WORKFLOW_ID = $1`,
	}

	// QueryDeleteWorkflowRuns deletes the run history of a workflow.
	QueryDeleteWorkflowRuns = dbmodel.DBQuery{
		ID:    "WFQ-WF_MGT-07",
		Query: `DELETE FROM WORKFLOW_RUN WHERE WORKFLOW_ID = $1`,
	}

	// QueryRecordWorkflowRun increments the run counter of a workflow.
	QueryRecordWorkflowRun = dbmodel.DBQuery{
		ID:    "WFQ-WF_MGT-08",
		Query: `UPDATE WORKFLOW SET RUN_COUNT = RUN_COUNT + 1, LAST_RUN = $2 WHERE WORKFLOW_ID = $1`,
	}
)

var (
	// QueryBeginRun inserts a running record.
	QueryBeginRun = dbmodel.DBQuery{
		ID: "WFQ-RUN_MGT-01",
		Query: `INSERT INTO WORKFLOW_RUN (RUN_ID, WORKFLOW_ID, STATUS, START_TIME, DURATION_MS, NODE_COUNT) ` +
			`VALUES ($1, $2, $3, $4, 0, $5)`,
	}

	// QueryGetRunByID reads a run by id.
	QueryGetRunByID = dbmodel.DBQuery{
		ID: "WFQ-RUN_MGT-02",
		Query: `SELECT RUN_ID, WORKFLOW_ID, STATUS, START_TIME, END_TIME, DURATION_MS, NODE_COUNT, ` +
			`FAILED_NODE_ID, ERROR FROM WORKFLOW_RUN WHERE RUN_ID = $1`,
	}

	// QueryCompleteRun finalizes a run that is still running.
	QueryCompleteRun = dbmodel.DBQuery{
		ID: "WFQ-RUN_MGT-03",
		Query: `UPDATE WORKFLOW_RUN SET STATUS = $2, END_TIME = $3, DURATION_MS = $4, NODE_COUNT = $5, ` +
			`FAILED_NODE_ID = $6, ERROR = $7 WHERE RUN_ID = $1 AND STATUS = 'running'`,
	}

	// QueryListRuns lists the runs of a workflow, newest first.
	QueryListRuns = dbmodel.DBQuery{
		ID: "WFQ-RUN_MGT-04",
		Query: `SELECT RUN_ID, WORKFLOW_ID, STATUS, START_TIME, END_TIME, DURATION_MS, NODE_COUNT, ` +
			`FAILED_NODE_ID, ERROR FROM WORKFLOW_RUN WHERE WORKFLOW_ID = $1 ORDER BY START_TIME DESC, RUN_ID`,
	}

	// QueryListRunsWithLimit lists at most a given number of runs of a workflow, newest first.
	QueryListRunsWithLimit = dbmodel.DBQuery{
		ID: "WFQ-RUN_MGT-05",
		Query: `SELECT RUN_ID, WORKFLOW_ID, STATUS, START_TIME, END_TIME, DURATION_MS, NODE_COUNT, ` +
			`FAILED_NODE_ID, ERROR FROM WORKFLOW_RUN WHERE WORKFLOW_ID = $1 ORDER BY START_TIME DESC, RUN_ID ` +
			`LIMIT $2`,
	}
)
