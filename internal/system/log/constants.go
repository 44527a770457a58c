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

package log

const (
	// LoggerKeyComponentName is the key used to identify the component name in the logger.
	LoggerKeyComponentName = "component"
	// LoggerKeyWorkflowID is the key used to identify the workflow ID in the logger.
	LoggerKeyWorkflowID = "workflowId"
	// LoggerKeyRunID is the key used to identify the run ID in the logger.
	LoggerKeyRunID = "runId"
	// LoggerKeyNodeID is the key used to identify the node ID in the logger.
	LoggerKeyNodeID = "nodeId"
	// LoggerKeyNodeType is the key used to identify the node type in the logger.
	LoggerKeyNodeType = "nodeType"
)
