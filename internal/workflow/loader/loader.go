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

// Package loader imports workflow documents from JSON and YAML files.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opsdeck/flowcore/internal/system/error/serviceerror"
	"github.com/opsdeck/flowcore/internal/system/log"
	"github.com/opsdeck/flowcore/internal/workflow/model"
)

const loggerComponentName = "WorkflowLoader"

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported workflow file format")

// WorkflowSaverInterface is the subset of the workflow service used to import documents.
type WorkflowSaverInterface interface {
	GetWorkflow(workflowID string) (*model.Workflow, *serviceerror.ServiceError)
	CreateWorkflow(workflow *model.Workflow) (*model.Workflow, *serviceerror.ServiceError)
	UpdateWorkflow(workflowID string, workflow *model.Workflow) (*model.Workflow, *serviceerror.ServiceError)
}

// ReadWorkflowFile parses a workflow document. The format follows the file extension.
func ReadWorkflowFile(path string) (*model.Workflow, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return model.DecodeWorkflowJSON(content)
	case ".yaml", ".yml":
		return model.DecodeWorkflowYAML(content)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// LoadDirectory imports every workflow document of a directory and returns the
// number of imported workflows. Documents without an id take the file name as
// their id. A missing directory imports nothing; unreadable or rejected files
// are logged and skipped.
func LoadDirectory(dir string, saver WorkflowSaverInterface) (int, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	dir = filepath.Clean(dir)
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("Workflow directory does not exist. No workflows will be loaded.",
				log.String("directory", dir))
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read workflow directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		if file.IsDir() || !isWorkflowFile(file.Name()) {
			continue
		}
		names = append(names, file.Name())
	}
	sort.Strings(names)

	loaded := 0
	for _, name := range names {
		filePath := filepath.Join(dir, name)
		workflow, err := ReadWorkflowFile(filePath)
		if err != nil {
			logger.Warn("Failed to parse workflow file", log.String("filePath", filePath), log.Error(err))
			continue
		}
		if workflow.ID == "" {
			workflow.ID = strings.TrimSuffix(name, filepath.Ext(name))
		}

		if svcErr := upsert(saver, workflow); svcErr != nil {
			logger.Warn("Failed to import workflow", log.String("filePath", filePath),
				log.String(log.LoggerKeyWorkflowID, workflow.ID), log.String("error", svcErr.Code),
				log.String("description", svcErr.ErrorDescription))
			continue
		}
		loaded++
		logger.Debug("Workflow imported", log.String("filePath", filePath),
			log.String(log.LoggerKeyWorkflowID, workflow.ID))
	}

	logger.Info("Workflow documents loaded", log.Int("count", loaded), log.Int("files", len(names)))
	return loaded, nil
}

func upsert(saver WorkflowSaverInterface, workflow *model.Workflow) *serviceerror.ServiceError {
	_, svcErr := saver.GetWorkflow(workflow.ID)
	if svcErr == nil {
		_, svcErr = saver.UpdateWorkflow(workflow.ID, workflow)
		return svcErr
	}
	if svcErr.Type != serviceerror.ClientErrorType {
		return svcErr
	}
	_, svcErr = saver.CreateWorkflow(workflow)
	return svcErr
}

func isWorkflowFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
