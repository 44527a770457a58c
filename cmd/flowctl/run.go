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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/nodetype/builtin"
	"github.com/opsdeck/flowcore/internal/system/database/provider"
	httpservice "github.com/opsdeck/flowcore/internal/system/http"
	"github.com/opsdeck/flowcore/internal/system/log"
	"github.com/opsdeck/flowcore/internal/workflow/engine"
	"github.com/opsdeck/flowcore/internal/workflow/loader"
	"github.com/opsdeck/flowcore/internal/workflow/model"
	"github.com/opsdeck/flowcore/internal/workflow/runstore"
)

func (c *cli) newRunCommand() *cobra.Command {
	var (
		file          string
		triggerNodeID string
		payload       string
		timeout       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a workflow document in-process and print the run result",
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow, err := loader.ReadWorkflowFile(file)
			if err != nil {
				return err
			}
			triggerPayload, err := decodePayload(payload)
			if err != nil {
				return err
			}

			engineConfig := engine.Config{
				LoopLimit:      c.cfg.Engine.LoopLimit,
				NodeTimeout:    c.cfg.Engine.NodeTimeout,
				MaxConcurrency: c.cfg.Engine.MaxConcurrency,
			}

			deps := builtin.Dependencies{
				HTTPClient: httpservice.NewHTTPClientWithTimeout(c.cfg.HTTPClient.Timeout),
			}
			if c.cfg.Database.Data.Type != "" {
				dbProvider := provider.NewDBProvider(".", c.cfg.Database)
				defer func() {
					if err := dbProvider.Close(); err != nil {
						log.GetLogger().Warn("Failed to close database connections", log.Error(err))
					}
				}()
				deps.DBProvider = dbProvider
			}

			registry := nodetype.NewRegistry()
			builtin.Register(registry, deps)
			workflowEngine := engine.New(registry, runstore.NewInMemoryRunStore(), engineConfig)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			handle, err := workflowEngine.Start(ctx, engine.ExecutionRequest{
				Workflow:      workflow,
				TriggerNodeID: triggerNodeID,
				Payload:       triggerPayload,
			})
			if err != nil {
				return err
			}
			<-handle.Done()
			result := handle.Result()

			encoder := json.NewEncoder(c.out)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				return err
			}
			if result.Status != model.RunStatusSuccess {
				return fmt.Errorf("%w: %s", errRunFailed, result.Status)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&file, "file", "f", "", "workflow document (.json, .yaml or .yml)")
	flags.StringVar(&triggerNodeID, "trigger", "", "id of the trigger node that starts the run")
	flags.StringVar(&payload, "payload", "", "trigger payload as JSON")
	flags.DurationVar(&timeout, "timeout", 5*time.Minute, "maximum duration of the run")
	flags.Int("loop-limit", 0, "maximum number of items a loop node may iterate")
	_ = c.settings.BindPFlag("engine.loop_limit", flags.Lookup("loop-limit"))
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// decodePayload parses the trigger payload flag. An empty flag yields no payload.
func decodePayload(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()

	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return payload, nil
}
