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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/nodetype/builtin"
	"github.com/opsdeck/flowcore/internal/workflow/loader"
	"github.com/opsdeck/flowcore/internal/workflow/validator"
)

func (c *cli) newValidateCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a workflow document and print its validation issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow, err := loader.ReadWorkflowFile(file)
			if err != nil {
				return err
			}

			registry := nodetype.NewRegistry()
			builtin.Register(registry, builtin.Dependencies{})

			issues := validator.Validate(workflow, registry)
			if len(issues) == 0 {
				_, err := fmt.Fprintf(c.out, "%s: valid\n", file)
				return err
			}
			for _, issue := range issues {
				location := issue.NodeID
				if location == "" {
					location = issue.EdgeID
				}
				if _, err := fmt.Fprintf(c.out, "%s\t%s\t%s\n", issue.Kind, location, issue.Message); err != nil {
					return err
				}
			}
			return fmt.Errorf("%w: %d issues", errInvalidWorkflow, len(issues))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "workflow document (.json, .yaml or .yml)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
