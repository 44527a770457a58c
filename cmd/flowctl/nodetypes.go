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
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/opsdeck/flowcore/internal/nodetype"
	"github.com/opsdeck/flowcore/internal/nodetype/builtin"
)

func (c *cli) newNodeTypesCommand() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "node-types",
		Short: "List the built-in node types",
		RunE: func(cmd *cobra.Command, args []string) error {
			nodeTypes := builtin.NodeTypes(builtin.Dependencies{})
			writer := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "TYPE\tCATEGORY\tKIND\tINPUTS\tOUTPUTS")
			for _, definition := range nodeTypes {
				if category != "" && !strings.EqualFold(definition.Category, category) {
					continue
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n", definition.Type, definition.Category, definition.Kind,
					portNames(definition.Inputs), portNames(definition.Outputs))
			}
			return writer.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list node types of this category")
	return cmd
}

func portNames(ports []nodetype.PortSpec) string {
	if len(ports) == 0 {
		return "-"
	}
	names := make([]string, 0, len(ports))
	for _, port := range ports {
		names = append(names, port.Name)
	}
	return strings.Join(names, ",")
}
