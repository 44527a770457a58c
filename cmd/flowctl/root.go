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
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opsdeck/flowcore/internal/system/config"
	"github.com/opsdeck/flowcore/internal/system/log"
)

const envPrefix = "FLOWCTL"

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// cli holds the state shared by the flowctl commands.
type cli struct {
	settings *viper.Viper
	out      io.Writer
	cfg      *config.Config
}

// newRootCommand builds the flowctl command tree writing results to out.
func newRootCommand(out io.Writer) *cobra.Command {
	c := &cli{
		settings: viper.New(),
		out:      out,
	}

	rootCmd := &cobra.Command{
		Use:   "flowctl",
		Short: "Validate and run flowcore workflows from the command line",
		Long: `flowctl validates workflow documents, executes them in-process against the
built-in node types and lists the node type catalog.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initialize()
		},
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "deployment configuration file")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	_ = c.settings.BindPFlag("config", flags.Lookup("config"))
	_ = c.settings.BindPFlag("log_level", flags.Lookup("log-level"))

	c.settings.SetEnvPrefix(envPrefix)
	c.settings.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.settings.AutomaticEnv()

	rootCmd.AddCommand(
		c.newValidateCommand(),
		c.newRunCommand(),
		c.newNodeTypesCommand(),
		c.newVersionCommand(),
	)
	return rootCmd
}

// initialize reads the configuration file and applies the log level.
func (c *cli) initialize() error {
	if configFile := c.settings.GetString("config"); configFile != "" {
		c.settings.SetConfigFile(configFile)
		if err := c.settings.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read configuration %s: %w", configFile, err)
		}
	}

	cfg := &config.Config{}
	if err := c.settings.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.ApplyDefaults()
	c.cfg = cfg

	if level := c.settings.GetString("log_level"); level != "" {
		if err := log.SetLevel(level); err != nil {
			return err
		}
	}
	return nil
}

func (c *cli) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(c.out, "flowctl %s\n", version)
			return err
		},
	}
}

var (
	errInvalidWorkflow = errors.New("workflow is invalid")
	errRunFailed       = errors.New("workflow run did not succeed")
)
