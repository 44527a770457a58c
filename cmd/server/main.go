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

// Package main is the entry point for starting the flowcore server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/opsdeck/flowcore/internal/system/config"
	"github.com/opsdeck/flowcore/internal/system/constants"
	"github.com/opsdeck/flowcore/internal/system/database/provider"
	"github.com/opsdeck/flowcore/internal/system/log"
	"github.com/opsdeck/flowcore/internal/workflow/loader"
)

func main() {
	logger := log.GetLogger()

	home := getServerHome(logger)

	cfg := initConfigurations(logger, home)
	if cfg == nil {
		logger.Fatal("Failed to initialize configurations")
	}

	dbProvider := provider.GetDBProvider()
	defer func() {
		if err := dbProvider.Close(); err != nil {
			logger.Error("Failed to close database connections", log.Error(err))
		}
	}()

	mux := http.NewServeMux()
	services, err := registerServices(mux, cfg, dbProvider)
	if err != nil {
		logger.Fatal("Failed to register the services", log.Error(err))
	}

	loadWorkflows(logger, cfg, services)
	if svcErr := services.workflowService.RefreshTriggers(); svcErr != nil {
		logger.Fatal("Failed to register workflow triggers", log.String("error", svcErr.ErrorDescription))
	}
	if services.scheduler != nil {
		services.scheduler.Start()
	}

	server, serverAddr := createHTTPServer(logger, cfg, mux)
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("flowcore server started (HTTP)...", log.String("address", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Error("Failed to serve HTTP requests", log.Error(err))
		}
	case sig := <-signals:
		logger.Info("Shutdown signal received", log.String("signal", sig.String()))
	}

	shutdown(logger, cfg, server, services)
}

// getServerHome retrieves and returns the server home directory.
func getServerHome(logger *log.Logger) string {
	projectHome := ""
	projectHomeFlag := flag.String("home", "", "Path to flowcore home directory")
	flag.Parse()

	if *projectHomeFlag != "" {
		logger.Info("Using home from command line argument", log.String("home", *projectHomeFlag))
		projectHome = *projectHomeFlag
	} else {
		// If no command line argument is provided, use the current working directory.
		dir, dirErr := os.Getwd()
		if dirErr != nil {
			logger.Fatal("Failed to get current working directory", log.Error(dirErr))
		}
		projectHome = dir
	}

	return projectHome
}

// initConfigurations loads the deployment configuration and publishes the runtime.
func initConfigurations(logger *log.Logger, home string) *config.Config {
	configFilePath := path.Join(home, constants.DeploymentConfigPath)
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		logger.Fatal("Failed to load configurations", log.Error(err))
	}

	if err := config.InitializeRuntime(home, cfg); err != nil {
		logger.Fatal("Failed to initialize runtime", log.Error(err))
	}

	return cfg
}

// loadWorkflows imports the workflow documents of the configured directory.
func loadWorkflows(logger *log.Logger, cfg *config.Config, services *serverServices) {
	dir := config.GetRuntime().ResolvePath(cfg.Flow.WorkflowDirectory)
	if dir == "" {
		logger.Info("Workflow directory is not set. No workflows will be loaded.")
		return
	}

	if _, err := loader.LoadDirectory(dir, services.workflowService); err != nil {
		logger.Error("Failed to load workflow documents", log.Error(err))
	}
}

// createHTTPServer creates and configures an HTTP server with common settings.
func createHTTPServer(logger *log.Logger, cfg *config.Config, mux *http.ServeMux) (*http.Server, string) {
	// Wrap the multiplexer with AccessLogHandler.
	wrappedMux := log.AccessLogHandler(logger, mux)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)

	server := &http.Server{
		Addr:              serverAddr,
		Handler:           wrappedMux,
		ReadHeaderTimeout: 10 * time.Second, // Mitigate Slowloris attacks
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return server, serverAddr
}

// shutdown stops accepting requests and triggers, then waits for the active runs.
func shutdown(logger *log.Logger, cfg *config.Config, server *http.Server, services *serverServices) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Failed to shut down the HTTP server", log.Error(err))
	}
	if services.scheduler != nil {
		services.scheduler.Stop(ctx)
	}
	if err := services.workflowService.Shutdown(ctx); err != nil {
		logger.Warn("Active workflow runs did not finish before the shutdown timeout", log.Error(err))
	}
	logger.Info("flowcore server stopped")
	logger.Sync()
}
