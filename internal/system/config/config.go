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

// Package config provides structures and functions for loading and managing server configurations.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/opsdeck/flowcore/internal/system/log"

	yaml "gopkg.in/yaml.v3"
)

const (
	defaultServerPort        = 8090
	defaultShutdownTimeout   = 15 * time.Second
	defaultLoopLimit         = 1000
	defaultNodeTimeout       = 30 * time.Second
	defaultMaxConcurrency    = 8
	defaultRunHistoryLimit   = 50
	defaultWebhookBasePath   = "/hooks"
	defaultHTTPClientTimeout = 30 * time.Second
	defaultCacheSize         = 1000
	defaultCacheTTL          = 5 * time.Minute
)

// ServerConfig holds the server configuration details.
type ServerConfig struct {
	Hostname        string        `yaml:"hostname" mapstructure:"hostname"`
	Port            int           `yaml:"port" mapstructure:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// DataSource holds the individual database connection details.
type DataSource struct {
	Type            string `yaml:"type" mapstructure:"type"`
	Hostname        string `yaml:"hostname" mapstructure:"hostname"`
	Port            int    `yaml:"port" mapstructure:"port"`
	Name            string `yaml:"name" mapstructure:"name"`
	Username        string `yaml:"username" mapstructure:"username"`
	Password        string `yaml:"password" mapstructure:"password"`
	SSLMode         string `yaml:"sslmode" mapstructure:"sslmode"`
	Path            string `yaml:"path" mapstructure:"path"`
	Options         string `yaml:"options" mapstructure:"options"`
	MaxOpenConns    int    `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

// DatabaseConfig holds the different database configuration details.
type DatabaseConfig struct {
	// Workflow stores workflow definitions and run history.
	Workflow DataSource `yaml:"workflow" mapstructure:"workflow"`
	// Data is the target of the database node types.
	Data DataSource `yaml:"data" mapstructure:"data"`
}

// EngineConfig holds the execution engine limits.
type EngineConfig struct {
	LoopLimit       int           `yaml:"loop_limit" mapstructure:"loop_limit"`
	NodeTimeout     time.Duration `yaml:"node_timeout" mapstructure:"node_timeout"`
	MaxConcurrency  int           `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	RunHistoryLimit int           `yaml:"run_history_limit" mapstructure:"run_history_limit"`
}

// TriggerConfig holds the configuration of the scheduled and webhook triggers.
type TriggerConfig struct {
	SchedulerEnabled bool   `yaml:"scheduler_enabled" mapstructure:"scheduler_enabled"`
	WebhookBasePath  string `yaml:"webhook_base_path" mapstructure:"webhook_base_path"`
}

// FlowConfig holds the configuration details for workflow document loading.
type FlowConfig struct {
	WorkflowDirectory string `yaml:"workflow_directory" mapstructure:"workflow_directory"`
}

// CORSConfig holds the configuration details for cross-origin resource sharing.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// HTTPClientConfig holds the configuration of the outbound HTTP client.
type HTTPClientConfig struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// CacheConfig holds the configuration of the workflow definition cache.
type CacheConfig struct {
	Disabled bool          `yaml:"disabled" mapstructure:"disabled"`
	Size     int           `yaml:"size" mapstructure:"size"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// Config holds the complete configuration details of the server.
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Database   DatabaseConfig   `yaml:"database" mapstructure:"database"`
	Engine     EngineConfig     `yaml:"engine" mapstructure:"engine"`
	Trigger    TriggerConfig    `yaml:"trigger" mapstructure:"trigger"`
	Flow       FlowConfig       `yaml:"flow" mapstructure:"flow"`
	CORS       CORSConfig       `yaml:"cors" mapstructure:"cors"`
	HTTPClient HTTPClientConfig `yaml:"http_client" mapstructure:"http_client"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
}

// LoadConfig loads the configurations from the specified YAML file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	path = filepath.Clean(path)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if ferr := file.Close(); ferr != nil {
			log.GetLogger().Error("Failed to close config file", log.Error(ferr))
		}
	}()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero valued settings with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = defaultServerPort
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Engine.LoopLimit <= 0 {
		c.Engine.LoopLimit = defaultLoopLimit
	}
	if c.Engine.NodeTimeout <= 0 {
		c.Engine.NodeTimeout = defaultNodeTimeout
	}
	if c.Engine.MaxConcurrency <= 0 {
		c.Engine.MaxConcurrency = defaultMaxConcurrency
	}
	if c.Engine.RunHistoryLimit <= 0 {
		c.Engine.RunHistoryLimit = defaultRunHistoryLimit
	}
	if c.Trigger.WebhookBasePath == "" {
		c.Trigger.WebhookBasePath = defaultWebhookBasePath
	}
	if c.HTTPClient.Timeout <= 0 {
		c.HTTPClient.Timeout = defaultHTTPClientTimeout
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = defaultCacheSize
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = defaultCacheTTL
	}
}
