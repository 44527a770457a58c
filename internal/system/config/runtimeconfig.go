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


package config

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
)

// Runtime is the process-wide view of the server: its home directory and the
// deployment configuration loaded from it. Components that are built outside
// the service wiring, such as the database provider and the CORS middleware,
// read it through GetRuntime.
type Runtime struct {
	Home   string `yaml:"home"`
	Config Config `yaml:"config"`
}

var (
	runtimeConfig *Runtime
	once          sync.Once
)

// InitializeRuntime publishes the runtime for the given home directory.
// Only the first successful call takes effect.
func InitializeRuntime(home string, config *Config) error {
	if config == nil {
		return errors.New("runtime configuration is nil")
	}
	if strings.TrimSpace(home) == "" {
		return errors.New("runtime home directory is empty")
	}

	once.Do(func() {
		runtimeConfig = &Runtime{
			Home:   filepath.Clean(home),
			Config: *config,
		}
	})
	return nil
}

// GetRuntime returns the published runtime. It panics before InitializeRuntime.
func GetRuntime() *Runtime {
	if runtimeConfig == nil {
		panic("runtime is not initialized")
	}
	return runtimeConfig
}

// ResolvePath returns p relative to the home directory unless it is already absolute.
// An empty path stays empty.
func (r *Runtime) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.Home, p)
}

// ResetRuntime clears the published runtime. Tests use it between cases.
func ResetRuntime() {
	runtimeConfig = nil
	once = sync.Once{}
}
