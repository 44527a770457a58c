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

package healthcheck

import (
	"net/http"

	"github.com/opsdeck/flowcore/internal/system/log"
	sysutils "github.com/opsdeck/flowcore/internal/system/utils"
)

// healthCheckHandler defines the handler for managing health check API requests.
type healthCheckHandler struct {
	service HealthCheckServiceInterface
}

// HandleLivenessRequest handles the health check liveness request.
func (hch *healthCheckHandler) HandleLivenessRequest(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// HandleReadinessRequest handles the health check readiness request.
func (hch *healthCheckHandler) HandleReadinessRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckHandler"))

	serverStatus := hch.service.CheckReadiness()
	statusCode := http.StatusOK
	if serverStatus.Status != StatusUp {
		logger.Error("Readiness check failed", log.String("status", string(serverStatus.Status)))
		statusCode = http.StatusServiceUnavailable
	}

	sysutils.WriteJSON(w, statusCode, serverStatus)
}
