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

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type AccessLogTestSuite struct {
	suite.Suite
}

func TestAccessLogSuite(t *testing.T) {
	suite.Run(t, new(AccessLogTestSuite))
}

func (suite *AccessLogTestSuite) TestAccessLogHandler() {
	core, logs := observer.New(zapcore.DebugLevel)
	testLogger := &Logger{internal: zap.New(core)}

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			suite.T().Errorf("Failed to write response: %v", err)
		}
	})

	handler := AccessLogHandler(testLogger, testHandler)

	req := httptest.NewRequest("POST", "/workflows/wf-1/execute", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(suite.T(), http.StatusAccepted, rr.Code)
	assert.Equal(suite.T(), "OK", rr.Body.String())

	entries := logs.All()
	assert.Len(suite.T(), entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(suite.T(), "192.168.1.1", fields["remote"])
	assert.Equal(suite.T(), "POST", fields["method"])
	assert.Equal(suite.T(), "/workflows/wf-1/execute", fields["uri"])
	assert.Equal(suite.T(), int64(http.StatusAccepted), fields["status"])
	assert.Equal(suite.T(), int64(2), fields["size"])
}

func (suite *AccessLogTestSuite) TestLoggingResponseWriter() {
	rec := httptest.NewRecorder()
	lrw := &loggingResponseWriter{
		ResponseWriter: rec,
		statusCode:     http.StatusOK,
	}

	lrw.WriteHeader(http.StatusNotFound)
	assert.Equal(suite.T(), http.StatusNotFound, lrw.statusCode)

	n, err := lrw.Write([]byte("test content"))
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 12, n)

	n, err = lrw.Write([]byte(" more"))
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 5, n)
	assert.Equal(suite.T(), 17, lrw.size)

	assert.Equal(suite.T(), "test content more", rec.Body.String())
}
