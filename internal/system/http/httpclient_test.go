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

package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type HTTPClientTestSuite struct {
	suite.Suite
}

func TestHTTPClientSuite(t *testing.T) {
	suite.Run(t, new(HTTPClientTestSuite))
}

func (suite *HTTPClientTestSuite) TestNewHTTPClientTimeouts() {
	client := NewHTTPClient().(*HTTPClient)
	assert.Equal(suite.T(), defaultTimeout, client.client.Timeout)

	client = NewHTTPClientWithTimeout(5 * time.Second).(*HTTPClient)
	assert.Equal(suite.T(), 5*time.Second, client.client.Timeout)

	client = NewHTTPClientWithTimeout(0).(*HTTPClient)
	assert.Equal(suite.T(), defaultTimeout, client.client.Timeout)
}

func (suite *HTTPClientTestSuite) TestDoSetsDefaultUserAgent() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("User-Agent")))
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	assert.NoError(suite.T(), err)

	resp, err := NewHTTPClient().Do(req)
	assert.NoError(suite.T(), err)
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(suite.T(), defaultUserAgent, string(body))
}

func (suite *HTTPClientTestSuite) TestDoKeepsCustomUserAgentAndBody() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(suite.T(), "custom/2", r.Header.Get("User-Agent"))
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	}))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL, strings.NewReader(`{"id":1}`))
	req.Header.Set("User-Agent", "custom/2")

	resp, err := NewHTTPClient().Do(req)
	assert.NoError(suite.T(), err)
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)
	assert.Equal(suite.T(), `{"id":1}`, string(body))
}

func (suite *HTTPClientTestSuite) TestDoHonoursRequestContext() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)

	_, err := NewHTTPClient().Do(req)
	assert.Error(suite.T(), err)
}
