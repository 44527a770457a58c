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

// Package utils provides utility functions for HTTP operations.
package utils

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/opsdeck/flowcore/internal/system/constants"
	"github.com/opsdeck/flowcore/internal/system/log"
)

// maxRequestBodySize bounds the size of decoded request bodies.
const maxRequestBodySize = 4 << 20

// WriteJSONError writes a JSON error response with the given details.
func WriteJSONError(w http.ResponseWriter, code, desc string, statusCode int, respHeaders []map[string]string) {
	logger := log.GetLogger()
	logger.Error("Error in HTTP response", log.String("error", code), log.String("description", desc))

	for _, header := range respHeaders {
		for key, value := range header {
			w.Header().Set(key, value)
		}
	}
	w.Header().Set(constants.ContentTypeHeaderName, constants.ContentTypeJSON)

	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": desc,
	})
	if err != nil {
		logger.Error("Failed to write JSON error response", log.Error(err))
		return
	}
}

// WriteJSON writes the given value as a JSON response with the provided status code.
func WriteJSON(w http.ResponseWriter, statusCode int, value any) {
	w.Header().Set(constants.ContentTypeHeaderName, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.GetLogger().Error("Error encoding response", log.Error(err))
	}
}

// DecodeJSONBody decodes the JSON request body into a value of type T.
func DecodeJSONBody[T any](r *http.Request) (*T, error) {
	var data T
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize))
	decoder.UseNumber()
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode JSON body: %w", err)
	}
	return &data, nil
}

// ParseLimitParam parses a positive integer limit from the query string, bounded by maxLimit.
func ParseLimitParam(r *http.Request, defaultLimit, maxLimit int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("invalid limit: %s", raw)
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, nil
}

// SanitizeString trims whitespace, removes control characters and escapes HTML in the input.
func SanitizeString(input string) string {
	if input == "" {
		return input
	}

	trimmed := strings.TrimSpace(input)
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, trimmed)

	return html.EscapeString(cleaned)
}
