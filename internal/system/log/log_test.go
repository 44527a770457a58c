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
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/opsdeck/flowcore/internal/system/constants"
)

type LogTestSuite struct {
	suite.Suite
	originalLogLevel string
}

func TestLogSuite(t *testing.T) {
	suite.Run(t, new(LogTestSuite))
}

func (suite *LogTestSuite) SetupTest() {
	suite.originalLogLevel = os.Getenv(constants.LogLevelEnvironmentVariable)
}

func (suite *LogTestSuite) TearDownTest() {
	err := os.Setenv(constants.LogLevelEnvironmentVariable, suite.originalLogLevel)
	if err != nil {
		suite.T().Errorf("Failed to restore environment variable: %v", err)
	}
	logger = nil
	once = sync.Once{}
	atomicLevel.SetLevel(zapcore.InfoLevel)
}

func (suite *LogTestSuite) TestInitLoggerWithEnvironmentVariable() {
	testCases := []struct {
		name     string
		logLevel string
		isValid  bool
	}{
		{"DefaultLevel", "", true},
		{"DebugLevel", "debug", true},
		{"InfoLevel", "info", true},
		{"WarnLevel", "warn", true},
		{"ErrorLevel", "error", true},
		{"InvalidLevel", "unknown", false},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			logger = nil
			once = sync.Once{}

			if tc.logLevel != "" {
				assert.NoError(t, os.Setenv(constants.LogLevelEnvironmentVariable, tc.logLevel))
			} else {
				assert.NoError(t, os.Unsetenv(constants.LogLevelEnvironmentVariable))
			}

			if tc.isValid {
				assert.NotPanics(t, func() {
					_ = GetLogger()
				})
			} else {
				assert.Panics(t, func() {
					_ = GetLogger()
				})
			}
		})
	}
}

func (suite *LogTestSuite) TestParseLogLevel() {
	testCases := []struct {
		name      string
		logLevel  string
		expected  zapcore.Level
		expectErr bool
	}{
		{"Debug", "debug", zapcore.DebugLevel, false},
		{"Info", "INFO", zapcore.InfoLevel, false},
		{"Warn", "warn", zapcore.WarnLevel, false},
		{"Error", "error", zapcore.ErrorLevel, false},
		{"Invalid", "invalid", zapcore.ErrorLevel, true},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			level, err := parseLogLevel(tc.logLevel)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expected, level)
		})
	}
}

func (suite *LogTestSuite) TestSetLevel() {
	assert.NoError(suite.T(), SetLevel("debug"))
	assert.True(suite.T(), newLogger(zapcore.AddSync(&nopWriter{})).IsDebugEnabled())

	assert.NoError(suite.T(), SetLevel("warn"))
	assert.False(suite.T(), newLogger(zapcore.AddSync(&nopWriter{})).IsDebugEnabled())

	assert.Error(suite.T(), SetLevel("verbose"))
}

func (suite *LogTestSuite) TestWithAndFieldConversion() {
	core, logs := observer.New(zapcore.DebugLevel)
	base := &Logger{internal: zap.New(core)}

	child := base.With(String(LoggerKeyComponentName, "Engine"))
	child.Info("node finished",
		String(LoggerKeyNodeID, "n1"),
		Int("attempt", 2),
		Bool("skipped", false),
		Duration("elapsed", 5*time.Millisecond),
		Any("outputs", map[string]any{"ok": true}),
		Error(errors.New("boom")))

	entries := logs.All()
	assert.Len(suite.T(), entries, 1)
	assert.Equal(suite.T(), "node finished", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(suite.T(), "Engine", fields[LoggerKeyComponentName])
	assert.Equal(suite.T(), "n1", fields[LoggerKeyNodeID])
	assert.Equal(suite.T(), int64(2), fields["attempt"])
	assert.Equal(suite.T(), false, fields["skipped"])
	assert.Equal(suite.T(), 5*time.Millisecond, fields["elapsed"])
	assert.Equal(suite.T(), "boom", fields["error"])
}

func (suite *LogTestSuite) TestLevels() {
	core, logs := observer.New(zapcore.WarnLevel)
	l := &Logger{internal: zap.New(core)}

	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	assert.Equal(suite.T(), 2, logs.Len())
	assert.False(suite.T(), l.IsDebugEnabled())
}

func (suite *LogTestSuite) TestMaskString() {
	assert.Equal(suite.T(), "***", MaskString("abc"))
	assert.Equal(suite.T(), "s****t", MaskString("secret"))
	assert.Equal(suite.T(), "", MaskString(""))
}

type nopWriter struct{}

func (n *nopWriter) Write(p []byte) (int, error) {
	return len(p), nil
}
