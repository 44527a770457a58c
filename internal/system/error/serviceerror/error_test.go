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

package serviceerror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ServiceErrorTestSuite struct {
	suite.Suite
}

func TestServiceErrorSuite(t *testing.T) {
	suite.Run(t, new(ServiceErrorTestSuite))
}

func (suite *ServiceErrorTestSuite) TestCustomServiceError() {
	base := ServiceError{
		Type:             ClientErrorType,
		Code:             "WF-1004",
		Error:            "Invalid workflow",
		ErrorDescription: "The workflow failed validation",
	}

	custom := CustomServiceError(base, "node n1 has unknown type x.y")

	assert.Equal(suite.T(), base.Code, custom.Code)
	assert.Equal(suite.T(), base.Type, custom.Type)
	assert.Equal(suite.T(), base.Error, custom.Error)
	assert.Equal(suite.T(), "node n1 has unknown type x.y", custom.ErrorDescription)
	assert.Equal(suite.T(), "The workflow failed validation", base.ErrorDescription)
}
