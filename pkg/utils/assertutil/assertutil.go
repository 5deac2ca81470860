// Copyright 2023 The mxquadtree Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package assertutil

import "github.com/stretchr/testify/require"

// Checker carries the assertions of a test into helpers that live outside
// _test.go files, such as the test server builders.
type Checker struct {
	noError func(err error, msgAndArgs ...interface{})
}

// NewChecker creates a Checker reporting through re.
func NewChecker(re *require.Assertions) *Checker {
	return &Checker{noError: re.NoError}
}

// AssertNoError fails the test when err is not nil. A Checker without
// assertions panics on a non-nil err.
func (c *Checker) AssertNoError(err error, msgAndArgs ...interface{}) {
	if c == nil || c.noError == nil {
		if err != nil {
			panic(err)
		}
		return
	}
	c.noError(err, msgAndArgs...)
}
