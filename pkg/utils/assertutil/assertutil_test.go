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

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordT struct {
	failed bool
}

func (t *recordT) Errorf(string, ...interface{}) { t.failed = true }

func (t *recordT) FailNow() { t.failed = true }

func TestChecker(t *testing.T) {
	re := require.New(t)
	NewChecker(re).AssertNoError(nil)

	rt := &recordT{}
	NewChecker(require.New(rt)).AssertNoError(errors.New("setup failed"), "plane")
	re.True(rt.failed)

	var zero *Checker
	zero.AssertNoError(nil)
	re.Panics(func() { zero.AssertNoError(errors.New("setup failed")) })
	re.Panics(func() { (&Checker{}).AssertNoError(errors.New("setup failed")) })
}
