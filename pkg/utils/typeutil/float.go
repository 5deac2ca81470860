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


package typeutil

import "github.com/phen0menon/mxquadtree/pkg/errs"

// Float64 is a float64 that also accepts TOML integers, so `left = -1`
// and `left = -1.0` decode to the same value.
type Float64 float64

// UnmarshalTOML decodes a TOML float or integer.
func (f *Float64) UnmarshalTOML(v interface{}) error {
	switch n := v.(type) {
	case float64:
		*f = Float64(n)
	case int64:
		*f = Float64(n)
	default:
		return errs.ErrParseFloat.FastGenByArgs(v)
	}
	return nil
}
