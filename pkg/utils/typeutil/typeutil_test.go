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

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
)

type example struct {
	Interval Duration `json:"interval" toml:"interval"`
}

func TestDurationJSON(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	example := &example{}

	text := []byte(`{"interval":"1h1m1s"}`)
	re.NoError(json.Unmarshal(text, example))
	re.Equal(float64(60*60+60+1), example.Interval.Seconds())

	b, err := json.Marshal(example)
	re.NoError(err)
	re.Equal(string(text), string(b))

	re.Error(json.Unmarshal([]byte(`{"interval":"1 hour"}`), example))
}

func TestDurationTOML(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	example := &example{}

	text := []byte(`interval = "1h1m1s"`)
	re.Nil(toml.Unmarshal(text, example))
	re.Equal(float64(60*60+60+1), example.Interval.Seconds())
	re.Equal(time.Hour+time.Minute+time.Second, NewDuration(example.Interval.Duration).Duration)
}

func TestByteSize(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	var b ByteSize
	re.NoError(json.Unmarshal([]byte(`"1MiB"`), &b))
	re.Equal(ByteSize(1<<20), b)
	out, err := json.Marshal(b)
	re.NoError(err)
	re.Equal(`"1MiB"`, string(out))

	re.NoError(b.UnmarshalText([]byte("64KiB")))
	re.Equal(ByteSize(64<<10), b)
	re.Error(b.UnmarshalText([]byte("a lot")))
	re.Error(json.Unmarshal([]byte(`12`), &b))
}

func TestFloat64TOML(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	var plane struct {
		Left  Float64 `toml:"left"`
		Right Float64 `toml:"right"`
	}
	re.NoError(toml.Unmarshal([]byte("left = -3\nright = 2.5"), &plane))
	re.Equal(Float64(-3), plane.Left)
	re.Equal(Float64(2.5), plane.Right)
	re.Error(toml.Unmarshal([]byte(`left = "far"`), &plane))

	b, err := json.Marshal(plane.Right)
	re.NoError(err)
	re.Equal("2.5", string(b))
}
