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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/phen0menon/mxquadtree/pkg/errs"
	"github.com/phen0menon/mxquadtree/pkg/quadtree"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func loadConfig(cfgData string) (*Config, error) {
	cfg := NewConfig()
	meta, err := toml.Decode(cfgData, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Adjust(&meta)
}

func TestAdjustDefaults(t *testing.T) {
	re := require.New(t)
	cfg := NewConfig()
	re.NoError(cfg.Adjust(nil))
	re.True(strings.HasPrefix(cfg.Name, defaultName+"-"))
	re.Equal(defaultListenAddr, cfg.ListenAddr)
	re.Equal(quadtree.NewRect(-1, -1, 1, 1), cfg.Plane.Domain())
	re.Equal(quadtree.DefaultMaxDepth, cfg.Plane.MaxDepth)
	re.True(cfg.Plane.RejectOutside)
	re.Equal(defaultMaxRequestBytes, cfg.API.MaxRequestBytes)
	re.Equal(defaultMaxScanLimit, cfg.API.MaxScanLimit)
	re.Zero(cfg.API.RateLimit)
	re.Equal(defaultMetricsPushInterval, cfg.Metric.PushInterval.Duration)
	re.Equal(cfg.Name, cfg.Metric.PushJob)
	re.Equal(defaultLogFormat, cfg.Log.Format)
	re.True(cfg.Log.DisableErrorVerbose)
	re.Empty(cfg.WarningMsgs)
}

func TestPlaneFromFile(t *testing.T) {
	re := require.New(t)
	cfg, err := loadConfig(`
name = "plane-1"
[plane]
left = 100
top = 50
right = 0
bottom = 0
max-depth = 6
reject-outside = false
`)
	re.NoError(err)
	re.Equal("plane-1", cfg.Name)
	re.Equal("plane-1", cfg.Metric.PushJob)
	re.Equal(quadtree.NewRect(0, 0, 100, 50), cfg.Plane.Domain())
	re.Equal(6, cfg.Plane.MaxDepth)
	re.False(cfg.Plane.RejectOutside)
}

func TestValidation(t *testing.T) {
	re := require.New(t)
	testCases := []struct {
		cfgData string
		hasErr  bool
	}{
		{"[plane]\nleft = 0.0\ntop = 0.0\nright = 0.0\nbottom = 1.0", true},
		{"[plane]\nleft = 5.0", true},
		{"[plane]\nleft = -2.0\ntop = -1.0\nright = 2.0\nbottom = 1.0", false},
		{"[plane]\nmax-depth = 40", true},
		{"[plane]\nmax-depth = 32", false},
		{"[plane]\nmax-depth = -1", true},
		{`listen-addr = "localhost"`, true},
		{`listen-addr = ":2399"`, false},
		{"[api]\nrate-limit = -1.0", true},
		{"[api]\nmax-scan-limit = -5", true},
	}
	for _, tc := range testCases {
		_, err := loadConfig(tc.cfgData)
		re.Equal(tc.hasErr, err != nil, tc.cfgData)
		if tc.hasErr {
			re.True(errs.ErrInvalidConfig.Equal(err), tc.cfgData)
		}
	}
}

func TestPlaneNumberForms(t *testing.T) {
	re := require.New(t)
	cfg, err := loadConfig("[plane]\nleft = -1\ntop = -1\nright = 1\nbottom = 1\n")
	re.NoError(err)
	re.Equal(quadtree.NewRect(-1, -1, 1, 1), cfg.Plane.Domain())

	cfg, err = loadConfig("[plane]\nleft = -1\ntop = -0.5\nright = 1.5\nbottom = 2\n")
	re.NoError(err)
	re.Equal(quadtree.NewRect(-1, -0.5, 1.5, 2), cfg.Plane.Domain())
	re.Empty(cfg.WarningMsgs)

	_, err = loadConfig("[plane]\nleft = \"west\"")
	re.Error(err)
	re.False(errs.ErrInvalidConfig.Equal(err))
}

func TestAPIConfig(t *testing.T) {
	re := require.New(t)
	cfg, err := loadConfig(`
[api]
rate-limit = 10.0
max-concurrency = 4
max-request-bytes = "2MiB"
`)
	re.NoError(err)
	re.Equal(11, cfg.API.RateBurst)
	re.EqualValues(2<<20, cfg.API.MaxRequestBytes)
	dim := cfg.API.DimensionConfig()
	re.Equal(10., dim.QPS)
	re.Equal(11, dim.QPSBurst)
	re.Equal(uint64(4), dim.Concurrency)

	_, err = loadConfig("[api]\nmax-request-bytes = \"lots\"")
	re.Error(err)
}

func TestUndecodedWarning(t *testing.T) {
	re := require.New(t)
	cfg, err := loadConfig("no-such-item = 1\n[plane]\ncolor = \"red\"")
	re.NoError(err)
	re.Len(cfg.WarningMsgs, 1)
	re.Contains(cfg.WarningMsgs[0], "no-such-item")
	re.Contains(cfg.WarningMsgs[0], "plane.color")
}

func TestParseFlags(t *testing.T) {
	re := require.New(t)
	file := filepath.Join(t.TempDir(), "mxqt.toml")
	re.NoError(os.WriteFile(file, []byte(`
name = "from-file"
[plane]
max-depth = 4
[metric]
interval = "30s"
[log]
level = "warn"
`), 0o600))

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flagSet.String("config", "", "config file")
	flagSet.String("name", "", "human-readable name for this server")
	flagSet.StringP("log-level", "L", "", "log level")
	flagSet.Int("max-depth", 0, "max depth")
	re.NoError(flagSet.Parse([]string{"--config", file, "--name", "from-flag", "--max-depth", "5"}))

	cfg := NewConfig()
	re.NoError(cfg.Parse(flagSet))
	re.Equal("from-flag", cfg.Name)
	re.Equal(5, cfg.Plane.MaxDepth)
	re.Equal("warn", cfg.Log.Level)
	re.Equal(30*time.Second, cfg.Metric.PushInterval.Duration)

	flagSet = pflag.NewFlagSet("test", pflag.ContinueOnError)
	flagSet.String("config", "", "config file")
	re.NoError(flagSet.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}))
	re.Error(NewConfig().Parse(flagSet))
}

func TestClone(t *testing.T) {
	re := require.New(t)
	cfg, err := loadConfig("[audit]\nenable = true\nservices = [\"InsertPoint\"]")
	re.NoError(err)
	cloned := cfg.Clone()
	cloned.Audit.Services[0] = "RemovePoint"
	cloned.Plane.MaxDepth = 9
	re.Equal("InsertPoint", cfg.Audit.Services[0])
	re.Equal(quadtree.DefaultMaxDepth, cfg.Plane.MaxDepth)
	re.Contains(cfg.String(), `"max-depth": 3`)
}
