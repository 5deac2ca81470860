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
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/phen0menon/mxquadtree/pkg/errs"
	"github.com/phen0menon/mxquadtree/pkg/quadtree"
	"github.com/phen0menon/mxquadtree/pkg/ratelimit"
	"github.com/phen0menon/mxquadtree/pkg/utils/configutil"
	"github.com/phen0menon/mxquadtree/pkg/utils/metricutil"
	"github.com/phen0menon/mxquadtree/pkg/utils/typeutil"
	"github.com/pingcap/log"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	defaultName                = "mxqt"
	defaultListenAddr          = "127.0.0.1:2399"
	defaultLogFormat           = "text"
	defaultDisableErrorVerbose = true
	defaultMetricsPushInterval = 15 * time.Second
	defaultMaxRequestBytes     = typeutil.ByteSize(1 << 20)
	defaultMaxScanLimit        = 1000
	defaultRejectOutside       = true

	defaultPlaneLeft   = -1.0
	defaultPlaneTop    = -1.0
	defaultPlaneRight  = 1.0
	defaultPlaneBottom = 1.0
)

// Config is the configuration of mxqt-server.
type Config struct {
	Name       string `toml:"name" json:"name"`
	ListenAddr string `toml:"listen-addr" json:"listen-addr"`

	// EnableRedactLog hides point coordinates and request bodies in logs.
	EnableRedactLog bool `toml:"enable-redact-log" json:"enable-redact-log"`

	// Log related config.
	Log log.Config `toml:"log" json:"log"`

	Plane PlaneConfig `toml:"plane" json:"plane"`

	Metric metricutil.MetricConfig `toml:"metric" json:"metric"`

	API APIConfig `toml:"api" json:"api"`

	Audit AuditConfig `toml:"audit" json:"audit"`

	// For all warnings during parsing.
	WarningMsgs []string `json:"-"`

	Logger   *zap.Logger        `json:"-"`
	LogProps *log.ZapProperties `json:"-"`
}

// PlaneConfig describes the domain of the quadtree.
// NOTE: This type is exported by HTTP API. Please pay more attention when modifying it.
type PlaneConfig struct {
	Left     typeutil.Float64 `toml:"left" json:"left"`
	Top      typeutil.Float64 `toml:"top" json:"top"`
	Right    typeutil.Float64 `toml:"right" json:"right"`
	Bottom   typeutil.Float64 `toml:"bottom" json:"bottom"`
	MaxDepth int              `toml:"max-depth" json:"max-depth"`
	// RejectOutside makes inserts outside the plane fail. When it is off the
	// point is clamped onto the plane boundary.
	RejectOutside bool `toml:"reject-outside" json:"reject-outside"`
}

// Domain returns the normalized plane rectangle.
func (c *PlaneConfig) Domain() quadtree.Rect {
	return quadtree.NewRect(float64(c.Left), float64(c.Top), float64(c.Right), float64(c.Bottom))
}

func (c *PlaneConfig) adjust(meta *configutil.ConfigMetaData) {
	if !meta.IsDefined("left") && !meta.IsDefined("top") && !meta.IsDefined("right") && !meta.IsDefined("bottom") {
		c.Left, c.Top, c.Right, c.Bottom = defaultPlaneLeft, defaultPlaneTop, defaultPlaneRight, defaultPlaneBottom
	}
	configutil.AdjustInt(&c.MaxDepth, quadtree.DefaultMaxDepth)
	if !meta.IsDefined("reject-outside") {
		c.RejectOutside = defaultRejectOutside
	}
}

// Validate checks that a tree can be built on the plane.
func (c *PlaneConfig) Validate() error {
	if !c.Domain().IsValid() {
		return errs.ErrInvalidConfig.FastGenByArgs(fmt.Sprintf("plane %v has no area", c.Domain()))
	}
	if c.MaxDepth < 1 || c.MaxDepth > quadtree.MaxDepthLimit {
		return errs.ErrInvalidConfig.FastGenByArgs(fmt.Sprintf("max-depth %d is out of [1, %d]", c.MaxDepth, quadtree.MaxDepthLimit))
	}
	if !c.Domain().Resolves(c.MaxDepth) {
		return errs.ErrInvalidConfig.FastGenByArgs(fmt.Sprintf("plane %v is too narrow for max-depth %d", c.Domain(), c.MaxDepth))
	}
	return nil
}

// APIConfig limits the HTTP API.
// NOTE: This type is exported by HTTP API. Please pay more attention when modifying it.
type APIConfig struct {
	// RateLimit is the allowed requests per second of each route, 0 means unlimited.
	RateLimit float64 `toml:"rate-limit" json:"rate-limit"`
	RateBurst int     `toml:"rate-burst" json:"rate-burst"`
	// MaxConcurrency bounds the requests in flight of each route, 0 means unlimited.
	MaxConcurrency  uint64            `toml:"max-concurrency" json:"max-concurrency"`
	MaxRequestBytes typeutil.ByteSize `toml:"max-request-bytes" json:"max-request-bytes"`
	MaxScanLimit    int               `toml:"max-scan-limit" json:"max-scan-limit"`
}

// DimensionConfig returns the per-route limit.
func (c *APIConfig) DimensionConfig() ratelimit.DimensionConfig {
	return ratelimit.DimensionConfig{
		QPS:         c.RateLimit,
		QPSBurst:    c.RateBurst,
		Concurrency: c.MaxConcurrency,
	}
}

func (c *APIConfig) adjust(meta *configutil.ConfigMetaData) {
	if c.RateLimit > 0 && c.RateBurst == 0 {
		c.RateBurst = int(c.RateLimit) + 1
	}
	if !meta.IsDefined("max-request-bytes") {
		c.MaxRequestBytes = defaultMaxRequestBytes
	}
	configutil.AdjustInt(&c.MaxScanLimit, defaultMaxScanLimit)
}

// Validate checks the API limits.
func (c *APIConfig) Validate() error {
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return errs.ErrInvalidConfig.FastGenByArgs("rate-limit and rate-burst should not be negative")
	}
	if c.MaxScanLimit < 0 {
		return errs.ErrInvalidConfig.FastGenByArgs("max-scan-limit should not be negative")
	}
	return nil
}

// AuditConfig selects the audited routes.
type AuditConfig struct {
	Enable bool `toml:"enable" json:"enable"`
	// Services lists the audited route names, empty means every route.
	Services []string `toml:"services" json:"services"`
}

// NewConfig creates a new config.
func NewConfig() *Config {
	return &Config{}
}

// Parse loads the config file named by the "config" flag and applies the
// command line flags on top of it.
func (c *Config) Parse(flagSet *pflag.FlagSet) error {
	var (
		meta *toml.MetaData
		err  error
	)
	if configFile, _ := flagSet.GetString("config"); configFile != "" {
		meta, err = configutil.ConfigFromFile(c, configFile)
		if err != nil {
			return errs.ErrLoadConfig.Wrap(err).GenWithStackByCause()
		}
	}

	// ignore the error check here
	configutil.AdjustCommandlineString(flagSet, &c.Log.Level, "log-level")
	configutil.AdjustCommandlineString(flagSet, &c.Log.File.Filename, "log-file")
	configutil.AdjustCommandlineString(flagSet, &c.Name, "name")
	configutil.AdjustCommandlineString(flagSet, &c.ListenAddr, "listen-addr")
	configutil.AdjustCommandlineString(flagSet, &c.Metric.PushAddress, "metrics-addr")
	configutil.AdjustCommandlineInt(flagSet, &c.Plane.MaxDepth, "max-depth")
	configutil.AdjustCommandlineBool(flagSet, &c.EnableRedactLog, "enable-redact-log")

	return c.Adjust(meta)
}

// Adjust fills defaults into unset items and validates the result.
func (c *Config) Adjust(meta *toml.MetaData) error {
	configMetaData := configutil.NewConfigMetadata(meta)
	if err := configMetaData.CheckUndecoded(); err != nil {
		c.WarningMsgs = append(c.WarningMsgs, err.Error())
	}

	if c.Name == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return err
		}
		configutil.AdjustString(&c.Name, fmt.Sprintf("%s-%s", defaultName, hostname))
	}
	configutil.AdjustString(&c.ListenAddr, defaultListenAddr)

	c.Plane.adjust(configMetaData.Child("plane"))
	c.API.adjust(configMetaData.Child("api"))

	configutil.AdjustDuration(&c.Metric.PushInterval, defaultMetricsPushInterval)
	configutil.AdjustString(&c.Metric.PushJob, c.Name)

	c.adjustLog(configMetaData.Child("log"))

	return c.Validate()
}

func (c *Config) adjustLog(meta *configutil.ConfigMetaData) {
	if !meta.IsDefined("disable-error-verbose") {
		c.Log.DisableErrorVerbose = defaultDisableErrorVerbose
	}
	configutil.AdjustString(&c.Log.Format, defaultLogFormat)
}

// Validate is used to validate if some configurations are right.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return errs.ErrInvalidConfig.FastGenByArgs(fmt.Sprintf("listen-addr %q: %v", c.ListenAddr, err))
	}
	if err := c.Plane.Validate(); err != nil {
		return err
	}
	return c.API.Validate()
}

// Clone returns a cloned configuration.
func (c *Config) Clone() *Config {
	cfg := *c
	cfg.Audit.Services = append([]string(nil), c.Audit.Services...)
	cfg.WarningMsgs = append([]string(nil), c.WarningMsgs...)
	return &cfg
}

func (c *Config) String() string {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "<nil>"
	}
	return string(data)
}
