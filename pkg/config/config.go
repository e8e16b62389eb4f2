// Package config loads the c3net settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/c3net/pkg/c3"
	"github.com/dd0wney/c3net/pkg/logging"
	"github.com/dd0wney/c3net/pkg/metrics"
	"github.com/dd0wney/c3net/pkg/tax"
	"github.com/dd0wney/c3net/pkg/validation"
)

var (
	ErrReadConfig    = errors.New("failed to read config")
	ErrParseConfig   = errors.New("failed to parse config")
	ErrInvalidConfig = errors.New("invalid config")
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// LogLevels are the accepted values of Config.LogLevel.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Config holds the tunable rules and ambient settings.
type Config struct {
	LogLevel string    `yaml:"log_level"`
	Limits   c3.Limits `yaml:"limits"`
	Tax      tax.Rates `yaml:"tax"`
	Palette  []string  `yaml:"palette,omitempty"`
}

// DefaultConfig returns the tabletop limits and rates at info level.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Limits:   c3.DefaultLimits(),
		Tax:      tax.DefaultRates(),
		Palette:  append([]string(nil), c3.DefaultPalette...),
	}
}

// Load reads a YAML config file over the defaults and validates it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrReadConfig, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Fields
// left out keep their default values; unknown fields are rejected.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrParseConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Validate checks the effective limits, rates, palette and log level.
func (c *Config) Validate() error {
	cv := validation.NewConfigValidator("Config").
		OneOf("LogLevel", c.LogLevel, LogLevels)

	for t := range c.Limits {
		cv.When(!t.Valid(), func(v *validation.ConfigValidator) {
			v.Custom("Limits", func() error { return fmt.Errorf("unknown network type %q", t) })
		})
	}
	for _, t := range c3.NetworkTypes {
		lim := c.Limits.For(t)
		prefix := "Limits." + string(t)
		if t.IsPeer() {
			cv.RangeInt(prefix+".MaxPeers", lim.MaxPeers, 2, 12)
			continue
		}
		cv.RangeInt(prefix+".MaxMembers", lim.MaxMembers, 1, 12).
			RangeInt(prefix+".MaxDepth", lim.MaxDepth, 1, 4).
			MinInt(prefix+".MaxUnits", lim.MaxUnits, 2)
	}

	cv.RangeFloat("Tax.Standard", c.Tax.Standard, 0, 1).
		RangeFloat("Tax.Boosted", c.Tax.Boosted, 0, 1).
		RangeFloat("Tax.NovaPerUnit", c.Tax.NovaPerUnit, 0, 1).
		RangeFloat("Tax.NovaMax", c.Tax.NovaMax, 0, 1).
		AtMostFloat("Tax.NovaPerUnit", c.Tax.NovaPerUnit, "Tax.NovaMax", c.Tax.NovaMax)

	cv.Custom("Palette", func() error {
		if len(c.Palette) == 0 {
			return errors.New("at least one colour is required")
		}
		for _, col := range c.Palette {
			if !colorPattern.MatchString(col) {
				return fmt.Errorf("colour %q is not #rrggbb", col)
			}
		}
		return nil
	})
	return cv.Validate()
}

// EngineOptions returns the engine options this config implies.
func (c *Config) EngineOptions(logger logging.Logger, reg *metrics.Registry) []c3.Option {
	return []c3.Option{
		c3.WithLimits(c.Limits),
		c3.WithPalette(c.Palette),
		c3.WithLogger(logger),
		c3.WithMetrics(reg),
	}
}

// Level returns the parsed log level.
func (c *Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}
