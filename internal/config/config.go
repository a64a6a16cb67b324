// Package config loads the optional YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresmejia3/hide/v2/pkg/jpeg"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// JPEG modes.
const (
	ModeTranscode = "transcode"
	ModeReencode  = "reencode"
)

type JPEGConfig struct {
	Mode        string `yaml:"mode"`        // transcode or reencode
	Scale       int    `yaml:"scale"`       // quantization scale used when re-encoding
	Subsampling string `yaml:"subsampling"` // 4:4:4 or 4:2:0 when re-encoding
}

type Config struct {
	Fill     bool       `yaml:"fill"`      // pad pixel carriers with random bytes
	ECC      bool       `yaml:"ecc"`       // Reed-Solomon envelope around the payload
	Compress bool       `yaml:"compress"`  // zstd-compress the payload
	Progress bool       `yaml:"progress"`  // draw a progress bar on stderr
	LogLevel string     `yaml:"log_level"` // zerolog level name
	JPEG     JPEGConfig `yaml:"jpeg"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Progress: true,
		LogLevel: zerolog.InfoLevel.String(),
		JPEG: JPEGConfig{
			Mode:        ModeTranscode,
			Scale:       1,
			Subsampling: "4:4:4",
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/hide/config.yaml or its platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "hide", "config.yaml")
}

// Load reads path over the defaults. An empty path tries DefaultPath and
// silently falls back to the defaults when that file does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated values and ranges.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	switch c.JPEG.Mode {
	case ModeTranscode, ModeReencode:
	default:
		return fmt.Errorf("%w: jpeg.mode %q (want %s or %s)", ErrInvalid, c.JPEG.Mode, ModeTranscode, ModeReencode)
	}
	if c.JPEG.Scale < 1 || c.JPEG.Scale > jpeg.MaxScale {
		return fmt.Errorf("%w: jpeg.scale %d out of range [1, %d]", ErrInvalid, c.JPEG.Scale, jpeg.MaxScale)
	}
	switch c.JPEG.Subsampling {
	case "4:4:4", "444", "4:2:0", "420":
	default:
		return fmt.Errorf("%w: jpeg.subsampling %q", ErrInvalid, c.JPEG.Subsampling)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() zerolog.Level {
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}
