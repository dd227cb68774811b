// Package config loads benchmark settings from a YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/weiihann/parbench/harness"
	"github.com/weiihann/parbench/workload"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
)

type Config struct {
	Iterations      int             `yaml:"iterations"`
	Workers         int             `yaml:"workers"`
	Workload        string          `yaml:"workload"`
	TrackMemory     bool            `yaml:"track_memory"`
	Format          string          `yaml:"format"`
	TimeoutSeconds  int             `yaml:"timeout_seconds"`
	WorkloadOptions workload.Config `yaml:"workload_options"`
}

// Load returns the defaults overlaid with the YAML file at path (if it
// exists) and then with PARBENCH_* environment variables.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Iterations:  30,
		Workers:     50,
		Workload:    "mixed",
		TrackMemory: true,
		Format:      FormatText,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PARBENCH_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Iterations = n
		}
	}
	if v := os.Getenv("PARBENCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("PARBENCH_WORKLOAD"); v != "" {
		cfg.Workload = v
	}
	if v := os.Getenv("PARBENCH_TRACK_MEMORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.TrackMemory = b
		}
	}
	if v := os.Getenv("PARBENCH_FORMAT"); v != "" {
		cfg.Format = strings.ToLower(v)
	}
	if v := os.Getenv("PARBENCH_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("PARBENCH_DIR"); v != "" {
		cfg.WorkloadOptions.Dir = v
	}
	if v := os.Getenv("PARBENCH_MATRIX_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WorkloadOptions.MatrixSize = n
		}
	}
}

// RunConfig returns the harness shape described by the config.
func (c *Config) RunConfig() harness.RunConfig {
	return harness.RunConfig{
		IterationsPerWorker: c.Iterations,
		WorkerCount:         c.Workers,
	}
}

// Timeout returns the run timeout, or zero when none is set.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}

	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the fields the harness and report packages depend on.
func (c *Config) Validate() error {
	if err := c.RunConfig().Validate(); err != nil {
		return err
	}

	switch c.Format {
	case FormatText, FormatTable, FormatJSON:
	default:
		return fmt.Errorf("unknown format %q (want %s, %s or %s)",
			c.Format, FormatText, FormatTable, FormatJSON)
	}

	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds)
	}

	return nil
}
