package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiihann/parbench/harness"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Iterations)
	assert.Equal(t, 50, cfg.Workers)
	assert.Equal(t, "mixed", cfg.Workload)
	assert.True(t, cfg.TrackMemory)
	assert.Equal(t, FormatText, cfg.Format)
	assert.Equal(t, time.Duration(0), cfg.Timeout())
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	yamlContent := `
iterations: 20
workers: 10
workload: text
track_memory: false
format: json
timeout_seconds: 90
workload_options:
  matrix_size: 200
  text_lines: 50
  dir: /tmp/parbench
  command: ["sh", "-c", "true"]
`
	yamlPath := filepath.Join(t.TempDir(), "parbench.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlContent), 0o644))

	cfg, err := Load(yamlPath)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Iterations)
	assert.Equal(t, 10, cfg.Workers)
	assert.Equal(t, "text", cfg.Workload)
	assert.False(t, cfg.TrackMemory)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, 90*time.Second, cfg.Timeout())
	assert.Equal(t, 200, cfg.WorkloadOptions.MatrixSize)
	assert.Equal(t, 50, cfg.WorkloadOptions.TextLines)
	assert.Equal(t, "/tmp/parbench", cfg.WorkloadOptions.Dir)
	assert.Equal(t, []string{"sh", "-c", "true"}, cfg.WorkloadOptions.Command)
	assert.Equal(t, harness.RunConfig{IterationsPerWorker: 20, WorkerCount: 10}, cfg.RunConfig())
}

func TestLoadYAMLMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/parbench.yaml")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Iterations)
}

func TestLoadYAMLInvalid(t *testing.T) {
	yamlPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("{{{{invalid yaml"), 0o644))

	_, err := Load(yamlPath)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PARBENCH_ITERATIONS", "7")
	t.Setenv("PARBENCH_WORKERS", "3")
	t.Setenv("PARBENCH_WORKLOAD", "matrix")
	t.Setenv("PARBENCH_TRACK_MEMORY", "false")
	t.Setenv("PARBENCH_FORMAT", "TABLE")
	t.Setenv("PARBENCH_TIMEOUT_SECONDS", "5")
	t.Setenv("PARBENCH_DIR", "/var/tmp")
	t.Setenv("PARBENCH_MATRIX_SIZE", "64")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Iterations)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "matrix", cfg.Workload)
	assert.False(t, cfg.TrackMemory)
	assert.Equal(t, FormatTable, cfg.Format)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "/var/tmp", cfg.WorkloadOptions.Dir)
	assert.Equal(t, 64, cfg.WorkloadOptions.MatrixSize)
}

func TestEnvOverridesYAML(t *testing.T) {
	yamlPath := filepath.Join(t.TempDir(), "parbench.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("iterations: 12\nworkers: 4\n"), 0o644))

	t.Setenv("PARBENCH_WORKERS", "16")

	cfg, err := Load(yamlPath)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Workers)
	assert.Equal(t, 12, cfg.Iterations)
}

func TestEnvOverrideInvalidValues(t *testing.T) {
	t.Setenv("PARBENCH_ITERATIONS", "many")
	t.Setenv("PARBENCH_TRACK_MEMORY", "perhaps")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Iterations)
	assert.True(t, cfg.TrackMemory)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: harness.ErrInvalidConfig},
		{name: "zero iterations", mutate: func(c *Config) { c.Iterations = 0 }, wantErr: harness.ErrInvalidConfig},
		{name: "bad format", mutate: func(c *Config) { c.Format = "xml" }},
		{name: "negative timeout", mutate: func(c *Config) { c.TimeoutSeconds = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)

			tt.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
