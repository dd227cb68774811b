package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiihann/parbench/config"
	"github.com/weiihann/parbench/harness"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := newRootCmd(discardLogger(), &out)
	root.SetArgs(args)
	root.SetErr(io.Discard)

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

func TestWorkloadsCommand(t *testing.T) {
	out, err := execute(t, "workloads")
	require.NoError(t, err)

	lines := strings.Fields(out)
	assert.Contains(t, lines, "mixed")
	assert.Contains(t, lines, "noop")
}

func TestRunTextReport(t *testing.T) {
	out, err := execute(t, "run",
		"--workload", "noop",
		"--iterations", "5",
		"--workers", "4",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Sequential elapsed:")
	assert.Contains(t, out, "Concurrent elapsed:")
	assert.Contains(t, out, "Sequential memory:")
}

func TestRunJSONReport(t *testing.T) {
	out, err := execute(t, "run",
		"--workload", "file",
		"--iterations", "2",
		"--workers", "3",
		"--dir", t.TempDir(),
		"--no-memory",
		"--format", "json",
	)
	require.NoError(t, err)

	var parsed struct {
		Workload string            `json:"workload"`
		Config   harness.RunConfig `json:"config"`
		Phases   []harness.Report  `json:"phases"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))

	assert.Equal(t, "file", parsed.Workload)
	assert.Equal(t, harness.RunConfig{IterationsPerWorker: 2, WorkerCount: 3}, parsed.Config)
	require.Len(t, parsed.Phases, 2)

	for _, p := range parsed.Phases {
		assert.Equal(t, 6, p.Invocations)
		assert.Nil(t, p.MemoryBefore)
	}
}

func TestRunUsesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workload: noop\niterations: 1\nworkers: 2\nformat: table\n"), 0o644))

	out, err := execute(t, "run", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "## Benchmark Results")
	assert.Contains(t, out, "| Sequential | 2 |")
}

func TestRunInvalidConfig(t *testing.T) {
	_, err := execute(t, "run", "--workload", "noop", "--workers", "0")
	require.Error(t, err)
	assert.ErrorIs(t, err, harness.ErrInvalidConfig)
}

func TestRunUnknownWorkload(t *testing.T) {
	_, err := execute(t, "run", "--workload", "nope", "--iterations", "1", "--workers", "1")
	assert.ErrorContains(t, err, "unknown workload")
}

func TestRunBenchmarkReportsWorkloadFailure(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Workload = "file"
	cfg.Iterations = 1
	cfg.Workers = 1
	cfg.WorkloadOptions.Dir = filepath.Join(t.TempDir(), "file-not-dir")
	require.NoError(t, os.WriteFile(cfg.WorkloadOptions.Dir, nil, 0o644))

	err = runBenchmark(context.Background(), discardLogger(), io.Discard, cfg)
	assert.Error(t, err)
}
