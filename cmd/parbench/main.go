// Package main provides the CLI entry point for parbench, a sequential
// versus concurrent workload benchmark.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/weiihann/parbench/config"
	"github.com/weiihann/parbench/harness"
	"github.com/weiihann/parbench/report"
	"github.com/weiihann/parbench/workload"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger, os.Stdout)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "parbench",
		Short: "Sequential versus concurrent workload benchmark",
		Long: `Parbench runs a synthetic CPU, memory and I/O workload a fixed number
of times, first on a single goroutine and then fanned out across workers,
and reports the elapsed time and memory counters of each phase.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetOut(stdout)
	root.AddCommand(newRunCmd(logger), newWorkloadsCmd())

	return root
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		configPath string
		iterations int
		workers    int
		name       string
		format     string
		noMemory   bool
		timeout    time.Duration
		dir        string
		matrixSize int
		command    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sequential and concurrent phases",
		Long: `Run the selected workload iterations*workers times sequentially, then
the same number of times across workers goroutines, and print a report.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			flags := cmd.Flags()
			if flags.Changed("iterations") {
				cfg.Iterations = iterations
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if flags.Changed("workload") {
				cfg.Workload = name
			}
			if flags.Changed("format") {
				cfg.Format = format
			}
			if flags.Changed("no-memory") {
				cfg.TrackMemory = !noMemory
			}
			if flags.Changed("timeout") {
				cfg.TimeoutSeconds = int(math.Ceil(timeout.Seconds()))
			}
			if flags.Changed("dir") {
				cfg.WorkloadOptions.Dir = dir
			}
			if flags.Changed("matrix-size") {
				cfg.WorkloadOptions.MatrixSize = matrixSize
			}
			if flags.Changed("command") {
				cfg.WorkloadOptions.Command = strings.Fields(command)
			}

			return runBenchmark(cmd.Context(), logger, cmd.OutOrStdout(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "",
		"Path to a YAML config file")
	flags.IntVar(&iterations, "iterations", 30,
		"Workload calls per worker")
	flags.IntVar(&workers, "workers", 50,
		"Number of concurrent workers")
	flags.StringVar(&name, "workload", "mixed",
		"Workload to run: "+strings.Join(workload.Names(), ", "))
	flags.StringVar(&format, "format", config.FormatText,
		"Report format: text, table, json")
	flags.BoolVar(&noMemory, "no-memory", false,
		"Skip memory snapshots around each phase")
	flags.DurationVar(&timeout, "timeout", 0,
		"Abort the run after this long (0 = no timeout)")
	flags.StringVar(&dir, "dir", "",
		"Scratch directory for file workloads (default: system temp dir)")
	flags.IntVar(&matrixSize, "matrix-size", 100,
		"Matrix dimension for matrix and mixed workloads")
	flags.StringVar(&command, "command", "",
		"Command line for the exec workload")

	return cmd
}

func newWorkloadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workloads",
		Short: "List built-in workloads",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range workload.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	out io.Writer,
	cfg *config.Config,
) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if timeout := cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fn, err := workload.New(cfg.Workload, cfg.WorkloadOptions)
	if err != nil {
		return err
	}

	runCfg := cfg.RunConfig()

	logger.InfoContext(ctx, "starting benchmark",
		slog.String("workload", cfg.Workload),
		slog.Int("iterations", runCfg.IterationsPerWorker),
		slog.Int("workers", runCfg.WorkerCount),
		slog.Bool("track_memory", cfg.TrackMemory),
	)

	runner := harness.NewRunner(logger, cfg.TrackMemory)

	phases, err := runner.Run(ctx, runCfg, fn)
	if err != nil {
		return fmt.Errorf("run %s: %w", cfg.Workload, err)
	}

	summary := report.NewSummary(cfg.Workload, runCfg, phases)

	switch cfg.Format {
	case config.FormatJSON:
		err = report.GenerateJSON(out, summary)
	case config.FormatTable:
		err = report.Generate(out, summary)
	default:
		err = report.WriteText(out, summary)
	}

	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	logger.InfoContext(ctx, "benchmark complete",
		slog.String("run_id", summary.RunID),
	)

	return nil
}
