package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// WorkloadFunc is the unit of work exercised by the harness. It receives a
// globally unique index in [0, IterationsPerWorker*WorkerCount). Any
// external resource it touches must be named from that index.
type WorkloadFunc func(ctx context.Context, index int) error

// RunConfig holds the shape of a benchmark run.
type RunConfig struct {
	IterationsPerWorker int `json:"iterations_per_worker"`
	WorkerCount         int `json:"worker_count"`
}

// Validate reports ErrInvalidConfig for non-positive counts.
func (c RunConfig) Validate() error {
	if c.IterationsPerWorker <= 0 {
		return fmt.Errorf("%w: iterations per worker must be positive, got %d",
			ErrInvalidConfig, c.IterationsPerWorker)
	}

	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker count must be positive, got %d",
			ErrInvalidConfig, c.WorkerCount)
	}

	return nil
}

// TotalInvocations is the number of workload calls made by each phase.
func (c RunConfig) TotalInvocations() int {
	return c.IterationsPerWorker * c.WorkerCount
}

// Runner executes workloads and measures each phase.
type Runner struct {
	TrackMemory bool
	Logger      *slog.Logger

	// Snapshot is called before and after each phase when TrackMemory is
	// set. Defaults to MeasureResourceUsage.
	Snapshot func() MemorySnapshot
}

// NewRunner creates a Runner. When trackMemory is true every report carries
// memory snapshots taken just outside the timed interval.
func NewRunner(logger *slog.Logger, trackMemory bool) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		TrackMemory: trackMemory,
		Logger:      logger.With(slog.String("component", "harness")),
		Snapshot:    MeasureResourceUsage,
	}
}

// Run executes the sequential phase followed by the concurrent phase and
// returns both reports in that order. A failing sequential phase stops
// the run before the concurrent phase starts.
func (r *Runner) Run(
	ctx context.Context,
	cfg RunConfig,
	fn WorkloadFunc,
) ([]Report, error) {
	seq, err := r.RunSequential(ctx, cfg, fn)
	if err != nil {
		return nil, err
	}

	conc, err := r.RunConcurrent(ctx, cfg, fn)
	if err != nil {
		return []Report{*seq}, err
	}

	return []Report{*seq, *conc}, nil
}

// RunSequential invokes fn for every index in ascending order on the
// calling goroutine. The first failure aborts the phase.
func (r *Runner) RunSequential(
	ctx context.Context,
	cfg RunConfig,
	fn WorkloadFunc,
) (*Report, error) {
	if err := checkInputs(cfg, fn); err != nil {
		return nil, err
	}

	return r.measure(ctx, PhaseSequential, cfg, func() error {
		for worker := 0; worker < cfg.WorkerCount; worker++ {
			if err := runSlice(ctx, PhaseSequential, cfg, worker, fn); err != nil {
				return err
			}
		}

		return nil
	})
}

// RunConcurrent starts one goroutine per worker, each covering a
// contiguous index range, and waits for all of them. A worker stops at
// its first failure while the others run to completion; all failures are
// then returned together as a *PhaseError.
func (r *Runner) RunConcurrent(
	ctx context.Context,
	cfg RunConfig,
	fn WorkloadFunc,
) (*Report, error) {
	if err := checkInputs(cfg, fn); err != nil {
		return nil, err
	}

	return r.measure(ctx, PhaseConcurrent, cfg, func() error {
		// Each worker writes only its own slot.
		failures := make([]error, cfg.WorkerCount)

		var wg sync.WaitGroup
		wg.Add(cfg.WorkerCount)

		for worker := 0; worker < cfg.WorkerCount; worker++ {
			go func(worker int) {
				defer wg.Done()
				failures[worker] = runSlice(ctx, PhaseConcurrent, cfg, worker, fn)
			}(worker)
		}

		wg.Wait()

		return collectFailures(PhaseConcurrent, failures)
	})
}

func (r *Runner) measure(
	ctx context.Context,
	phase Phase,
	cfg RunConfig,
	body func() error,
) (*Report, error) {
	logger := r.Logger.With(slog.String("phase", string(phase)))

	logger.DebugContext(ctx, "phase starting",
		slog.Int("iterations", cfg.IterationsPerWorker),
		slog.Int("workers", cfg.WorkerCount),
	)

	report := &Report{
		Phase:       phase,
		Invocations: cfg.TotalInvocations(),
	}

	snapshot := r.Snapshot
	if snapshot == nil {
		snapshot = MeasureResourceUsage
	}

	if r.TrackMemory {
		before := snapshot()
		report.MemoryBefore = &before
	}

	start := time.Now()
	err := body()
	elapsed := time.Since(start)

	if r.TrackMemory {
		after := snapshot()
		report.MemoryAfter = &after
	}

	if err != nil {
		logger.WarnContext(ctx, "phase failed",
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)

		return nil, err
	}

	report.ElapsedMillis = float64(elapsed.Nanoseconds()) / float64(time.Millisecond)

	logger.InfoContext(ctx, "phase finished",
		slog.Duration("elapsed", elapsed),
		slog.Int("invocations", report.Invocations),
	)

	return report, nil
}

func checkInputs(cfg RunConfig, fn WorkloadFunc) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if fn == nil {
		return errors.New("workload function is nil")
	}

	return nil
}

// runSlice runs worker's index range [worker*I, (worker+1)*I).
func runSlice(
	ctx context.Context,
	phase Phase,
	cfg RunConfig,
	worker int,
	fn WorkloadFunc,
) error {
	first := worker * cfg.IterationsPerWorker

	for i := 0; i < cfg.IterationsPerWorker; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s phase: worker %d: %w", phase, worker, err)
		}

		index := first + i
		if err := invoke(ctx, fn, index); err != nil {
			return &WorkloadError{
				Phase:  phase,
				Worker: worker,
				Index:  index,
				Err:    err,
			}
		}
	}

	return nil
}

func invoke(ctx context.Context, fn WorkloadFunc, index int) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrWorkloadPanic, rec)
		}
	}()

	return fn(ctx, index)
}

// collectFailures turns per-worker results into a single error. Workload
// failures are reported as a *PhaseError ordered by worker; if the only
// failures are cancellations, the first one is returned as is.
func collectFailures(phase Phase, results []error) error {
	var (
		failures  []*WorkloadError
		cancelled error
	)

	for _, err := range results {
		if err == nil {
			continue
		}

		var wErr *WorkloadError
		if errors.As(err, &wErr) {
			failures = append(failures, wErr)

			continue
		}

		if cancelled == nil {
			cancelled = err
		}
	}

	if len(failures) > 0 {
		return &PhaseError{Phase: phase, Failures: failures}
	}

	return cancelled
}
