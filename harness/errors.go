package harness

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned when a RunConfig has a non-positive
// iteration or worker count.
var ErrInvalidConfig = errors.New("invalid run config")

// ErrWorkloadPanic wraps a panic raised inside a workload invocation.
var ErrWorkloadPanic = errors.New("workload panicked")

// WorkloadError records a single failed workload invocation.
type WorkloadError struct {
	Phase  Phase
	Worker int
	Index  int
	Err    error
}

func (e *WorkloadError) Error() string {
	return fmt.Sprintf("%s phase: worker %d: index %d: %v",
		e.Phase, e.Worker, e.Index, e.Err)
}

func (e *WorkloadError) Unwrap() error {
	return e.Err
}

// PhaseError aggregates the failures of a concurrent phase. Failures are
// ordered by worker.
type PhaseError struct {
	Phase    Phase
	Failures []*WorkloadError
}

func (e *PhaseError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s phase: %d worker(s) failed", e.Phase, len(e.Failures))

	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n  worker %d: index %d: %v", f.Worker, f.Index, f.Err)
	}

	return b.String()
}

func (e *PhaseError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}

	return errs
}
