// Package harness runs a workload function under sequential and concurrent
// execution and measures elapsed time and memory usage for each phase.
package harness

// Phase identifies how a set of workload invocations was executed.
type Phase string

const (
	PhaseSequential Phase = "sequential"
	PhaseConcurrent Phase = "concurrent"
)

// Title returns the capitalized phase name used in human-readable output.
func (p Phase) Title() string {
	switch p {
	case PhaseSequential:
		return "Sequential"
	case PhaseConcurrent:
		return "Concurrent"
	default:
		return string(p)
	}
}

// Report holds the measurements of a single phase.
type Report struct {
	Phase         Phase           `json:"phase"`
	ElapsedMillis float64         `json:"elapsed_ms"`
	Invocations   int             `json:"invocations"`
	MemoryBefore  *MemorySnapshot `json:"memory_before,omitempty"`
	MemoryAfter   *MemorySnapshot `json:"memory_after,omitempty"`
}
