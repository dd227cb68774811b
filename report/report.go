// Package report formats phase measurements as text, comparison tables or
// JSON.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/docker/go-units"
	"github.com/google/uuid"
	"github.com/weiihann/parbench/harness"
)

// Host describes the machine a run executed on.
type Host struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	CPUs       int    `json:"cpus"`
	GOMAXPROCS int    `json:"gomaxprocs"`
	GoVersion  string `json:"go_version"`
}

// Summary is the full record of one benchmark invocation.
type Summary struct {
	RunID       string            `json:"run_id"`
	Workload    string            `json:"workload"`
	GeneratedAt time.Time         `json:"generated_at"`
	Config      harness.RunConfig `json:"config"`
	Host        Host              `json:"host"`
	Phases      []harness.Report  `json:"phases"`
}

// NewSummary wraps phase reports with a fresh run ID and host details.
func NewSummary(workload string, cfg harness.RunConfig, phases []harness.Report) Summary {
	return Summary{
		RunID:       uuid.NewString(),
		Workload:    workload,
		GeneratedAt: time.Now().UTC(),
		Config:      cfg,
		Host:        CollectHost(),
		Phases:      phases,
	}
}

// CollectHost reads the current runtime environment.
func CollectHost() Host {
	return Host{
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		CPUs:       runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		GoVersion:  runtime.Version(),
	}
}

var errNoPhases = errors.New("no phases to report")

// WriteText writes the elapsed time of each phase and, when memory was
// tracked, a memory line for it.
func WriteText(w io.Writer, s Summary) error {
	if len(s.Phases) == 0 {
		return errNoPhases
	}

	for i, p := range s.Phases {
		if i > 0 {
			fmt.Fprintln(w)
		}

		fmt.Fprintf(w, "%s elapsed: %.2f ms\n", p.Phase.Title(), p.ElapsedMillis)

		if p.MemoryBefore != nil && p.MemoryAfter != nil {
			fmt.Fprintf(w, "%s memory: alloc %s -> %s, sys %s -> %s, gc cycles %d, gc pause %s\n",
				p.Phase.Title(),
				formatBytes(p.MemoryBefore.AllocBytes),
				formatBytes(p.MemoryAfter.AllocBytes),
				formatBytes(p.MemoryBefore.SysBytes),
				formatBytes(p.MemoryAfter.SysBytes),
				harness.GCDelta(p.MemoryBefore, p.MemoryAfter),
				formatPause(p.MemoryBefore, p.MemoryAfter),
			)
		}
	}

	if seq, conc, ok := phasePair(s.Phases); ok {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Speedup: %.2fx\n", Speedup(seq, conc))
	}

	return nil
}

// Generate writes a markdown comparison table for the summary.
func Generate(w io.Writer, s Summary) error {
	if len(s.Phases) == 0 {
		return errNoPhases
	}

	slowest := findSlowest(s.Phases)

	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Workload: **%s** | iterations/worker: %d | workers: %d | run: `%s`\n",
		s.Workload, s.Config.IterationsPerWorker, s.Config.WorkerCount, s.RunID)
	fmt.Fprintf(w, "Host: %s/%s, %d CPUs, GOMAXPROCS %d, %s\n",
		s.Host.OS, s.Host.Arch, s.Host.CPUs, s.Host.GOMAXPROCS, s.Host.GoVersion)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Phase | Calls | Elapsed | Alloc Before | Alloc After "+
		"| Sys After | GC Cycles | Speedup |")
	fmt.Fprintln(w, "|-------|-------|---------|--------------|-------------"+
		"|-----------|-----------|---------|")

	for _, p := range s.Phases {
		speedup := 1.0
		if slowest > 0 && p.ElapsedMillis > 0 {
			speedup = slowest / p.ElapsedMillis
		}

		before, after, sys, gc := "-", "-", "-", "-"
		if p.MemoryBefore != nil && p.MemoryAfter != nil {
			before = formatBytes(p.MemoryBefore.AllocBytes)
			after = formatBytes(p.MemoryAfter.AllocBytes)
			sys = formatBytes(p.MemoryAfter.SysBytes)
			gc = fmt.Sprintf("%d", harness.GCDelta(p.MemoryBefore, p.MemoryAfter))
		}

		fmt.Fprintf(w, "| %s | %d | %s | %s | %s | %s | %s | %.2fx |\n",
			p.Phase.Title(),
			p.Invocations,
			formatMs(p.ElapsedMillis),
			before,
			after,
			sys,
			gc,
			speedup,
		)
	}

	return nil
}

// GenerateJSON writes the summary as indented JSON to w.
func GenerateJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(s)
}

// Speedup returns how many times faster the concurrent phase ran than the
// sequential one. It is zero when either measurement is missing.
func Speedup(seq, conc harness.Report) float64 {
	if seq.ElapsedMillis <= 0 || conc.ElapsedMillis <= 0 {
		return 0
	}

	return seq.ElapsedMillis / conc.ElapsedMillis
}

func phasePair(phases []harness.Report) (harness.Report, harness.Report, bool) {
	var (
		seq, conc         harness.Report
		haveSeq, haveConc bool
	)

	for _, p := range phases {
		switch p.Phase {
		case harness.PhaseSequential:
			seq, haveSeq = p, true
		case harness.PhaseConcurrent:
			conc, haveConc = p, true
		}
	}

	return seq, conc, haveSeq && haveConc
}

func findSlowest(phases []harness.Report) float64 {
	slowest := 0.0
	for _, p := range phases {
		if p.ElapsedMillis > slowest {
			slowest = p.ElapsedMillis
		}
	}

	return slowest
}

func formatMs(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.2fms", ms)
	}

	return fmt.Sprintf("%.2fs", ms/1000)
}

func formatBytes(b uint64) string {
	return units.BytesSize(float64(b))
}

func formatPause(before, after *harness.MemorySnapshot) string {
	if after.PauseTotalNs < before.PauseTotalNs {
		return "0s"
	}

	return time.Duration(after.PauseTotalNs - before.PauseTotalNs).String()
}
