// Package workload provides the built-in synthetic workloads exercised by
// the harness. Each workload burns CPU, memory or I/O for a given index and
// has no meaningful result.
package workload

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/weiihann/parbench/harness"
)

// Config controls the size of the built-in workloads. Zero values are
// replaced with defaults.
type Config struct {
	MathTerms   int      `json:"math_terms" yaml:"math_terms"`
	MatrixSize  int      `json:"matrix_size" yaml:"matrix_size"`
	JSONEntries int      `json:"json_entries" yaml:"json_entries"`
	TextLines   int      `json:"text_lines" yaml:"text_lines"`
	Dir         string   `json:"dir,omitempty" yaml:"dir"`
	Command     []string `json:"command,omitempty" yaml:"command"`
}

const (
	defaultMathTerms   = 100
	defaultMatrixSize  = 100
	defaultJSONEntries = 30
	defaultTextLines   = 500
)

func (c Config) withDefaults() Config {
	if c.MathTerms <= 0 {
		c.MathTerms = defaultMathTerms
	}
	if c.MatrixSize <= 0 {
		c.MatrixSize = defaultMatrixSize
	}
	if c.JSONEntries <= 0 {
		c.JSONEntries = defaultJSONEntries
	}
	if c.TextLines <= 0 {
		c.TextLines = defaultTextLines
	}
	if c.Dir == "" {
		c.Dir = os.TempDir()
	}

	return c
}

type factory func(cfg Config) (harness.WorkloadFunc, error)

var catalog = map[string]factory{
	"noop":   func(Config) (harness.WorkloadFunc, error) { return noop, nil },
	"math":   pure(mathWork),
	"matrix": pure(func(cfg Config, _ int) { Multiply(cfg.MatrixSize) }),
	"text":   pure(func(cfg Config, index int) { Text(index, cfg.TextLines) }),
	"json":   newJSON,
	"file":   newFile,
	"mixed":  newMixed,
	"exec":   newExec,
}

// Names returns the built-in workload names in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// New returns the named workload configured by cfg.
func New(name string, cfg Config) (harness.WorkloadFunc, error) {
	build, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown workload %q (known: %s)",
			name, strings.Join(Names(), ", "))
	}

	fn, err := build(cfg.withDefaults())
	if err != nil {
		return nil, fmt.Errorf("workload %s: %w", name, err)
	}

	return fn, nil
}

func noop(context.Context, int) error {
	return nil
}

// pure adapts a side-effect-free computation that cannot fail.
func pure(work func(cfg Config, index int)) factory {
	return func(cfg Config) (harness.WorkloadFunc, error) {
		return func(_ context.Context, index int) error {
			work(cfg, index)

			return nil
		}, nil
	}
}

func mathWork(cfg Config, _ int) {
	Trig(cfg.MathTerms)
	Series(cfg.MathTerms / 2)
}

func newMixed(cfg Config) (harness.WorkloadFunc, error) {
	if err := ensureDir(cfg.Dir); err != nil {
		return nil, err
	}

	return func(_ context.Context, index int) error {
		trig := Trig(cfg.MathTerms)
		product := Multiply(cfg.MatrixSize)
		series := Series(cfg.MathTerms / 2)

		doc := NewDocument(index, trig, series, product, cfg.JSONEntries)

		data, err := doc.RoundTrip()
		if err != nil {
			return err
		}

		return FileRoundTrip(cfg.Dir, index, data)
	}, nil
}
