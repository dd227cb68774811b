package workload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/weiihann/parbench/harness"
)

// IndexEnv is the environment variable carrying the global index to exec
// workloads.
const IndexEnv = "PARBENCH_INDEX"

func newExec(cfg Config) (harness.WorkloadFunc, error) {
	if len(cfg.Command) == 0 || strings.TrimSpace(cfg.Command[0]) == "" {
		return nil, errors.New("exec workload requires a command")
	}

	binary, err := exec.LookPath(cfg.Command[0])
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", cfg.Command[0], err)
	}

	args := cfg.Command[1:]

	return func(ctx context.Context, index int) error {
		cmd := exec.CommandContext(ctx, binary, args...)
		cmd.Dir = cfg.Dir
		cmd.Env = append(os.Environ(), IndexEnv+"="+strconv.Itoa(index))

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s failed: %w\nstderr: %s",
				cfg.Command[0], err, strings.TrimSpace(stderr.String()))
		}

		return nil
	}, nil
}
