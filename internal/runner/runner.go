// Package runner executes build pipelines through the shell.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/dsjohal14/buildq/internal/libs/jobs"
	"github.com/rs/zerolog"
)

// ShellRunner runs each pipeline step with `sh -c` in the work
// directory, capturing stdout and stderr separately. The whole run is
// bounded by a single timeout.
type ShellRunner struct {
	pipeline *Pipeline
	workDir  string
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewShellRunner creates a runner for the given pipeline.
func NewShellRunner(p *Pipeline, workDir string, timeout time.Duration, logger zerolog.Logger) *ShellRunner {
	return &ShellRunner{
		pipeline: p,
		workDir:  workDir,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run executes the pipeline for the branch. Steps run in order and the
// first failing step stops the build; its diagnostics are folded into
// the result's stderr. Run never returns an error: any failure is a
// failed Result.
func (r *ShellRunner) Run(ctx context.Context, branch string) jobs.Result {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr strings.Builder
	for _, step := range r.pipeline.Steps {
		name := step.Name
		if name == "" {
			name = step.Run
		}
		out, errOut, err := r.runStep(ctx, step, branch)
		if out != "" {
			fmt.Fprintf(&stdout, "== %s\n%s", name, out)
		} else {
			fmt.Fprintf(&stdout, "== %s\n", name)
		}
		if errOut != "" {
			stderr.WriteString(errOut)
		}
		if err != nil {
			r.logger.Warn().Str("step", name).Str("branch", branch).Err(err).Msg("build step failed")
			fmt.Fprintf(&stderr, "step %q failed: %v\n", name, err)
			return jobs.Result{Success: false, Stdout: stdout.String(), Stderr: stderr.String()}
		}
		r.logger.Debug().Str("step", name).Str("branch", branch).Msg("build step completed")
	}
	return jobs.Result{Success: true, Stdout: stdout.String(), Stderr: stderr.String()}
}

// runStep executes a single step and returns its captured output.
func (r *ShellRunner) runStep(ctx context.Context, step Step, branch string) (string, string, error) {
	started := time.Now()
	cmdline := strings.ReplaceAll(step.Run, "{branch}", branch)

	// Run the step in a shell (sh -c "cmd")
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
	cmd.Dir = r.workDir
	cmd.Env = append(os.Environ(), "BRANCH="+branch)

	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	err := cmd.Run()
	r.logger.Debug().
		Str("cmd", cmdline).
		Dur("elapsed", time.Since(started)).
		Msg("step executed")
	return out.String(), errOut.String(), err
}
