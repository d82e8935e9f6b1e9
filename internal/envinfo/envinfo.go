// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package envinfo captures the execution environment recorded in the run
// metadata: Go runtime, platform, build and git state.
package envinfo

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	caplog "github.com/ManuGH/cap5check/internal/log"
	"github.com/ManuGH/cap5check/internal/version"
)

// gitTimeout bounds each git invocation.
const gitTimeout = 5 * time.Second

// CommandRunner executes commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RealRunner executes commands using os/exec.
type RealRunner struct{}

// NewRealRunner returns a RealRunner.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// Run executes name with args and returns stdout.
func (r *RealRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 -- fixed git invocations only
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

// Info is the environment snapshot.
type Info struct {
	GoVersion string            `json:"go"`
	Platform  string            `json:"platform"`
	Hostname  string            `json:"hostname,omitempty"`
	NumCPU    int               `json:"num_cpu"`
	Versions  map[string]string `json:"versions"`
	GitHead   *string           `json:"git_head"`
	GitBranch *string           `json:"git_branch"`
}

// tracked are the modules whose versions are worth recording.
var tracked = []string{
	"github.com/parquet-go/parquet-go",
	"gonum.org/v1/gonum",
	"gonum.org/v1/plot",
	"modernc.org/sqlite",
	"github.com/rs/zerolog",
}

// Collect gathers the snapshot. Git state is best effort: outside a
// repository or without git, the fields stay nil.
func Collect(ctx context.Context, runner CommandRunner, repoRoot string) Info {
	info := Info{
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
		Versions: map[string]string{
			"cap5check": version.Version,
			"commit":    version.Commit,
			"build":     version.Date,
		},
	}
	if h, err := os.Hostname(); err == nil {
		info.Hostname = h
	}
	for k, v := range moduleVersions() {
		info.Versions[k] = v
	}

	info.GitHead = git(ctx, runner, repoRoot, "rev-parse", "HEAD")
	info.GitBranch = git(ctx, runner, repoRoot, "branch", "--show-current")
	return info
}

func git(ctx context.Context, runner CommandRunner, dir string, args ...string) *string {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	out, err := runner.Run(ctx, "git", append([]string{"-C", dir}, args...)...)
	if err != nil {
		logger := caplog.WithComponentFromContext(ctx, "envinfo")
		logger.Debug().
			Err(err).
			Strs("args", args).
			Msg("git unavailable")
		return nil
	}
	s := strings.TrimSpace(string(out))
	if s == "" {
		return nil
	}
	return &s
}

func moduleVersions() map[string]string {
	out := map[string]string{}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}
	for _, dep := range bi.Deps {
		for _, path := range tracked {
			if dep.Path == path {
				out[path] = dep.Version
			}
		}
	}
	return out
}
