// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package pipeline orchestrates the commands of the tool: the item xiv
// validation run, the CSV/Parquet confirmation, temporal ordering and master
// persistence. Every command gets a run id, a log file and a ledger row.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/cap5check/internal/config"
	"github.com/ManuGH/cap5check/internal/envinfo"
	"github.com/ManuGH/cap5check/internal/layout"
	"github.com/ManuGH/cap5check/internal/ledger"
	caplog "github.com/ManuGH/cap5check/internal/log"
	"github.com/ManuGH/cap5check/internal/metrics"
	"github.com/ManuGH/cap5check/internal/report"
)

// Command names recorded in the ledger.
const (
	CommandValidate = "validate"
	CommandConfirm  = "confirm"
	CommandSort     = "sort"
	CommandPersist  = "persist"
)

// Options are the process level dependencies of a Runner.
type Options struct {
	// Console receives human readable logs; defaults to stderr.
	Console io.Writer
	// Git runs git for the environment snapshot.
	Git envinfo.CommandRunner
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Runner executes commands against one resolved configuration.
type Runner struct {
	cfg  config.AppConfig
	opts Options
}

// New returns a Runner.
func New(cfg config.AppConfig, opts Options) *Runner {
	if opts.Console == nil {
		opts.Console = os.Stderr
	}
	if opts.Git == nil {
		opts.Git = envinfo.NewRealRunner()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{cfg: cfg, opts: opts}
}

// Config returns the configuration the runner was built with.
func (r *Runner) Config() config.AppConfig { return r.cfg }

// run is the per-command state shared by every stage.
type run struct {
	command string
	id      string
	uuid    string
	started time.Time

	layout  layout.Layout
	out     *report.Writer
	metrics *metrics.Run
	logPath string
	logFile *os.File
	logger  zerolog.Logger

	row ledger.Run
}

// begin creates the output layout, opens the run log and tags ctx with the
// run identifiers.
func (r *Runner) begin(ctx context.Context, command string) (context.Context, *run, error) {
	now := r.opts.Now()
	rn := &run{
		command: command,
		uuid:    uuid.NewString(),
		started: now,
		layout:  layout.New(r.cfg.Paths.OutDir),
		metrics: metrics.NewRun(),
	}
	if err := rn.layout.Ensure(); err != nil {
		return ctx, nil, fmt.Errorf("create output layout: %w", err)
	}
	id, f, err := rn.layout.OpenRunLog(now)
	if err != nil {
		return ctx, nil, err
	}
	rn.id = id
	rn.logPath = rn.layout.RunLog(id)
	rn.logFile = f
	rn.out = report.NewWriter(rn.layout, rn.id, r.cfg.Settings.TableFormat)
	caplog.Reconfigure(caplog.Config{
		Level:   r.cfg.Settings.LogLevel,
		Output:  caplog.Tee(r.opts.Console, f),
		Version: r.cfg.Version,
	})

	ctx = caplog.ContextWithRun(ctx, caplog.Run{ID: rn.id, UUID: rn.uuid, Command: command})
	rn.logger = caplog.WithComponentFromContext(ctx, "pipeline")
	rn.row = ledger.Run{
		RunID:     rn.id,
		RunUUID:   rn.uuid,
		Command:   command,
		StartedAt: now,
		Version:   r.cfg.Version,
	}

	rn.logger.Info().
		Str(caplog.FieldEvent, "run.start").
		Str(caplog.FieldOutDir, rn.layout.Root).
		Str(caplog.FieldPath, rn.logPath).
		Msg("run started")
	return ctx, rn, nil
}

// finish writes the metrics textfile, records the ledger row and restores
// the console-only logger. runErr is the outcome of the command.
func (r *Runner) finish(ctx context.Context, rn *run, runErr error) {
	end := r.opts.Now()
	rn.metrics.Finish(runErr == nil, end)

	rn.row.FinishedAt = end
	rn.row.Status = ledger.StatusOK
	if runErr != nil {
		rn.row.Status = ledger.StatusFailed
		rn.row.Error = runErr.Error()
	}

	metricsPath := rn.layout.RunMetrics(rn.id)
	if err := rn.metrics.WriteTextfile(metricsPath); err != nil {
		rn.logger.Warn().Err(err).Str(caplog.FieldPath, metricsPath).Msg("metrics textfile not written")
	}

	if err := r.record(ctx, rn); err != nil {
		rn.logger.Warn().Err(err).Msg("run not recorded in ledger")
	}

	ev := rn.logger.Info()
	if runErr != nil {
		ev = rn.logger.Error().Err(runErr)
	}
	ev.Str(caplog.FieldEvent, "run.end").
		Dur("elapsed", end.Sub(rn.started)).
		Str("status", rn.row.Status).
		Msg("run finished")

	caplog.Reconfigure(caplog.Config{
		Level:   r.cfg.Settings.LogLevel,
		Output:  caplog.Console(r.opts.Console),
		Version: r.cfg.Version,
	})
	_ = rn.logFile.Close()
}

func (r *Runner) record(ctx context.Context, rn *run) error {
	// a canceled run is still recorded
	ctx = context.WithoutCancel(ctx)
	l, err := ledger.Open(ctx, rn.layout.Ledger())
	if err != nil {
		return err
	}
	return errors.Join(l.Record(ctx, rn.row), l.Close())
}

// stage times fn and logs its outcome.
func (rn *run) stage(name string, fn func() error) error {
	stop := rn.metrics.Timer(name)
	err := fn()
	stop()
	if err != nil {
		rn.logger.Error().Err(err).Str(caplog.FieldStage, name).Msg("stage failed")
		return err
	}
	rn.logger.Debug().Str(caplog.FieldStage, name).Msg("stage done")
	return nil
}

// artifact counts a written file.
func (rn *run) artifact(kind string) {
	rn.metrics.Artifacts.WithLabelValues(kind).Inc()
}

func ptr[T any](v T) *T { return &v }
