// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/ManuGH/cap5check/internal/compare"
	"github.com/ManuGH/cap5check/internal/config"
	"github.com/ManuGH/cap5check/internal/report"
	"github.com/ManuGH/cap5check/internal/temporal"
)

// Artifact names of the auxiliary commands.
const (
	TableConfirmSchema = "confirmacao_schema"
	SummaryConfirm     = "confirmacao_resumo"
	EvidenceSort       = "ordenacao_temporal"
	EvidencePersist    = "persistencia_mestre"
)

// ConfirmResult is the outcome of Confirm with its artifact paths.
type ConfirmResult struct {
	compare.Result
	SchemaPath  string `json:"schema_path"`
	SummaryPath string `json:"summary_path"`
}

// Confirm checks that the CSV and Parquet inputs are the same artifact and
// writes the schema comparison and the text summary.
func (r *Runner) Confirm(ctx context.Context) (*ConfirmResult, error) {
	ctx, rn, err := r.begin(ctx, CommandConfirm)
	if err != nil {
		return nil, err
	}
	res, err := r.confirm(ctx, rn)
	r.finish(ctx, rn, err)
	return res, err
}

func (r *Runner) confirm(ctx context.Context, rn *run) (*ConfirmResult, error) {
	paths := r.cfg.Paths
	if paths.CSV == "" {
		return nil, fmt.Errorf("%w: %s", config.ErrMissingKey, config.KeyCSV)
	}

	var cmp compare.Result
	err := rn.stage("compare", func() error {
		var err error
		cmp, err = compare.Confirm(ctx, paths.CSV, paths.Parquet)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := &ConfirmResult{Result: cmp}
	rn.row.Rows, rn.row.Columns = cmp.ParquetShape.Rows, cmp.ParquetShape.Columns
	rn.row.InputSHA256 = cmp.Parquet.SHA256
	rn.metrics.Rows.Set(float64(cmp.ParquetShape.Rows))
	rn.metrics.Columns.Set(float64(cmp.ParquetShape.Columns))

	err = rn.stage("write", func() error {
		header, body := compare.SchemaTable(cmp.Schema)
		path, err := rn.out.Table(ctx, TableConfirmSchema, header, body)
		if err != nil {
			return err
		}
		out.SchemaPath = path
		rn.artifact("table")

		var buf bytes.Buffer
		if err := compare.WriteSummary(&buf, cmp, rn.started, path); err != nil {
			return err
		}
		out.SummaryPath = rn.layout.Summary(SummaryConfirm, rn.id)
		if err := report.WriteText(ctx, out.SummaryPath, buf.String()); err != nil {
			return err
		}
		rn.artifact("text")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DefaultSortOutput is where Sort writes when no output is given: the first
// master candidate next to the raw Parquet file.
func DefaultSortOutput(cfg config.AppConfig) string {
	return temporal.DefaultCandidates(filepath.Dir(cfg.Paths.Parquet))[0]
}

// DefaultMasterOutput is the persisted master dataset path.
func DefaultMasterOutput(cfg config.AppConfig) string {
	return filepath.Join(filepath.Dir(cfg.Paths.Parquet), temporal.MasterName)
}

// Sort orders in by the configured date column and writes out. Empty
// arguments fall back to the configured Parquet input and DefaultSortOutput.
func (r *Runner) Sort(ctx context.Context, in, out string) (*temporal.Result, error) {
	if in == "" {
		in = r.cfg.Paths.Parquet
	}
	if out == "" {
		out = DefaultSortOutput(r.cfg)
	}
	return r.temporalCommand(ctx, CommandSort, EvidenceSort, func(ctx context.Context) (temporal.Result, error) {
		return temporal.SortFile(ctx, in, out, r.cfg.Settings.DateColumn)
	})
}

// Persist writes the master dataset from the first existing candidate.
// Empty arguments fall back to the default candidates and
// DefaultMasterOutput.
func (r *Runner) Persist(ctx context.Context, candidates []string, out string) (*temporal.Result, error) {
	if len(candidates) == 0 {
		candidates = temporal.DefaultCandidates(filepath.Dir(r.cfg.Paths.Parquet))
	}
	if out == "" {
		out = DefaultMasterOutput(r.cfg)
	}
	return r.temporalCommand(ctx, CommandPersist, EvidencePersist, func(ctx context.Context) (temporal.Result, error) {
		return temporal.Persist(ctx, candidates, out, r.cfg.Settings.DateColumn)
	})
}

func (r *Runner) temporalCommand(ctx context.Context, command, evidence string, fn func(context.Context) (temporal.Result, error)) (*temporal.Result, error) {
	ctx, rn, err := r.begin(ctx, command)
	if err != nil {
		return nil, err
	}

	var res temporal.Result
	err = rn.stage(command, func() error {
		var err error
		res, err = fn(ctx)
		return err
	})
	if err == nil {
		rn.row.Rows, rn.row.Columns = res.Rows, res.Columns
		rn.row.Duplicates = res.After.DuplicateTimestamps
		rn.metrics.Rows.Set(float64(res.Rows))
		rn.metrics.Columns.Set(float64(res.Columns))
		rn.artifact("parquet")
		if _, werr := rn.out.JSON(ctx, evidence, res); werr != nil {
			err = werr
		} else {
			rn.artifact("json")
		}
	}
	r.finish(ctx, rn, err)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
