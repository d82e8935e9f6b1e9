// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package temporal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ManuGH/cap5check/internal/dataset"
	"github.com/ManuGH/cap5check/internal/fsutil"
	caplog "github.com/ManuGH/cap5check/internal/log"
)

// ErrNoCandidate is returned when none of the candidate inputs exists.
var ErrNoCandidate = errors.New("no candidate input found")

// MasterName is the file name of the persisted master dataset.
const MasterName = "dataset_mestre_meteorologico.parquet"

// candidateNames are the outputs of the ordering step, most specific first.
var candidateNames = []string{
	"dataset_meteorologico_p1_5_ordenado.parquet",
	"dataset_meteorologico_p1_5.parquet",
	"dataset_meteorologico_ordenado.parquet",
	"dataset_p1_5_ordenado.parquet",
}

// DefaultCandidates returns the ordered candidate inputs inside dir.
func DefaultCandidates(dir string) []string {
	out := make([]string, len(candidateNames))
	for i, n := range candidateNames {
		out[i] = filepath.Join(dir, n)
	}
	return out
}

// SelectCandidate returns the first existing file. The error lists every
// path checked, in order.
func SelectCandidate(candidates []string) (string, error) {
	for _, c := range candidates {
		if fsutil.Exists(c) {
			return c, nil
		}
	}
	var b strings.Builder
	for _, c := range candidates {
		b.WriteString("\n- ")
		b.WriteString(c)
	}
	return "", fmt.Errorf("%w; checked in order:%s", ErrNoCandidate, b.String())
}

// Result reports one ordering run.
type Result struct {
	Input   string   `json:"input"`
	Output  string   `json:"output"`
	Column  string   `json:"date_column"`
	Rows    int      `json:"n_linhas"`
	Columns int      `json:"n_colunas"`
	Before  Evidence `json:"antes"`
	After   Evidence `json:"depois"`
}

// SortFile orders the Parquet file at in by dateColumn and writes the
// result to out with the original schema.
func SortFile(ctx context.Context, in, out, dateColumn string) (Result, error) {
	logger := caplog.WithComponentFromContext(ctx, "temporal")
	res := Result{Input: in, Output: out, Column: dateColumn}

	if err := fsutil.RequireFile(in); err != nil {
		return res, err
	}
	pf, err := dataset.OpenParquet(in)
	if err != nil {
		return res, err
	}
	res.Rows = pf.Table.NumRows()
	res.Columns = pf.Table.NumCols()

	col, err := pf.Table.Column(dateColumn)
	if err != nil {
		return res, err
	}
	times, err := ParseTimes(col)
	if err != nil {
		return res, err
	}
	res.Before = Describe(times)
	logger.Info().
		Str(caplog.FieldEvent, "temporal.before").
		Str(caplog.FieldPath, in).
		Int(caplog.FieldRows, res.Rows).
		Time("min", res.Before.Min).
		Time("max", res.Before.Max).
		Int("duplicates", res.Before.DuplicateTimestamps).
		Msg("timestamp evidence before ordering")

	order := Order(times)
	sorted := Apply(times, order)
	if err := CheckMonotonic(sorted); err != nil {
		return res, err
	}
	res.After = Describe(sorted)

	if err := ctx.Err(); err != nil {
		return res, err
	}
	err = fsutil.WriteAtomic(ctx, out, func(w io.Writer) error {
		return pf.WriteOrdered(w, order)
	})
	if err != nil {
		return res, err
	}
	logger.Info().
		Str(caplog.FieldEvent, "temporal.written").
		Str(caplog.FieldPath, out).
		Time("min", res.After.Min).
		Time("max", res.After.Max).
		Int("duplicates", res.After.DuplicateTimestamps).
		Msg("ordered series written")
	return res, nil
}

// Persist selects the first existing candidate, orders it and writes the
// master dataset to out.
func Persist(ctx context.Context, candidates []string, out, dateColumn string) (Result, error) {
	in, err := SelectCandidate(candidates)
	if err != nil {
		return Result{Output: out, Column: dateColumn}, err
	}
	logger := caplog.WithComponentFromContext(ctx, "temporal")
	logger.Info().
		Str(caplog.FieldEvent, "temporal.candidate").
		Str(caplog.FieldPath, in).
		Msg("master input selected")
	return SortFile(ctx, in, out, dateColumn)
}
