// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package pipeline

import (
	"context"
	"time"

	"github.com/ManuGH/cap5check/internal/checksum"
	"github.com/ManuGH/cap5check/internal/dataset"
	"github.com/ManuGH/cap5check/internal/envinfo"
	"github.com/ManuGH/cap5check/internal/fsutil"
	caplog "github.com/ManuGH/cap5check/internal/log"
	"github.com/ManuGH/cap5check/internal/profile"
	"github.com/ManuGH/cap5check/internal/report"
)

// Artifact names of the validation run.
const (
	TableSchemaNulls = "schema_nulos"
	TableDuplicates  = "duplicatas"
	TableDescribe    = "describe_numerico"
	TableQuantiles   = "quantis_numericos"
	TableRangeFlags  = "ranges_flags"
	TableChecksums   = "verificacao_sha256"
)

// Validate performs the structural and statistical validation of the
// Parquet input and writes the evidence tree. The metadata document is
// returned and written even when the run fails after the layout exists.
func (r *Runner) Validate(ctx context.Context) (*Metadata, error) {
	ctx, rn, err := r.begin(ctx, CommandValidate)
	if err != nil {
		return nil, err
	}
	md := &Metadata{
		RunID:        rn.id,
		RunUUID:      rn.uuid,
		Command:      CommandValidate,
		TimestampUTC: rn.started.UTC().Format(time.RFC3339),
		Paths:        r.cfg.Paths,
		Settings:     r.cfg.Settings,
		InputHashes:  map[string]*string{"parquet": nil, "csv": nil},
		LogFile:      rn.logPath,
	}

	err = r.validate(ctx, rn, md)
	r.writeMetadata(ctx, rn, md, err)
	r.finish(ctx, rn, err)
	return md, err
}

func (r *Runner) validate(ctx context.Context, rn *run, md *Metadata) error {
	paths := r.cfg.Paths
	s := r.cfg.Settings

	_ = rn.stage("environment", func() error {
		md.Environment = envinfo.Collect(ctx, r.opts.Git, paths.RepoRoot)
		return nil
	})

	err := rn.stage("hash", func() error {
		return r.hashInputs(ctx, md)
	})
	if err != nil {
		return err
	}
	if h := md.InputHashes["parquet"]; h != nil {
		rn.row.InputSHA256 = *h
	}

	err = rn.stage("checksums", func() error {
		return r.verifyManifest(ctx, rn, md)
	})
	if err != nil {
		return err
	}

	if err := fsutil.RequireFile(paths.Parquet); err != nil {
		rn.logger.Error().Err(err).Str(caplog.FieldPath, paths.Parquet).Msg("parquet input missing")
		return err
	}

	var tbl *dataset.Table
	err = rn.stage("load", func() error {
		start := time.Now()
		t, err := dataset.ReadParquetFile(paths.Parquet)
		if err != nil {
			return err
		}
		tbl = t
		md.LoadTimeSeconds = ptr(time.Since(start).Seconds())
		return nil
	})
	if err != nil {
		return err
	}

	basic := profile.BasicProfile(tbl)
	md.Profile = &basic
	rn.row.Rows, rn.row.Columns = basic.Rows, basic.Columns
	rn.metrics.Rows.Set(float64(basic.Rows))
	rn.metrics.Columns.Set(float64(basic.Columns))
	rn.metrics.MemoryBytes.Set(float64(basic.MemoryBytes))
	rn.logger.Info().
		Str(caplog.FieldEvent, "dataset.loaded").
		Int(caplog.FieldRows, basic.Rows).
		Int(caplog.FieldColumns, basic.Columns).
		Int64("memory_bytes", basic.MemoryBytes).
		Msg("parquet loaded")

	err = rn.stage("schema", func() error {
		rows := profile.Schema(tbl)
		nulls := 0
		for _, row := range rows {
			nulls += row.Nulls
		}
		rn.metrics.NullCells.Set(float64(nulls))
		header, body := profile.SchemaTable(rows)
		path, err := rn.out.Table(ctx, TableSchemaNulls, header, body)
		if err != nil {
			return err
		}
		md.Outputs.SchemaNulls = &path
		rn.artifact("table")
		return nil
	})
	if err != nil {
		return err
	}

	err = rn.stage("duplicates", func() error {
		d := profile.CountDuplicates(tbl)
		md.Duplicates = &d
		rn.row.Duplicates = d.Rows
		rn.metrics.DuplicateRows.Set(float64(d.Rows))
		path, err := rn.out.JSON(ctx, TableDuplicates, d)
		if err != nil {
			return err
		}
		md.Outputs.Duplicates = &path
		rn.artifact("json")
		return nil
	})
	if err != nil {
		return err
	}

	err = rn.stage("describe", func() error {
		d := profile.DescribeNumeric(tbl)
		if d.Empty() {
			rn.logger.Warn().Str(caplog.FieldStage, "describe").Msg("no numeric columns")
			return nil
		}
		header, body := d.Table()
		path, err := rn.out.Table(ctx, TableDescribe, header, body)
		if err != nil {
			return err
		}
		md.Outputs.Describe = &path
		rn.artifact("table")
		return nil
	})
	if err != nil {
		return err
	}

	err = rn.stage("quantiles", func() error {
		q := profile.NumericQuantiles(tbl, s.Quantiles)
		if q.Empty() {
			return nil
		}
		header, body := q.Table()
		path, err := rn.out.Table(ctx, TableQuantiles, header, body)
		if err != nil {
			return err
		}
		md.Outputs.Quantiles = &path
		rn.artifact("table")
		return nil
	})
	if err != nil {
		return err
	}

	err = rn.stage("ranges", func() error {
		rows := profile.RangeFlags(tbl, s.RangeFlagQuantile)
		if len(rows) == 0 {
			return nil
		}
		counts := map[string]int{"flag_invertido": 0, "flag_range_muito_alto": 0}
		for _, row := range rows {
			if row.Inverted {
				counts["flag_invertido"]++
			}
			if row.RangeTooHigh {
				counts["flag_range_muito_alto"]++
			}
		}
		md.RangeFlagCounts = counts
		for flag, n := range counts {
			rn.metrics.RangeFlags.WithLabelValues(flag).Set(float64(n))
		}
		header, body := profile.RangeTable(rows)
		path, err := rn.out.Table(ctx, TableRangeFlags, header, body)
		if err != nil {
			return err
		}
		md.Outputs.RangeFlags = &path
		rn.artifact("table")
		return nil
	})
	if err != nil {
		return err
	}

	return rn.stage("figures", func() error {
		sample := profile.Sample(tbl, s.SampleSize, s.SampleSeed)
		opts := report.FigureOptions{MaxColumns: s.MaxFigures, Bins: s.HistogramBins, Format: s.FigureFormat}
		figs, err := report.RenderFigures(ctx, rn.layout, sample, opts)
		if err != nil {
			return err
		}
		md.Outputs.Histograms = figs.Histograms
		if figs.Boxplot != "" {
			md.Outputs.Boxplot = &figs.Boxplot
		}

		wanted := min(len(sample.NumericColumns()), s.MaxFigures)
		if wanted > 0 {
			wanted++ // boxplot
		}
		written := len(figs.Histograms)
		if figs.Boxplot != "" {
			written++
		}
		rn.metrics.Artifacts.WithLabelValues("figure").Add(float64(written))
		rn.metrics.FigureFailures.Add(float64(wanted - written))
		return nil
	})
}

// hashInputs hashes the existing inputs concurrently. Absent inputs keep a
// null hash.
func (r *Runner) hashInputs(ctx context.Context, md *Metadata) error {
	keys := []string{"parquet", "csv"}
	paths := []string{r.cfg.Paths.Parquet, r.cfg.Paths.CSV}

	var present []string
	var presentKeys []string
	for i, p := range paths {
		if p != "" && fsutil.Exists(p) {
			present = append(present, p)
			presentKeys = append(presentKeys, keys[i])
		}
	}
	sums, err := checksum.HashAll(ctx, present)
	if err != nil {
		return err
	}
	for i, k := range presentKeys {
		md.InputHashes[k] = ptr(sums[i])
	}
	return nil
}

// verifyManifest checks the inputs against the manifest, reusing the sums
// from hashInputs. Failures abort the run when strict checksums are enabled
// and are logged otherwise.
func (r *Runner) verifyManifest(ctx context.Context, rn *run, md *Metadata) error {
	paths := r.cfg.Paths
	known := make(map[string]string, 2)
	for key, path := range map[string]string{"parquet": paths.Parquet, "csv": paths.CSV} {
		if h := md.InputHashes[key]; h != nil {
			known[path] = *h
		}
	}
	rep, err := checksum.VerifyKnown(ctx, paths.Manifest, known, paths.Parquet, paths.CSV)
	if err != nil {
		return err
	}
	md.Checksums = &rep

	logger := rn.logger.With().Str(caplog.FieldManifest, paths.Manifest).Logger()
	if !rep.Present {
		logger.Warn().Str(caplog.FieldEvent, "checksums.absent").Msg("checksum manifest not found, inputs unverified")
		return nil
	}

	for status, n := range rep.Counts() {
		rn.metrics.ChecksumResults.WithLabelValues(string(status)).Set(float64(n))
	}
	header := []string{"arquivo", "status", "sha256_esperado", "sha256_calculado", "detalhe"}
	body := make([][]string, len(rep.Results))
	for i, res := range rep.Results {
		body[i] = []string{res.Name, string(res.Status), res.Expected, res.Actual, res.Detail}
	}
	path, err := rn.out.Table(ctx, TableChecksums, header, body)
	if err != nil {
		return err
	}
	md.Outputs.Checksums = &path
	rn.artifact("table")

	if err := rep.Err(); err != nil {
		if r.cfg.Settings.StrictChecksums {
			return err
		}
		logger.Warn().Err(err).Str(caplog.FieldEvent, "checksums.mismatch").Msg("continuing with unverified inputs")
		return nil
	}
	logger.Info().Str(caplog.FieldEvent, "checksums.ok").Int("entries", len(rep.Results)).Msg("checksums verified")
	return nil
}

// writeMetadata writes metadata/run_<id>.json with the run outcome.
func (r *Runner) writeMetadata(ctx context.Context, rn *run, md *Metadata, runErr error) {
	md.Status = "ok"
	if runErr != nil {
		md.Status = "failed"
		md.Error = ptr(runErr.Error())
	}
	md.Outputs.Metrics = ptr(rn.layout.RunMetrics(rn.id))

	path := rn.layout.RunMetadata(rn.id)
	wctx := context.WithoutCancel(ctx)
	if err := report.WriteJSON(wctx, path, md); err != nil {
		rn.logger.Error().Err(err).Str(caplog.FieldPath, path).Msg("metadata not written")
		return
	}
	rn.row.MetadataPath = path
	rn.artifact("metadata")
	rn.logger.Info().Str(caplog.FieldEvent, "metadata.written").Str(caplog.FieldPath, path).Msg("run metadata written")
}
