// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/cap5check/internal/checksum"
	"github.com/ManuGH/cap5check/internal/config"
	"github.com/ManuGH/cap5check/internal/dataset"
	"github.com/ManuGH/cap5check/internal/fsutil"
	"github.com/ManuGH/cap5check/internal/layout"
	"github.com/ManuGH/cap5check/internal/ledger"
	"github.com/ManuGH/cap5check/internal/temporal"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type meteoRow struct {
	DateTime    string  `parquet:"date_time"`
	Temperatura float64 `parquet:"temperatura"`
	Umidade     int64   `parquet:"umidade"`
	Estacao     string  `parquet:"estacao"`
}

type noGit struct{}

func (noGit) Run(context.Context, string, ...string) ([]byte, error) {
	return nil, errors.New("git: not a repository")
}

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)

// fixture builds a repository with inputs, a manifest and the env file.
type fixture struct {
	root    string
	envFile string
	parquet string
	csv     string
	sums    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		root:    root,
		envFile: filepath.Join(root, config.DefaultEnvFile),
		parquet: filepath.Join(root, config.DefaultParquet),
		csv:     filepath.Join(root, config.DefaultCSV),
		sums:    filepath.Join(root, config.DefaultDataDir, config.DefaultManifestName),
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(f.envFile), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Dir(f.parquet), 0o750))

	rows := make([]meteoRow, 0, 24)
	for h := 23; h >= 0; h-- {
		rows = append(rows, meteoRow{
			DateTime:    fmt.Sprintf("2017-01-01 %02d:00:00", h),
			Temperatura: 22 + float64(h)/4,
			Umidade:     int64(70 + h),
			Estacao:     "A925",
		})
	}
	rows = append(rows, rows[0]) // one duplicate row
	require.NoError(t, parquet.WriteFile(f.parquet, rows))

	pq, err := dataset.ReadParquetFile(f.parquet)
	require.NoError(t, err)
	var b strings.Builder
	b.WriteString(strings.Join(pq.Names(), ",") + "\n")
	for i := 0; i < pq.NumRows(); i++ {
		b.WriteString(strings.Join(pq.Row(i), ",") + "\n")
	}
	require.NoError(t, os.WriteFile(f.csv, []byte(b.String()), 0o600))

	_, err = checksum.WriteManifest(context.Background(), f.sums, []string{f.parquet, f.csv})
	require.NoError(t, err)

	env := "" +
		"# chapter 5\n" +
		config.KeyParquet + "=" + config.DefaultParquet + "\n" +
		config.KeyCSV + "=" + config.DefaultCSV + "\n" +
		config.KeyOutDir + "=" + config.DefaultOutDir + "\n"
	require.NoError(t, os.WriteFile(f.envFile, []byte(env), 0o600))
	return f
}

func (f fixture) runner(t *testing.T, mutate ...func(*config.AppConfig)) *Runner {
	t.Helper()
	cfg, err := config.NewLoader(f.envFile, "test").Load()
	require.NoError(t, err)
	cfg.Settings.LogLevel = "debug"
	for _, m := range mutate {
		m(&cfg)
	}
	return New(cfg, Options{Console: io.Discard, Git: noGit{}, Now: func() time.Time { return fixedNow }})
}

func (f fixture) layout() layout.Layout {
	return layout.New(filepath.Join(f.root, config.DefaultOutDir))
}

func listRuns(t *testing.T, l layout.Layout) []ledger.Run {
	t.Helper()
	lg, err := ledger.Open(context.Background(), l.Ledger())
	require.NoError(t, err)
	defer lg.Close()
	runs, err := lg.List(context.Background(), 0)
	require.NoError(t, err)
	return runs
}

func readMetadata(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var md map[string]any
	require.NoError(t, json.Unmarshal(data, &md))
	return md
}

func TestValidate_WritesEvidenceTree(t *testing.T) {
	f := newFixture(t)
	md, err := f.runner(t).Validate(context.Background())
	require.NoError(t, err)

	id := layout.NewRunID(fixedNow)
	assert.Equal(t, id, md.RunID)
	require.NotNil(t, md.Profile)
	assert.Equal(t, 25, md.Profile.Rows)
	assert.Equal(t, 4, md.Profile.Columns)
	require.NotNil(t, md.Duplicates)
	assert.Equal(t, 1, md.Duplicates.Rows)
	require.NotNil(t, md.InputHashes["parquet"])
	require.NotNil(t, md.Checksums)
	assert.True(t, md.Checksums.OK())

	l := f.layout()
	for _, name := range []string{TableSchemaNulls, TableDescribe, TableQuantiles, TableRangeFlags, TableChecksums} {
		assert.FileExists(t, l.Table(name, id, "csv"), name)
	}
	assert.FileExists(t, l.Table(TableDuplicates, id, "json"))
	assert.FileExists(t, l.Figure("hist_temperatura", "png"))
	assert.FileExists(t, l.Figure("hist_umidade", "png"))
	assert.FileExists(t, l.Figure("boxplot_primeiras_colunas", "png"))
	assert.FileExists(t, l.RunLog(id))
	assert.FileExists(t, l.RunMetrics(id))

	doc := readMetadata(t, l.RunMetadata(id))
	assert.Equal(t, "ok", doc["status"])
	assert.Nil(t, doc["error"])
	env := doc["environment"].(map[string]any)
	assert.Nil(t, env["git_head"], "no git repository means null")

	logData, err := os.ReadFile(l.RunLog(id))
	require.NoError(t, err)
	assert.Contains(t, string(logData), `"run_id":"`+id+`"`)
	assert.Contains(t, string(logData), `"event":"run.end"`)

	runs := listRuns(t, l)
	require.Len(t, runs, 1)
	assert.Equal(t, ledger.StatusOK, runs[0].Status)
	assert.Equal(t, 25, runs[0].Rows)
	assert.Equal(t, *md.InputHashes["parquet"], runs[0].InputSHA256)
}

func TestValidate_ChecksumMismatchStrict(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.csv, []byte("tampered\n"), 0o600))

	md, err := f.runner(t).Validate(context.Background())
	require.ErrorIs(t, err, checksum.ErrChecksumMismatch)
	assert.Nil(t, md.Profile, "profiling never starts")
	assert.Nil(t, md.Outputs.SchemaNulls)
	require.NotNil(t, md.Outputs.Checksums)

	l := f.layout()
	doc := readMetadata(t, l.RunMetadata(md.RunID))
	assert.Equal(t, "failed", doc["status"])
	assert.Nil(t, doc["outputs"].(map[string]any)["describe_numerico"])

	runs := listRuns(t, l)
	require.Len(t, runs, 1)
	assert.Equal(t, ledger.StatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "checksum mismatch")
}

func TestValidate_ChecksumMismatchLenient(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.csv, []byte("tampered\n"), 0o600))

	md, err := f.runner(t, func(c *config.AppConfig) { c.Settings.StrictChecksums = false }).Validate(context.Background())
	require.NoError(t, err)
	assert.False(t, md.Checksums.OK())
	assert.NotNil(t, md.Outputs.SchemaNulls)
}

func TestValidate_EscapingManifestEntryLenient(t *testing.T) {
	f := newFixture(t)
	data, err := os.ReadFile(f.sums)
	require.NoError(t, err)
	extra := strings.Repeat("0", 64) + "  ../../../etc/passwd\n"
	require.NoError(t, os.WriteFile(f.sums, append(data, extra...), 0o600))

	md, err := f.runner(t, func(c *config.AppConfig) { c.Settings.StrictChecksums = false }).Validate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, md.Checksums)
	assert.Equal(t, 1, md.Checksums.Counts()[checksum.StatusInvalid])
	assert.Equal(t, 2, md.Checksums.Counts()[checksum.StatusOK])
	assert.NotNil(t, md.Outputs.SchemaNulls)

	_, err = f.runner(t).Validate(context.Background())
	require.ErrorIs(t, err, checksum.ErrChecksumMismatch)
}

func TestValidate_SameSecondRunsKeepSeparateEvidence(t *testing.T) {
	f := newFixture(t)
	first, err := f.runner(t).Validate(context.Background())
	require.NoError(t, err)
	second, err := f.runner(t).Validate(context.Background())
	require.NoError(t, err)

	require.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.RunID+"_2", second.RunID)

	l := f.layout()
	for _, md := range []*Metadata{first, second} {
		doc := readMetadata(t, l.RunMetadata(md.RunID))
		assert.Equal(t, md.RunID, doc["run_id"])
		assert.FileExists(t, l.RunLog(md.RunID))
		assert.FileExists(t, l.Table(TableSchemaNulls, md.RunID, "csv"))
	}
	assert.Len(t, listRuns(t, l), 2)
}

func TestValidate_NoManifest(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.sums))

	md, err := f.runner(t).Validate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, md.Checksums)
	assert.False(t, md.Checksums.Present)
	assert.Nil(t, md.Outputs.Checksums)
}

func TestValidate_MissingParquet(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.sums))
	require.NoError(t, os.Remove(f.parquet))

	md, err := f.runner(t).Validate(context.Background())
	require.ErrorIs(t, err, fsutil.ErrInputNotFound)
	assert.Nil(t, md.InputHashes["parquet"])
	assert.NotNil(t, md.InputHashes["csv"])
}

func TestValidate_TSVAndNoFigures(t *testing.T) {
	f := newFixture(t)
	r := f.runner(t, func(c *config.AppConfig) {
		c.Settings.TableFormat = "tsv"
		c.Settings.MaxFigures = 0
	})
	md, err := r.Validate(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(*md.Outputs.SchemaNulls, ".tsv"))
	assert.Empty(t, md.Outputs.Histograms)
	assert.Nil(t, md.Outputs.Boxplot)
}

func TestConfirm(t *testing.T) {
	f := newFixture(t)
	res, err := f.runner(t).Confirm(context.Background())
	require.NoError(t, err)

	assert.True(t, res.SameShape)
	assert.True(t, res.SameColumns)
	assert.FileExists(t, res.SchemaPath)
	summary, err := os.ReadFile(res.SummaryPath)
	require.NoError(t, err)
	assert.Contains(t, string(summary), res.Parquet.SHA256)

	runs := listRuns(t, f.layout())
	require.Len(t, runs, 1)
	assert.Equal(t, CommandConfirm, runs[0].Command)
}

func TestConfirm_RequiresCSV(t *testing.T) {
	f := newFixture(t)
	r := f.runner(t, func(c *config.AppConfig) { c.Paths.CSV = "" })
	_, err := r.Confirm(context.Background())
	assert.ErrorIs(t, err, config.ErrMissingKey)
}

func TestSortThenPersist(t *testing.T) {
	f := newFixture(t)
	r := f.runner(t)
	ctx := context.Background()

	sorted, err := r.Sort(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultSortOutput(r.Config()), sorted.Output)
	assert.Equal(t, 1, sorted.Before.DuplicateTimestamps)

	master, err := r.Persist(ctx, nil, "")
	require.NoError(t, err)
	assert.Equal(t, sorted.Output, master.Input)
	assert.Equal(t, filepath.Join(filepath.Dir(f.parquet), temporal.MasterName), master.Output)

	tbl, err := dataset.ReadParquetFile(master.Output)
	require.NoError(t, err)
	dt, err := tbl.Column("date_time")
	require.NoError(t, err)
	assert.Equal(t, "2017-01-01 00:00:00", dt.Strs[0])
	assert.Equal(t, "2017-01-01 23:00:00", dt.Strs[len(dt.Strs)-1])

	runs := listRuns(t, f.layout())
	assert.Len(t, runs, 2)
}

func TestPersist_NoCandidate(t *testing.T) {
	f := newFixture(t)
	_, err := f.runner(t).Persist(context.Background(), nil, "")
	require.ErrorIs(t, err, temporal.ErrNoCandidate)

	runs := listRuns(t, f.layout())
	require.Len(t, runs, 1)
	assert.Equal(t, ledger.StatusFailed, runs[0].Status)
}
