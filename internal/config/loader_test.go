// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRepo lays out <root>/configs/cap5_paths.env and returns its path.
func writeRepo(t *testing.T, content string) (root, envFile string) {
	t.Helper()
	root = t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "configs"), 0o750))
	envFile = filepath.Join(root, "configs", "cap5_paths.env")
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
	return root, envFile
}

func TestParseEnv_SkipsCommentsAndBareLines(t *testing.T) {
	env, err := ParseEnv("# comment\n\nCAP5_A = one \nnot a pair\nCAP5_B=\"two words\"\n")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"CAP5_A": "one",
		"CAP5_B": "two words",
	}, env)
}

func TestReadEnvFile_Missing(t *testing.T) {
	_, err := ReadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEnvFileNotFound)
}

func TestRepoRootFor(t *testing.T) {
	root, envFile := writeRepo(t, "")
	assert.Equal(t, root, RepoRootFor(envFile))

	loose := filepath.Join(root, "elsewhere", "x.env")
	assert.Equal(t, filepath.Join(root, "elsewhere"), RepoRootFor(loose))
}

func TestLoad_ResolvesRelativePathsAgainstRepoRoot(t *testing.T) {
	root, envFile := writeRepo(t, ""+
		"CAP5_METEO_PARQUET="+DefaultParquet+"\n"+
		"CAP5_METEO_CSV="+DefaultCSV+"\n"+
		"CAP5_XIV_OUTDIR=out\n")

	cfg, err := NewLoader(envFile, "test").Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, DefaultParquet), cfg.Paths.Parquet)
	assert.Equal(t, filepath.Join(root, DefaultCSV), cfg.Paths.CSV)
	assert.Equal(t, filepath.Join(root, "out"), cfg.Paths.OutDir)
	assert.Equal(t, filepath.Join(root, DefaultDataDir, DefaultManifestName), cfg.Paths.Manifest)
	assert.Equal(t, root, cfg.Paths.RepoRoot)
	assert.Equal(t, "test", cfg.Version)
	assert.Equal(t, DefaultSettings(), cfg.Settings)
}

func TestLoad_ProcessEnvWins(t *testing.T) {
	_, envFile := writeRepo(t, "CAP5_METEO_PARQUET=a.parquet\nCAP5_XIV_OUTDIR=out\n")
	abs := filepath.Join(t.TempDir(), "override.parquet")
	t.Setenv(KeyParquet, abs)
	t.Setenv(EnvSampleSize, "10")
	t.Setenv(EnvStrictChecksums, "no")

	loader := NewLoader(envFile, "test")
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, abs, cfg.Paths.Parquet)
	assert.Equal(t, 10, cfg.Settings.SampleSize)
	assert.False(t, cfg.Settings.StrictChecksums)
	assert.Contains(t, loader.ConsumedEnvKeys, KeyParquet)
}

func TestLoad_ReportsUnconsumedKeys(t *testing.T) {
	_, envFile := writeRepo(t, "CAP5_METEO_PARQUET=a.parquet\nCAP5_XIV_OUTDIR=out\nCAP5_METEO_CVS=typo.csv\n")
	t.Setenv("CAP5_SAMPLE_SIZ", "10")
	t.Setenv(EnvSampleSize, "20")

	loader := NewLoader(envFile, "test")
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Settings.SampleSize)
	assert.Contains(t, loader.UnknownEnvKeys, "CAP5_SAMPLE_SIZ")
	assert.Contains(t, loader.UnknownEnvKeys, "CAP5_METEO_CVS")
	assert.NotContains(t, loader.UnknownEnvKeys, EnvSampleSize)
	assert.NotContains(t, loader.UnknownEnvKeys, KeyParquet)
}

func TestLoad_MissingRequiredKey(t *testing.T) {
	_, envFile := writeRepo(t, "CAP5_XIV_OUTDIR=out\n")

	_, err := NewLoader(envFile, "test").Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.Contains(t, err.Error(), KeyParquet)
}

func TestLoad_SettingsYAML(t *testing.T) {
	settings, err := filepath.Abs("testdata/settings.yaml")
	require.NoError(t, err)
	_, envFile := writeRepo(t, "CAP5_METEO_PARQUET=a.parquet\nCAP5_XIV_OUTDIR=out\nCAP5_SETTINGS="+settings+"\n")

	cfg, err := NewLoader(envFile, "test").Load()
	require.NoError(t, err)

	assert.Equal(t, []float64{0.1, 0.5, 0.9}, cfg.Settings.Quantiles)
	assert.Equal(t, 1000, cfg.Settings.SampleSize)
	assert.Equal(t, 20, cfg.Settings.HistogramBins)
	assert.Equal(t, "tsv", cfg.Settings.TableFormat)
	assert.Equal(t, "svg", cfg.Settings.FigureFormat)
	// untouched keys keep their defaults
	assert.Equal(t, 4, cfg.Settings.MaxFigures)
	assert.True(t, cfg.Settings.StrictChecksums)
}

func TestLoadSettings_TOML(t *testing.T) {
	s, err := LoadSettings("testdata/settings.toml", DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, []float64{0.25, 0.75}, s.Quantiles)
	assert.Equal(t, 2, s.MaxFigures)
	assert.Equal(t, "data_hora", s.DateColumn)
	assert.False(t, s.StrictChecksums)
}

func TestLoadSettings_UnknownKeys(t *testing.T) {
	for _, path := range []string{"testdata/invalid-unknown-key.yaml", "testdata/invalid-unknown-key.toml"} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			_, err := LoadSettings(path, DefaultSettings())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnknownConfigField)
		})
	}
}

func TestLoadSettings_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := LoadSettings(path, DefaultSettings())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported settings format")
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := AppConfig{
		Paths: Paths{Parquet: "x.parquet", OutDir: t.TempDir()},
		Settings: Settings{
			Quantiles:         []float64{1.5},
			SampleSize:        0,
			HistogramBins:     50,
			RangeFlagQuantile: 0.95,
			DateColumn:        "date_time",
			TableFormat:       "xlsx",
			FigureFormat:      "png",
			LogLevel:          "info",
		},
	}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantiles[0]")
	assert.Contains(t, err.Error(), "sample_size")
	assert.Contains(t, err.Error(), "table_format")
}

func TestWriteTemplate_NoOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "cap5_paths.env")

	require.NoError(t, WriteTemplate(path, false))
	err := WriteTemplate(path, false)
	assert.ErrorIs(t, err, ErrConfigExists)
	require.NoError(t, WriteTemplate(path, true))

	env, err := ReadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultParquet, env[KeyParquet])
	assert.Equal(t, DefaultOutDir, env[KeyOutDir])
	_, hasSettings := env[KeySettings]
	assert.False(t, hasSettings, "commented keys must not be parsed")
}

func TestParseEnvValues_FallBackOnGarbage(t *testing.T) {
	t.Setenv(EnvRangeQuantile, "0.9")
	t.Setenv(EnvSampleSeed, "-1")
	t.Setenv(EnvStrictChecksums, "maybe")
	t.Setenv(EnvHistogramBins, " 30 ")

	assert.InDelta(t, 0.9, ParseFloat(EnvRangeQuantile, 0.95), 1e-12)
	assert.Equal(t, uint64(42), ParseUint64(EnvSampleSeed, 42))
	assert.True(t, ParseBool(EnvStrictChecksums, true))
	assert.Equal(t, 30, ParseInt(EnvHistogramBins, 50))
	assert.Equal(t, "fallback", ParseString("CAP5_UNSET_FOR_TEST", "fallback"))
}

func TestShippedConfigs(t *testing.T) {
	env, err := ReadEnvFile(filepath.Join("..", "..", DefaultEnvFile))
	require.NoError(t, err)
	assert.Equal(t, DefaultParquet, env[KeyParquet])
	assert.Equal(t, DefaultOutDir, env[KeyOutDir])
	assert.NotContains(t, env, KeySettings)

	raw, err := os.ReadFile(filepath.Join("..", "..", DefaultEnvFile))
	require.NoError(t, err)
	assert.Equal(t, envTemplate, string(raw), "init template and shipped env file drifted")

	s, err := LoadSettings(filepath.Join("..", "..", "configs", "cap5_settings.yaml"), Settings{})
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}
