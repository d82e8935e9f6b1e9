// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

// Env file keys.
const (
	KeyParquet  = "CAP5_METEO_PARQUET"
	KeyCSV      = "CAP5_METEO_CSV"
	KeyOutDir   = "CAP5_XIV_OUTDIR"
	KeyManifest = "CAP5_SHA256SUMS"
	KeySettings = "CAP5_SETTINGS"
)

// Settings override keys read from the process environment only.
const (
	EnvLogLevel        = "CAP5_LOG_LEVEL"
	EnvSampleSize      = "CAP5_SAMPLE_SIZE"
	EnvSampleSeed      = "CAP5_SAMPLE_SEED"
	EnvMaxFigures      = "CAP5_MAX_FIGURES"
	EnvHistogramBins   = "CAP5_HISTOGRAM_BINS"
	EnvRangeQuantile   = "CAP5_RANGE_FLAG_QUANTILE"
	EnvTableFormat     = "CAP5_TABLE_FORMAT"
	EnvFigureFormat    = "CAP5_FIGURE_FORMAT"
	EnvStrictChecksums = "CAP5_STRICT_CHECKSUMS"
	EnvDateColumn      = "CAP5_DATE_COLUMN"
)

// Canonical locations used by the chapter 5 evidence tree.
const (
	DefaultEnvFile      = "configs/cap5_paths.env"
	DefaultDataDir      = "dados/capitulo_5/meteorologia"
	DefaultParquet      = DefaultDataDir + "/meteo_bruta_PVH_2017_full.parquet"
	DefaultCSV          = DefaultDataDir + "/meteo_bruta_PVH_2017_full.csv"
	DefaultManifestName = "SHA256SUMS.txt"
	DefaultOutDir       = "resultados/capitulo_5/xiv"
)

// Paths holds the resolved filesystem locations of one run.
type Paths struct {
	EnvFile      string `json:"env_file" yaml:"env_file"`
	RepoRoot     string `json:"repo_root" yaml:"repo_root"`
	Parquet      string `json:"parquet" yaml:"parquet"`
	CSV          string `json:"csv" yaml:"csv"`
	Manifest     string `json:"manifest" yaml:"manifest"`
	OutDir       string `json:"outdir" yaml:"outdir"`
	SettingsFile string `json:"settings_file,omitempty" yaml:"settings_file,omitempty"`
}

// Settings are the analysis knobs. Zero values are replaced by defaults.
type Settings struct {
	Quantiles         []float64 `json:"quantiles" yaml:"quantiles" toml:"quantiles"`
	SampleSize        int       `json:"sample_size" yaml:"sample_size" toml:"sample_size"`
	SampleSeed        uint64    `json:"sample_seed" yaml:"sample_seed" toml:"sample_seed"`
	MaxFigures        int       `json:"max_figures" yaml:"max_figures" toml:"max_figures"`
	HistogramBins     int       `json:"histogram_bins" yaml:"histogram_bins" toml:"histogram_bins"`
	RangeFlagQuantile float64   `json:"range_flag_quantile" yaml:"range_flag_quantile" toml:"range_flag_quantile"`
	DateColumn        string    `json:"date_column" yaml:"date_column" toml:"date_column"`
	TableFormat       string    `json:"table_format" yaml:"table_format" toml:"table_format"`
	FigureFormat      string    `json:"figure_format" yaml:"figure_format" toml:"figure_format"`
	StrictChecksums   bool      `json:"strict_checksums" yaml:"strict_checksums" toml:"strict_checksums"`
	LogLevel          string    `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// AppConfig is the fully resolved configuration of a run.
type AppConfig struct {
	Paths    Paths    `json:"paths"`
	Settings Settings `json:"settings"`
	Version  string   `json:"version"`
}

// DefaultSettings are the item xiv analysis parameters.
func DefaultSettings() Settings {
	return Settings{
		Quantiles:         []float64{0.01, 0.05, 0.95, 0.99},
		SampleSize:        200_000,
		SampleSeed:        42,
		MaxFigures:        4,
		HistogramBins:     50,
		RangeFlagQuantile: 0.95,
		DateColumn:        "date_time",
		TableFormat:       "csv",
		FigureFormat:      "png",
		StrictChecksums:   true,
		LogLevel:          "info",
	}
}
