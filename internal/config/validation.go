// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "github.com/ManuGH/cap5check/internal/validate"

// Validate checks the resolved configuration and reports every problem at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.NotEmpty(KeyParquet, cfg.Paths.Parquet)
	v.OutputDir(KeyOutDir, cfg.Paths.OutDir)
	v.Distinct(KeyCSV, cfg.Paths.Parquet, cfg.Paths.CSV)

	s := cfg.Settings
	v.Probabilities("quantiles", s.Quantiles)
	v.Positive("sample_size", s.SampleSize)
	v.NonNegative("max_figures", s.MaxFigures)
	v.Between("histogram_bins", s.HistogramBins, 1, 10_000)
	v.Probability("range_flag_quantile", s.RangeFlagQuantile)
	v.NotEmpty("date_column", s.DateColumn)
	validate.OneOf(v, "table_format", s.TableFormat, "csv", "tsv")
	validate.OneOf(v, "figure_format", s.FigureFormat, "png", "svg")
	validate.OneOf(v, "log_level", validate.LogLevel(s.LogLevel), validate.LogLevels()...)

	return v.Err()
}
