// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package pipeline

import (
	"github.com/ManuGH/cap5check/internal/checksum"
	"github.com/ManuGH/cap5check/internal/config"
	"github.com/ManuGH/cap5check/internal/envinfo"
	"github.com/ManuGH/cap5check/internal/profile"
)

// Metadata is metadata/run_<id>.json. Optional values that were not
// produced are encoded as null.
type Metadata struct {
	RunID        string          `json:"run_id"`
	RunUUID      string          `json:"run_uuid"`
	Command      string          `json:"command"`
	TimestampUTC string          `json:"timestamp_utc"`
	Status       string          `json:"status"`
	Error        *string         `json:"error"`
	Environment  envinfo.Info    `json:"environment"`
	Paths        config.Paths    `json:"paths"`
	Settings     config.Settings `json:"settings"`

	InputHashes map[string]*string `json:"input_hashes"`
	Checksums   *checksum.Report   `json:"checksums"`

	Profile         *profile.Basic      `json:"profile"`
	LoadTimeSeconds *float64            `json:"load_time_s"`
	Duplicates      *profile.Duplicates `json:"duplicates"`
	RangeFlagCounts map[string]int      `json:"range_flag_counts,omitempty"`

	Outputs Outputs `json:"outputs"`
	LogFile string  `json:"log_file"`
}

// Outputs lists the artifacts of a validation run.
type Outputs struct {
	SchemaNulls *string           `json:"schema_nulos"`
	Duplicates  *string           `json:"duplicatas"`
	Describe    *string           `json:"describe_numerico"`
	Quantiles   *string           `json:"quantis_numericos"`
	RangeFlags  *string           `json:"ranges_flags"`
	Checksums   *string           `json:"verificacao_sha256"`
	Histograms  map[string]string `json:"histogramas"`
	Boxplot     *string           `json:"boxplot"`
	Metrics     *string           `json:"metrics"`
}
