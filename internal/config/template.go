// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// WriteTemplate writes the default paths env file. Existing files are kept
// unless overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return renameio.WriteFile(path, []byte(envTemplate), 0o644)
}

const envTemplate = `# Chapter 5 meteorological dataset paths.
# Relative paths resolve against the repository root (parent of configs/).
CAP5_METEO_PARQUET=` + DefaultParquet + `
CAP5_METEO_CSV=` + DefaultCSV + `
CAP5_SHA256SUMS=` + DefaultDataDir + `/` + DefaultManifestName + `
CAP5_XIV_OUTDIR=` + DefaultOutDir + `
# CAP5_SETTINGS=configs/cap5_settings.yaml
`
