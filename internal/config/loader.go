// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const envKeyPrefix = "CAP5_"

// Loader handles configuration loading with precedence
type Loader struct {
	envFile         string
	version         string
	ConsumedEnvKeys map[string]struct{}
	// UnknownEnvKeys lists CAP5_* keys seen in the process environment or
	// the env file that no lookup consumed, sorted. Set by Load.
	UnknownEnvKeys []string
}

// NewLoader creates a new configuration loader
func NewLoader(envFile, version string) *Loader {
	if strings.TrimSpace(envFile) == "" {
		envFile = DefaultEnvFile
	}
	return &Loader{
		envFile:         envFile,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envUint64(key string, defaultVal uint64) uint64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseUint64(key, defaultVal)
}

// Load loads configuration with precedence: ENV > env file > Defaults.
// Order: read env file -> resolve paths -> settings file -> env overrides -> validate.
func (l *Loader) Load() (AppConfig, error) {
	cfg := AppConfig{Settings: DefaultSettings(), Version: l.version}

	fileEnv, err := ReadEnvFile(l.envFile)
	if err != nil {
		return cfg, err
	}

	if abs, err := filepath.Abs(l.envFile); err == nil {
		cfg.Paths.EnvFile = abs
	} else {
		cfg.Paths.EnvFile = l.envFile
	}
	root := RepoRootFor(l.envFile)
	cfg.Paths.RepoRoot = root

	parquet := l.envString(KeyParquet, fileEnv[KeyParquet])
	if parquet == "" {
		return cfg, fmt.Errorf("%w: %s (in %s)", ErrMissingKey, KeyParquet, l.envFile)
	}
	outdir := l.envString(KeyOutDir, fileEnv[KeyOutDir])
	if outdir == "" {
		return cfg, fmt.Errorf("%w: %s (in %s)", ErrMissingKey, KeyOutDir, l.envFile)
	}

	cfg.Paths.Parquet = resolvePath(root, parquet)
	cfg.Paths.OutDir = resolvePath(root, outdir)
	cfg.Paths.CSV = resolvePath(root, l.envString(KeyCSV, fileEnv[KeyCSV]))
	cfg.Paths.Manifest = resolvePath(root, l.envString(KeyManifest, fileEnv[KeyManifest]))
	if cfg.Paths.Manifest == "" {
		cfg.Paths.Manifest = filepath.Join(filepath.Dir(cfg.Paths.Parquet), DefaultManifestName)
	}
	cfg.Paths.SettingsFile = resolvePath(root, l.envString(KeySettings, fileEnv[KeySettings]))

	if cfg.Paths.SettingsFile != "" {
		settings, err := LoadSettings(cfg.Paths.SettingsFile, cfg.Settings)
		if err != nil {
			return cfg, fmt.Errorf("load settings file: %w", err)
		}
		cfg.Settings = settings
	}

	l.mergeEnvSettings(&cfg.Settings)
	l.warnUnknownKeys(fileEnv)

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", l.envFile, err)
	}
	return cfg, nil
}

func (l *Loader) mergeEnvSettings(s *Settings) {
	s.LogLevel = strings.ToLower(l.envString(EnvLogLevel, s.LogLevel))
	s.SampleSize = l.envInt(EnvSampleSize, s.SampleSize)
	s.SampleSeed = l.envUint64(EnvSampleSeed, s.SampleSeed)
	s.MaxFigures = l.envInt(EnvMaxFigures, s.MaxFigures)
	s.HistogramBins = l.envInt(EnvHistogramBins, s.HistogramBins)
	s.RangeFlagQuantile = l.envFloat(EnvRangeQuantile, s.RangeFlagQuantile)
	s.TableFormat = strings.ToLower(l.envString(EnvTableFormat, s.TableFormat))
	s.FigureFormat = strings.ToLower(l.envString(EnvFigureFormat, s.FigureFormat))
	s.StrictChecksums = l.envBool(EnvStrictChecksums, s.StrictChecksums)
	s.DateColumn = l.envString(EnvDateColumn, s.DateColumn)
}

func (l *Loader) warnUnknownKeys(fileEnv map[string]string) {
	seen := make(map[string]struct{})
	check := func(key string) {
		if !strings.HasPrefix(key, envKeyPrefix) {
			return
		}
		if _, ok := l.ConsumedEnvKeys[key]; ok {
			return
		}
		seen[key] = struct{}{}
	}
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		check(key)
	}
	for key := range fileEnv {
		check(key)
	}

	l.UnknownEnvKeys = l.UnknownEnvKeys[:0]
	for key := range seen {
		l.UnknownEnvKeys = append(l.UnknownEnvKeys, key)
	}
	sort.Strings(l.UnknownEnvKeys)

	logger := configLogger()
	for _, key := range l.UnknownEnvKeys {
		_, inFile := fileEnv[key]
		logger.Warn().Str("key", key).Bool("in_env_file", inFile).Msg("unknown CAP5 variable ignored")
	}
}

// Exists reports whether the env file the loader points at is present.
func (l *Loader) Exists() bool {
	_, err := os.Stat(l.envFile)
	return err == nil
}
