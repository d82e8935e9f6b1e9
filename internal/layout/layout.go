// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package layout owns the evidence tree of a run: logs/, tabelas/, figuras/
// and metadata/ under one output root, plus the naming of every artifact.
package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// Directory names of the evidence tree.
const (
	DirLogs     = "logs"
	DirTables   = "tabelas"
	DirFigures  = "figuras"
	DirMetadata = "metadata"
)

// RunIDFormat renders local time as YYYYMMDD_HHMMSS.
const RunIDFormat = "20060102_150405"

// LedgerFile is the SQLite run ledger kept under metadata/.
const LedgerFile = "runs.sqlite"

// Layout resolves artifact paths below Root.
type Layout struct {
	Root string
}

// New returns the layout rooted at outdir.
func New(outdir string) Layout {
	return Layout{Root: filepath.Clean(outdir)}
}

// Logs returns the log directory.
func (l Layout) Logs() string { return filepath.Join(l.Root, DirLogs) }

// Tables returns the statistical tables directory.
func (l Layout) Tables() string { return filepath.Join(l.Root, DirTables) }

// Figures returns the figures directory.
func (l Layout) Figures() string { return filepath.Join(l.Root, DirFigures) }

// Metadata returns the metadata directory.
func (l Layout) Metadata() string { return filepath.Join(l.Root, DirMetadata) }

// Dirs lists every directory of the tree, root first.
func (l Layout) Dirs() []string {
	return []string{l.Root, l.Logs(), l.Tables(), l.Figures(), l.Metadata()}
}

// Ensure creates the tree. It is idempotent.
func (l Layout) Ensure() error {
	for _, dir := range l.Dirs() {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// RunLog is logs/run_<id>.log.
func (l Layout) RunLog(runID string) string {
	return filepath.Join(l.Logs(), "run_"+runID+".log")
}

// RunMetadata is metadata/run_<id>.json.
func (l Layout) RunMetadata(runID string) string {
	return filepath.Join(l.Metadata(), "run_"+runID+".json")
}

// RunMetrics is metadata/metrics_<id>.prom.
func (l Layout) RunMetrics(runID string) string {
	return filepath.Join(l.Metadata(), "metrics_"+runID+".prom")
}

// Ledger is metadata/runs.sqlite.
func (l Layout) Ledger() string {
	return filepath.Join(l.Metadata(), LedgerFile)
}

// Table is tabelas/<name>_<id>.<ext>.
func (l Layout) Table(name, runID, ext string) string {
	return filepath.Join(l.Tables(), name+"_"+runID+"."+strings.TrimPrefix(ext, "."))
}

// Figure is figuras/<name>.<ext>; the name is sanitized.
func (l Layout) Figure(name, ext string) string {
	return filepath.Join(l.Figures(), SanitizeName(name)+"."+strings.TrimPrefix(ext, "."))
}

// Summary is logs/<name>_<id>.txt.
func (l Layout) Summary(name, runID string) string {
	return filepath.Join(l.Logs(), name+"_"+runID+".txt")
}

// NewRunID formats t as a run id.
func NewRunID(t time.Time) string {
	return t.Format(RunIDFormat)
}

// maxRunIDAttempts bounds the suffixes tried by OpenRunLog within one second.
const maxRunIDAttempts = 100

// OpenRunLog claims a run id for t and creates its log file. The plain
// timestamp id is used when free; a run started in the same second gets
// "<id>_2", "<id>_3" and so on. An id is free when neither its log nor its
// metadata file exists. The log is created with O_EXCL, so concurrent
// processes never share one.
func (l Layout) OpenRunLog(t time.Time) (string, *os.File, error) {
	base := NewRunID(t)
	for n := 1; n <= maxRunIDAttempts; n++ {
		id := base
		if n > 1 {
			id = fmt.Sprintf("%s_%d", base, n)
		}
		if _, err := os.Stat(l.RunMetadata(id)); err == nil {
			continue
		}
		// #nosec G304 -- log path is derived from the configured output root
		f, err := os.OpenFile(l.RunLog(id), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		switch {
		case err == nil:
			return id, f, nil
		case errors.Is(err, fs.ErrExist):
			continue
		default:
			return "", nil, fmt.Errorf("open run log: %w", err)
		}
	}
	return "", nil, fmt.Errorf("no free run id for %s after %d attempts", base, maxRunIDAttempts)
}

// UniqueStems sanitizes every name and keeps the results distinct, compared
// case-insensitively. A stem already taken by an earlier name gets the
// position of its name appended ("temp__C__1").
func UniqueStems(names []string) []string {
	out := make([]string, len(names))
	taken := make(map[string]bool, len(names))
	for i, name := range names {
		stem := SanitizeName(name)
		for k := i; taken[strings.ToLower(stem)]; k++ {
			stem = fmt.Sprintf("%s_%d", SanitizeName(name), k)
		}
		taken[strings.ToLower(stem)] = true
		out[i] = stem
	}
	return out
}

// SanitizeName maps a column name to a portable file name component.
// Letters (accents included), digits, '-', '_' and '.' are kept; anything
// else becomes '_'.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "_"
	}
	return out
}
