// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package report writes the evidence artifacts of a run: tables, JSON
// documents, text summaries and figures. Every write is atomic.
package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ManuGH/cap5check/internal/fsutil"
	"github.com/ManuGH/cap5check/internal/layout"
	caplog "github.com/ManuGH/cap5check/internal/log"
)

// Table formats.
const (
	FormatCSV = "csv"
	FormatTSV = "tsv"
)

// Writer names and writes the artifacts of one run.
type Writer struct {
	Layout      layout.Layout
	RunID       string
	TableFormat string
}

// NewWriter returns a Writer for the run.
func NewWriter(l layout.Layout, runID, tableFormat string) *Writer {
	if tableFormat == "" {
		tableFormat = FormatCSV
	}
	return &Writer{Layout: l, RunID: runID, TableFormat: tableFormat}
}

// Table writes tabelas/<name>_<run id>.<csv|tsv> and returns its path.
func (w *Writer) Table(ctx context.Context, name string, header []string, rows [][]string) (string, error) {
	path := w.Layout.Table(name, w.RunID, w.TableFormat)
	if err := WriteTable(ctx, path, w.TableFormat, header, rows); err != nil {
		return "", err
	}
	logWritten(ctx, "table", path, len(rows))
	return path, nil
}

// JSON writes tabelas/<name>_<run id>.json and returns its path.
func (w *Writer) JSON(ctx context.Context, name string, v any) (string, error) {
	path := w.Layout.Table(name, w.RunID, "json")
	if err := WriteJSON(ctx, path, v); err != nil {
		return "", err
	}
	logWritten(ctx, "json", path, 0)
	return path, nil
}

// WriteTable writes header and rows as CSV or TSV.
func WriteTable(ctx context.Context, path, format string, header []string, rows [][]string) error {
	sep := ','
	switch format {
	case FormatCSV:
	case FormatTSV:
		sep = '\t'
	default:
		return fmt.Errorf("unknown table format %q", format)
	}
	return fsutil.WriteAtomic(ctx, path, func(out io.Writer) error {
		cw := csv.NewWriter(out)
		cw.Comma = sep
		if err := cw.Write(header); err != nil {
			return err
		}
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	})
}

// WriteJSON writes v as indented UTF-8 JSON with non-ASCII text kept as is.
func WriteJSON(ctx context.Context, path string, v any) error {
	return fsutil.WriteAtomic(ctx, path, func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	})
}

// WriteText writes a plain text artifact.
func WriteText(ctx context.Context, path, text string) error {
	return fsutil.WriteFileAtomic(ctx, path, []byte(text))
}

func logWritten(ctx context.Context, kind, path string, rows int) {
	logger := caplog.WithComponentFromContext(ctx, "report")
	ev := logger.Debug().
		Str(caplog.FieldEvent, "report.written").
		Str("kind", kind).
		Str(caplog.FieldPath, path)
	if rows > 0 {
		ev = ev.Int(caplog.FieldRows, rows)
	}
	ev.Msg("artifact written")
}
