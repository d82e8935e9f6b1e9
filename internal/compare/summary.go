// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package compare

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ManuGH/cap5check/internal/dataset"
)

// SampleRows is the number of head and tail rows in the summary.
const SampleRows = 5

// WriteSummary renders the human readable confirmation report.
func WriteSummary(w io.Writer, res Result, generated time.Time, schemaPath string) error {
	var b bytes.Buffer
	fmt.Fprintln(&b, "CONFIRMAÇÃO DO DATASET METEOROLÓGICO (P1.1b)")
	fmt.Fprintf(&b, "Timestamp: %s\n\n", generated.Format(time.RFC3339))

	fmt.Fprintln(&b, "[ARQUIVOS]")
	writeFileInfo(&b, "CSV:    ", res.CSV)
	writeFileInfo(&b, "PARQUET:", res.Parquet)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "[ESTRUTURA]")
	fmt.Fprintf(&b, "Shape CSV:     N=%d  P=%d\n", res.CSVShape.Rows, res.CSVShape.Columns)
	fmt.Fprintf(&b, "Shape Parquet: N=%d  P=%d\n", res.ParquetShape.Rows, res.ParquetShape.Columns)
	fmt.Fprintf(&b, "Mesma shape (CSV vs Parquet): %t\n", res.SameShape)
	fmt.Fprintf(&b, "Mesmas colunas (ordem idêntica): %t\n\n", res.SameColumns)

	if t := res.ParquetTable; t != nil {
		fmt.Fprintln(&b, "[COLUNAS]")
		fmt.Fprintf(&b, "  %s\n\n", strings.Join(t.Names(), ", "))

		n := t.NumRows()
		head := min(SampleRows, n)
		fmt.Fprintf(&b, "[AMOSTRA Parquet (head %d)]\n", SampleRows)
		writeRows(&b, t, 0, head)
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "[AMOSTRA Parquet (tail %d)]\n", SampleRows)
		writeRows(&b, t, max(0, n-SampleRows), n)
		fmt.Fprintln(&b)
	}
	if schemaPath != "" {
		fmt.Fprintf(&b, "[SCHEMA] Arquivo gerado: %s\n", schemaPath)
	}
	_, err := w.Write(b.Bytes())
	return err
}

func writeFileInfo(b *bytes.Buffer, label string, fi FileInfo) {
	fmt.Fprintf(b, "%s %s\n", label, fi.Path)
	fmt.Fprintf(b, "  size_bytes: %d\n", fi.SizeBytes)
	fmt.Fprintf(b, "  mtime:      %s\n", fi.ModTime.Format(time.RFC3339))
	fmt.Fprintf(b, "  sha256:     %s\n", fi.SHA256)
}

// writeRows prints rows [from, to) as an aligned table.
func writeRows(w io.Writer, t *dataset.Table, from, to int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Names(), "\t"))
	for i := from; i < to; i++ {
		fmt.Fprintln(tw, strings.Join(t.Row(i), "\t"))
	}
	_ = tw.Flush()
}
