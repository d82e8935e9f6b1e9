// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package profile computes the structural and statistical checks of a
// validation run: schema and nulls, duplicate rows, descriptive statistics,
// quantiles and range flags.
package profile

import (
	"github.com/ManuGH/cap5check/internal/dataset"
)

// Basic is the shape of a table.
type Basic struct {
	Rows        int   `json:"n_linhas"`
	Columns     int   `json:"n_colunas"`
	MemoryBytes int64 `json:"memoria_bytes_est"`
}

// BasicProfile returns rows, columns and estimated memory.
func BasicProfile(t *dataset.Table) Basic {
	return Basic{
		Rows:        t.NumRows(),
		Columns:     t.NumCols(),
		MemoryBytes: t.MemoryBytes(),
	}
}

// SchemaRow is one line of the schema/nulls table.
type SchemaRow struct {
	Column string `json:"coluna"`
	DType  string `json:"dtype"`
	Nulls  int    `json:"nulos"`
}

// Schema lists every column with its source dtype and null count.
func Schema(t *dataset.Table) []SchemaRow {
	out := make([]SchemaRow, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = SchemaRow{Column: c.Name, DType: c.DType, Nulls: c.NullCount()}
	}
	return out
}

// SchemaTable renders Schema as header + rows.
func SchemaTable(rows []SchemaRow) ([]string, [][]string) {
	body := make([][]string, len(rows))
	for i, r := range rows {
		body[i] = []string{r.Column, r.DType, itoa(r.Nulls)}
	}
	return []string{"coluna", "dtype", "nulos"}, body
}
