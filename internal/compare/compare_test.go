// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package compare

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/cap5check/internal/checksum"
	"github.com/ManuGH/cap5check/internal/dataset"
	"github.com/ManuGH/cap5check/internal/fsutil"
)

type meteoRow struct {
	Estacao string  `parquet:"estacao"`
	Hora    int64   `parquet:"hora"`
	Temp    float64 `parquet:"temperatura"`
}

func writeInputs(t *testing.T, rows int) (csvPath, pqPath string) {
	t.Helper()
	dir := t.TempDir()
	pqPath = filepath.Join(dir, "meteo.parquet")
	csvPath = filepath.Join(dir, "meteo.csv")

	data := make([]meteoRow, rows)
	for i := range data {
		data[i] = meteoRow{Estacao: "A925", Hora: int64(i), Temp: 20 + float64(i)/2}
	}
	require.NoError(t, parquet.WriteFile(pqPath, data))

	pq, err := dataset.ReadParquetFile(pqPath)
	require.NoError(t, err)

	var b strings.Builder
	b.WriteString(strings.Join(pq.Names(), ",") + "\n")
	for i := 0; i < pq.NumRows(); i++ {
		b.WriteString(strings.Join(pq.Row(i), ",") + "\n")
	}
	require.NoError(t, os.WriteFile(csvPath, []byte(b.String()), 0o600))
	return csvPath, pqPath
}

func TestConfirm_SameArtifact(t *testing.T) {
	csvPath, pqPath := writeInputs(t, 8)

	res, err := Confirm(context.Background(), csvPath, pqPath)
	require.NoError(t, err)

	assert.True(t, res.SameShape)
	assert.True(t, res.SameColumns)
	assert.Equal(t, Shape{Rows: 8, Columns: 3}, res.ParquetShape)
	require.Len(t, res.Schema, 3)
	for _, r := range res.Schema {
		assert.NotEmpty(t, r.DTypeCSV, r.Column)
	}

	want, err := checksum.SHA256File(context.Background(), csvPath)
	require.NoError(t, err)
	assert.Equal(t, want, res.CSV.SHA256)
	st, err := os.Stat(pqPath)
	require.NoError(t, err)
	assert.Equal(t, st.Size(), res.Parquet.SizeBytes)

	var out bytes.Buffer
	require.NoError(t, WriteSummary(&out, res, time.Unix(0, 0).UTC(), "tabelas/confirmacao_schema.csv"))
	text := out.String()
	assert.Contains(t, text, "Mesma shape (CSV vs Parquet): true")
	assert.Contains(t, text, "[AMOSTRA Parquet (tail 5)]")
	assert.Contains(t, text, "[SCHEMA] Arquivo gerado: tabelas/confirmacao_schema.csv")
	assert.Contains(t, text, res.Parquet.SHA256)
}

func TestConfirm_MissingInput(t *testing.T) {
	csvPath, _ := writeInputs(t, 2)
	_, err := Confirm(context.Background(), csvPath, filepath.Join(t.TempDir(), "nope.parquet"))
	assert.ErrorIs(t, err, fsutil.ErrInputNotFound)
}

func strTable(t *testing.T, names ...string) *dataset.Table {
	t.Helper()
	cols := make([]*dataset.Column, len(names))
	for i, n := range names {
		c := dataset.NewColumn(n, dataset.KindString, "", 1)
		c.AppendString("x")
		cols[i] = c
	}
	tbl, err := dataset.NewTable(cols...)
	require.NoError(t, err)
	return tbl
}

func TestTables_NFCColumnNames(t *testing.T) {
	composed := "m\u00e9dia"
	decomposed := "me\u0301dia"

	res := Tables(strTable(t, "a", decomposed), strTable(t, "a", composed))
	assert.True(t, res.SameColumns)
	assert.Equal(t, "string", res.Schema[1].DTypeCSV)
}

func TestTables_ColumnOrderMatters(t *testing.T) {
	res := Tables(strTable(t, "b", "a"), strTable(t, "a", "b"))
	assert.True(t, res.SameShape)
	assert.False(t, res.SameColumns)

	res = Tables(strTable(t, "a"), strTable(t, "a", "z"))
	assert.False(t, res.SameShape)
	header, body := SchemaTable(res.Schema)
	assert.Equal(t, []string{"coluna", "dtype_parquet", "dtype_csv"}, header)
	assert.Equal(t, []string{"z", "string", ""}, body[1])
}

func TestWriteSummary_ShortTable(t *testing.T) {
	res := Tables(strTable(t, "a"), strTable(t, "a"))
	var out bytes.Buffer
	require.NoError(t, WriteSummary(&out, res, time.Now(), ""))
	assert.NotContains(t, out.String(), "[SCHEMA]")
	assert.Equal(t, 2, strings.Count(out.String(), "\nx"))
}
