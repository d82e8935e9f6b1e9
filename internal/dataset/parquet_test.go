// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixtureRow struct {
	Estacao string   `parquet:"estacao"`
	Hora    int64    `parquet:"hora"`
	Temp    *float64 `parquet:"temperatura,optional"`
	Chuva   float32  `parquet:"chuva"`
	Ok      bool     `parquet:"ok"`
}

func ptr(f float64) *float64 { return &f }

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meteo.parquet")
	rows := []fixtureRow{
		{Estacao: "A925", Hora: 2, Temp: ptr(25.5), Chuva: 0.2, Ok: true},
		{Estacao: "A925", Hora: 0, Temp: nil, Chuva: 0, Ok: true},
		{Estacao: "A925", Hora: 1, Temp: ptr(24), Chuva: 1.5, Ok: false},
	}
	require.NoError(t, parquet.WriteFile(path, rows))
	return path
}

func TestOpenParquet_ReadsFlatSchema(t *testing.T) {
	pf, err := OpenParquet(writeFixture(t))
	require.NoError(t, err)

	tbl := pf.Table
	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"estacao", "hora", "temperatura", "chuva", "ok"}, tbl.Names(), "file column order is kept")

	kinds := map[string]Kind{}
	for _, c := range tbl.Columns {
		kinds[c.Name] = c.Kind
	}
	assert.Equal(t, map[string]Kind{
		"estacao":     KindString,
		"hora":        KindInt,
		"temperatura": KindFloat,
		"chuva":       KindFloat,
		"ok":          KindBool,
	}, kinds)

	temp, err := tbl.Column("temperatura")
	require.NoError(t, err)
	assert.Equal(t, 1, temp.NullCount())
	assert.True(t, temp.IsNull(1))
	assert.Equal(t, []float64{25.5, 24}, temp.ValidFloats())

	hora, _ := tbl.Column("hora")
	assert.Equal(t, "INT64", hora.DType)
}

func TestParquetFile_WriteOrdered(t *testing.T) {
	pf, err := OpenParquet(writeFixture(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, pf.WriteOrdered(&buf, []int{1, 2, 0}))

	out := filepath.Join(t.TempDir(), "sorted.parquet")
	require.NoError(t, os.WriteFile(out, buf.Bytes(), 0o600))

	sorted, err := ReadParquetFile(out)
	require.NoError(t, err)
	hora, _ := sorted.Column("hora")
	assert.Equal(t, []int64{0, 1, 2}, hora.Ints)

	temp, _ := sorted.Column("temperatura")
	assert.True(t, temp.IsNull(0), "null travels with its row")

	assert.Error(t, pf.WriteOrdered(&buf, []int{0}))
}

func TestOpenParquet_NotParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.parquet")
	require.NoError(t, os.WriteFile(path, []byte("definitely not parquet"), 0o600))

	_, err := OpenParquet(path)
	assert.Error(t, err)
}

type timeRow struct {
	Zeta   string    `parquet:"zeta"`
	Quando time.Time `parquet:"quando,timestamp(millisecond)"`
	Dia    int32     `parquet:"dia,date"`
}

type nestedRow struct {
	ID  int64 `parquet:"id"`
	Loc struct {
		Lat float64 `parquet:"lat"`
	} `parquet:"loc"`
}

type repeatedRow struct {
	ID   int64    `parquet:"id"`
	Tags []string `parquet:"tags"`
}

func writeRows[T any](t *testing.T, rows []T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.parquet")
	require.NoError(t, parquet.WriteFile(path, rows))
	return path
}

func TestOpenParquet_LogicalTypes(t *testing.T) {
	quando := time.Date(2017, 1, 1, 3, 0, 0, 250_000_000, time.UTC)

	t.Run("timestamp and date", func(t *testing.T) {
		tbl, err := ReadParquetFile(writeRows(t, []timeRow{{Zeta: "z", Quando: quando, Dia: 17167}}))
		require.NoError(t, err)
		assert.Equal(t, []string{"zeta", "quando", "dia"}, tbl.Names())

		ts, err := tbl.Column("quando")
		require.NoError(t, err)
		assert.Equal(t, KindTimestamp, ts.Kind)
		assert.Equal(t, "INT64(TIMESTAMP)", ts.DType)
		assert.True(t, quando.Equal(ts.Times[0]), "got %v", ts.Times[0])

		dia, err := tbl.Column("dia")
		require.NoError(t, err)
		assert.Equal(t, KindTimestamp, dia.Kind)
		assert.Equal(t, "INT32(DATE)", dia.DType)
		assert.True(t, time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC).Equal(dia.Times[0]), "got %v", dia.Times[0])
	})

	t.Run("decimal", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "decimal.parquet")
		schema := parquet.NewSchema("medicao", parquet.Group{
			"valor": parquet.Decimal(2, 9, parquet.Int32Type),
		})
		f, err := os.Create(path)
		require.NoError(t, err)
		w := parquet.NewWriter(f, schema)
		_, err = w.WriteRows([]parquet.Row{
			{parquet.Int32Value(12345).Level(0, 0, 0)},
			{parquet.Int32Value(-50).Level(0, 0, 0)},
		})
		require.NoError(t, err)
		require.NoError(t, w.Close())
		require.NoError(t, f.Close())

		tbl, err := ReadParquetFile(path)
		require.NoError(t, err)
		valor, err := tbl.Column("valor")
		require.NoError(t, err)
		assert.Equal(t, KindFloat, valor.Kind)
		assert.Equal(t, "INT32(DECIMAL)", valor.DType)
		assert.InDeltaSlice(t, []float64{123.45, -0.5}, valor.Floats, 1e-9)
	})
}

func TestOpenParquet_RejectsNonFlatSchemas(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"nested group", func(t *testing.T) string {
			row := nestedRow{ID: 1}
			row.Loc.Lat = -8.76
			return writeRows(t, []nestedRow{row})
		}},
		{"repeated column", func(t *testing.T) string {
			return writeRows(t, []repeatedRow{{ID: 1, Tags: []string{"a", "b"}}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OpenParquet(tt.path(t))
			require.ErrorIs(t, err, ErrUnsupportedSchema)
		})
	}
}
