// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package compare confirms that the CSV and Parquet renditions of the
// dataset are the same versioned artifact.
package compare

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/ManuGH/cap5check/internal/checksum"
	"github.com/ManuGH/cap5check/internal/dataset"
	"github.com/ManuGH/cap5check/internal/fsutil"
	caplog "github.com/ManuGH/cap5check/internal/log"
)

// FileInfo describes one input file on disk.
type FileInfo struct {
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mtime"`
	SHA256    string    `json:"sha256"`
}

// Shape is rows x columns.
type Shape struct {
	Rows    int `json:"n"`
	Columns int `json:"p"`
}

// SchemaRow pairs the dtype of one column in both files. A column missing
// from the CSV has an empty DTypeCSV.
type SchemaRow struct {
	Column       string `json:"coluna"`
	DTypeParquet string `json:"dtype_parquet"`
	DTypeCSV     string `json:"dtype_csv"`
}

// Result is the outcome of a confirmation.
type Result struct {
	CSV          FileInfo    `json:"csv"`
	Parquet      FileInfo    `json:"parquet"`
	CSVShape     Shape       `json:"shape_csv"`
	ParquetShape Shape       `json:"shape_parquet"`
	SameShape    bool        `json:"same_shape"`
	SameColumns  bool        `json:"same_columns"`
	Schema       []SchemaRow `json:"schema"`

	// ParquetTable is kept for the head/tail samples of the summary.
	ParquetTable *dataset.Table `json:"-"`
}

// Confirm hashes and loads both files and compares their structure.
func Confirm(ctx context.Context, csvPath, parquetPath string) (Result, error) {
	logger := caplog.WithComponentFromContext(ctx, "compare")

	for _, p := range []string{csvPath, parquetPath} {
		if err := fsutil.RequireFile(p); err != nil {
			return Result{}, err
		}
	}

	sums, err := checksum.HashAll(ctx, []string{csvPath, parquetPath})
	if err != nil {
		return Result{}, err
	}
	var res Result
	if res.CSV, err = fileInfo(csvPath, sums[0]); err != nil {
		return Result{}, err
	}
	if res.Parquet, err = fileInfo(parquetPath, sums[1]); err != nil {
		return Result{}, err
	}

	csvTable, err := dataset.ReadCSVFile(csvPath)
	if err != nil {
		return Result{}, fmt.Errorf("read csv %s: %w", csvPath, err)
	}
	pqTable, err := dataset.ReadParquetFile(parquetPath)
	if err != nil {
		return Result{}, fmt.Errorf("read parquet %s: %w", parquetPath, err)
	}

	res = fill(res, csvTable, pqTable)
	logger.Info().
		Str(caplog.FieldEvent, "compare.done").
		Bool("same_shape", res.SameShape).
		Bool("same_columns", res.SameColumns).
		Int(caplog.FieldRows, res.ParquetShape.Rows).
		Int(caplog.FieldColumns, res.ParquetShape.Columns).
		Msg("csv and parquet compared")
	return res, nil
}

// Tables compares two already loaded tables.
func Tables(csvTable, pqTable *dataset.Table) Result {
	return fill(Result{}, csvTable, pqTable)
}

func fill(res Result, csvTable, pqTable *dataset.Table) Result {
	res.CSVShape = Shape{Rows: csvTable.NumRows(), Columns: csvTable.NumCols()}
	res.ParquetShape = Shape{Rows: pqTable.NumRows(), Columns: pqTable.NumCols()}
	res.SameShape = res.CSVShape == res.ParquetShape

	csvNames := normalized(csvTable.Names())
	pqNames := normalized(pqTable.Names())
	res.SameColumns = slices.Equal(csvNames, pqNames)

	csvTypes := make(map[string]string, len(csvNames))
	for i, n := range csvNames {
		csvTypes[n] = csvTable.Columns[i].DType
	}
	res.Schema = make([]SchemaRow, len(pqNames))
	for i, n := range pqNames {
		res.Schema[i] = SchemaRow{
			Column:       pqTable.Columns[i].Name,
			DTypeParquet: pqTable.Columns[i].DType,
			DTypeCSV:     csvTypes[n],
		}
	}
	res.ParquetTable = pqTable
	return res
}

// normalized maps names to NFC so composed and decomposed accents compare
// equal ("umidade_relativa_média" written either way).
func normalized(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = norm.NFC.String(n)
	}
	return out
}

func fileInfo(path, sum string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Path:      path,
		SizeBytes: st.Size(),
		ModTime:   st.ModTime(),
		SHA256:    sum,
	}, nil
}

// SchemaTable renders the schema comparison as header + rows.
func SchemaTable(rows []SchemaRow) ([]string, [][]string) {
	body := make([][]string, len(rows))
	for i, r := range rows {
		body[i] = []string{r.Column, r.DTypeParquet, r.DTypeCSV}
	}
	return []string{"coluna", "dtype_parquet", "dtype_csv"}, body
}
