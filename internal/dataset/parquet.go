// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
)

// readBatch is the number of rows pulled from a row group per call.
const readBatch = 1024

type decodeFunc func(v parquet.Value, c *Column)

// ParquetFile is an opened Parquet file together with its raw rows, which
// are kept so the file can be rewritten in a different order without
// touching the schema.
type ParquetFile struct {
	Schema *parquet.Schema
	Table  *Table
	rows   []parquet.Row
}

// ReadParquetFile reads a flat Parquet file into a Table.
func ReadParquetFile(path string) (*Table, error) {
	pf, err := OpenParquet(path)
	if err != nil {
		return nil, err
	}
	return pf.Table, nil
}

// OpenParquet reads every row of the file at path.
func OpenParquet(path string) (*ParquetFile, error) {
	// #nosec G304 -- dataset paths come from the operator's env file
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	file, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}

	schema := file.Schema()
	cols, decoders, err := columnsFor(schema, int(file.NumRows()))
	if err != nil {
		return nil, fmt.Errorf("parquet %s: %w", path, err)
	}

	rows := make([]parquet.Row, 0, file.NumRows())
	for _, rg := range file.RowGroups() {
		if err := readRowGroup(rg, func(row parquet.Row) {
			for _, v := range row {
				idx := v.Column()
				if v.IsNull() {
					cols[idx].AppendNull()
					continue
				}
				decoders[idx](v, cols[idx])
			}
			rows = append(rows, row.Clone())
		}); err != nil {
			return nil, fmt.Errorf("parquet %s: %w", path, err)
		}
	}

	table, err := NewTable(cols...)
	if err != nil {
		return nil, fmt.Errorf("parquet %s: %w", path, err)
	}
	return &ParquetFile{Schema: schema, Table: table, rows: rows}, nil
}

func readRowGroup(rg parquet.RowGroup, fn func(parquet.Row)) error {
	rows := rg.Rows()
	defer rows.Close()

	buf := make([]parquet.Row, readBatch)
	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			fn(row)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read rows: %w", err)
		}
		if n == 0 {
			return nil
		}
	}
}

func columnsFor(schema *parquet.Schema, capacity int) ([]*Column, []decodeFunc, error) {
	paths := schema.Columns()
	cols := make([]*Column, len(paths))
	decoders := make([]decodeFunc, len(paths))
	for _, path := range paths {
		leaf, ok := schema.Lookup(path...)
		if !ok {
			return nil, nil, fmt.Errorf("%w: column %s not addressable", ErrUnsupportedSchema, strings.Join(path, "."))
		}
		if len(path) != 1 || leaf.MaxRepetitionLevel > 0 {
			return nil, nil, fmt.Errorf("%w: nested or repeated column %s", ErrUnsupportedSchema, strings.Join(path, "."))
		}
		kind, dtype, decode := mapType(leaf.Node.Type())
		cols[leaf.ColumnIndex] = NewColumn(path[0], kind, dtype, capacity)
		decoders[leaf.ColumnIndex] = decode
	}
	return cols, decoders, nil
}

// mapType maps a Parquet physical/logical type to a column kind.
func mapType(t parquet.Type) (Kind, string, decodeFunc) {
	physical := t.Kind()
	label := physical.String()
	lt := t.LogicalType()

	switch {
	case lt != nil && lt.Timestamp != nil:
		unit := timestampUnit(lt.Timestamp.Unit)
		return KindTimestamp, label + "(TIMESTAMP)", func(v parquet.Value, c *Column) {
			c.AppendTime(time.Unix(0, v.Int64()*int64(unit)).UTC())
		}
	case lt != nil && lt.Date != nil:
		return KindTimestamp, label + "(DATE)", func(v parquet.Value, c *Column) {
			c.AppendTime(time.Unix(int64(v.Int32())*86400, 0).UTC())
		}
	case lt != nil && lt.Decimal != nil && (physical == parquet.Int32 || physical == parquet.Int64):
		scale := math.Pow10(int(lt.Decimal.Scale))
		if physical == parquet.Int32 {
			return KindFloat, label + "(DECIMAL)", func(v parquet.Value, c *Column) {
				c.AppendFloat(float64(v.Int32()) / scale)
			}
		}
		return KindFloat, label + "(DECIMAL)", func(v parquet.Value, c *Column) {
			c.AppendFloat(float64(v.Int64()) / scale)
		}
	}

	switch physical {
	case parquet.Boolean:
		return KindBool, label, func(v parquet.Value, c *Column) { c.AppendBool(v.Boolean()) }
	case parquet.Int32:
		return KindInt, label, func(v parquet.Value, c *Column) { c.AppendInt(int64(v.Int32())) }
	case parquet.Int64:
		return KindInt, label, func(v parquet.Value, c *Column) { c.AppendInt(v.Int64()) }
	case parquet.Float:
		return KindFloat, label, func(v parquet.Value, c *Column) { c.AppendFloat(float64(v.Float())) }
	case parquet.Double:
		return KindFloat, label, func(v parquet.Value, c *Column) { c.AppendFloat(v.Double()) }
	case parquet.ByteArray, parquet.FixedLenByteArray:
		if lt != nil && lt.UTF8 != nil {
			label += "(STRING)"
		}
		return KindString, label, func(v parquet.Value, c *Column) { c.AppendString(string(v.ByteArray())) }
	default:
		return KindString, label, func(v parquet.Value, c *Column) { c.AppendString(v.String()) }
	}
}

func timestampUnit(u format.TimeUnit) time.Duration {
	switch {
	case u.Millis != nil:
		return time.Millisecond
	case u.Micros != nil:
		return time.Microsecond
	default:
		return time.Nanosecond
	}
}

// WriteOrdered writes the rows of the file to w in the given order, keeping
// the original schema. order must be a permutation of [0, NumRows).
func (p *ParquetFile) WriteOrdered(w io.Writer, order []int) error {
	if len(order) != len(p.rows) {
		return fmt.Errorf("order has %d entries for %d rows", len(order), len(p.rows))
	}
	ordered := make([]parquet.Row, len(order))
	for i, idx := range order {
		ordered[i] = p.rows[idx]
	}

	pw := parquet.NewWriter(w, p.Schema, parquet.Compression(&parquet.Snappy))
	if _, err := pw.WriteRows(ordered); err != nil {
		_ = pw.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// NumRows returns the number of rows read.
func (p *ParquetFile) NumRows() int { return len(p.rows) }
