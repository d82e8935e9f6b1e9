// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package dataset holds the in-memory, column-oriented table the validation
// run works on, and the CSV and Parquet codecs that fill it.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

var (
	// ErrUnsupportedSchema is returned for nested or repeated Parquet columns.
	ErrUnsupportedSchema = errors.New("unsupported schema")

	// ErrColumnNotFound is returned when a named column does not exist.
	ErrColumnNotFound = errors.New("column not found")

	// ErrRaggedTable is returned when columns disagree on row count.
	ErrRaggedTable = errors.New("columns have different lengths")
)

// Kind is the logical type of a column.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Numeric reports whether statistics apply to the kind.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// TimeLayout is used to render timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// Column is one typed column. Only the slice matching Kind is populated.
type Column struct {
	Name  string
	Kind  Kind
	DType string // source type label, e.g. "DOUBLE" or "int64"

	Valid  []bool
	Ints   []int64
	Floats []float64
	Bools  []bool
	Strs   []string
	Times  []time.Time
}

// NewColumn returns an empty column with room for capacity rows.
func NewColumn(name string, kind Kind, dtype string, capacity int) *Column {
	c := &Column{Name: name, Kind: kind, DType: dtype, Valid: make([]bool, 0, capacity)}
	switch kind {
	case KindInt:
		c.Ints = make([]int64, 0, capacity)
	case KindFloat:
		c.Floats = make([]float64, 0, capacity)
	case KindBool:
		c.Bools = make([]bool, 0, capacity)
	case KindString:
		c.Strs = make([]string, 0, capacity)
	case KindTimestamp:
		c.Times = make([]time.Time, 0, capacity)
	}
	if c.DType == "" {
		c.DType = kind.String()
	}
	return c
}

// Len returns the number of rows.
func (c *Column) Len() int { return len(c.Valid) }

// AppendNull appends a null cell.
func (c *Column) AppendNull() {
	c.Valid = append(c.Valid, false)
	switch c.Kind {
	case KindInt:
		c.Ints = append(c.Ints, 0)
	case KindFloat:
		c.Floats = append(c.Floats, math.NaN())
	case KindBool:
		c.Bools = append(c.Bools, false)
	case KindString:
		c.Strs = append(c.Strs, "")
	case KindTimestamp:
		c.Times = append(c.Times, time.Time{})
	}
}

// AppendInt appends to an int column.
func (c *Column) AppendInt(v int64) {
	c.Valid = append(c.Valid, true)
	c.Ints = append(c.Ints, v)
}

// AppendFloat appends to a float column. NaN is stored as null.
func (c *Column) AppendFloat(v float64) {
	if math.IsNaN(v) {
		c.AppendNull()
		return
	}
	c.Valid = append(c.Valid, true)
	c.Floats = append(c.Floats, v)
}

// AppendBool appends to a bool column.
func (c *Column) AppendBool(v bool) {
	c.Valid = append(c.Valid, true)
	c.Bools = append(c.Bools, v)
}

// AppendString appends to a string column.
func (c *Column) AppendString(v string) {
	c.Valid = append(c.Valid, true)
	c.Strs = append(c.Strs, v)
}

// AppendTime appends to a timestamp column.
func (c *Column) AppendTime(v time.Time) {
	c.Valid = append(c.Valid, true)
	c.Times = append(c.Times, v)
}

// IsNull reports whether row i is null.
func (c *Column) IsNull(i int) bool { return !c.Valid[i] }

// NullCount returns the number of null cells.
func (c *Column) NullCount() int {
	n := 0
	for _, ok := range c.Valid {
		if !ok {
			n++
		}
	}
	return n
}

// Float returns row i as float64 for numeric columns.
func (c *Column) Float(i int) (float64, bool) {
	if !c.Valid[i] {
		return 0, false
	}
	switch c.Kind {
	case KindInt:
		return float64(c.Ints[i]), true
	case KindFloat:
		return c.Floats[i], true
	default:
		return 0, false
	}
}

// ValidFloats returns the non-null values of a numeric column in row order.
func (c *Column) ValidFloats() []float64 {
	out := make([]float64, 0, c.Len())
	for i := range c.Valid {
		if v, ok := c.Float(i); ok {
			out = append(out, v)
		}
	}
	return out
}

// Text renders row i for display and keys. Nulls render as "".
func (c *Column) Text(i int) string {
	if !c.Valid[i] {
		return ""
	}
	switch c.Kind {
	case KindInt:
		return strconv.FormatInt(c.Ints[i], 10)
	case KindFloat:
		return strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.Bools[i])
	case KindString:
		return c.Strs[i]
	case KindTimestamp:
		return c.Times[i].Format(TimeLayout)
	}
	return ""
}

// take returns a new column holding rows idx in that order.
func (c *Column) take(idx []int) *Column {
	out := NewColumn(c.Name, c.Kind, c.DType, len(idx))
	for _, i := range idx {
		if !c.Valid[i] {
			out.AppendNull()
			continue
		}
		switch c.Kind {
		case KindInt:
			out.AppendInt(c.Ints[i])
		case KindFloat:
			out.AppendFloat(c.Floats[i])
		case KindBool:
			out.AppendBool(c.Bools[i])
		case KindString:
			out.AppendString(c.Strs[i])
		case KindTimestamp:
			out.AppendTime(c.Times[i])
		}
	}
	return out
}

// memoryBytes estimates the heap held by the column.
func (c *Column) memoryBytes() int64 {
	n := int64(len(c.Valid))
	n += int64(len(c.Ints))*8 + int64(len(c.Floats))*8 + int64(len(c.Bools))
	n += int64(len(c.Times)) * 24
	for _, s := range c.Strs {
		n += 16 + int64(len(s))
	}
	return n
}

// Table is an ordered set of equally long columns.
type Table struct {
	Columns []*Column
}

// NewTable validates that every column has the same length.
func NewTable(cols ...*Column) (*Table, error) {
	for _, c := range cols[min(1, len(cols)):] {
		if c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("%w: %s has %d rows, %s has %d",
				ErrRaggedTable, cols[0].Name, cols[0].Len(), c.Name, c.Len())
		}
	}
	return &Table{Columns: cols}, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.Columns) }

// Names returns column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, error) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// NumericColumns returns the int and float columns in order.
func (t *Table) NumericColumns() []*Column {
	var out []*Column
	for _, c := range t.Columns {
		if c.Kind.Numeric() {
			out = append(out, c)
		}
	}
	return out
}

// Row renders row i.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		out[j] = c.Text(i)
	}
	return out
}

// Take returns a new table with rows idx in that order.
func (t *Table) Take(idx []int) *Table {
	cols := make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.take(idx)
	}
	return &Table{Columns: cols}
}

// MemoryBytes estimates the heap held by the table.
func (t *Table) MemoryBytes() int64 {
	var n int64
	for _, c := range t.Columns {
		n += c.memoryBytes()
	}
	return n
}
