// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package profile

import (
	"math"
	"strconv"

	"github.com/ManuGH/cap5check/internal/dataset"
)

// RangeRow is one line of the range flags table.
type RangeRow struct {
	Column       string  `json:"coluna"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Range        float64 `json:"range"`
	Inverted     bool    `json:"flag_invertido"`
	RangeTooHigh bool    `json:"flag_range_muito_alto"`
}

// RangeFlags computes min, max and range per numeric column and flags
// inverted bounds and ranges above the q-quantile of all column ranges.
// Columns without valid values carry NaN stats and no flags.
func RangeFlags(t *dataset.Table, q float64) []RangeRow {
	cols := t.NumericColumns()
	out := make([]RangeRow, len(cols))
	var ranges []float64
	for i, c := range cols {
		row := RangeRow{Column: c.Name, Min: math.NaN(), Max: math.NaN(), Range: math.NaN()}
		for _, v := range c.ValidFloats() {
			if math.IsNaN(row.Min) || v < row.Min {
				row.Min = v
			}
			if math.IsNaN(row.Max) || v > row.Max {
				row.Max = v
			}
		}
		if !math.IsNaN(row.Min) {
			row.Range = row.Max - row.Min
			row.Inverted = row.Max < row.Min
			ranges = append(ranges, row.Range)
		}
		out[i] = row
	}

	if len(ranges) == 0 {
		return out
	}
	threshold := Quantile(q, sortedCopy(ranges))
	for i := range out {
		if !math.IsNaN(out[i].Range) {
			out[i].RangeTooHigh = out[i].Range > threshold
		}
	}
	return out
}

// RangeTable renders range rows.
func RangeTable(rows []RangeRow) ([]string, [][]string) {
	header := []string{"coluna", "min", "max", "range", "flag_invertido", "flag_range_muito_alto"}
	body := make([][]string, len(rows))
	for i, r := range rows {
		body[i] = []string{
			r.Column, ftoa(r.Min), ftoa(r.Max), ftoa(r.Range),
			strconv.FormatBool(r.Inverted), strconv.FormatBool(r.RangeTooHigh),
		}
	}
	return header, body
}
