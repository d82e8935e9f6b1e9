// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package profile

import (
	"math"
	"strconv"

	"github.com/ManuGH/cap5check/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stat names of the describe table, in order.
var describeStats = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Describe holds per-column descriptive statistics.
type Describe struct {
	Columns []string
	// Values[stat][column]
	Values map[string][]float64
}

// Empty reports whether there were no numeric columns.
func (d Describe) Empty() bool { return len(d.Columns) == 0 }

// DescribeNumeric computes count, mean, sample std, min, quartiles and max
// for every numeric column, skipping nulls.
func DescribeNumeric(t *dataset.Table) Describe {
	cols := t.NumericColumns()
	d := Describe{Values: make(map[string][]float64, len(describeStats))}
	for _, s := range describeStats {
		d.Values[s] = make([]float64, len(cols))
	}
	for j, c := range cols {
		d.Columns = append(d.Columns, c.Name)
		vals := sortedCopy(c.ValidFloats())

		d.Values["count"][j] = float64(len(vals))
		if len(vals) == 0 {
			for _, s := range describeStats[1:] {
				d.Values[s][j] = math.NaN()
			}
			continue
		}
		mean, std := stat.MeanStdDev(vals, nil)
		if len(vals) < 2 {
			std = math.NaN()
		}
		d.Values["mean"][j] = mean
		d.Values["std"][j] = std
		d.Values["min"][j] = floats.Min(vals)
		d.Values["25%"][j] = Quantile(0.25, vals)
		d.Values["50%"][j] = Quantile(0.50, vals)
		d.Values["75%"][j] = Quantile(0.75, vals)
		d.Values["max"][j] = floats.Max(vals)
	}
	return d
}

// Table renders the describe result with one row per statistic.
func (d Describe) Table() ([]string, [][]string) {
	header := append([]string{"estatistica"}, d.Columns...)
	body := make([][]string, 0, len(describeStats))
	for _, s := range describeStats {
		row := []string{s}
		for _, v := range d.Values[s] {
			row = append(row, ftoa(v))
		}
		body = append(body, row)
	}
	return header, body
}

// Quantiles holds per-column quantiles.
type Quantiles struct {
	Probs   []float64
	Columns []string
	// Values[prob index][column]
	Values [][]float64
}

// Empty reports whether there were no numeric columns.
func (q Quantiles) Empty() bool { return len(q.Columns) == 0 }

// NumericQuantiles computes the requested quantiles of every numeric column.
func NumericQuantiles(t *dataset.Table, probs []float64) Quantiles {
	cols := t.NumericColumns()
	q := Quantiles{Probs: probs, Values: make([][]float64, len(probs))}
	sorted := make([][]float64, len(cols))
	for j, c := range cols {
		q.Columns = append(q.Columns, c.Name)
		sorted[j] = sortedCopy(c.ValidFloats())
	}
	for i, p := range probs {
		q.Values[i] = make([]float64, len(cols))
		for j := range cols {
			q.Values[i][j] = Quantile(p, sorted[j])
		}
	}
	return q
}

// Table renders the quantiles with one row per probability.
func (q Quantiles) Table() ([]string, [][]string) {
	header := append([]string{"quantil"}, q.Columns...)
	body := make([][]string, len(q.Probs))
	for i, p := range q.Probs {
		row := []string{strconv.FormatFloat(p, 'f', -1, 64)}
		for _, v := range q.Values[i] {
			row = append(row, ftoa(v))
		}
		body[i] = row
	}
	return header, body
}

func ftoa(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func itoa(v int) string { return strconv.Itoa(v) }

func roundTo(v float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}
