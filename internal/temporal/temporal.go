// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package temporal orders the meteorological series by its timestamp column
// and persists the master dataset.
package temporal

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ManuGH/cap5check/internal/dataset"
)

var (
	// ErrNotMonotonic is returned when the ordered series still decreases.
	ErrNotMonotonic = errors.New("time series is not monotonic")
	// ErrInvalidTimestamp is returned for nulls or unparseable values in the
	// timestamp column.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// Evidence summarizes the timestamp column at one point of the procedure.
type Evidence struct {
	Min                 time.Time `json:"min"`
	Max                 time.Time `json:"max"`
	DuplicateTimestamps int       `json:"duplicatas"`
}

// ParseTimes converts the column to timestamps. Timestamp columns are used
// as is, string columns are parsed with the CSV layouts. Any null or
// unparseable value is an error naming the first offending row.
func ParseTimes(c *dataset.Column) ([]time.Time, error) {
	out := make([]time.Time, c.Len())
	nulls := 0
	first := -1
	for i := range out {
		if c.IsNull(i) {
			nulls++
			if first < 0 {
				first = i
			}
			continue
		}
		switch c.Kind {
		case dataset.KindTimestamp:
			out[i] = c.Times[i]
		case dataset.KindString:
			t, err := dataset.ParseTime(c.Strs[i])
			if err != nil {
				return nil, fmt.Errorf("%w: column %q row %d: %q", ErrInvalidTimestamp, c.Name, i, c.Strs[i])
			}
			out[i] = t
		default:
			return nil, fmt.Errorf("%w: column %q has kind %s", ErrInvalidTimestamp, c.Name, c.Kind)
		}
	}
	if nulls > 0 {
		return nil, fmt.Errorf("%w: %d null values in column %q (first at row %d)", ErrInvalidTimestamp, nulls, c.Name, first)
	}
	return out, nil
}

// Describe returns min, max and the number of repeated timestamps.
func Describe(times []time.Time) Evidence {
	var ev Evidence
	seen := make(map[int64]struct{}, len(times))
	for i, t := range times {
		if i == 0 || t.Before(ev.Min) {
			ev.Min = t
		}
		if i == 0 || t.After(ev.Max) {
			ev.Max = t
		}
		k := t.UnixNano()
		if _, ok := seen[k]; ok {
			ev.DuplicateTimestamps++
			continue
		}
		seen[k] = struct{}{}
	}
	return ev
}

// Order returns row indices sorting times ascending. Equal timestamps keep
// their original relative order.
func Order(times []time.Time) []int {
	idx := make([]int, len(times))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return times[a].Compare(times[b])
	})
	return idx
}

// Apply returns times reordered by idx.
func Apply(times []time.Time, idx []int) []time.Time {
	out := make([]time.Time, len(idx))
	for i, j := range idx {
		out[i] = times[j]
	}
	return out
}

// CheckMonotonic fails with ErrNotMonotonic at the first decrease.
func CheckMonotonic(times []time.Time) error {
	for i := 1; i < len(times); i++ {
		if times[i].Before(times[i-1]) {
			return fmt.Errorf("%w: row %d (%s) precedes row %d (%s)",
				ErrNotMonotonic, i, times[i].Format(time.RFC3339), i-1, times[i-1].Format(time.RFC3339))
		}
	}
	return nil
}
