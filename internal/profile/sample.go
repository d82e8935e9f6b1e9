// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package profile

import (
	"math/rand/v2"
	"slices"

	"github.com/ManuGH/cap5check/internal/dataset"
)

// SampleRows returns at most n row indices drawn without replacement with a
// seeded generator, in ascending order. Tables that fit return every row.
func SampleRows(rows, n int, seed uint64) []int {
	if n >= rows {
		out := make([]int, rows)
		for i := range out {
			out[i] = i
		}
		return out
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	idx := r.Perm(rows)[:n]
	slices.Sort(idx)
	return idx
}

// Sample returns the sampled table.
func Sample(t *dataset.Table, n int, seed uint64) *dataset.Table {
	if n >= t.NumRows() {
		return t
	}
	return t.Take(SampleRows(t.NumRows(), n, seed))
}
