// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package profile

import (
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/cap5check/internal/dataset"
)

// Duplicates is the duplicate-row summary.
type Duplicates struct {
	Rows    int     `json:"linhas_duplicadas"`
	Seconds float64 `json:"tempo_s"`
}

// CountDuplicates counts rows identical to an earlier row across all
// columns. The first occurrence is not counted; nulls equal nulls.
func CountDuplicates(t *dataset.Table) Duplicates {
	start := time.Now()
	n := DuplicateRows(t, t.Columns)
	return Duplicates{Rows: n, Seconds: roundTo(time.Since(start).Seconds(), 3)}
}

// DuplicateRows counts duplicates over the given subset of columns.
func DuplicateRows(t *dataset.Table, cols []*dataset.Column) int {
	seen := make(map[string]struct{}, t.NumRows())
	dups := 0
	var b strings.Builder
	for i := 0; i < t.NumRows(); i++ {
		b.Reset()
		for _, c := range cols {
			writeKeyCell(&b, c, i)
		}
		key := b.String()
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

// writeKeyCell appends cell i to a row key. Nulls are "N"; values are
// "V<len>:<text>" so no cell content can run into its neighbour. Floats
// compare numerically (-0 equals 0) and timestamps at full precision.
func writeKeyCell(b *strings.Builder, c *dataset.Column, i int) {
	if c.IsNull(i) {
		b.WriteByte('N')
		return
	}
	var text string
	switch c.Kind {
	case dataset.KindFloat:
		v := c.Floats[i]
		if v == 0 { // folds -0 into +0
			v = 0
		}
		text = strconv.FormatFloat(v, 'g', -1, 64)
	case dataset.KindTimestamp:
		text = strconv.FormatInt(c.Times[i].UnixNano(), 10)
	default:
		text = c.Text(i)
	}
	b.WriteByte('V')
	b.WriteString(strconv.Itoa(len(text)))
	b.WriteByte(':')
	b.WriteString(text)
}
