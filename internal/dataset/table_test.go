// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_Ragged(t *testing.T) {
	a := NewColumn("a", KindInt, "", 2)
	a.AppendInt(1)
	a.AppendInt(2)
	b := NewColumn("b", KindInt, "", 1)
	b.AppendInt(1)

	_, err := NewTable(a, b)
	assert.ErrorIs(t, err, ErrRaggedTable)
}

func TestColumn_NaNIsNull(t *testing.T) {
	c := NewColumn("x", KindFloat, "DOUBLE", 2)
	c.AppendFloat(math.NaN())
	c.AppendFloat(1.5)

	assert.Equal(t, 1, c.NullCount())
	_, ok := c.Float(0)
	assert.False(t, ok)
	assert.Equal(t, "DOUBLE", c.DType)
}

func TestTable_TakeAndNumeric(t *testing.T) {
	n := NewColumn("n", KindInt, "", 3)
	s := NewColumn("s", KindString, "", 3)
	for i, v := range []string{"a", "b", "c"} {
		n.AppendInt(int64(i))
		s.AppendString(v)
	}
	n.Valid[1] = false

	tbl, err := NewTable(n, s)
	require.NoError(t, err)

	got := tbl.Take([]int{2, 1, 0})
	assert.Equal(t, []string{"2", "c"}, got.Row(0))
	assert.Equal(t, []string{"", "b"}, got.Row(1))
	assert.Len(t, tbl.NumericColumns(), 1)
	assert.Greater(t, tbl.MemoryBytes(), int64(0))

	_, err = tbl.Column("missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}
