// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package validate

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Probability(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"one", 1, false},
		{"middle", 0.95, false},
		{"negative", -0.01, true},
		{"above one", 1.5, true},
		{"nan", math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Probability("q", tt.value)
			assert.Equal(t, tt.wantErr, !v.IsValid(), "err=%v", v.Err())
		})
	}
}

func TestValidator_Probabilities(t *testing.T) {
	v := New()
	v.Probabilities("quantiles", []float64{0.05, 0.95, 0.05, 2})

	require.Len(t, v.Errors(), 2)
	assert.Equal(t, "quantiles[2]", v.Errors()[0].Field)
	assert.Equal(t, "quantiles[3]", v.Errors()[1].Field)

	v = New()
	v.Probabilities("quantiles", nil)
	require.Len(t, v.Errors(), 1)
	assert.Equal(t, "quantiles", v.Errors()[0].Field)
}

func TestValidator_OutputDir(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"existing dir", tmp, false},
		{"created later", filepath.Join(tmp, "saida", "xiv"), false},
		{"file in the way", file, true},
		{"blank", "  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.OutputDir("CAP5_XIV_OUTDIR", tt.path)
			assert.Equal(t, tt.wantErr, !v.IsValid(), "err=%v", v.Err())
		})
	}
}

func TestValidator_Distinct(t *testing.T) {
	v := New()
	v.Distinct("csv", "dados/meteo.parquet", "dados/./meteo.parquet")
	v.Distinct("csv", "dados/meteo.parquet", "")
	v.Distinct("csv", "dados/meteo.parquet", "dados/meteo.csv")
	assert.Len(t, v.Errors(), 1)
}

func TestValidationError_Aggregates(t *testing.T) {
	v := New()
	v.NotEmpty("a", " ")
	v.Positive("b", 0)
	OneOf(v, "c", "xml", "csv", "tsv")

	err := v.Err()
	require.Error(t, err)

	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Errors(), 3)
	assert.Contains(t, err.Error(), "3 problems")
	assert.Contains(t, err.Error(), `got "xml"`)

	// Err hands out a copy.
	v.AddError("d", "late", nil)
	assert.Len(t, verr.Errors(), 3)
}

func TestValidator_ErrNilWhenValid(t *testing.T) {
	v := New()
	v.Between("bins", 50, 1, 1000)
	v.NonNegative("seed", 0)
	OneOf(v, "format", "svg", "png", "svg")
	assert.NoError(t, v.Err())
}

func TestLogLevels(t *testing.T) {
	assert.Equal(t, []LogLevel{"debug", "info", "warn", "error"}, LogLevels())
	assert.True(t, LogLevel("warn").IsValid())
	assert.False(t, LogLevel("trace").IsValid())
	assert.False(t, LogLevel("WARN").IsValid())
}
