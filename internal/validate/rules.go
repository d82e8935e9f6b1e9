// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package validate

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "value cannot be empty", value)
	}
}

// OneOf rejects values outside allowed. Matching is exact.
func OneOf[T ~string](v *Validator, field string, value T, allowed ...T) {
	if slices.Contains(allowed, value) {
		return
	}
	v.AddError(field, fmt.Sprintf("must be one of %v, got %q", allowed, string(value)), value)
}

func (v *Validator) Positive(field string, value int) {
	if value <= 0 {
		v.AddError(field, fmt.Sprintf("must be positive, got %d", value), value)
	}
}

func (v *Validator) NonNegative(field string, value int) {
	if value < 0 {
		v.AddError(field, fmt.Sprintf("cannot be negative, got %d", value), value)
	}
}

// Between checks lo <= value <= hi.
func (v *Validator) Between(field string, value, lo, hi int) {
	if value < lo || value > hi {
		v.AddError(field, fmt.Sprintf("must be between %d and %d, got %d", lo, hi, value), value)
	}
}

// Probability checks that p lies in [0, 1]. NaN is rejected.
func (v *Validator) Probability(field string, p float64) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		v.AddError(field, fmt.Sprintf("must be within [0, 1], got %v", p), p)
	}
}

// Probabilities requires a non-empty list of probabilities without repeats.
// Each offending element is reported as field[i].
func (v *Validator) Probabilities(field string, ps []float64) {
	if len(ps) == 0 {
		v.AddError(field, "at least one value is required", ps)
		return
	}
	seen := make(map[float64]bool, len(ps))
	for i, p := range ps {
		name := fmt.Sprintf("%s[%d]", field, i)
		v.Probability(name, p)
		if seen[p] {
			v.AddError(name, fmt.Sprintf("duplicate value %v", p), p)
		}
		seen[p] = true
	}
}

// Distinct rejects b when it names the same file as a.
func (v *Validator) Distinct(field, a, b string) {
	if a == "" || b == "" {
		return
	}
	if filepath.Clean(a) == filepath.Clean(b) {
		v.AddError(field, fmt.Sprintf("must differ from %s", a), b)
	}
}

// OutputDir accepts an existing directory or a path that can still be
// created. A regular file in the way is an error.
func (v *Validator) OutputDir(field, path string) {
	if strings.TrimSpace(path) == "" {
		v.AddError(field, "directory path cannot be empty", path)
		return
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return
	case err != nil:
		v.AddError(field, fmt.Sprintf("cannot access directory: %v", err), path)
	case !info.IsDir():
		v.AddError(field, "path exists and is not a directory", path)
	}
}
