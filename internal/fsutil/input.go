// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrInputNotFound is returned when a required dataset input is absent.
var ErrInputNotFound = errors.New("input not found")

// RequireFile fails with ErrInputNotFound when path does not exist and
// rejects anything that is not a regular file.
func RequireFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}
	return IsRegularFile(path)
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	return IsRegularFile(path) == nil
}
