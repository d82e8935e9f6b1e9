// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "errors"

var (
	// ErrEnvFileNotFound is returned when the paths env file does not exist.
	ErrEnvFileNotFound = errors.New("env file not found")

	// ErrMissingKey is returned when a required key is absent from both the
	// process environment and the env file.
	ErrMissingKey = errors.New("required key missing")

	// ErrUnknownConfigField classifies strict settings parse failures caused by unknown keys.
	// Use errors.Is(err, ErrUnknownConfigField) instead of string matching.
	ErrUnknownConfigField = errors.New("unknown config field")

	// ErrConfigExists is returned by WriteTemplate when it would overwrite a file.
	ErrConfigExists = errors.New("config already exists")
)
