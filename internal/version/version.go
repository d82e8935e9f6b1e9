// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package version carries build information injected through ldflags.
package version

import "fmt"

var (
	// Version is the release of the tool, set with
	// -ldflags "-X github.com/ManuGH/cap5check/internal/version.Version=v1.2.0".
	Version = "dev"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// String renders the one-line version banner.
func String() string {
	return fmt.Sprintf("cap5check %s (commit %s, built %s)", Version, Commit, Date)
}
