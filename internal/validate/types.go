// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package validate

import (
	"slices"

	"github.com/rs/zerolog"
)

// LogLevel is a level name accepted by the log_level setting.
type LogLevel string

// LogLevels lists the accepted names, most verbose first.
func LogLevels() []LogLevel {
	levels := []zerolog.Level{zerolog.DebugLevel, zerolog.InfoLevel, zerolog.WarnLevel, zerolog.ErrorLevel}
	out := make([]LogLevel, len(levels))
	for i, l := range levels {
		out[i] = LogLevel(l.String())
	}
	return out
}

// IsValid reports whether l is one of LogLevels.
func (l LogLevel) IsValid() bool {
	return slices.Contains(LogLevels(), l)
}
