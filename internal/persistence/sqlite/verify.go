// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
)

// Mode selects how thorough VerifyIntegrity is.
type Mode string

const (
	ModeQuick Mode = "quick" // PRAGMA quick_check
	ModeFull  Mode = "full"  // PRAGMA integrity_check, also validates indexes
)

// ParseMode accepts "quick" or "full".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeQuick, ModeFull:
		return m, nil
	}
	return "", fmt.Errorf("invalid integrity mode %q (want quick or full)", s)
}

func (m Mode) pragma() string {
	if m == ModeFull {
		return "PRAGMA integrity_check;"
	}
	return "PRAGMA quick_check;"
}

// VerifyIntegrity opens path read-only and runs the check selected by mode.
// A healthy file yields no issues; otherwise every diagnostic row is
// returned.
func VerifyIntegrity(ctx context.Context, path string, mode Mode) ([]string, error) {
	q := url.Values{}
	q.Set("mode", "ro")
	q.Add("_pragma", "busy_timeout(2000)")
	db, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s for verification: %w", path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, mode.pragma())
	if err != nil {
		return nil, fmt.Errorf("sqlite: %s check: %w", mode, err)
	}
	defer rows.Close()

	var issues []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("sqlite: scan %s check row: %w", mode, err)
		}
		if !strings.EqualFold(line, "ok") {
			issues = append(issues, line)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: %s check: %w", mode, err)
	}
	return issues, nil
}
