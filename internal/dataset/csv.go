// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// naTokens are the cells read as null, matching the pandas defaults.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsNA reports whether a raw CSV cell is a null token.
func IsNA(s string) bool {
	_, ok := naTokens[strings.TrimSpace(s)]
	return ok
}

// TimeLayouts are tried in order when parsing timestamps from text.
var TimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006/01/02 15:04:05",
	"2006-01-02",
}

// ParseTime parses s with the first matching layout in TimeLayouts.
// Values without a zone are read as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range TimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func parseBool(s string) (bool, bool) {
	switch strings.TrimSpace(s) {
	case "True", "true", "TRUE":
		return true, true
	case "False", "false", "FALSE":
		return false, true
	}
	return false, false
}

// ReadCSVFile reads a CSV file with a header row.
func ReadCSVFile(path string) (*Table, error) {
	// #nosec G304 -- dataset paths come from the operator's env file
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return t, nil
}

// ReadCSV reads CSV with a header row and infers one kind per column:
// int, then float, then bool, then timestamp, else string. Null tokens do
// not take part in inference; an all-null column is float.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	body := records[1:]

	cols := make([]*Column, len(header))
	for j, name := range header {
		raw := make([]string, len(body))
		for i, rec := range body {
			raw[i] = rec[j]
		}
		cols[j] = buildColumn(strings.TrimSpace(name), raw)
	}
	return NewTable(cols...)
}

func buildColumn(name string, raw []string) *Column {
	kind := inferKind(raw)
	c := NewColumn(name, kind, "", len(raw))
	for _, s := range raw {
		if IsNA(s) {
			c.AppendNull()
			continue
		}
		s = strings.TrimSpace(s)
		switch kind {
		case KindInt:
			v, _ := strconv.ParseInt(s, 10, 64)
			c.AppendInt(v)
		case KindFloat:
			v, _ := strconv.ParseFloat(s, 64)
			c.AppendFloat(v)
		case KindBool:
			v, _ := parseBool(s)
			c.AppendBool(v)
		case KindTimestamp:
			v, _ := ParseTime(s)
			c.AppendTime(v)
		default:
			c.AppendString(s)
		}
	}
	return c
}

func inferKind(raw []string) Kind {
	allInt, allFloat, allBool, allTime := true, true, true, true
	seen := 0
	for _, s := range raw {
		if IsNA(s) {
			continue
		}
		seen++
		s = strings.TrimSpace(s)
		if allInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				allFloat = false
			}
		}
		if allBool {
			if _, ok := parseBool(s); !ok {
				allBool = false
			}
		}
		if allTime {
			if _, err := ParseTime(s); err != nil {
				allTime = false
			}
		}
		if !allInt && !allFloat && !allBool && !allTime {
			return KindString
		}
	}
	switch {
	case seen == 0:
		return KindFloat
	case allInt:
		return KindInt
	case allFloat:
		return KindFloat
	case allBool:
		return KindBool
	case allTime:
		return KindTimestamp
	default:
		return KindString
	}
}
