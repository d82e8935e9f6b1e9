// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package checksum

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ManuGH/cap5check/internal/fsutil"
)

var (
	// ErrMalformedManifest is returned for lines that are not "<hex>  <name>".
	ErrMalformedManifest = errors.New("malformed manifest line")

	// ErrChecksumMismatch is returned when at least one entry does not verify.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Entry is one manifest line.
type Entry struct {
	Sum    string `json:"sha256"`
	Name   string `json:"name"`
	Binary bool   `json:"binary,omitempty"`
}

// Manifest is an ordered list of entries.
type Manifest struct {
	Entries []Entry
}

// Lookup returns the entry for name.
func (m Manifest) Lookup(name string) (Entry, bool) {
	for _, e := range m.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Parse reads a manifest. Blank lines and '#' comments are skipped.
func Parse(r io.Reader) (Manifest, error) {
	var m Manifest
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		e, err := parseLine(line)
		if err != nil {
			return Manifest{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
		m.Entries = append(m.Entries, e)
	}
	if err := sc.Err(); err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return m, nil
}

func parseLine(line string) (Entry, error) {
	sum, rest, ok := strings.Cut(line, " ")
	if !ok || len(sum) != 64 || !isHex(sum) {
		return Entry{}, fmt.Errorf("%w: %q", ErrMalformedManifest, line)
	}
	e := Entry{Sum: strings.ToLower(sum)}
	switch {
	case strings.HasPrefix(rest, "*"):
		e.Binary = true
		rest = rest[1:]
	case strings.HasPrefix(rest, " "):
		rest = rest[1:]
	}
	e.Name = strings.TrimSpace(rest)
	if e.Name == "" {
		return Entry{}, fmt.Errorf("%w: missing file name", ErrMalformedManifest)
	}
	return e, nil
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// ReadManifest parses the manifest file at path.
func ReadManifest(path string) (Manifest, error) {
	// #nosec G304 -- manifest path comes from the operator's env file
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Format renders entries sorted by name in "<hex>  <name>" form.
func Format(m Manifest) []byte {
	entries := append([]Entry(nil), m.Entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	var buf bytes.Buffer
	for _, e := range entries {
		sep := "  "
		if e.Binary {
			sep = " *"
		}
		fmt.Fprintf(&buf, "%s%s%s\n", e.Sum, sep, e.Name)
	}
	return buf.Bytes()
}

// Build hashes files and returns a manifest naming them relative to dir.
// Every file must lie underneath dir, otherwise the manifest could not be
// verified later; such files fail with fsutil.ErrEscapesRoot before any
// hashing starts.
func Build(ctx context.Context, dir string, files []string) (Manifest, error) {
	names := make([]string, len(files))
	for i, f := range files {
		rel, err := fsutil.RelWithin(dir, f)
		if err != nil {
			return Manifest{}, fmt.Errorf("manifest entry for %s: %w", f, err)
		}
		names[i] = filepath.ToSlash(rel)
	}
	sums, err := HashAll(ctx, files)
	if err != nil {
		return Manifest{}, err
	}
	m := Manifest{Entries: make([]Entry, 0, len(files))}
	for i := range files {
		m.Entries = append(m.Entries, Entry{Sum: sums[i], Name: names[i]})
	}
	return m, nil
}

// WriteManifest builds a manifest for files and writes it atomically to path.
// Entries are named relative to the manifest's directory.
func WriteManifest(ctx context.Context, path string, files []string) (Manifest, error) {
	m, err := Build(ctx, filepath.Dir(path), files)
	if err != nil {
		return Manifest{}, err
	}
	if err := fsutil.WriteFileAtomic(ctx, path, Format(m)); err != nil {
		return Manifest{}, err
	}
	return m, nil
}
