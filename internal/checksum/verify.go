// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package checksum

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"

	"github.com/ManuGH/cap5check/internal/fsutil"
	"golang.org/x/sync/errgroup"
)

// Status is the verification outcome of one file.
type Status string

const (
	StatusOK       Status = "OK"
	StatusFailed   Status = "FAILED"
	StatusMissing  Status = "MISSING"
	StatusUnlisted Status = "UNLISTED"
	// StatusInvalid marks an entry naming a path outside the manifest
	// directory. It is never hashed.
	StatusInvalid Status = "INVALID"
)

// Result is the verification outcome of one manifest entry or input file.
type Result struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Status   Status `json:"status"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Report aggregates the results of one verification.
type Report struct {
	Manifest string   `json:"manifest"`
	Present  bool     `json:"present"`
	Results  []Result `json:"results"`
}

// Counts returns the number of results per status.
func (r Report) Counts() map[Status]int {
	out := make(map[Status]int, 4)
	for _, res := range r.Results {
		out[res.Status]++
	}
	return out
}

// OK reports whether every listed entry verified.
func (r Report) OK() bool {
	c := r.Counts()
	return c[StatusFailed] == 0 && c[StatusMissing] == 0 && c[StatusInvalid] == 0
}

// Err returns ErrChecksumMismatch when the report is not OK.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	c := r.Counts()
	return fmt.Errorf("%w: %d failed, %d missing, %d invalid (%s)",
		ErrChecksumMismatch, c[StatusFailed], c[StatusMissing], c[StatusInvalid], r.Manifest)
}

// HashAll hashes files concurrently, preserving order.
func HashAll(ctx context.Context, files []string) ([]string, error) {
	sums := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		g.Go(func() error {
			sum, err := SHA256File(ctx, f)
			if err != nil {
				return fmt.Errorf("hash %s: %w", f, err)
			}
			sums[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sums, nil
}

// Verify checks every manifest entry against the file it names, resolved
// relative to the manifest directory. Inputs that exist but are absent from
// the manifest are reported as UNLISTED. A missing manifest yields an empty
// report with Present=false.
func Verify(ctx context.Context, manifestPath string, inputs ...string) (Report, error) {
	return VerifyKnown(ctx, manifestPath, nil, inputs...)
}

// VerifyKnown is Verify with sums already computed for some files, keyed by
// file path. Entries resolving to one of those files are not hashed again.
func VerifyKnown(ctx context.Context, manifestPath string, known map[string]string, inputs ...string) (Report, error) {
	rep := Report{Manifest: manifestPath}

	m, err := ReadManifest(manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rep, nil
		}
		return rep, err
	}
	rep.Present = true
	root := filepath.Dir(manifestPath)

	cached := make(map[string]string, len(known))
	for p, sum := range known {
		cached[resolve(p)] = sum
	}

	results := make([]Result, len(m.Entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, e := range m.Entries {
		res := Result{Name: e.Name, Expected: e.Sum}
		path, err := fsutil.ConfineRelPath(root, filepath.FromSlash(e.Name))
		if err != nil {
			res.Status, res.Detail = StatusInvalid, err.Error()
			results[i] = res
			continue
		}
		res.Path = path

		g.Go(func() error {
			sum, ok := cached[resolve(path)]
			var err error
			if !ok {
				sum, err = SHA256File(gctx, path)
			}
			switch {
			case errors.Is(err, fs.ErrNotExist):
				res.Status = StatusMissing
			case err != nil:
				return fmt.Errorf("hash %s: %w", path, err)
			case sum == e.Sum:
				res.Status, res.Actual = StatusOK, sum
			default:
				res.Status, res.Actual = StatusFailed, sum
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}
	rep.Results = results

	for _, in := range inputs {
		if in == "" {
			continue
		}
		if err := fsutil.IsRegularFile(in); err != nil {
			continue
		}
		if listed(rep.Results, in) {
			continue
		}
		rep.Results = append(rep.Results, Result{
			Name:   filepath.Base(in),
			Path:   resolve(in),
			Status: StatusUnlisted,
		})
	}
	return rep, nil
}

// resolve returns the absolute, symlink-free form of path, or the best
// approximation when it does not exist.
func resolve(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

func listed(results []Result, path string) bool {
	want := resolve(path)
	for _, r := range results {
		if r.Path != "" && r.Path == want {
			return true
		}
	}
	return false
}
