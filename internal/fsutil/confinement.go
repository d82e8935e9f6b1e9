// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEscapesRoot is returned when a relative name resolves outside its root.
var ErrEscapesRoot = errors.New("path escapes root")

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ConfineRelPath resolves name, taken from a manifest line, against root
// and returns the physical path. The result must stay underneath root after
// symlinks are followed, so a crafted SHA256SUMS cannot point the hasher at
// files elsewhere on disk. name may refer to a file that does not exist yet.
func ConfineRelPath(root, name string) (string, error) {
	if strings.Contains(name, `\`) {
		return "", fmt.Errorf("manifest name contains backslash: %s", name)
	}
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("manifest name must be relative: %s", name)
	}
	if escapes(clean) {
		return "", fmt.Errorf("%w: %s", ErrEscapesRoot, name)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", root, err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	switch {
	case os.IsNotExist(err):
		return "", err
	case err != nil:
		realRoot = absRoot
	}

	target := filepath.Join(realRoot, clean)
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		target = resolved
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("resolve %s: %w", name, err)
	} else if dir, err := filepath.EvalSymlinks(filepath.Dir(target)); err == nil {
		target = filepath.Join(dir, filepath.Base(target))
	}

	rel, err := filepath.Rel(realRoot, target)
	if err != nil {
		return "", fmt.Errorf("relate %s to %s: %w", target, realRoot, err)
	}
	if escapes(rel) {
		return "", fmt.Errorf("%w via symlinks: %s", ErrEscapesRoot, target)
	}
	return target, nil
}

// IsRegularFile returns nil when path exists and is a plain file.
func IsRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}
	return nil
}

// RelWithin returns path relative to root, both made absolute first. It
// fails with ErrEscapesRoot when path is not underneath root. Symlinks are
// not followed.
func RelWithin(root, path string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", root, err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return "", fmt.Errorf("relate %s to %s: %w", absPath, absRoot, err)
	}
	if escapes(rel) {
		return "", fmt.Errorf("%w: %s is outside %s", ErrEscapesRoot, absPath, absRoot)
	}
	return rel, nil
}
