// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// ReadEnvFile parses a KEY=VALUE file. Blank lines, comments and lines
// without '=' are skipped.
func ReadEnvFile(path string) (map[string]string, error) {
	// #nosec G304 -- the env file path is provided by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrEnvFileNotFound, path)
		}
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return ParseEnv(string(data))
}

// ParseEnv parses env file content.
func ParseEnv(content string) (map[string]string, error) {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if !strings.Contains(trimmed, "=") {
			continue
		}
		kept = append(kept, trimmed)
	}
	env, err := godotenv.Unmarshal(strings.Join(kept, "\n"))
	if err != nil {
		return nil, fmt.Errorf("parse env file: %w", err)
	}
	for k, v := range env {
		env[k] = strings.TrimSpace(v)
	}
	return env, nil
}

// RepoRootFor returns the repository root implied by the env file location:
// the parent of a configs/ directory, or the file's own directory otherwise.
func RepoRootFor(envFile string) string {
	abs, err := filepath.Abs(envFile)
	if err != nil {
		abs = envFile
	}
	dir := filepath.Dir(abs)
	if filepath.Base(dir) == "configs" {
		return filepath.Dir(dir)
	}
	return dir
}

func resolvePath(root, p string) string {
	if p == "" {
		return ""
	}
	p = os.ExpandEnv(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
