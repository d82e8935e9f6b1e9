// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadSettings reads a settings file on top of the defaults. YAML is parsed
// strictly; TOML rejects undecoded keys the same way.
func LoadSettings(path string, base Settings) (Settings, error) {
	path = filepath.Clean(path)
	// #nosec G304 -- settings path is provided by the operator via env file
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read settings: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return decodeYAML(data, base)
	case ".toml":
		return decodeTOML(data, base)
	default:
		return base, fmt.Errorf("unsupported settings format: %s (yaml or toml)", ext)
	}
}

func decodeYAML(data []byte, base Settings) (Settings, error) {
	out := base
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return base, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return base, fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return base, fmt.Errorf("strict settings parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("settings file contains multiple documents or trailing content")
	}
	return out, nil
}

func decodeTOML(data []byte, base Settings) (Settings, error) {
	out := base
	md, err := toml.Decode(string(data), &out)
	if err != nil {
		return base, fmt.Errorf("strict settings parse error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return base, fmt.Errorf("%w: %s", ErrUnknownConfigField, strings.Join(keys, ", "))
	}
	return out, nil
}
