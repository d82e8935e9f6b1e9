// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ManuGH/cap5check/internal/log"
	"github.com/rs/zerolog"
)

// lookupEnv returns the parsed value of key, or def when the variable is
// unset, empty or unparseable. The chosen source is logged at debug level;
// a rejected value is logged as a warning.
func lookupEnv[T any](logger zerolog.Logger, key string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		logger.Debug().Str("key", key).Interface("default", def).Str("source", "default").Msg("using default value")
		return def
	}
	v, err := parse(strings.TrimSpace(raw))
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Str("value", raw).Interface("default", def).
			Msg("invalid value in environment variable, using default")
		return def
	}
	logger.Debug().Str("key", key).Interface("value", v).Str("source", "environment").Msg("using environment variable")
	return v
}

func configLogger() zerolog.Logger {
	return log.WithComponent("config")
}

// ParseString reads key from the environment, falling back to def.
func ParseString(key, def string) string {
	return lookupEnv(configLogger(), key, def, func(s string) (string, error) { return s, nil })
}

// ParseInt reads a base-10 integer.
func ParseInt(key string, def int) int {
	return lookupEnv(configLogger(), key, def, strconv.Atoi)
}

// ParseUint64 reads an unsigned integer such as a sampling seed.
func ParseUint64(key string, def uint64) uint64 {
	return lookupEnv(configLogger(), key, def, func(s string) (uint64, error) {
		return strconv.ParseUint(s, 10, 64)
	})
}

// ParseFloat reads a float64.
func ParseFloat(key string, def float64) float64 {
	return lookupEnv(configLogger(), key, def, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseBool accepts true/false, 1/0 and yes/no in any case.
func ParseBool(key string, def bool) bool {
	return lookupEnv(configLogger(), key, def, parseBool)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}
