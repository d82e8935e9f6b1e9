// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContext_AddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	ctx := ContextWithRun(context.Background(), Run{ID: "20170101_000000", UUID: "abc"})
	enriched := WithContext(ctx, l)
	enriched.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "20170101_000000", entry[FieldRunID])
	assert.Equal(t, "abc", entry[FieldRunUUID])
	_, hasCommand := entry[FieldCommand]
	assert.False(t, hasCommand, "empty fields are skipped")
}

func TestWithContext_NoFields(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	ctxLogger := WithContext(context.Background(), l)
	ctxLogger.Info().Msg("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, ok := entry[FieldRunID]
	assert.False(t, ok)
}

func TestRunFromContext(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	_, ok := RunFromContext(nil)
	assert.False(t, ok)

	want := Run{ID: "20170101_000000", Command: "validate"}
	got, ok := RunFromContext(ContextWithRun(context.Background(), want))
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestReconfigure_Tee(t *testing.T) {
	var console, file bytes.Buffer
	Reconfigure(Config{Level: "info", Output: Tee(&console, &file), Version: "test"})
	t.Cleanup(func() { Reconfigure(Config{Level: "info"}) })

	teeLogger := WithComponent("tee")
	teeLogger.Info().Str(FieldEvent, "tee.check").Msg("both")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
	assert.Equal(t, "tee", entry[FieldComponent])
	assert.Equal(t, "test", entry["version"])
	assert.Contains(t, console.String(), "both")
}
