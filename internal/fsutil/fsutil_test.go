// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fsutil

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfineRelPath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "meteo.csv"), []byte("a"), 0o600))
	require.NoError(t, os.Symlink("..", filepath.Join(root, "up")))

	got, err := ConfineRelPath(root, "meteo.csv")
	require.NoError(t, err)
	assert.Equal(t, "meteo.csv", filepath.Base(got))

	_, err = ConfineRelPath(root, "not-yet.parquet")
	require.NoError(t, err, "missing files inside root are allowed")

	for _, bad := range []string{"../secret", "up/secret", "/etc/passwd", `a\b`} {
		_, err := ConfineRelPath(root, bad)
		assert.Error(t, err, bad)
	}

	_, err = ConfineRelPath(root, "../x")
	assert.ErrorIs(t, err, ErrEscapesRoot)
}

func TestIsRegularFile(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, IsRegularFile(dir))
	f := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(f, nil, 0o600))
	assert.NoError(t, IsRegularFile(f))
}

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")

	require.NoError(t, WriteFileAtomic(context.Background(), path, []byte("a,b\n")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	// a failed write leaves the previous content in place
	boom := errors.New("boom")
	err = WriteAtomic(context.Background(), path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be cleaned up")
}

func TestRequireFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.csv")

	err := RequireFile(path)
	assert.ErrorIs(t, err, ErrInputNotFound)
	assert.False(t, Exists(path))

	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o600))
	assert.NoError(t, RequireFile(path))
	assert.True(t, Exists(path))

	assert.Error(t, RequireFile(dir))
	assert.False(t, errors.Is(RequireFile(dir), ErrInputNotFound))
}
