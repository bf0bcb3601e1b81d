package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDatabase(t *testing.T) {
	dir := t.TempDir()

	database, err := openDatabase(filepath.Join(dir, "nested", "athena.db"))
	require.NoError(t, err)
	require.NoError(t, database.Close())

	// A regular file where the data directory should be.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	_, err = openDatabase(filepath.Join(blocker, "athena.db"))
	assert.ErrorContains(t, err, "failed to create data directory")
}
