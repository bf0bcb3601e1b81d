package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestDatabase_KV(t *testing.T) {
	database := openTestDB(t)

	_, ok, err := database.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, database.Set("athena_mode", "mean"))
	require.NoError(t, database.Set("athena_mode", "nice"))

	v, ok, err := database.Get("athena_mode")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "nice", v)

	require.NoError(t, database.Delete("athena_mode"))
	_, ok, err = database.Get("athena_mode")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDatabase_Memory(t *testing.T) {
	database := openTestDB(t)

	for _, turn := range []Turn{
		{SessionID: "a", Role: "user", Content: "hi"},
		{SessionID: "a", Role: "assistant", Content: "what now"},
		{SessionID: "b", Role: "user", Content: "other"},
	} {
		turn := turn
		require.NoError(t, database.SaveMessage(&turn))
		assert.NotZero(t, turn.ID)
	}

	turns, err := database.LoadMessages("a")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "hi", turns[0].Content)
	assert.Equal(t, "assistant", turns[1].Role)

	n, err := database.ResetMemory("a")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = database.ResetMemory("")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set("k", "v"))
	v, ok, _ := kv.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	require.NoError(t, kv.Delete("k"))
	_, ok, _ = kv.Get("k")
	assert.False(t, ok)
}
