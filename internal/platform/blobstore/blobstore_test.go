package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FSStore {
	t.Helper()
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestFSStore_PutGetDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "7/abc/report.txt", []byte("file body"), "text/plain"))

	data, err := store.Get(ctx, "7/abc/report.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("file body"), data)

	require.NoError(t, store.Delete(ctx, "7/abc/report.txt"))
	_, err = store.Get(ctx, "7/abc/report.txt")
	assert.Error(t, err)
}

func TestFSStore_PutOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte("one"), ""))
	require.NoError(t, store.Put(ctx, "k", []byte("two"), ""))

	data, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)
}

func TestFSStore_RejectsEscapingKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFSStore(filepath.Join(dir, "blobs"))
	require.NoError(t, err)

	outside := filepath.Join(dir, "victim")
	require.NoError(t, os.WriteFile(outside, []byte("do not touch"), 0o644))

	ctx := context.Background()
	for _, key := range []string{"../victim", "a/../../victim", "/etc/passwd", "", "   ", "."} {
		assert.Error(t, store.Put(ctx, key, []byte("x"), ""), key)
		_, getErr := store.Get(ctx, key)
		assert.Error(t, getErr, key)
		assert.Error(t, store.Delete(ctx, key), key)
	}

	data, err := os.ReadFile(outside)
	require.NoError(t, err)
	assert.Equal(t, []byte("do not touch"), data)
}

func TestFSStore_DeleteMissingKey(t *testing.T) {
	store := newTestStore(t)
	assert.Error(t, store.Delete(context.Background(), "nope"))
}

func TestNewFSStore_EmptyRoot(t *testing.T) {
	_, err := NewFSStore("")
	assert.Error(t, err)
}
