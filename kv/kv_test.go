package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "a:1", []byte("one")))
	require.NoError(t, s.Set(ctx, "a:2", []byte("two")))
	require.NoError(t, s.Set(ctx, "b:1", []byte("three")))

	v, ok, err := s.Get(ctx, "a:1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("one"), v)

	// Overwrite replaces, never merges.
	require.NoError(t, s.Set(ctx, "a:1", []byte("uno")))
	v, _, err = s.Get(ctx, "a:1")
	require.NoError(t, err)
	require.Equal(t, []byte("uno"), v)

	keys, err := s.ListKeys(ctx, "a:")
	require.NoError(t, err)
	require.Equal(t, []string{"a:1", "a:2"}, keys)

	require.NoError(t, s.Delete(ctx, "a:1"))
	_, ok, err = s.Get(ctx, "a:1")
	require.NoError(t, err)
	require.False(t, ok)

	// Deleting an absent key is a no-op.
	require.NoError(t, s.Delete(ctx, "a:1"))
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	testStoreContract(t, s)
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "conv:r1", []byte("payload")))
	require.NoError(t, s.Close())

	s2, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	v, ok, err := s2.Get(ctx, "conv:r1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), v)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	buf := []byte("orig")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'X'

	v, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("orig"), v)
}
