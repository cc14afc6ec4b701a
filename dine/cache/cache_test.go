package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tabletalk/tabletalk-go/kv"
)

func newTestCache() (*ResponseCache, *time.Time) {
	c := New(kv.NewMemoryStore())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestPutGetRoundtrip(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	_, ok := c.Get(ctx, "r1", "why-this-table")
	require.False(t, ok)

	require.NoError(t, c.Put(ctx, "r1", "why-this-table", "great pasta"))

	v, ok := c.Get(ctx, "r1", "why-this-table")
	require.True(t, ok)
	require.Equal(t, "great pasta", v)
}

func TestPutOverwrites(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "r1", "why-this-table", "old"))
	require.NoError(t, c.Put(ctx, "r1", "why-this-table", "new"))

	v, ok := c.Get(ctx, "r1", "why-this-table")
	require.True(t, ok)
	require.Equal(t, "new", v)
}

func TestKindsAreSeparateNamespaces(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "r1", "why-this-table", "a"))
	require.NoError(t, c.Put(ctx, "r1", "table-starter-invite", "b"))

	v, _ := c.Get(ctx, "r1", "why-this-table")
	require.Equal(t, "a", v)
	v, _ = c.Get(ctx, "r1", "table-starter-invite")
	require.Equal(t, "b", v)
}

func TestTTLBoundary(t *testing.T) {
	c, now := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "r1", "why-this-table", "fresh"))

	// Just inside the TTL: still served.
	*now = now.Add(TTL - time.Second)
	v, ok := c.Get(ctx, "r1", "why-this-table")
	require.True(t, ok)
	require.Equal(t, "fresh", v)

	// Just past the TTL: absent, and the stale record is purged.
	*now = now.Add(2 * time.Second)
	_, ok = c.Get(ctx, "r1", "why-this-table")
	require.False(t, ok)

	// Rewind the clock: the entry must be gone, not merely hidden.
	*now = now.Add(-TTL)
	_, ok = c.Get(ctx, "r1", "why-this-table")
	require.False(t, ok)
}

func TestClearEntity(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "r1", "why-this-table", "a"))
	require.NoError(t, c.Put(ctx, "r1", "table-starter-invite", "b"))
	require.NoError(t, c.Put(ctx, "r2", "why-this-table", "c"))

	require.NoError(t, c.ClearEntity(ctx, "r1"))

	_, ok := c.Get(ctx, "r1", "why-this-table")
	require.False(t, ok)
	_, ok = c.Get(ctx, "r1", "table-starter-invite")
	require.False(t, ok)

	v, ok := c.Get(ctx, "r2", "why-this-table")
	require.True(t, ok)
	require.Equal(t, "c", v)
}

func TestClearAll(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "r1", "why-this-table", "a"))
	require.NoError(t, c.Put(ctx, "r2", "plan-copilot:draft-invite", "b"))

	require.NoError(t, c.ClearAll(ctx))

	_, ok := c.Get(ctx, "r1", "why-this-table")
	require.False(t, ok)
	_, ok = c.Get(ctx, "r2", "plan-copilot:draft-invite")
	require.False(t, ok)
}

func TestUndecodableEntryPurged(t *testing.T) {
	store := kv.NewMemoryStore()
	c := New(store)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "aicache:r1:why-this-table", []byte("not json")))

	_, ok := c.Get(ctx, "r1", "why-this-table")
	require.False(t, ok)

	_, present, err := store.Get(ctx, "aicache:r1:why-this-table")
	require.NoError(t, err)
	require.False(t, present)
}
