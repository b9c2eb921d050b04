package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name string `json:"name"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache("authors")
	ctx := context.Background()

	var got entry
	ok, err := c.Get(ctx, KeyID(1), &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, KeyID(1), entry{Name: "Mary"}))
	ok, err = c.Get(ctx, KeyID(1), &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Mary", got.Name)
}

func TestMemoryCacheEvictAll(t *testing.T) {
	c := NewMemoryCache("authors")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, KeyID(1), entry{Name: "Mary"}))
	require.NoError(t, c.Set(ctx, KeyAll, []entry{{Name: "Mary"}}))
	require.Equal(t, 2, c.Len())

	require.NoError(t, c.EvictAll(ctx))
	assert.Equal(t, 0, c.Len())

	var got entry
	ok, err := c.Get(ctx, KeyID(1), &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheDoesNotAliasValues(t *testing.T) {
	c := NewMemoryCache("documents")
	ctx := context.Background()

	v := entry{Name: "before"}
	require.NoError(t, c.Set(ctx, KeyID(1), v))
	v.Name = "after"

	var got entry
	ok, err := c.Get(ctx, KeyID(1), &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "before", got.Name)
}

func TestSweeperEvictsAllCaches(t *testing.T) {
	authors := NewMemoryCache("authors")
	documents := NewMemoryCache("documents")
	ctx := context.Background()

	require.NoError(t, authors.Set(ctx, KeyAll, []entry{{Name: "Mary"}}))
	require.NoError(t, documents.Set(ctx, KeyAll, []entry{{Name: "T1"}}))

	s := NewSweeper(10*time.Millisecond, authors, documents)
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return authors.Len() == 0 && documents.Len() == 0
	}, time.Second, 5*time.Millisecond, "sweeper should evict both caches")
}
