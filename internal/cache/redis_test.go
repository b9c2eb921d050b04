package cache

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T, name string) (*RedisCache, *mr.Miniredis) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	return NewRedisCache(client, name, time.Hour), m
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, _ := newTestRedisCache(t, "authors")
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

func TestRedisCacheEvictAllBumpsGeneration(t *testing.T) {
	c, m := newTestRedisCache(t, "documents")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, KeyAll, []entry{{Name: "T1"}}))
	require.NoError(t, c.EvictAll(ctx))

	var got []entry
	ok, err := c.Get(ctx, KeyAll, &got)
	require.NoError(t, err)
	assert.False(t, ok, "entries of the previous generation must be unreachable")

	// the old entry still physically exists until its TTL expires
	assert.True(t, m.Exists("dms:cache:documents:0:"+KeyAll))

	// new writes land in the new generation
	require.NoError(t, c.Set(ctx, KeyAll, []entry{{Name: "T2"}}))
	ok, err = c.Get(ctx, KeyAll, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "T2", got[0].Name)
}

func TestRedisCacheIndependentNames(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	authors := NewRedisCache(client, "authors", time.Hour)
	documents := NewRedisCache(client, "documents", time.Hour)
	ctx := context.Background()

	require.NoError(t, authors.Set(ctx, KeyAll, []entry{{Name: "Mary"}}))
	require.NoError(t, documents.Set(ctx, KeyAll, []entry{{Name: "T1"}}))

	require.NoError(t, authors.EvictAll(ctx))

	var got []entry
	ok, err := documents.Get(ctx, KeyAll, &got)
	require.NoError(t, err)
	assert.True(t, ok, "evicting one cache must not touch the other")
}
