package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCacheTest(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

type page struct {
	Captions []string `json:"captions"`
}

func TestAside(t *testing.T) {
	ctx := context.Background()

	t.Run("miss loads and stores", func(t *testing.T) {
		mr := setupCacheTest(t)

		loads := 0
		var got page
		err := Aside(ctx, FeedPageKey(1, 0), &got, FeedTTL, func() error {
			loads++
			got = page{Captions: []string{"first"}}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, loads)
		assert.Equal(t, []string{"first"}, got.Captions)
		assert.True(t, mr.Exists("posts:feed:1:0"))

		// Hit skips the loader.
		var again page
		err = Aside(ctx, FeedPageKey(1, 0), &again, FeedTTL, func() error {
			loads++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, loads)
		assert.Equal(t, got, again)
	})

	t.Run("corrupt entry reloads", func(t *testing.T) {
		mr := setupCacheTest(t)
		require.NoError(t, mr.Set("posts:feed:1:0", "{not json"))

		var got page
		err := Aside(ctx, FeedPageKey(1, 0), &got, FeedTTL, func() error {
			got = page{Captions: []string{"fresh"}}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"fresh"}, got.Captions)
	})

	t.Run("no client falls through to the loader", func(t *testing.T) {
		SetClient(nil)
		var got page
		err := Aside(ctx, FeedPageKey(1, 0), &got, FeedTTL, func() error {
			got = page{Captions: []string{"direct"}}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"direct"}, got.Captions)
	})

	t.Run("entries expire", func(t *testing.T) {
		mr := setupCacheTest(t)

		var got page
		require.NoError(t, Aside(ctx, PostKey(9), &got, PostTTL, func() error {
			got = page{Captions: []string{"ttl"}}
			return nil
		}))

		mr.FastForward(PostTTL + time.Second)
		assert.False(t, mr.Exists("posts:single:9"))
	})
}

func TestInvalidatePosts(t *testing.T) {
	ctx := context.Background()
	mr := setupCacheTest(t)

	rdb := GetClient()
	require.NoError(t, rdb.Set(ctx, FeedPageKey(1, 0), "x", 0).Err())
	require.NoError(t, rdb.Set(ctx, HashtagPageKey("corgi", 0), "x", 0).Err())
	require.NoError(t, rdb.Set(ctx, PostKey(5), "x", 0).Err())
	require.NoError(t, rdb.Set(ctx, "ws_ticket:abc", "7", 0).Err())

	InvalidatePosts(ctx)

	assert.False(t, mr.Exists("posts:feed:1:0"))
	assert.False(t, mr.Exists("posts:hashtag:corgi:0"))
	assert.False(t, mr.Exists("posts:single:5"))
	assert.True(t, mr.Exists("ws_ticket:abc"))
}
