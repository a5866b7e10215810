package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	Name string `json:"name"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return New(client), mr
}

func TestAside_MissThenHit(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	loads := 0
	load := func(dst *cachedThing) func() error {
		return func() error {
			loads++
			dst.Name = "alpha"
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, c.Aside(ctx, "post", PostKey("p1"), &first, PostTTL, load(&first)))
	var second cachedThing
	require.NoError(t, c.Aside(ctx, "post", PostKey("p1"), &second, PostTTL, load(&second)))

	assert.Equal(t, 1, loads)
	assert.Equal(t, "alpha", second.Name)
	assert.True(t, mr.Exists("post:p1"))
	assert.Equal(t, PostTTL, mr.TTL("post:p1"))
}

func TestAside_LoadErrorNotCached(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("boom")

	var dst cachedThing
	err := c.Aside(context.Background(), "user", UserKey("u1"), &dst, UserTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("user:u1"))
}

func TestAside_CorruptEntryReloaded(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("post:p2", "{not json"))

	var dst cachedThing
	err := c.Aside(context.Background(), "post", PostKey("p2"), &dst, PostTTL, func() error {
		dst.Name = "fresh"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", dst.Name)

	got, err := mr.Get("post:p2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"fresh"}`, got)
}

func TestInvalidate(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("post:p1", "{}"))
	require.NoError(t, mr.Set("user:u1", "{}"))

	c.Invalidate(context.Background(), PostKey("p1"), UserKey("u1"))

	assert.False(t, mr.Exists("post:p1"))
	assert.False(t, mr.Exists("user:u1"))

	gen, err := mr.Get("gen:post:p1")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)
	assert.Equal(t, GenerationTTL, mr.TTL("gen:user:u1"))
}

func TestAside_InvalidateDuringLoadSkipsWrite(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var dst cachedThing
	err := c.Aside(ctx, "post", PostKey("p1"), &dst, PostTTL, func() error {
		dst.Name = "deleted"
		c.Invalidate(ctx, PostKey("p1"))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "deleted", dst.Name)
	assert.False(t, mr.Exists("post:p1"), "value loaded before the invalidation must not be cached")

	var next cachedThing
	require.NoError(t, c.Aside(ctx, "post", PostKey("p1"), &next, PostTTL, func() error {
		next.Name = "fresh"
		return nil
	}))
	got, err := mr.Get("post:p1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"fresh"}`, got)
}

func TestNilCacheIsPassThrough(t *testing.T) {
	var c *Cache
	called := false
	var dst cachedThing
	require.NoError(t, c.Aside(context.Background(), "post", "k", &dst, PostTTL, func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
	c.Invalidate(context.Background(), "k")
	assert.Nil(t, c.Client())
}

func TestNewClient_URL(t *testing.T) {
	client, err := NewClient("redis://localhost:6390/2")
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, "localhost:6390", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)

	_, err = NewClient("redis://%zz")
	assert.Error(t, err)
}

func TestInitRedis_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()
	assert.Nil(t, InitRedis(addr))
}
