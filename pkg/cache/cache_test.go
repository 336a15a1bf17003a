package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSetDelete(t *testing.T) {
	c := NewMemoryCache(nil)
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrKeyNotFound))

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, 0))
	b, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.Error(t, err)
}

func TestMemoryCache_ListOps(t *testing.T) {
	c := NewMemoryCache(nil)
	ctx := context.Background()

	require.NoError(t, c.LPush(ctx, "idx", "a"))
	require.NoError(t, c.LPush(ctx, "idx", "b"))
	require.NoError(t, c.LPush(ctx, "idx", "c"))

	// Most recent first.
	vals, err := c.LRange(ctx, "idx", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, vals)

	n, err := c.LLen(ctx, "idx")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.NoError(t, c.LTrim(ctx, "idx", 0, 1))
	vals, _ = c.LRange(ctx, "idx", 0, -1)
	assert.Equal(t, []string{"c", "b"}, vals)
}

func TestMemoryCache_RangeBounds(t *testing.T) {
	c := NewMemoryCache(nil)
	ctx := context.Background()

	vals, err := c.LRange(ctx, "empty", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, vals)

	require.NoError(t, c.LPush(ctx, "one", "x"))
	vals, err = c.LRange(ctx, "one", 0, 99)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, vals)
}
