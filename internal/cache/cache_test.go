package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	c := New(true)
	payload := []byte(`{"fajr":"04:55"}`)

	etag := c.Set("prayer:13.756:100.502:2026-09-01", payload, time.Minute)
	require.NotEmpty(t, etag)

	data, gotETag, ok := c.Get("prayer:13.756:100.502:2026-09-01")
	require.True(t, ok)
	assert.Equal(t, payload, data)
	assert.Equal(t, etag, gotETag)
}

func TestGetMiss(t *testing.T) {
	c := New(true)
	_, _, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestExpiredEntryIsAMiss(t *testing.T) {
	c := New(true)
	c.Set("k", []byte("v"), -time.Second)
	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDisabledCacheIsNoOp(t *testing.T) {
	c := New(false)
	etag := c.Set("k", []byte("v"), time.Minute)
	assert.NotEmpty(t, etag, "ETag is still computed for conditional responses")
	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestEvictRemovesExpired(t *testing.T) {
	c := New(true)
	c.Set("live", []byte("a"), time.Minute)
	c.Set("dead", []byte("b"), -time.Second)

	c.evict()

	stats := c.Stats()
	assert.Equal(t, 1, stats["total_keys"])
	assert.Equal(t, 1, stats["active_keys"])
}

func TestETag(t *testing.T) {
	a := ComputeETag([]byte("payload"))
	b := ComputeETag([]byte("payload"))
	other := ComputeETag([]byte("different"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, other)
	assert.Contains(t, a, `W/"`)

	assert.True(t, CheckETagMatch(a, a))
	assert.True(t, CheckETagMatch("*", a))
	assert.False(t, CheckETagMatch("", a))
	assert.False(t, CheckETagMatch(other, a))
}
