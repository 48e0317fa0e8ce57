package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeopardy-ctf/scoring-api/internal/config"
)

type board struct {
	EventID string `json:"event_id"`
	Rows    []int  `json:"rows"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, ttl), mr
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	c, _ := newTestCache(t, 15*time.Second)
	ctx := context.Background()
	key := EventBoardKey("ev1", "individual")

	var got board
	hit, err := c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, key, board{EventID: "ev1", Rows: []int{3, 2, 1}}))

	hit, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, board{EventID: "ev1", Rows: []int{3, 2, 1}}, got)

	require.NoError(t, c.Delete(ctx, key))
	hit, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCache_Expires(t *testing.T) {
	c, mr := newTestCache(t, 15*time.Second)
	ctx := context.Background()
	key := LeagueStandingsKey("spring")

	require.NoError(t, c.Set(ctx, key, board{EventID: "x"}))
	mr.FastForward(16 * time.Second)

	var got board
	hit, err := c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCache_SetIfAbsentKeepsExisting(t *testing.T) {
	c, _ := newTestCache(t, 15*time.Second)
	ctx := context.Background()
	key := EventBoardKey("ev1", "teams")

	require.NoError(t, c.SetIfAbsent(ctx, key, board{EventID: "first"}))
	require.NoError(t, c.SetIfAbsent(ctx, key, board{EventID: "second"}))

	var got board
	hit, err := c.Get(ctx, key, &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "first", got.EventID)

	require.NoError(t, c.Set(ctx, key, board{EventID: "third"}))
	_, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.Equal(t, "third", got.EventID)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := Connect(context.Background(), &config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	assert.NoError(t, client.Close())

	mr.Close()
	client, err = Connect(context.Background(), &config.RedisConfig{Addr: addr})
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "leaderboard:event:ev1:teams", EventBoardKey("ev1", "teams"))
	assert.Equal(t, "standings:league:l1", LeagueStandingsKey("l1"))
}

func TestNop(t *testing.T) {
	var n Nop
	ctx := context.Background()
	require.NoError(t, n.Set(ctx, "k", 1))
	require.NoError(t, n.SetIfAbsent(ctx, "k", 1))
	var v int
	hit, err := n.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, n.Delete(ctx, "k"))
}
