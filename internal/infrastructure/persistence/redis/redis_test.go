package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/pkg/metrics"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionStore_Session(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, 7, "refresh-a", "127.0.0.1", time.Hour))

	ok, err := store.ValidateSession(ctx, 7, "refresh-a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.ValidateSession(ctx, 7, "refresh-b")
	require.NoError(t, err)
	assert.False(t, ok, "其他Refresh Token无效")

	// 重新登录覆盖旧会话
	require.NoError(t, store.SaveSession(ctx, 7, "refresh-b", "127.0.0.1", time.Hour))
	ok, err = store.ValidateSession(ctx, 7, "refresh-a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.DeleteSession(ctx, 7))
	ok, err = store.ValidateSession(ctx, 7, "refresh-b")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Empty(t, mr.Keys(), "会话删除后不残留key")
}

func TestSessionStore_Blacklist(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.AddToBlacklist(ctx, "access-token", time.Minute))
	revoked, err := store.IsInBlacklist(ctx, "access-token")
	require.NoError(t, err)
	assert.True(t, revoked)

	for _, k := range mr.Keys() {
		assert.NotContains(t, k, "access-token", "黑名单只保存摘要")
	}

	mr.FastForward(2 * time.Minute)
	revoked, err = store.IsInBlacklist(ctx, "access-token")
	require.NoError(t, err)
	assert.False(t, revoked, "过期后自动移出黑名单")

	require.NoError(t, store.AddToBlacklist(ctx, "expired", 0))
	revoked, err = store.IsInBlacklist(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestLaptopCache_GetSetInvalidate(t *testing.T) {
	_, client := newTestRedis(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, reg)
	cache := NewLaptopCache(client, time.Minute, m, zap.NewNop())
	ctx := context.Background()

	_, ok := cache.Get(ctx, 1)
	assert.False(t, ok)

	l := &laptop.Laptop{
		ID: 1, Name: "XPS 13", Brand: laptop.BrandDell, Type: laptop.TypeUltrabook,
		Specs: laptop.Specs{Processor: "i7"}, Price: 129900, Stock: 2, IsAvailable: true,
		Images: []string{"/uploads/laptops/a.jpg"}, Features: []string{"OLED"},
	}
	cache.Set(ctx, l)

	got, ok := cache.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "XPS 13", got.Name)
	assert.Equal(t, "i7", got.Specs.Processor)
	assert.Equal(t, 2, got.Stock)

	cache.Invalidate(ctx, 1)
	_, ok = cache.Get(ctx, 1)
	assert.False(t, ok)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("miss")))
}

func TestLaptopCache_RedisDownDegrades(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewLaptopCache(client, time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	mr.Close()
	for i := 0; i < 10; i++ {
		_, ok := cache.Get(ctx, 1)
		assert.False(t, ok, "Redis不可用时视为未命中")
	}
	assert.Equal(t, "open", cache.breaker.State().String(), "连续失败后熔断")
	assert.NotPanics(t, func() { cache.Set(ctx, &laptop.Laptop{ID: 1}) })
}
