package cache_test

import (
	"testing"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/infra/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisCache(t *testing.T, ttl time.Duration) (*cache.Redis[domain.Principal], *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedis[domain.Principal](client, "principal", ttl, zap.NewNop()), mr
}

func TestRedis_SetAndGet(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)

	c.Set("u1", domain.Principal{UserID: "u1", Role: domain.RoleGestor, WorkspaceIDs: []string{"ws-1"}})

	got, ok := c.Get("u1")
	require.True(t, ok)
	assert.Equal(t, domain.RoleGestor, got.Role)
	assert.Equal(t, []string{"ws-1"}, got.WorkspaceIDs)
	assert.True(t, mr.Exists("principal:u1"))
}

func TestRedis_Expiration(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)

	c.Set("u1", domain.Principal{UserID: "u1"})
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get("u1")
	assert.False(t, ok)
}

func TestRedis_DeleteAndMiss(t *testing.T) {
	c, _ := newRedisCache(t, time.Minute)

	c.Set("u1", domain.Principal{UserID: "u1"})
	c.Delete("u1")

	_, ok := c.Get("u1")
	assert.False(t, ok)
	_, ok = c.Get("never-set")
	assert.False(t, ok)
}

func TestRedis_ServerDownIsMiss(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	mr.Close()

	c.Set("u1", domain.Principal{UserID: "u1"})
	_, ok := c.Get("u1")
	assert.False(t, ok)
}
