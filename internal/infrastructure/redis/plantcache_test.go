package redisinfra

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/plant-catalog-api/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*PlantCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPlantCache(client, 10*time.Minute), mr
}

func TestPlantCache_Miss(t *testing.T) {
	c, _ := newTestCache(t)
	_, ok, err := c.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlantCache_SetGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "p1", domain.Plant{"plant_id": "p1", "name": "Aloe vera"}))
	assert.True(t, mr.Exists("plant:p1"))
	assert.Equal(t, 10*time.Minute, mr.TTL("plant:p1"))

	p, ok, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "p1", p.ID())
	assert.Equal(t, "Aloe vera", p["name"])
}

func TestPlantCache_Expires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "p1", domain.Plant{"plant_id": "p1"}))

	mr.FastForward(11 * time.Minute)

	_, ok, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlantCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("plant:p1", "{not json"))

	_, ok, err := c.Get(context.Background(), "p1")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestPlantCache_ServerDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), "p1")
	assert.Error(t, err)
}

func TestPlantCache_Delete(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "p1", domain.Plant{"plant_id": "p1"}))

	require.NoError(t, c.Delete(ctx, "p1"))
	assert.False(t, mr.Exists("plant:p1"))

	// Deleting a missing key is not an error.
	assert.NoError(t, c.Delete(ctx, "p1"))
}
