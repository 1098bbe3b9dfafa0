package search

import (
	"testing"
	"time"

	"recipe-discovery/internal/infrastructure/config"
	"recipe-discovery/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCacheConfig(ttl time.Duration) *config.CacheConfig {
	return &config.CacheConfig{
		Enabled:         true,
		MaxSize:         10,
		TTL:             ttl,
		CleanupInterval: time.Minute,
	}
}

func TestCacheHit(t *testing.T) {
	c := NewCache(testCacheConfig(30 * time.Minute))
	require.NotNil(t, c)
	defer c.Close()

	p := Params{Query: "pasta", Number: 12}
	recipes := []common.RecipeSummary{{ID: 1, Title: "Carbonara"}}

	c.Put(p, recipes, 42, StrategyFull)

	entry, ok := c.Get(p)
	require.True(t, ok)
	assert.Equal(t, recipes, entry.Recipes)
	assert.Equal(t, 42, entry.Total)
	assert.Equal(t, StrategyFull, entry.StrategyUsed)
}

func TestCacheMiss(t *testing.T) {
	c := NewCache(testCacheConfig(30 * time.Minute))
	require.NotNil(t, c)
	defer c.Close()

	_, ok := c.Get(Params{Query: "nothing here"})
	assert.False(t, ok)
}

func TestCacheKeyEquivalence(t *testing.T) {
	c := NewCache(testCacheConfig(30 * time.Minute))
	require.NotNil(t, c)
	defer c.Close()

	a := Params{Query: "pasta", Diets: []string{"vegan", "ketogenic"}, Number: 12}
	b := Params{Query: "pasta", Diets: []string{"ketogenic", "vegan"}, Number: 12}

	c.Put(a, []common.RecipeSummary{{ID: 7}}, 1, StrategyFull)

	// 清單順序不同但邏輯等價，必須命中同一條目
	entry, ok := c.Get(b)
	require.True(t, ok)
	assert.Equal(t, 7, entry.Recipes[0].ID)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(testCacheConfig(20 * time.Millisecond))
	require.NotNil(t, c)
	defer c.Close()

	p := Params{Query: "pasta", Number: 12}
	c.Put(p, []common.RecipeSummary{{ID: 1}}, 1, StrategyFull)

	_, ok := c.Get(p)
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get(p)
	assert.False(t, ok)
}

func TestCacheDisabled(t *testing.T) {
	c := NewCache(&config.CacheConfig{Enabled: false})
	assert.Nil(t, c)

	// nil 快取的所有操作都必須安全
	_, ok := c.Get(Params{Query: "pasta"})
	assert.False(t, ok)
	c.Put(Params{Query: "pasta"}, nil, 0, StrategyFull)
	assert.NoError(t, c.Close())

	stats := c.Stats()
	assert.Equal(t, false, stats["enabled"])
}

func TestCacheEviction(t *testing.T) {
	cfg := testCacheConfig(30 * time.Minute)
	cfg.MaxSize = 3
	c := NewCache(cfg)
	require.NotNil(t, c)
	defer c.Close()

	for i := 0; i < 5; i++ {
		c.Put(Params{Query: "q", Offset: i * 12, Number: 12}, []common.RecipeSummary{{ID: i}}, 1, StrategyFull)
	}

	stats := c.Stats()
	assert.LessOrEqual(t, stats["size"].(int), 3)
}

func TestCacheStats(t *testing.T) {
	c := NewCache(testCacheConfig(30 * time.Minute))
	require.NotNil(t, c)
	defer c.Close()

	p := Params{Query: "pasta", Number: 12}
	c.Put(p, []common.RecipeSummary{{ID: 1}}, 1, StrategyFull)

	c.Get(p)
	c.Get(Params{Query: "missing"})

	stats := c.Stats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
	assert.Equal(t, 0.5, stats["hit_ratio"])
}
