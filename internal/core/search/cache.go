package search

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"recipe-discovery/internal/infrastructure/config"
	"recipe-discovery/internal/pkg/common"

	"go.uber.org/zap"
)

// Cache 搜尋結果快取。
// 鍵是 Params 的 canonical 序列化；條目寫入後唯讀，僅靠 TTL 淘汰。
type Cache struct {
	config *config.CacheConfig
	mu     sync.RWMutex
	store  map[string]cacheEntry
	stats  cacheStats
	done   chan struct{}
}

// Entry 快取條目的對外視圖
type Entry struct {
	Recipes      []common.RecipeSummary
	Total        int
	StrategyUsed string
	StoredAt     time.Time
}

// cacheEntry 快取條目
type cacheEntry struct {
	recipes      []common.RecipeSummary
	total        int
	strategyUsed string
	storedAt     time.Time
	expiresAt    time.Time
	lastAccess   time.Time
	accessCount  int
}

// cacheStats 快取統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewCache 創建搜尋結果快取
func NewCache(cfg *config.CacheConfig) *Cache {
	if !cfg.Enabled {
		common.LogInfo("Search cache disabled")
		return nil
	}

	c := &Cache{
		config: cfg,
		store:  make(map[string]cacheEntry),
		done:   make(chan struct{}),
	}

	// 啟動清理過期條目的協程
	go c.startCleanup()

	common.LogInfo("搜尋快取已初始化",
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)

	return c
}

// Get 以查詢參數取條目；過期條目視同未命中並順手移除
func (c *Cache) Get(p Params) (*Entry, bool) {
	if c == nil {
		return nil, false
	}

	key := hashKey(p.CacheKey())

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.store[key]
	if !exists {
		c.stats.misses++
		common.LogCacheMiss("search", key)
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		delete(c.store, key)
		c.stats.evictions++
		c.stats.misses++
		common.LogInfo("快取已過期", zap.String("鍵", key))
		return nil, false
	}

	entry.lastAccess = time.Now()
	entry.accessCount++
	c.store[key] = entry
	c.stats.hits++
	common.LogCacheHit("search", key)

	return &Entry{
		Recipes:      entry.recipes,
		Total:        entry.total,
		StrategyUsed: entry.strategyUsed,
		StoredAt:     entry.storedAt,
	}, true
}

// Put 寫入一次成功解析的結果
func (c *Cache) Put(p Params, recipes []common.RecipeSummary, total int, strategyUsed string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// 容量滿了先清過期，再不行做 LRU 淘汰
	if len(c.store) >= c.config.MaxSize {
		evicted := c.cleanupLocked()
		common.LogInfo("快取清理執行", zap.Int("清理數量", evicted))
		if len(c.store) >= c.config.MaxSize {
			c.evictLRULocked()
		}
	}

	now := time.Now()
	c.store[hashKey(p.CacheKey())] = cacheEntry{
		recipes:      recipes,
		total:        total,
		strategyUsed: strategyUsed,
		storedAt:     now,
		expiresAt:    now.Add(c.config.TTL),
		lastAccess:   now,
	}
}

// Stats 快取統計資訊
func (c *Cache) Stats() map[string]interface{} {
	if c == nil {
		return map[string]interface{}{"enabled": false}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.stats.hits + c.stats.misses
	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(c.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"enabled":   true,
		"size":      len(c.store),
		"max_size":  c.config.MaxSize,
		"hits":      c.stats.hits,
		"misses":    c.stats.misses,
		"evictions": c.stats.evictions,
		"hit_ratio": hitRatio,
	}
}

// Close 關閉快取
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}

	close(c.done)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]cacheEntry)
	common.LogInfo("搜尋快取已關閉",
		zap.Int64("命中次數", c.stats.hits),
		zap.Int64("未命中次數", c.stats.misses),
		zap.Int64("淘汰次數", c.stats.evictions),
	)
	return nil
}

// startCleanup 週期清理過期條目
func (c *Cache) startCleanup() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.cleanupLocked()
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}

// cleanupLocked 清掉過期條目；呼叫端必須持有寫鎖
func (c *Cache) cleanupLocked() int {
	now := time.Now()
	count := 0
	for key, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, key)
			count++
			c.stats.evictions++
		}
	}
	return count
}

// evictLRULocked 淘汰最少使用的條目；呼叫端必須持有寫鎖
func (c *Cache) evictLRULocked() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range c.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(c.store, oldestKey)
		c.stats.evictions++
		common.LogInfo("快取已淘汰(LRU)", zap.String("鍵", oldestKey))
	}
}

// hashKey 計算鍵字串的 SHA-256 哈希值
func hashKey(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}
