package session

import (
	"context"
	"sync"
	"time"

	"recipe-discovery/internal/pkg/common"
)

// Store 工作階段狀態的窄介面。
// 週邊的儲存（Redis、記憶體）都收在 Get/Put/Delete 後面，
// 測試時可直接換成記憶體替身。
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Put(ctx context.Context, id string, state *State) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore 行程內的工作階段儲存；Redis 關閉時與測試中使用
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

type memoryEntry struct {
	state     *State
	expiresAt time.Time
}

// NewMemoryStore 創建記憶體工作階段儲存
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

// Get 取工作階段狀態；過期視同不存在並順手移除
func (m *MemoryStore) Get(ctx context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[id]
	if !exists {
		return nil, common.ErrSessionNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(m.entries, id)
		return nil, common.ErrSessionNotFound
	}
	return entry.state, nil
}

// Put 寫入工作階段狀態並更新存活期限
func (m *MemoryStore) Put(ctx context.Context, id string, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[id] = memoryEntry{
		state:     state,
		expiresAt: time.Now().Add(m.ttl),
	}
	return nil
}

// Delete 移除工作階段
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}
