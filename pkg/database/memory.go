package database

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryDatabase 进程内存储，重启后数据丢失
type MemoryDatabase struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryDatabase 创建内存存储
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{entries: make(map[string]memoryEntry)}
}

func (db *MemoryDatabase) Get(ctx context.Context, key string) (string, error) {
	db.mu.RLock()
	e, ok := db.entries[key]
	db.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	if expired(e.expiresAt, time.Now()) {
		db.mu.Lock()
		delete(db.entries, key)
		db.mu.Unlock()
		return "", ErrNotFound
	}
	return e.value, nil
}

func (db *MemoryDatabase) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.entries[key] = memoryEntry{value: value, expiresAt: expiryOf(ttl)}
	return nil
}

func (db *MemoryDatabase) Delete(ctx context.Context, keys ...string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, k := range keys {
		delete(db.entries, k)
	}
	return nil
}

func (db *MemoryDatabase) HealthCheck() error { return nil }

func (db *MemoryDatabase) Close() error { return nil }
