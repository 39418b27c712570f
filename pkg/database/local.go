package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const sessionsFile = "sessions.json"

type localEntry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// LocalDatabase 本地文件存储实现
// All keys live in one JSON file that is rewritten on every change.
type LocalDatabase struct {
	dataDir string
	mu      sync.Mutex
}

// NewLocalDatabase 创建本地存储实例
func NewLocalDatabase(dataDir string) *LocalDatabase {
	if dataDir == "" {
		dataDir = "./data"
	}

	// 尝试创建数据目录，只读文件系统中退回到临时目录
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fmt.Printf("Warning: Failed to create data directory: %v\n", err)
		dataDir = filepath.Join(os.TempDir(), "task-tracker-data")
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			fmt.Printf("Warning: Failed to create temp data directory: %v\n", err)
			dataDir = "."
		}
	}

	return &LocalDatabase{dataDir: dataDir}
}

func (db *LocalDatabase) Get(ctx context.Context, key string) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	entries, err := db.loadAll()
	if err != nil {
		return "", err
	}
	e, ok := entries[key]
	if !ok || expired(e.ExpiresAt, time.Now()) {
		return "", ErrNotFound
	}
	return e.Value, nil
}

func (db *LocalDatabase) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	entries, err := db.loadAll()
	if err != nil {
		return err
	}
	entries[key] = localEntry{Value: value, ExpiresAt: expiryOf(ttl)}
	return db.saveAll(entries)
}

func (db *LocalDatabase) Delete(ctx context.Context, keys ...string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	entries, err := db.loadAll()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(entries, k)
	}
	return db.saveAll(entries)
}

// HealthCheck 检查数据目录是否可访问
func (db *LocalDatabase) HealthCheck() error {
	info, err := os.Stat(db.dataDir)
	if err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", db.dataDir)
	}
	return nil
}

func (db *LocalDatabase) Close() error { return nil }

func (db *LocalDatabase) filePath() string {
	return filepath.Join(db.dataDir, sessionsFile)
}

// loadAll reads the file and drops expired entries.
func (db *LocalDatabase) loadAll() (map[string]localEntry, error) {
	data, err := os.ReadFile(db.filePath())
	if os.IsNotExist(err) {
		return map[string]localEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	entries := map[string]localEntry{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("corrupt session file: %w", err)
		}
	}

	now := time.Now()
	for k, e := range entries {
		if expired(e.ExpiresAt, now) {
			delete(entries, k)
		}
	}
	return entries, nil
}

func (db *LocalDatabase) saveAll(entries map[string]localEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	// 先写临时文件再重命名，避免写入一半的文件
	tmp := db.filePath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, db.filePath())
}
