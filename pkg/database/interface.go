// Package database is the durable key/value storage behind browser sessions. Each
// driver keeps string values under string keys with an expiry.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound 键不存在或已过期
var ErrNotFound = errors.New("key not found")

// Driver names accepted by DatabaseConfig.Driver.
const (
	DriverMemory   = "memory"
	DriverLocal    = "local"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// DatabaseInterface 定义会话存储接口
type DatabaseInterface interface {
	// Get returns ErrNotFound when key is absent or expired.
	Get(ctx context.Context, key string) (string, error)
	// Set 写入键值，ttl <= 0 表示不过期
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete 删除键，不存在的键会被忽略
	Delete(ctx context.Context, keys ...string) error

	// 健康检查
	HealthCheck() error

	// 关闭连接
	Close() error
}

// DatabaseConfig 存储配置
type DatabaseConfig struct {
	Driver      string
	DataDir     string
	PostgresDSN string
	RedisURL    string
	Debug       bool
}

// NewDatabase 根据配置选择存储实现
func NewDatabase(config DatabaseConfig) (DatabaseInterface, error) {
	switch strings.ToLower(strings.TrimSpace(config.Driver)) {
	case "", DriverMemory:
		fmt.Printf("🧠  Using in-memory session storage\n")
		return NewMemoryDatabase(), nil
	case DriverLocal:
		fmt.Printf("📁  Using local file session storage\n")
		return NewLocalDatabase(config.DataDir), nil
	case DriverPostgres:
		if config.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required for the postgres session store")
		}
		fmt.Printf("🗄️  Using PostgreSQL session storage\n")
		return NewPostgresDatabase(config.PostgresDSN)
	case DriverRedis:
		if config.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required for the redis session store")
		}
		fmt.Printf("🧰  Using Redis session storage\n")
		return NewRedisDatabase(config.RedisURL)
	}
	return nil, fmt.Errorf("unknown session store %q", config.Driver)
}

// expiryOf converts a ttl into an absolute deadline; zero means no expiry.
func expiryOf(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func expired(deadline time.Time, now time.Time) bool {
	return !deadline.IsZero() && !now.Before(deadline)
}
