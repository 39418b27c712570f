package database

import (
	"context"
	"errors"
	"sync"
	"time"
)

// PooledDatabase is a DatabaseInterface that goes through the process-wide pool.
// It keeps using the current pooled instance and asks the pool again after a
// failed operation, so a storage the pool recreated reaches long-lived holders.
type PooledDatabase struct {
	config DatabaseConfig

	mu      sync.Mutex
	current DatabaseInterface
}

// NewPooledDatabase 获取池中的存储并返回代理
func NewPooledDatabase(config DatabaseConfig) (*PooledDatabase, error) {
	db, err := GetDatabase(config)
	if err != nil {
		return nil, err
	}
	return &PooledDatabase{config: config, current: db}, nil
}

func (p *PooledDatabase) instance() DatabaseInterface {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// refresh asks the pool for its instance. It reports whether the instance changed.
func (p *PooledDatabase) refresh(failed DatabaseInterface) (DatabaseInterface, bool) {
	db, err := GetDatabase(p.config)
	if err != nil {
		return failed, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = db
	return db, db != failed
}

// do runs op on the current instance, and once more on a recreated one.
func (p *PooledDatabase) do(op func(DatabaseInterface) error) error {
	db := p.instance()
	err := op(db)
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	if next, changed := p.refresh(db); changed {
		return op(next)
	}
	return err
}

func (p *PooledDatabase) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := p.do(func(db DatabaseInterface) error {
		var err error
		value, err = db.Get(ctx, key)
		return err
	})
	return value, err
}

func (p *PooledDatabase) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return p.do(func(db DatabaseInterface) error {
		return db.Set(ctx, key, value, ttl)
	})
}

func (p *PooledDatabase) Delete(ctx context.Context, keys ...string) error {
	return p.do(func(db DatabaseInterface) error {
		return db.Delete(ctx, keys...)
	})
}

// HealthCheck lets the pool check (and if needed recreate) the storage first.
func (p *PooledDatabase) HealthCheck() error {
	db, _ := p.refresh(nil)
	if db == nil {
		db = p.instance()
	}
	return db.HealthCheck()
}

// Close 关闭池中的存储
func (p *PooledDatabase) Close() error {
	return ClosePool()
}
