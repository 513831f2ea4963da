// Package cache 数据源原始响应的 TTL 缓存（badger）
package cache

import (
	"errors"
	"fmt"
	"time"

	"SportsSync/internal/config"

	"github.com/dgraph-io/badger/v4"
)

// Cache 基于 badger 的键值缓存，过期由 badger 的 entry TTL 处理
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// Open 打开缓存；cfg.Dir 为空时使用内存模式（进程退出即丢失）
func Open(cfg config.CacheConfig) (*Cache, error) {
	opts := badger.DefaultOptions(cfg.Dir).WithLogger(nil)
	if cfg.Dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.
		WithMemTableSize(8 << 20).
		WithValueLogFileSize(16 << 20).
		WithNumMemtables(2).
		WithBlockCacheSize(8 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开缓存失败: %w", err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{db: db, ttl: ttl}, nil
}

// Get 读取缓存；未命中或已过期返回 false
func (c *Cache) Get(key string) ([]byte, bool) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set 写入缓存，使用配置的 TTL
func (c *Cache) Set(key string, value []byte) error {
	return c.SetWithTTL(key, value, c.ttl)
}

func (c *Cache) SetWithTTL(key string, value []byte, ttl time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(ttl))
	})
}

// Delete 删除键，不存在不算错误
func (c *Cache) Delete(key string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (c *Cache) Close() error {
	return c.db.Close()
}
