package utils

import (
	"sync"
	"time"
)

// TTLCache 带过期时间的并发安全缓存
// 作为依赖显式注入，不做包级全局状态；写方负责在数据变更时调用 Invalidate
type TTLCache struct {
	ttl   time.Duration
	items sync.Map
}

type cacheItem struct {
	value      interface{}
	expiration int64
}

// NewTTLCache 创建缓存，ttl 为每个条目的存活时间
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{ttl: ttl}
}

// Set 写入缓存
func (c *TTLCache) Set(key string, value interface{}) {
	c.items.Store(key, cacheItem{
		value:      value,
		expiration: time.Now().Add(c.ttl).UnixNano(),
	})
}

// Get 读取缓存，过期条目懒删除
func (c *TTLCache) Get(key string) (interface{}, bool) {
	val, ok := c.items.Load(key)
	if !ok {
		return nil, false
	}

	item := val.(cacheItem)
	if time.Now().UnixNano() > item.expiration {
		c.items.Delete(key)
		return nil, false
	}
	return item.value, true
}

// Invalidate 失效单个条目（写后失效）
func (c *TTLCache) Invalidate(key string) {
	c.items.Delete(key)
}
