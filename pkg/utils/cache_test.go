package utils

import (
	"testing"
	"time"
)

func TestTTLCache_SetGet(t *testing.T) {
	cache := NewTTLCache(1 * time.Minute)

	cache.Set("key", "value")
	val, ok := cache.Get("key")
	if !ok {
		t.Fatal("刚写入的条目应该能读到")
	}
	if val.(string) != "value" {
		t.Errorf("value = %v", val)
	}

	if _, ok := cache.Get("missing"); ok {
		t.Error("不存在的条目不应命中")
	}
}

func TestTTLCache_Expiry(t *testing.T) {
	cache := NewTTLCache(10 * time.Millisecond)

	cache.Set("key", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := cache.Get("key"); ok {
		t.Error("过期条目不应命中")
	}
}

func TestTTLCache_Invalidate(t *testing.T) {
	cache := NewTTLCache(1 * time.Minute)

	cache.Set("key", 1)
	cache.Invalidate("key")

	if _, ok := cache.Get("key"); ok {
		t.Error("失效后的条目不应命中")
	}
}
