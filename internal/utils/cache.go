package utils

import (
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/patrickmn/go-cache"
)

// TextCache 以文本内容的 xxhash 为键的 TTL 缓存，容量满时淘汰最早过期的条目
type TextCache struct {
	store *cache.Cache
	ttl   time.Duration
	size  int
}

// NewTextCache 创建缓存；size<=0 时缓存关闭
func NewTextCache(ttl time.Duration, size int) *TextCache {
	c := &TextCache{ttl: ttl, size: size}
	if size > 0 {
		c.store = cache.New(ttl, cleanupInterval(ttl))
	}
	return c
}

// cleanupInterval 后台清理周期
func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl < time.Minute {
		return time.Minute
	}
	return ttl
}

// Key 计算文本键
func Key(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 16)
}

// Get 命中且未过期时返回
func (c *TextCache) Get(text string) (string, bool) {
	if c == nil || c.store == nil {
		return "", false
	}
	v, ok := c.store.Get(Key(text))
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set 写入缓存
func (c *TextCache) Set(text, value string) {
	if c == nil || c.store == nil {
		return
	}
	key := Key(text)
	if _, exists := c.store.Get(key); !exists && c.store.ItemCount() >= c.size {
		c.evict()
	}
	c.store.Set(key, value, c.ttl)
}

// evict 先清掉过期条目，仍然满则淘汰最早过期的一条
func (c *TextCache) evict() {
	c.store.DeleteExpired()
	if c.store.ItemCount() < c.size {
		return
	}

	var (
		oldestKey string
		oldest    int64
	)
	for k, item := range c.store.Items() {
		if oldestKey == "" || item.Expiration < oldest {
			oldestKey, oldest = k, item.Expiration
		}
	}
	if oldestKey != "" {
		c.store.Delete(oldestKey)
	}
}

// Len 当前条目数（可能包含尚未清理的过期条目）
func (c *TextCache) Len() int {
	if c == nil || c.store == nil {
		return 0
	}
	return c.store.ItemCount()
}
