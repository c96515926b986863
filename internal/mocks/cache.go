package mocks

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Cache 内存缓存,实现redis.Cache(忽略TTL)
type Cache struct {
	mu     sync.Mutex
	data   map[string][]byte
	hits   int64
	misses int64

	DeletedPatterns []string
}

// NewCache 创建内存缓存
func NewCache() *Cache {
	return &Cache{data: make(map[string][]byte)}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

func (c *Cache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = append([]byte(nil), value...)
}

func (c *Cache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	raw, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.Set(ctx, key, raw, ttl)
}

func (c *Cache) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
}

// DeletePattern glob匹配(与Redis MATCH对*的语义一致,key中不含/)
func (c *Cache) DeletePattern(_ context.Context, patterns ...string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, p := range patterns {
		c.DeletedPatterns = append(c.DeletedPatterns, p)
		for k := range c.data {
			if ok, _ := path.Match(p, k); ok {
				delete(c.data, k)
				n++
			}
		}
	}
	return n
}

func (c *Cache) Stats(_ context.Context) (int64, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, nil
}

// Has key是否存在(不计入命中统计)
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
