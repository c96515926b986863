package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/mtgkiosk/internal/infrastructure/config"
	"github.com/xiebiao/mtgkiosk/pkg/cachekey"
	"github.com/xiebiao/mtgkiosk/pkg/circuitbreaker"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
	"github.com/xiebiao/mtgkiosk/pkg/metrics"
)

// Cache 响应缓存
// 所有方法都是尽力而为:Redis异常只记录日志,表现为未命中/写入跳过,从不让请求失败
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	GetJSON(ctx context.Context, key string, dst interface{}) bool
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	DeletePattern(ctx context.Context, patterns ...string) int64
	Stats(ctx context.Context) (hits, misses int64, err error)
}

// CacheStore Redis实现
// 设计说明:
// 1. key统一加前缀(cache.prefix,默认mtg),调用方只使用cachekey包中的相对key
// 2. 所有调用经过熔断器,Redis宕机时快速跳过
// 3. 模式删除使用SCAN + UNLINK,避免KEYS阻塞
// 4. 每次读取都INCR meta:hits / meta:misses
type CacheStore struct {
	client  *redis.Client
	prefix  string
	breaker *circuitbreaker.CircuitBreaker
}

const scanBatch = 500

// NewCacheStore 创建缓存存储
func NewCacheStore(client *redis.Client, cfg config.CacheConfig) *CacheStore {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "mtg"
	}

	breaker := circuitbreaker.NewConsecutive("redis-cache", cfg.BreakerFailures, cfg.BreakerTimeout,
		circuitbreaker.WithIsSuccessful(func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		}),
		circuitbreaker.WithIsExcluded(isContextErr),
	)
	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		metrics.SetBreakerState(name, int(to))
		logger.L().Warn().
			Str("breaker", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("熔断器状态变化")
	})

	return &CacheStore{client: client, prefix: prefix + ":", breaker: breaker}
}

func (s *CacheStore) key(k string) string {
	return s.prefix + k
}

// isContextErr 请求被取消或超时,与Redis健康状况无关
func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// do 在熔断器保护下执行Redis操作
// 请求方断开(ctx取消)不计入熔断统计
func (s *CacheStore) do(fn func() error) error {
	err := s.breaker.Execute(fn)
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		metrics.RecordBreaker(s.breaker.Name(), "rejected")
	case isContextErr(err):
		metrics.RecordBreaker(s.breaker.Name(), "canceled")
	case err == nil || errors.Is(err, redis.Nil):
		metrics.RecordBreaker(s.breaker.Name(), "success")
	default:
		metrics.RecordBreaker(s.breaker.Name(), "failure")
	}
	return err
}

// Get 读取缓存,同时记录命中统计
func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, bool) {
	var val []byte
	err := s.do(func() error {
		var err error
		val, err = s.client.Get(ctx, s.key(key)).Bytes()
		return err
	})

	switch {
	case err == nil:
		s.count(ctx, cachekey.Hits)
		metrics.RecordCache("hit")
		return val, true
	case errors.Is(err, redis.Nil):
		s.count(ctx, cachekey.Misses)
		metrics.RecordCache("miss")
	default:
		metrics.RecordCache("error")
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("读取缓存失败,按未命中处理")
	}
	return nil, false
}

// Set 写入缓存
func (s *CacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	err := s.do(func() error {
		return s.client.Set(ctx, s.key(key), value, ttl).Err()
	})
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("写入缓存失败")
	}
}

// GetJSON 读取并反序列化
func (s *CacheStore) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("缓存内容无法解析")
		return false
	}
	return true
}

// SetJSON 序列化并写入
func (s *CacheStore) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("缓存序列化失败")
		return
	}
	s.Set(ctx, key, raw, ttl)
}

// Delete 删除指定key
func (s *CacheStore) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	err := s.do(func() error {
		return s.client.Unlink(ctx, full...).Err()
	})
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Strs("keys", keys).Msg("删除缓存失败")
	}
}

// DeletePattern 按模式删除(SCAN + UNLINK),返回删除的key数
func (s *CacheStore) DeletePattern(ctx context.Context, patterns ...string) int64 {
	var deleted int64
	for _, pattern := range patterns {
		err := s.do(func() error {
			n, err := s.unlinkMatching(ctx, s.key(pattern))
			deleted += n
			return err
		})
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("pattern", pattern).Msg("模式删除缓存失败")
		}
	}
	metrics.RecordInvalidated(deleted)
	return deleted
}

func (s *CacheStore) unlinkMatching(ctx context.Context, match string) (int64, error) {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := s.client.Unlink(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

// Stats 命中统计
func (s *CacheStore) Stats(ctx context.Context) (hits, misses int64, err error) {
	err = s.do(func() error {
		vals, err := s.client.MGet(ctx, s.key(cachekey.Hits), s.key(cachekey.Misses)).Result()
		if err != nil {
			return err
		}
		hits = parseCount(vals[0])
		misses = parseCount(vals[1])
		return nil
	})
	return hits, misses, err
}

func (s *CacheStore) count(ctx context.Context, key string) {
	_ = s.do(func() error {
		return s.client.Incr(ctx, s.key(key)).Err()
	})
}

func parseCount(v interface{}) int64 {
	str, ok := v.(string)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(str, 10, 64)
	return n
}

// =========================================
// NoopCache: redis.enabled=false时使用
// =========================================

// NoopCache 不缓存任何内容
type NoopCache struct{}

// NewNoopCache 创建空缓存
func NewNoopCache() NoopCache { return NoopCache{} }

func (NoopCache) Get(context.Context, string) ([]byte, bool) {
	return nil, false
}

func (NoopCache) Set(context.Context, string, []byte, time.Duration) {}

func (NoopCache) GetJSON(context.Context, string, interface{}) bool {
	return false
}

func (NoopCache) SetJSON(context.Context, string, interface{}, time.Duration) {}

func (NoopCache) Delete(context.Context, ...string) {}

func (NoopCache) DeletePattern(context.Context, ...string) int64 {
	return 0
}

func (NoopCache) Stats(context.Context) (int64, int64, error) {
	return 0, 0, nil
}
