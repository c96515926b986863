package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/mtgkiosk/pkg/cachekey"
)

// GetStatsUseCase 桶统计(collection与kiosk共用)
// 结果缓存在{bucket}_stats,bypass=true时跳过读取
type GetStatsUseCase struct {
	repo  inventory.Repository
	cache redis.Cache
	ttl   time.Duration
}

// NewGetStatsUseCase 创建统计用例
func NewGetStatsUseCase(repo inventory.Repository, cache redis.Cache, ttl time.Duration) *GetStatsUseCase {
	return &GetStatsUseCase{repo: repo, cache: cache, ttl: ttl}
}

// Execute 计算统计
func (uc *GetStatsUseCase) Execute(ctx context.Context, bucket inventory.Bucket, bypass bool) (inventory.Stats, error) {
	if !bucket.Valid() {
		return inventory.Stats{}, inventory.ErrInvalidBucket
	}
	key := cachekey.Stats(bucket.String())

	if !bypass {
		var cached inventory.Stats
		if uc.cache.GetJSON(ctx, key, &cached) {
			return cached, nil
		}
	}

	holdings, err := uc.repo.Holdings(ctx, bucket)
	if err != nil {
		return inventory.Stats{}, err
	}

	stats := inventory.Summarize(holdings)
	uc.cache.SetJSON(ctx, key, stats, uc.ttl)
	return stats, nil
}

// CacheStats 缓存命中统计
type CacheStats struct {
	TotalCalls int64  `json:"total_calls"`
	Hits       int64  `json:"hits"`
	Misses     int64  `json:"misses"`
	HitRate    string `json:"hit_rate"` // 百分比,如"75.00%"
}

// CacheStatsUseCase 读取mtg:meta:hits/misses
type CacheStatsUseCase struct {
	cache redis.Cache
}

// NewCacheStatsUseCase 创建用例
func NewCacheStatsUseCase(cache redis.Cache) *CacheStatsUseCase {
	return &CacheStatsUseCase{cache: cache}
}

// Execute 读取统计
func (uc *CacheStatsUseCase) Execute(ctx context.Context) (*CacheStats, error) {
	hits, misses, err := uc.cache.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return NewCacheStats(hits, misses), nil
}

// NewCacheStats 计算命中率
func NewCacheStats(hits, misses int64) *CacheStats {
	total := hits + misses
	rate := 0.0
	if total > 0 {
		rate = float64(hits) / float64(total) * 100
	}
	return &CacheStats{
		TotalCalls: total,
		Hits:       hits,
		Misses:     misses,
		HitRate:    fmt.Sprintf("%.2f%%", rate),
	}
}
