package inventory

import (
	"context"

	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/mtgkiosk/pkg/cachekey"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
)

// Invalidator 库存变更后的缓存失效
type Invalidator struct {
	cache redis.Cache
}

// NewInvalidator 创建失效器
func NewInvalidator(cache redis.Cache) *Invalidator {
	return &Invalidator{cache: cache}
}

// Cards 手动修改后:删除桶下缓存、卡牌列表以及被修改的单卡
func (i *Invalidator) Cards(ctx context.Context, bucket inventory.Bucket, cardIDs ...string) {
	deleted := i.cache.DeletePattern(ctx, cachekey.BucketPatterns(bucket.String())...)

	keys := make([]string, len(cardIDs))
	for n, id := range cardIDs {
		keys[n] = cachekey.Card(id)
	}
	i.cache.Delete(ctx, keys...)

	logger.Ctx(ctx).Debug().Str("bucket", bucket.String()).Int64("deleted", deleted).Strs("cards", cardIDs).Msg("缓存已失效")
}

// Bucket 导入后:涉及的卡牌可能很多,单卡缓存整体删除
func (i *Invalidator) Bucket(ctx context.Context, bucket inventory.Bucket) {
	patterns := append(cachekey.BucketPatterns(bucket.String()), cachekey.AllCards)
	deleted := i.cache.DeletePattern(ctx, patterns...)
	logger.Ctx(ctx).Info().Str("bucket", bucket.String()).Int64("deleted", deleted).Msg("导入后缓存已失效")
}

// All 目录导入后清空所有卡牌/系列相关缓存
func (i *Invalidator) All(ctx context.Context) {
	patterns := append(cachekey.BucketPatterns(inventory.Collection.String()), cachekey.BucketPatterns(inventory.Kiosk.String())...)
	patterns = append(patterns, cachekey.AllCards, "keywords:*")
	deleted := i.cache.DeletePattern(ctx, patterns...)
	logger.Ctx(ctx).Info().Int64("deleted", deleted).Msg("目录更新后缓存已失效")
}
