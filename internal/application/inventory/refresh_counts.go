package inventory

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/domain/set"
	"github.com/xiebiao/mtgkiosk/pkg/cachekey"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
	"github.com/xiebiao/mtgkiosk/pkg/metrics"
	"github.com/xiebiao/mtgkiosk/pkg/tracing"
)

// RefreshCountsUseCase 重算系列收藏数量聚合表
// 触发时机:CSV导入结束、收藏手动修改、管理接口、kioskctl命令
type RefreshCountsUseCase struct {
	counts      set.CollectionCountRepository
	invalidator *Invalidator
}

// NewRefreshCountsUseCase 创建用例
func NewRefreshCountsUseCase(counts set.CollectionCountRepository, invalidator *Invalidator) *RefreshCountsUseCase {
	return &RefreshCountsUseCase{counts: counts, invalidator: invalidator}
}

// Execute 全量重算,返回写入的系列数
func (uc *RefreshCountsUseCase) Execute(ctx context.Context) (n int64, err error) {
	ctx, span := tracing.StartSpan(ctx, "inventory", "RefreshCollectionCounts")
	defer func() { tracing.EndSpan(span, err) }()

	start := time.Now()
	n, err = uc.counts.Refresh(ctx)
	metrics.RecordRefresh(time.Since(start), err)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("刷新系列收藏数量失败")
		return 0, err
	}

	span.SetAttributes(attribute.Int64("sets", n))
	logger.Ctx(ctx).Info().Int64("sets", n).Dur("elapsed", time.Since(start)).Msg("系列收藏数量已刷新")
	return n, nil
}

// Manual 管理接口触发:刷新后让带收藏数量的列表缓存失效
func (uc *RefreshCountsUseCase) Manual(ctx context.Context) (int64, error) {
	n, err := uc.Execute(ctx)
	if err != nil {
		return 0, err
	}
	if uc.invalidator != nil {
		uc.invalidator.cache.DeletePattern(ctx, cachekey.AggregatePatterns()...)
		uc.invalidator.cache.Delete(ctx, cachekey.Stats(inventory.Collection.String()))
	}
	return n, nil
}
