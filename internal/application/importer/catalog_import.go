package importer

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"

	appinventory "github.com/xiebiao/mtgkiosk/internal/application/inventory"
	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/set"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/scryfall"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
	"github.com/xiebiao/mtgkiosk/pkg/metrics"
	"github.com/xiebiao/mtgkiosk/pkg/tracing"
)

// Catalog Scryfall目录来源(scryfall.Client实现)
type Catalog interface {
	FetchSets(ctx context.Context) ([]*set.Set, error)
	BulkDataURL(ctx context.Context, bulkType string) (string, error)
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// CatalogImportUseCase 目录导入
// 参考属性整体覆盖,库存计数保持不变
type CatalogImportUseCase struct {
	catalog     Catalog
	cards       card.Repository
	sets        set.Repository
	refresher   *appinventory.RefreshCountsUseCase
	invalidator *appinventory.Invalidator
	batchSize   int
}

// NewCatalogImportUseCase 创建目录导入用例
func NewCatalogImportUseCase(
	catalog Catalog,
	cards card.Repository,
	sets set.Repository,
	refresher *appinventory.RefreshCountsUseCase,
	invalidator *appinventory.Invalidator,
	batchSize int,
) *CatalogImportUseCase {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &CatalogImportUseCase{
		catalog:     catalog,
		cards:       cards,
		sets:        sets,
		refresher:   refresher,
		invalidator: invalidator,
		batchSize:   batchSize,
	}
}

// ImportSets 拉取并写入全部系列
func (uc *CatalogImportUseCase) ImportSets(ctx context.Context) (n int64, err error) {
	ctx, span := tracing.StartSpan(ctx, "importer", "ImportSets")
	defer func() { tracing.EndSpan(span, err) }()

	sets, err := uc.catalog.FetchSets(ctx)
	if err != nil {
		return 0, err
	}

	for start := 0; start < len(sets); start += uc.batchSize {
		end := min(start+uc.batchSize, len(sets))
		written, err := uc.sets.UpsertBatch(ctx, sets[start:end])
		if err != nil {
			return n, err
		}
		n += written
	}

	metrics.RecordCatalog("sets", int64(len(sets)))
	uc.invalidator.All(ctx)
	logger.Ctx(ctx).Info().Int("sets", len(sets)).Msg("系列目录导入完成")
	return int64(len(sets)), nil
}

// ImportCards 从bulk JSON流导入卡牌,完成后刷新聚合表
func (uc *CatalogImportUseCase) ImportCards(ctx context.Context, r io.Reader) (total int64, err error) {
	ctx, span := tracing.StartSpan(ctx, "importer", "ImportCards")
	defer func() {
		span.SetAttributes(attribute.Int64("cards", total))
		tracing.EndSpan(span, err)
	}()

	start := time.Now()
	total, err = scryfall.StreamCards(ctx, r, uc.batchSize, func(ctx context.Context, cards []*card.Card) error {
		if _, err := uc.cards.UpsertBatch(ctx, cards); err != nil {
			return err
		}
		metrics.RecordCatalog("cards", int64(len(cards)))
		return nil
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Int64("written", total).Msg("卡牌目录导入中断")
		return total, err
	}

	if _, err := uc.refresher.Execute(ctx); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("目录导入后刷新聚合失败")
	}
	uc.invalidator.All(ctx)

	logger.Ctx(ctx).Info().Int64("cards", total).Dur("elapsed", time.Since(start)).Msg("卡牌目录导入完成")
	return total, nil
}

// ImportBulk 下载指定类型的bulk文件并导入
func (uc *CatalogImportUseCase) ImportBulk(ctx context.Context, bulkType string) (int64, error) {
	url, err := uc.catalog.BulkDataURL(ctx, bulkType)
	if err != nil {
		return 0, err
	}

	logger.Ctx(ctx).Info().Str("type", bulkType).Str("url", url).Msg("开始下载bulk文件")
	body, err := uc.catalog.Download(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("download bulk data: %w", err)
	}
	defer func() { _ = body.Close() }()

	return uc.ImportCards(ctx, body)
}
