package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/messaging"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
)

// UpdateUseCase 手动设置/清空库存
// 业务流程:
// 1. 事务内锁定卡牌行,设置该桶的绝对数量
// 2. collection桶同步刷新聚合表(读己之写)
// 3. 缓存失效,发布inventory.changed事件
type UpdateUseCase struct {
	tx          inventory.TxManager
	repo        inventory.Repository
	refresher   *RefreshCountsUseCase
	invalidator *Invalidator
	publisher   inventory.EventPublisher
}

// NewUpdateUseCase 创建用例
func NewUpdateUseCase(
	tx inventory.TxManager,
	repo inventory.Repository,
	refresher *RefreshCountsUseCase,
	invalidator *Invalidator,
	publisher inventory.EventPublisher,
) *UpdateUseCase {
	return &UpdateUseCase{
		tx:          tx,
		repo:        repo,
		refresher:   refresher,
		invalidator: invalidator,
		publisher:   publisher,
	}
}

// SetRequest 设置数量请求
type SetRequest struct {
	Bucket          inventory.Bucket
	CardID          string
	QuantityRegular int
	QuantityFoil    int
}

// Set 设置绝对数量,返回更新后的完整库存
func (uc *UpdateUseCase) Set(ctx context.Context, req SetRequest) (inventory.Inventory, error) {
	if !req.Bucket.Valid() {
		return inventory.Inventory{}, inventory.ErrInvalidBucket
	}
	if req.QuantityRegular < 0 || req.QuantityFoil < 0 {
		return inventory.Inventory{}, inventory.ErrInvalidQuantity
	}
	cardID := strings.TrimSpace(req.CardID)

	var result inventory.Inventory
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		current, err := uc.repo.LockByID(ctx, cardID)
		if err != nil {
			return err
		}
		next, err := current.With(req.Bucket, req.QuantityRegular, req.QuantityFoil)
		if err != nil {
			return err
		}
		if err := uc.repo.SetQuantities(ctx, cardID, req.Bucket, req.QuantityRegular, req.QuantityFoil); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return inventory.Inventory{}, err
	}

	uc.afterChange(ctx, req.Bucket, cardID, result)
	return result, nil
}

// Clear 清空某张卡在该桶的数量
func (uc *UpdateUseCase) Clear(ctx context.Context, bucket inventory.Bucket, cardID string) error {
	_, err := uc.Set(ctx, SetRequest{Bucket: bucket, CardID: cardID})
	return err
}

func (uc *UpdateUseCase) afterChange(ctx context.Context, bucket inventory.Bucket, cardID string, inv inventory.Inventory) {
	if bucket == inventory.Collection {
		// 刷新失败不影响本次修改,聚合表在下次刷新时修正
		if _, err := uc.refresher.Execute(ctx); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("card_id", cardID).Msg("修改后刷新聚合失败")
		}
	}

	uc.invalidator.Cards(ctx, bucket, cardID)

	regular, foil := inv.Get(bucket)
	messaging.PublishSafe(ctx, uc.publisher, inventory.EventInventoryChanged, inventory.ChangedEvent{
		Bucket:          bucket,
		CardID:          cardID,
		QuantityRegular: regular,
		QuantityFoil:    foil,
		OccurredAt:      time.Now().UTC(),
	})
}
