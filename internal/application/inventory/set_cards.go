package inventory

import (
	"context"
	"strings"

	appcard "github.com/xiebiao/mtgkiosk/internal/application/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/domain/set"
)

// BucketSetCardsUseCase /{bucket}/sets/{code}/cards
// 返回该桶中持有的该系列卡牌(分页)以及系列汇总
type BucketSetCardsUseCase struct {
	sets   set.Repository
	counts set.CollectionCountRepository
	list   *appcard.ListCardsUseCase
}

// NewBucketSetCardsUseCase 创建用例
func NewBucketSetCardsUseCase(sets set.Repository, counts set.CollectionCountRepository, list *appcard.ListCardsUseCase) *BucketSetCardsUseCase {
	return &BucketSetCardsUseCase{sets: sets, counts: counts, list: list}
}

// BucketSetCardsRequest 请求
type BucketSetCardsRequest struct {
	appcard.ListCardsRequest
	Code string
}

// BucketSetCards 结果
type BucketSetCards struct {
	*appcard.CardPage
	Set *set.Summary
}

// Execute 系列不存在返回ErrSetNotFound
func (uc *BucketSetCardsUseCase) Execute(ctx context.Context, req BucketSetCardsRequest) (*BucketSetCards, error) {
	if !req.Bucket.Valid() {
		return nil, inventory.ErrInvalidBucket
	}

	s, err := uc.sets.FindByCode(ctx, strings.TrimSpace(req.Code))
	if err != nil {
		return nil, err
	}

	n, err := uc.counts.Count(ctx, s.Code, req.Bucket)
	if err != nil {
		return nil, err
	}

	listReq := req.ListCardsRequest
	listReq.SetCode = s.Code
	if listReq.DefaultSort == "" {
		listReq.DefaultSort = card.SortCollectorNumber
	}
	page, err := uc.list.Execute(ctx, listReq)
	if err != nil {
		return nil, err
	}

	return &BucketSetCards{CardPage: page, Set: set.NewSummary(*s, n)}, nil
}
