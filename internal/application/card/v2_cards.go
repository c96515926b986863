package card

import (
	"context"

	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/domain/set"
)

// V2CardsUseCase /v2/cards: 卡牌列表 + 可选的系列收藏统计
type V2CardsUseCase struct {
	list   *ListCardsUseCase
	sets   set.Repository
	counts set.CollectionCountRepository
}

// NewV2CardsUseCase 创建用例
func NewV2CardsUseCase(list *ListCardsUseCase, sets set.Repository, counts set.CollectionCountRepository) *V2CardsUseCase {
	return &V2CardsUseCase{list: list, sets: sets, counts: counts}
}

// V2CardsRequest 请求
type V2CardsRequest struct {
	ListCardsRequest
	IncludeSetDetails bool
}

// V2CardsResult 结果
// SetDetails只在指定了set_code且include_set_details=true时返回
type V2CardsResult struct {
	*CardPage
	SetDetails *set.Summary
}

// Execute 执行查询
func (uc *V2CardsUseCase) Execute(ctx context.Context, req V2CardsRequest) (*V2CardsResult, error) {
	var details *set.Summary
	if req.IncludeSetDetails && req.SetCode != "" {
		s, err := uc.sets.FindByCode(ctx, req.SetCode)
		if err != nil {
			return nil, err
		}
		n, err := uc.counts.Count(ctx, s.Code, inventory.Collection)
		if err != nil {
			return nil, err
		}
		details = set.NewSummary(*s, n)
	}

	if req.DefaultSort == "" && req.SetCode != "" {
		req.DefaultSort = card.SortCollectorNumber
	}
	page, err := uc.list.Execute(ctx, req.ListCardsRequest)
	if err != nil {
		return nil, err
	}
	return &V2CardsResult{CardPage: page, SetDetails: details}, nil
}
