package card

import (
	"context"
	"strings"

	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/domain/set"
)

// ListSetsUseCase 系列列表
// Bucket为空时是/all-sets;否则是/{bucket}/sets(只含持有卡牌的系列,数量按该桶计算)
type ListSetsUseCase struct {
	sets set.Repository
}

// NewListSetsUseCase 创建系列列表用例
func NewListSetsUseCase(sets set.Repository) *ListSetsUseCase {
	return &ListSetsUseCase{sets: sets}
}

// ListSetsRequest 系列列表请求
type ListSetsRequest struct {
	Name      string
	SetType   string
	SortBy    string
	SortOrder string
	Page      *int
	PerPage   *int
	Bucket    inventory.Bucket
}

// SetPage 分页结果
type SetPage struct {
	Items   []*set.Summary
	Total   int64
	Page    int
	PerPage int
}

// Execute 执行查询
func (uc *ListSetsUseCase) Execute(ctx context.Context, req ListSetsRequest) (*SetPage, error) {
	sort, err := set.ParseSort(req.SortBy, req.SortOrder)
	if err != nil {
		return nil, err
	}
	pagination, err := card.NewPagination(req.Page, req.PerPage)
	if err != nil {
		return nil, err
	}

	items, total, err := uc.sets.List(ctx, set.ListParams{
		Filter: set.Filter{
			Name:    strings.TrimSpace(req.Name),
			SetType: strings.TrimSpace(req.SetType),
		},
		Sort:       sort,
		Pagination: pagination,
		Bucket:     req.Bucket,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*set.Summary{}
	}

	return &SetPage{Items: items, Total: total, Page: pagination.Page, PerPage: pagination.PerPage}, nil
}

// SetCardsUseCase 某系列全部卡牌(/sets/{code}/cards)
type SetCardsUseCase struct {
	sets  set.Repository
	cards card.Repository
}

// NewSetCardsUseCase 创建用例
func NewSetCardsUseCase(sets set.Repository, cards card.Repository) *SetCardsUseCase {
	return &SetCardsUseCase{sets: sets, cards: cards}
}

// SetCards 系列 + 卡牌
type SetCards struct {
	Set   *set.Set
	Items []*card.Card
}

// Execute 系列不存在返回ErrSetNotFound
func (uc *SetCardsUseCase) Execute(ctx context.Context, code string) (*SetCards, error) {
	s, err := uc.sets.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}

	cards, err := uc.cards.ListBySet(ctx, s.Code)
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []*card.Card{}
	}
	return &SetCards{Set: s, Items: cards}, nil
}
