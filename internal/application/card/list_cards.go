package card

import (
	"context"
	"strings"

	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
)

// ListCardsUseCase 卡牌列表查询用例
// /cards、/cards/search、/v2/cards以及/{bucket}共用
type ListCardsUseCase struct {
	cards card.Repository
}

// NewListCardsUseCase 创建列表查询用例
func NewListCardsUseCase(cards card.Repository) *ListCardsUseCase {
	return &ListCardsUseCase{cards: cards}
}

// ListCardsRequest 列表查询请求(原始查询参数)
type ListCardsRequest struct {
	Name      string
	SetCode   string
	Rarity    string // 逗号分隔
	Colors    string // 逗号分隔,colorless/C表示无色
	TypeLine  string
	Keywords  string // 逗号分隔,卡牌需全部包含
	Query     string
	Bucket    inventory.Bucket
	SortBy    string
	SortOrder string
	Page      *int
	PerPage   *int

	// DefaultSort 未传sort_by时的排序字段,默认name
	DefaultSort string
}

// CardPage 分页结果
type CardPage struct {
	Items   []*card.Card
	Total   int64
	Page    int
	PerPage int
}

// Params 校验并转换为仓储查询参数
func (r ListCardsRequest) Params() (card.ListParams, error) {
	colors, colorless, err := card.ParseColors(r.Colors)
	if err != nil {
		return card.ListParams{}, err
	}

	defaultSort := r.DefaultSort
	if defaultSort == "" {
		defaultSort = card.SortName
	}
	sort, err := card.ParseSort(r.SortBy, r.SortOrder, defaultSort)
	if err != nil {
		return card.ListParams{}, err
	}

	pagination, err := card.NewPagination(r.Page, r.PerPage)
	if err != nil {
		return card.ListParams{}, err
	}

	rarities := card.SplitList(r.Rarity)
	for i := range rarities {
		rarities[i] = strings.ToLower(rarities[i])
	}

	return card.ListParams{
		Filter: card.Filter{
			Name:      strings.TrimSpace(r.Name),
			SetCode:   strings.ToLower(strings.TrimSpace(r.SetCode)),
			Rarities:  rarities,
			Colors:    colors,
			Colorless: colorless,
			TypeLine:  strings.TrimSpace(r.TypeLine),
			Keywords:  card.SplitList(r.Keywords),
			Query:     strings.TrimSpace(r.Query),
			Bucket:    r.Bucket,
		},
		Sort:       sort,
		Pagination: pagination,
	}, nil
}

// Execute 执行列表查询
func (uc *ListCardsUseCase) Execute(ctx context.Context, req ListCardsRequest) (*CardPage, error) {
	params, err := req.Params()
	if err != nil {
		return nil, err
	}

	items, total, err := uc.cards.List(ctx, params)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*card.Card{}
	}

	return &CardPage{
		Items:   items,
		Total:   total,
		Page:    params.Pagination.Page,
		PerPage: params.Pagination.PerPage,
	}, nil
}
