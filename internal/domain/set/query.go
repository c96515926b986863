package set

import (
	"strings"

	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
)

// 系列排序白名单
const (
	SortReleasedAt      = "released_at"
	SortName            = "name"
	SortCollectionCount = "collection_count"
	SortCardCount       = "card_count"
)

var sortFields = map[string]bool{
	SortReleasedAt:      true,
	SortName:            true,
	SortCollectionCount: true,
	SortCardCount:       true,
}

// ParseSort 校验系列排序参数,默认released_at desc
func ParseSort(field, order string) (card.Sort, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		field = SortReleasedAt
	}
	if !sortFields[field] {
		return card.Sort{}, card.InvalidSortField(field)
	}
	o, err := card.ParseOrder(order, card.OrderDesc)
	if err != nil {
		return card.Sort{}, err
	}
	return card.Sort{Field: field, Order: o}, nil
}

// Filter 系列过滤
type Filter struct {
	Name    string // 名称子串
	SetType string // 精确匹配
}

// ListParams 系列列表参数
// Bucket为空表示全部系列;否则只返回该桶中持有卡牌的系列
type ListParams struct {
	Filter     Filter
	Sort       card.Sort
	Pagination card.Pagination
	Bucket     inventory.Bucket
}
