package card

import (
	"sort"
	"strings"

	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
)

// 分页约束
const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pagination 分页参数
type Pagination struct {
	Page    int
	PerPage int
}

// NewPagination 校验分页参数
// nil表示未传,使用默认值;传了就必须合法:page>=1,per_page在1-100之间,否则400
func NewPagination(pageParam, perPageParam *int) (Pagination, error) {
	page, perPage := DefaultPage, DefaultPerPage
	if pageParam != nil {
		page = *pageParam
	}
	if perPageParam != nil {
		perPage = *perPageParam
	}
	if page < 1 {
		return Pagination{}, InvalidPagination("page must be >= 1, got %d", page)
	}
	if perPage < 1 || perPage > MaxPerPage {
		return Pagination{}, InvalidPagination("per_page must be between 1 and %d, got %d", MaxPerPage, perPage)
	}
	return Pagination{Page: page, PerPage: perPage}, nil
}

// Offset SQL偏移量
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// 排序方向
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Sort 排序(字段已通过白名单校验)
type Sort struct {
	Field string
	Order string
}

// Desc 是否降序
func (s Sort) Desc() bool {
	return s.Order == OrderDesc
}

// 卡牌排序白名单
const (
	SortName            = "name"
	SortCollectorNumber = "collector_number"
	SortCMC             = "cmc"
	SortRarity          = "rarity"
	SortReleasedAt      = "released_at"
	SortSetCode         = "set_code"
)

var sortFields = map[string]bool{
	SortName:            true,
	SortCollectorNumber: true,
	SortCMC:             true,
	SortRarity:          true,
	SortReleasedAt:      true,
	SortSetCode:         true,
}

// SortFields 白名单字段(已排序,用于文档)
func SortFields() []string {
	fields := make([]string, 0, len(sortFields))
	for f := range sortFields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// ParseSort 校验卡牌排序参数,空值使用默认字段
func ParseSort(field, order, defaultField string) (Sort, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		field = defaultField
	}
	if !sortFields[field] {
		return Sort{}, InvalidSortField(field)
	}
	o, err := ParseOrder(order, OrderAsc)
	if err != nil {
		return Sort{}, err
	}
	return Sort{Field: field, Order: o}, nil
}

// ParseOrder 校验排序方向
func ParseOrder(order, def string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "":
		return def, nil
	case OrderAsc:
		return OrderAsc, nil
	case OrderDesc:
		return OrderDesc, nil
	default:
		return "", ErrInvalidSortOrder
	}
}

// 合法颜色代码
var validColors = map[string]bool{"W": true, "U": true, "B": true, "R": true, "G": true}

// Filter 卡牌过滤条件(全部可选,AND组合)
type Filter struct {
	Name      string   // 名称子串(大小写不敏感)
	SetCode   string   // 系列代码(精确)
	Rarities  []string // 稀有度IN
	Colors    []string // 颜色交集
	Colorless bool     // 颜色为空数组
	TypeLine  string   // 类型子串
	Keywords  []string // 关键字全包含
	Query     string   // 在name/type_line/oracle_text中搜索
	Bucket    inventory.Bucket
}

// IsEmpty 是否没有任何过滤条件
func (f Filter) IsEmpty() bool {
	return f.Name == "" && f.SetCode == "" && len(f.Rarities) == 0 &&
		len(f.Colors) == 0 && !f.Colorless && f.TypeLine == "" &&
		len(f.Keywords) == 0 && f.Query == "" && f.Bucket == ""
}

// ParseColors 解析逗号分隔的颜色参数
// colorless/C表示无色;其余必须是W/U/B/R/G之一
func ParseColors(raw string) (colors []string, colorless bool, err error) {
	for _, c := range SplitList(raw) {
		upper := strings.ToUpper(c)
		switch {
		case upper == "C" || strings.EqualFold(c, "colorless"):
			colorless = true
		case validColors[upper]:
			colors = append(colors, upper)
		default:
			return nil, false, InvalidColor(c)
		}
	}
	return colors, colorless, nil
}

// SplitList 拆分逗号列表,去掉空项和首尾空白
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ListParams 列表查询参数
type ListParams struct {
	Filter     Filter
	Sort       Sort
	Pagination Pagination
}
