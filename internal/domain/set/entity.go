package set

import (
	"time"

	"github.com/shopspring/decimal"
)

// Set 系列实体
type Set struct {
	ID         string
	Code       string
	Name       string
	ReleasedAt *time.Time
	SetType    string
	CardCount  int
	Digital    bool
	FoilOnly   bool
	IconSVGURI string
}

// Summary 系列 + 收藏统计
// CollectionCount在/all-sets和/collection/sets中是收藏数量,在/kiosk/sets中是kiosk数量
type Summary struct {
	Set
	CollectionCount int64
	Percentage      float64
}

// NewSummary 计算完成度
func NewSummary(s Set, count int64) *Summary {
	return &Summary{
		Set:             s,
		CollectionCount: count,
		Percentage:      Percentage(count, s.CardCount),
	}
}

// Percentage 收藏完成度 = count / card_count × 100,保留2位小数
// card_count为0时返回0
func Percentage(count int64, cardCount int) float64 {
	if cardCount <= 0 {
		return 0
	}
	return decimal.NewFromInt(count).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(cardCount))).
		Round(2).
		InexactFloat64()
}
