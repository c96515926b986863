package inventory

import (
	"github.com/shopspring/decimal"
)

// Holding 一张卡在某个桶中的持有情况(统计输入)
type Holding struct {
	CardID       string
	RegularPrice decimal.Decimal
	FoilPrice    decimal.Decimal
	Regular      int
	Foil         int
}

// Stats 桶统计
type Stats struct {
	TotalCards  int     `json:"total_cards"`
	UniqueCards int     `json:"unique_cards"`
	TotalValue  float64 `json:"total_value"`
}

// Summarize 汇总统计(收藏与kiosk共用同一实现)
//   - total_cards = Σ(regular + foil)
//   - unique_cards = regular>0 或 foil>0 的卡数
//   - total_value = Σ(usd × regular + usd_foil × foil),保留2位小数
func Summarize(holdings []Holding) Stats {
	var stats Stats
	total := decimal.Zero

	for _, h := range holdings {
		if h.Regular <= 0 && h.Foil <= 0 {
			continue
		}
		stats.TotalCards += h.Regular + h.Foil
		stats.UniqueCards++

		total = total.
			Add(h.RegularPrice.Mul(decimal.NewFromInt(int64(h.Regular)))).
			Add(h.FoilPrice.Mul(decimal.NewFromInt(int64(h.Foil))))
	}

	stats.TotalValue = total.Round(2).InexactFloat64()
	return stats
}
