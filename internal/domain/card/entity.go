package card

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
)

// Card 卡牌实体(聚合根)
// DDD设计说明:
// 1. ID使用Scryfall UUID,目录重新导入时参考属性整体覆盖
// 2. 库存计数嵌入inventory.Inventory,目录导入永远不会改写计数
// 3. 价格保留Scryfall原始的字符串形式,计算时转成decimal
type Card struct {
	ID              string
	OracleID        string
	Name            string
	SetCode         string
	SetName         string
	CollectorNumber string
	Lang            string
	ReleasedAt      *time.Time
	Layout          string
	TypeLine        string
	Rarity          string
	ManaCost        string
	CMC             float64
	OracleText      string
	Colors          []string
	ColorIdentity   []string
	Keywords        []string
	FrameEffects    []string
	PromoTypes      []string
	Finishes        []string
	ImageURIs       map[string]string
	Prices          Prices
	Promo           bool
	Reprint         bool
	Variation       bool
	Oversized       bool
	Digital         bool
	Foil            bool
	Nonfoil         bool

	inventory.Inventory
}

// Prices Scryfall价格对象: {"usd": "0.25", "usd_foil": null, ...}
type Prices map[string]interface{}

// Decimal 读取某个价格,缺失/null/非数字均为0
func (p Prices) Decimal(key string) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	switch v := p[key].(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		return decimal.Zero
	}
}

// USD 普通版价格
func (p Prices) USD() decimal.Decimal {
	return p.Decimal("usd")
}

// USDFoil 闪卡价格
func (p Prices) USDFoil() decimal.Decimal {
	return p.Decimal("usd_foil")
}

// 卡牌分类(按顺序匹配,第一个命中的生效)
const (
	CategoryShowcase     = "Showcases"
	CategoryExtendedArt  = "Extended Art"
	CategoryFractureFoil = "Fracture Foils"
	CategoryBorderless   = "Borderless Cards"
	CategoryPromo        = "Promos"
	CategoryMainSet      = "Main Set"
	CategoryArtVariant   = "Art Variants"
)

// Category 根据frame_effects/promo_types推导分类(不落库)
func (c *Card) Category() string {
	switch {
	case contains(c.FrameEffects, "showcase"):
		return CategoryShowcase
	case contains(c.FrameEffects, "extendedart"):
		return CategoryExtendedArt
	case contains(c.PromoTypes, "fracturefoil"):
		return CategoryFractureFoil
	case contains(c.FrameEffects, "borderless"):
		return CategoryBorderless
	case contains(c.PromoTypes, "promo"):
		return CategoryPromo
	case len(c.FrameEffects) == 0 && len(c.PromoTypes) == 0:
		return CategoryMainSet
	default:
		return CategoryArtVariant
	}
}

// Holding 转换为统计用的持有记录
func (c *Card) Holding(b inventory.Bucket) inventory.Holding {
	regular, foil := c.Get(b)
	return inventory.Holding{
		CardID:       c.ID,
		RegularPrice: c.Prices.USD(),
		FoilPrice:    c.Prices.USDFoil(),
		Regular:      regular,
		Foil:         foil,
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
