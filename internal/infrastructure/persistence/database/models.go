package database

import (
	"time"

	"gorm.io/datatypes"
)

// CardModel GORM卡牌模型
// 设计说明:
// 1. 主键使用Scryfall UUID
// 2. 数组/对象字段使用datatypes.JSON(MySQL JSON,PostgreSQL JSONB)
// 3. 四个库存计数不参与目录导入的覆盖(见referenceColumns)
type CardModel struct {
	ID              string         `gorm:"primaryKey;size:36;comment:Scryfall ID"`
	OracleID        string         `gorm:"size:36;comment:Oracle ID"`
	Name            string         `gorm:"index;size:255;not null;comment:卡名"`
	SetCode         string         `gorm:"index;size:10;not null;comment:系列代码"`
	SetName         string         `gorm:"size:255;comment:系列名称"`
	CollectorNumber string         `gorm:"size:20;comment:收集编号"`
	Lang            string         `gorm:"size:10;comment:语言"`
	ReleasedAt      *time.Time     `gorm:"type:date;comment:发行日期"`
	Layout          string         `gorm:"size:50"`
	TypeLine        string         `gorm:"index;size:255;comment:类型行"`
	Rarity          string         `gorm:"index;size:20;comment:稀有度"`
	ManaCost        string         `gorm:"size:100;comment:法术力费用"`
	CMC             float64        `gorm:"column:cmc;comment:总法术力值"`
	OracleText      string         `gorm:"type:text;comment:规则文本"`
	Colors          datatypes.JSON `gorm:"comment:颜色"`
	ColorIdentity   datatypes.JSON `gorm:"comment:颜色标识"`
	Keywords        datatypes.JSON `gorm:"comment:关键字"`
	FrameEffects    datatypes.JSON `gorm:"comment:边框效果"`
	PromoTypes      datatypes.JSON `gorm:"comment:促销类型"`
	Finishes        datatypes.JSON
	ImageURIs       datatypes.JSON `gorm:"column:image_uris"`
	Prices          datatypes.JSON `gorm:"comment:价格(字符串,可为null)"`
	Promo           bool           `gorm:"default:false"`
	Reprint         bool           `gorm:"default:false"`
	Variation       bool           `gorm:"default:false"`
	Oversized       bool           `gorm:"default:false"`
	Digital         bool           `gorm:"default:false"`
	Foil            bool           `gorm:"default:false"`
	Nonfoil         bool           `gorm:"default:false"`

	QuantityCollectionRegular int `gorm:"not null;default:0;comment:收藏普通"`
	QuantityCollectionFoil    int `gorm:"not null;default:0;comment:收藏闪卡"`
	QuantityKioskRegular      int `gorm:"not null;default:0;comment:kiosk普通"`
	QuantityKioskFoil         int `gorm:"not null;default:0;comment:kiosk闪卡"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定表名
func (CardModel) TableName() string {
	return "cards"
}

// referenceColumns 目录重新导入时覆盖的列(不含库存计数)
var referenceColumns = []string{
	"oracle_id", "name", "set_code", "set_name", "collector_number", "lang",
	"released_at", "layout", "type_line", "rarity", "mana_cost", "cmc",
	"oracle_text", "colors", "color_identity", "keywords", "frame_effects",
	"promo_types", "finishes", "image_uris", "prices", "promo", "reprint",
	"variation", "oversized", "digital", "foil", "nonfoil", "updated_at",
}

// SetModel GORM系列模型
type SetModel struct {
	ID         string     `gorm:"primaryKey;size:36;comment:Scryfall ID"`
	Code       string     `gorm:"uniqueIndex;size:10;not null;comment:系列代码"`
	Name       string     `gorm:"index;size:255;not null;comment:系列名称"`
	ReleasedAt *time.Time `gorm:"type:date;index;comment:发行日期"`
	SetType    string     `gorm:"size:50;comment:系列类型"`
	CardCount  int        `gorm:"default:0;comment:卡牌总数"`
	Digital    bool       `gorm:"default:false"`
	FoilOnly   bool       `gorm:"default:false"`
	IconSVGURI string     `gorm:"column:icon_svg_uri;size:500"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName 指定表名
func (SetModel) TableName() string {
	return "sets"
}

var setReferenceColumns = []string{
	"code", "name", "released_at", "set_type", "card_count",
	"digital", "foil_only", "icon_svg_uri", "updated_at",
}

// SetCollectionCountModel 系列收藏数量聚合表
// 每个系列一行:collection_count = Σ(收藏普通 + 收藏闪卡)
type SetCollectionCountModel struct {
	SetCode         string    `gorm:"primaryKey;size:10;comment:系列代码"`
	CollectionCount int64     `gorm:"not null;default:0;comment:收藏数量"`
	RefreshedAt     time.Time `gorm:"comment:刷新时间"`
}

// TableName 指定表名
func (SetCollectionCountModel) TableName() string {
	return "set_collection_counts"
}
