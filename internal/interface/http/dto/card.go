package dto

import (
	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
)

// DateLayout 日期输出格式(released_at)
const DateLayout = "2006-01-02"

// CardListQuery 卡牌列表查询参数
// 分页/排序/颜色的合法性由领域层校验,错误信息中带出非法值
type CardListQuery struct {
	Name      string `form:"name" example:"bolt"`
	SetCode   string `form:"set_code" example:"m10"`
	Rarity    string `form:"rarity" example:"common,uncommon"`
	Colors    string `form:"colors" example:"R,G"`
	TypeLine  string `form:"type_line" example:"Instant"`
	Keywords  string `form:"keywords" example:"Flying,Haste"`
	Q         string `form:"q" example:"damage"`
	Source    string `form:"source" binding:"omitempty,oneof=collection kiosk" example:"collection"`
	SortBy    string `form:"sort_by" example:"name"`
	SortOrder string `form:"sort_order" example:"asc"`
	Page      *int   `form:"page" example:"1"`
	PerPage   *int   `form:"per_page" example:"20"`

	IncludeSetDetails bool `form:"include_set_details" example:"true"` // 仅/v2/cards
}

// SetListQuery 系列列表查询参数
type SetListQuery struct {
	Name      string `form:"name" example:"dominaria"`
	SetType   string `form:"set_type" example:"expansion"`
	SortBy    string `form:"sort_by" example:"released_at"`
	SortOrder string `form:"sort_order" example:"desc"`
	Page      *int   `form:"page" example:"1"`
	PerPage   *int   `form:"per_page" example:"20"`
}

// BulkCardsRequest 批量查询请求
type BulkCardsRequest struct {
	CardIDs []string `json:"card_ids" binding:"required,min=1" example:"e3285e6b-3e79-4d7c-bf96-d920f973b122"`
}

// CardResponse 卡牌
type CardResponse struct {
	ID              string                 `json:"id" example:"e3285e6b-3e79-4d7c-bf96-d920f973b122"`
	OracleID        string                 `json:"oracle_id,omitempty"`
	Name            string                 `json:"name" example:"Lightning Bolt"`
	SetCode         string                 `json:"set_code" example:"m10"`
	SetName         string                 `json:"set_name" example:"Magic 2010"`
	CollectorNumber string                 `json:"collector_number" example:"146"`
	Lang            string                 `json:"lang,omitempty" example:"en"`
	ReleasedAt      string                 `json:"released_at,omitempty" example:"2009-07-17"`
	Layout          string                 `json:"layout,omitempty" example:"normal"`
	TypeLine        string                 `json:"type_line" example:"Instant"`
	Rarity          string                 `json:"rarity" example:"common"`
	ManaCost        string                 `json:"mana_cost" example:"{R}"`
	CMC             float64                `json:"cmc" example:"1"`
	OracleText      string                 `json:"oracle_text" example:"Lightning Bolt deals 3 damage to any target."`
	Colors          []string               `json:"colors"`
	ColorIdentity   []string               `json:"color_identity"`
	Keywords        []string               `json:"keywords"`
	FrameEffects    []string               `json:"frame_effects"`
	PromoTypes      []string               `json:"promo_types"`
	Finishes        []string               `json:"finishes"`
	ImageURIs       map[string]string      `json:"image_uris"`
	Prices          map[string]interface{} `json:"prices"`
	Promo           bool                   `json:"promo"`
	Reprint         bool                   `json:"reprint"`
	Variation       bool                   `json:"variation"`
	Oversized       bool                   `json:"oversized"`
	Digital         bool                   `json:"digital"`
	Foil            bool                   `json:"foil"`
	Nonfoil         bool                   `json:"nonfoil"`
	Category        string                 `json:"category" example:"Main Set"`

	inventory.Inventory
}

// NewCardResponse 领域实体 → 响应
func NewCardResponse(c *card.Card) CardResponse {
	resp := CardResponse{
		ID:              c.ID,
		OracleID:        c.OracleID,
		Name:            c.Name,
		SetCode:         c.SetCode,
		SetName:         c.SetName,
		CollectorNumber: c.CollectorNumber,
		Lang:            c.Lang,
		Layout:          c.Layout,
		TypeLine:        c.TypeLine,
		Rarity:          c.Rarity,
		ManaCost:        c.ManaCost,
		CMC:             c.CMC,
		OracleText:      c.OracleText,
		Colors:          orEmpty(c.Colors),
		ColorIdentity:   orEmpty(c.ColorIdentity),
		Keywords:        orEmpty(c.Keywords),
		FrameEffects:    orEmpty(c.FrameEffects),
		PromoTypes:      orEmpty(c.PromoTypes),
		Finishes:        orEmpty(c.Finishes),
		ImageURIs:       c.ImageURIs,
		Prices:          c.Prices,
		Promo:           c.Promo,
		Reprint:         c.Reprint,
		Variation:       c.Variation,
		Oversized:       c.Oversized,
		Digital:         c.Digital,
		Foil:            c.Foil,
		Nonfoil:         c.Nonfoil,
		Category:        c.Category(),
		Inventory:       c.Inventory,
	}
	if c.ReleasedAt != nil {
		resp.ReleasedAt = c.ReleasedAt.Format(DateLayout)
	}
	if resp.ImageURIs == nil {
		resp.ImageURIs = map[string]string{}
	}
	if resp.Prices == nil {
		resp.Prices = map[string]interface{}{}
	}
	return resp
}

// NewCardResponses 批量转换,空列表输出[]
func NewCardResponses(cards []*card.Card) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, NewCardResponse(c))
	}
	return out
}

// BulkCardsResponse 批量查询响应
type BulkCardsResponse struct {
	Cards []CardResponse `json:"cards"`
}

// KeywordsResponse 关键字列表
type KeywordsResponse struct {
	Keywords []string `json:"keywords" example:"Flying,Haste"`
}

// CardPageResponse 卡牌分页(swag文档用,实际输出response.PageData)
type CardPageResponse struct {
	Items       []CardResponse `json:"items"`
	Total       int64          `json:"total" example:"120"`
	Pages       int            `json:"pages" example:"6"`
	CurrentPage int            `json:"current_page" example:"1"`
}

// V2CardsResponse /v2/cards响应
type V2CardsResponse struct {
	Items       []CardResponse      `json:"items"`
	Total       int64               `json:"total" example:"120"`
	Pages       int                 `json:"pages" example:"6"`
	CurrentPage int                 `json:"current_page" example:"1"`
	SetDetails  *SetSummaryResponse `json:"set_details,omitempty"`
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
