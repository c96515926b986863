package dto

import (
	"github.com/xiebiao/mtgkiosk/internal/domain/set"
)

// SetResponse 系列
type SetResponse struct {
	ID         string `json:"id" example:"a4a0db50-8826-4e73-833c-3fd934375f96"`
	Code       string `json:"code" example:"neo"`
	Name       string `json:"name" example:"Kamigawa: Neon Dynasty"`
	ReleasedAt string `json:"released_at,omitempty" example:"2022-02-18"`
	SetType    string `json:"set_type" example:"expansion"`
	CardCount  int    `json:"card_count" example:"302"`
	Digital    bool   `json:"digital"`
	FoilOnly   bool   `json:"foil_only"`
	IconSVGURI string `json:"icon_svg_uri" example:"https://svgs.scryfall.io/sets/neo.svg"`
}

// NewSetResponse 领域实体 → 响应
func NewSetResponse(s *set.Set) SetResponse {
	resp := SetResponse{
		ID:         s.ID,
		Code:       s.Code,
		Name:       s.Name,
		SetType:    s.SetType,
		CardCount:  s.CardCount,
		Digital:    s.Digital,
		FoilOnly:   s.FoilOnly,
		IconSVGURI: s.IconSVGURI,
	}
	if s.ReleasedAt != nil {
		resp.ReleasedAt = s.ReleasedAt.Format(DateLayout)
	}
	return resp
}

// SetSummaryResponse 系列 + 数量统计
// collection_count在/kiosk/sets下是kiosk数量
type SetSummaryResponse struct {
	SetResponse
	CollectionCount int64   `json:"collection_count" example:"75"`
	Percentage      float64 `json:"percentage" example:"24.83"`
}

// NewSetSummaryResponse 领域汇总 → 响应
func NewSetSummaryResponse(s *set.Summary) *SetSummaryResponse {
	if s == nil {
		return nil
	}
	return &SetSummaryResponse{
		SetResponse:     NewSetResponse(&s.Set),
		CollectionCount: s.CollectionCount,
		Percentage:      s.Percentage,
	}
}

// NewSetSummaryResponses 批量转换
func NewSetSummaryResponses(items []*set.Summary) []*SetSummaryResponse {
	out := make([]*SetSummaryResponse, 0, len(items))
	for _, s := range items {
		out = append(out, NewSetSummaryResponse(s))
	}
	return out
}

// SetPageResponse 系列分页(swag文档用)
type SetPageResponse struct {
	Items       []SetSummaryResponse `json:"items"`
	Total       int64                `json:"total" example:"42"`
	Pages       int                  `json:"pages" example:"3"`
	CurrentPage int                  `json:"current_page" example:"1"`
}

// SetCardsResponse /sets/{code}/cards
type SetCardsResponse struct {
	Set   SetResponse    `json:"set"`
	Items []CardResponse `json:"items"`
	Total int            `json:"total" example:"302"`
}

// BucketSetCardsResponse /{bucket}/sets/{code}/cards
type BucketSetCardsResponse struct {
	Items       []CardResponse      `json:"items"`
	Total       int64               `json:"total" example:"75"`
	Pages       int                 `json:"pages" example:"4"`
	CurrentPage int                 `json:"current_page" example:"1"`
	Set         *SetSummaryResponse `json:"set"`
}
