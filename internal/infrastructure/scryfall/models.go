package scryfall

import (
	"time"

	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/set"
)

const dateLayout = "2006-01-02"

// Card Scryfall卡牌对象(只保留入库需要的字段)
type Card struct {
	ID              string                 `json:"id"`
	OracleID        string                 `json:"oracle_id"`
	Name            string                 `json:"name"`
	Lang            string                 `json:"lang"`
	ReleasedAt      string                 `json:"released_at"`
	Layout          string                 `json:"layout"`
	ImageURIs       map[string]string      `json:"image_uris,omitempty"`
	ManaCost        string                 `json:"mana_cost,omitempty"`
	CMC             float64                `json:"cmc"`
	TypeLine        string                 `json:"type_line"`
	OracleText      string                 `json:"oracle_text,omitempty"`
	Colors          []string               `json:"colors,omitempty"`
	ColorIdentity   []string               `json:"color_identity"`
	Keywords        []string               `json:"keywords,omitempty"`
	FrameEffects    []string               `json:"frame_effects,omitempty"`
	PromoTypes      []string               `json:"promo_types,omitempty"`
	Finishes        []string               `json:"finishes,omitempty"`
	SetCode         string                 `json:"set"`
	SetName         string                 `json:"set_name"`
	CollectorNumber string                 `json:"collector_number"`
	Rarity          string                 `json:"rarity"`
	Prices          map[string]interface{} `json:"prices"`
	Promo           bool                   `json:"promo"`
	Reprint         bool                   `json:"reprint"`
	Variation       bool                   `json:"variation"`
	Oversized       bool                   `json:"oversized"`
	Digital         bool                   `json:"digital"`
	Foil            bool                   `json:"foil"`
	Nonfoil         bool                   `json:"nonfoil"`
	CardFaces       []CardFace             `json:"card_faces,omitempty"`
}

// CardFace 双面卡的单面
type CardFace struct {
	Name       string            `json:"name"`
	ManaCost   string            `json:"mana_cost,omitempty"`
	TypeLine   string            `json:"type_line"`
	OracleText string            `json:"oracle_text,omitempty"`
	Colors     []string          `json:"colors,omitempty"`
	ImageURIs  map[string]string `json:"image_uris,omitempty"`
}

// Set Scryfall系列对象
type Set struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	ReleasedAt string `json:"released_at,omitempty"`
	SetType    string `json:"set_type"`
	CardCount  int    `json:"card_count"`
	Digital    bool   `json:"digital"`
	FoilOnly   bool   `json:"foil_only"`
	IconSVGURI string `json:"icon_svg_uri"`
}

// SetList /sets响应
type SetList struct {
	HasMore  bool   `json:"has_more"`
	NextPage string `json:"next_page,omitempty"`
	Data     []Set  `json:"data"`
}

// BulkData /bulk-data条目
type BulkData struct {
	Type        string `json:"type"`
	DownloadURI string `json:"download_uri"`
	UpdatedAt   string `json:"updated_at"`
	Size        int64  `json:"size"`
}

// BulkDataList /bulk-data响应
type BulkDataList struct {
	Data []BulkData `json:"data"`
}

// APIError Scryfall错误响应
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

func (e *APIError) Error() string {
	return "scryfall: " + e.Code + ": " + e.Details
}

// ToDomain 转换为领域对象(库存计数为零值,入库时不会覆盖)
func (c *Card) ToDomain() *card.Card {
	out := &card.Card{
		ID:              c.ID,
		OracleID:        c.OracleID,
		Name:            c.Name,
		SetCode:         c.SetCode,
		SetName:         c.SetName,
		CollectorNumber: c.CollectorNumber,
		Lang:            c.Lang,
		ReleasedAt:      parseDate(c.ReleasedAt),
		Layout:          c.Layout,
		TypeLine:        c.TypeLine,
		Rarity:          c.Rarity,
		ManaCost:        c.ManaCost,
		CMC:             c.CMC,
		OracleText:      c.OracleText,
		Colors:          c.Colors,
		ColorIdentity:   c.ColorIdentity,
		Keywords:        c.Keywords,
		FrameEffects:    c.FrameEffects,
		PromoTypes:      c.PromoTypes,
		Finishes:        c.Finishes,
		ImageURIs:       c.ImageURIs,
		Prices:          card.Prices(c.Prices),
		Promo:           c.Promo,
		Reprint:         c.Reprint,
		Variation:       c.Variation,
		Oversized:       c.Oversized,
		Digital:         c.Digital,
		Foil:            c.Foil,
		Nonfoil:         c.Nonfoil,
	}

	// 双面卡顶层没有image_uris/colors/oracle_text,取正面
	if len(c.CardFaces) > 0 {
		front := c.CardFaces[0]
		if out.ImageURIs == nil {
			out.ImageURIs = front.ImageURIs
		}
		if out.Colors == nil {
			out.Colors = front.Colors
		}
		if out.OracleText == "" {
			out.OracleText = front.OracleText
		}
		if out.ManaCost == "" {
			out.ManaCost = front.ManaCost
		}
	}
	return out
}

// ToDomain 转换为领域对象
func (s *Set) ToDomain() *set.Set {
	return &set.Set{
		ID:         s.ID,
		Code:       s.Code,
		Name:       s.Name,
		ReleasedAt: parseDate(s.ReleasedAt),
		SetType:    s.SetType,
		CardCount:  s.CardCount,
		Digital:    s.Digital,
		FoilOnly:   s.FoilOnly,
		IconSVGURI: s.IconSVGURI,
	}
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
