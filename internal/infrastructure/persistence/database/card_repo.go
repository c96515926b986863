package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
)

// cardRepository 卡牌仓储实现(GORM)
// 设计说明:
// 1. 实现domain/card/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. JSON列的查询差异交给dialect
type cardRepository struct {
	db      *gorm.DB
	dialect dialect
}

// NewCardRepository 创建卡牌仓储
func NewCardRepository(db *gorm.DB) card.Repository {
	return &cardRepository{db: db, dialect: newDialect(db)}
}

// 排序白名单 → 列表达式
// 只有这里出现的字段会拼进ORDER BY
var cardSortColumns = map[string]func(dir string) string{
	card.SortName:            func(dir string) string { return "name " + dir },
	card.SortCollectorNumber: func(dir string) string { return naturalOrder("collector_number", dir) },
	card.SortCMC:             func(dir string) string { return "cmc " + dir },
	card.SortRarity:          func(dir string) string { return "rarity " + dir },
	card.SortReleasedAt:      func(dir string) string { return "released_at " + dir },
	card.SortSetCode:         func(dir string) string { return "set_code " + dir },
}

// FindByID 根据ID查找卡牌
func (r *cardRepository) FindByID(ctx context.Context, id string) (*card.Card, error) {
	var model CardModel
	err := getDB(ctx, r.db).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, card.ErrCardNotFound
		}
		return nil, apperrors.Wrap(err, "failed to query card")
	}
	return toCardEntity(&model), nil
}

// FindByIDs 批量查找
func (r *cardRepository) FindByIDs(ctx context.Context, ids []string) ([]*card.Card, error) {
	if len(ids) == 0 {
		return []*card.Card{}, nil
	}

	var models []CardModel
	if err := getDB(ctx, r.db).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to query cards")
	}
	return toCardEntities(models), nil
}

// List 过滤+排序+分页
func (r *cardRepository) List(ctx context.Context, params card.ListParams) ([]*card.Card, int64, error) {
	query := r.applyFilter(getDB(ctx, r.db).Model(&CardModel{}), params.Filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count cards")
	}

	// 页码超出范围:直接返回空列表,total保持正确
	if total == 0 || int64(params.Pagination.Offset()) >= total {
		return []*card.Card{}, total, nil
	}

	var models []CardModel
	err := query.
		Order(cardOrder(params.Sort)).
		Limit(params.Pagination.PerPage).
		Offset(params.Pagination.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to list cards")
	}

	return toCardEntities(models), total, nil
}

// ListBySet 某系列全部卡牌
func (r *cardRepository) ListBySet(ctx context.Context, setCode string) ([]*card.Card, error) {
	var models []CardModel
	err := getDB(ctx, r.db).
		Where("set_code = ?", strings.ToLower(setCode)).
		Order(naturalOrder("collector_number", "ASC")).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list set cards")
	}
	return toCardEntities(models), nil
}

// Keywords 去重排序的关键字列表
func (r *cardRepository) Keywords(ctx context.Context) ([]string, error) {
	keywords := []string{}
	if err := getDB(ctx, r.db).Raw(r.dialect.keywordsSQL()).Scan(&keywords).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to list keywords")
	}
	return keywords, nil
}

// UpsertBatch 目录导入
// INSERT ... ON CONFLICT(id) DO UPDATE SET <参考列>
// 库存计数不在更新列中,重新导入不会清零
func (r *cardRepository) UpsertBatch(ctx context.Context, cards []*card.Card) (int64, error) {
	if len(cards) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	models := make([]CardModel, len(cards))
	for i, c := range cards {
		models[i] = toCardModel(c)
		models[i].CreatedAt = now
		models[i].UpdatedAt = now
	}

	result := getDB(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(referenceColumns),
		}).
		Omit("quantity_collection_regular", "quantity_collection_foil",
			"quantity_kiosk_regular", "quantity_kiosk_foil").
		Create(&models)
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "failed to upsert cards")
	}
	return int64(len(models)), nil
}

// applyFilter 拼接过滤条件(AND组合)
func (r *cardRepository) applyFilter(q *gorm.DB, f card.Filter) *gorm.DB {
	d := r.dialect

	if f.Name != "" {
		q = q.Where(d.contains("name", f.Name))
	}
	if f.SetCode != "" {
		q = q.Where("set_code = ?", strings.ToLower(f.SetCode))
	}
	if len(f.Rarities) > 0 {
		rarities := make([]string, len(f.Rarities))
		for i, v := range f.Rarities {
			rarities[i] = strings.ToLower(v)
		}
		q = q.Where("rarity IN ?", rarities)
	}
	switch {
	case len(f.Colors) > 0 && f.Colorless:
		q = q.Where(r.db.Where(d.jsonOverlaps("colors", f.Colors)).Or(d.jsonEmpty("colors")))
	case len(f.Colors) > 0:
		q = q.Where(d.jsonOverlaps("colors", f.Colors))
	case f.Colorless:
		q = q.Where(d.jsonEmpty("colors"))
	}
	if f.TypeLine != "" {
		q = q.Where(d.contains("type_line", f.TypeLine))
	}
	if len(f.Keywords) > 0 {
		q = q.Where(d.jsonContainsAll("keywords", f.Keywords))
	}
	if f.Query != "" {
		q = q.Where(r.db.Where(d.contains("name", f.Query)).
			Or(d.contains("type_line", f.Query)).
			Or(d.contains("oracle_text", f.Query)))
	}
	if f.Bucket.Valid() {
		q = q.Where(heldCondition(f.Bucket, ""))
	}
	return q
}

// heldCondition 桶中持有至少一张
func heldCondition(b inventory.Bucket, alias string) string {
	regular, foil := b.Columns()
	if alias != "" {
		regular, foil = alias+"."+regular, alias+"."+foil
	}
	return "(" + regular + " > 0 OR " + foil + " > 0)"
}

func cardOrder(s card.Sort) string {
	dir := "ASC"
	if s.Desc() {
		dir = "DESC"
	}
	build, ok := cardSortColumns[s.Field]
	if !ok {
		build = cardSortColumns[card.SortName]
	}
	// id作为第二排序键,保证分页稳定
	return build(dir) + ", id ASC"
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toCardModel(c *card.Card) CardModel {
	return CardModel{
		ID:              c.ID,
		OracleID:        c.OracleID,
		Name:            c.Name,
		SetCode:         strings.ToLower(c.SetCode),
		SetName:         c.SetName,
		CollectorNumber: c.CollectorNumber,
		Lang:            c.Lang,
		ReleasedAt:      c.ReleasedAt,
		Layout:          c.Layout,
		TypeLine:        c.TypeLine,
		Rarity:          c.Rarity,
		ManaCost:        c.ManaCost,
		CMC:             c.CMC,
		OracleText:      c.OracleText,
		Colors:          toJSON(c.Colors),
		ColorIdentity:   toJSON(c.ColorIdentity),
		Keywords:        toJSON(c.Keywords),
		FrameEffects:    toJSON(c.FrameEffects),
		PromoTypes:      toJSON(c.PromoTypes),
		Finishes:        toJSON(c.Finishes),
		ImageURIs:       toJSON(c.ImageURIs),
		Prices:          toJSON(map[string]interface{}(c.Prices)),
		Promo:           c.Promo,
		Reprint:         c.Reprint,
		Variation:       c.Variation,
		Oversized:       c.Oversized,
		Digital:         c.Digital,
		Foil:            c.Foil,
		Nonfoil:         c.Nonfoil,
	}
}

func toCardEntity(m *CardModel) *card.Card {
	return &card.Card{
		ID:              m.ID,
		OracleID:        m.OracleID,
		Name:            m.Name,
		SetCode:         m.SetCode,
		SetName:         m.SetName,
		CollectorNumber: m.CollectorNumber,
		Lang:            m.Lang,
		ReleasedAt:      m.ReleasedAt,
		Layout:          m.Layout,
		TypeLine:        m.TypeLine,
		Rarity:          m.Rarity,
		ManaCost:        m.ManaCost,
		CMC:             m.CMC,
		OracleText:      m.OracleText,
		Colors:          stringsFromJSON(m.Colors),
		ColorIdentity:   stringsFromJSON(m.ColorIdentity),
		Keywords:        stringsFromJSON(m.Keywords),
		FrameEffects:    stringsFromJSON(m.FrameEffects),
		PromoTypes:      stringsFromJSON(m.PromoTypes),
		Finishes:        stringsFromJSON(m.Finishes),
		ImageURIs:       stringMapFromJSON(m.ImageURIs),
		Prices:          card.Prices(objectFromJSON(m.Prices)),
		Promo:           m.Promo,
		Reprint:         m.Reprint,
		Variation:       m.Variation,
		Oversized:       m.Oversized,
		Digital:         m.Digital,
		Foil:            m.Foil,
		Nonfoil:         m.Nonfoil,
		Inventory: inventory.Inventory{
			CollectionRegular: m.QuantityCollectionRegular,
			CollectionFoil:    m.QuantityCollectionFoil,
			KioskRegular:      m.QuantityKioskRegular,
			KioskFoil:         m.QuantityKioskFoil,
		},
	}
}

func toCardEntities(models []CardModel) []*card.Card {
	cards := make([]*card.Card, len(models))
	for i := range models {
		cards[i] = toCardEntity(&models[i])
	}
	return cards
}
