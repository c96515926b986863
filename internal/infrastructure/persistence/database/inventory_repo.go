package database

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
)

// inventoryRepository 库存计数仓储(cards表的四个计数列)
type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存仓储
func NewInventoryRepository(db *gorm.DB) inventory.Repository {
	return &inventoryRepository{db: db}
}

const counterColumns = "id, quantity_collection_regular, quantity_collection_foil, quantity_kiosk_regular, quantity_kiosk_foil"

// LockByID 悲观锁读取计数
// SELECT ... FROM cards WHERE id = ? FOR UPDATE
// 必须使用getDB(ctx)参与事务,否则锁在语句结束时就释放了
func (r *inventoryRepository) LockByID(ctx context.Context, cardID string) (inventory.Inventory, error) {
	var model CardModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select(counterColumns).
		Where("id = ?", cardID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inventory.Inventory{}, card.ErrCardNotFound
		}
		return inventory.Inventory{}, apperrors.Wrap(err, "failed to lock card")
	}
	return inventory.Inventory{
		CollectionRegular: model.QuantityCollectionRegular,
		CollectionFoil:    model.QuantityCollectionFoil,
		KioskRegular:      model.QuantityKioskRegular,
		KioskFoil:         model.QuantityKioskFoil,
	}, nil
}

// ApplyDelta 原子增量更新
// UPDATE cards SET col = col + ? ... WHERE id = ? AND col + ? >= 0 ...
func (r *inventoryRepository) ApplyDelta(ctx context.Context, cardID string, d inventory.Delta) error {
	if d.IsZero() {
		return nil
	}

	db := getDB(ctx, r.db)
	updates := map[string]interface{}{}
	query := db.Model(&CardModel{}).Where("id = ?", cardID)

	for col, v := range map[string]int{
		"quantity_collection_regular": d.CollectionRegular,
		"quantity_collection_foil":    d.CollectionFoil,
		"quantity_kiosk_regular":      d.KioskRegular,
		"quantity_kiosk_foil":         d.KioskFoil,
	} {
		if v == 0 {
			continue
		}
		updates[col] = gorm.Expr(col+" + ?", v)
		if v < 0 {
			query = query.Where(col+" + ? >= 0", v)
		}
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "failed to update inventory")
	}

	if result.RowsAffected == 0 {
		// 卡牌不存在,或者扣减后会变负
		var count int64
		if err := db.Model(&CardModel{}).Where("id = ?", cardID).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "failed to query card")
		}
		if count == 0 {
			return card.ErrCardNotFound
		}
		return inventory.ErrNegativeCounter
	}
	return nil
}

// SetQuantities 设置某个桶的绝对数量
// 调用方需在事务中先LockByID确认卡牌存在
// (MySQL在值未变化时RowsAffected为0,不能据此判断不存在)
func (r *inventoryRepository) SetQuantities(ctx context.Context, cardID string, bucket inventory.Bucket, regular, foil int) error {
	if regular < 0 || foil < 0 {
		return inventory.ErrInvalidQuantity
	}

	regularCol, foilCol := bucket.Columns()
	err := getDB(ctx, r.db).Model(&CardModel{}).
		Where("id = ?", cardID).
		Updates(map[string]interface{}{
			regularCol: regular,
			foilCol:    foil,
		}).Error
	if err != nil {
		return apperrors.Wrap(err, "failed to set inventory")
	}
	return nil
}

type holdingRow struct {
	ID      string
	Prices  datatypes.JSON
	Regular int
	Foil    int
}

// Holdings 读取桶中持有的卡牌及价格
func (r *inventoryRepository) Holdings(ctx context.Context, bucket inventory.Bucket) ([]inventory.Holding, error) {
	regularCol, foilCol := bucket.Columns()

	var rows []holdingRow
	err := getDB(ctx, r.db).Model(&CardModel{}).
		Select("id, prices, " + regularCol + " AS regular, " + foilCol + " AS foil").
		Where(heldCondition(bucket, "")).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read holdings")
	}

	holdings := make([]inventory.Holding, len(rows))
	for i, row := range rows {
		prices := card.Prices(objectFromJSON(row.Prices))
		holdings[i] = inventory.Holding{
			CardID:       row.ID,
			RegularPrice: prices.USD(),
			FoilPrice:    prices.USDFoil(),
			Regular:      row.Regular,
			Foil:         row.Foil,
		}
	}
	return holdings, nil
}
