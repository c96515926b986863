package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/domain/set"
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
)

// setRepository 系列仓储实现(GORM)
type setRepository struct {
	db      *gorm.DB
	dialect dialect
}

// NewSetRepository 创建系列仓储
func NewSetRepository(db *gorm.DB) set.Repository {
	return &setRepository{db: db, dialect: newDialect(db)}
}

// setRow 系列 + 桶数量(扫描用)
type setRow struct {
	ID          string
	Code        string
	Name        string
	ReleasedAt  *time.Time
	SetType     string
	CardCount   int
	Digital     bool
	FoilOnly    bool
	IconSVGURI  string `gorm:"column:icon_svg_uri"`
	BucketCount int64  `gorm:"column:bucket_count"`
}

var setSortColumns = map[string]string{
	set.SortReleasedAt:      "sets.released_at",
	set.SortName:            "sets.name",
	set.SortCollectionCount: "bucket_count",
	set.SortCardCount:       "sets.card_count",
}

// FindByCode 根据系列代码查找
func (r *setRepository) FindByCode(ctx context.Context, code string) (*set.Set, error) {
	var model SetModel
	err := getDB(ctx, r.db).Where("code = ?", strings.ToLower(code)).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, set.ErrSetNotFound
		}
		return nil, apperrors.Wrap(err, "failed to query set")
	}
	return toSetEntity(&model), nil
}

// List 系列列表
// collection数量读取聚合表,缺失时回退到实时SUM:
//
//	COALESCE(scc.collection_count, (SELECT SUM(...) FROM cards c WHERE c.set_code = sets.code))
//
// kiosk数量总是实时SUM(聚合表只维护收藏)
func (r *setRepository) List(ctx context.Context, params set.ListParams) ([]*set.Summary, int64, error) {
	base := r.applyFilter(getDB(ctx, r.db).Table("sets"), params)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count sets")
	}

	if total == 0 || int64(params.Pagination.Offset()) >= total {
		return []*set.Summary{}, total, nil
	}

	bucket := params.Bucket
	if !bucket.Valid() {
		bucket = inventory.Collection
	}

	query := r.applyFilter(getDB(ctx, r.db).Table("sets"), params)
	if bucket == inventory.Collection {
		query = query.
			Select("sets.*, COALESCE(scc.collection_count, " + liveSumSQL(bucket, "sets.code") + ") AS bucket_count").
			Joins("LEFT JOIN set_collection_counts scc ON scc.set_code = sets.code")
	} else {
		query = query.Select("sets.*, " + liveSumSQL(bucket, "sets.code") + " AS bucket_count")
	}

	var rows []setRow
	err := query.
		Order(setOrder(params)).
		Limit(params.Pagination.PerPage).
		Offset(params.Pagination.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to list sets")
	}

	summaries := make([]*set.Summary, len(rows))
	for i, row := range rows {
		summaries[i] = set.NewSummary(set.Set{
			ID:         row.ID,
			Code:       row.Code,
			Name:       row.Name,
			ReleasedAt: row.ReleasedAt,
			SetType:    row.SetType,
			CardCount:  row.CardCount,
			Digital:    row.Digital,
			FoilOnly:   row.FoilOnly,
			IconSVGURI: row.IconSVGURI,
		}, row.BucketCount)
	}
	return summaries, total, nil
}

// UpsertBatch 目录导入
func (r *setRepository) UpsertBatch(ctx context.Context, sets []*set.Set) (int64, error) {
	if len(sets) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	models := make([]SetModel, len(sets))
	for i, s := range sets {
		models[i] = SetModel{
			ID:         s.ID,
			Code:       strings.ToLower(s.Code),
			Name:       s.Name,
			ReleasedAt: s.ReleasedAt,
			SetType:    s.SetType,
			CardCount:  s.CardCount,
			Digital:    s.Digital,
			FoilOnly:   s.FoilOnly,
			IconSVGURI: s.IconSVGURI,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	result := getDB(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(setReferenceColumns),
		}).
		Create(&models)
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "failed to upsert sets")
	}
	return int64(len(models)), nil
}

func (r *setRepository) applyFilter(q *gorm.DB, params set.ListParams) *gorm.DB {
	if params.Filter.Name != "" {
		q = q.Where(r.dialect.contains("sets.name", params.Filter.Name))
	}
	if params.Filter.SetType != "" {
		q = q.Where("sets.set_type = ?", params.Filter.SetType)
	}
	if params.Bucket.Valid() {
		q = q.Where("EXISTS (SELECT 1 FROM cards c WHERE c.set_code = sets.code AND " +
			heldCondition(params.Bucket, "c") + ")")
	}
	return q
}

func setOrder(params set.ListParams) string {
	dir := "ASC"
	if params.Sort.Desc() {
		dir = "DESC"
	}
	col, ok := setSortColumns[params.Sort.Field]
	if !ok {
		col, dir = setSortColumns[set.SortReleasedAt], "DESC"
	}
	return col + " " + dir + ", sets.code ASC"
}

// liveSumSQL 实时计算某系列在桶中的数量
func liveSumSQL(b inventory.Bucket, setCodeExpr string) string {
	regular, foil := b.Columns()
	return fmt.Sprintf("(SELECT COALESCE(SUM(c2.%s + c2.%s), 0) FROM cards c2 WHERE c2.set_code = %s)",
		regular, foil, setCodeExpr)
}

func toSetEntity(m *SetModel) *set.Set {
	return &set.Set{
		ID:         m.ID,
		Code:       m.Code,
		Name:       m.Name,
		ReleasedAt: m.ReleasedAt,
		SetType:    m.SetType,
		CardCount:  m.CardCount,
		Digital:    m.Digital,
		FoilOnly:   m.FoilOnly,
		IconSVGURI: m.IconSVGURI,
	}
}
