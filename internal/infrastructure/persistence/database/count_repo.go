package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/domain/set"
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
)

// collectionCountRepository set_collection_counts聚合表
type collectionCountRepository struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewCollectionCountRepository 创建聚合仓储
func NewCollectionCountRepository(db *gorm.DB) set.CollectionCountRepository {
	return &collectionCountRepository{db: db}
}

const refreshInsertSQL = "INSERT INTO set_collection_counts (set_code, collection_count, refreshed_at) " +
	"SELECT set_code, SUM(quantity_collection_regular + quantity_collection_foil), ? " +
	"FROM cards GROUP BY set_code"

// 死锁后的最大重试次数
const refreshDeadlockRetries = 3

// mysqlDeadlock InnoDB死锁错误码
const mysqlDeadlock = 1213

// Refresh 全量重算
// DELETE + INSERT ... SELECT ... GROUP BY在同一事务中执行,读者要么看到旧值要么看到新值。
// 并发刷新必须串行:
//   - 同一进程内由互斥锁排队
//   - PostgreSQL先对聚合表加EXCLUSIVE锁,后到的刷新等前一个提交后再DELETE,不会撞主键
//   - MySQL的DELETE对已有行加next-key锁;聚合表为空时两个事务的间隙锁互不冲突,
//     INSERT会触发InnoDB死锁检测,被回滚的一方重试(外层事务中不重试,死锁已回滚整个外层事务)
func (r *collectionCountRepository) Refresh(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		refreshed int64
		err       error
	)
	_, inTx := ctx.Value(txKey{}).(*gorm.DB)
	for attempt := 0; ; attempt++ {
		refreshed, err = r.refresh(ctx)
		if err == nil || inTx || !isDeadlock(err) || attempt >= refreshDeadlockRetries {
			break
		}
		logger.Ctx(ctx).Warn().Err(err).Int("attempt", attempt+1).Msg("刷新聚合表遇到死锁,重试")
	}
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to refresh set collection counts")
	}
	return refreshed, nil
}

func (r *collectionCountRepository) refresh(ctx context.Context) (int64, error) {
	var refreshed int64
	db := getDB(ctx, r.db)
	d := newDialect(db)
	err := db.Transaction(func(tx *gorm.DB) error {
		if lock := d.lockTable("set_collection_counts"); lock != "" {
			if err := tx.Exec(lock).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM set_collection_counts").Error; err != nil {
			return err
		}
		result := tx.Exec(refreshInsertSQL, time.Now().UTC())
		if result.Error != nil {
			return result.Error
		}
		refreshed = result.RowsAffected
		return nil
	})
	return refreshed, err
}

func isDeadlock(err error) bool {
	var myErr *mysqldriver.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDeadlock
}

// Count 某系列在桶中的数量
func (r *collectionCountRepository) Count(ctx context.Context, setCode string, bucket inventory.Bucket) (int64, error) {
	code := strings.ToLower(setCode)
	db := getDB(ctx, r.db)

	if bucket != inventory.Kiosk {
		var model SetCollectionCountModel
		err := db.Where("set_code = ?", code).First(&model).Error
		if err == nil {
			return model.CollectionCount, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.Wrap(err, "failed to read set collection count")
		}
		// 聚合行缺失:回退实时计算
		bucket = inventory.Collection
	}

	regular, foil := bucket.Columns()
	var count int64
	err := db.Model(&CardModel{}).
		Select(fmt.Sprintf("COALESCE(SUM(%s + %s), 0)", regular, foil)).
		Where("set_code = ?", code).
		Scan(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to sum set quantities")
	}
	return count, nil
}
