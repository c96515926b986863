package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/domain/set"
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
)

// newMockDB 基于sqlmock的GORM连接(MySQL方言)
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)

	return db, mock
}

// newMockPostgresDB 基于sqlmock的GORM连接(PostgreSQL方言)
func newMockPostgresDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)

	return db, mock
}

func TestCollectionCountRepository_Refresh(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCollectionCountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM set_collection_counts").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO set_collection_counts .* GROUP BY set_code").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := repo.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 插入失败时整个刷新回滚,旧的聚合数据保留
func TestCollectionCountRepository_RefreshRollback(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCollectionCountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM set_collection_counts").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO set_collection_counts").
		WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	_, err := repo.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, 500, apperrors.GetAppError(err).HTTPStatus())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// MySQL死锁时重试整个事务
func TestCollectionCountRepository_RefreshRetriesDeadlock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCollectionCountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM set_collection_counts").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO set_collection_counts").
		WillReturnError(&mysqldriver.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM set_collection_counts").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO set_collection_counts").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	n, err := repo.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 持续死锁时重试次数有上限
func TestCollectionCountRepository_RefreshDeadlockGivesUp(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCollectionCountRepository(db)

	for i := 0; i <= refreshDeadlockRetries; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM set_collection_counts").
			WillReturnError(&mysqldriver.MySQLError{Number: 1213})
		mock.ExpectRollback()
	}

	_, err := repo.Refresh(context.Background())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 外层事务中死锁直接返回
func TestCollectionCountRepository_RefreshDeadlockInOuterTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCollectionCountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM set_collection_counts").
		WillReturnError(&mysqldriver.MySQLError{Number: 1213})
	mock.ExpectExec("ROLLBACK TO SAVEPOINT").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewTxManager(db).Transaction(context.Background(), func(ctx context.Context) error {
		_, err := repo.Refresh(ctx)
		return err
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDeadlock(t *testing.T) {
	assert.True(t, isDeadlock(&mysqldriver.MySQLError{Number: 1213}))
	assert.False(t, isDeadlock(&mysqldriver.MySQLError{Number: 1062}))
	assert.False(t, isDeadlock(errors.New("deadlock")))
}

// PostgreSQL先锁聚合表,并发刷新排队执行
func TestCollectionCountRepository_RefreshLocksTableOnPostgres(t *testing.T) {
	db, mock := newMockPostgresDB(t)
	repo := NewCollectionCountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("LOCK TABLE set_collection_counts IN EXCLUSIVE MODE").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM set_collection_counts").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO set_collection_counts .* GROUP BY set_code").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 加锁失败不执行DELETE,整个刷新回滚
func TestCollectionCountRepository_RefreshLockFailure(t *testing.T) {
	db, mock := newMockPostgresDB(t)
	repo := NewCollectionCountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("LOCK TABLE set_collection_counts").
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	_, err := repo.Refresh(context.Background())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionCountRepository_CountFallsBackToLiveSum(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCollectionCountRepository(db)

	mock.ExpectQuery("SELECT .* FROM `set_collection_counts`").
		WillReturnRows(sqlmock.NewRows([]string{"set_code", "collection_count", "refreshed_at"}))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(quantity_collection_regular \\+ quantity_collection_foil\\), 0\\) FROM `cards`").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(7))

	n, err := repo.Count(context.Background(), "NEO", inventory.Collection)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionCountRepository_CountUsesAggregate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCollectionCountRepository(db)

	mock.ExpectQuery("SELECT .* FROM `set_collection_counts`").
		WillReturnRows(sqlmock.NewRows([]string{"set_code", "collection_count", "refreshed_at"}).
			AddRow("neo", 12, nil))

	n, err := repo.Count(context.Background(), "neo", inventory.Collection)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepository_FindByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCardRepository(db)

	mock.ExpectQuery("SELECT .* FROM `cards`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, card.ErrCardNotFound)
	assert.Equal(t, 404, apperrors.GetAppError(err).HTTPStatus())
}

func TestSetRepository_FindByCodeNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSetRepository(db)

	mock.ExpectQuery("SELECT .* FROM `sets`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByCode(context.Background(), "zzz")
	assert.ErrorIs(t, err, set.ErrSetNotFound)
}

func TestInventoryRepository_LockByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInventoryRepository(db)

	mock.ExpectQuery("SELECT .* FROM `cards` WHERE id = \\?.* FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "quantity_collection_regular", "quantity_collection_foil",
			"quantity_kiosk_regular", "quantity_kiosk_foil",
		}).AddRow("abc", 1, 0, 2, 3))

	inv, err := repo.LockByID(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, inventory.Inventory{CollectionRegular: 1, KioskRegular: 2, KioskFoil: 3}, inv)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryRepository_ApplyDelta(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInventoryRepository(db)

	mock.ExpectExec("UPDATE `cards` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ApplyDelta(context.Background(), "abc", inventory.Delta{CollectionRegular: 1, KioskRegular: 2})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryRepository_ApplyDeltaNegative(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInventoryRepository(db)

	mock.ExpectExec("UPDATE `cards` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `cards`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.ApplyDelta(context.Background(), "abc", inventory.Delta{KioskRegular: -5})
	assert.ErrorIs(t, err, inventory.ErrNegativeCounter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryRepository_ApplyDeltaMissingCard(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInventoryRepository(db)

	mock.ExpectExec("UPDATE `cards` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `cards`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := repo.ApplyDelta(context.Background(), "nope", inventory.Delta{KioskRegular: 1})
	assert.ErrorIs(t, err, card.ErrCardNotFound)
}

func TestTxManager_CommitAndRollback(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTxManager(db)
	repo := NewInventoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `cards` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tm.Transaction(context.Background(), func(ctx context.Context) error {
		return repo.ApplyDelta(ctx, "abc", inventory.Delta{KioskFoil: 1})
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = tm.Transaction(context.Background(), func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepository_ListSQL(t *testing.T) {
	db, _ := newMockDB(t)
	repo := &cardRepository{db: db, dialect: newDialect(db)}

	filter := card.Filter{
		Name:     "bolt",
		Rarities: []string{"Common", "rare"},
		Colors:   []string{"R"},
		Keywords: []string{"Haste"},
		Bucket:   inventory.Kiosk,
	}
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return repo.applyFilter(tx.Model(&CardModel{}), filter).
			Order(cardOrder(card.Sort{Field: card.SortCollectorNumber, Order: card.OrderDesc})).
			Find(&[]CardModel{})
	})

	assert.Contains(t, sql, "LOWER(name) LIKE LOWER('%bolt%')")
	assert.Contains(t, sql, "rarity IN ('common','rare')")
	assert.Contains(t, sql, "JSON_OVERLAPS(colors,")
	assert.Contains(t, sql, "JSON_CONTAINS(keywords,")
	assert.Contains(t, sql, "(quantity_kiosk_regular > 0 OR quantity_kiosk_foil > 0)")
	assert.Contains(t, sql, "ORDER BY LENGTH(collector_number) DESC, collector_number DESC, id ASC")
}

func TestDialect(t *testing.T) {
	my := dialect{name: "mysql"}
	pg := dialect{name: "postgres"}

	assert.Equal(t, "name ILIKE ?", pg.contains("name", "x").SQL)
	assert.Equal(t, []interface{}{"%50\\%%"}, pg.contains("name", "50%").Vars)
	assert.Equal(t, "LOWER(name) LIKE LOWER(?)", my.contains("name", "x").SQL)

	assert.Equal(t, "JSON_OVERLAPS(colors, ?)", my.jsonOverlaps("colors", []string{"W"}).SQL)
	assert.Equal(t, []interface{}{`["W"]`}, my.jsonOverlaps("colors", []string{"W"}).Vars)
	assert.Contains(t, pg.jsonOverlaps("colors", []string{"W"}).SQL, "jsonb_array_elements_text(colors)")

	assert.Equal(t, "keywords @> CAST(? AS jsonb)", pg.jsonContainsAll("keywords", []string{"Flying"}).SQL)
	assert.Equal(t, "(colors IS NULL OR JSON_LENGTH(colors) = 0)", my.jsonEmpty("colors"))
	assert.Contains(t, pg.keywordsSQL(), "jsonb_array_elements_text(keywords)")

	assert.Equal(t, "LOCK TABLE set_collection_counts IN EXCLUSIVE MODE", pg.lockTable("set_collection_counts"))
	assert.Empty(t, my.lockTable("set_collection_counts"))
	assert.Contains(t, my.keywordsSQL(), "JSON_TABLE")
}

func TestSetOrder(t *testing.T) {
	assert.Equal(t, "bucket_count DESC, sets.code ASC",
		setOrder(set.ListParams{Sort: card.Sort{Field: set.SortCollectionCount, Order: card.OrderDesc}}))
	assert.Equal(t, "sets.released_at DESC, sets.code ASC",
		setOrder(set.ListParams{Sort: card.Sort{Field: "unknown"}}))
}

func TestJSONHelpers(t *testing.T) {
	assert.Equal(t, "[]", string(toJSON([]string(nil))))
	assert.Equal(t, `["W","U"]`, string(toJSON([]string{"W", "U"})))
	assert.Equal(t, []string{}, stringsFromJSON(nil))
	assert.Equal(t, []string{"Flying"}, stringsFromJSON([]byte(`["Flying"]`)))

	prices := objectFromJSON([]byte(`{"usd":"1.25","usd_foil":null}`))
	assert.Equal(t, "1.25", prices["usd"])
	assert.Nil(t, prices["usd_foil"])
}
