package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/xiebiao/mtgkiosk/internal/application/inventory"
	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/mocks"
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
)

const header = "Name,Edition,Edition code,Collector's number,Price,Foil,Currency,Scryfall ID,Quantity\n"

func csvRow(id, foil, qty string) string {
	return "Lightning Bolt,Magic 2010,m10,146,1.50," + foil + ",USD," + id + "," + qty + "\n"
}

type fixture struct {
	store     *mocks.Store
	cache     *mocks.Cache
	publisher *mocks.Publisher
	uc        *CSVImportUseCase
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	store := mocks.NewStore()
	store.AddCards(
		&card.Card{ID: "bolt", Name: "Lightning Bolt", SetCode: "m10"},
		&card.Card{ID: "shock", Name: "Shock", SetCode: "m10"},
	)
	cache := mocks.NewCache()
	publisher := &mocks.Publisher{}
	invalidator := appinventory.NewInvalidator(cache)
	refresher := appinventory.NewRefreshCountsUseCase(store, invalidator)

	return &fixture{
		store:     store,
		cache:     cache,
		publisher: publisher,
		uc:        NewCSVImportUseCase(store, store, refresher, invalidator, publisher, opts),
	}
}

func (f *fixture) run(t *testing.T, bucket inventory.Bucket, body string) *Report {
	t.Helper()
	report, err := f.uc.Execute(context.Background(), bucket, strings.NewReader(body))
	require.NoError(t, err)
	return report
}

func TestCSVImport_CollectionTakesFirstCopy(t *testing.T) {
	f := newFixture(t, Options{})

	report := f.run(t, inventory.Collection, header+csvRow("bolt", "normal", "1"))
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, "Import completed: 1 imported, 0 skipped", report.Message)
	assert.Equal(t, inventory.Inventory{CollectionRegular: 1}, f.store.Inventory("bolt"))

	// 第二次导入同一行:收藏已有,全部进kiosk
	f.run(t, inventory.Collection, header+csvRow("bolt", "normal", "1"))
	assert.Equal(t, inventory.Inventory{CollectionRegular: 1, KioskRegular: 1}, f.store.Inventory("bolt"))
}

func TestCSVImport_FoilRouting(t *testing.T) {
	f := newFixture(t, Options{})

	f.run(t, inventory.Collection, header+csvRow("bolt", "foil", "3"))
	assert.Equal(t, inventory.Inventory{CollectionFoil: 1, KioskFoil: 2}, f.store.Inventory("bolt"))

	// 已有闪卡时普通版全部进kiosk
	f.run(t, inventory.Collection, header+csvRow("bolt", "normal", "2"))
	assert.Equal(t, inventory.Inventory{CollectionFoil: 1, KioskFoil: 2, KioskRegular: 2}, f.store.Inventory("bolt"))
}

func TestCSVImport_RowsSeeEarlierRows(t *testing.T) {
	f := newFixture(t, Options{BatchSize: 1})

	report := f.run(t, inventory.Collection, header+csvRow("bolt", "normal", "2")+csvRow("bolt", "normal", "1"))
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, inventory.Inventory{CollectionRegular: 1, KioskRegular: 2}, f.store.Inventory("bolt"))
	assert.Equal(t, 2, f.store.TransactionCalls)
}

func TestCSVImport_KioskBucket(t *testing.T) {
	f := newFixture(t, Options{})

	report := f.run(t, inventory.Kiosk, header+csvRow("bolt", "normal", "4")+csvRow("shock", "foil", "2"))
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, inventory.Inventory{KioskRegular: 4}, f.store.Inventory("bolt"))
	assert.Equal(t, inventory.Inventory{KioskFoil: 2}, f.store.Inventory("shock"))

	// kiosk导入不刷新聚合表
	assert.Equal(t, 0, f.store.RefreshCalls)
}

func TestCSVImport_SkipsBadRows(t *testing.T) {
	f := newFixture(t, Options{})

	body := header +
		csvRow("missing", "normal", "1") +
		csvRow("bolt", "shiny", "1") +
		csvRow("bolt", "normal", "0") +
		"only,three,fields\n" +
		",,,,,,,,\n" +
		csvRow("shock", "normal", "2")

	report := f.run(t, inventory.Collection, body)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 4, report.Skipped)
	require.Len(t, report.Errors, 4)

	// 文件行号:表头为第1行,空行不报告
	rows := []int{}
	for _, e := range report.Errors {
		rows = append(rows, e.Row)
	}
	assert.ElementsMatch(t, []int{2, 3, 4, 5}, rows)

	byRow := map[int]inventory.RowError{}
	for _, e := range report.Errors {
		byRow[e.Row] = e
	}
	assert.Equal(t, "missing", byRow[2].ScryfallID)
	assert.Equal(t, card.ErrCardNotFound.Message, byRow[2].Error)
	assert.Contains(t, byRow[5].Error, "expected 9 fields, got 3")

	assert.Equal(t, inventory.Inventory{}, f.store.Inventory("bolt"))
	assert.Equal(t, inventory.Inventory{CollectionRegular: 1, KioskRegular: 1}, f.store.Inventory("shock"))
}

func TestCSVImport_ReportErrorLimit(t *testing.T) {
	f := newFixture(t, Options{MaxReportErrors: 2})

	body := header + csvRow("a", "normal", "1") + csvRow("b", "normal", "1") + csvRow("c", "normal", "1")
	report := f.run(t, inventory.Collection, body)
	assert.Equal(t, 3, report.Skipped)
	assert.Len(t, report.Errors, 2)
}

func TestCSVImport_HeaderErrors(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.uc.Execute(context.Background(), inventory.Collection, strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidCSV, apperrors.GetAppError(err).Code)
	assert.Equal(t, "CSV file is empty", apperrors.GetAppError(err).Message)

	_, err = f.uc.Execute(context.Background(), inventory.Collection, strings.NewReader("Name,Quantity,Scryfall ID\nBolt,1,bolt\n"))
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	assert.Equal(t, apperrors.ErrCodeInvalidCSV, appErr.Code)
	assert.Contains(t, appErr.Message, "Edition")
	assert.Contains(t, appErr.Message, "Foil")
	assert.NotContains(t, appErr.Message, "Quantity")

	assert.Empty(t, f.publisher.Events)
}

func TestCSVImport_HeaderWithBOMAndReorderedColumns(t *testing.T) {
	f := newFixture(t, Options{})

	body := "\ufeffScryfall ID,Quantity,Foil,Name,Edition,Edition code,Collector's number,Price,Currency\n" +
		"bolt,2,normal,Lightning Bolt,Magic 2010,m10,146,1.50,USD\n"
	report := f.run(t, inventory.Collection, body)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, inventory.Inventory{CollectionRegular: 1, KioskRegular: 1}, f.store.Inventory("bolt"))
}

func TestCSVImport_InvalidBucket(t *testing.T) {
	f := newFixture(t, Options{})
	_, err := f.uc.Execute(context.Background(), inventory.Bucket("attic"), strings.NewReader(header))
	assert.ErrorIs(t, err, inventory.ErrInvalidBucket)
}

func TestCSVImport_SideEffects(t *testing.T) {
	f := newFixture(t, Options{})
	f.cache.Set(context.Background(), "collection_stats", []byte(`{}`), 0)
	f.cache.Set(context.Background(), "cards:page=1", []byte(`{}`), 0)
	f.cache.Set(context.Background(), "card:bolt", []byte(`{}`), 0)
	f.cache.Set(context.Background(), "kiosk_stats", []byte(`{}`), 0)

	f.run(t, inventory.Collection, header+csvRow("bolt", "normal", "1"))

	assert.Equal(t, 1, f.store.RefreshCalls)
	n, ok := f.store.AggregateCount("m10")
	require.True(t, ok)
	assert.Equal(t, int64(1), n)

	assert.False(t, f.cache.Has("collection_stats"))
	assert.False(t, f.cache.Has("cards:page=1"))
	assert.False(t, f.cache.Has("card:bolt"))
	assert.True(t, f.cache.Has("kiosk_stats"))

	require.Equal(t, []string{inventory.EventImportCompleted}, f.publisher.Keys())
	event := f.publisher.Events[0].Payload.(inventory.ImportCompletedEvent)
	assert.Equal(t, inventory.Collection, event.Bucket)
	assert.Equal(t, 1, event.Imported)
}

func TestCSVImport_NothingImportedSkipsRefresh(t *testing.T) {
	f := newFixture(t, Options{})
	f.run(t, inventory.Collection, header+csvRow("missing", "normal", "1"))
	assert.Equal(t, 0, f.store.RefreshCalls)
}

func TestCSVImport_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, Options{})
	f.publisher.Err = errors.New("broker down")

	report := f.run(t, inventory.Collection, header+csvRow("bolt", "normal", "1"))
	assert.Equal(t, 1, report.Imported)
}

func TestCSVImport_StorageErrorRollsBackBatch(t *testing.T) {
	f := newFixture(t, Options{BatchSize: 1})

	// 第一批成功后注入错误
	_, err := f.uc.Execute(context.Background(), inventory.Collection, strings.NewReader(header+csvRow("bolt", "normal", "1")))
	require.NoError(t, err)

	f.store.ApplyErr = errors.New("connection reset")
	_, err = f.uc.Execute(context.Background(), inventory.Collection, strings.NewReader(header+csvRow("shock", "normal", "1")))
	require.Error(t, err)

	assert.Equal(t, inventory.Inventory{CollectionRegular: 1}, f.store.Inventory("bolt"))
	assert.Equal(t, inventory.Inventory{}, f.store.Inventory("shock"))
}
