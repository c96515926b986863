package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gorm.io/gorm"

	"github.com/xiebiao/mtgkiosk/internal/application/importer"
	appinventory "github.com/xiebiao/mtgkiosk/internal/application/inventory"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/config"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/messaging"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/persistence/database"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/scryfall"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
	"github.com/xiebiao/mtgkiosk/pkg/mq"
)

// env 命令共用的数据库、缓存与聚合刷新
type env struct {
	db          *gorm.DB
	invalidator *appinventory.Invalidator
	refresher   *appinventory.RefreshCountsUseCase
	closers     []func()
}

// setup Redis不可用时缓存失效退化为空操作
func setup(ctx context.Context, cfg *config.Config) (*env, error) {
	db, err := database.NewDB(cfg)
	if err != nil {
		return nil, err
	}
	e := &env{db: db}
	e.closers = append(e.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	var cache redis.Cache = redis.NewNoopCache()
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg)
		if err != nil {
			logger.L().Warn().Err(err).Msg("Redis不可用,跳过缓存失效")
		} else {
			cache = redis.NewCacheStore(client, cfg.Cache)
			e.closers = append(e.closers, func() { _ = client.Close() })
		}
	}

	e.invalidator = appinventory.NewInvalidator(cache)
	e.refresher = appinventory.NewRefreshCountsUseCase(database.NewCollectionCountRepository(db), e.invalidator)
	return e, nil
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func (e *env) catalogImporter(cfg *config.Config) *importer.CatalogImportUseCase {
	return importer.NewCatalogImportUseCase(
		scryfall.NewClient(cfg.Scryfall),
		database.NewCardRepository(e.db),
		database.NewSetRepository(e.db),
		e.refresher,
		e.invalidator,
		cfg.Import.CatalogBatch,
	)
}

func refreshCounts(ctx context.Context, cfg *config.Config) error {
	e, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer e.close()

	n, err := e.refresher.Manual(ctx)
	if err != nil {
		return err
	}
	logger.L().Info().Int64("sets_refreshed", n).Msg("✓ 聚合刷新完成")
	return nil
}

func importSets(ctx context.Context, cfg *config.Config) error {
	e, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer e.close()

	n, err := e.catalogImporter(cfg).ImportSets(ctx)
	if err != nil {
		return err
	}
	logger.L().Info().Int64("sets", n).Msg("✓ 系列导入完成")
	return nil
}

func importCards(ctx context.Context, cfg *config.Config, file, bulkType string) error {
	e, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer e.close()

	uc := e.catalogImporter(cfg)

	var n int64
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		n, err = uc.ImportCards(ctx, f)
		if err != nil {
			return err
		}
	} else {
		if bulkType == "" {
			bulkType = cfg.Scryfall.BulkType
		}
		n, err = uc.ImportBulk(ctx, bulkType)
		if err != nil {
			return err
		}
	}

	logger.L().Info().Int64("cards", n).Msg("✓ 卡牌导入完成")
	return nil
}

func importCSV(ctx context.Context, cfg *config.Config, bucketName, file string) error {
	bucket, err := inventory.ParseBucket(bucketName)
	if err != nil {
		return err
	}
	if !strings.EqualFold(filepath.Ext(file), ".csv") {
		return fmt.Errorf("%s不是CSV文件", file)
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	e, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer e.close()

	publisher, closePublisher, err := messaging.NewPublisher(cfg.MQ)
	if err != nil {
		logger.L().Warn().Err(err).Msg("消息发布不可用,跳过事件")
		publisher, closePublisher = messaging.NoopPublisher{}, func() error { return nil }
	}
	defer func() { _ = closePublisher() }()

	repo := database.NewInventoryRepository(e.db)
	uc := importer.NewCSVImportUseCase(database.NewTxManager(e.db), repo, e.refresher, e.invalidator, publisher, importer.Options{
		BatchSize:       cfg.Import.BatchSize,
		MaxReportErrors: cfg.Import.MaxReportErrors,
	})

	report, err := uc.Execute(ctx, bucket, f)
	if err != nil {
		return err
	}

	logger.L().Info().Int("imported", report.Imported).Int("skipped", report.Skipped).Msg(report.Message)
	for _, rowErr := range report.Errors {
		logger.L().Warn().Int("row", rowErr.Row).Str("scryfall_id", rowErr.ScryfallID).Msg(rowErr.Error)
	}
	return nil
}

func tailEvents(ctx context.Context, cfg *config.Config, keys []string) error {
	if !cfg.MQ.Enabled {
		return fmt.Errorf("mq.enabled为false")
	}

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, mq.ExchangeTopic, cfg.MQ.Queue, keys)
	if err != nil {
		return err
	}
	defer consumer.Close()

	return consumer.Consume(ctx, logEvent)
}

// logEvent 按routing key解码并打印事件,无法解码的消息丢弃不重试
func logEvent(_ context.Context, routingKey string, body []byte) error {
	switch routingKey {
	case inventory.EventInventoryChanged:
		var ev inventory.ChangedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			logger.L().Warn().Err(err).Str("routing_key", routingKey).Msg("事件解码失败")
			return nil
		}
		logger.L().Info().
			Str("event", routingKey).
			Str("bucket", ev.Bucket.String()).
			Str("card_id", ev.CardID).
			Int("quantity_regular", ev.QuantityRegular).
			Int("quantity_foil", ev.QuantityFoil).
			Time("occurred_at", ev.OccurredAt).
			Msg("库存变更")

	case inventory.EventImportCompleted:
		var ev inventory.ImportCompletedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			logger.L().Warn().Err(err).Str("routing_key", routingKey).Msg("事件解码失败")
			return nil
		}
		logger.L().Info().
			Str("event", routingKey).
			Str("bucket", ev.Bucket.String()).
			Int("imported", ev.Imported).
			Int("skipped", ev.Skipped).
			Time("occurred_at", ev.OccurredAt).
			Msg("导入完成")

	default:
		logger.L().Info().Str("event", routingKey).RawJSON("body", body).Msg("未知事件")
	}
	return nil
}
