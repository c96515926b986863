package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/xiebiao/mtgkiosk/internal/application/auth"
	appcard "github.com/xiebiao/mtgkiosk/internal/application/card"
	"github.com/xiebiao/mtgkiosk/internal/application/importer"
	appinventory "github.com/xiebiao/mtgkiosk/internal/application/inventory"
	"github.com/xiebiao/mtgkiosk/internal/application/stats"
	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/config"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/messaging"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/persistence/database"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/mtgkiosk/internal/interface/http/handler"
	"github.com/xiebiao/mtgkiosk/internal/interface/http/middleware"
	"github.com/xiebiao/mtgkiosk/internal/interface/http/router"
	"github.com/xiebiao/mtgkiosk/pkg/jwt"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
)

// Provider函数:构造参数需要从Config中提取时使用
// main.go手动组装和wire.go共用

// provideDB 数据库连接,cleanup关闭连接池
func provideDB(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := database.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideRedisClient redis.enabled=false时返回nil
func provideRedisClient(ctx context.Context, cfg *config.Config) (*goredis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		logger.L().Warn().Msg("Redis未启用,缓存与Token吊销不可用")
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func provideCache(client *goredis.Client, cfg *config.Config) redis.Cache {
	if client == nil {
		return redis.NewNoopCache()
	}
	return redis.NewCacheStore(client, cfg.Cache)
}

// provideSessionStore 启用认证时必须有Redis(登出需要吊销Token)
func provideSessionStore(client *goredis.Client, cfg *config.Config) (auth.SessionStore, error) {
	if client == nil {
		if cfg.Auth.Enabled {
			return nil, fmt.Errorf("auth.enabled需要redis.enabled")
		}
		return redis.NoopSessionStore{}, nil
	}
	return redis.NewSessionStore(client, cfg.Cache.Prefix), nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

func providePublisher(cfg *config.Config) (inventory.EventPublisher, func(), error) {
	pub, closeFn, err := messaging.NewPublisher(cfg.MQ)
	if err != nil {
		return nil, nil, err
	}
	return pub, func() { _ = closeFn() }, nil
}

func provideAuthMiddleware(cfg *config.Config, jwtManager *jwt.Manager, sessions auth.SessionStore) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(jwtManager, sessions, cfg.Auth.Enabled)
}

func provideGetCardUseCase(cards card.Repository, cache redis.Cache, cfg *config.Config) *appcard.GetCardUseCase {
	return appcard.NewGetCardUseCase(cards, cache, cfg.Cache.CardTTL)
}

func provideBulkCardsUseCase(cards card.Repository, cache redis.Cache, cfg *config.Config) *appcard.BulkCardsUseCase {
	return appcard.NewBulkCardsUseCase(cards, cache, cfg.Cache.CardTTL)
}

func provideStatsUseCase(repo inventory.Repository, cache redis.Cache, cfg *config.Config) *stats.GetStatsUseCase {
	return stats.NewGetStatsUseCase(repo, cache, cfg.Cache.StatsTTL)
}

func provideCSVImportUseCase(
	tx inventory.TxManager,
	repo inventory.Repository,
	refresher *appinventory.RefreshCountsUseCase,
	invalidator *appinventory.Invalidator,
	publisher inventory.EventPublisher,
	cfg *config.Config,
) *importer.CSVImportUseCase {
	return importer.NewCSVImportUseCase(tx, repo, refresher, invalidator, publisher, importer.Options{
		BatchSize:       cfg.Import.BatchSize,
		MaxReportErrors: cfg.Import.MaxReportErrors,
	})
}

// provideLoginUseCase 会话有效期与Refresh Token一致
func provideLoginUseCase(cfg *config.Config, jwtManager *jwt.Manager, sessions auth.SessionStore) *auth.LoginUseCase {
	return auth.NewLoginUseCase(cfg.Auth, jwtManager, sessions, cfg.JWT.RefreshTokenExpire)
}

func provideInventoryHandler(
	listCards *appcard.ListCardsUseCase,
	listSets *appcard.ListSetsUseCase,
	setCards *appinventory.BucketSetCardsUseCase,
	update *appinventory.UpdateUseCase,
	getStats *stats.GetStatsUseCase,
	importCSV *importer.CSVImportUseCase,
	cfg *config.Config,
) *handler.InventoryHandler {
	return handler.NewInventoryHandler(listCards, listSets, setCards, update, getStats, importCSV,
		int64(cfg.Import.MaxUploadMB)<<20)
}

func provideServer(cfg *config.Config, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// buildApp 手动依赖注入
// Repository ← UseCase ← Handler ← Router
func buildApp(ctx context.Context, cfg *config.Config) (*http.Server, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*http.Server, func(), error) {
		cleanup()
		return nil, nil, err
	}

	// 基础设施层
	db, closeDB, err := provideDB(cfg)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeDB)

	redisClient, closeRedis, err := provideRedisClient(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeRedis)

	publisher, closePublisher, err := providePublisher(cfg)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closePublisher)

	sessions, err := provideSessionStore(redisClient, cfg)
	if err != nil {
		return fail(err)
	}

	cache := provideCache(redisClient, cfg)
	jwtManager := provideJWTManager(cfg)

	// 仓储
	cardRepo := database.NewCardRepository(db)
	setRepo := database.NewSetRepository(db)
	inventoryRepo := database.NewInventoryRepository(db)
	countRepo := database.NewCollectionCountRepository(db)
	txManager := database.NewTxManager(db)

	// 应用层
	invalidator := appinventory.NewInvalidator(cache)
	refresher := appinventory.NewRefreshCountsUseCase(countRepo, invalidator)
	listCards := appcard.NewListCardsUseCase(cardRepo)
	listSets := appcard.NewListSetsUseCase(setRepo)

	// 接口层
	handlers := router.Handlers{
		Card: handler.NewCardHandler(
			listCards,
			provideGetCardUseCase(cardRepo, cache, cfg),
			provideBulkCardsUseCase(cardRepo, cache, cfg),
			appcard.NewKeywordsUseCase(cardRepo),
			listSets,
			appcard.NewSetCardsUseCase(setRepo, cardRepo),
			appcard.NewV2CardsUseCase(listCards, setRepo, countRepo),
		),
		Inventory: provideInventoryHandler(
			listCards,
			listSets,
			appinventory.NewBucketSetCardsUseCase(setRepo, countRepo, listCards),
			appinventory.NewUpdateUseCase(txManager, inventoryRepo, refresher, invalidator, publisher),
			provideStatsUseCase(inventoryRepo, cache, cfg),
			provideCSVImportUseCase(txManager, inventoryRepo, refresher, invalidator, publisher, cfg),
			cfg,
		),
		Ops: handler.NewOpsHandler(stats.NewCacheStatsUseCase(cache), refresher),
		Auth: handler.NewAuthHandler(
			provideLoginUseCase(cfg, jwtManager, sessions),
			auth.NewLogoutUseCase(sessions),
			auth.NewRefreshUseCase(jwtManager, sessions),
			jwtManager,
		),
	}

	engine := router.New(cfg, handlers, cache, provideAuthMiddleware(cfg, jwtManager, sessions))
	return provideServer(cfg, engine), cleanup, nil
}
