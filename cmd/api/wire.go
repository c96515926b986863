//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// 运行 `wire gen ./cmd/api` 生成wire_gen.go后,可用InitializeApp替换main.go中的buildApp。
// 构造参数需要从Config提取的依赖使用providers.go中的provide*函数。

package main

import (
	"context"
	"net/http"

	"github.com/google/wire"

	"github.com/xiebiao/mtgkiosk/internal/application/auth"
	appcard "github.com/xiebiao/mtgkiosk/internal/application/card"
	appinventory "github.com/xiebiao/mtgkiosk/internal/application/inventory"
	"github.com/xiebiao/mtgkiosk/internal/application/stats"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/config"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/persistence/database"
	"github.com/xiebiao/mtgkiosk/internal/interface/http/handler"
	"github.com/xiebiao/mtgkiosk/internal/interface/http/router"
)

// infrastructureSet 数据库、Redis、消息、JWT
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedisClient,
	provideCache,
	provideSessionStore,
	providePublisher,
	provideJWTManager,
)

// repositorySet 仓储
var repositorySet = wire.NewSet(
	database.NewCardRepository,
	database.NewSetRepository,
	database.NewInventoryRepository,
	database.NewCollectionCountRepository,
	database.NewTxManager,
	wire.Bind(new(inventory.TxManager), new(*database.TxManager)),
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appinventory.NewInvalidator,
	appinventory.NewRefreshCountsUseCase,
	appinventory.NewUpdateUseCase,
	appinventory.NewBucketSetCardsUseCase,
	appcard.NewListCardsUseCase,
	appcard.NewKeywordsUseCase,
	appcard.NewListSetsUseCase,
	appcard.NewSetCardsUseCase,
	appcard.NewV2CardsUseCase,
	provideGetCardUseCase,
	provideBulkCardsUseCase,
	provideStatsUseCase,
	provideCSVImportUseCase,
	stats.NewCacheStatsUseCase,
	provideLoginUseCase,
	auth.NewLogoutUseCase,
	auth.NewRefreshUseCase,
)

// handlerSet HTTP处理器与路由
var handlerSet = wire.NewSet(
	handler.NewCardHandler,
	provideInventoryHandler,
	handler.NewOpsHandler,
	handler.NewAuthHandler,
	provideAuthMiddleware,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
	provideServer,
)

// InitializeApp 组装HTTP服务,cleanup按创建的逆序释放资源
func InitializeApp(ctx context.Context, cfg *config.Config) (*http.Server, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		handlerSet,
	)
	return nil, nil, nil
}
