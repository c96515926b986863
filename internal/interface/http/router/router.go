// Package router 注册全部HTTP路由
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/config"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/mtgkiosk/internal/interface/http/handler"
	"github.com/xiebiao/mtgkiosk/internal/interface/http/middleware"
)

const tracerName = "mtgkiosk/http"

// Handlers 全部HTTP处理器
type Handlers struct {
	Card      *handler.CardHandler
	Inventory *handler.InventoryHandler
	Ops       *handler.OpsHandler
	Auth      *handler.AuthHandler
}

// New 创建Gin引擎并注册路由
func New(cfg *config.Config, h Handlers, cache redis.Cache, authMiddleware *middleware.AuthMiddleware) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.CORS(cfg.CORS),
		middleware.Tracing(tracerName),
		middleware.Metrics(),
	)

	// 运维
	r.GET("/ping", h.Ops.Ping)
	r.GET("/cache_stats", h.Ops.CacheStats)
	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.Handler()))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	admin := r.Group("/admin", authMiddleware.RequireAdmin())
	{
		admin.POST("/refresh-collection-counts", h.Ops.RefreshCollectionCounts)
	}

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", authMiddleware.RequireToken(), h.Auth.Logout)
	}

	listTTL := cfg.Cache.ListTTL
	setTTL := cfg.Cache.SetTTL

	// 目录(公开)
	cards := r.Group("/cards")
	{
		cards.GET("", middleware.ResponseCache(cache, listTTL, middleware.Endpoint("cards")), h.Card.ListCards)
		cards.GET("/search", middleware.ResponseCache(cache, listTTL, middleware.Endpoint("card_search")), h.Card.SearchCards)
		cards.POST("/bulk", h.Card.BulkCards)
		cards.GET("/:id", h.Card.GetCard)
	}
	r.GET("/keywords", middleware.ResponseCache(cache, setTTL, middleware.Endpoint("keywords")), h.Card.Keywords)
	r.GET("/all-sets", middleware.ResponseCache(cache, setTTL, middleware.Endpoint("all_sets")), h.Card.AllSets)
	r.GET("/sets/:code/cards",
		middleware.ResponseCache(cache, setTTL, middleware.ParamEndpoint(middleware.Endpoint("set_cards"), "code")),
		h.Card.SetCards)
	r.GET("/v2/cards", middleware.ResponseCache(cache, listTTL, middleware.Endpoint("v2_cards")), h.Card.V2Cards)

	// 库存:两个桶共用同一组Handler
	for _, b := range []inventory.Bucket{inventory.Collection, inventory.Kiosk} {
		registerBucket(r.Group("/"+b.String(), middleware.Bucket(b)), h.Inventory, cache, listTTL, authMiddleware)
	}

	return r
}

func registerBucket(g *gin.RouterGroup, h *handler.InventoryHandler, cache redis.Cache, ttl time.Duration, authMiddleware *middleware.AuthMiddleware) {
	g.GET("", middleware.ResponseCache(cache, ttl, middleware.BucketEndpoint("")), h.ListCards)
	g.GET("/sets", middleware.ResponseCache(cache, ttl, middleware.BucketEndpoint("_sets")), h.ListSets)
	g.GET("/sets/:code/cards",
		middleware.ResponseCache(cache, ttl, middleware.ParamEndpoint(middleware.BucketEndpoint("_set_cards"), "code")),
		h.SetCards)
	g.GET("/stats", h.Stats)

	mutations := g.Group("", authMiddleware.RequireAdmin())
	{
		mutations.POST("/import_csv", h.ImportCSV)
		mutations.POST("/:card_id", h.UpdateQuantity)
		mutations.PUT("/:card_id", h.UpdateQuantity)
		mutations.DELETE("/:card_id", h.DeleteQuantity)
	}
}
