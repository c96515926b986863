package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/xiebiao/mtgkiosk/docs"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/config"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
	"github.com/xiebiao/mtgkiosk/pkg/metrics"
	"github.com/xiebiao/mtgkiosk/pkg/tracing"
)

// @title           mtgkiosk API
// @version         1.0
// @description     卡牌收藏与kiosk库存服务
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal().Err(err).Msg("加载配置失败")
	}

	// 2. 初始化日志
	output, closeLog, err := logger.OpenOutput(cfg.Log.Output)
	if err != nil {
		logger.L().Fatal().Err(err).Str("output", cfg.Log.Output).Msg("打开日志输出失败")
	}
	defer closeLog()
	logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.EnableCaller,
		Output: output,
	})

	logger.L().Info().
		Int("port", cfg.Server.Port).
		Str("mode", cfg.Server.Mode).
		Str("database", cfg.Database.Driver+"://"+cfg.Database.Host+"/"+cfg.Database.DBName).
		Bool("redis", cfg.Redis.Enabled).
		Bool("auth", cfg.Auth.Enabled).
		Msg("✓ 配置加载成功")

	ctx := context.Background()

	// 3. 链路追踪与指标
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.L().Fatal().Err(err).Msg("初始化链路追踪失败")
	}
	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
	}

	// 4. 依赖注入
	srv, cleanup, err := buildApp(ctx, cfg)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("初始化应用失败")
	}

	// 5. 启动服务
	go func() {
		logger.L().Info().Str("addr", srv.Addr).Msg("🚀 服务启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("启动服务失败")
		}
	}()

	// 6. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.L().Info().Str("signal", sig.String()).Msg("正在关闭服务...")

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Error().Err(err).Msg("服务关闭超时")
	}
	cleanup()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.L().Warn().Err(err).Msg("刷新Span失败")
	}
	logger.L().Info().Msg("✓ 服务已停止")
}
