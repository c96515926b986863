package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appinventory "github.com/xiebiao/mtgkiosk/internal/application/inventory"
	"github.com/xiebiao/mtgkiosk/internal/application/stats"
	"github.com/xiebiao/mtgkiosk/internal/interface/http/dto"
	"github.com/xiebiao/mtgkiosk/pkg/response"
)

// OpsHandler 运维接口
type OpsHandler struct {
	cacheStats *stats.CacheStatsUseCase
	refresh    *appinventory.RefreshCountsUseCase
}

// NewOpsHandler 创建运维处理器
func NewOpsHandler(cacheStats *stats.CacheStatsUseCase, refresh *appinventory.RefreshCountsUseCase) *OpsHandler {
	return &OpsHandler{cacheStats: cacheStats, refresh: refresh}
}

// Ping 健康检查
// @Summary      健康检查
// @Tags         运维
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /ping [get]
func (h *OpsHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
		"status":  "ok",
	})
}

// CacheStats 缓存命中统计
// @Summary      缓存统计
// @Tags         运维
// @Produce      json
// @Success      200 {object} dto.CacheStatsResponse
// @Router       /cache_stats [get]
func (h *OpsHandler) CacheStats(c *gin.Context) {
	s, err := h.cacheStats.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.CacheStatsResponse{
		TotalCalls: s.TotalCalls,
		Hits:       s.Hits,
		Misses:     s.Misses,
		HitRate:    s.HitRate,
	})
}

// RefreshCollectionCounts 手动重建系列数量聚合
// @Summary      刷新系列收藏统计
// @Tags         运维
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.RefreshCountsResponse
// @Failure      401 {object} response.ErrorBody
// @Router       /admin/refresh-collection-counts [post]
func (h *OpsHandler) RefreshCollectionCounts(c *gin.Context) {
	n, err := h.refresh.Manual(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.RefreshCountsResponse{SetsRefreshed: n})
}
