package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
	"github.com/xiebiao/mtgkiosk/pkg/jwt"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
	"github.com/xiebiao/mtgkiosk/pkg/response"
)

const (
	claimsKey = "claims"
	tokenKey  = "access_token"
)

// TokenBlacklist 已吊销Token查询(redis.SessionStore实现)
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware 管理员JWT认证中间件
// 设计说明：
// 1. 从Header提取Bearer Token
// 2. 检查Token黑名单(已登出)
// 3. 校验签名、过期时间和Token类型
// 4. Claims注入Context
//
// auth.enabled=false时直接放行(本地单机部署)
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
	enabled    bool
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist, enabled bool) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
		enabled:    enabled,
	}
}

// RequireAdmin 修改类接口(库存写入、导入、管理操作)
//
//	buckets.PUT("/:card_id", authMiddleware.RequireAdmin(), h.UpdateQuantity)
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}
		if !m.authenticate(c) {
			return
		}
		c.Next()
	}
}

// RequireToken 无论是否启用认证都要求有效Token(登出)
func (m *AuthMiddleware) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			return
		}
		c.Next()
	}
}

// authenticate 校验失败时已写入响应并Abort
func (m *AuthMiddleware) authenticate(c *gin.Context) bool {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return false
	}

	revoked, err := m.blacklist.IsInBlacklist(c.Request.Context(), token)
	if err != nil {
		// Redis不可用时拒绝,避免已登出的Token继续生效
		logger.Ctx(c.Request.Context()).Error().Err(err).Msg("检查Token黑名单失败")
		response.ErrorWithStatus(c, http.StatusServiceUnavailable, "authentication unavailable")
		return false
	}
	if revoked {
		response.Error(c, apperrors.ErrInvalidToken)
		return false
	}

	claims, err := m.jwtManager.ParseAccessToken(token)
	if err != nil {
		response.Error(c, err)
		return false
	}

	c.Set(claimsKey, claims)
	c.Set(tokenKey, token)
	return true
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// GetClaims 从Context获取当前Token的Claims
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// GetAccessToken 从Context获取原始Access Token(登出时加入黑名单)
func GetAccessToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
