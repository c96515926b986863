package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/mtgkiosk/internal/application/auth"
	"github.com/xiebiao/mtgkiosk/internal/interface/http/dto"
	"github.com/xiebiao/mtgkiosk/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
	"github.com/xiebiao/mtgkiosk/pkg/jwt"
	"github.com/xiebiao/mtgkiosk/pkg/response"
)

const tokenType = "Bearer"

// AuthHandler 管理员认证处理器
type AuthHandler struct {
	login      *auth.LoginUseCase
	logout     *auth.LogoutUseCase
	refresh    *auth.RefreshUseCase
	jwtManager *jwt.Manager
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(login *auth.LoginUseCase, logout *auth.LogoutUseCase, refresh *auth.RefreshUseCase, jwtManager *jwt.Manager) *AuthHandler {
	return &AuthHandler{login: login, logout: logout, refresh: refresh, jwtManager: jwtManager}
}

// Login 管理员登录
// @Summary      管理员登录
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} dto.TokenResponse
// @Failure      400 {object} response.ErrorBody
// @Failure      401 {object} response.ErrorBody
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	pair, err := h.login.Execute(c.Request.Context(), auth.LoginRequest{
		Username: req.Username,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    tokenType,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Logout 登出
// @Summary      登出
// @Description  当前Access Token加入黑名单
// @Tags         认证
// @Security     BearerAuth
// @Success      204
// @Failure      401 {object} response.ErrorBody
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.logout.Execute(c.Request.Context(), claims, middleware.GetAccessToken(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Refresh 刷新Access Token
// @Summary      刷新Token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshTokenRequest true "Refresh Token"
// @Success      200 {object} dto.TokenResponse
// @Failure      401 {object} response.ErrorBody
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	access, err := h.refresh.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.TokenResponse{
		AccessToken: access,
		TokenType:   tokenType,
		ExpiresIn:   int64(h.jwtManager.AccessTokenTTL().Seconds()),
	})
}
