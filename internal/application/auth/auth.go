package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/mtgkiosk/internal/infrastructure/config"
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
	"github.com/xiebiao/mtgkiosk/pkg/jwt"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
)

// SessionStore 会话与黑名单存储(redis.SessionStore实现)
type SessionStore interface {
	SaveSession(ctx context.Context, username string, data map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, username string) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// LoginUseCase 管理员登录
// 只有一个管理员账号,密码以bcrypt哈希形式配置
type LoginUseCase struct {
	cfg        config.AuthConfig
	jwtManager *jwt.Manager
	sessions   SessionStore
	sessionTTL time.Duration
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(cfg config.AuthConfig, jwtManager *jwt.Manager, sessions SessionStore, sessionTTL time.Duration) *LoginUseCase {
	return &LoginUseCase{cfg: cfg, jwtManager: jwtManager, sessions: sessions, sessionTTL: sessionTTL}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string
	Password string
	ClientIP string
}

// Execute 校验用户名密码并签发Token对
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*jwt.TokenPair, error) {
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(uc.cfg.AdminUsername)) == 1
	// 用户名不匹配时仍然做一次bcrypt比较,避免通过耗时区分
	passErr := bcrypt.CompareHashAndPassword([]byte(uc.cfg.AdminPasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		logger.Ctx(ctx).Warn().Str("username", req.Username).Str("ip", req.ClientIP).Msg("管理员登录失败")
		return nil, apperrors.ErrInvalidPassword
	}

	pair, err := uc.jwtManager.GenerateToken(req.Username)
	if err != nil {
		return nil, err
	}

	session := map[string]interface{}{
		"login_at": time.Now().Unix(),
		"ip":       req.ClientIP,
	}
	if err := uc.sessions.SaveSession(ctx, req.Username, session, uc.sessionTTL); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("保存会话失败")
	}

	logger.Ctx(ctx).Info().Str("username", req.Username).Str("ip", req.ClientIP).Msg("管理员登录")
	return pair, nil
}

// LogoutUseCase 登出:删除会话,Access Token加入黑名单直到其过期
type LogoutUseCase struct {
	sessions SessionStore
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessions SessionStore) *LogoutUseCase {
	return &LogoutUseCase{sessions: sessions}
}

// Execute 执行登出
func (uc *LogoutUseCase) Execute(ctx context.Context, claims *jwt.Claims, accessToken string) error {
	if err := uc.sessions.DeleteSession(ctx, claims.Username); err != nil {
		return err
	}
	return uc.sessions.AddToBlacklist(ctx, accessToken, claims.Remaining(time.Now()))
}

// RefreshUseCase 用Refresh Token换新的Access Token
type RefreshUseCase struct {
	jwtManager *jwt.Manager
	sessions   SessionStore
}

// NewRefreshUseCase 创建刷新用例
func NewRefreshUseCase(jwtManager *jwt.Manager, sessions SessionStore) *RefreshUseCase {
	return &RefreshUseCase{jwtManager: jwtManager, sessions: sessions}
}

// Execute 已吊销的Refresh Token不能再使用
func (uc *RefreshUseCase) Execute(ctx context.Context, refreshToken string) (string, error) {
	revoked, err := uc.sessions.IsInBlacklist(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", apperrors.ErrInvalidToken
	}
	return uc.jwtManager.RefreshAccessToken(refreshToken)
}
