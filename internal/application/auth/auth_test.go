package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/mtgkiosk/internal/infrastructure/config"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
	"github.com/xiebiao/mtgkiosk/pkg/jwt"
)

func setup(t *testing.T) (*LoginUseCase, *LogoutUseCase, *RefreshUseCase, *jwt.Manager, *redis.SessionStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config.AuthConfig{Enabled: true, AdminUsername: "admin", AdminPasswordHash: string(hash)}
	manager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	sessions := redis.NewSessionStore(client, "test")

	return NewLoginUseCase(cfg, manager, sessions, time.Hour),
		NewLogoutUseCase(sessions),
		NewRefreshUseCase(manager, sessions),
		manager,
		sessions
}

func TestLogin(t *testing.T) {
	login, _, _, manager, sessions := setup(t)
	ctx := context.Background()

	pair, err := login.Execute(ctx, LoginRequest{Username: "admin", Password: "s3cret", ClientIP: "10.0.0.1"})
	require.NoError(t, err)

	claims, err := manager.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	session, err := sessions.GetSession(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", session["ip"])

	_, err = login.Execute(ctx, LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	_, err = login.Execute(ctx, LoginRequest{Username: "root", Password: "s3cret"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	login, logout, _, manager, sessions := setup(t)
	ctx := context.Background()

	pair, err := login.Execute(ctx, LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	claims, err := manager.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, logout.Execute(ctx, claims, pair.AccessToken))

	revoked, err := sessions.IsInBlacklist(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = sessions.GetSession(ctx, "admin")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRefresh(t *testing.T) {
	login, _, refresh, manager, sessions := setup(t)
	ctx := context.Background()

	pair, err := login.Execute(ctx, LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	access, err := refresh.Execute(ctx, pair.RefreshToken)
	require.NoError(t, err)
	_, err = manager.ParseAccessToken(access)
	assert.NoError(t, err)

	_, err = refresh.Execute(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	require.NoError(t, sessions.AddToBlacklist(ctx, pair.RefreshToken, time.Hour))
	_, err = refresh.Execute(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
