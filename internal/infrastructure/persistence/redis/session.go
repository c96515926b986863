package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
)

// SessionStore 管理员会话与Token黑名单
// Key设计:{prefix}:session:{username}、{prefix}:blacklist:{token}
type SessionStore struct {
	client *redis.Client
	prefix string
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client, prefix string) *SessionStore {
	if prefix == "" {
		prefix = "mtg"
	}
	return &SessionStore{client: client, prefix: prefix + ":"}
}

func (s *SessionStore) sessionKey(username string) string {
	return s.prefix + "session:" + username
}

func (s *SessionStore) blacklistKey(token string) string {
	return s.prefix + "blacklist:" + token
}

// SaveSession 记录登录信息,过期时间与Refresh Token一致
func (s *SessionStore) SaveSession(ctx context.Context, username string, data map[string]interface{}, ttl time.Duration) error {
	key := s.sessionKey(username)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, data)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.Wrap(err, "save session failed")
	}
	return nil
}

// GetSession 获取会话,不存在返回ErrUnauthorized
func (s *SessionStore) GetSession(ctx context.Context, username string) (map[string]string, error) {
	result, err := s.client.HGetAll(ctx, s.sessionKey(username)).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "get session failed")
	}
	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	return result, nil
}

// DeleteSession 删除会话(登出)
func (s *SessionStore) DeleteSession(ctx context.Context, username string) error {
	if err := s.client.Del(ctx, s.sessionKey(username)).Err(); err != nil {
		return apperrors.Wrap(err, "delete session failed")
	}
	return nil
}

// AddToBlacklist Token加入黑名单,ttl取Token剩余有效期
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// 已过期的Token无需拉黑
		return nil
	}
	if err := s.client.Set(ctx, s.blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "revoke token failed")
	}
	return nil
}

// IsInBlacklist 检查Token是否已被吊销
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "check token blacklist failed")
	}
	return exists > 0, nil
}

// NoopSessionStore 未启用Redis时使用,登出不会吊销Token
type NoopSessionStore struct{}

func (NoopSessionStore) SaveSession(context.Context, string, map[string]interface{}, time.Duration) error {
	return nil
}

func (NoopSessionStore) DeleteSession(context.Context, string) error {
	return nil
}

func (NoopSessionStore) AddToBlacklist(context.Context, string, time.Duration) error {
	return nil
}

func (NoopSessionStore) IsInBlacklist(context.Context, string) (bool, error) {
	return false, nil
}
