package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

// SessionStore 登录会话与Token黑名单
//
// Key设计：
//
//	techhaven:session:{user_id}     Hash，refresh=Refresh Token摘要，login_at/ip 为登录信息
//	techhaven:blacklist:{sha256}    String，登出的Access Token，TTL为Token剩余有效期
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("%ssession:%d", keyPrefix, userID)
}

func blacklistKey(token string) string {
	return keyPrefix + "blacklist:" + digest(token)
}

// digest Token本身不落Redis，只保存摘要
func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SaveSession 登录成功后保存会话，新登录覆盖旧会话
func (s *SessionStore) SaveSession(ctx context.Context, userID uint, refreshToken, clientIP string, ttl time.Duration) error {
	key := sessionKey(userID)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]interface{}{
		"refresh":  digest(refreshToken),
		"ip":       clientIP,
		"login_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.ErrRedisError.WithErr(err)
	}
	return nil
}

// ValidateSession Refresh Token 是否属于当前会话
func (s *SessionStore) ValidateSession(ctx context.Context, userID uint, refreshToken string) (bool, error) {
	stored, err := s.client.HGet(ctx, sessionKey(userID), "refresh").Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.ErrRedisError.WithErr(err)
	}
	return stored == digest(refreshToken), nil
}

// DeleteSession 登出时删除会话，Refresh Token随之失效
func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return apperrors.ErrRedisError.WithErr(err)
	}
	return nil
}

// AddToBlacklist 将Access Token加入黑名单，ttl<=0 时无需记录（已过期）
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.ErrRedisError.WithErr(err)
	}
	return nil
}

// IsInBlacklist 检查Token是否已登出
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.ErrRedisError.WithErr(err)
	}
	return n > 0, nil
}
