package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"laundrybook/models"
	"laundrybook/utils"

	"github.com/go-redis/redis/v8"
)

// ErrTokenRevoked is returned by Validate for tokens that parse but have been
// logged out or never issued by this process.
var ErrTokenRevoked = errors.New("session: token revoked or unknown")

// TokenManager issues and revokes session tokens. Revocation works by hash:
// a token is live while its hash is cached, so logout is immediate even
// though the JWT itself stays well-formed until expiry.
type TokenManager interface {
	Issue(ctx context.Context, profile models.Profile) (string, error)
	Validate(ctx context.Context, token string) (phone, room string, err error)
	Revoke(ctx context.Context, token string) error
}

// RedisTokenManager is the production TokenManager backed by the auth cache.
type RedisTokenManager struct {
	Client *redis.Client
	TTL    time.Duration
}

func (m *RedisTokenManager) Issue(ctx context.Context, profile models.Profile) (string, error) {
	token, err := utils.GenerateToken(profile.Phone, profile.Room, m.TTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	key := utils.AuthCachePrefix + utils.HashToken(token)
	if err := m.Client.Set(ctx, key, profile.Phone, m.TTL).Err(); err != nil {
		return "", fmt.Errorf("failed to cache session token: %w", err)
	}
	return token, nil
}

func (m *RedisTokenManager) Validate(ctx context.Context, token string) (string, string, error) {
	phone, room, err := utils.ExtractClaimsFromToken(token)
	if err != nil {
		return "", "", err
	}
	key := utils.AuthCachePrefix + utils.HashToken(token)
	if err := m.Client.Get(ctx, key).Err(); err != nil {
		if err == redis.Nil {
			return "", "", ErrTokenRevoked
		}
		return "", "", fmt.Errorf("failed to check session token: %w", err)
	}
	return phone, room, nil
}

func (m *RedisTokenManager) Revoke(ctx context.Context, token string) error {
	key := utils.AuthCachePrefix + utils.HashToken(token)
	if err := m.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to revoke session token: %w", err)
	}
	return nil
}
