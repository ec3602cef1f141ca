// internal/cache/redis.go
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-quickstart/config"

	"github.com/redis/go-redis/v9"
)

const (
	blacklistPrefix = "jwt:revoked:"
	captchaPrefix   = "captcha:"
)

type Cache struct {
	client *redis.Client
}

func NewCache(cfg config.RedisConfig) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Cache{client: client}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Revoke blacklists a token ID until its expiry. Already-expired tokens are ignored.
func (c *Cache) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, blacklistPrefix+tokenID, 1, ttl).Err()
}

func (c *Cache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.client.Exists(ctx, blacklistPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CaptchaStore keeps captcha answers in redis so they survive across instances.
// It satisfies base64Captcha.Store.
type CaptchaStore struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

func (c *Cache) CaptchaStore(ttl time.Duration) *CaptchaStore {
	return &CaptchaStore{client: c.client, ttl: ttl, timeout: 2 * time.Second}
}

func (s *CaptchaStore) Set(id string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Set(ctx, captchaPrefix+id, value, s.ttl).Err()
}

func (s *CaptchaStore) Get(id string, clear bool) string {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var (
		val string
		err error
	)
	if clear {
		val, err = s.client.GetDel(ctx, captchaPrefix+id).Result()
	} else {
		val, err = s.client.Get(ctx, captchaPrefix+id).Result()
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return ""
	}
	return val
}

// Verify compares case-insensitively; an unknown id never verifies.
func (s *CaptchaStore) Verify(id, answer string, clear bool) bool {
	stored := s.Get(id, clear)
	if stored == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), stored)
}
