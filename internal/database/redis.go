package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pavangundu/ai-helper/internal/config"
	"github.com/pavangundu/ai-helper/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by CacheGet when the key is absent or redis is disabled.
var ErrCacheMiss = errors.New("cache miss")

// RedisStore backs caching, rate limiting and token revocation. A nil client
// disables all three: reads miss, limits allow and nothing is revoked.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// InitRedis connects to REDIS_ADDR. An empty address or a failed ping returns a disabled store.
func InitRedis(ctx context.Context) *RedisStore {
	if config.AppConfig.RedisAddr == "" {
		logger.Warn().Msg("REDIS_ADDR not set, caching and generation limits are disabled")
		return NewRedisStore(nil)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       0,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		logger.Warn().Err(err).Msg("Failed to connect to Redis, caching and generation limits are disabled")
		_ = client.Close()
		return NewRedisStore(nil)
	}

	logger.Info().Msg("Connected to Redis successfully")
	return NewRedisStore(client)
}

func (s *RedisStore) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return errors.New("redis not configured")
	}
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Close()
}

// Rate Limiting

// CheckRateLimit counts a hit for key inside a fixed window and reports whether it is within limit.
func (s *RedisStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !s.Enabled() || limit <= 0 {
		return true, nil
	}

	key = fmt.Sprintf("rate_limit:%s", key)
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}

	if count == 1 {
		s.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

// Caching

func (s *RedisStore) CacheSet(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, expiration).Err()
}

func (s *RedisStore) CacheGet(ctx context.Context, key string, dest interface{}) error {
	if !s.Enabled() {
		return ErrCacheMiss
	}
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

func (s *RedisStore) CacheDelete(ctx context.Context, keys ...string) error {
	if !s.Enabled() || len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Token revocation

func (s *RedisStore) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Set(ctx, "token_blacklist:"+jti, 1, ttl).Err()
}

// IsTokenBlacklisted fails open: a redis error is logged and the token is accepted.
func (s *RedisStore) IsTokenBlacklisted(ctx context.Context, jti string) bool {
	if !s.Enabled() || jti == "" {
		return false
	}
	n, err := s.client.Exists(ctx, "token_blacklist:"+jti).Result()
	if err != nil {
		logger.Warn().Err(err).Msg("Token blacklist lookup failed")
		return false
	}
	return n > 0
}
