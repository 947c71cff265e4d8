package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const blacklistPrefix = "blacklist:access:"

// RedisTokenBlacklist remembers revoked access tokens until they expire.
type RedisTokenBlacklist struct {
	Client *redis.Client
	Now    func() time.Time
}

// NewTokenBlacklist creates a new Redis-backed token blacklist
func NewTokenBlacklist(ctx context.Context, redisURL string) (*RedisTokenBlacklist, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisTokenBlacklist{Client: client, Now: time.Now}, nil
}

// Revoke blacklists the token until its expiry. Tokens already past expiry
// are rejected by the verifier and are not stored.
func (tb *RedisTokenBlacklist) Revoke(ctx context.Context, token string, until time.Time) error {
	ttl := until.Sub(tb.now())
	if ttl <= 0 {
		return nil
	}
	if err := tb.Client.Set(ctx, blacklistKey(token), "true", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token in Redis: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token was revoked. When Redis cannot answer
// the token is treated as revoked.
func (tb *RedisTokenBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := tb.Client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		log.WithError(err).Error("error checking token blacklist")
		return true, fmt.Errorf("check token blacklist: %w", err)
	}
	return n > 0, nil
}

func (tb *RedisTokenBlacklist) Ping(ctx context.Context) error {
	return tb.Client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (tb *RedisTokenBlacklist) Close() error {
	return tb.Client.Close()
}

func (tb *RedisTokenBlacklist) now() time.Time {
	if tb.Now != nil {
		return tb.Now()
	}
	return time.Now()
}

// raw tokens never reach Redis
func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistPrefix + hex.EncodeToString(sum[:])
}
