// Package sessions remembers revoked access tokens until they expire.
package sessions

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
)

const keyPrefix = "revoked-token:"

type redisStore struct {
	client *redis.Client
}

var _ core.RevocationStore = (*redisStore)(nil)

func NewRedisClient(conf core.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})
}

// NewRedisStore keeps revoked token IDs as keys that expire with their token.
func NewRedisStore(client *redis.Client) core.RevocationStore {
	return &redisStore{client: client}
}

func (s *redisStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil // already unusable
	}
	return errors.Wrap(s.client.Set(ctx, keyPrefix+tokenID, 1, ttl).Err(), "revoking token")
}

func (s *redisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+tokenID).Result()
	if err != nil {
		return false, errors.Wrap(err, "checking revoked token")
	}
	return n > 0, nil
}

// NewStore uses Redis when an address is configured and process memory otherwise.
// The returned stop function releases the store's resources.
func NewStore(ctx context.Context, conf *core.Config, logger core.Logger) (core.RevocationStore, func(), error) {
	if conf.Redis.Address == "" {
		s := NewMemoryStore()
		if err := s.StartSweeper("@every 1m"); err != nil {
			return nil, nil, err
		}
		return s, s.Stop, nil
	}

	client := NewRedisClient(conf.Redis)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, errors.Wrap(err, "pinging redis")
	}
	stop := func() {
		if err := client.Close(); err != nil {
			logger.Error("closing redis client", err)
		}
	}
	return NewRedisStore(client), stop, nil
}
