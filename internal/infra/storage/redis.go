package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bryanwahyu/safeweb/internal/domain/history"
	"github.com/bryanwahyu/safeweb/pkg/logger"
)

// RedisSlot keeps the history blob under a single Redis key.
type RedisSlot struct {
	client *redis.Client
	key    string
	log    *logger.Logger
}

// NewRedisSlot connects and pings Redis. keyPrefix namespaces the slot key.
func NewRedisSlot(ctx context.Context, addr, password string, db int, keyPrefix string, log *logger.Logger) (*RedisSlot, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("redis")
	log.Info().Str("addr", addr).Int("db", db).Msg("connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisSlot{client: client, key: keyPrefix + history.Key, log: log}, nil
}

func (s *RedisSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, history.ErrSlotEmpty
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return data, nil
}

func (s *RedisSlot) Write(ctx context.Context, value []byte) error {
	if err := s.client.Set(ctx, s.key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// Check pings Redis; used by the health endpoint.
func (s *RedisSlot) Check(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisSlot) Close() error {
	s.log.Info().Msg("closing Redis connection")
	return s.client.Close()
}
