package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/James9b/fake-api-ecommerce/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const redisKeyPrefix = "catalog:tab:"

type redisSessionBackend struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

// NewRedisSessionBackend stores each tab as a redis hash that expires after ttl of inactivity.
// Every read or write pushes the expiry back.
func NewRedisSessionBackend(ctx context.Context, redisURL string, ttl time.Duration, logger *logrus.Logger) (domain.SessionBackend, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Infof("Repository: Redis session backend connected to %s", opt.Addr)
	return NewRedisSessionBackendFromClient(client, ttl, logger), nil
}

func NewRedisSessionBackendFromClient(client *redis.Client, ttl time.Duration, logger *logrus.Logger) domain.SessionBackend {
	return &redisSessionBackend{client: client, ttl: ttl, log: logger}
}

func (b *redisSessionBackend) Scope(tabID string) domain.SessionStorage {
	return &redisTabStorage{backend: b, key: redisKeyPrefix + tabID}
}

func (b *redisSessionBackend) Close() error {
	return b.client.Close()
}

type redisTabStorage struct {
	backend *redisSessionBackend
	key     string
}

func (s *redisTabStorage) GetItem(ctx context.Context, field string) (string, bool, error) {
	pipe := s.backend.client.TxPipeline()
	get := pipe.HGet(ctx, s.key, field)
	if s.backend.ttl > 0 {
		pipe.Expire(ctx, s.key, s.backend.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		s.backend.log.Errorf("Repository: Redis HGET %s %s failed: %v", s.key, field, err)
		return "", false, fmt.Errorf("failed to read session item: %w", err)
	}

	v, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		s.backend.log.Errorf("Repository: Redis HGET %s %s failed: %v", s.key, field, err)
		return "", false, fmt.Errorf("failed to read session item: %w", err)
	}
	return v, true, nil
}

func (s *redisTabStorage) SetItem(ctx context.Context, field, value string) error {
	pipe := s.backend.client.TxPipeline()
	pipe.HSet(ctx, s.key, field, value)
	if s.backend.ttl > 0 {
		pipe.Expire(ctx, s.key, s.backend.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.backend.log.Errorf("Repository: Redis HSET %s %s failed: %v", s.key, field, err)
		return fmt.Errorf("failed to store session item: %w", err)
	}
	return nil
}

func (s *redisTabStorage) RemoveItem(ctx context.Context, field string) error {
	if err := s.backend.client.HDel(ctx, s.key, field).Err(); err != nil {
		s.backend.log.Errorf("Repository: Redis HDEL %s %s failed: %v", s.key, field, err)
		return fmt.Errorf("failed to remove session item: %w", err)
	}
	return nil
}
