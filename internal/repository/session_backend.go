package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/James9b/fake-api-ecommerce/internal/domain"
	"github.com/James9b/fake-api-ecommerce/pkg/db"
	"github.com/sirupsen/logrus"
)

var ErrUnknownBackend = errors.New("unknown session backend")

type SessionBackendConfig struct {
	Kind        string // memory, redis or postgres
	RedisURL    string
	DatabaseURL string
	TTL         time.Duration
}

func NewSessionBackend(ctx context.Context, cfg SessionBackendConfig, logger *logrus.Logger) (domain.SessionBackend, error) {
	switch cfg.Kind {
	case "", "memory":
		logger.Info("Repository: Using in-memory session backend")
		return NewMemorySessionBackend(), nil
	case "redis":
		return NewRedisSessionBackend(ctx, cfg.RedisURL, cfg.TTL, logger)
	case "postgres":
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to session database: %w", err)
		}
		backend, err := NewPostgresSessionBackend(ctx, database, logger)
		if err != nil {
			_ = database.Close()
			return nil, err
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Kind)
	}
}
