package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/James9b/fake-api-ecommerce/internal/domain"
	"github.com/sirupsen/logrus"
)

const createSessionTable = `
        CREATE TABLE IF NOT EXISTS tab_session_items (
            tab_id     TEXT NOT NULL,
            item_key   TEXT NOT NULL,
            item_value TEXT NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            PRIMARY KEY (tab_id, item_key)
        )`

type postgresSessionBackend struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewPostgresSessionBackend keeps tab storage in the tab_session_items table, creating it when missing.
func NewPostgresSessionBackend(ctx context.Context, db *sql.DB, logger *logrus.Logger) (domain.SessionBackend, error) {
	if _, err := db.ExecContext(ctx, createSessionTable); err != nil {
		logger.Errorf("Repository: Failed to create tab_session_items table: %v", err)
		return nil, fmt.Errorf("could not prepare session table: %w", err)
	}
	logger.Info("Repository: Postgres session backend ready")
	return &postgresSessionBackend{db: db, log: logger}, nil
}

func (b *postgresSessionBackend) Scope(tabID string) domain.SessionStorage {
	return &postgresTabStorage{backend: b, tabID: tabID}
}

func (b *postgresSessionBackend) Close() error {
	return b.db.Close()
}

type postgresTabStorage struct {
	backend *postgresSessionBackend
	tabID   string
}

func (s *postgresTabStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	query := `
        SELECT item_value
        FROM tab_session_items
        WHERE tab_id = $1 AND item_key = $2`
	var value string
	err := s.backend.db.QueryRowContext(ctx, query, s.tabID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.backend.log.Errorf("Repository: Failed to read session item %s for tab %s: %v", key, s.tabID, err)
		return "", false, fmt.Errorf("could not read session item: %w", err)
	}
	return value, true, nil
}

func (s *postgresTabStorage) SetItem(ctx context.Context, key, value string) error {
	query := `
        INSERT INTO tab_session_items (tab_id, item_key, item_value)
        VALUES ($1, $2, $3)
        ON CONFLICT (tab_id, item_key)
        DO UPDATE SET item_value = EXCLUDED.item_value, updated_at = now()`
	if _, err := s.backend.db.ExecContext(ctx, query, s.tabID, key, value); err != nil {
		s.backend.log.Errorf("Repository: Failed to store session item %s for tab %s: %v", key, s.tabID, err)
		return fmt.Errorf("could not store session item: %w", err)
	}
	return nil
}

func (s *postgresTabStorage) RemoveItem(ctx context.Context, key string) error {
	query := `
        DELETE FROM tab_session_items
        WHERE tab_id = $1 AND item_key = $2`
	if _, err := s.backend.db.ExecContext(ctx, query, s.tabID, key); err != nil {
		s.backend.log.Errorf("Repository: Failed to remove session item %s for tab %s: %v", key, s.tabID, err)
		return fmt.Errorf("could not remove session item: %w", err)
	}
	return nil
}
