package domain

import "context"

type User struct {
	Username string `json:"username"`
}

type LoginResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SessionStorage is a tab-scoped string key/value store.
type SessionStorage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// SessionBackend hands out one SessionStorage per browser tab.
type SessionBackend interface {
	Scope(tabID string) SessionStorage
	Close() error
}
