package repository

import (
	"context"
	"sync"

	"github.com/James9b/fake-api-ecommerce/internal/domain"
)

type memorySessionBackend struct {
	mu   sync.Mutex
	tabs map[string]map[string]string
}

// NewMemorySessionBackend keeps tab storage in process memory. Tabs never expire and are lost on restart.
func NewMemorySessionBackend() domain.SessionBackend {
	return &memorySessionBackend{tabs: make(map[string]map[string]string)}
}

func (b *memorySessionBackend) Scope(tabID string) domain.SessionStorage {
	return &memoryTabStorage{backend: b, tabID: tabID}
}

func (b *memorySessionBackend) Close() error { return nil }

type memoryTabStorage struct {
	backend *memorySessionBackend
	tabID   string
}

func (s *memoryTabStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	v, ok := s.backend.tabs[s.tabID][key]
	return v, ok, nil
}

func (s *memoryTabStorage) SetItem(_ context.Context, key, value string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	items, ok := s.backend.tabs[s.tabID]
	if !ok {
		items = make(map[string]string)
		s.backend.tabs[s.tabID] = items
	}
	items[key] = value
	return nil
}

func (s *memoryTabStorage) RemoveItem(_ context.Context, key string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	items := s.backend.tabs[s.tabID]
	delete(items, key)
	if len(items) == 0 {
		delete(s.backend.tabs, s.tabID)
	}
	return nil
}
