package prefs

import (
	"context"
	"sync"

	"github.com/example/storefront-console/internal/domain"
)

// MemoryPreferenceStore — настройки в памяти для тестов и автономного
// запуска.
type MemoryPreferenceStore struct {
	mu    sync.RWMutex
	store map[string]string
}

func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{store: make(map[string]string)}
}

func (s *MemoryPreferenceStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.store[key]
	return v, ok, nil
}

func (s *MemoryPreferenceStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.store[key] = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryPreferenceStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.store, key)
	s.mu.Unlock()
	return nil
}

var _ domain.PreferenceStore = (*MemoryPreferenceStore)(nil)
