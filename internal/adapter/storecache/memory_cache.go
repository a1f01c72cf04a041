package storecache

import (
	"sync"

	"github.com/example/storefront-console/internal/domain"
)

// MemoryStorefrontCache — локальное представление витрин, сохраняющее
// порядок добавления.
type MemoryStorefrontCache struct {
	mu    sync.RWMutex
	order []string
	store map[string]domain.Storefront
}

func NewMemoryStorefrontCache() *MemoryStorefrontCache {
	return &MemoryStorefrontCache{store: make(map[string]domain.Storefront)}
}

func (c *MemoryStorefrontCache) All() []domain.Storefront {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Storefront, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.store[id])
	}
	return out
}

func (c *MemoryStorefrontCache) ByID(id string) (domain.Storefront, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sf, ok := c.store[id]
	return sf, ok
}

// Put добавляет витрину; повторный Put того же id обновляет запись,
// сохраняя её позицию.
func (c *MemoryStorefrontCache) Put(s domain.Storefront) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.store[s.ID]; !ok {
		c.order = append(c.order, s.ID)
	}
	c.store[s.ID] = s
}

var _ domain.StorefrontCache = (*MemoryStorefrontCache)(nil)
