package cartstore

import (
	"context"
	"sync"

	"dealership-service/internal/models"
)

// MemoryStore is an in-process cart store. The map itself is guarded so
// concurrent sessions do not corrupt it, but a single session's cart is
// still last-write-wins, matching the Store contract.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]*models.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]*models.Cart)}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*models.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *cart
	cp.Items = append([]models.CartLineItem(nil), cart.Items...)
	return &cp, nil
}

func (m *MemoryStore) Set(_ context.Context, cart *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *cart
	cp.Items = append([]models.CartLineItem(nil), cart.Items...)
	m.carts[cart.SessionID] = &cp
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, sessionID)
	return nil
}
