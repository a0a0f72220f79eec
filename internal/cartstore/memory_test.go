package cartstore

import (
	"context"
	"sync"
	"testing"

	"dealership-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetMissing(t *testing.T) {
	m := NewMemoryStore()

	_, err := m.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	cart := &models.Cart{
		SessionID: "sess-1",
		Items: []models.CartLineItem{
			{ID: "line-1", ItemID: "part-1", Name: "Brake Pads", Price: 2500, Quantity: 2},
		},
	}
	require.NoError(t, m.Set(ctx, cart))

	got, err := m.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, cart.SessionID, got.SessionID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Brake Pads", got.Items[0].Name)
}

func TestMemoryStoreCopiesOnSetAndGet(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	cart := &models.Cart{
		SessionID: "sess-1",
		Items:     []models.CartLineItem{{ID: "line-1", Quantity: 1}},
	}
	require.NoError(t, m.Set(ctx, cart))

	// Mutating the caller's cart after Set must not leak into the store.
	cart.Items[0].Quantity = 99

	got, err := m.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Quantity)

	// Mutating a Get result must not leak either.
	got.Items[0].Quantity = 42

	again, err := m.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestMemoryStoreDelete(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, &models.Cart{SessionID: "sess-1"}))
	require.NoError(t, m.Delete(ctx, "sess-1"))

	_, err := m.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent session is a no-op.
	assert.NoError(t, m.Delete(ctx, "sess-1"))
}

func TestMemoryStoreConcurrentSessions(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%26))
			_ = m.Set(ctx, &models.Cart{SessionID: id})
			_, _ = m.Get(ctx, id)
		}(i)
	}
	wg.Wait()
}
