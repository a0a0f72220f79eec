package cartstore

import (
	"context"
	"errors"

	"dealership-service/internal/models"
)

// ErrNotFound is returned when a session has no cart.
var ErrNotFound = errors.New("cart not found")

// Store is the session-keyed cart store. Carts are written whole with
// last-write-wins semantics: there is deliberately no cross-request
// locking of a session's cart, sessions are assumed single-client.
type Store interface {
	Get(ctx context.Context, sessionID string) (*models.Cart, error)
	Set(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, sessionID string) error
}
