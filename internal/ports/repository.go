package ports

import (
	"context"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
)

// OrderRepository persists order aggregates as whole snapshots.
// Implemented by the storage adapters (memory, sqlite) and the remote
// order store client; called by the command service.
type OrderRepository interface {
	// Load returns the stored order. The returned aggregate is owned by the
	// caller; mutating it does not affect the store until Save.
	// Returns domain.ErrNotFound if the order does not exist.
	Load(ctx context.Context, id string) (*order.Order, error)

	// Save stores o if the stored version equals o.Version, then increments
	// o.Version. A zero version creates the order.
	// Returns domain.ErrConflict if the order was modified concurrently or
	// already exists.
	Save(ctx context.Context, o *order.Order) error
}
