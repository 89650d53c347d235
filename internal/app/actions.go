package app

import (
	"context"
	"fmt"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
)

var _ domain.Action = (*saveOrder)(nil)

// saveOrder persists an order snapshot on Commit.
type saveOrder struct {
	order *order.Order
	save  func(ctx context.Context) error
}

func (a *saveOrder) Execute(ctx context.Context) error { return a.save(ctx) }

// Rollback is a no-op: a versioned snapshot write is the only write of its
// unit of work, so nothing runs after it that could fail.
func (a *saveOrder) Rollback(context.Context) error { return nil }

func (a *saveOrder) Description() string {
	return fmt.Sprintf("save order %s at version %d", a.order.ID, a.order.Version)
}
