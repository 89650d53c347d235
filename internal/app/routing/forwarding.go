package routing

import (
	"context"
	"reflect"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/command"
)

// Compile-time interface check.
var _ command.Handler = (*ForwardingHandler)(nil)

// ForwardingHandler decorates a handler declared on a nested entity. It is
// invoked with the aggregate root, resolves the target entity through its
// accessor chain and invokes the inner handler on that entity.
type ForwardingHandler struct {
	accessor EntityAccessor
	handler  command.Handler
}

// NewForwardingHandler wraps handler so that it runs against the entity
// yielded by accessor.
func NewForwardingHandler(accessor EntityAccessor, handler command.Handler) *ForwardingHandler {
	return &ForwardingHandler{accessor: accessor, handler: handler}
}

// PayloadType implements command.Handler.
func (f *ForwardingHandler) PayloadType() reflect.Type { return f.handler.PayloadType() }

// EntityType implements command.Handler; it reports the nested entity type.
func (f *ForwardingHandler) EntityType() reflect.Type { return f.handler.EntityType() }

// Markers implements command.Handler.
func (f *ForwardingHandler) Markers() command.Markers { return f.handler.Markers() }

// Invoke resolves the target entity from aggregate and delegates to the
// inner handler. When no entity is found it returns a *domain.RoutingError;
// errors from the inner handler are returned unchanged.
func (f *ForwardingHandler) Invoke(ctx context.Context, aggregate any, msg command.Message) (any, error) {
	target, ok := f.accessor.Instance(aggregate, msg)
	if !ok {
		return nil, &domain.RoutingError{
			Entity:  command.TypeName(f.accessor.EntityType()),
			Payload: command.TypeName(msg.PayloadType()),
		}
	}
	return f.handler.Invoke(ctx, target, msg)
}

// Accessor returns the leaf of the accessor chain.
func (f *ForwardingHandler) Accessor() EntityAccessor { return f.accessor }

// Inner returns the wrapped handler.
func (f *ForwardingHandler) Inner() command.Handler { return f.handler }

// Chain returns the accessor chain from the aggregate root to the target.
func (f *ForwardingHandler) Chain() []EntityAccessor { return Chain(f.accessor) }

// Depth is the number of accessor links between the root and the target.
func (f *ForwardingHandler) Depth() int { return Depth(f.accessor) }
