package ports

import (
	"context"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
)

// CommandService defines the service port for command dispatch against
// order aggregates. Implemented by the application layer; called by the
// HTTP handlers.
type CommandService interface {
	// CreateOrder runs the order constructor handler and stores the result.
	// Returns domain.ErrValidation for an invalid command and
	// domain.ErrConflict if the order already exists.
	CreateOrder(ctx context.Context, cmd order.PlaceOrder) (*order.Order, error)

	// GetOrder returns an order by ID.
	// Returns domain.ErrNotFound if the order does not exist.
	GetOrder(ctx context.Context, id string) (*order.Order, error)

	// Dispatch loads the order, invokes the handler registered for the
	// payload's type and stores the result.
	// Returns domain.ErrNotFound if the order or a handler is missing,
	// domain.ErrRouting if the payload does not select a nested entity, and
	// any error returned by the handler.
	Dispatch(ctx context.Context, orderID string, payload any) (*DispatchResult, error)

	// DispatchBatch dispatches independent commands. Commands addressed to
	// the same order run in input order against one loaded aggregate and
	// are saved together; different orders run concurrently. Each command
	// succeeds or fails on its own.
	DispatchBatch(ctx context.Context, cmds []AddressedCommand) []BatchResult

	// Routes describes every handler reachable from the order aggregate.
	Routes() []RouteInfo
}

// DispatchResult is the outcome of a single dispatched command.
type DispatchResult struct {
	Order   *order.Order
	Handler string
	Result  any
}

// AddressedCommand is a payload addressed to one order.
type AddressedCommand struct {
	OrderID string
	Payload any
}

// BatchResult records the outcome of one command of a batch, in input order.
type BatchResult struct {
	Index   int
	OrderID string
	Handler string
	Version int64
	Err     error
}

// Handler kinds reported in RouteInfo.
const (
	RouteDirect      = "direct"
	RouteConstructor = "constructor"
	RouteNested      = "nested"
)

// RouteInfo describes one handler of an aggregate and, for nested handlers,
// the path from the aggregate root to the target entity.
type RouteInfo struct {
	Command string     `json:"command" toml:"command"`
	Payload string     `json:"payload" toml:"payload"`
	Entity  string     `json:"entity" toml:"entity"`
	Kind    string     `json:"kind" toml:"kind"`
	Depth   int        `json:"depth" toml:"depth"`
	Path    []RouteHop `json:"path,omitempty" toml:"path,omitempty"`
}

// RouteHop is one step of a nested handler's accessor chain.
type RouteHop struct {
	Member         string `json:"member" toml:"member"`
	Kind           string `json:"kind" toml:"kind"`
	Entity         string `json:"entity" toml:"entity"`
	TargetProperty string `json:"target_property,omitempty" toml:"target_property,omitempty"`
}
