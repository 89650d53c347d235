// Package routing discovers every command handler reachable from an
// aggregate type and builds, for handlers declared on nested entities, the
// accessor chain that locates the target entity when a command arrives.
//
// Building happens once per aggregate type at startup:
//
//	inspector := routing.NewInspector(catalog, props, routing.WithLogger(logger))
//	handlers, err := inspector.Inspect(reflect.TypeFor[*order.Order]())
//
// Each entry of handlers.Routed is a *ForwardingHandler. Invoking it with
// the aggregate root walks the chain (root, then each nested member) and
// calls the inner handler on the resolved entity, or fails with a
// *domain.RoutingError when the command does not select an entity.
//
// Member containment shapes are handled by strategies. The built-in ones
// cover single references, slices/arrays matched by an identity property,
// and maps keyed by identity. Additional shapes are added with
// RegisterStrategy, which modifies process-wide state: register extensions
// during startup, after package initialization and before the first
// Inspect call that should use them.
//
// The results of Inspect are immutable and safe for concurrent use.
package routing
