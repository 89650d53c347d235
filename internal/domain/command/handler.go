package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// Errors returned by Invoke when a handler is called with the wrong kind of
// target or payload. Both indicate a wiring bug, not a business failure.
var (
	ErrTargetType  = errors.New("command: handler target type mismatch")
	ErrPayloadType = errors.New("command: handler payload type mismatch")
)

// Marker keys set on every handler.
const (
	MarkerName = "name"
	MarkerKind = "kind"
)

// Handler kinds reported under MarkerKind.
const (
	KindMethod      = "method"
	KindConstructor = "constructor"
)

// Markers is the handler metadata visible to dispatch logic.
type Markers map[string]string

// Get returns the marker value for key, or "" when absent.
func (m Markers) Get(key string) string {
	return m[key]
}

// Handler is a unit of command-handling logic bound to an entity type and an
// accepted payload type.
type Handler interface {
	// PayloadType is the command payload type this handler accepts.
	PayloadType() reflect.Type

	// EntityType is the type of the instance Invoke expects as target.
	// For constructor handlers it is the type being created.
	EntityType() reflect.Type

	// Markers returns the handler metadata. Callers must not modify it.
	Markers() Markers

	// Invoke runs the handler against target. Constructor handlers ignore
	// target and return the created aggregate.
	Invoke(ctx context.Context, target any, msg Message) (any, error)
}

// HandlerOption customizes handler metadata.
type HandlerOption func(Markers)

// Named overrides the handler name marker (defaults to the payload type name).
func Named(name string) HandlerOption {
	return func(m Markers) { m[MarkerName] = name }
}

// WithMarker sets an arbitrary metadata marker on the handler.
func WithMarker(key, value string) HandlerOption {
	return func(m Markers) { m[key] = value }
}

type funcHandler[E, P any] struct {
	fn      func(ctx context.Context, entity E, cmd P) (any, error)
	markers Markers
}

// Handle builds a Handler for commands of type P executed against entities
// of type E.
func Handle[E, P any](fn func(ctx context.Context, entity E, cmd P) (any, error), opts ...HandlerOption) Handler {
	return &funcHandler[E, P]{
		fn:      fn,
		markers: newMarkers(reflect.TypeFor[P](), KindMethod, opts),
	}
}

func (h *funcHandler[E, P]) PayloadType() reflect.Type { return reflect.TypeFor[P]() }
func (h *funcHandler[E, P]) EntityType() reflect.Type  { return reflect.TypeFor[E]() }
func (h *funcHandler[E, P]) Markers() Markers          { return h.markers }

func (h *funcHandler[E, P]) Invoke(ctx context.Context, target any, msg Message) (any, error) {
	entity, ok := target.(E)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects %s, got %T",
			ErrTargetType, h.markers.Get(MarkerName), TypeName(reflect.TypeFor[E]()), target)
	}
	cmd, ok := msg.Payload().(P)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects %s, got %T",
			ErrPayloadType, h.markers.Get(MarkerName), TypeName(reflect.TypeFor[P]()), msg.Payload())
	}
	return h.fn(ctx, entity, cmd)
}

type constructorHandler[A, P any] struct {
	fn      func(ctx context.Context, cmd P) (A, error)
	markers Markers
}

// Construct builds a constructor-style Handler that creates an aggregate of
// type A from a command of type P.
func Construct[A, P any](fn func(ctx context.Context, cmd P) (A, error), opts ...HandlerOption) Handler {
	return &constructorHandler[A, P]{
		fn:      fn,
		markers: newMarkers(reflect.TypeFor[P](), KindConstructor, opts),
	}
}

func (h *constructorHandler[A, P]) PayloadType() reflect.Type { return reflect.TypeFor[P]() }
func (h *constructorHandler[A, P]) EntityType() reflect.Type  { return reflect.TypeFor[A]() }
func (h *constructorHandler[A, P]) Markers() Markers          { return h.markers }

func (h *constructorHandler[A, P]) Invoke(ctx context.Context, _ any, msg Message) (any, error) {
	cmd, ok := msg.Payload().(P)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects %s, got %T",
			ErrPayloadType, h.markers.Get(MarkerName), TypeName(reflect.TypeFor[P]()), msg.Payload())
	}
	return h.fn(ctx, cmd)
}

func newMarkers(payload reflect.Type, kind string, opts []HandlerOption) Markers {
	m := Markers{
		MarkerName: TypeName(payload),
		MarkerKind: kind,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
