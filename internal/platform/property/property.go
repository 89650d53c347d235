// Package property provides named, typed accessors for reading attributes
// off instances whose static type is only known as a reflect.Type token.
//
// Accessors are plain closures registered per type and attribute name:
//
//	props := property.NewRegistry()
//	property.Register(props, "lineId", func(l *OrderLine) any { return l.LineID })
//	property.Register(props, "targetLineId", func(c ChangeLineQuantity) any { return c.TargetLineID })
//
//	acc, ok := props.Accessor(reflect.TypeFor[ChangeLineQuantity](), "targetLineId")
//	id := acc.Value(cmd)
//
// A missing accessor is reported through the ok result, never by an error,
// so callers can decide whether absence is fatal.
package property

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrDuplicate is returned when an accessor is registered twice for the same
// type and name.
var ErrDuplicate = errors.New("property: accessor already registered")

// Accessor extracts one attribute value from an instance.
type Accessor interface {
	// Name is the logical attribute name.
	Name() string

	// Value returns the attribute value, or nil when instance is not of the
	// accessor's type.
	Value(instance any) any
}

// Provider resolves accessors by type token and attribute name.
type Provider interface {
	Accessor(t reflect.Type, name string) (Accessor, bool)
}

// Compile-time interface check.
var _ Provider = (*Registry)(nil)

type key struct {
	t    reflect.Type
	name string
}

// Registry is a thread-safe Provider backed by registered closures.
type Registry struct {
	mu        sync.RWMutex
	accessors map[key]Accessor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{accessors: make(map[key]Accessor)}
}

// Register adds an accessor named name for instances of T.
func Register[T any](r *Registry, name string, fn func(T) any) error {
	t := reflect.TypeFor[T]()
	k := key{t: t, name: name}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accessors[k]; exists {
		return fmt.Errorf("%w: %s.%s", ErrDuplicate, t, name)
	}
	r.accessors[k] = &funcAccessor[T]{name: name, fn: fn}
	return nil
}

// MustRegister is Register for package-level wiring; it panics on error.
func MustRegister[T any](r *Registry, name string, fn func(T) any) {
	if err := Register(r, name, fn); err != nil {
		panic(err)
	}
}

// Accessor returns the accessor registered for t and name. When t is a
// pointer type with no accessor of its own, the accessor of its element type
// is used and the pointer is dereferenced on read.
func (r *Registry) Accessor(t reflect.Type, name string) (Accessor, bool) {
	if t == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if acc, ok := r.accessors[key{t: t, name: name}]; ok {
		return acc, true
	}
	if t.Kind() == reflect.Pointer {
		if acc, ok := r.accessors[key{t: t.Elem(), name: name}]; ok {
			return derefAccessor{inner: acc}, true
		}
	}
	return nil, false
}

type funcAccessor[T any] struct {
	name string
	fn   func(T) any
}

func (a *funcAccessor[T]) Name() string { return a.name }

func (a *funcAccessor[T]) Value(instance any) any {
	v, ok := instance.(T)
	if !ok {
		return nil
	}
	return a.fn(v)
}

// derefAccessor adapts an accessor of T to instances of *T.
type derefAccessor struct {
	inner Accessor
}

func (a derefAccessor) Name() string { return a.inner.Name() }

func (a derefAccessor) Value(instance any) any {
	v := reflect.ValueOf(instance)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() {
		return nil
	}
	return a.inner.Value(v.Elem().Interface())
}
