package routing

import (
	"log/slog"
	"reflect"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain/command"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/entity"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/property"
)

// Accessor kinds reported by the built-in accessors.
const (
	KindRoot = "root"
)

// EntityAccessor is one step of an accessor chain. Given the aggregate root
// and a command it yields the entity instance at its level, or false when
// there is none. Accessors hold no per-invocation state and are safe for
// concurrent use.
type EntityAccessor interface {
	// EntityType is the type token of the entities this step yields.
	EntityType() reflect.Type

	// Parent is the previous step towards the root; nil for the root.
	Parent() EntityAccessor

	// Kind names the containment shape ("root", "single", "collection", "map"
	// or a custom strategy's kind).
	Kind() string

	// Member is the parent member this step reads; empty for the root.
	Member() string

	// Instance resolves the parent first, then applies this step.
	Instance(aggregate any, msg command.Message) (any, bool)
}

// Chain returns the accessors from the root down to acc.
func Chain(acc EntityAccessor) []EntityAccessor {
	var chain []EntityAccessor
	for a := acc; a != nil; a = a.Parent() {
		chain = append(chain, a)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Depth counts the links between acc and the root. The root has depth 0.
func Depth(acc EntityAccessor) int {
	d := 0
	for a := acc.Parent(); a != nil; a = a.Parent() {
		d++
	}
	return d
}

type rootAccessor struct {
	entityType reflect.Type
}

// NewRootAccessor returns the identity step for an aggregate type: it
// yields the aggregate unchanged.
func NewRootAccessor(aggregate reflect.Type) EntityAccessor {
	return rootAccessor{entityType: aggregate}
}

func (a rootAccessor) EntityType() reflect.Type { return a.entityType }
func (a rootAccessor) Parent() EntityAccessor   { return nil }
func (a rootAccessor) Kind() string             { return KindRoot }
func (a rootAccessor) Member() string           { return "" }

func (a rootAccessor) Instance(aggregate any, _ command.Message) (any, bool) {
	if property.IsAbsent(aggregate) {
		return nil, false
	}
	return aggregate, true
}

type singleAccessor struct {
	parent     EntityAccessor
	member     entity.Member
	entityType reflect.Type
}

func (a *singleAccessor) EntityType() reflect.Type { return a.entityType }
func (a *singleAccessor) Parent() EntityAccessor   { return a.parent }
func (a *singleAccessor) Kind() string             { return entity.KindSingle }
func (a *singleAccessor) Member() string           { return a.member.Name }

func (a *singleAccessor) Instance(aggregate any, msg command.Message) (any, bool) {
	parent, ok := a.parent.Instance(aggregate, msg)
	if !ok {
		return nil, false
	}
	v := a.member.Get(parent)
	if property.IsAbsent(v) {
		return nil, false
	}
	return v, true
}

// lookupFunc finds the entity for target inside a non-nil container.
type lookupFunc func(container, target any) (any, bool)

// multipleAccessor resolves one entity out of a container held by the
// parent, selected by a property of the command payload.
type multipleAccessor struct {
	parent         EntityAccessor
	member         entity.Member
	kind           string
	entityType     reflect.Type
	targetProperty string
	props          property.Provider
	lookup         lookupFunc
	logger         *slog.Logger
}

func (a *multipleAccessor) EntityType() reflect.Type { return a.entityType }
func (a *multipleAccessor) Parent() EntityAccessor   { return a.parent }
func (a *multipleAccessor) Kind() string             { return a.kind }
func (a *multipleAccessor) Member() string           { return a.member.Name }

// TargetProperty is the payload property naming the target entity.
func (a *multipleAccessor) TargetProperty() string { return a.targetProperty }

func (a *multipleAccessor) Instance(aggregate any, msg command.Message) (any, bool) {
	parent, ok := a.parent.Instance(aggregate, msg)
	if !ok {
		return nil, false
	}
	container := a.member.Get(parent)

	acc, ok := a.props.Accessor(msg.PayloadType(), a.targetProperty)
	if !ok {
		a.logger.Debug("command payload has no target property; no entity selected",
			slog.String("payload", command.TypeName(msg.PayloadType())),
			slog.String("property", a.targetProperty),
			slog.String("member", a.member.Name),
		)
		return nil, false
	}
	target := acc.Value(msg.Payload())
	if property.IsAbsent(target) || property.IsAbsent(container) {
		return nil, false
	}
	return a.lookup(container, target)
}

// collectionLookup scans a slice or array in order and returns the first
// element whose identity equals target.
func collectionLookup(id property.Accessor) lookupFunc {
	return func(container, target any) (any, bool) {
		rv := reflect.ValueOf(container)
		for i := range rv.Len() {
			el := rv.Index(i).Interface()
			if property.IsAbsent(el) {
				continue
			}
			entityID := id.Value(el)
			if !property.IsAbsent(entityID) && property.Equal(entityID, target) {
				return el, true
			}
		}
		return nil, false
	}
}

// mapLookup treats target as the map key. Keys match under the same rule as
// collection identities (property.Equal): a target of another dynamic type,
// including a named type over the key's kind, yields no entity.
func mapLookup(container, target any) (any, bool) {
	rv := reflect.ValueOf(container)
	key, ok := mapKey(rv.Type().Key(), target)
	if !ok {
		return nil, false
	}
	v := rv.MapIndex(key)
	if !v.IsValid() {
		return nil, false
	}
	out := v.Interface()
	if property.IsAbsent(out) {
		return nil, false
	}
	return out, true
}

func mapKey(keyType reflect.Type, target any) (reflect.Value, bool) {
	tv := reflect.ValueOf(target)
	if !tv.Type().Comparable() {
		return reflect.Value{}, false
	}
	switch {
	case tv.Type() == keyType:
		return tv, true
	case keyType.Kind() == reflect.Interface && tv.Type().Implements(keyType):
		return tv, true
	default:
		return reflect.Value{}, false
	}
}
