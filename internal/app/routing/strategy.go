package routing

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/command"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/entity"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/property"
)

// Env carries the collaborators a Strategy may need while building an
// accessor.
type Env struct {
	Properties property.Provider
	Logger     *slog.Logger
}

// Strategy turns a member declaration into an accessor step.
//
// Accessor returns (nil, nil) when the strategy does not claim the member,
// and a *domain.ConfigurationError when it claims the member but the
// declaration is unusable.
type Strategy interface {
	Name() string
	Accessor(parent EntityAccessor, member entity.Member, env Env) (EntityAccessor, error)
}

// StrategyRegistry is an ordered set of strategies queried most recently
// registered first, so later registrations win over earlier ones for the
// same member.
type StrategyRegistry struct {
	mu         sync.RWMutex
	strategies []Strategy
}

// NewStrategyRegistry creates a registry holding strategies in registration
// order.
func NewStrategyRegistry(strategies ...Strategy) *StrategyRegistry {
	r := &StrategyRegistry{}
	r.strategies = append(r.strategies, strategies...)
	return r
}

// DefaultStrategies returns a registry with the built-in single, collection
// and map strategies.
func DefaultStrategies() *StrategyRegistry {
	return NewStrategyRegistry(SingleStrategy{}, CollectionStrategy{}, MapStrategy{})
}

// Register appends s, giving it priority over everything registered before.
func (r *StrategyRegistry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = append(r.strategies, s)
}

// Clone returns an independent copy of the registry.
func (r *StrategyRegistry) Clone() *StrategyRegistry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return NewStrategyRegistry(r.strategies...)
}

// Strategies returns the strategies in registration order.
func (r *StrategyRegistry) Strategies() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Strategy, len(r.strategies))
	copy(out, r.strategies)
	return out
}

// Accessor asks each strategy, newest first, to claim member. It returns the
// first accessor produced along with the claiming strategy, or a nil
// accessor when no strategy claims the member.
func (r *StrategyRegistry) Accessor(parent EntityAccessor, member entity.Member, env Env) (EntityAccessor, Strategy, error) {
	strategies := r.Strategies()
	for i := len(strategies) - 1; i >= 0; i-- {
		acc, err := strategies[i].Accessor(parent, member, env)
		if err != nil {
			return nil, strategies[i], err
		}
		if acc != nil {
			return acc, strategies[i], nil
		}
	}
	return nil, nil, nil
}

// global is the process-wide registry used by builds that do not pass
// WithStrategies. It starts with the built-ins; extensions must be
// registered during startup, before the first build that should see them.
var global = DefaultStrategies()

// RegisterStrategy adds s to the process-wide registry. Every build started
// afterwards that relies on the global registry routes members through s
// before any built-in strategy.
func RegisterStrategy(s Strategy) {
	global.Register(s)
}

// GlobalStrategies returns a snapshot of the process-wide registry.
func GlobalStrategies() *StrategyRegistry {
	return global.Clone()
}

// SingleStrategy claims members marked entity.Single. The entity type is the
// member's declared type.
type SingleStrategy struct{}

// Name implements Strategy.
func (SingleStrategy) Name() string { return entity.KindSingle }

// Accessor implements Strategy.
func (SingleStrategy) Accessor(parent EntityAccessor, member entity.Member, env Env) (EntityAccessor, error) {
	if !hasMarker[entity.Single](member.Marker) {
		return nil, nil
	}
	env.logger().Debug("member holds a nested entity; checking it for command handlers",
		slog.String("parent", command.TypeName(parent.EntityType())),
		slog.String("member", member.Name),
		slog.String("entity", command.TypeName(member.DeclaredType)),
		slog.String("kind", entity.KindSingle),
	)
	return &singleAccessor{parent: parent, member: member, entityType: member.DeclaredType}, nil
}

// CollectionStrategy claims members marked entity.Collection.
type CollectionStrategy struct{}

// Name implements Strategy.
func (CollectionStrategy) Name() string { return entity.KindCollection }

// Accessor implements Strategy.
func (CollectionStrategy) Accessor(parent EntityAccessor, member entity.Member, env Env) (EntityAccessor, error) {
	marker, ok := markerAs[entity.Collection](member.Marker)
	if !ok {
		return nil, nil
	}

	switch member.DeclaredType.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return nil, configError(parent, member, fmt.Sprintf(
			"marked as an entity collection, but the declared type %s is not a slice or array", member.DeclaredType))
	}

	entityType, err := determineEntityType(parent, member, marker.EntityType)
	if err != nil {
		return nil, err
	}
	if marker.EntityID == "" {
		return nil, configError(parent, member, "entity collection needs an entity id property")
	}
	if marker.CommandTargetProperty == "" {
		return nil, configError(parent, member, "entity collection needs a command target property")
	}

	id, ok := env.properties().Accessor(entityType, marker.EntityID)
	if !ok {
		return nil, configError(parent, member, fmt.Sprintf(
			"entity type %s has no %q property", command.TypeName(entityType), marker.EntityID))
	}

	env.logger().Debug("member holds a nested entity; checking it for command handlers",
		slog.String("parent", command.TypeName(parent.EntityType())),
		slog.String("member", member.Name),
		slog.String("entity", command.TypeName(entityType)),
		slog.String("kind", entity.KindCollection),
	)

	return &multipleAccessor{
		parent:         parent,
		member:         member,
		kind:           entity.KindCollection,
		entityType:     entityType,
		targetProperty: marker.CommandTargetProperty,
		props:          env.properties(),
		lookup:         collectionLookup(id),
		logger:         env.logger(),
	}, nil
}

// MapStrategy claims members marked entity.Map. The map key is the entity's
// identity.
type MapStrategy struct{}

// Name implements Strategy.
func (MapStrategy) Name() string { return entity.KindMap }

// Accessor implements Strategy.
func (MapStrategy) Accessor(parent EntityAccessor, member entity.Member, env Env) (EntityAccessor, error) {
	marker, ok := markerAs[entity.Map](member.Marker)
	if !ok {
		return nil, nil
	}

	if member.DeclaredType.Kind() != reflect.Map {
		return nil, configError(parent, member, fmt.Sprintf(
			"marked as an entity map, but the declared type %s is not a map", member.DeclaredType))
	}

	entityType, err := determineEntityType(parent, member, marker.EntityType)
	if err != nil {
		return nil, err
	}
	if marker.CommandTargetProperty == "" {
		return nil, configError(parent, member, "entity map needs a command target property")
	}

	env.logger().Debug("member holds a nested entity; checking it for command handlers",
		slog.String("parent", command.TypeName(parent.EntityType())),
		slog.String("member", member.Name),
		slog.String("entity", command.TypeName(entityType)),
		slog.String("kind", entity.KindMap),
	)

	return &multipleAccessor{
		parent:         parent,
		member:         member,
		kind:           entity.KindMap,
		entityType:     entityType,
		targetProperty: marker.CommandTargetProperty,
		props:          env.properties(),
		lookup:         mapLookup,
		logger:         env.logger(),
	}, nil
}

// determineEntityType returns the explicit entity type when set, otherwise
// the container's element (or map value) type. An empty-interface element
// type says nothing about the entity and is rejected.
func determineEntityType(parent EntityAccessor, member entity.Member, explicit reflect.Type) (reflect.Type, error) {
	if explicit != nil {
		return explicit, nil
	}
	elem := member.DeclaredType.Elem()
	if elem.Kind() == reflect.Interface && elem.NumMethod() == 0 {
		return nil, configError(parent, member,
			"the entity type is not set on the marker, nor can it be deduced from the container's element type")
	}
	return elem, nil
}

// markerAs matches a marker given either by value or by pointer.
func markerAs[M entity.Marker](m entity.Marker) (M, bool) {
	switch v := any(m).(type) {
	case M:
		return v, true
	case *M:
		if v != nil {
			return *v, true
		}
	}
	var zero M
	return zero, false
}

func hasMarker[M entity.Marker](m entity.Marker) bool {
	_, ok := markerAs[M](m)
	return ok
}

func configError(parent EntityAccessor, member entity.Member, reason string) error {
	return &domain.ConfigurationError{
		Type:   command.TypeName(parent.EntityType()),
		Member: member.Name,
		Reason: reason,
	}
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e Env) properties() property.Provider {
	if e.Properties == nil {
		return property.NewRegistry()
	}
	return e.Properties
}
