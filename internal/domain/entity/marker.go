package entity

import "reflect"

// Marker tags a Member with the containment kind a resolver strategy looks
// for. The built-in kinds are Single, Collection and Map; custom strategies
// may define their own marker types.
type Marker interface {
	MarkerKind() string
}

// Built-in marker kinds.
const (
	KindSingle     = "single"
	KindCollection = "collection"
	KindMap        = "map"
)

// Single marks a member that references exactly one nested entity. The
// entity type is the member's declared type.
type Single struct{}

// MarkerKind implements Marker.
func (Single) MarkerKind() string { return KindSingle }

// Collection marks a slice or array of nested entities. A command is routed
// to the first element whose EntityID property equals the command's
// CommandTargetProperty value.
type Collection struct {
	// EntityType overrides the element type of the container. Nil means the
	// entity type is inferred from the declared element type.
	EntityType reflect.Type

	// EntityID names the identity property read from each element.
	EntityID string

	// CommandTargetProperty names the payload property holding the target
	// entity's identity.
	CommandTargetProperty string
}

// MarkerKind implements Marker.
func (Collection) MarkerKind() string { return KindCollection }

// Map marks a map of nested entities keyed by their identity. A command is
// routed to the value stored under the command's CommandTargetProperty value.
type Map struct {
	// EntityType overrides the value type of the map. Nil means the entity
	// type is inferred from the declared value type.
	EntityType reflect.Type

	// CommandTargetProperty names the payload property holding the map key.
	CommandTargetProperty string
}

// MarkerKind implements Marker.
func (Map) MarkerKind() string { return KindMap }
