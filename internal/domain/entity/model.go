// Package entity holds the declarative description of command-handling
// entity types: which handlers an entity declares and which of its members
// hold nested entities.
//
// Nothing here inspects struct fields. Each aggregate package publishes a
// Model per entity type into a Catalog, and the routing builder walks those
// models:
//
//	catalog.Add(entity.Model{
//	    Type:     reflect.TypeFor[*Order](),
//	    Handlers: []command.Handler{cancelHandler},
//	    Members: []entity.Member{
//	        entity.Field("Lines", entity.Collection{EntityID: "lineId", CommandTargetProperty: "targetLineId"},
//	            func(o *Order) []*OrderLine { return o.Lines }),
//	    },
//	})
package entity

import (
	"reflect"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain/command"
)

// Model describes one entity type.
type Model struct {
	// Type is the registration-time type token of the entity, usually a
	// pointer type such as *order.Order.
	Type reflect.Type

	// Handlers are the command handlers declared directly on the entity.
	Handlers []command.Handler

	// Constructors are handlers that create a new instance of the entity.
	// Only meaningful for aggregate roots.
	Constructors []command.Handler

	// Members lists nested-entity holders in declaration order.
	Members []Member
}

// Member declares one member of an entity type that may hold nested
// entities.
type Member struct {
	Name   string
	Marker Marker

	// DeclaredType is the static type of the member value: the entity type
	// for a single reference, the container type for collections and maps.
	DeclaredType reflect.Type

	// Get reads the member value off a parent instance.
	Get func(parent any) any
}

// Field declares a member of parent type P whose value has type V.
// The returned Get yields nil when called with something other than a P.
func Field[P, V any](name string, marker Marker, get func(P) V) Member {
	return Member{
		Name:         name,
		Marker:       marker,
		DeclaredType: reflect.TypeFor[V](),
		Get: func(parent any) any {
			p, ok := parent.(P)
			if !ok {
				return nil
			}
			return get(p)
		},
	}
}
