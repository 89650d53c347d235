package entity

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/command"
)

// Catalog is a thread-safe set of entity models keyed by type token.
// Models are added at startup; lookups happen while routes are built.
type Catalog struct {
	mu     sync.RWMutex
	models map[reflect.Type]Model
	order  []reflect.Type
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{models: make(map[reflect.Type]Model)}
}

// Add registers a model. Adding a second model for the same type, or a model
// without a type, is a configuration error.
func (c *Catalog) Add(m Model) error {
	if m.Type == nil {
		return &domain.ConfigurationError{Type: "<nil>", Reason: "model has no type"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.models[m.Type]; exists {
		return &domain.ConfigurationError{
			Type:   command.TypeName(m.Type),
			Reason: "model already registered",
		}
	}
	for i, mem := range m.Members {
		if mem.Marker == nil || mem.Get == nil || mem.DeclaredType == nil {
			return &domain.ConfigurationError{
				Type:   command.TypeName(m.Type),
				Member: memberLabel(mem, i),
				Reason: "member needs a marker, a declared type and a getter",
			}
		}
	}

	for _, h := range m.Handlers {
		if !m.Type.AssignableTo(h.EntityType()) {
			return &domain.ConfigurationError{
				Type: command.TypeName(m.Type),
				Reason: fmt.Sprintf("handler %s targets %s", h.Markers().Get(command.MarkerName),
					command.TypeName(h.EntityType())),
			}
		}
	}
	for _, h := range m.Constructors {
		if !h.EntityType().AssignableTo(m.Type) {
			return &domain.ConfigurationError{
				Type: command.TypeName(m.Type),
				Reason: fmt.Sprintf("constructor %s creates %s", h.Markers().Get(command.MarkerName),
					command.TypeName(h.EntityType())),
			}
		}
	}

	c.models[m.Type] = m
	c.order = append(c.order, m.Type)
	return nil
}

// Model returns the model registered for t. Types without a model have no
// handlers and no nested members.
func (c *Catalog) Model(t reflect.Type) (Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.models[t]
	return m, ok
}

// Types returns the registered type tokens in registration order.
func (c *Catalog) Types() []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]reflect.Type, len(c.order))
	copy(out, c.order)
	return out
}

func memberLabel(m Member, index int) string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("#%d", index)
}
