package app

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/jsamuelsen11/go-entity-routing/internal/app/routing"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/command"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/entity"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/property"
	"github.com/jsamuelsen11/go-entity-routing/internal/ports"
)

// DispatchTable indexes the handlers of one aggregate type by payload type.
// It is built once at startup and is read-only afterwards.
type DispatchTable struct {
	aggregate    reflect.Type
	handlers     map[reflect.Type]command.Handler
	constructors map[reflect.Type]command.Handler
	routes       []ports.RouteInfo
}

// BuildDispatchTable inspects aggregate and indexes the result.
func BuildDispatchTable(models routing.ModelSource, props property.Provider, aggregate reflect.Type,
	opts ...routing.Option,
) (*DispatchTable, error) {
	h, err := routing.NewInspector(models, props, opts...).Inspect(aggregate)
	if err != nil {
		return nil, fmt.Errorf("building routes for %s: %w", command.TypeName(aggregate), err)
	}
	return NewDispatchTable(h)
}

// BuildOrderTable registers the order models into a fresh catalog and builds
// the table for the order aggregate. maxDepth 0 means unlimited.
func BuildOrderTable(maxDepth int, strict bool, logger *slog.Logger) (*DispatchTable, error) {
	catalog := entity.NewCatalog()
	props := property.NewRegistry()
	if err := order.Register(catalog, props); err != nil {
		return nil, fmt.Errorf("registering order models: %w", err)
	}

	opts := []routing.Option{routing.WithMaxDepth(maxDepth), routing.WithLogger(logger)}
	if strict {
		opts = append(opts, routing.WithStrictTargetProperties())
	}
	return BuildDispatchTable(catalog, props, order.AggregateType, opts...)
}

// NewDispatchTable indexes h. Two handlers accepting the same payload type
// make dispatch ambiguous and are a configuration error.
func NewDispatchTable(h *routing.AggregateHandlers) (*DispatchTable, error) {
	t := &DispatchTable{
		aggregate:    h.Type,
		handlers:     make(map[reflect.Type]command.Handler),
		constructors: make(map[reflect.Type]command.Handler),
	}

	for _, c := range h.Constructors {
		if err := t.add(t.constructors, c); err != nil {
			return nil, err
		}
		t.routes = append(t.routes, describe(c, ports.RouteConstructor))
	}
	for _, d := range h.Direct {
		if err := t.add(t.handlers, d); err != nil {
			return nil, err
		}
		t.routes = append(t.routes, describe(d, ports.RouteDirect))
	}
	for _, r := range h.Routed {
		if err := t.add(t.handlers, r); err != nil {
			return nil, err
		}
		t.routes = append(t.routes, describeRouted(r))
	}
	return t, nil
}

func (t *DispatchTable) add(index map[reflect.Type]command.Handler, h command.Handler) error {
	if prev, exists := index[h.PayloadType()]; exists {
		return &domain.ConfigurationError{
			Type: command.TypeName(t.aggregate),
			Reason: fmt.Sprintf("handlers %s and %s both accept %s",
				prev.Markers().Get(command.MarkerName), h.Markers().Get(command.MarkerName),
				command.TypeName(h.PayloadType())),
		}
	}
	index[h.PayloadType()] = h
	return nil
}

// Aggregate returns the aggregate type the table was built for.
func (t *DispatchTable) Aggregate() reflect.Type { return t.aggregate }

// Handler returns the handler for commands with the given payload type,
// invoked with the aggregate root. Returns an error wrapping
// domain.ErrNotFound when there is none.
func (t *DispatchTable) Handler(payload reflect.Type) (command.Handler, error) {
	if h, ok := t.handlers[payload]; ok {
		return h, nil
	}
	if _, ok := t.constructors[payload]; ok {
		return nil, fmt.Errorf("%s creates a new %s and cannot target an existing one: %w",
			command.TypeName(payload), command.TypeName(t.aggregate), domain.ErrNotFound)
	}
	return nil, fmt.Errorf("no handler for %s on %s: %w",
		command.TypeName(payload), command.TypeName(t.aggregate), domain.ErrNotFound)
}

// Constructor returns the constructor handler for the payload type.
func (t *DispatchTable) Constructor(payload reflect.Type) (command.Handler, error) {
	if h, ok := t.constructors[payload]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("no constructor for %s on %s: %w",
		command.TypeName(payload), command.TypeName(t.aggregate), domain.ErrNotFound)
}

// Routes describes every indexed handler: constructors, then direct
// handlers, then nested handlers in discovery order.
func (t *DispatchTable) Routes() []ports.RouteInfo {
	out := make([]ports.RouteInfo, len(t.routes))
	copy(out, t.routes)
	return out
}

func describe(h command.Handler, kind string) ports.RouteInfo {
	return ports.RouteInfo{
		Command: h.Markers().Get(command.MarkerName),
		Payload: command.TypeName(h.PayloadType()),
		Entity:  command.TypeName(h.EntityType()),
		Kind:    kind,
	}
}

func describeRouted(f *routing.ForwardingHandler) ports.RouteInfo {
	info := describe(f, ports.RouteNested)
	info.Depth = f.Depth()

	for _, step := range f.Chain()[1:] {
		hop := ports.RouteHop{
			Member: step.Member(),
			Kind:   step.Kind(),
			Entity: command.TypeName(step.EntityType()),
		}
		if tp, ok := step.(interface{ TargetProperty() string }); ok {
			hop.TargetProperty = tp.TargetProperty()
		}
		info.Path = append(info.Path, hop)
	}
	return info
}
