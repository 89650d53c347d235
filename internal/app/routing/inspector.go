package routing

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/command"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/entity"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/property"
)

// ModelSource supplies the declared model of an entity type. It is the
// "direct handler inspector" of the builder: a type without a model has no
// handlers and no nested members.
type ModelSource interface {
	Model(t reflect.Type) (entity.Model, bool)
}

// Compile-time interface check.
var _ ModelSource = (*entity.Catalog)(nil)

// AggregateHandlers is the immutable result of inspecting an aggregate type.
type AggregateHandlers struct {
	Type         reflect.Type
	Direct       []command.Handler
	Constructors []command.Handler
	Routed       []*ForwardingHandler
}

// All returns the direct handlers followed by the routed handlers, in
// discovery order.
func (h *AggregateHandlers) All() []command.Handler {
	out := make([]command.Handler, 0, len(h.Direct)+len(h.Routed))
	out = append(out, h.Direct...)
	for _, r := range h.Routed {
		out = append(out, r)
	}
	return out
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithLogger sets the logger used for discovery and resolution debug logs.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithStrategies pins the strategy registry. Without it each Inspect call
// takes a snapshot of the process-wide registry.
func WithStrategies(r *StrategyRegistry) Option {
	return func(i *Inspector) { i.strategies = r }
}

// WithMaxDepth limits how deep nested entities may be declared. A member
// beyond the limit is a configuration error, which turns accidental
// recursive containment into a startup failure. Zero means unlimited.
func WithMaxDepth(n int) Option {
	return func(i *Inspector) { i.maxDepth = n }
}

// WithStrictTargetProperties makes Inspect fail when a routed handler's
// payload type lacks a property that one of its collection or map steps
// reads. By default such commands silently resolve to no entity.
func WithStrictTargetProperties() Option {
	return func(i *Inspector) { i.strict = true }
}

// Inspector builds the handler set of aggregate types from their declared
// models. An Inspector may be reused across aggregate types; it keeps no
// state between Inspect calls.
type Inspector struct {
	models     ModelSource
	props      property.Provider
	strategies *StrategyRegistry
	logger     *slog.Logger
	maxDepth   int
	strict     bool
}

// NewInspector creates an Inspector reading models from models and entity
// and command properties from props.
func NewInspector(models ModelSource, props property.Provider, opts ...Option) *Inspector {
	if props == nil {
		props = property.NewRegistry()
	}
	i := &Inspector{
		models: models,
		props:  props,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inspect collects the direct handlers and constructor handlers of the
// aggregate type and every handler declared on entities nested inside it,
// each wrapped with the accessor chain that reaches its entity.
//
// Nested members are visited depth first in declaration order. There is no
// cycle detection: a type reachable twice is traversed twice, and a type
// that contains itself recurses until WithMaxDepth stops it.
func (i *Inspector) Inspect(aggregate reflect.Type) (*AggregateHandlers, error) {
	model, ok := i.models.Model(aggregate)
	if !ok {
		return nil, &domain.ConfigurationError{
			Type:   command.TypeName(aggregate),
			Reason: "no model registered for aggregate type",
		}
	}

	strategies := i.strategies
	if strategies == nil {
		strategies = GlobalStrategies()
	}

	w := &walker{
		models:     i.models,
		strategies: strategies,
		env:        Env{Properties: i.props, Logger: i.logger},
		logger:     i.logger,
		maxDepth:   i.maxDepth,
	}
	if err := w.visit(NewRootAccessor(aggregate), 0); err != nil {
		return nil, err
	}

	result := &AggregateHandlers{
		Type:         aggregate,
		Direct:       append([]command.Handler(nil), model.Handlers...),
		Constructors: append([]command.Handler(nil), model.Constructors...),
		Routed:       w.routed,
	}

	if i.strict {
		if err := i.checkTargetProperties(result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

type walker struct {
	models     ModelSource
	strategies *StrategyRegistry
	env        Env
	logger     *slog.Logger
	maxDepth   int
	routed     []*ForwardingHandler
}

func (w *walker) visit(current EntityAccessor, depth int) error {
	model, ok := w.models.Model(current.EntityType())
	if !ok {
		return nil
	}

	for _, member := range model.Members {
		next, strategy, err := w.strategies.Accessor(current, member, w.env)
		if err != nil {
			return fmt.Errorf("inspecting %s: %w", command.TypeName(current.EntityType()), err)
		}
		if next == nil {
			continue
		}
		if w.maxDepth > 0 && depth+1 > w.maxDepth {
			return &domain.ConfigurationError{
				Type:   command.TypeName(current.EntityType()),
				Member: member.Name,
				Reason: fmt.Sprintf("nested entities exceed the maximum depth of %d", w.maxDepth),
			}
		}

		nested, _ := w.models.Model(next.EntityType())
		for _, h := range nested.Handlers {
			w.logger.Debug("found command handler on nested entity",
				slog.String("handler", h.Markers().Get(command.MarkerName)),
				slog.String("entity", command.TypeName(next.EntityType())),
				slog.String("parent", command.TypeName(current.EntityType())),
				slog.String("member", member.Name),
				slog.String("strategy", strategy.Name()),
			)
			w.routed = append(w.routed, NewForwardingHandler(next, h))
		}

		if err := w.visit(next, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// targeted is implemented by accessors that select an entity using a
// command payload property.
type targeted interface {
	TargetProperty() string
}

func (i *Inspector) checkTargetProperties(h *AggregateHandlers) error {
	for _, r := range h.Routed {
		for _, step := range r.Chain() {
			t, ok := step.(targeted)
			if !ok {
				continue
			}
			if _, found := i.props.Accessor(r.PayloadType(), t.TargetProperty()); !found {
				return &domain.ConfigurationError{
					Type:   command.TypeName(step.Parent().EntityType()),
					Member: step.Member(),
					Reason: fmt.Sprintf("command %s routed through this member has no %q property",
						command.TypeName(r.PayloadType()), t.TargetProperty()),
				}
			}
		}
	}
	return nil
}
