package routing

import (
	"context"
	"reflect"
	"testing"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain/command"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/entity"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/property"
)

type fxRoot struct {
	Items  []*fxItem
	ByKey  map[string]*fxItem
	Child  *fxChild
	Nested *fxRoot
}

type fxItem struct {
	ID    string
	Label string
	Part  *fxPart
}

type fxPart struct {
	Touched int
}

type fxChild struct {
	Name string
}

// Commands.
type (
	fxRename      struct{ Name string }
	fxTouchItem   struct{ Target string }
	fxTouchPart   struct{ Target string }
	fxTouchKeyed  struct{ Key string }
	fxTouchChild  struct{}
	fxNoTarget    struct{}
	fxCreate      struct{}
	fxTouchIntKey struct{ Key int }
)

var (
	fxRootType  = reflect.TypeFor[*fxRoot]()
	fxItemType  = reflect.TypeFor[*fxItem]()
	fxPartType  = reflect.TypeFor[*fxPart]()
	fxChildType = reflect.TypeFor[*fxChild]()
)

func fxItemHandler[P any](name string) command.Handler {
	return command.Handle(func(_ context.Context, it *fxItem, _ P) (any, error) {
		it.Label = name
		return it, nil
	}, command.Named(name))
}

func itemsMember(m entity.Collection) entity.Member {
	return entity.Field("Items", m, func(r *fxRoot) []*fxItem { return r.Items })
}

func keyedMember(m entity.Map) entity.Member {
	return entity.Field("ByKey", m, func(r *fxRoot) map[string]*fxItem { return r.ByKey })
}

func childMember() entity.Member {
	return entity.Field("Child", entity.Single{}, func(r *fxRoot) *fxChild { return r.Child })
}

// fxProps registers the identity and target properties used by the fixtures.
func fxProps(t *testing.T) *property.Registry {
	t.Helper()

	props := property.NewRegistry()
	property.MustRegister(props, "id", func(it *fxItem) any { return it.ID })
	property.MustRegister(props, "target", func(c fxTouchItem) any { return c.Target })
	property.MustRegister(props, "target", func(c fxTouchPart) any { return c.Target })
	property.MustRegister(props, "key", func(c fxTouchKeyed) any { return c.Key })
	property.MustRegister(props, "key", func(c fxTouchIntKey) any { return c.Key })
	return props
}

// fxCatalog builds a catalog with a root holding items in a collection and a
// map, each item holding a part, and a single child.
func fxCatalog(t *testing.T) *entity.Catalog {
	t.Helper()

	c := entity.NewCatalog()
	mustAdd(t, c, entity.Model{
		Type: fxRootType,
		Constructors: []command.Handler{
			command.Construct(func(_ context.Context, _ fxCreate) (*fxRoot, error) {
				return &fxRoot{}, nil
			}, command.Named("create")),
		},
		Handlers: []command.Handler{
			command.Handle(func(_ context.Context, r *fxRoot, c fxRename) (any, error) {
				r.Child = &fxChild{Name: c.Name}
				return r, nil
			}, command.Named("rename")),
		},
		Members: []entity.Member{
			itemsMember(entity.Collection{EntityID: "id", CommandTargetProperty: "target"}),
			keyedMember(entity.Map{CommandTargetProperty: "key"}),
			childMember(),
		},
	})
	mustAdd(t, c, entity.Model{
		Type: fxItemType,
		Handlers: []command.Handler{
			fxItemHandler[fxTouchItem]("touch-item"),
			fxItemHandler[fxTouchKeyed]("touch-keyed"),
			fxItemHandler[fxTouchIntKey]("touch-int-key"),
			fxItemHandler[fxNoTarget]("no-target"),
		},
		Members: []entity.Member{
			entity.Field("Part", entity.Single{}, func(it *fxItem) *fxPart { return it.Part }),
		},
	})
	mustAdd(t, c, entity.Model{
		Type: fxPartType,
		Handlers: []command.Handler{
			command.Handle(func(_ context.Context, p *fxPart, _ fxTouchPart) (any, error) {
				p.Touched++
				return p, nil
			}, command.Named("touch-part")),
		},
	})
	mustAdd(t, c, entity.Model{
		Type: fxChildType,
		Handlers: []command.Handler{
			command.Handle(func(_ context.Context, ch *fxChild, _ fxTouchChild) (any, error) {
				ch.Name = "touched"
				return ch, nil
			}, command.Named("touch-child")),
		},
	})
	return c
}

func mustAdd(t *testing.T, c *entity.Catalog, m entity.Model) {
	t.Helper()
	if err := c.Add(m); err != nil {
		t.Fatalf("Catalog.Add(%s) error = %v", m.Type, err)
	}
}

func mustInspect(t *testing.T, i *Inspector, aggregate reflect.Type) *AggregateHandlers {
	t.Helper()
	h, err := i.Inspect(aggregate)
	if err != nil {
		t.Fatalf("Inspect(%s) error = %v", aggregate, err)
	}
	return h
}

// routedFor returns every routed handler accepting payload type P.
func routedFor[P any](h *AggregateHandlers) []*ForwardingHandler {
	var out []*ForwardingHandler
	for _, r := range h.Routed {
		if r.PayloadType() == reflect.TypeFor[P]() {
			out = append(out, r)
		}
	}
	return out
}

// routedVia returns the routed handler accepting P whose leaf step reads member.
func routedVia[P any](t *testing.T, h *AggregateHandlers, member string) *ForwardingHandler {
	t.Helper()
	for _, r := range routedFor[P](h) {
		if r.Accessor().Member() == member {
			return r
		}
	}
	t.Fatalf("no routed handler for %s via member %q", reflect.TypeFor[P](), member)
	return nil
}
