// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port interfaces.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	appctx "github.com/jsamuelsen11/go-entity-routing/internal/app/context"
	"github.com/jsamuelsen11/go-entity-routing/internal/app/fanout"
	"github.com/jsamuelsen11/go-entity-routing/internal/app/routing"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/command"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/telemetry"
	"github.com/jsamuelsen11/go-entity-routing/internal/ports"
)

// Message metadata keys set by the service.
const (
	MetaOrderID = "order_id"
	MetaBatch   = "batch_index"
)

const tracerName = "github.com/jsamuelsen11/go-entity-routing/internal/app"

// Compile-time check that CommandService implements ports.CommandService.
var _ ports.CommandService = (*CommandService)(nil)

// CommandService implements ports.CommandService on top of a DispatchTable
// and an OrderRepository. Every dispatch is a unit of work: the order is
// loaded once, commands are applied in memory and a single versioned save
// is committed at the end.
type CommandService struct {
	table   *DispatchTable
	repo    ports.OrderRepository
	metrics *telemetry.Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
	workers int
	now     func() time.Time
}

// NewCommandService creates a CommandService. metrics may be nil. workers
// bounds the number of orders a batch processes concurrently.
func NewCommandService(table *DispatchTable, repo ports.OrderRepository, metrics *telemetry.Metrics,
	logger *slog.Logger, workers int,
) *CommandService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if workers < 1 {
		workers = 1
	}
	return &CommandService{
		table:   table,
		repo:    repo,
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
		logger:  logger,
		workers: workers,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder runs the constructor handler for cmd and stores the new order.
func (s *CommandService) CreateOrder(ctx context.Context, cmd order.PlaceOrder) (*order.Order, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "CommandService.CreateOrder",
		trace.WithAttributes(attribute.String("order.id", cmd.OrderID)))
	defer span.End()

	s.logger.InfoContext(ctx, "creating order", slog.String("order_id", cmd.OrderID))

	h, err := s.table.Constructor(reflect.TypeOf(cmd))
	if err != nil {
		return nil, s.fail(ctx, span, "CreateOrder", cmd.OrderID, order.CmdPlaceOrder, start, err)
	}
	name := h.Markers().Get(command.MarkerName)

	created, err := h.Invoke(ctx, nil, command.NewMessage(cmd).WithMetadata(MetaOrderID, cmd.OrderID))
	if err != nil {
		return nil, s.fail(ctx, span, "CreateOrder", cmd.OrderID, name, start, err)
	}
	o, ok := created.(*order.Order)
	if !ok {
		err := fmt.Errorf("constructor %s returned %T", name, created)
		return nil, s.fail(ctx, span, "CreateOrder", cmd.OrderID, name, start, err)
	}

	rc := appctx.New(ctx)
	if err := rc.Stage(orderKey(o.ID), o, s.saveAction(o)); err != nil {
		return nil, s.fail(ctx, span, "CreateOrder", o.ID, name, start, err)
	}
	if err := rc.Commit(ctx); err != nil {
		return nil, s.fail(ctx, span, "CreateOrder", o.ID, name, start, err)
	}

	s.record(ctx, name, start, nil)
	return o, nil
}

// GetOrder returns an order by ID.
func (s *CommandService) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	ctx, span := s.tracer.Start(ctx, "CommandService.GetOrder",
		trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	o, err := s.load(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logFailure(ctx, "GetOrder", id, "", err)
		return nil, err
	}
	return o, nil
}

// Dispatch routes payload to its handler on the order identified by orderID
// and stores the result.
func (s *CommandService) Dispatch(ctx context.Context, orderID string, payload any) (*ports.DispatchResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "CommandService.Dispatch",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("command.payload", command.TypeName(reflect.TypeOf(payload))),
		))
	defer span.End()

	h, err := s.table.Handler(reflect.TypeOf(payload))
	if err != nil {
		return nil, s.fail(ctx, span, "Dispatch", orderID, command.TypeName(reflect.TypeOf(payload)), start, err)
	}
	name := h.Markers().Get(command.MarkerName)
	span.SetAttributes(attribute.String("command.name", name), telemetry.AttrHandlerKind.String(handlerKind(h)))

	s.logger.InfoContext(ctx, "dispatching command",
		slog.String("order_id", orderID),
		slog.String("command", name),
	)

	rc := appctx.New(ctx)
	result, o, err := s.apply(ctx, rc, orderID, h, command.NewMessage(payload))
	if err != nil {
		return nil, s.fail(ctx, span, "Dispatch", orderID, name, start, err)
	}
	if err := rc.Commit(ctx); err != nil {
		return nil, s.fail(ctx, span, "Dispatch", orderID, name, start, err)
	}

	s.record(ctx, name, start, nil)
	return &ports.DispatchResult{Order: o, Handler: name, Result: result}, nil
}

type batchGroup struct {
	orderID string
	indices []int
}

// DispatchBatch groups cmds by order, applies each group sequentially in
// input order against one loaded aggregate, and commits one save per group.
// Groups run concurrently, bounded by the configured worker count.
func (s *CommandService) DispatchBatch(ctx context.Context, cmds []ports.AddressedCommand) []ports.BatchResult {
	ctx, span := s.tracer.Start(ctx, "CommandService.DispatchBatch",
		trace.WithAttributes(attribute.Int("batch.size", len(cmds))))
	defer span.End()

	var groups []batchGroup
	position := make(map[string]int)
	for i, c := range cmds {
		p, ok := position[c.OrderID]
		if !ok {
			p = len(groups)
			position[c.OrderID] = p
			groups = append(groups, batchGroup{orderID: c.OrderID})
		}
		groups[p].indices = append(groups[p].indices, i)
	}

	s.logger.InfoContext(ctx, "dispatching command batch",
		slog.Int("commands", len(cmds)),
		slog.Int("orders", len(groups)),
	)

	outcomes := fanout.Run(ctx, s.workers, groups, func(ctx context.Context, g batchGroup) ([]ports.BatchResult, error) {
		return s.dispatchGroup(ctx, g, cmds), nil
	})

	results := make([]ports.BatchResult, len(cmds))
	failed := 0
	for gi, out := range outcomes {
		if out.Err != nil {
			// The group never started.
			for _, i := range groups[gi].indices {
				results[i] = ports.BatchResult{Index: i, OrderID: groups[gi].orderID, Err: out.Err}
			}
			failed += len(groups[gi].indices)
			continue
		}
		for _, r := range out.Value {
			results[r.Index] = r
			if r.Err != nil {
				failed++
			}
		}
	}

	span.SetAttributes(attribute.Int("batch.failed", failed))
	return results
}

func (s *CommandService) dispatchGroup(ctx context.Context, g batchGroup, cmds []ports.AddressedCommand) []ports.BatchResult {
	rc := appctx.New(ctx)
	results := make([]ports.BatchResult, 0, len(g.indices))
	starts := make([]time.Time, 0, len(g.indices))
	var last *order.Order

	for _, i := range g.indices {
		start := time.Now()
		r := ports.BatchResult{Index: i, OrderID: g.orderID}

		h, err := s.table.Handler(reflect.TypeOf(cmds[i].Payload))
		if err == nil {
			r.Handler = h.Markers().Get(command.MarkerName)
			msg := command.NewMessage(cmds[i].Payload).WithMetadata(MetaBatch, fmt.Sprint(i))
			var o *order.Order
			if _, o, err = s.apply(ctx, rc, g.orderID, h, msg); err == nil {
				last = o
			}
		}
		if err != nil {
			s.logFailure(ctx, "DispatchBatch", g.orderID, r.Handler, err)
		}
		r.Err = err
		results = append(results, r)
		starts = append(starts, start)
	}

	if rc.Pending() > 0 {
		if err := rc.Commit(ctx); err != nil {
			s.logFailure(ctx, "DispatchBatch", g.orderID, "", err)
			for k := range results {
				if results[k].Err == nil {
					results[k].Err = err
				}
			}
		}
	}

	for k := range results {
		if results[k].Err == nil && last != nil {
			results[k].Version = last.Version
		}
		name := results[k].Handler
		if name == "" {
			name = command.TypeName(reflect.TypeOf(cmds[results[k].Index].Payload))
		}
		s.record(ctx, name, starts[k], results[k].Err)
	}
	return results
}

// Routes describes every handler of the order aggregate.
func (s *CommandService) Routes() []ports.RouteInfo {
	return s.table.Routes()
}

// apply loads (or reuses) the order held by rc, invokes h and stages the save.
func (s *CommandService) apply(ctx context.Context, rc *appctx.RequestContext, orderID string,
	h command.Handler, msg *command.GenericMessage,
) (any, *order.Order, error) {
	key := orderKey(orderID)
	o, err := appctx.GetOrFetch(rc, key, func(ctx context.Context) (*order.Order, error) {
		return s.load(ctx, orderID)
	})
	if err != nil {
		return nil, nil, err
	}

	// Handlers reach the unit of work through their context.
	result, err := h.Invoke(appctx.WithRequestContext(ctx, rc), o, msg.WithMetadata(MetaOrderID, orderID))
	if err != nil {
		return nil, nil, err
	}

	o.UpdatedAt = s.now()
	if err := rc.Stage(key, o, s.saveAction(o)); err != nil {
		return nil, nil, err
	}
	return result, o, nil
}

func (s *CommandService) load(ctx context.Context, id string) (*order.Order, error) {
	start := time.Now()
	o, err := s.repo.Load(ctx, id)
	s.recordStore(ctx, "load", start, err)
	if err != nil {
		return nil, fmt.Errorf("loading order %s: %w", id, err)
	}
	return o, nil
}

func (s *CommandService) saveAction(o *order.Order) *saveOrder {
	return &saveOrder{order: o, save: func(ctx context.Context) error {
		start := time.Now()
		err := s.repo.Save(ctx, o)
		s.recordStore(ctx, "save", start, err)
		return err
	}}
}

// fail records a failed operation on span, logs and metrics, and returns err.
func (s *CommandService) fail(ctx context.Context, span trace.Span, op, orderID, name string, start time.Time,
	err error,
) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logFailure(ctx, op, orderID, name, err)
	s.record(ctx, name, start, err)
	return err
}

// logFailure logs business rejections at warn and everything else at error.
func (s *CommandService) logFailure(ctx context.Context, op, orderID, name string, err error) {
	attrs := []any{
		slog.String("operation", op),
		slog.String("order_id", orderID),
		slog.Any("error", err),
	}
	if name != "" {
		attrs = append(attrs, slog.String("command", name))
	}
	if isRejection(err) {
		s.logger.WarnContext(ctx, "command rejected", attrs...)
		return
	}
	s.logger.ErrorContext(ctx, "command failed", attrs...)
}

func isRejection(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrRouting)
}

func (s *CommandService) record(ctx context.Context, name string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		telemetry.AttrCommand.String(name),
		telemetry.AttrResult.String(resultOf(err)),
	)
	s.metrics.CommandDispatchDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	s.metrics.CommandDispatchTotal.Add(ctx, 1, attrs)
}

func (s *CommandService) recordStore(ctx context.Context, op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.StoreOperationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		telemetry.AttrStoreOp.String(op),
		telemetry.AttrResult.String(resultOf(err)),
	))
}

func resultOf(err error) string {
	if err != nil {
		return telemetry.ResultError
	}
	return telemetry.ResultSuccess
}

// handlerKind reports whether h runs on the root or is forwarded to a
// nested entity.
func handlerKind(h command.Handler) string {
	if _, ok := h.(*routing.ForwardingHandler); ok {
		return ports.RouteNested
	}
	return ports.RouteDirect
}

func orderKey(id string) string { return "order:" + id }
