package routing_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/jsamuelsen11/go-entity-routing/internal/app/routing"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/command"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/entity"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/property"
)

func orderHandlers(t *testing.T) *routing.AggregateHandlers {
	t.Helper()

	catalog := entity.NewCatalog()
	props := property.NewRegistry()
	if err := order.Register(catalog, props); err != nil {
		t.Fatalf("order.Register() error = %v", err)
	}
	h, err := routing.NewInspector(catalog, props,
		routing.WithMaxDepth(4),
		routing.WithStrictTargetProperties(),
	).Inspect(order.AggregateType)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	return h
}

func handlerFor(t *testing.T, h *routing.AggregateHandlers, payload any) command.Handler {
	t.Helper()
	pt := reflect.TypeOf(payload)
	for _, x := range h.All() {
		if x.PayloadType() == pt {
			return x
		}
	}
	t.Fatalf("no handler for %s", pt)
	return nil
}

func sampleOrder() *order.Order {
	return &order.Order{
		ID:     "o-1",
		Status: order.StatusOpen,
		Lines: []*order.OrderLine{
			{LineID: "L1", SKU: "a", Quantity: 1, Pricing: &order.Pricing{UnitPrice: 100}},
			{LineID: "L9", SKU: "b", Quantity: 1, Pricing: &order.Pricing{UnitPrice: 250}},
		},
		Shipments: map[string]*order.Shipment{
			"S1": {ShipmentID: "S1", Carrier: "ups", Status: order.ShipmentPending},
		},
		Payment: &order.Payment{},
	}
}

func TestOrder_RoutesToTargetLine(t *testing.T) {
	t.Parallel()

	h := orderHandlers(t)
	o := sampleOrder()

	cmd := order.ChangeLineQuantity{TargetLineID: "L9", Quantity: 5}
	if _, err := handlerFor(t, h, cmd).Invoke(context.Background(), o, command.NewMessage(cmd)); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if o.Lines[1].Quantity != 5 {
		t.Errorf("L9 quantity = %d, want 5", o.Lines[1].Quantity)
	}
	if o.Lines[0].Quantity != 1 {
		t.Errorf("L1 quantity = %d, want unchanged 1", o.Lines[0].Quantity)
	}
}

func TestOrder_UnknownLineIsRoutingError(t *testing.T) {
	t.Parallel()

	h := orderHandlers(t)
	cmd := order.ChangeLineQuantity{TargetLineID: "L404", Quantity: 5}

	_, err := handlerFor(t, h, cmd).Invoke(context.Background(), sampleOrder(), command.NewMessage(cmd))
	var rerr *domain.RoutingError
	if !errors.As(err, &rerr) {
		t.Fatalf("Invoke() error = %v, want *RoutingError", err)
	}
	if rerr.Entity != "order.OrderLine" {
		t.Errorf("RoutingError.Entity = %q, want order.OrderLine", rerr.Entity)
	}
}

func TestOrder_DiscountReachesPricingTwoLevelsDown(t *testing.T) {
	t.Parallel()

	h := orderHandlers(t)
	o := sampleOrder()
	cmd := order.ApplyLineDiscount{TargetLineID: "L1", Percent: 10}

	fh, ok := handlerFor(t, h, cmd).(*routing.ForwardingHandler)
	if !ok {
		t.Fatal("discount handler is not routed")
	}
	if fh.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", fh.Depth())
	}
	if _, err := fh.Invoke(context.Background(), o, command.NewMessage(cmd)); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if o.Lines[0].Pricing.DiscountPercent != 10 {
		t.Errorf("L1 discount = %d, want 10", o.Lines[0].Pricing.DiscountPercent)
	}
	if got, want := o.Total(), int64(90+250); got != want {
		t.Errorf("Total() = %d, want %d", got, want)
	}
}

func TestOrder_ShipmentMapAndPayment(t *testing.T) {
	t.Parallel()

	h := orderHandlers(t)
	o := sampleOrder()

	dispatch := order.DispatchShipment{ShipmentID: "S1", TrackingCode: "1Z"}
	if _, err := handlerFor(t, h, dispatch).Invoke(context.Background(), o, command.NewMessage(dispatch)); err != nil {
		t.Fatalf("dispatch Invoke() error = %v", err)
	}
	if o.Shipments["S1"].Status != order.ShipmentDispatched {
		t.Errorf("S1 status = %q", o.Shipments["S1"].Status)
	}

	capture := order.CapturePayment{Amount: 350}
	if _, err := handlerFor(t, h, capture).Invoke(context.Background(), o, command.NewMessage(capture)); err != nil {
		t.Fatalf("capture Invoke() error = %v", err)
	}
	if !o.Payment.Captured {
		t.Error("payment not captured")
	}

	o.Payment = nil
	_, err := handlerFor(t, h, capture).Invoke(context.Background(), o, command.NewMessage(capture))
	if !errors.Is(err, domain.ErrRouting) {
		t.Errorf("capture without payment error = %v, want routing error", err)
	}
}
