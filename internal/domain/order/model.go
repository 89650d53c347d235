package order

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/command"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/entity"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/property"
)

// Property names used by the order models.
const (
	PropLineID       = "lineId"
	PropTargetLineID = "targetLineId"
	PropShipmentID   = "shipmentId"
)

// now is swapped in tests.
var now = func() time.Time { return time.Now().UTC() }

// Register publishes the order aggregate and its nested entity models into
// catalog, and the identity and target properties they rely on into props.
func Register(catalog *entity.Catalog, props *property.Registry) error {
	if err := registerProperties(props); err != nil {
		return err
	}
	for _, m := range Models() {
		if err := catalog.Add(m); err != nil {
			return fmt.Errorf("registering %s: %w", command.TypeName(m.Type), err)
		}
	}
	return nil
}

func registerProperties(props *property.Registry) error {
	regs := []error{
		property.Register(props, PropLineID, func(l *OrderLine) any { return l.LineID }),
		property.Register(props, PropTargetLineID, func(c ChangeLineQuantity) any { return c.TargetLineID }),
		property.Register(props, PropTargetLineID, func(c ApplyLineDiscount) any { return c.TargetLineID }),
		property.Register(props, PropShipmentID, func(c DispatchShipment) any { return c.ShipmentID }),
	}
	for _, err := range regs {
		if err != nil {
			return fmt.Errorf("registering order properties: %w", err)
		}
	}
	return nil
}

// Models returns the entity models of the order aggregate, root first.
func Models() []entity.Model {
	return []entity.Model{
		{
			Type: AggregateType,
			Constructors: []command.Handler{
				command.Construct(placeOrder, command.Named(CmdPlaceOrder)),
			},
			Handlers: []command.Handler{
				command.Handle(cancelOrder, command.Named(CmdCancelOrder)),
				command.Handle(addLine, command.Named(CmdAddLine)),
				command.Handle(addShipment, command.Named(CmdAddShipment)),
			},
			Members: []entity.Member{
				entity.Field("Lines",
					entity.Collection{EntityID: PropLineID, CommandTargetProperty: PropTargetLineID},
					func(o *Order) []*OrderLine { return o.Lines }),
				entity.Field("Shipments",
					entity.Map{CommandTargetProperty: PropShipmentID},
					func(o *Order) map[string]*Shipment { return o.Shipments }),
				entity.Field("Payment", entity.Single{},
					func(o *Order) *Payment { return o.Payment }),
			},
		},
		{
			Type: reflect.TypeFor[*OrderLine](),
			Handlers: []command.Handler{
				command.Handle(changeLineQuantity, command.Named(CmdChangeLineQuantity)),
			},
			Members: []entity.Member{
				entity.Field("Pricing", entity.Single{},
					func(l *OrderLine) *Pricing { return l.Pricing }),
			},
		},
		{
			Type: reflect.TypeFor[*Pricing](),
			Handlers: []command.Handler{
				command.Handle(applyLineDiscount, command.Named(CmdApplyLineDiscount)),
			},
		},
		{
			Type: reflect.TypeFor[*Shipment](),
			Handlers: []command.Handler{
				command.Handle(dispatchShipment, command.Named(CmdDispatchShipment)),
			},
		},
		{
			Type: reflect.TypeFor[*Payment](),
			Handlers: []command.Handler{
				command.Handle(capturePayment, command.Named(CmdCapturePayment)),
			},
		},
	}
}

func placeOrder(_ context.Context, cmd PlaceOrder) (*Order, error) {
	o := New(strings.TrimSpace(cmd.OrderID), strings.TrimSpace(cmd.Customer), now())
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func cancelOrder(_ context.Context, o *Order, cmd CancelOrder) (any, error) {
	return nil, o.Cancel(cmd.Reason)
}

func addLine(_ context.Context, o *Order, cmd AddLine) (any, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	line := &OrderLine{
		LineID:   cmd.LineID,
		SKU:      cmd.SKU,
		Quantity: cmd.Quantity,
		Pricing:  &Pricing{UnitPrice: cmd.UnitPrice},
	}
	if err := o.AddLine(line); err != nil {
		return nil, err
	}
	return line, nil
}

func addShipment(_ context.Context, o *Order, cmd AddShipment) (any, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	s := &Shipment{ShipmentID: cmd.ShipmentID, Carrier: cmd.Carrier, Status: ShipmentPending}
	if err := o.AddShipment(s); err != nil {
		return nil, err
	}
	return s, nil
}

func changeLineQuantity(_ context.Context, l *OrderLine, cmd ChangeLineQuantity) (any, error) {
	if err := l.ChangeQuantity(cmd.Quantity); err != nil {
		return nil, err
	}
	return l, nil
}

func applyLineDiscount(_ context.Context, p *Pricing, cmd ApplyLineDiscount) (any, error) {
	if err := p.ApplyDiscount(cmd.Percent); err != nil {
		return nil, err
	}
	return p, nil
}

func dispatchShipment(_ context.Context, s *Shipment, cmd DispatchShipment) (any, error) {
	if strings.TrimSpace(cmd.TrackingCode) == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"tracking_code": domain.MsgRequired}}
	}
	if err := s.Dispatch(cmd.TrackingCode); err != nil {
		return nil, err
	}
	return s, nil
}

func capturePayment(_ context.Context, p *Payment, cmd CapturePayment) (any, error) {
	if err := p.Capture(cmd.Amount); err != nil {
		return nil, err
	}
	return p, nil
}
