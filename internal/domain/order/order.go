// Package order is the example aggregate served by the command API. An
// Order holds its lines in a slice, its shipments in a map keyed by shipment
// ID and its payment as a single nested entity; commands addressed to any of
// them are routed through the order root.
package order

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
)

// AggregateType is the type token under which the order model is registered.
var AggregateType = reflect.TypeFor[*Order]()

// Status is the lifecycle state of an order.
type Status string

const (
	StatusOpen      Status = "open"
	StatusCancelled Status = "cancelled"
)

// IsValid returns true if the status is one of the defined constants.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusCancelled:
		return true
	default:
		return false
	}
}

// Order is the aggregate root.
type Order struct {
	ID           string               `json:"id"`
	Customer     string               `json:"customer"`
	Status       Status               `json:"status"`
	CancelReason string               `json:"cancel_reason,omitempty"`
	Lines        []*OrderLine         `json:"lines"`
	Shipments    map[string]*Shipment `json:"shipments"`
	Payment      *Payment             `json:"payment,omitempty"`
	Version      int64                `json:"version"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// New creates an open order with an empty payment record.
func New(id, customer string, now time.Time) *Order {
	return &Order{
		ID:        id,
		Customer:  customer,
		Status:    StatusOpen,
		Lines:     []*OrderLine{},
		Shipments: map[string]*Shipment{},
		Payment:   &Payment{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks business rules for the Order aggregate.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (o *Order) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(o.ID) == "" {
		fields["id"] = domain.MsgRequired
	}
	if strings.TrimSpace(o.Customer) == "" {
		fields["customer"] = domain.MsgRequired
	}
	if !o.Status.IsValid() {
		fields["status"] = fmt.Sprintf("invalid: %q", o.Status)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Cancel moves the order to the cancelled state.
func (o *Order) Cancel(reason string) error {
	if o.Status == StatusCancelled {
		return fmt.Errorf("order %s already cancelled: %w", o.ID, domain.ErrConflict)
	}
	o.Status = StatusCancelled
	o.CancelReason = reason
	return nil
}

// AddLine appends a line. Line IDs are unique within an order.
func (o *Order) AddLine(line *OrderLine) error {
	if o.Status != StatusOpen {
		return fmt.Errorf("order %s is %s: %w", o.ID, o.Status, domain.ErrConflict)
	}
	if slices.ContainsFunc(o.Lines, func(l *OrderLine) bool { return l.LineID == line.LineID }) {
		return fmt.Errorf("line %s already on order %s: %w", line.LineID, o.ID, domain.ErrConflict)
	}
	o.Lines = append(o.Lines, line)
	return nil
}

// AddShipment registers a shipment under its ID.
func (o *Order) AddShipment(s *Shipment) error {
	if o.Status != StatusOpen {
		return fmt.Errorf("order %s is %s: %w", o.ID, o.Status, domain.ErrConflict)
	}
	if o.Shipments == nil {
		o.Shipments = map[string]*Shipment{}
	}
	if _, exists := o.Shipments[s.ShipmentID]; exists {
		return fmt.Errorf("shipment %s already on order %s: %w", s.ShipmentID, o.ID, domain.ErrConflict)
	}
	o.Shipments[s.ShipmentID] = s
	return nil
}

// Total is the sum of all line totals, in cents.
func (o *Order) Total() int64 {
	var total int64
	for _, l := range o.Lines {
		total += l.Total()
	}
	return total
}
