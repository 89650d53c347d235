package order

import (
	"fmt"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
)

// OrderLine is a nested entity identified by LineID within its order.
type OrderLine struct {
	LineID   string   `json:"line_id"`
	SKU      string   `json:"sku"`
	Quantity int      `json:"quantity"`
	Pricing  *Pricing `json:"pricing"`
}

// ChangeQuantity sets a new positive quantity.
func (l *OrderLine) ChangeQuantity(qty int) error {
	if qty <= 0 {
		return &domain.ValidationError{Fields: map[string]string{
			"quantity": fmt.Sprintf("must be positive, got %d", qty),
		}}
	}
	l.Quantity = qty
	return nil
}

// Total is quantity times discounted unit price, in cents.
func (l *OrderLine) Total() int64 {
	if l.Pricing == nil {
		return 0
	}
	return int64(l.Quantity) * l.Pricing.EffectivePrice()
}

// Pricing is nested one level below a line.
type Pricing struct {
	UnitPrice       int64 `json:"unit_price"`
	DiscountPercent int   `json:"discount_percent"`
}

// ApplyDiscount replaces the line discount.
func (p *Pricing) ApplyDiscount(percent int) error {
	if percent < 0 || percent > 100 {
		return &domain.ValidationError{Fields: map[string]string{
			"percent": fmt.Sprintf("must be 0-100, got %d", percent),
		}}
	}
	p.DiscountPercent = percent
	return nil
}

// EffectivePrice is the unit price after discount, in cents.
func (p *Pricing) EffectivePrice() int64 {
	return p.UnitPrice * int64(100-p.DiscountPercent) / 100
}

// ShipmentStatus is the state of a shipment.
type ShipmentStatus string

const (
	ShipmentPending    ShipmentStatus = "pending"
	ShipmentDispatched ShipmentStatus = "dispatched"
)

// Shipment is a nested entity stored in the order's shipment map.
type Shipment struct {
	ShipmentID   string         `json:"shipment_id"`
	Carrier      string         `json:"carrier"`
	Status       ShipmentStatus `json:"status"`
	TrackingCode string         `json:"tracking_code,omitempty"`
}

// Dispatch hands the shipment to its carrier.
func (s *Shipment) Dispatch(tracking string) error {
	if s.Status == ShipmentDispatched {
		return fmt.Errorf("shipment %s already dispatched: %w", s.ShipmentID, domain.ErrConflict)
	}
	s.Status = ShipmentDispatched
	s.TrackingCode = tracking
	return nil
}

// Payment is the single payment record of an order.
type Payment struct {
	Amount   int64 `json:"amount"`
	Captured bool  `json:"captured"`
}

// Capture records a captured amount, once.
func (p *Payment) Capture(amount int64) error {
	if p.Captured {
		return fmt.Errorf("payment already captured: %w", domain.ErrConflict)
	}
	if amount <= 0 {
		return &domain.ValidationError{Fields: map[string]string{
			"amount": fmt.Sprintf("must be positive, got %d", amount),
		}}
	}
	p.Amount = amount
	p.Captured = true
	return nil
}
