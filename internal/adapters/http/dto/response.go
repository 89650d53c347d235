// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"maps"
	"slices"
	"time"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
	"github.com/jsamuelsen11/go-entity-routing/internal/ports"
)

// OrderResponse represents an order in HTTP responses.
type OrderResponse struct {
	ID           string             `json:"id"`
	Customer     string             `json:"customer"`
	Status       string             `json:"status"`
	CancelReason string             `json:"cancel_reason,omitempty"`
	Lines        []LineResponse     `json:"lines"`
	Shipments    []ShipmentResponse `json:"shipments"`
	Payment      *PaymentResponse   `json:"payment,omitempty"`
	Total        int64              `json:"total"`
	Version      int64              `json:"version"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// LineResponse represents an order line.
type LineResponse struct {
	LineID          string `json:"line_id"`
	SKU             string `json:"sku"`
	Quantity        int    `json:"quantity"`
	UnitPrice       int64  `json:"unit_price"`
	DiscountPercent int    `json:"discount_percent"`
	Total           int64  `json:"total"`
}

// ShipmentResponse represents a shipment.
type ShipmentResponse struct {
	ShipmentID   string `json:"shipment_id"`
	Carrier      string `json:"carrier"`
	Status       string `json:"status"`
	TrackingCode string `json:"tracking_code,omitempty"`
}

// PaymentResponse represents the order payment.
type PaymentResponse struct {
	Amount   int64 `json:"amount"`
	Captured bool  `json:"captured"`
}

// ToOrderResponse converts an order. Shipments are sorted by ID.
func ToOrderResponse(o *order.Order) OrderResponse {
	resp := OrderResponse{
		ID:           o.ID,
		Customer:     o.Customer,
		Status:       string(o.Status),
		CancelReason: o.CancelReason,
		Lines:        make([]LineResponse, 0, len(o.Lines)),
		Shipments:    make([]ShipmentResponse, 0, len(o.Shipments)),
		Total:        o.Total(),
		Version:      o.Version,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}

	for _, l := range o.Lines {
		lr := LineResponse{LineID: l.LineID, SKU: l.SKU, Quantity: l.Quantity, Total: l.Total()}
		if l.Pricing != nil {
			lr.UnitPrice = l.Pricing.UnitPrice
			lr.DiscountPercent = l.Pricing.DiscountPercent
		}
		resp.Lines = append(resp.Lines, lr)
	}
	for _, id := range slices.Sorted(maps.Keys(o.Shipments)) {
		s := o.Shipments[id]
		resp.Shipments = append(resp.Shipments, ShipmentResponse{
			ShipmentID:   s.ShipmentID,
			Carrier:      s.Carrier,
			Status:       string(s.Status),
			TrackingCode: s.TrackingCode,
		})
	}
	if o.Payment != nil {
		resp.Payment = &PaymentResponse{Amount: o.Payment.Amount, Captured: o.Payment.Captured}
	}
	return resp
}

// DispatchResponse is returned by the single-command endpoint.
type DispatchResponse struct {
	Command string        `json:"command"`
	Order   OrderResponse `json:"order"`
}

// ToDispatchResponse converts a dispatch result.
func ToDispatchResponse(r *ports.DispatchResult) DispatchResponse {
	return DispatchResponse{Command: r.Handler, Order: ToOrderResponse(r.Order)}
}

// BatchResponse reports the outcome of every command of a batch, in
// request order.
type BatchResponse struct {
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
	Results   []BatchResultResponse `json:"results"`
}

// BatchResultResponse is one command's outcome. Status is the HTTP status
// the command would have produced on its own.
type BatchResultResponse struct {
	Index   int    `json:"index"`
	OrderID string `json:"order_id"`
	Command string `json:"command,omitempty"`
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Version int64  `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Fail records err as the command's outcome, classified like a single
// command's problem response.
func (r *BatchResultResponse) Fail(err error) {
	r.Status, r.Code = classify(err)
	if r.Code != CodeConfiguration {
		r.Error = err.Error()
	}
}

// RoutesResponse lists the handlers reachable on the order aggregate.
type RoutesResponse struct {
	Routes []ports.RouteInfo `json:"routes"`
}

// Health statuses.
const (
	HealthOK       = "ok"
	HealthReady    = "ready"
	HealthNotReady = "not_ready"
)

// HealthResponse is the body of the liveness and readiness endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Failed []string          `json:"failed,omitempty"`
}

// ToHealthResponse summarises readiness results keyed by checker name.
// Failed lists the failing checkers sorted by name.
func ToHealthResponse(results map[string]error) HealthResponse {
	resp := HealthResponse{Status: HealthReady, Checks: make(map[string]string, len(results))}
	for name, err := range results {
		if err == nil {
			resp.Checks[name] = HealthOK
			continue
		}
		resp.Checks[name] = err.Error()
		resp.Failed = append(resp.Failed, name)
	}
	if len(resp.Failed) > 0 {
		resp.Status = HealthNotReady
		slices.Sort(resp.Failed)
	}
	return resp
}
