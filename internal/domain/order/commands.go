package order

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
)

// Command names, as used in URLs and batch requests.
const (
	CmdPlaceOrder         = "place-order"
	CmdCancelOrder        = "cancel-order"
	CmdAddLine            = "add-line"
	CmdChangeLineQuantity = "change-line-quantity"
	CmdApplyLineDiscount  = "apply-line-discount"
	CmdAddShipment        = "add-shipment"
	CmdDispatchShipment   = "dispatch-shipment"
	CmdCapturePayment     = "capture-payment"
)

// PlaceOrder creates a new order.
type PlaceOrder struct {
	OrderID  string `json:"order_id"`
	Customer string `json:"customer"`
}

// CancelOrder is handled by the order itself.
type CancelOrder struct {
	Reason string `json:"reason"`
}

// AddLine is handled by the order itself.
type AddLine struct {
	LineID    string `json:"line_id"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

func (c AddLine) Validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(c.LineID) == "" {
		fields["line_id"] = domain.MsgRequired
	}
	if strings.TrimSpace(c.SKU) == "" {
		fields["sku"] = domain.MsgRequired
	}
	if c.Quantity <= 0 {
		fields["quantity"] = fmt.Sprintf("must be positive, got %d", c.Quantity)
	}
	if c.UnitPrice < 0 {
		fields["unit_price"] = fmt.Sprintf("must not be negative, got %d", c.UnitPrice)
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ChangeLineQuantity is routed to the line whose ID equals TargetLineID.
type ChangeLineQuantity struct {
	TargetLineID string `json:"target_line_id"`
	Quantity     int    `json:"quantity"`
}

// ApplyLineDiscount is routed to the pricing of the line whose ID equals
// TargetLineID.
type ApplyLineDiscount struct {
	TargetLineID string `json:"target_line_id"`
	Percent      int    `json:"percent"`
}

// AddShipment is handled by the order itself.
type AddShipment struct {
	ShipmentID string `json:"shipment_id"`
	Carrier    string `json:"carrier"`
}

func (c AddShipment) Validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(c.ShipmentID) == "" {
		fields["shipment_id"] = domain.MsgRequired
	}
	if strings.TrimSpace(c.Carrier) == "" {
		fields["carrier"] = domain.MsgRequired
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// DispatchShipment is routed to the shipment stored under ShipmentID.
type DispatchShipment struct {
	ShipmentID   string `json:"shipment_id"`
	TrackingCode string `json:"tracking_code"`
}

// CapturePayment is routed to the order's payment.
type CapturePayment struct {
	Amount int64 `json:"amount"`
}

type decodeFunc func(data []byte) (any, error)

var decoders = map[string]decodeFunc{
	CmdPlaceOrder:         decode[PlaceOrder],
	CmdCancelOrder:        decode[CancelOrder],
	CmdAddLine:            decode[AddLine],
	CmdChangeLineQuantity: decode[ChangeLineQuantity],
	CmdApplyLineDiscount:  decode[ApplyLineDiscount],
	CmdAddShipment:        decode[AddShipment],
	CmdDispatchShipment:   decode[DispatchShipment],
	CmdCapturePayment:     decode[CapturePayment],
}

// DecodeCommand turns a named JSON command body into its payload value.
// Unknown names wrap domain.ErrNotFound; malformed bodies are validation
// errors. An empty body decodes to the zero payload.
func DecodeCommand(name string, data []byte) (any, error) {
	dec, ok := decoders[name]
	if !ok {
		return nil, fmt.Errorf("command %q: %w", name, domain.ErrNotFound)
	}
	return dec(data)
}

// CommandNames lists every decodable command, sorted.
func CommandNames() []string {
	return slices.Sorted(maps.Keys(decoders))
}

func decode[P any](data []byte) (any, error) {
	var p P
	if len(strings.TrimSpace(string(data))) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &domain.ValidationError{Fields: map[string]string{
			"body": "invalid JSON: " + err.Error(),
		}}
	}
	return p, nil
}
