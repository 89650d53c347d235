package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
)

// MaxBatchCommands bounds the number of commands in one batch request.
const MaxBatchCommands = 100

// CreateOrderRequest is the JSON body of POST /api/v1/orders.
type CreateOrderRequest struct {
	OrderID  string `json:"order_id"`
	Customer string `json:"customer"`
}

// Validate checks that required fields are present.
func (r *CreateOrderRequest) Validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(r.OrderID) == "" {
		fields["order_id"] = domain.MsgRequired
	}
	if strings.TrimSpace(r.Customer) == "" {
		fields["customer"] = domain.MsgRequired
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ToCommand converts the request to the order constructor command.
func (r *CreateOrderRequest) ToCommand() order.PlaceOrder {
	return order.PlaceOrder{OrderID: strings.TrimSpace(r.OrderID), Customer: strings.TrimSpace(r.Customer)}
}

// BatchCommand is one entry of a batch request. Payload is the command's
// JSON body, as accepted by the single-command endpoint.
type BatchCommand struct {
	OrderID string          `json:"order_id"`
	Command string          `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// BatchRequest is the JSON body of POST /api/v1/commands:batch.
type BatchRequest struct {
	Commands []BatchCommand `json:"commands"`
}

// Validate checks the batch size and that each entry is addressed and named.
func (r *BatchRequest) Validate() error {
	fields := make(map[string]string)
	switch n := len(r.Commands); {
	case n == 0:
		fields["commands"] = "must not be empty"
	case n > MaxBatchCommands:
		fields["commands"] = fmt.Sprintf("at most %d commands, got %d", MaxBatchCommands, n)
	}
	for i, c := range r.Commands {
		if strings.TrimSpace(c.OrderID) == "" {
			fields[fmt.Sprintf("commands[%d].order_id", i)] = domain.MsgRequired
		}
		if strings.TrimSpace(c.Command) == "" {
			fields[fmt.Sprintf("commands[%d].command", i)] = domain.MsgRequired
		}
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
