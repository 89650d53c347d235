package handlers

import (
	"net/http"

	"github.com/jsamuelsen11/go-entity-routing/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
	"github.com/jsamuelsen11/go-entity-routing/internal/ports"
)

// OrderHandler handles HTTP requests that create orders and dispatch
// commands to them.
type OrderHandler struct {
	svc ports.CommandService
}

// NewOrderHandler creates a new OrderHandler with the given service port.
func NewOrderHandler(svc ports.CommandService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// CreateOrder handles POST /api/v1/orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	o, err := h.svc.CreateOrder(r.Context(), req.ToCommand())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/orders/"+o.ID)
	writeJSON(w, http.StatusCreated, dto.ToOrderResponse(o))
}

// GetOrder handles GET /api/v1/orders/{id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	o, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToOrderResponse(o))
}

// Dispatch handles POST /api/v1/orders/{id}/commands/{command}. The body is
// the command payload and may be empty for commands without fields.
func (h *OrderHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	name, err := pathParam(r, "command")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	payload, err := order.DecodeCommand(name, body)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	res, err := h.svc.Dispatch(r.Context(), id, payload)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDispatchResponse(res))
}

// DispatchBatch handles POST /api/v1/commands:batch. Entries that fail to
// decode are reported without being dispatched; the rest go to the service
// in one call. The response is 200 even when individual commands fail.
func (h *OrderHandler) DispatchBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	results := make([]dto.BatchResultResponse, len(req.Commands))
	cmds := make([]ports.AddressedCommand, 0, len(req.Commands))
	positions := make([]int, 0, len(req.Commands))

	for i, c := range req.Commands {
		results[i] = dto.BatchResultResponse{Index: i, OrderID: c.OrderID}
		payload, err := order.DecodeCommand(c.Command, c.Payload)
		if err != nil {
			results[i].Fail(err)
			continue
		}
		cmds = append(cmds, ports.AddressedCommand{OrderID: c.OrderID, Payload: payload})
		positions = append(positions, i)
	}

	if len(cmds) > 0 {
		for _, br := range h.svc.DispatchBatch(r.Context(), cmds) {
			out := &results[positions[br.Index]]
			out.Command = br.Handler
			if br.Err != nil {
				out.Fail(br.Err)
				continue
			}
			out.Status = http.StatusOK
			out.Version = br.Version
		}
	}

	resp := dto.BatchResponse{Results: results}
	for _, res := range results {
		if res.Status == http.StatusOK {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Routes handles GET /api/v1/routes.
func (h *OrderHandler) Routes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dto.RoutesResponse{Routes: h.svc.Routes()})
}
