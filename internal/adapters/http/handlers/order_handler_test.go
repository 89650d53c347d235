package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/go-entity-routing/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-entity-routing/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
	"github.com/jsamuelsen11/go-entity-routing/internal/ports"
	"github.com/jsamuelsen11/go-entity-routing/mocks"
)

func newOrderHandler(t *testing.T) (*handlers.OrderHandler, *mocks.MockCommandService) {
	t.Helper()
	svc := mocks.NewMockCommandService(t)
	return handlers.NewOrderHandler(svc), svc
}

// --- CreateOrder ---

func TestCreateOrder_Success(t *testing.T) {
	t.Parallel()
	h, svc := newOrderHandler(t)

	svc.EXPECT().CreateOrder(mock.Anything, order.PlaceOrder{OrderID: "o-1", Customer: "acme"}).
		Return(validOrder(), nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders",
		jsonBody(t, dto.CreateOrderRequest{OrderID: "o-1", Customer: "acme"}))
	h.CreateOrder(rec, req)

	requireStatus(t, rec, http.StatusCreated)
	if loc := rec.Header().Get("Location"); loc != "/api/v1/orders/o-1" {
		t.Errorf("Location = %q, want /api/v1/orders/o-1", loc)
	}
	resp := decodeJSON[dto.OrderResponse](t, rec)
	if resp.ID != "o-1" || resp.Total != 300 {
		t.Errorf("response = %+v", resp)
	}
}

func TestCreateOrder_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		svcErr   error
		wantCode int
	}{
		{name: "invalid JSON", body: "{", wantCode: http.StatusBadRequest},
		{name: "missing customer", body: `{"order_id":"o-1"}`, wantCode: http.StatusBadRequest},
		{name: "already exists", body: `{"order_id":"o-1","customer":"acme"}`, svcErr: domain.ErrConflict, wantCode: http.StatusConflict},
		{name: "store down", body: `{"order_id":"o-1","customer":"acme"}`, svcErr: domain.ErrUnavailable, wantCode: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, svc := newOrderHandler(t)
			if tt.svcErr != nil {
				svc.EXPECT().CreateOrder(mock.Anything, mock.Anything).Return(nil, tt.svcErr)
			}

			rec := httptest.NewRecorder()
			h.CreateOrder(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(tt.body)))

			requireStatus(t, rec, tt.wantCode)
		})
	}
}

// --- GetOrder ---

func TestGetOrder_Success(t *testing.T) {
	t.Parallel()
	h, svc := newOrderHandler(t)

	svc.EXPECT().GetOrder(mock.Anything, "o-1").Return(validOrder(), nil)

	rec := httptest.NewRecorder()
	req := withChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/orders/o-1", nil),
		map[string]string{"id": "o-1"})
	h.GetOrder(rec, req)

	requireStatus(t, rec, http.StatusOK)
	if resp := decodeJSON[dto.OrderResponse](t, rec); resp.Version != 2 {
		t.Errorf("Version = %d, want 2", resp.Version)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	t.Parallel()
	h, svc := newOrderHandler(t)

	svc.EXPECT().GetOrder(mock.Anything, "o-404").
		Return(nil, fmt.Errorf("loading order o-404: %w", domain.ErrNotFound))

	rec := httptest.NewRecorder()
	req := withChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/orders/o-404", nil),
		map[string]string{"id": "o-404"})
	h.GetOrder(rec, req)

	requireStatus(t, rec, http.StatusNotFound)
}

func TestGetOrder_MissingID(t *testing.T) {
	t.Parallel()
	h, _ := newOrderHandler(t)

	rec := httptest.NewRecorder()
	h.GetOrder(rec, withChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/orders/", nil), nil))

	requireStatus(t, rec, http.StatusBadRequest)
}

// --- Dispatch ---

func TestDispatch_Success(t *testing.T) {
	t.Parallel()
	h, svc := newOrderHandler(t)

	updated := validOrder()
	updated.Lines[0].Quantity = 5
	svc.EXPECT().Dispatch(mock.Anything, "o-1", order.ChangeLineQuantity{TargetLineID: "L1", Quantity: 5}).
		Return(&ports.DispatchResult{Order: updated, Handler: "order.changeLineQuantity"}, nil)

	rec := httptest.NewRecorder()
	req := withChiParams(
		httptest.NewRequest(http.MethodPost, "/api/v1/orders/o-1/commands/change-line-quantity",
			strings.NewReader(`{"target_line_id":"L1","quantity":5}`)),
		map[string]string{"id": "o-1", "command": order.CmdChangeLineQuantity})
	h.Dispatch(rec, req)

	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.DispatchResponse](t, rec)
	if resp.Command != "order.changeLineQuantity" {
		t.Errorf("Command = %q", resp.Command)
	}
	if resp.Order.Lines[0].Quantity != 5 {
		t.Errorf("Lines[0].Quantity = %d, want 5", resp.Order.Lines[0].Quantity)
	}
}

func TestDispatch_EmptyBody(t *testing.T) {
	t.Parallel()
	h, svc := newOrderHandler(t)

	svc.EXPECT().Dispatch(mock.Anything, "o-1", order.CancelOrder{}).
		Return(&ports.DispatchResult{Order: validOrder(), Handler: "order.cancelOrder"}, nil)

	rec := httptest.NewRecorder()
	req := withChiParams(httptest.NewRequest(http.MethodPost, "/api/v1/orders/o-1/commands/cancel-order", nil),
		map[string]string{"id": "o-1", "command": order.CmdCancelOrder})
	h.Dispatch(rec, req)

	requireStatus(t, rec, http.StatusOK)
}

func TestDispatch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		command  string
		body     string
		svcErr   error
		wantCode int
	}{
		{name: "unknown command", command: "explode", wantCode: http.StatusNotFound},
		{name: "malformed payload", command: order.CmdChangeLineQuantity, body: `{"quantity":"x"}`, wantCode: http.StatusBadRequest},
		{
			name:     "no matching line",
			command:  order.CmdChangeLineQuantity,
			body:     `{"target_line_id":"L404","quantity":1}`,
			svcErr:   &domain.RoutingError{Entity: "order.OrderLine", Payload: "order.ChangeLineQuantity"},
			wantCode: http.StatusNotFound,
		},
		{name: "handler rejects", command: order.CmdCapturePayment, body: `{"amount":0}`, svcErr: &domain.ValidationError{Fields: map[string]string{"amount": "must be positive"}}, wantCode: http.StatusBadRequest},
		{name: "stale version", command: order.CmdCancelOrder, svcErr: domain.ErrConflict, wantCode: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, svc := newOrderHandler(t)
			if tt.svcErr != nil {
				svc.EXPECT().Dispatch(mock.Anything, "o-1", mock.Anything).Return(nil, tt.svcErr)
			}

			rec := httptest.NewRecorder()
			req := withChiParams(
				httptest.NewRequest(http.MethodPost, "/api/v1/orders/o-1/commands/"+tt.command, strings.NewReader(tt.body)),
				map[string]string{"id": "o-1", "command": tt.command})
			h.Dispatch(rec, req)

			requireStatus(t, rec, tt.wantCode)
		})
	}
}

// --- DispatchBatch ---

func TestDispatchBatch_MixedResults(t *testing.T) {
	t.Parallel()
	h, svc := newOrderHandler(t)

	svc.EXPECT().DispatchBatch(mock.Anything, []ports.AddressedCommand{
		{OrderID: "o-1", Payload: order.CancelOrder{Reason: "dup"}},
		{OrderID: "o-2", Payload: order.CapturePayment{Amount: 10}},
	}).Return([]ports.BatchResult{
		{Index: 0, OrderID: "o-1", Handler: "order.cancelOrder", Version: 3},
		{Index: 1, OrderID: "o-2", Handler: "order.capturePayment", Err: domain.ErrNotFound},
	})

	body := `{"commands":[
		{"order_id":"o-1","command":"cancel-order","payload":{"reason":"dup"}},
		{"order_id":"o-3","command":"explode"},
		{"order_id":"o-2","command":"capture-payment","payload":{"amount":10}}
	]}`
	rec := httptest.NewRecorder()
	h.DispatchBatch(rec, httptest.NewRequest(http.MethodPost, "/api/v1/commands:batch", strings.NewReader(body)))

	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.BatchResponse](t, rec)
	if resp.Succeeded != 1 || resp.Failed != 2 {
		t.Errorf("Succeeded/Failed = %d/%d, want 1/2", resp.Succeeded, resp.Failed)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(resp.Results))
	}

	want := []struct {
		orderID string
		status  int
		code    string
		version int64
	}{
		{"o-1", http.StatusOK, "", 3},
		{"o-3", http.StatusNotFound, dto.CodeNotFound, 0},
		{"o-2", http.StatusNotFound, dto.CodeNotFound, 0},
	}
	for i, w := range want {
		got := resp.Results[i]
		if got.Index != i || got.OrderID != w.orderID || got.Status != w.status || got.Code != w.code || got.Version != w.version {
			t.Errorf("Results[%d] = %+v, want order %s status %d code %q version %d", i, got, w.orderID, w.status, w.code, w.version)
		}
	}
}

func TestDispatchBatch_NothingDecodable(t *testing.T) {
	t.Parallel()
	h, _ := newOrderHandler(t)

	body := `{"commands":[{"order_id":"o-1","command":"explode"}]}`
	rec := httptest.NewRecorder()
	h.DispatchBatch(rec, httptest.NewRequest(http.MethodPost, "/api/v1/commands:batch", strings.NewReader(body)))

	requireStatus(t, rec, http.StatusOK)
	if resp := decodeJSON[dto.BatchResponse](t, rec); resp.Failed != 1 {
		t.Errorf("Failed = %d, want 1", resp.Failed)
	}
}

func TestDispatchBatch_Empty(t *testing.T) {
	t.Parallel()
	h, _ := newOrderHandler(t)

	rec := httptest.NewRecorder()
	h.DispatchBatch(rec, httptest.NewRequest(http.MethodPost, "/api/v1/commands:batch", strings.NewReader(`{"commands":[]}`)))

	requireStatus(t, rec, http.StatusBadRequest)
}

// --- Routes ---

func TestRoutes(t *testing.T) {
	t.Parallel()
	h, svc := newOrderHandler(t)

	svc.EXPECT().Routes().Return([]ports.RouteInfo{
		{Command: "order.placeOrder", Kind: ports.RouteConstructor},
		{Command: "order.changeLineQuantity", Kind: ports.RouteNested, Depth: 1,
			Path: []ports.RouteHop{{Member: "Lines", Kind: "collection", TargetProperty: "targetLineId"}}},
	})

	rec := httptest.NewRecorder()
	h.Routes(rec, httptest.NewRequest(http.MethodGet, "/api/v1/routes", nil))

	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.RoutesResponse](t, rec)
	if len(resp.Routes) != 2 || resp.Routes[1].Path[0].TargetProperty != "targetLineId" {
		t.Errorf("Routes = %+v", resp.Routes)
	}
}
