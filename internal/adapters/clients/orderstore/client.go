// Package orderstore is the outbound adapter for a remote order snapshot
// service. It implements ports.OrderRepository over HTTP, with optimistic
// concurrency carried by If-Match / If-None-Match headers.
//
//	GET /api/v1/order-snapshots/{id}   200 snapshot | 404
//	PUT /api/v1/order-snapshots/{id}   200/201/204 | 404 | 409 | 412
package orderstore

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/httpclient"
	"github.com/jsamuelsen11/go-entity-routing/internal/ports"
)

var (
	_ ports.OrderRepository = (*Client)(nil)
	_ ports.HealthChecker   = (*Client)(nil)
)

const basePath = "/api/v1/order-snapshots/"

// Client is a remote OrderRepository.
type Client struct {
	http   *httpclient.Client
	logger *slog.Logger
}

// New returns a Client sending requests through c.
func New(c *httpclient.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{http: c, logger: logger}
}

// Load implements ports.OrderRepository.
func (c *Client) Load(ctx context.Context, id string) (*order.Order, error) {
	var dto snapshotDTO
	_, err := c.http.JSON(ctx, httpclient.Call{
		Method: http.MethodGet,
		Path:   basePath + url.PathEscape(id),
		Out:    &dto,
	})
	if err != nil {
		return nil, c.fail(ctx, "Load", id, err)
	}
	return fromSnapshot(dto)
}

// Save implements ports.OrderRepository. A zero version is sent with
// If-None-Match: * so the store refuses to overwrite an existing order.
func (c *Client) Save(ctx context.Context, o *order.Order) error {
	next := o.Version + 1
	dto, err := toSnapshot(o, next)
	if err != nil {
		return err
	}

	header := http.Header{}
	if o.Version == 0 {
		header.Set("If-None-Match", "*")
	} else {
		header.Set("If-Match", strconv.Quote(strconv.FormatInt(o.Version, 10)))
	}

	_, err = c.http.JSON(ctx, httpclient.Call{
		Method: http.MethodPut,
		Path:   basePath + url.PathEscape(o.ID),
		Header: header,
		Body:   dto,
		Accept: []int{http.StatusOK, http.StatusCreated, http.StatusNoContent},
	})
	if err != nil {
		return c.fail(ctx, "Save", o.ID, err)
	}
	o.Version = next
	return nil
}

// Name implements ports.HealthChecker.
func (c *Client) Name() string { return c.http.Name() }

// HealthCheck implements ports.HealthChecker. It reports the circuit
// breaker state of the underlying client and does not call the store.
func (c *Client) HealthCheck(ctx context.Context) error { return c.http.HealthCheck(ctx) }

func (c *Client) fail(ctx context.Context, op, id string, err error) error {
	derr := translate(id, err)
	c.logger.DebugContext(ctx, "order store call failed",
		slog.String("operation", "orderstore."+op),
		slog.String("order_id", id),
		slog.Any("error", err),
	)
	return derr
}
