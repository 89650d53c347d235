package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/go-entity-routing/internal/app/routing"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/entity"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/property"
	"github.com/jsamuelsen11/go-entity-routing/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func orderTable(t *testing.T) *DispatchTable {
	t.Helper()

	catalog := entity.NewCatalog()
	props := property.NewRegistry()
	if err := order.Register(catalog, props); err != nil {
		t.Fatalf("order.Register() error = %v", err)
	}
	table, err := BuildDispatchTable(catalog, props, order.AggregateType,
		routing.WithStrictTargetProperties(), routing.WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("BuildDispatchTable() error = %v", err)
	}
	return table
}

// storedOrder is the snapshot the mock repository starts from: two lines
// (L1, L9), one pending shipment S1 and an uncaptured payment.
func storedOrder(id string) *order.Order {
	return &order.Order{
		ID:       id,
		Customer: "acme",
		Status:   order.StatusOpen,
		Lines: []*order.OrderLine{
			{LineID: "L1", SKU: "a", Quantity: 1, Pricing: &order.Pricing{UnitPrice: 100}},
			{LineID: "L9", SKU: "b", Quantity: 2, Pricing: &order.Pricing{UnitPrice: 250}},
		},
		Shipments: map[string]*order.Shipment{
			"S1": {ShipmentID: "S1", Carrier: "ups", Status: order.ShipmentPending},
		},
		Payment: &order.Payment{},
		Version: 3,
	}
}

// snapshotRepo backs a mock repository with JSON snapshots so every Load
// returns an independent copy, and Save applies the version check.
type snapshotRepo struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves int
}

func newSnapshotRepo(t *testing.T, orders ...*order.Order) (*mocks.MockOrderRepository, *snapshotRepo) {
	t.Helper()

	s := &snapshotRepo{data: make(map[string][]byte)}
	for _, o := range orders {
		b, err := json.Marshal(o)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		s.data[o.ID] = b
	}

	repo := mocks.NewMockOrderRepository(t)
	repo.EXPECT().Load(mock.Anything, mock.Anything).RunAndReturn(s.load).Maybe()
	repo.EXPECT().Save(mock.Anything, mock.Anything).RunAndReturn(s.save).Maybe()
	return repo, s
}

func (s *snapshotRepo) load(_ context.Context, id string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	var o order.Order
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *snapshotRepo) save(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.data[o.ID]; ok {
		var cur order.Order
		if err := json.Unmarshal(b, &cur); err != nil {
			return err
		}
		if cur.Version != o.Version {
			return domain.ErrConflict
		}
	} else if o.Version != 0 {
		return domain.ErrNotFound
	}

	o.Version++
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	s.data[o.ID] = b
	s.saves++
	return nil
}

func (s *snapshotRepo) get(t *testing.T, id string) *order.Order {
	t.Helper()
	o, err := s.load(context.Background(), id)
	if err != nil {
		t.Fatalf("stored order %s: %v", id, err)
	}
	return o
}

func (s *snapshotRepo) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
