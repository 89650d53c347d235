// Package memory provides an in-process order repository. Orders are kept
// as encoded snapshots so callers never share state with the store.
package memory

import (
	"context"
	"sync"

	"github.com/jsamuelsen11/go-entity-routing/internal/adapters/storage"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
	"github.com/jsamuelsen11/go-entity-routing/internal/ports"
)

var (
	_ ports.OrderRepository = (*Store)(nil)
	_ ports.HealthChecker   = (*Store)(nil)
)

type record struct {
	version int64
	data    []byte
}

// Store is a map-backed OrderRepository.
type Store struct {
	mu     sync.RWMutex
	orders map[string]record
}

// New returns an empty Store.
func New() *Store {
	return &Store{orders: make(map[string]record)}
}

// Load implements ports.OrderRepository.
func (s *Store) Load(ctx context.Context, id string) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	rec, ok := s.orders[id]
	s.mu.RUnlock()
	if !ok {
		return nil, storage.NotFound(id)
	}
	return storage.Decode(rec.data)
}

// Save implements ports.OrderRepository.
func (s *Store) Save(ctx context.Context, o *order.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, exists := s.orders[o.ID]
	if err := storage.CheckVersion(o, cur.version, exists); err != nil {
		return err
	}

	next := o.Version + 1
	data, err := storage.Encode(o, next)
	if err != nil {
		return err
	}
	s.orders[o.ID] = record{version: next, data: data}
	o.Version = next
	return nil
}

// Len returns the number of stored orders.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "memory-store" }

// HealthCheck implements ports.HealthChecker. The in-memory store is always
// available.
func (s *Store) HealthCheck(ctx context.Context) error { return ctx.Err() }
