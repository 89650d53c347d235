// Package storage holds what the order repository adapters share: the
// snapshot encoding and the optimistic version rules.
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
)

// Encode renders o as a snapshot stamped with version.
func Encode(o *order.Order, version int64) ([]byte, error) {
	snap := *o
	snap.Version = version
	data, err := json.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("encoding order %s: %w", o.ID, err)
	}
	return data, nil
}

// Decode parses a snapshot into a new order owned by the caller.
func Decode(data []byte) (*order.Order, error) {
	var o order.Order
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("decoding order snapshot: %w", err)
	}
	if o.Shipments == nil {
		o.Shipments = map[string]*order.Shipment{}
	}
	return &o, nil
}

// NotFound reports a missing order.
func NotFound(id string) error {
	return fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
}

// CheckVersion applies the optimistic concurrency rule for saving o over a
// stored version. exists reports whether the order is stored at all.
func CheckVersion(o *order.Order, stored int64, exists bool) error {
	switch {
	case o.Version == 0 && exists:
		return fmt.Errorf("order %s already exists: %w", o.ID, domain.ErrConflict)
	case o.Version != 0 && !exists:
		return NotFound(o.ID)
	case exists && stored != o.Version:
		return fmt.Errorf("order %s was modified concurrently (stored version %d, have %d): %w",
			o.ID, stored, o.Version, domain.ErrConflict)
	}
	return nil
}
