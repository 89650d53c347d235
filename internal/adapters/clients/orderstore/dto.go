package orderstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jsamuelsen11/go-entity-routing/internal/adapters/storage"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
)

// snapshotDTO is the order store's wire representation of an order: a
// versioned envelope around the encoded aggregate.
type snapshotDTO struct {
	ID        string          `json:"id"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
	Order     json.RawMessage `json:"order"`
}

func toSnapshot(o *order.Order, version int64) (snapshotDTO, error) {
	data, err := storage.Encode(o, version)
	if err != nil {
		return snapshotDTO{}, err
	}
	return snapshotDTO{ID: o.ID, Version: version, UpdatedAt: o.UpdatedAt, Order: data}, nil
}

// fromSnapshot decodes dto. The envelope's id and version win over the
// embedded ones.
func fromSnapshot(dto snapshotDTO) (*order.Order, error) {
	if len(dto.Order) == 0 {
		return nil, fmt.Errorf("order store returned an empty snapshot for %s", dto.ID)
	}
	o, err := storage.Decode(dto.Order)
	if err != nil {
		return nil, err
	}
	if o.ID != dto.ID {
		return nil, fmt.Errorf("order store returned snapshot of %s for %s", o.ID, dto.ID)
	}
	o.Version = dto.Version
	return o, nil
}
