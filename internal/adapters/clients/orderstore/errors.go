package orderstore

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/httpclient"
)

// translate maps an order store failure to a domain error.
func translate(id string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("order store: %v: %w", err, domain.ErrUnavailable)
	}

	var se *httpclient.StatusError
	if !errors.As(err, &se) {
		return fmt.Errorf("order %s: %w", id, err)
	}

	switch {
	case se.Status == http.StatusNotFound:
		return fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	case se.Status == http.StatusConflict || se.Status == http.StatusPreconditionFailed:
		return fmt.Errorf("order %s: %s: %w", id, se.Error(), domain.ErrConflict)
	case se.Status == http.StatusBadRequest || se.Status == http.StatusUnprocessableEntity:
		if len(se.Fields) > 0 {
			return &domain.ValidationError{Fields: se.Fields}
		}
		return fmt.Errorf("order %s: %s: %w", id, se.Error(), domain.ErrValidation)
	case se.Status >= http.StatusInternalServerError:
		return fmt.Errorf("order store: %s: %w", se.Error(), domain.ErrUnavailable)
	default:
		return fmt.Errorf("order %s: unexpected response: %w", id, se)
	}
}
