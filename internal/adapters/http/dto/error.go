package dto

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/logging"
)

// Problem codes let clients tell apart failures that share a status, such as
// an unknown order and a command whose target line does not exist.
const (
	CodeValidation    = "validation"
	CodeNotFound      = "not_found"
	CodeRouting       = "routing"
	CodeConflict      = "conflict"
	CodeUnavailable   = "store_unavailable"
	CodeTimeout       = "timeout"
	CodeConfiguration = "configuration"
	CodeInternal      = "internal"
)

// ErrorResponse is an RFC 9457 problem with a code extension member.
type ErrorResponse struct {
	Type     string        `json:"type"`
	Title    string        `json:"title"`
	Status   int           `json:"status"`
	Code     string        `json:"code"`
	Detail   string        `json:"detail,omitempty"`
	Instance string        `json:"instance,omitempty"`
	Errors   []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail is one invalid field.
type ErrorDetail struct {
	Location string `json:"location"`
	Message  string `json:"message"`
	Value    any    `json:"value,omitempty"`
}

// NewErrorResponse describes err for the client. Configuration and other
// internal faults keep their detail out of the response.
func NewErrorResponse(r *http.Request, err error) ErrorResponse {
	status, code := classify(err)

	resp := ErrorResponse{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Code:     code,
		Detail:   err.Error(),
		Instance: r.RequestURI,
	}
	if code == CodeConfiguration {
		resp.Detail = ""
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Errors = validationFieldsToDetails(verr.Fields)
	}

	return resp
}

// WriteErrorResponse writes err as application/problem+json. Server-side
// failures are logged on the request's logger.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	resp := NewErrorResponse(r, err)
	logger := logging.FromContext(r.Context())
	if resp.Status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("code", resp.Code),
			slog.Any("error", err),
		)
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(resp.Status)
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		logger.ErrorContext(r.Context(), "encoding problem response", slog.Any("error", encErr))
	}
}

// ErrorStatus is the HTTP status NewErrorResponse uses for err.
func ErrorStatus(err error) int {
	status, _ := classify(err)
	return status
}

// classify maps err onto a status and problem code. Routing misses are 404
// like a missing order; a missed deadline is 504.
func classify(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, domain.ErrRouting):
		return http.StatusNotFound, CodeRouting
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusBadGateway, CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusInternalServerError, CodeConfiguration
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// validationFieldsToDetails locates each field under "body." in sorted order.
func validationFieldsToDetails(fields map[string]string) []ErrorDetail {
	details := make([]ErrorDetail, 0, len(fields))
	for field, msg := range fields {
		details = append(details, ErrorDetail{
			Location: "body." + field,
			Message:  msg,
		})
	}
	slices.SortFunc(details, func(a, b ErrorDetail) int {
		return strings.Compare(a.Location, b.Location)
	})
	return details
}
