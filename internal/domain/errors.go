package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")

	// ErrConfiguration marks a fatal problem in a declared entity model,
	// detected while building handler routes. It is never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrRouting marks a command that matched a handler but for which no
	// target entity could be resolved inside the aggregate.
	ErrRouting = errors.New("routing error")
)

// MsgRequired is the validation message for missing mandatory fields.
const MsgRequired = "is required"

// ValidationError provides programmatic access to field-level validation failures.
// Use errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr) to
// access verr.Fields for per-field error details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ConfigurationError describes why a member of an entity type could not be
// turned into a routing step. Type and Member identify the declaration
// ("Order", "Lines"); Member is empty for type-level problems.
type ConfigurationError struct {
	Type   string
	Member string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("%s: %s: %s", ErrConfiguration.Error(), e.Type, e.Reason)
	}
	return fmt.Sprintf("%s: member %s.%s: %s", ErrConfiguration.Error(), e.Type, e.Member, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// RoutingError is returned when a nested-entity handler is invoked but the
// accessor chain does not yield an entity for the command.
type RoutingError struct {
	Entity  string
	Payload string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("%s: no appropriate %s entity available in the aggregate for %s; the command cannot be handled",
		ErrRouting.Error(), e.Entity, e.Payload)
}

func (e *RoutingError) Unwrap() error {
	return ErrRouting
}
