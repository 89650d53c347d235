// Package domain contains shared domain types used across entity sub-packages.
// Aggregate-specific types live in sub-packages (domain/order). The command
// contract lives in domain/command and the declarative entity model consumed
// by the routing builder lives in domain/entity. This root package holds
// sentinel errors, the typed errors wrapping them, and domain-level
// interfaces (Action, WriteStager) that are shared across all aggregates.
package domain
