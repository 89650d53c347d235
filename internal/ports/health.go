package ports

import "context"

// HealthChecker is a dependency the readiness probe should wait on, such as
// the SQLite database or the remote order store.
type HealthChecker interface {
	// Name keys the checker's result, e.g. "sqlite".
	Name() string
	HealthCheck(ctx context.Context) error
}

// HealthRegistry runs every registered checker for the readiness probe.
type HealthRegistry interface {
	Register(checker HealthChecker)

	// CheckAll returns one result per checker name; nil means healthy.
	CheckAll(ctx context.Context) map[string]error
}
