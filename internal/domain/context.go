package domain

import "context"

// Action is a deferred write queued on a unit of work. Rollback is only
// called after a successful Execute, possibly with a different context.
type Action interface {
	Execute(ctx context.Context) error
	Rollback(ctx context.Context) error

	// Description names the write in logs, e.g. "save order o-1 at version 3".
	Description() string
}

// WriteStager is the unit of work as command handlers see it.
type WriteStager interface {
	// Stage replaces the cached entity under key and queues action for
	// commit. Later reads of key within the same unit of work see entity.
	Stage(key string, entity any, action Action) error

	// Execute runs action now, outside the commit queue. It is never
	// rolled back.
	Execute(action Action) error
}
