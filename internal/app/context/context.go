// Package appctx provides the request-scoped unit of work used by command
// dispatch.
//
// Aggregates read during a request are memoized by key, and the write that
// persists each one is staged under the same key. Staging a key twice
// replaces the earlier write, so several commands applied to one aggregate
// produce a single save:
//
//	rc := appctx.New(ctx)
//	o, err := appctx.GetOrFetch(rc, "order:o-1", load)
//	// ... apply commands to o ...
//	err = rc.Stage("order:o-1", o, saveAction)
//	err = rc.Commit(ctx)
//
// Commit runs the staged writes in the order their keys were first staged
// and rolls back completed writes when a later one fails.
package appctx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
)

// Compile-time check that RequestContext implements domain.WriteStager.
var _ domain.WriteStager = (*RequestContext)(nil)

var (
	// ErrAlreadyCommitted is returned when Stage, AddAction or Commit is
	// called on a RequestContext that has already been committed.
	ErrAlreadyCommitted = errors.New("appctx: request context already committed")

	// ErrNilAction is returned when a nil Action is staged.
	ErrNilAction = errors.New("appctx: nil action")

	// ErrTypeMismatch is returned by GetOrFetch when a cached value's type
	// does not match the requested type.
	ErrTypeMismatch = errors.New("appctx: cached value type mismatch")
)

// RequestContext is a context.Context carrying a memo cache and a queue of
// staged writes. It is safe for concurrent use, but a fetch for a key runs
// while holding the lock so that the key is fetched at most once.
type RequestContext struct {
	context.Context

	mu        sync.Mutex
	cache     map[string]cacheEntry
	queue     []queued
	committed bool
}

type cacheEntry struct {
	value any
	err   error
}

// queued is a staged write; key is empty for unkeyed actions.
type queued struct {
	key    string
	action domain.Action
}

type contextKey struct{}

// New creates an empty RequestContext wrapping ctx.
func New(ctx context.Context) *RequestContext {
	return &RequestContext{
		Context: ctx,
		cache:   make(map[string]cacheEntry),
	}
}

// WithRequestContext stores rc in ctx.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, rc)
}

// FromContext returns the RequestContext stored in ctx, if any.
func FromContext(ctx context.Context) (*RequestContext, bool) {
	rc, ok := ctx.Value(contextKey{}).(*RequestContext)
	return rc, ok
}

// GetOrFetch returns the value cached under key, or calls fetch and caches
// its result. Errors are cached too, so a missing aggregate is looked up
// once per request.
func GetOrFetch[T any](rc *RequestContext, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if entry, ok := rc.cache[key]; ok {
		if entry.err != nil {
			return zero, entry.err
		}
		v, ok := entry.value.(T)
		if !ok {
			return zero, fmt.Errorf("%w: key %q holds %T, requested %T", ErrTypeMismatch, key, entry.value, zero)
		}
		return v, nil
	}

	val, err := fetch(rc.Context)
	rc.cache[key] = cacheEntry{value: val, err: err}
	return val, err
}

// Forget drops the cached value for key. Staged writes are kept.
func (rc *RequestContext) Forget(key string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	delete(rc.cache, key)
}

// Stage caches entity under key and queues action to persist it. A write
// already staged for key is replaced in place, keeping its position.
func (rc *RequestContext) Stage(key string, entity any, action domain.Action) error {
	if action == nil {
		return ErrNilAction
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.committed {
		return ErrAlreadyCommitted
	}
	rc.cache[key] = cacheEntry{value: entity}
	for i := range rc.queue {
		if rc.queue[i].key == key {
			rc.queue[i].action = action
			return nil
		}
	}
	rc.queue = append(rc.queue, queued{key: key, action: action})
	return nil
}

// AddAction queues an unkeyed action for Commit.
func (rc *RequestContext) AddAction(action domain.Action) error {
	if action == nil {
		return ErrNilAction
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.committed {
		return ErrAlreadyCommitted
	}
	rc.queue = append(rc.queue, queued{action: action})
	return nil
}

// Pending returns the number of staged writes.
func (rc *RequestContext) Pending() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.queue)
}

// Execute runs action immediately. It takes no part in Commit or rollback
// and works after Commit.
func (rc *RequestContext) Execute(action domain.Action) error {
	if action == nil {
		return ErrNilAction
	}
	return action.Execute(rc.Context)
}
