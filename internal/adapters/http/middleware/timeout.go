package middleware

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/jsamuelsen11/go-entity-routing/internal/adapters/http/dto"
)

// Timeout bounds each request to d. The handler runs on its own goroutine
// against a buffered response; if d elapses first the client gets a 504
// problem response and the handler's later writes fail with
// http.ErrHandlerTimeout. A handler panic is re-raised on the serving
// goroutine so Recovery still sees it.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			buf := &bufferedResponse{header: make(http.Header)}
			done := make(chan struct{})
			panicked := make(chan any, 1)

			go func() {
				defer func() {
					if v := recover(); v != nil {
						panicked <- v
					}
				}()
				next.ServeHTTP(buf, r.WithContext(ctx))
				close(done)
			}()

			select {
			case v := <-panicked:
				panic(v)
			case <-done:
				buf.commit(w)
			case <-ctx.Done():
				buf.expire()
				dto.WriteErrorResponse(w, r, fmt.Errorf("request exceeded %s: %w", d, ctx.Err()))
			}
		})
	}
}

// bufferedResponse holds a handler's response until Timeout decides who
// owns the real writer.
type bufferedResponse struct {
	mu      sync.Mutex
	header  http.Header
	body    []byte
	status  int
	expired bool
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status == 0 && !b.expired {
		b.status = code
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.expired {
		return 0, http.ErrHandlerTimeout
	}
	if b.status == 0 {
		b.status = http.StatusOK
	}
	b.body = append(b.body, p...)
	return len(p), nil
}

// commit copies the buffered response to w.
func (b *bufferedResponse) commit(w http.ResponseWriter) {
	b.mu.Lock()
	defer b.mu.Unlock()

	maps.Copy(w.Header(), b.header)
	if b.status != 0 {
		w.WriteHeader(b.status)
	}
	_, _ = w.Write(b.body)
}

// expire drops whatever was buffered and rejects further writes.
func (b *bufferedResponse) expire() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expired = true
	b.body = nil
}
