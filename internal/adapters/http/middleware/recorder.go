// Package middleware holds the inbound HTTP pipeline. cmd/server stacks it as
//
//	Recovery, RequestID, CorrelationID, OpenTelemetry, Logging, Timeout
//
// outermost first.
package middleware

import (
	"net/http"
	"slices"
)

// Chain stacks mws so the first one sees the request first. Nil entries are
// skipped, which lets callers leave out optional middleware inline.
func Chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for _, mw := range slices.Backward(mws) {
			if mw != nil {
				h = mw(h)
			}
		}
		return h
	}
}

// recorder remembers the status and body size a handler produced.
type recorder struct {
	http.ResponseWriter
	status  int
	bytes   int64
	started bool
}

// record wraps w unless it already is a recorder, so stacked middleware
// share one.
func record(w http.ResponseWriter) *recorder {
	if rec, ok := w.(*recorder); ok {
		return rec
	}
	return &recorder{ResponseWriter: w, status: http.StatusOK}
}

func (rec *recorder) WriteHeader(code int) {
	if rec.started {
		return
	}
	rec.status, rec.started = code, true
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *recorder) Write(b []byte) (int, error) {
	rec.started = true
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (rec *recorder) Unwrap() http.ResponseWriter { return rec.ResponseWriter }
