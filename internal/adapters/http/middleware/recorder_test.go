package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var seen []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = append(seen, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(tag("recovery"), nil, tag("request-id"), tag("logging"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		seen = append(seen, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if got := strings.Join(seen, ","); got != "recovery,request-id,logging,handler" {
		t.Errorf("order = %s", got)
	}
}

func TestChain_Empty(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Chain()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	t.Run("implicit 200", func(t *testing.T) {
		t.Parallel()
		rec := record(httptest.NewRecorder())
		_, _ = rec.Write([]byte("hello"))
		_, _ = rec.Write([]byte("!"))
		if rec.status != http.StatusOK || rec.bytes != 6 || !rec.started {
			t.Errorf("recorder = status %d, bytes %d, started %v", rec.status, rec.bytes, rec.started)
		}
	})

	t.Run("first status wins", func(t *testing.T) {
		t.Parallel()
		under := httptest.NewRecorder()
		rec := record(under)
		rec.WriteHeader(http.StatusCreated)
		rec.WriteHeader(http.StatusConflict)
		if rec.status != http.StatusCreated || under.Code != http.StatusCreated {
			t.Errorf("status = %d, underlying %d, want 201", rec.status, under.Code)
		}
	})

	t.Run("reuses an existing recorder", func(t *testing.T) {
		t.Parallel()
		outer := record(httptest.NewRecorder())
		if record(outer) != outer {
			t.Error("record() wrapped a recorder twice")
		}
	})

	t.Run("unwrap", func(t *testing.T) {
		t.Parallel()
		under := httptest.NewRecorder()
		if record(under).Unwrap() != under {
			t.Error("Unwrap() did not return the wrapped writer")
		}
	})
}
