package httpclient_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/jsamuelsen11/go-entity-routing/internal/platform/config"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/httpclient"
)

func testConfig(baseURL string) *config.ClientConfig {
	return &config.ClientConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 5 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func get(t *testing.T, c *httpclient.Client, ctx context.Context, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	resp, err := c.Do(ctx, req)
	if resp != nil {
		t.Cleanup(func() { _ = resp.Body.Close() })
	}
	return resp, err
}

func TestDo_Retries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		failures   int32
		wantCalls  int32
		wantStatus int
		wantErr    bool
	}{
		{name: "5xx until success", status: http.StatusInternalServerError, failures: 2, wantCalls: 3, wantStatus: http.StatusOK},
		{name: "429 until success", status: http.StatusTooManyRequests, failures: 1, wantCalls: 2, wantStatus: http.StatusOK},
		{name: "4xx is final", status: http.StatusConflict, failures: 5, wantCalls: 1, wantStatus: http.StatusConflict},
		{name: "attempts exhausted", status: http.StatusServiceUnavailable, failures: 5, wantCalls: 3,
			wantStatus: http.StatusServiceUnavailable, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if calls.Add(1) <= tt.failures {
					w.WriteHeader(tt.status)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))
			t.Cleanup(srv.Close)

			cfg := testConfig(srv.URL)
			cfg.CircuitBreaker.MaxFailures = 100
			client := httpclient.New(cfg, "order-store", nil, testLogger())

			resp, err := get(t, client, context.Background(), srv.URL+"/x")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Do() error = %v, wantErr %v", err, tt.wantErr)
			}
			if resp == nil || resp.StatusCode != tt.wantStatus {
				t.Fatalf("Do() response = %v, want status %d", resp, tt.wantStatus)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestDo_ReplaysBody(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		n := len(bodies)
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	client := httpclient.New(testConfig(srv.URL), "order-store", nil, testLogger())
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPut, srv.URL+"/x", strings.NewReader("snapshot"))
	resp, err := client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	_ = resp.Body.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 2 || bodies[0] != "snapshot" || bodies[1] != "snapshot" {
		t.Errorf("bodies = %q, want the same body twice", bodies)
	}
}

func TestDo_ForwardsIDs(t *testing.T) {
	t.Parallel()

	var gotReq, gotCorr atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq.Store(r.Header.Get(httpclient.HeaderRequestID))
		gotCorr.Store(r.Header.Get(httpclient.HeaderCorrelationID))
	}))
	t.Cleanup(srv.Close)

	client := httpclient.New(testConfig(srv.URL), "order-store", nil, testLogger())

	if _, err := get(t, client, context.Background(), srv.URL); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if gotReq.Load() != "" || gotCorr.Load() != "" {
		t.Errorf("headers set without context values: %v, %v", gotReq.Load(), gotCorr.Load())
	}

	ctx := httpclient.WithCorrelationID(httpclient.WithRequestID(context.Background(), "req-1"), "corr-1")
	if _, err := get(t, client, ctx, srv.URL); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if gotReq.Load() != "req-1" || gotCorr.Load() != "corr-1" {
		t.Errorf("forwarded headers = %v, %v; want req-1, corr-1", gotReq.Load(), gotCorr.Load())
	}
}

func TestDo_CircuitBreaker(t *testing.T) {
	t.Parallel()

	var failing atomic.Bool
	failing.Store(true)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.CircuitBreaker.MaxFailures = 1
	cfg.CircuitBreaker.Timeout = 100 * time.Millisecond
	cfg.Retry.MaxAttempts = 1
	client := httpclient.New(cfg, "order-store", nil, testLogger())

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() on fresh client = %v", err)
	}

	_, _ = get(t, client, context.Background(), srv.URL)
	before := calls.Load()

	_, err := get(t, client, context.Background(), srv.URL)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("Do() error = %v, want open breaker", err)
	}
	if calls.Load() != before {
		t.Error("server called while breaker open")
	}
	if err := client.HealthCheck(context.Background()); err == nil || !strings.Contains(err.Error(), "failing") {
		t.Errorf("HealthCheck() open = %v, want failing", err)
	}

	time.Sleep(150 * time.Millisecond)
	if err := client.HealthCheck(context.Background()); err == nil || !strings.Contains(err.Error(), "degraded") {
		t.Errorf("HealthCheck() half-open = %v, want degraded", err)
	}

	failing.Store(false)
	if _, err := get(t, client, context.Background(), srv.URL); err != nil {
		t.Fatalf("Do() after recovery error = %v", err)
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() after recovery = %v", err)
	}
}

func TestDo_CancelledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.RateLimit = 1
	client := httpclient.New(cfg, "order-store", nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := get(t, client, ctx, srv.URL); err == nil {
		t.Fatal("Do() with cancelled context = nil error")
	}
}

func TestClient_Accessors(t *testing.T) {
	t.Parallel()

	client := httpclient.New(testConfig("http://store.local"), "order-store", nil, nil)
	if client.Name() != "order-store" || client.BaseURL() != "http://store.local" {
		t.Errorf("Name() = %q, BaseURL() = %q", client.Name(), client.BaseURL())
	}
}
