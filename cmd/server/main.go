// Package main is the entry point for the order command service. It wires
// all dependencies using samber/do v2, starts the HTTP server, and handles
// graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	adapthttp "github.com/jsamuelsen11/go-entity-routing/internal/adapters/http"
	"github.com/jsamuelsen11/go-entity-routing/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/go-entity-routing/internal/adapters/http/middleware"

	"github.com/jsamuelsen11/go-entity-routing/internal/adapters/clients/orderstore"
	"github.com/jsamuelsen11/go-entity-routing/internal/adapters/storage/memory"
	"github.com/jsamuelsen11/go-entity-routing/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen11/go-entity-routing/internal/app"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/config"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/health"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/httpclient"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/logging"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/telemetry"
	"github.com/jsamuelsen11/go-entity-routing/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	serverShutdownTimeout = 15 * time.Second
	otelShutdownTimeout   = 5 * time.Second
	readinessCheckTimeout = 2 * time.Second
	storeOpenTimeout      = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE environment variable is required (e.g. local, dev, qa, prod)")
	}

	// Bootstrap: config, logger, telemetry.
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx := context.Background()
	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)

	registerDependencies(injector, cfg, logger)

	// Resolve the server (eagerly wires the full graph). A handler model
	// that cannot be routed fails here, before the listener opens.
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	repo := do.MustInvoke[ports.OrderRepository](injector)
	if c, ok := repo.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				logger.Error("closing order store", slog.Any("error", err))
			}
		}()
	}

	// Register health checkers after the graph is wired.
	registry := do.MustInvoke[ports.HealthRegistry](injector)
	if checker, ok := repo.(ports.HealthChecker); ok {
		registry.Register(checker)
	}

	// Start server in background.
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for shutdown signal or server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	// Graceful shutdown: drain HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Wait for Start() goroutine to return.
	<-serverErr

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tc := cfg.Telemetry
	tp, err := telemetry.InitTracer(ctx, tc.ServiceName, tc.Exporter, tc.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx, tc.ServiceName, tc.Exporter, tc.Endpoint)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp, tc.ServiceName)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{tracer: tp, meter: mp, metrics: metrics}, nil
}

// openRepository builds the order store selected by store.driver.
func openRepository(cfg *config.Config, metrics *telemetry.Metrics, logger *slog.Logger) (ports.OrderRepository, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		ctx, cancel := context.WithTimeout(context.Background(), storeOpenTimeout)
		defer cancel()
		return sqlite.Open(ctx, cfg.Store.SQLite.Path, cfg.Store.SQLite.BusyTimeout)
	case config.DriverRemote:
		client := httpclient.New(&cfg.Store.Remote, "order-store", metrics, logger)
		return orderstore.New(client, logger), nil
	default:
		return memory.New(), nil
	}
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	do.Provide(injector, func(_ do.Injector) (*app.DispatchTable, error) {
		rc := cfg.Routing
		table, err := app.BuildOrderTable(rc.MaxDepth, rc.StrictTargetProperties, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("order routes built", slog.Int("routes", len(table.Routes())))
		return table, nil
	})

	do.Provide(injector, func(i do.Injector) (ports.OrderRepository, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		repo, err := openRepository(cfg, metrics, logger)
		if err != nil {
			return nil, fmt.Errorf("opening %s order store: %w", cfg.Store.Driver, err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (ports.CommandService, error) {
		table, err := do.Invoke[*app.DispatchTable](i)
		if err != nil {
			return nil, err
		}
		repo, err := do.Invoke[ports.OrderRepository](i)
		if err != nil {
			return nil, err
		}
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return app.NewCommandService(table, repo, metrics, logger, cfg.Routing.BatchWorkers), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(health.WithCheckTimeout(readinessCheckTimeout)), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.OrderHandler, error) {
		svc, err := do.Invoke[ports.CommandService](i)
		if err != nil {
			return nil, err
		}
		return handlers.NewOrderHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		return handlers.NewHealthHandler(registry), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		orderH, err := do.Invoke[*handlers.OrderHandler](i)
		if err != nil {
			return nil, err
		}
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		var timeout func(nethttp.Handler) nethttp.Handler
		if cfg.Server.RequestTimeout > 0 {
			timeout = middleware.Timeout(cfg.Server.RequestTimeout)
		}
		stack := middleware.Chain(
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			timeout,
		)
		return adapthttp.NewRouter(orderH, healthH, stack), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler, err := do.Invoke[nethttp.Handler](i)
		if err != nil {
			return nil, err
		}
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}
