package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jsamuelsen11/go-entity-routing/internal/domain"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "orders.db"), 0)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_RequiresPath(t *testing.T) {
	t.Parallel()
	if _, err := Open(context.Background(), "  ", 0); err == nil {
		t.Fatal("Open(blank) = nil error")
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "orders.db")

	s, err := Open(ctx, path, time.Second)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Save(ctx, order.New("o-1", "acme", time.Now())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	_ = s.Close()

	// Migrations already recorded are skipped on reopen.
	s, err = Open(ctx, path, time.Second)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	if _, err := s.Load(ctx, "o-1"); err != nil {
		t.Errorf("Load() after reopen error = %v", err)
	}
}

func TestStore_SaveLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	o := order.New("o-1", "acme", time.Now())
	o.Lines = append(o.Lines, &order.OrderLine{LineID: "L1", SKU: "a", Quantity: 1, Pricing: &order.Pricing{UnitPrice: 5}})

	if _, err := s.Load(ctx, "o-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Load(missing) error = %v, want not found", err)
	}
	if err := s.Save(ctx, o); err != nil {
		t.Fatalf("Save(create) error = %v", err)
	}
	if err := s.Save(ctx, order.New("o-1", "other", time.Now())); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("Save(duplicate) error = %v, want conflict", err)
	}

	got, err := s.Load(ctx, "o-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Version != 1 || len(got.Lines) != 1 || got.Lines[0].Pricing.UnitPrice != 5 {
		t.Fatalf("Load() = %+v", got)
	}

	stale, _ := s.Load(ctx, "o-1")
	if err := got.Cancel("test"); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if err := s.Save(ctx, got); err != nil {
		t.Fatalf("Save(update) error = %v", err)
	}
	if got.Version != 2 {
		t.Errorf("Version = %d, want 2", got.Version)
	}
	if err := s.Save(ctx, stale); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("Save(stale) error = %v, want conflict", err)
	}

	ghost := order.New("o-9", "acme", time.Now())
	ghost.Version = 4
	if err := s.Save(ctx, ghost); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Save(missing update) error = %v, want not found", err)
	}

	reloaded, _ := s.Load(ctx, "o-1")
	if reloaded.Status != order.StatusCancelled {
		t.Errorf("stored status = %q, want cancelled", reloaded.Status)
	}
}

func TestStore_Health(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if s.Name() != "sqlite" {
		t.Errorf("Name() = %q", s.Name())
	}
	if err := s.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v", err)
	}
	_ = s.Close()
	if err := s.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() after Close = nil")
	}
}

func TestMigrate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	fsys := fstest.MapFS{
		"0001_a.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE a (x INTEGER);\n-- +migrate Down\nDROP TABLE a;\n")},
		"0002_b.sql": {Data: []byte("CREATE TABLE b (y INTEGER);")},
		"notes.txt":  {Data: []byte("ignored")},
	}
	for range 2 {
		if err := migrate(ctx, s.db, fsys); err != nil {
			t.Fatalf("migrate() error = %v", err)
		}
	}

	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_migrations WHERE name IN ('0001_a.sql', '0002_b.sql')`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("recorded migrations = %d, want 2", n)
	}
}

func TestUpSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{in: "SELECT 1;", want: "SELECT 1;"},
		{in: "-- +migrate Up\nA;\n-- +migrate Down\nB;", want: "\nA;\n"},
		{in: "-- +migrate Up\nA;", want: "\nA;"},
	}
	for _, tt := range tests {
		if got := upSection(tt.in); got != tt.want {
			t.Errorf("upSection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
