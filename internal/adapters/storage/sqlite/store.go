// Package sqlite provides a SQLite-backed order repository. Each order is
// one row holding its JSON snapshot; the version column guards concurrent
// writers.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/jsamuelsen11/go-entity-routing/internal/adapters/storage"
	"github.com/jsamuelsen11/go-entity-routing/internal/adapters/storage/sqlite/migrations"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
	"github.com/jsamuelsen11/go-entity-routing/internal/ports"
)

var (
	_ ports.OrderRepository = (*Store)(nil)
	_ ports.HealthChecker   = (*Store)(nil)
)

const defaultBusyTimeout = 5 * time.Second

// Store persists orders in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// embedded migrations. A zero busyTimeout uses five seconds.
func Open(ctx context.Context, path string, busyTimeout time.Duration) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		filepath.Clean(path), busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single connection serializes writers inside the process.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if err := migrate(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load implements ports.OrderRepository.
func (s *Store) Load(ctx context.Context, id string) (*order.Order, error) {
	var snapshot string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM orders WHERE id = ?`, id).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading order %s: %w", id, err)
	}
	return storage.Decode([]byte(snapshot))
}

// Save implements ports.OrderRepository.
func (s *Store) Save(ctx context.Context, o *order.Order) error {
	next := o.Version + 1
	data, err := storage.Encode(o, next)
	if err != nil {
		return err
	}

	if o.Version == 0 {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO orders (id, customer, status, version, snapshot, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.Customer, string(o.Status), next, string(data),
			o.CreatedAt.UTC().UnixMilli(), o.UpdatedAt.UTC().UnixMilli(),
		)
		if isUniqueViolation(err) {
			return storage.CheckVersion(o, 0, true)
		}
		if err != nil {
			return fmt.Errorf("inserting order %s: %w", o.ID, err)
		}
		o.Version = next
		return nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET customer = ?, status = ?, version = ?, snapshot = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		o.Customer, string(o.Status), next, string(data), o.UpdatedAt.UTC().UnixMilli(),
		o.ID, o.Version,
	)
	if err != nil {
		return fmt.Errorf("updating order %s: %w", o.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating order %s: %w", o.ID, err)
	}
	if n == 0 {
		return s.explainMiss(ctx, o)
	}
	o.Version = next
	return nil
}

// explainMiss reports why an update matched no row.
func (s *Store) explainMiss(ctx context.Context, o *order.Order) error {
	var stored int64
	err := s.db.QueryRowContext(ctx, `SELECT version FROM orders WHERE id = ?`, o.ID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.CheckVersion(o, 0, false)
	}
	if err != nil {
		return fmt.Errorf("reading version of order %s: %w", o.ID, err)
	}
	return storage.CheckVersion(o, stored, true)
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "sqlite" }

// HealthCheck implements ports.HealthChecker.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
