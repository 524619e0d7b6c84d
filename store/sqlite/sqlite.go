/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements walking.RecordStore and walking.UserStore using SQLite.

INTERFACES IMPLEMENTED:
  walking.RecordStore: raw activity records, one per (owner, day)
  walking.UserStore:   record owners

KEY TABLES:
  walk_records: raw records, day stored as YYYY-MM-DD text
  users:        owners, balance stored as decimal text
  created_at columns hold fixed-width UTC timestamps so they sort as text.

INDEXES:
  - idx_walk_records_owner_day: UNIQUE, enforces one record per owner and
    day, and serves range reads (hot path)

CREATE-OR-REPLACE:
  ReplaceDay runs DELETE + INSERT in one SQL transaction, so readers never
  observe a day with zero or two records mid-write.

MIGRATIONS:
  Versioned SQL files under migrations/ are embedded and applied with
  golang-migrate on New().

CONCURRENCY:
  Uses sync.RWMutex around statements; SQLite itself serializes writers.
  In-memory databases are pinned to a single connection, since every new
  connection to ":memory:" would open a separate empty database.

USAGE:
  store, err := sqlite.New("./data/walks.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/walk-ledger/calendar"
	"github.com/warp/walk-ledger/walking"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timestampLayout is fixed width, so text order in ORDER BY matches time
// order. RFC3339Nano drops trailing zeros and would not.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ walking.RecordStore = (*Store)(nil)
	_ walking.UserStore   = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies every pending migration.
func (s *Store) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	// m.Close is not called: the driver would close the shared *sql.DB.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// =============================================================================
// RECORD STORE (walking.RecordStore interface)
// =============================================================================

// ReplaceDay deletes the owner's records on rec.Day and inserts rec.
func (s *Store) ReplaceDay(ctx context.Context, rec walking.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx,
		"DELETE FROM walk_records WHERE owner_id = ? AND day = ?",
		rec.OwnerID, rec.Day.String(),
	); err != nil {
		return fmt.Errorf("failed to clear day: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO walk_records (id, owner_id, day, duration_minutes, kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := sqlTx.ExecContext(ctx, query,
		rec.ID,
		rec.OwnerID,
		rec.Day.String(),
		rec.DurationMinutes,
		string(rec.Kind),
		createdAt.UTC().Format(timestampLayout),
	); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	return sqlTx.Commit()
}

// DeleteDay removes the owner's records on day.
func (s *Store) DeleteDay(ctx context.Context, ownerID walking.OwnerID, day calendar.Day) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM walk_records WHERE owner_id = ? AND day = ?",
		ownerID, day.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// LoadRange returns the owner's records in [from, to].
func (s *Store) LoadRange(ctx context.Context, ownerID walking.OwnerID, from, to calendar.Day) ([]walking.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, owner_id, day, duration_minutes, kind, created_at
		FROM walk_records
		WHERE owner_id = ? AND day >= ? AND day <= ?
		ORDER BY day ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []walking.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (walking.Record, error) {
	var (
		rec       walking.Record
		day       string
		kind      string
		createdAt string
	)

	if err := rows.Scan(&rec.ID, &rec.OwnerID, &day, &rec.DurationMinutes, &kind, &createdAt); err != nil {
		return rec, fmt.Errorf("failed to scan record: %w", err)
	}

	d, err := calendar.ParseDay(day)
	if err != nil {
		return rec, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	rec.Day = d
	rec.Kind = walking.Kind(kind)
	rec.CreatedAt = parseTimestamp(createdAt)
	return rec, nil
}

// =============================================================================
// USER STORE (walking.UserStore interface)
// =============================================================================

// SaveUser inserts or updates a user.
func (s *Store) SaveUser(ctx context.Context, u walking.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO users (id, name, balance, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			balance = excluded.balance
	`

	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Balance.String(),
		createdAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// FirstUser returns the oldest user, or nil.
func (s *Store) FirstUser(ctx context.Context) (*walking.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryUser(ctx,
		"SELECT id, name, balance, created_at FROM users ORDER BY created_at ASC, rowid ASC LIMIT 1")
}

// GetUser retrieves a user by ID, or nil.
func (s *Store) GetUser(ctx context.Context, id walking.OwnerID) (*walking.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryUser(ctx,
		"SELECT id, name, balance, created_at FROM users WHERE id = ?", id)
}

func (s *Store) queryUser(ctx context.Context, query string, args ...any) (*walking.User, error) {
	var (
		u         walking.User
		balance   string
		createdAt string
	)

	err := s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Name, &balance, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	u.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("user %s: invalid balance %q: %w", u.ID, balance, err)
	}
	u.CreatedAt = parseTimestamp(createdAt)
	return &u, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// parseTimestamp reads timestampLayout, falling back to the variable-width
// RFC 3339 text of older rows.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(timestampLayout, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// Reset clears all data (for tests and demos).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"walk_records", "users"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
