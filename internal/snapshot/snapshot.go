// Package snapshot persists the last successfully fetched copy of each
// collection in a local SQLite database. At startup views restore their
// snapshot so the user sees stale-but-present data while the first fetch
// is in flight, and keeps seeing it when the backend is unreachable. The
// backend stays authoritative: a snapshot is never merged, only replaced
// by the next successful fetch.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Collection names for the snapshotted record lists.
const (
	CollectionPerformances  = "monthly_performances"
	CollectionCredits       = "monthly_advance_credits"
	CollectionNotifications = "notifications"
	CollectionHistories     = "histories"
)

// ErrNoSnapshot is returned by Load when a collection has never been
// snapshotted.
var ErrNoSnapshot = errors.New("no snapshot for collection")

// Store is the snapshot database.
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the snapshot database at dbPath, enables WAL
// mode, and runs any pending schema migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *Store) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Save stores records as the snapshot for collection, replacing any
// previous snapshot wholesale.
func (s *Store) Save(ctx context.Context, collection string, records interface{}) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling snapshot for %s: %w", collection, err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO snapshots (collection, payload, fetched_at) VALUES (?, ?, ?)",
		collection, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot for %s: %w", collection, err)
	}
	return nil
}

// Load unmarshals the snapshot for collection into out and returns when
// it was fetched. Returns ErrNoSnapshot when the collection has never
// been saved.
func (s *Store) Load(ctx context.Context, collection string, out interface{}) (time.Time, error) {
	var row struct {
		Payload   string    `db:"payload"`
		FetchedAt time.Time `db:"fetched_at"`
	}
	err := s.db.GetContext(ctx, &row,
		"SELECT payload, fetched_at FROM snapshots WHERE collection = ?", collection)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("loading snapshot for %s: %w", collection, err)
	}

	if err := json.Unmarshal([]byte(row.Payload), out); err != nil {
		return time.Time{}, fmt.Errorf("unmarshaling snapshot for %s: %w", collection, err)
	}
	return row.FetchedAt, nil
}

// Delete removes the snapshot for collection, if any. Used at sign-out so
// the next user does not see the previous user's data.
func (s *Store) Delete(ctx context.Context, collection string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM snapshots WHERE collection = ?", collection)
	if err != nil {
		return fmt.Errorf("deleting snapshot for %s: %w", collection, err)
	}
	return nil
}

// DeleteAll removes every snapshot.
func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM snapshots"); err != nil {
		return fmt.Errorf("deleting snapshots: %w", err)
	}
	return nil
}

// ClientID returns the stable identifier for this installation, creating
// and persisting one on first use. The gateway sends it with every
// request so backend logs can correlate a client across sessions.
func (s *Store) ClientID(ctx context.Context) (string, error) {
	var id string
	err := s.db.GetContext(ctx, &id, "SELECT value FROM meta WHERE key = 'client_id'")
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("reading client id: %w", err)
	}

	id = uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO meta (key, value) VALUES ('client_id', ?)", id)
	if err != nil {
		return "", fmt.Errorf("storing client id: %w", err)
	}
	return id, nil
}
