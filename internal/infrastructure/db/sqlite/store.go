// Package sqlite keeps the event log and the roster in a single SQLite
// database. Writers are serialised by SQLite's own database lock.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - clock_events and workers tables
const currentSchemaVersion = 1

const defaultBusyTimeout = 5 * time.Second

// Store owns the database handle shared by EventLog and Roster.
type Store struct {
	db          *sql.DB
	busyTimeout time.Duration
	log         zerolog.Logger
}

// Open creates or opens the database at path and applies the schema.
//
// The connection is configured with WAL journaling, a busy timeout equal to
// busyTimeout and immediate transactions, so a read-modify-write cycle takes
// the write lock before it reads.
func Open(path string, busyTimeout time.Duration, log zerolog.Logger) (*Store, error) {
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	q := url.Values{}
	q.Set("_txlock", "immediate")
	q.Set("_busy_timeout", fmt.Sprint(busyTimeout.Milliseconds()))
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")

	db, err := sql.Open("sqlite3", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, busyTimeout: busyTimeout, log: log.With().Str("store", "sqlite").Logger()}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// applySchema creates tables if they don't exist. It is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// withTx runs fn inside an immediate transaction. Lock and I/O failures are
// reported as domain.ErrStorageUnavailable; errors returned by fn pass
// through unchanged.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.busyTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrStorageUnavailable, err)
	}
	observeLockWait(started)

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// storageErr wraps driver failures. Busy and locked databases are the
// expected contention failures; everything else is an I/O fault.
func storageErr(op string, err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && (se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked) {
		return fmt.Errorf("%w: %s: database is locked", domain.ErrStorageUnavailable, op)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStorageUnavailable, op, err)
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) &&
		(se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}
