// Package store persists the protocol state as a single versioned snapshot
// in SQLite. Writes are last-writer-wins; a snapshot whose schema version no
// longer matches is discarded in favor of defaults.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"taming/internal/protocol"
)

// snapshotKey is the fixed row key: there is exactly one live snapshot.
const snapshotKey = "taming-protocol-state"

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    key        TEXT PRIMARY KEY,
    version    INTEGER NOT NULL,
    payload    BLOB NOT NULL,
    updated_at TEXT NOT NULL
);`

// SnapshotStore stores and retrieves the protocol state snapshot.
type SnapshotStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// Open initializes the SQLite database at the given path, creating the parent
// directory if needed.
func Open(path string, log *zap.Logger) (*SnapshotStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Debug("failed to set busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Debug("failed to set journal_mode=WAL", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		log.Debug("failed to set synchronous=NORMAL", zap.Error(err))
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SnapshotStore{db: db, log: log}, nil
}

// Save persists the state, replacing any previous snapshot.
func (s *SnapshotStore) Save(state protocol.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.db.Exec(`
INSERT INTO snapshots (key, version, payload, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
    version    = excluded.version,
    payload    = excluded.payload,
    updated_at = excluded.updated_at`,
		snapshotKey, state.Version, payload, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load returns the persisted state. A missing row, an unreadable payload or a
// schema version mismatch all yield the initial state: stale snapshots are
// never partially migrated.
func (s *SnapshotStore) Load() (protocol.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var version int
	var payload []byte
	err := s.db.QueryRow(
		"SELECT version, payload FROM snapshots WHERE key = ?", snapshotKey,
	).Scan(&version, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return protocol.InitialState(), nil
	}
	if err != nil {
		return protocol.State{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if version != protocol.SchemaVersion {
		s.log.Warn("discarding snapshot with stale schema version",
			zap.Int("stored", version),
			zap.Int("current", protocol.SchemaVersion))
		return protocol.InitialState(), nil
	}

	var state protocol.State
	if err := json.Unmarshal(payload, &state); err != nil {
		s.log.Warn("discarding unreadable snapshot", zap.Error(err))
		return protocol.InitialState(), nil
	}
	if state.Version != protocol.SchemaVersion {
		return protocol.InitialState(), nil
	}
	return state, nil
}

// Reset deletes the persisted snapshot.
func (s *SnapshotStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("DELETE FROM snapshots WHERE key = ?", snapshotKey); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
