package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/msto63/dcmd/foundation/command/dispatch"
)

// SQLiteHistory implements dispatch.History on a SQLite database so that
// the history survives restarts
type SQLiteHistory struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteHistoryConfig holds configuration for the SQLite history
type SQLiteHistoryConfig struct {
	Path string
}

// DefaultHistoryConfig returns default configuration
func DefaultHistoryConfig() SQLiteHistoryConfig {
	return SQLiteHistoryConfig{
		Path: "./data/history.db",
	}
}

// NewSQLiteHistory opens (or creates) the history database
func NewSQLiteHistory(cfg SQLiteHistoryConfig) (*SQLiteHistory, error) {
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps ":memory:" databases alive and serializes writes
	db.SetMaxOpenConns(1)

	h := &SQLiteHistory{db: db}
	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return h, nil
}

func (h *SQLiteHistory) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		line TEXT NOT NULL,
		args TEXT NOT NULL,
		session TEXT,
		executed_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_session ON history(session);
	`
	_, err := h.db.Exec(schema)
	return err
}

// Append stores one entry
func (h *SQLiteHistory) Append(ctx context.Context, e dispatch.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e.ID == "" {
		e.ID = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	args, err := json.Marshal(e.Args)
	if err != nil {
		return fmt.Errorf("failed to encode args: %w", err)
	}

	_, err = h.db.ExecContext(ctx,
		`INSERT INTO history (id, line, args, session, executed_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Line, string(args), e.Session, e.At.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// Entries returns all entries oldest first
func (h *SQLiteHistory) Entries(ctx context.Context) ([]dispatch.Entry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rows, err := h.db.QueryContext(ctx,
		`SELECT id, line, args, session, executed_at FROM history ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []dispatch.Entry
	for rows.Next() {
		var (
			e       dispatch.Entry
			args    string
			session sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Line, &args, &session, &e.At); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if err := json.Unmarshal([]byte(args), &e.Args); err != nil {
			return nil, fmt.Errorf("failed to decode args of %s: %w", e.ID, err)
		}
		e.Session = session.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes every entry
func (h *SQLiteHistory) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.db.ExecContext(ctx, `DELETE FROM history`)
	return err
}

// Prune deletes entries older than the given age and returns how many were
// removed
func (h *SQLiteHistory) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()
	result, err := h.db.ExecContext(ctx, `DELETE FROM history WHERE executed_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Close closes the database
func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}
