// Package history persists one row per changed poll cycle so past spend can
// be inspected after the dashboard exits. The store is best effort: callers
// log failures and keep polling.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// timeLayout keeps every fractional digit so the textual ORDER BY on
// recorded_at stays chronological. RFC3339Nano trims trailing zeros and
// breaks that within a second.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Snapshot is one persisted poll-cycle result.
type Snapshot struct {
	RecordedAt               time.Time
	SessionDir               string
	InputTokens              int64
	OutputTokens             int64
	CacheReadInputTokens     int64
	CacheCreationInputTokens int64
	CostUSD                  float64
}

func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: creating DB dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("history: opening DB: %w", err)
	}

	store := New(db)
	if err := store.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS poll_snapshots (
			recorded_at TEXT NOT NULL,
			session_dir TEXT NOT NULL,
			input_tokens INTEGER NOT NULL,
			output_tokens INTEGER NOT NULL,
			cache_read_tokens INTEGER NOT NULL,
			cache_creation_tokens INTEGER NOT NULL,
			cost_usd REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_poll_snapshots_recorded_at ON poll_snapshots(recorded_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("history: init schema: %w", err)
		}
	}
	return nil
}

// Append records one changed poll cycle.
func (s *Store) Append(ctx context.Context, snap Snapshot) error {
	recordedAt := snap.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO poll_snapshots
			(recorded_at, session_dir, input_tokens, output_tokens, cache_read_tokens, cache_creation_tokens, cost_usd)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		recordedAt.UTC().Format(timeLayout),
		snap.SessionDir,
		snap.InputTokens,
		snap.OutputTokens,
		snap.CacheReadInputTokens,
		snap.CacheCreationInputTokens,
		snap.CostUSD,
	)
	if err != nil {
		return fmt.Errorf("history: appending snapshot: %w", err)
	}
	return nil
}

// Recent returns up to limit snapshots, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT recorded_at, session_dir, input_tokens, output_tokens, cache_read_tokens, cache_creation_tokens, cost_usd
		 FROM poll_snapshots ORDER BY recorded_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: querying snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			snap Snapshot
			ts   string
		)
		if err := rows.Scan(&ts, &snap.SessionDir, &snap.InputTokens, &snap.OutputTokens,
			&snap.CacheReadInputTokens, &snap.CacheCreationInputTokens, &snap.CostUSD); err != nil {
			return nil, fmt.Errorf("history: scanning row: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			snap.RecordedAt = parsed
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
