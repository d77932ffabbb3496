// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists served responses in SQLite so earlier answers can
// be listed, fetched and exported.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	defaultPath  = "data/history.db"
	defaultLimit = 20
	maxLimit     = 500

	// timeLayout is fixed-width so created_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// driverName is sqlite3 with a Unicode-aware fold(text) function. SQLite's
// lower() only folds ASCII.
const driverName = "sqlite3_history"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", strings.ToLower, true)
		},
	})
}

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("history entry not found")

// Store manages the history SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens or creates the database at cfg.Path, creating the parent
// directory and schema when missing.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open(driverName, path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS responses (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			topic TEXT,
			created_at TEXT NOT NULL,
			response TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_created_at ON responses(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores resp under a new id and returns the stored entry.
func (s *Store) Record(ctx context.Context, query string, resp types.ResponseRecord) (types.HistoryEntry, error) {
	entry := types.HistoryEntry{
		ID:        uuid.NewString(),
		Query:     query,
		CreatedAt: s.now().UTC(),
		Response:  resp,
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return types.HistoryEntry{}, fmt.Errorf("marshaling response: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO responses (id, query, topic, created_at, response) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Query, resp.Topic, entry.CreatedAt.Format(timeLayout), string(body),
	)
	if err != nil {
		return types.HistoryEntry{}, fmt.Errorf("inserting history entry: %w", err)
	}
	return entry, nil
}

// ListOptions filters Recent.
type ListOptions struct {
	// Limit caps the number of entries. Zero means 20.
	Limit int

	// Contains keeps entries whose query or topic contains this text,
	// case-insensitively.
	Contains string
}

// Recent returns entries newest first.
func (s *Store) Recent(ctx context.Context, opts ListOptions) ([]types.HistoryEntry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, query, created_at, response FROM responses`)
	if opts.Contains != "" {
		// instr matches literally, so % and _ in the filter are plain text.
		needle := strings.ToLower(opts.Contains)
		qb.WriteString(` WHERE instr(fold(query), ?) > 0 OR instr(fold(coalesce(topic, '')), ?) > 0`)
		args = append(args, needle, needle)
	}
	qb.WriteString(` ORDER BY created_at DESC, rowid DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []types.HistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Get returns the entry with id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (types.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, query, created_at, response FROM responses WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.HistoryEntry{}, ErrNotFound
	}
	return entry, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (types.HistoryEntry, error) {
	var (
		entry     types.HistoryEntry
		createdAt string
		body      string
	)
	if err := sc.Scan(&entry.ID, &entry.Query, &createdAt, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entry, err
		}
		return entry, fmt.Errorf("scanning history row: %w", err)
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return entry, fmt.Errorf("parsing created_at for %s: %w", entry.ID, err)
	}
	entry.CreatedAt = t

	if err := json.Unmarshal([]byte(body), &entry.Response); err != nil {
		return entry, fmt.Errorf("decoding response for %s: %w", entry.ID, err)
	}
	return entry, nil
}
