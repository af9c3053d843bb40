// Package localstore is the on-device persistence layer: a SQLite file
// holding named slots of JSON, the terminal analogue of browser local
// storage. History lives in one slot as a {"answers": [...]} envelope;
// the session token lives in another.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/idw-coder/quizterm/internal/history"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const (
	historySlot = "quiz_history"
	tokenSlot   = "session_token"
)

// Store persists named JSON slots in a SQLite file. The zero-value
// (disabled) Store loads empty and ignores writes, so code paths that run
// without a usable data directory stay safe.
type Store struct {
	db *sql.DB
}

// Open creates a Store backed by the SQLite file at dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS slots (
		name  TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create slots table: %w", err)
	}

	return &Store{db: db}, nil
}

// Discard returns a disabled store: loads are empty, writes are no-ops.
func Discard() *Store {
	return &Store{}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// historyEnvelope is the JSON document stored in the history slot.
type historyEnvelope struct {
	Answers []history.StoredAnswer `json:"answers"`
}

// Load returns the stored answer log. A missing or corrupt slot yields an
// empty log; corruption is logged, never surfaced to the caller.
func (s *Store) Load(ctx context.Context) []history.StoredAnswer {
	if s.db == nil {
		return nil
	}

	raw, err := s.getSlot(ctx, historySlot)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Warn().Err(err).Msg("read history slot")
		}
		return nil
	}

	var env historyEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		log.Warn().Err(err).Msg("corrupt history slot, treating as empty")
		return nil
	}
	return env.Answers
}

// Save replaces the entire stored answer log. Callers pass the full
// desired history, not a delta.
func (s *Store) Save(ctx context.Context, answers []history.StoredAnswer) error {
	if s.db == nil {
		return nil
	}

	raw, err := json.Marshal(historyEnvelope{Answers: answers})
	if err != nil {
		return fmt.Errorf("encode history envelope: %w", err)
	}
	return s.putSlot(ctx, historySlot, string(raw))
}

// Clear removes the history slot.
func (s *Store) Clear(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.deleteSlot(ctx, historySlot)
}

// Token returns the persisted session token, or empty if signed out.
func (s *Store) Token(ctx context.Context) string {
	if s.db == nil {
		return ""
	}
	raw, err := s.getSlot(ctx, tokenSlot)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Warn().Err(err).Msg("read token slot")
		}
		return ""
	}
	return raw
}

// SaveToken persists the session token.
func (s *Store) SaveToken(ctx context.Context, token string) error {
	if s.db == nil {
		return nil
	}
	return s.putSlot(ctx, tokenSlot, token)
}

// ClearToken removes the session token.
func (s *Store) ClearToken(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.deleteSlot(ctx, tokenSlot)
}

func (s *Store) getSlot(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE name = ?`, name).Scan(&value)
	return value, err
}

func (s *Store) putSlot(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slots (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`, name, value)
	if err != nil {
		return fmt.Errorf("write slot %s: %w", name, err)
	}
	return nil
}

func (s *Store) deleteSlot(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", name, err)
	}
	return nil
}

// applyPragmas configures SQLite for single-user access.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the data file path in priority order:
// 1. QUIZTERM_DB environment variable
// 2. $XDG_DATA_HOME/quizterm/quizterm.db
// 3. ~/.local/share/quizterm/quizterm.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("QUIZTERM_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "quizterm", "quizterm.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
