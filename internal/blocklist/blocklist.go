// Package blocklist persists the title IDs of games whose logs are not
// analysed.
package blocklist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrInvalidTitleID is returned for anything other than 16 hex digits.
var ErrInvalidTitleID = errors.New("title ID must be 16 hexadecimal digits")

var titleIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{16}$`)

// Entry is one blocked title.
type Entry struct {
	TitleID string    `json:"title_id" yaml:"title_id"`
	Note    string    `json:"note,omitempty" yaml:"note,omitempty"`
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
}

// Store wraps the SQLite blocklist database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NormalizeTitleID validates tid and returns its canonical lower-case form.
func NormalizeTitleID(tid string) (string, error) {
	tid = strings.TrimSpace(tid)
	if !titleIDPattern.MatchString(tid) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTitleID, tid)
	}
	return strings.ToLower(tid), nil
}

// Open opens or creates the blocklist database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating blocklist directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening blocklist: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS blocked_titles (
		title_id TEXT PRIMARY KEY,
		note TEXT NOT NULL DEFAULT '',
		added_at TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("blocklist opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add blocks tid. It reports false when the title was already blocked, in
// which case the stored note is left unchanged.
func (s *Store) Add(ctx context.Context, tid, note string) (bool, error) {
	tid, err := NormalizeTitleID(tid)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO blocked_titles (title_id, note, added_at)
		VALUES (?, ?, ?)
		ON CONFLICT(title_id) DO NOTHING
	`, tid, strings.TrimSpace(note), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("blocking %s: %w", tid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		s.logger.Info("title blocked", "title_id", tid)
	}
	return n > 0, nil
}

// Remove unblocks tid. It reports false when the title was not blocked.
func (s *Store) Remove(ctx context.Context, tid string) (bool, error) {
	tid, err := NormalizeTitleID(tid)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM blocked_titles WHERE title_id = ?`, tid)
	if err != nil {
		return false, fmt.Errorf("unblocking %s: %w", tid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		s.logger.Info("title unblocked", "title_id", tid)
	}
	return n > 0, nil
}

// Contains reports whether tid is blocked. Malformed IDs are never blocked.
func (s *Store) Contains(ctx context.Context, tid string) (bool, error) {
	tid, err := NormalizeTitleID(tid)
	if err != nil {
		return false, nil
	}
	var one int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM blocked_titles WHERE title_id = ?`, tid).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up %s: %w", tid, err)
	}
	return true, nil
}

// List returns every blocked title, oldest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title_id, note, added_at
		FROM blocked_titles
		ORDER BY added_at, title_id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing blocklist: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var added string
		if err := rows.Scan(&e.TitleID, &e.Note, &added); err != nil {
			return nil, err
		}
		e.AddedAt, _ = time.Parse(time.RFC3339, added)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Checker adapts the store to a synchronous lookup for the analyzer.
// Lookup failures are logged and treated as not blocked.
func (s *Store) Checker(ctx context.Context) func(titleID string) bool {
	return func(titleID string) bool {
		blocked, err := s.Contains(ctx, titleID)
		if err != nil {
			s.logger.Error("blocklist lookup failed", "title_id", titleID, "error", err)
			return false
		}
		return blocked
	}
}
