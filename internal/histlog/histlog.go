// Package histlog persists emitted advisories to an append-only SQLite log.
package histlog

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/overmind-labs/sc2copilot/internal/errors"
	"github.com/overmind-labs/sc2copilot/internal/reminder"
)

// Store is a durable append-only advisory log. It implements
// reminder.Sink.
type Store struct {
	db *sql.DB
}

// Open initializes the log database at path, creating parent directories
// as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeStorageOpenFailed, "create history directory")
		}
	}

	// Pragmas in the DSN apply to every pooled connection.
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageOpenFailed, "open history database")
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS advisories (
	  id        TEXT PRIMARY KEY,
	  ts        INTEGER NOT NULL,
	  type      TEXT NOT NULL,
	  category  TEXT NOT NULL,
	  title     TEXT NOT NULL,
	  message   TEXT NOT NULL,
	  urgency   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_advisories_ts ON advisories(ts);`
	if _, err := db.Exec(schema); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStorageOpenFailed, "migrate history schema")
	}
	return nil
}

// Append writes one advisory record.
func (s *Store) Append(a reminder.Advisory) error {
	_, err := s.db.Exec(
		`INSERT INTO advisories (id, ts, type, category, title, message, urgency)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Timestamp.UnixMilli(), a.Type, a.Category, a.Title, a.Message, string(a.Urgency),
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeStorageWriteFailed, "append advisory")
	}
	return nil
}

// Recent returns up to limit advisories, oldest first.
func (s *Store) Recent(limit int) ([]reminder.Advisory, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, ts, type, category, title, message, urgency
		 FROM advisories ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageReadFailed, "query advisories")
	}
	defer rows.Close()

	var out []reminder.Advisory
	for rows.Next() {
		var a reminder.Advisory
		var ts int64
		var urgency string
		if err := rows.Scan(&a.ID, &ts, &a.Type, &a.Category, &a.Title, &a.Message, &urgency); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeStorageReadFailed, "scan advisory")
		}
		a.Timestamp = time.UnixMilli(ts).UTC()
		a.Urgency = reminder.Urgency(urgency)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageReadFailed, "iterate advisories")
	}

	// Query returned newest first; present oldest first like the
	// in-memory history does.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ reminder.Sink = (*Store)(nil)
