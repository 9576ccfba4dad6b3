package telemetry

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

const (
	kindBreadcrumb = "breadcrumb"
	kindException  = "exception"
)

// Event is one archived telemetry record.
type Event struct {
	ID         string          `json:"id"`
	RecordedAt string          `json:"recorded_at"`
	Kind       string          `json:"kind"`
	Category   string          `json:"category,omitempty"`
	Level      string          `json:"level,omitempty"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data,omitempty"`
	Tags       json.RawMessage `json:"tags,omitempty"`
}

// Store archives telemetry records in a local sqlite database so a deployment
// without an external tracker still keeps a trail. Write failures are logged
// and dropped, never surfaced to the caller.
type Store struct {
	db *sql.DB
}

// OpenStore opens the archive at dbPath, creating it if needed.
func OpenStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("telemetry db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS telemetry_events (
			id TEXT PRIMARY KEY,
			recorded_at_utc TEXT NOT NULL,
			kind TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			data TEXT,
			tags TEXT
		);`,
		"CREATE INDEX IF NOT EXISTS idx_telemetry_events_recorded ON telemetry_events(recorded_at_utc);",
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) RecordBreadcrumb(b Breadcrumb) {
	s.insert(kindBreadcrumb, b.Category, string(b.Level), b.Message, b.Data, nil)
}

func (s *Store) RecordException(err error, tags map[string]string, contexts map[string]any) {
	s.insert(kindException, "", string(LevelError), err.Error(), contexts, tags)
}

func (s *Store) insert(kind, category, level, message string, data, tags any) {
	_, err := s.db.Exec(
		"INSERT INTO telemetry_events (id, recorded_at_utc, kind, category, level, message, data, tags) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		uuid.New().String(),
		time.Now().UTC().Format(time.RFC3339Nano),
		kind,
		category,
		level,
		message,
		marshalColumn(data),
		marshalColumn(tags),
	)
	if err != nil {
		logrus.WithError(err).Warn("telemetry archive write failed")
	}
}

func marshalColumn(v any) any {
	if v == nil {
		return nil
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if s := string(buf); s != "null" && s != "{}" {
		return s
	}
	return nil
}

// Recent returns up to limit archived events, newest first.
func (s *Store) Recent(limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		"SELECT id, recorded_at_utc, kind, category, level, message, data, tags FROM telemetry_events ORDER BY recorded_at_utc DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var ev Event
		var data, tags sql.NullString
		if err := rows.Scan(&ev.ID, &ev.RecordedAt, &ev.Kind, &ev.Category, &ev.Level, &ev.Message, &data, &tags); err != nil {
			return nil, err
		}
		if data.Valid {
			ev.Data = json.RawMessage(data.String)
		}
		if tags.Valid {
			ev.Tags = json.RawMessage(tags.String)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

var _ Collector = (*Store)(nil)
