package history

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// EventType identifies a lifecycle transition of the supervised service.
type EventType string

const (
	EventStarted        EventType = "started"
	EventStopped        EventType = "stopped"
	EventKilled         EventType = "killed"
	EventAlreadyStopped EventType = "already-stopped"
	EventStaleCleared   EventType = "stale-cleared"
	EventRestarted      EventType = "restarted"
)

// Event is one recorded lifecycle transition.
type Event struct {
	Type       EventType `json:"type"`
	PID        int       `json:"pid"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Journal appends lifecycle events to a local SQLite database and reads them
// back newest-first. Appends are best-effort from the caller's point of view;
// a failed append must never fail the command that produced the event.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal at path. ":memory:" is
// accepted for tests.
func Open(path string) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("empty journal path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	j := &Journal{db: db}
	if err := j.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) ensureSchema(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS lifecycle_history(
		occurred_at TIMESTAMP NOT NULL DEFAULT (CURRENT_TIMESTAMP),
		pid INTEGER NOT NULL,
		event TEXT NOT NULL,
		detail TEXT
	);`
	_, err := j.db.ExecContext(ctx, stmt)
	return err
}

// Append records one event.
func (j *Journal) Append(ctx context.Context, e Event) error {
	occurred := e.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO lifecycle_history(occurred_at, pid, event, detail)
		VALUES(?, ?, ?, ?);`,
		occurred.UTC(), e.PID, string(e.Type), e.Detail)
	return err
}

// Recent returns up to limit events, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT occurred_at, pid, event, detail
		FROM lifecycle_history
		ORDER BY occurred_at DESC, rowid DESC
		LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Event
	for rows.Next() {
		var (
			e      Event
			evType string
			detail sql.NullString
		)
		if err := rows.Scan(&e.OccurredAt, &e.PID, &evType, &detail); err != nil {
			return nil, err
		}
		e.Type = EventType(evType)
		e.Detail = detail.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}
