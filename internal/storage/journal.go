package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"flow_go/internal/event"
)

// TickJournal is an optional capture log of raw inbound trade events,
// backed by SQLite in WAL mode. It records feed input for inspection and
// replay; scanner state and alerts are never written here.
type TickJournal struct {
	db *sql.DB
}

// NewTickJournal opens (or creates) a journal file with WAL mode enabled.
func NewTickJournal(dbPath string) (*TickJournal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	// Metadata KV for capture session info (started-at, feed URL, ...).
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS ticks (
			id INTEGER PRIMARY KEY,
			type INTEGER NOT NULL,
			ts INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticks table: %w", err)
	}

	return &TickJournal{db: db}, nil
}

// SaveEvent appends one event to the journal.
func (j *TickJournal) SaveEvent(ctx context.Context, ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		"INSERT INTO ticks (id, type, ts, payload) VALUES (?, ?, ?, ?)",
		ev.GetSeq(), ev.GetType(), ev.GetTs(), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// UpsertMetadata saves a key-value pair describing the capture session.
func (j *TickJournal) UpsertMetadata(ctx context.Context, key, value string, ts int64) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, value, ts,
	)
	return err
}

// GetMetadata retrieves a session value ("" if absent).
func (j *TickJournal) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := j.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// GetLastSeq returns the highest sequence number captured (0 if empty).
func (j *TickJournal) GetLastSeq(ctx context.Context) (uint64, error) {
	var lastSeq sql.NullInt64
	err := j.db.QueryRowContext(ctx, "SELECT MAX(id) FROM ticks").Scan(&lastSeq)
	if err != nil {
		return 0, fmt.Errorf("failed to get last seq: %w", err)
	}
	if !lastSeq.Valid {
		return 0, nil
	}
	return uint64(lastSeq.Int64), nil
}

// LoadEvents loads captured trade events from fromSeq (inclusive) in
// sequence order.
func (j *TickJournal) LoadEvents(ctx context.Context, fromSeq uint64) ([]*event.OptionTradeEvent, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT id, type, payload FROM ticks WHERE id >= ? ORDER BY id ASC",
		fromSeq,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticks: %w", err)
	}
	defer rows.Close()

	var events []*event.OptionTradeEvent
	for rows.Next() {
		var id int64
		var evType int
		var payload []byte

		if err := rows.Scan(&id, &evType, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan tick: %w", err)
		}

		if event.Type(evType) != event.EvOptionTrade {
			continue
		}

		var ev event.OptionTradeEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tick %d: %w", id, err)
		}
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return events, nil
}

// Close closes the underlying database.
func (j *TickJournal) Close() error {
	return j.db.Close()
}
