// Package archive persists sent envelopes. Once a document has been handed
// to the e-signature provider its field geometry is immutable history; the
// archive keeps the frozen payload, its digest, and the provider reference
// for audit and for rendering read-only views of sent documents.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrDuplicateEnvelope is returned when an envelope id is archived twice.
var ErrDuplicateEnvelope = errors.New("archive: envelope already recorded")

const schema = `
CREATE TABLE IF NOT EXISTS envelopes (
	id           TEXT PRIMARY KEY,
	created_at   TEXT NOT NULL,
	digest       TEXT NOT NULL,
	provider_ref TEXT NOT NULL,
	payload      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_envelopes_created_at ON envelopes(created_at);
`

// Record is one archived envelope.
type Record struct {
	ID          string
	CreatedAt   time.Time
	Digest      string
	ProviderRef string
	Payload     string
}

// Archive is a SQLite-backed envelope archive.
type Archive struct {
	db *sql.DB
}

// Open opens (creating if necessary) the archive at the given path. Use
// ":memory:" for an ephemeral archive.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("archive: failed to open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: failed to initialize schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close releases the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Put records a sent envelope. Recording the same id twice is an error;
// envelopes are consumed exactly once.
func (a *Archive) Put(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO envelopes (id, created_at, digest, provider_ref, payload)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.Digest, rec.ProviderRef, rec.Payload)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEnvelope
		}
		return fmt.Errorf("archive: failed to record envelope %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the archived envelope with the given id.
func (a *Archive) Get(ctx context.Context, id string) (Record, bool, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id, created_at, digest, provider_ref, payload
		 FROM envelopes WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("archive: failed to read envelope %s: %w", id, err)
	}
	return rec, true, nil
}

// List returns the most recently archived envelopes, newest first.
func (a *Archive) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, created_at, digest, provider_ref, payload
		 FROM envelopes ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: failed to list envelopes: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("archive: failed to scan envelope: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var rec Record
	var createdAt string
	if err := s.Scan(&rec.ID, &createdAt, &rec.Digest, &rec.ProviderRef, &rec.Payload); err != nil {
		return Record{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, err
	}
	rec.CreatedAt = t
	return rec, nil
}

func isUniqueViolation(err error) bool {
	// go-sqlite3 wraps SQLITE_CONSTRAINT_PRIMARYKEY in its own error type;
	// matching on the message avoids importing the cgo error codes here.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
