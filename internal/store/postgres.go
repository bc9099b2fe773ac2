package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"boxinventory/api/internal/inventory"
)

// SingletonID addresses the one document the application owns.
const SingletonID int64 = 1

// ErrNotFound is returned by Get when the singleton document has never been
// written. The caller seeds the default snapshot in that case.
var ErrNotFound = errors.New("document not found")

// Document is the unit of persistence and synchronization: the full snapshot
// plus its write timestamp.
type Document struct {
	ID        int64              `json:"id"`
	Data      inventory.Snapshot `json:"data"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get reads the singleton document.
func (s *PostgresStore) Get(ctx context.Context) (Document, error) {
	var (
		doc       Document
		payload   []byte
		updatedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, data, updated_at FROM app_storage WHERE id=$1`, SingletonID,
	).Scan(&doc.ID, &payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	if len(payload) == 0 {
		// Row exists but was never populated; treat like a fresh database.
		return Document{}, ErrNotFound
	}
	if err := json.Unmarshal(payload, &doc.Data); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	if updatedAt.Valid {
		doc.UpdatedAt = updatedAt.Time
	}
	return doc, nil
}

// Insert writes the document for the first time. Fails if a row already
// exists, which keeps the bootstrap seed single-flight across clients.
func (s *PostgresStore) Insert(ctx context.Context, doc Document) error {
	payload, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO app_storage (id, data, updated_at) VALUES ($1, $2, $3)`,
		doc.ID, payload, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// Replace overwrites the whole document. There is no partial patching; the
// snapshot is replaced wholesale.
func (s *PostgresStore) Replace(ctx context.Context, doc Document) error {
	payload, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE app_storage SET data=$2, updated_at=$3 WHERE id=$1`,
		doc.ID, payload, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
