package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"partyplan/internal/database"
)

// SQLStore implements DocumentStore on a single documents table.
// Compare-and-swap is an UPDATE guarded by the expected version; an
// affected-row count of zero distinguishes conflict from not-found.
type SQLStore struct {
	db *database.DB
}

// NewSQLStore creates a new SQL-backed document store
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Get retrieves a document body and its current version
func (s *SQLStore) Get(ctx context.Context, kind, id string) (json.RawMessage, int64, error) {
	query := "SELECT body, version FROM documents WHERE kind = ? AND id = ?"

	var body string
	var version int64
	err := s.db.QueryRow(query, kind, id).Scan(&body, &version)
	if err == sql.ErrNoRows {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	return json.RawMessage(body), version, nil
}

// Put writes a document, enforcing the version precondition
func (s *SQLStore) Put(ctx context.Context, kind, id string, body json.RawMessage, expectedVersion int64) (int64, error) {
	now := time.Now().UTC()

	if expectedVersion == 0 {
		query := `
			INSERT INTO documents (kind, id, body, version, created_at, updated_at)
			VALUES (?, ?, ?, 1, ?, ?)
		`
		if _, err := s.db.Exec(query, kind, id, string(body), now, now); err != nil {
			// A duplicate key means the document already exists
			if _, _, getErr := s.Get(ctx, kind, id); getErr == nil {
				return 0, ErrConflict
			}
			return 0, err
		}
		return 1, nil
	}

	query := `
		UPDATE documents
		SET body = ?, version = version + 1, updated_at = ?
		WHERE kind = ? AND id = ? AND version = ?
	`
	result, err := s.db.Exec(query, string(body), now, kind, id, expectedVersion)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		if _, _, getErr := s.Get(ctx, kind, id); getErr != nil {
			return 0, ErrNotFound
		}
		return 0, ErrConflict
	}

	return expectedVersion + 1, nil
}

// Delete removes a document
func (s *SQLStore) Delete(ctx context.Context, kind, id string) error {
	query := "DELETE FROM documents WHERE kind = ? AND id = ?"

	result, err := s.db.Exec(query, kind, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// List retrieves all documents of a kind
func (s *SQLStore) List(ctx context.Context, kind string) ([]Document, error) {
	query := `
		SELECT id, body, version, updated_at
		FROM documents
		WHERE kind = ?
		ORDER BY updated_at DESC
	`

	rows, err := s.db.Query(query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var body string
		if err := rows.Scan(&doc.ID, &body, &doc.Version, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		doc.Kind = kind
		doc.Body = json.RawMessage(body)
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// PruneOlderThan deletes documents of a kind not updated within age
func (s *SQLStore) PruneOlderThan(ctx context.Context, kind string, age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age)
	query := "DELETE FROM documents WHERE kind = ? AND updated_at < ?"

	result, err := s.db.Exec(query, kind, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
