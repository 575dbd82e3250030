package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Document kinds, one per party tool.
const (
	KindWhiteElephant = "white_elephant"
	KindSecretSanta   = "secret_santa"
	KindPotluck       = "potluck"
	KindBabyPool      = "baby_pool"
)

// Kinds lists every document kind known to the store.
var Kinds = []string{KindWhiteElephant, KindSecretSanta, KindPotluck, KindBabyPool}

var (
	// ErrNotFound is returned when no document exists for the given kind and id
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned when a Put's expected version does not match
	// the stored version, or when creating a document that already exists
	ErrConflict = errors.New("document version conflict")
)

// Document is a stored JSON blob with its version metadata
type Document struct {
	Kind      string          `json:"kind"`
	ID        string          `json:"id"`
	Body      json.RawMessage `json:"body"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DocumentStore persists one JSON document per game instance, with optimistic
// versioning: every successful Put increments the version, and a Put whose
// expectedVersion does not match the stored version fails with ErrConflict.
// expectedVersion 0 means "create"; creating over an existing document is a
// conflict.
type DocumentStore interface {
	Get(ctx context.Context, kind, id string) (json.RawMessage, int64, error)
	Put(ctx context.Context, kind, id string, body json.RawMessage, expectedVersion int64) (int64, error)
	Delete(ctx context.Context, kind, id string) error
	List(ctx context.Context, kind string) ([]Document, error)
	PruneOlderThan(ctx context.Context, kind string, age time.Duration) (int64, error)
}
