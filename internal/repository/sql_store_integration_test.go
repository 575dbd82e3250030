package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"partyplan/internal/database"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewSQLStore(db)
}

func TestSQLStoreLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Get before create
	if _, _, err := store.Get(ctx, KindPotluck, "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Create
	version, err := store.Put(ctx, KindPotluck, "p1", json.RawMessage(`{"title":"v1"}`), 0)
	if err != nil {
		t.Fatalf("create Put failed: %v", err)
	}
	if version != 1 {
		t.Fatalf("create version = %d, want 1", version)
	}

	// Creating over an existing document conflicts
	if _, err := store.Put(ctx, KindPotluck, "p1", json.RawMessage(`{}`), 0); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate create: expected ErrConflict, got %v", err)
	}

	// Read back
	body, version, err := store.Get(ctx, KindPotluck, "p1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(body) != `{"title":"v1"}` || version != 1 {
		t.Fatalf("Get = %s@%d", body, version)
	}

	// Update with the right version
	version, err = store.Put(ctx, KindPotluck, "p1", json.RawMessage(`{"title":"v2"}`), 1)
	if err != nil {
		t.Fatalf("update Put failed: %v", err)
	}
	if version != 2 {
		t.Fatalf("update version = %d, want 2", version)
	}

	// Update with a stale version conflicts
	if _, err := store.Put(ctx, KindPotluck, "p1", json.RawMessage(`{}`), 1); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale update: expected ErrConflict, got %v", err)
	}

	// Updating a missing document is not-found, not conflict
	if _, err := store.Put(ctx, KindPotluck, "ghost", json.RawMessage(`{}`), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing update: expected ErrNotFound, got %v", err)
	}

	// Delete
	if err := store.Delete(ctx, KindPotluck, "p1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, KindPotluck, "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestSQLStoreListIsKindScoped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		body := json.RawMessage(fmt.Sprintf(`{"n":%d}`, i))
		if _, err := store.Put(ctx, KindWhiteElephant, id, body, 0); err != nil {
			t.Fatalf("Put %s failed: %v", id, err)
		}
	}
	if _, err := store.Put(ctx, KindBabyPool, "other", json.RawMessage(`{}`), 0); err != nil {
		t.Fatalf("Put other kind failed: %v", err)
	}

	docs, err := store.List(ctx, KindWhiteElephant)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("List returned %d documents, want 3", len(docs))
	}
	for _, doc := range docs {
		if doc.Kind != KindWhiteElephant {
			t.Errorf("List leaked a %s document", doc.Kind)
		}
		if doc.Version != 1 {
			t.Errorf("document %s version = %d, want 1", doc.ID, doc.Version)
		}
	}
}

func TestSQLStoreConcurrentWritersOneWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Put(ctx, KindWhiteElephant, "g1", json.RawMessage(`{"v":0}`), 0); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Two writers both read version 1; exactly one update may land
	first, firstErr := store.Put(ctx, KindWhiteElephant, "g1", json.RawMessage(`{"v":1}`), 1)
	_, secondErr := store.Put(ctx, KindWhiteElephant, "g1", json.RawMessage(`{"v":2}`), 1)

	if firstErr != nil {
		t.Fatalf("first writer failed: %v", firstErr)
	}
	if first != 2 {
		t.Fatalf("first writer version = %d, want 2", first)
	}
	if !errors.Is(secondErr, ErrConflict) {
		t.Fatalf("second writer: expected ErrConflict, got %v", secondErr)
	}

	body, version, err := store.Get(ctx, KindWhiteElephant, "g1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(body) != `{"v":1}` || version != 2 {
		t.Fatalf("stored state = %s@%d, want the first writer's update", body, version)
	}
}

func TestSQLStorePruneOlderThan(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Put(ctx, KindPotluck, "fresh", json.RawMessage(`{}`), 0); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Nothing is old enough yet
	pruned, err := store.PruneOlderThan(ctx, KindPotluck, time.Hour)
	if err != nil {
		t.Fatalf("PruneOlderThan failed: %v", err)
	}
	if pruned != 0 {
		t.Fatalf("pruned = %d, want 0", pruned)
	}

	// A zero age prunes everything written before now
	time.Sleep(10 * time.Millisecond)
	pruned, err = store.PruneOlderThan(ctx, KindPotluck, 0)
	if err != nil {
		t.Fatalf("PruneOlderThan failed: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("pruned = %d, want 1", pruned)
	}

	if _, _, err := store.Get(ctx, KindPotluck, "fresh"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("pruned document still readable: %v", err)
	}
}
