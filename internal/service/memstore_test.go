package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"partyplan/internal/repository"
)

// memStore is an in-memory DocumentStore with the same versioning semantics
// as the real backends.
type memStore struct {
	mu   sync.Mutex
	docs map[string]map[string]memDoc
	// failPuts makes the next N Puts return ErrConflict, for exercising
	// retry paths.
	failPuts int
}

type memDoc struct {
	body      json.RawMessage
	version   int64
	updatedAt time.Time
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]map[string]memDoc)}
}

func (s *memStore) Get(ctx context.Context, kind, id string) (json.RawMessage, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[kind][id]
	if !ok {
		return nil, 0, repository.ErrNotFound
	}
	return doc.body, doc.version, nil
}

func (s *memStore) Put(ctx context.Context, kind, id string, body json.RawMessage, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failPuts > 0 {
		s.failPuts--
		return 0, repository.ErrConflict
	}

	if s.docs[kind] == nil {
		s.docs[kind] = make(map[string]memDoc)
	}

	doc, exists := s.docs[kind][id]
	if expectedVersion == 0 {
		if exists {
			return 0, repository.ErrConflict
		}
		s.docs[kind][id] = memDoc{body: body, version: 1, updatedAt: time.Now()}
		return 1, nil
	}

	if !exists {
		return 0, repository.ErrNotFound
	}
	if doc.version != expectedVersion {
		return 0, repository.ErrConflict
	}
	s.docs[kind][id] = memDoc{body: body, version: doc.version + 1, updatedAt: time.Now()}
	return doc.version + 1, nil
}

func (s *memStore) Delete(ctx context.Context, kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[kind][id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.docs[kind], id)
	return nil
}

func (s *memStore) List(ctx context.Context, kind string) ([]repository.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []repository.Document
	for id, doc := range s.docs[kind] {
		out = append(out, repository.Document{
			Kind: kind, ID: id, Body: doc.body,
			Version: doc.version, UpdatedAt: doc.updatedAt,
		})
	}
	return out, nil
}

func (s *memStore) PruneOlderThan(ctx context.Context, kind string, age time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-age)
	var pruned int64
	for id, doc := range s.docs[kind] {
		if doc.updatedAt.Before(cutoff) {
			delete(s.docs[kind], id)
			pruned++
		}
	}
	return pruned, nil
}
