package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"partyplan/internal/repository"
	"partyplan/internal/service"
)

// fakeStore is a minimal in-memory DocumentStore for handler tests
type fakeStore struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage
	vers map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs: make(map[string]json.RawMessage),
		vers: make(map[string]int64),
	}
}

func (s *fakeStore) key(kind, id string) string { return kind + "/" + id }

func (s *fakeStore) Get(ctx context.Context, kind, id string) (json.RawMessage, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.key(kind, id)
	body, ok := s.docs[k]
	if !ok {
		return nil, 0, repository.ErrNotFound
	}
	return body, s.vers[k], nil
}

func (s *fakeStore) Put(ctx context.Context, kind, id string, body json.RawMessage, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.key(kind, id)
	current, exists := s.vers[k]
	if expectedVersion == 0 {
		if exists {
			return 0, repository.ErrConflict
		}
	} else {
		if !exists {
			return 0, repository.ErrNotFound
		}
		if current != expectedVersion {
			return 0, repository.ErrConflict
		}
	}
	s.docs[k] = body
	s.vers[k] = current + 1
	return current + 1, nil
}

func (s *fakeStore) Delete(ctx context.Context, kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.key(kind, id)
	if _, ok := s.docs[k]; !ok {
		return repository.ErrNotFound
	}
	delete(s.docs, k)
	delete(s.vers, k)
	return nil
}

func (s *fakeStore) List(ctx context.Context, kind string) ([]repository.Document, error) {
	return nil, nil
}

func (s *fakeStore) PruneOlderThan(ctx context.Context, kind string, age time.Duration) (int64, error) {
	return 0, nil
}

func newWhiteElephantMux() *http.ServeMux {
	handler := NewWhiteElephantHandler(service.NewWhiteElephantService(newFakeStore()))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/white-elephant", handler.Create)
	mux.HandleFunc("GET /api/white-elephant/{id}", handler.Get)
	mux.HandleFunc("POST /api/white-elephant/{id}/action", handler.Action)
	mux.HandleFunc("POST /api/white-elephant/{id}/react", handler.React)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func createGame(t *testing.T, mux *http.ServeMux) (id, organizerKey string, version int64) {
	t.Helper()

	rec := doJSON(t, mux, http.MethodPost, "/api/white-elephant", map[string]interface{}{
		"playerNames": []string{"Alice", "Bob", "Carol"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		Game struct {
			ID               string `json:"id"`
			OrganizerKeyHash string `json:"organizerKeyHash"`
		} `json:"game"`
		Version      int64  `json:"version"`
		OrganizerKey string `json:"organizerKey"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if resp.OrganizerKey == "" {
		t.Fatal("create response missing the organizer key")
	}
	if resp.Game.OrganizerKeyHash != "" {
		t.Fatal("create response leaked the key hash")
	}
	return resp.Game.ID, resp.OrganizerKey, resp.Version
}

func TestCreateAndGetGame(t *testing.T) {
	mux := newWhiteElephantMux()
	id, _, _ := createGame(t, mux)

	rec := doJSON(t, mux, http.MethodGet, "/api/white-elephant/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d, body = %s", rec.Code, rec.Body)
	}
	if strings.Contains(rec.Body.String(), "organizerKeyHash") {
		t.Error("public read leaked the key hash")
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/white-elephant/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", rec.Code)
	}
}

func TestCreateGameRejectsBadInput(t *testing.T) {
	mux := newWhiteElephantMux()

	rec := doJSON(t, mux, http.MethodPost, "/api/white-elephant", map[string]interface{}{
		"playerNames": []string{"Solo"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("one player: status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/white-elephant", strings.NewReader("{not json"))
	rec2 := httptest.NewRecorder()
	mux.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", rec2.Code)
	}
}

func TestActionEndpoint(t *testing.T) {
	mux := newWhiteElephantMux()
	id, key, version := createGame(t, mux)
	actionPath := fmt.Sprintf("/api/white-elephant/%s/action", id)

	// Wrong key
	rec := doJSON(t, mux, http.MethodPost, actionPath, map[string]interface{}{
		"organizerKey": "wrong", "action": "start_game",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong key: status = %d, want 403", rec.Code)
	}

	// Stale version
	rec = doJSON(t, mux, http.MethodPost, actionPath, map[string]interface{}{
		"organizerKey": key, "version": version + 9, "action": "start_game",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("stale version: status = %d, want 409", rec.Code)
	}

	// Valid action
	rec = doJSON(t, mux, http.MethodPost, actionPath, map[string]interface{}{
		"organizerKey": key, "version": version, "action": "start_game",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("start_game: status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp struct {
		Game struct {
			IsStarted bool `json:"isStarted"`
		} `json:"game"`
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode action response: %v", err)
	}
	if !resp.Game.IsStarted {
		t.Error("start_game did not start the game")
	}
	if resp.Version != version+1 {
		t.Errorf("version = %d, want %d", resp.Version, version+1)
	}

	// Unrecognized actions are authorized no-ops
	rec = doJSON(t, mux, http.MethodPost, actionPath, map[string]interface{}{
		"organizerKey": key, "action": "moonwalk",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("unknown action: status = %d, want 200", rec.Code)
	}

	// An invalid transition is a 400 with the rejection message
	rec = doJSON(t, mux, http.MethodPost, actionPath, map[string]interface{}{
		"organizerKey": key, "action": "log_steal",
		"payload": map[string]string{"victimId": "nobody"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad steal: status = %d, want 400", rec.Code)
	}
}

func TestReactEndpoint(t *testing.T) {
	mux := newWhiteElephantMux()
	id, _, _ := createGame(t, mux)

	// Reactions need no organizer key
	rec := doJSON(t, mux, http.MethodPost, fmt.Sprintf("/api/white-elephant/%s/react", id),
		map[string]string{"emoji": "🎉"})
	if rec.Code != http.StatusOK {
		t.Fatalf("react: status = %d, body = %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "🎉") {
		t.Error("reaction missing from the response")
	}
}
