package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"partyplan/internal/models"
	"partyplan/internal/repository"
	"partyplan/internal/security"
	"partyplan/internal/whiteelephant"
)

// reactRetries bounds the compare-and-swap retry loop for reactions, which
// are appended without organizer involvement and may race with game actions.
const reactRetries = 3

// WhiteElephantService owns the white elephant game lifecycle: creation,
// sanitized reads, and organizer actions applied through the transition
// function with optimistic versioning.
type WhiteElephantService struct {
	store repository.DocumentStore
}

// NewWhiteElephantService creates a new white elephant service
func NewWhiteElephantService(store repository.DocumentStore) *WhiteElephantService {
	return &WhiteElephantService{store: store}
}

// CreateWhiteElephantParams holds creation input
type CreateWhiteElephantParams struct {
	PlayerNames []string
	Rules       models.Rules
}

// Create builds a new game document: participants get generated IDs, the
// turn order is shuffled exactly once, and the organizer key is returned in
// plaintext while only its hash is stored.
func (s *WhiteElephantService) Create(ctx context.Context, params CreateWhiteElephantParams) (*models.WhiteElephantGame, string, int64, error) {
	names := make([]string, 0, len(params.PlayerNames))
	for _, name := range params.PlayerNames {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	if len(names) < 2 {
		return nil, "", 0, validationErrorf("a game needs at least two players")
	}
	if params.Rules.StealLimit < 0 {
		return nil, "", 0, validationErrorf("steal limit cannot be negative")
	}

	participants := make([]models.Participant, len(names))
	turnOrder := make([]string, len(names))
	for i, name := range names {
		participants[i] = models.Participant{ID: uuid.New().String(), Name: name}
		turnOrder[i] = participants[i].ID
	}
	rand.Shuffle(len(turnOrder), func(i, j int) {
		turnOrder[i], turnOrder[j] = turnOrder[j], turnOrder[i]
	})

	organizerKey := security.GenerateOrganizerKey()
	keyHash, err := security.HashOrganizerKey(organizerKey)
	if err != nil {
		return nil, "", 0, err
	}

	game := &models.WhiteElephantGame{
		ID:               security.GenerateGameID(),
		OrganizerKeyHash: keyHash,
		Participants:     participants,
		TurnOrder:        turnOrder,
		Gifts:            []models.Gift{},
		History:          []string{},
		Rules:            params.Rules,
		CreatedAt:        time.Now().UTC(),
	}

	version, err := s.save(ctx, game, 0)
	if err != nil {
		return nil, "", 0, err
	}

	return game, organizerKey, version, nil
}

// Get loads a game document and its current version
func (s *WhiteElephantService) Get(ctx context.Context, id string) (*models.WhiteElephantGame, int64, error) {
	return s.load(ctx, id)
}

// ApplyAction authorizes the organizer, runs the transition function, and
// persists the result under the version read. A stale expectedVersion, or a
// concurrent write between read and persist, surfaces repository.ErrConflict.
// expectedVersion 0 skips the client-side staleness check.
func (s *WhiteElephantService) ApplyAction(ctx context.Context, id, organizerKey string, expectedVersion int64, action whiteelephant.Action) (*models.WhiteElephantGame, int64, error) {
	game, version, err := s.load(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	if !security.VerifyOrganizerKey(game.OrganizerKeyHash, organizerKey) {
		return nil, 0, ErrUnauthorized
	}

	if expectedVersion != 0 && expectedVersion != version {
		return nil, 0, repository.ErrConflict
	}

	next, err := whiteelephant.Transition(game, action)
	if err != nil {
		return nil, 0, err
	}

	newVersion, err := s.save(ctx, next, version)
	if err != nil {
		return nil, 0, err
	}

	return next, newVersion, nil
}

// PassThrough authorizes the organizer and returns the document unchanged.
// It backs the no-op path for unrecognized action names.
func (s *WhiteElephantService) PassThrough(ctx context.Context, id, organizerKey string) (*models.WhiteElephantGame, int64, error) {
	game, version, err := s.load(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if !security.VerifyOrganizerKey(game.OrganizerKeyHash, organizerKey) {
		return nil, 0, ErrUnauthorized
	}
	return game, version, nil
}

// React appends an ephemeral emoji reaction, keeping only the most recent
// entries. Reactions are public, so conflicts with in-flight game actions
// are resolved by retrying the read-modify-write.
func (s *WhiteElephantService) React(ctx context.Context, id, emoji string) (*models.WhiteElephantGame, int64, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, 0, validationErrorf("a reaction needs an emoji")
	}

	var lastErr error
	for attempt := 0; attempt < reactRetries; attempt++ {
		game, version, err := s.load(ctx, id)
		if err != nil {
			return nil, 0, err
		}

		game.Reactions = append(game.Reactions, models.Reaction{
			Emoji:  emoji,
			SentAt: time.Now().UTC(),
		})
		if len(game.Reactions) > models.MaxReactions {
			game.Reactions = game.Reactions[len(game.Reactions)-models.MaxReactions:]
		}

		newVersion, err := s.save(ctx, game, version)
		if err == nil {
			return game, newVersion, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, 0, err
		}
		lastErr = err
	}

	return nil, 0, lastErr
}

func (s *WhiteElephantService) load(ctx context.Context, id string) (*models.WhiteElephantGame, int64, error) {
	body, version, err := s.store.Get(ctx, repository.KindWhiteElephant, id)
	if err != nil {
		return nil, 0, err
	}

	var game models.WhiteElephantGame
	if err := json.Unmarshal(body, &game); err != nil {
		return nil, 0, err
	}

	return &game, version, nil
}

func (s *WhiteElephantService) save(ctx context.Context, game *models.WhiteElephantGame, expectedVersion int64) (int64, error) {
	body, err := json.Marshal(game)
	if err != nil {
		return 0, err
	}

	return s.store.Put(ctx, repository.KindWhiteElephant, game.ID, body, expectedVersion)
}
