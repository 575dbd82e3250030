package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"partyplan/internal/matching"
	"partyplan/internal/models"
	"partyplan/internal/repository"
	"partyplan/internal/security"
	"partyplan/internal/utils"
)

// SantaService owns the Secret Santa exchange lifecycle: creation with
// matching, sanitized reads, per-participant reveals, and assignment email.
type SantaService struct {
	store         repository.DocumentStore
	email         *EmailService
	appBaseURL    string
	tokenSecret   string
	tokenDuration time.Duration
}

// NewSantaService creates a new Secret Santa service
func NewSantaService(store repository.DocumentStore, email *EmailService, appBaseURL, tokenSecret string, tokenDuration time.Duration) *SantaService {
	return &SantaService{
		store:         store,
		email:         email,
		appBaseURL:    strings.TrimRight(appBaseURL, "/"),
		tokenSecret:   tokenSecret,
		tokenDuration: tokenDuration,
	}
}

// CreateSantaParams holds creation input. Exclusions reference participants
// by name and are resolved to IDs during creation.
type CreateSantaParams struct {
	Name         string
	Budget       string
	ExchangeDate string
	Participants []SantaParticipantInput
	Exclusions   [][2]string // pairs of participant names: [giver, receiver]
}

// SantaParticipantInput is one participant as submitted by the organizer
type SantaParticipantInput struct {
	Name  string
	Email string
}

// Create builds the exchange document and runs the matcher. The organizer
// key is returned in plaintext; assignments stay server-side.
func (s *SantaService) Create(ctx context.Context, params CreateSantaParams) (*models.SecretSantaExchange, string, int64, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, "", 0, validationErrorf("the exchange needs a name")
	}

	participants := make([]models.SantaParticipant, 0, len(params.Participants))
	idByName := make(map[string]string, len(params.Participants))
	for _, input := range params.Participants {
		pname := strings.TrimSpace(input.Name)
		if pname == "" {
			continue
		}
		if _, exists := idByName[pname]; exists {
			return nil, "", 0, validationErrorf(fmt.Sprintf("duplicate participant name: %s", pname))
		}
		email := strings.TrimSpace(input.Email)
		if email != "" {
			if err := utils.ValidateEmail(email); err != nil {
				return nil, "", 0, validationErrorf(err.Error())
			}
		}
		p := models.SantaParticipant{ID: uuid.New().String(), Name: pname, Email: email}
		participants = append(participants, p)
		idByName[pname] = p.ID
	}
	if len(participants) < 2 {
		return nil, "", 0, validationErrorf("an exchange needs at least two participants")
	}

	exclusions := make([]models.Exclusion, 0, len(params.Exclusions))
	excluded := make(map[string]map[string]bool)
	for _, pair := range params.Exclusions {
		giverID, ok := idByName[strings.TrimSpace(pair[0])]
		if !ok {
			return nil, "", 0, validationErrorf(fmt.Sprintf("unknown participant in exclusion: %s", pair[0]))
		}
		receiverID, ok := idByName[strings.TrimSpace(pair[1])]
		if !ok {
			return nil, "", 0, validationErrorf(fmt.Sprintf("unknown participant in exclusion: %s", pair[1]))
		}
		exclusions = append(exclusions, models.Exclusion{GiverID: giverID, ReceiverID: receiverID})
		if excluded[giverID] == nil {
			excluded[giverID] = make(map[string]bool)
		}
		excluded[giverID][receiverID] = true
	}

	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}

	assignments, err := matching.Match(ids, excluded)
	if err != nil {
		return nil, "", 0, validationErrorf("the exclusions make a full match impossible")
	}

	organizerKey := security.GenerateOrganizerKey()
	keyHash, err := security.HashOrganizerKey(organizerKey)
	if err != nil {
		return nil, "", 0, err
	}

	exchange := &models.SecretSantaExchange{
		ID:               security.GenerateGameID(),
		Name:             name,
		OrganizerKeyHash: keyHash,
		Participants:     participants,
		Exclusions:       exclusions,
		Assignments:      assignments,
		Budget:           strings.TrimSpace(params.Budget),
		ExchangeDate:     strings.TrimSpace(params.ExchangeDate),
		CreatedAt:        time.Now().UTC(),
	}

	version, err := s.save(ctx, exchange, 0)
	if err != nil {
		return nil, "", 0, err
	}

	return exchange, organizerKey, version, nil
}

// Get loads an exchange document and its current version
func (s *SantaService) Get(ctx context.Context, id string) (*models.SecretSantaExchange, int64, error) {
	return s.load(ctx, id)
}

// Reveal validates a reveal token against the exchange and returns the
// giver's name and their receiver's name. A token minted for another
// exchange or another participant never validates here.
func (s *SantaService) Reveal(ctx context.Context, id, token string) (giver, receiver string, err error) {
	exchange, _, err := s.load(ctx, id)
	if err != nil {
		return "", "", err
	}

	giverID, err := security.ParseRevealToken(s.tokenSecret, exchange.ID, token)
	if err != nil {
		return "", "", err
	}

	giverP := exchange.ParticipantByID(giverID)
	if giverP == nil {
		return "", "", security.ErrInvalidToken
	}

	receiverID, ok := exchange.Assignments[giverID]
	if !ok {
		return "", "", validationErrorf("no assignment exists for this participant")
	}
	receiverP := exchange.ParticipantByID(receiverID)
	if receiverP == nil {
		return "", "", validationErrorf("assignment references an unknown participant")
	}

	return giverP.Name, receiverP.Name, nil
}

// RevealLink builds the URL a participant follows to see their assignment
func (s *SantaService) RevealLink(exchangeID, participantID string) (string, error) {
	token, err := security.NewRevealToken(s.tokenSecret, exchangeID, participantID, s.tokenDuration)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/secret-santa/%s/reveal?token=%s", s.appBaseURL, exchangeID, url.QueryEscape(token)), nil
}

// Notify emails every participant with an address their personal reveal
// link. Participants without an email are skipped. Returns the number of
// emails sent.
func (s *SantaService) Notify(ctx context.Context, id, organizerKey string) (int, error) {
	exchange, version, err := s.load(ctx, id)
	if err != nil {
		return 0, err
	}

	if !security.VerifyOrganizerKey(exchange.OrganizerKeyHash, organizerKey) {
		return 0, ErrUnauthorized
	}

	sent := 0
	for _, p := range exchange.Participants {
		if p.Email == "" {
			continue
		}
		link, err := s.RevealLink(exchange.ID, p.ID)
		if err != nil {
			return sent, err
		}
		if err := s.email.SendAssignmentEmail(ctx, p.Email, p.Name, exchange.Name, link); err != nil {
			return sent, err
		}
		sent++
	}

	now := time.Now().UTC()
	exchange.NotifiedAt = &now
	if _, err := s.save(ctx, exchange, version); err != nil {
		return sent, err
	}

	return sent, nil
}

func (s *SantaService) load(ctx context.Context, id string) (*models.SecretSantaExchange, int64, error) {
	body, version, err := s.store.Get(ctx, repository.KindSecretSanta, id)
	if err != nil {
		return nil, 0, err
	}

	var exchange models.SecretSantaExchange
	if err := json.Unmarshal(body, &exchange); err != nil {
		return nil, 0, err
	}

	return &exchange, version, nil
}

func (s *SantaService) save(ctx context.Context, exchange *models.SecretSantaExchange, expectedVersion int64) (int64, error) {
	body, err := json.Marshal(exchange)
	if err != nil {
		return 0, err
	}

	return s.store.Put(ctx, repository.KindSecretSanta, exchange.ID, body, expectedVersion)
}
