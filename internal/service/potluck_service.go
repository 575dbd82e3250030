package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"partyplan/internal/models"
	"partyplan/internal/repository"
	"partyplan/internal/security"
)

// PotluckService owns the sign-up sheet lifecycle. Claims are public;
// slot management requires the organizer key. All writes use the
// document version as a precondition so two guests cannot silently
// claim the same slot.
type PotluckService struct {
	store repository.DocumentStore
}

// NewPotluckService creates a new potluck service
func NewPotluckService(store repository.DocumentStore) *PotluckService {
	return &PotluckService{store: store}
}

// CreatePotluckParams holds creation input
type CreatePotluckParams struct {
	Title     string
	EventDate string
	Slots     []SlotInput
}

// SlotInput is one sign-up slot as submitted by the organizer
type SlotInput struct {
	Category    string
	Description string
}

// Create builds a new sign-up sheet document
func (s *PotluckService) Create(ctx context.Context, params CreatePotluckParams) (*models.Potluck, string, int64, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, "", 0, validationErrorf("the potluck needs a title")
	}
	if len(params.Slots) == 0 {
		return nil, "", 0, validationErrorf("the potluck needs at least one slot")
	}

	slots := make([]models.PotluckSlot, 0, len(params.Slots))
	for _, input := range params.Slots {
		category := strings.TrimSpace(input.Category)
		if category == "" {
			return nil, "", 0, validationErrorf("every slot needs a category")
		}
		slots = append(slots, models.PotluckSlot{
			ID:          uuid.New().String(),
			Category:    category,
			Description: strings.TrimSpace(input.Description),
		})
	}

	organizerKey := security.GenerateOrganizerKey()
	keyHash, err := security.HashOrganizerKey(organizerKey)
	if err != nil {
		return nil, "", 0, err
	}

	potluck := &models.Potluck{
		ID:               security.GenerateGameID(),
		Title:            title,
		OrganizerKeyHash: keyHash,
		EventDate:        strings.TrimSpace(params.EventDate),
		Slots:            slots,
		History:          []string{},
		CreatedAt:        time.Now().UTC(),
	}

	version, err := s.save(ctx, potluck, 0)
	if err != nil {
		return nil, "", 0, err
	}

	return potluck, organizerKey, version, nil
}

// Get loads a sign-up sheet and its current version
func (s *PotluckService) Get(ctx context.Context, id string) (*models.Potluck, int64, error) {
	return s.load(ctx, id)
}

// Claim marks a slot as taken by the named guest. Claiming an already
// claimed slot is a conflict, not a validation failure, so the client can
// refresh and retry.
func (s *PotluckService) Claim(ctx context.Context, id, slotID, guestName string, expectedVersion int64) (*models.Potluck, int64, error) {
	guestName = strings.TrimSpace(guestName)
	if guestName == "" {
		return nil, 0, validationErrorf("a claim needs a name")
	}

	potluck, version, err := s.load(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if expectedVersion != 0 && expectedVersion != version {
		return nil, 0, repository.ErrConflict
	}

	slot := potluck.SlotByID(slotID)
	if slot == nil {
		return nil, 0, validationErrorf("unknown slot")
	}
	if slot.ClaimedBy != "" {
		return nil, 0, repository.ErrConflict
	}

	slot.ClaimedBy = guestName
	potluck.History = append(potluck.History, fmt.Sprintf("%s is bringing %s!", guestName, slot.Label()))

	newVersion, err := s.save(ctx, potluck, version)
	if err != nil {
		return nil, 0, err
	}

	return potluck, newVersion, nil
}

// Unclaim frees a slot. Either the claiming guest (by matching name) or the
// organizer (by key) may release a claim.
func (s *PotluckService) Unclaim(ctx context.Context, id, slotID, guestName, organizerKey string, expectedVersion int64) (*models.Potluck, int64, error) {
	potluck, version, err := s.load(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if expectedVersion != 0 && expectedVersion != version {
		return nil, 0, repository.ErrConflict
	}

	slot := potluck.SlotByID(slotID)
	if slot == nil {
		return nil, 0, validationErrorf("unknown slot")
	}
	if slot.ClaimedBy == "" {
		return potluck, version, nil
	}

	isOrganizer := security.VerifyOrganizerKey(potluck.OrganizerKeyHash, organizerKey)
	if !isOrganizer && !strings.EqualFold(strings.TrimSpace(guestName), slot.ClaimedBy) {
		return nil, 0, ErrUnauthorized
	}

	released := slot.ClaimedBy
	slot.ClaimedBy = ""
	potluck.History = append(potluck.History, fmt.Sprintf("%s is no longer bringing %s.", released, slot.Label()))

	newVersion, err := s.save(ctx, potluck, version)
	if err != nil {
		return nil, 0, err
	}

	return potluck, newVersion, nil
}

// UpdateSlots adds and removes slots; organizer only. Claimed slots cannot
// be removed.
func (s *PotluckService) UpdateSlots(ctx context.Context, id, organizerKey string, expectedVersion int64, add []SlotInput, removeIDs []string) (*models.Potluck, int64, error) {
	potluck, version, err := s.load(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	if !security.VerifyOrganizerKey(potluck.OrganizerKeyHash, organizerKey) {
		return nil, 0, ErrUnauthorized
	}
	if expectedVersion != 0 && expectedVersion != version {
		return nil, 0, repository.ErrConflict
	}

	for _, removeID := range removeIDs {
		slot := potluck.SlotByID(removeID)
		if slot == nil {
			return nil, 0, validationErrorf("unknown slot")
		}
		if slot.ClaimedBy != "" {
			return nil, 0, validationErrorf(fmt.Sprintf("cannot remove a claimed slot (%s)", slot.Label()))
		}
	}

	kept := potluck.Slots[:0]
	for _, slot := range potluck.Slots {
		remove := false
		for _, removeID := range removeIDs {
			if slot.ID == removeID {
				remove = true
				break
			}
		}
		if !remove {
			kept = append(kept, slot)
		}
	}
	potluck.Slots = kept

	for _, input := range add {
		category := strings.TrimSpace(input.Category)
		if category == "" {
			return nil, 0, validationErrorf("every slot needs a category")
		}
		potluck.Slots = append(potluck.Slots, models.PotluckSlot{
			ID:          uuid.New().String(),
			Category:    category,
			Description: strings.TrimSpace(input.Description),
		})
	}

	newVersion, err := s.save(ctx, potluck, version)
	if err != nil {
		return nil, 0, err
	}

	return potluck, newVersion, nil
}

func (s *PotluckService) load(ctx context.Context, id string) (*models.Potluck, int64, error) {
	body, version, err := s.store.Get(ctx, repository.KindPotluck, id)
	if err != nil {
		return nil, 0, err
	}

	var potluck models.Potluck
	if err := json.Unmarshal(body, &potluck); err != nil {
		return nil, 0, err
	}

	return &potluck, version, nil
}

func (s *PotluckService) save(ctx context.Context, potluck *models.Potluck, expectedVersion int64) (int64, error) {
	body, err := json.Marshal(potluck)
	if err != nil {
		return 0, err
	}

	return s.store.Put(ctx, repository.KindPotluck, potluck.ID, body, expectedVersion)
}
