package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"partyplan/internal/models"
	"partyplan/internal/repository"
	"partyplan/internal/security"
)

// Scoring weights: a day off costs more than an ounce off, and a wrong
// sex guess costs a flat penalty. Lowest total wins.
const (
	scorePerDayOff     = 10
	scorePerOunceOff   = 1
	scoreSexMismatch   = 50
	babyPoolDateLayout = "2006-01-02"
)

// BabyPoolService owns the prediction pool lifecycle: public guess
// submission and organizer-driven reveal with scoring.
type BabyPoolService struct {
	store repository.DocumentStore
}

// NewBabyPoolService creates a new baby pool service
func NewBabyPoolService(store repository.DocumentStore) *BabyPoolService {
	return &BabyPoolService{store: store}
}

// CreateBabyPoolParams holds creation input
type CreateBabyPoolParams struct {
	Title   string
	DueDate string
}

// Create builds a new prediction pool document
func (s *BabyPoolService) Create(ctx context.Context, params CreateBabyPoolParams) (*models.BabyPool, string, int64, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, "", 0, validationErrorf("the pool needs a title")
	}
	dueDate := strings.TrimSpace(params.DueDate)
	if dueDate != "" {
		if _, err := time.Parse(babyPoolDateLayout, dueDate); err != nil {
			return nil, "", 0, validationErrorf("due date must be YYYY-MM-DD")
		}
	}

	organizerKey := security.GenerateOrganizerKey()
	keyHash, err := security.HashOrganizerKey(organizerKey)
	if err != nil {
		return nil, "", 0, err
	}

	pool := &models.BabyPool{
		ID:               security.GenerateGameID(),
		Title:            title,
		OrganizerKeyHash: keyHash,
		DueDate:          dueDate,
		Guesses:          []models.BabyGuess{},
		CreatedAt:        time.Now().UTC(),
	}

	version, err := s.save(ctx, pool, 0)
	if err != nil {
		return nil, "", 0, err
	}

	return pool, organizerKey, version, nil
}

// Get loads a pool and its current version
func (s *BabyPoolService) Get(ctx context.Context, id string) (*models.BabyPool, int64, error) {
	return s.load(ctx, id)
}

// GuessParams is one guest's prediction as submitted
type GuessParams struct {
	Name     string
	Date     string
	WeightOz int
	Sex      string
	NameIdea string
}

// SubmitGuess records a guest prediction. One guess per name; submissions
// close once the outcome is revealed.
func (s *BabyPoolService) SubmitGuess(ctx context.Context, id string, params GuessParams, expectedVersion int64) (*models.BabyPool, int64, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, 0, validationErrorf("a guess needs a name")
	}
	if _, err := time.Parse(babyPoolDateLayout, strings.TrimSpace(params.Date)); err != nil {
		return nil, 0, validationErrorf("guess date must be YYYY-MM-DD")
	}
	if params.WeightOz <= 0 {
		return nil, 0, validationErrorf("guess weight must be positive (in ounces)")
	}
	sex := strings.ToLower(strings.TrimSpace(params.Sex))
	if sex != "" && sex != "boy" && sex != "girl" {
		return nil, 0, validationErrorf(`sex guess must be "boy" or "girl"`)
	}

	pool, version, err := s.load(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if expectedVersion != 0 && expectedVersion != version {
		return nil, 0, repository.ErrConflict
	}
	if pool.Revealed {
		return nil, 0, validationErrorf("the pool is closed: the outcome has been revealed")
	}

	for _, guess := range pool.Guesses {
		if strings.EqualFold(guess.Name, name) {
			return nil, 0, validationErrorf("that name has already guessed")
		}
	}

	pool.Guesses = append(pool.Guesses, models.BabyGuess{
		ID:          uuid.New().String(),
		Name:        name,
		Date:        strings.TrimSpace(params.Date),
		WeightOz:    params.WeightOz,
		Sex:         sex,
		NameIdea:    strings.TrimSpace(params.NameIdea),
		SubmittedAt: time.Now().UTC(),
	})

	newVersion, err := s.save(ctx, pool, version)
	if err != nil {
		return nil, 0, err
	}

	return pool, newVersion, nil
}

// Reveal records the actual outcome, closes the pool, and ranks every guess
// by closeness. Revealing twice is a validation failure.
func (s *BabyPoolService) Reveal(ctx context.Context, id, organizerKey string, actual models.BabyOutcome, expectedVersion int64) (*models.BabyPool, int64, error) {
	if _, err := time.Parse(babyPoolDateLayout, strings.TrimSpace(actual.Date)); err != nil {
		return nil, 0, validationErrorf("outcome date must be YYYY-MM-DD")
	}
	if actual.WeightOz <= 0 {
		return nil, 0, validationErrorf("outcome weight must be positive (in ounces)")
	}

	pool, version, err := s.load(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	if !security.VerifyOrganizerKey(pool.OrganizerKeyHash, organizerKey) {
		return nil, 0, ErrUnauthorized
	}
	if expectedVersion != 0 && expectedVersion != version {
		return nil, 0, repository.ErrConflict
	}
	if pool.Revealed {
		return nil, 0, validationErrorf("the outcome has already been revealed")
	}

	actual.Date = strings.TrimSpace(actual.Date)
	actual.Sex = strings.ToLower(strings.TrimSpace(actual.Sex))
	pool.Actual = &actual
	pool.Revealed = true
	pool.Results = scoreGuesses(pool.Guesses, actual)

	newVersion, err := s.save(ctx, pool, version)
	if err != nil {
		return nil, 0, err
	}

	return pool, newVersion, nil
}

// scoreGuesses ranks guesses ascending by distance from the outcome
func scoreGuesses(guesses []models.BabyGuess, actual models.BabyOutcome) []models.GuessResult {
	actualDate, _ := time.Parse(babyPoolDateLayout, actual.Date)

	results := make([]models.GuessResult, 0, len(guesses))
	for _, guess := range guesses {
		score := 0

		if guessDate, err := time.Parse(babyPoolDateLayout, guess.Date); err == nil {
			daysOff := int(guessDate.Sub(actualDate).Hours() / 24)
			if daysOff < 0 {
				daysOff = -daysOff
			}
			score += daysOff * scorePerDayOff
		}

		ouncesOff := guess.WeightOz - actual.WeightOz
		if ouncesOff < 0 {
			ouncesOff = -ouncesOff
		}
		score += ouncesOff * scorePerOunceOff

		if actual.Sex != "" && guess.Sex != actual.Sex {
			score += scoreSexMismatch
		}

		results = append(results, models.GuessResult{
			GuessID: guess.ID,
			Name:    guess.Name,
			Score:   score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})

	return results
}

func (s *BabyPoolService) load(ctx context.Context, id string) (*models.BabyPool, int64, error) {
	body, version, err := s.store.Get(ctx, repository.KindBabyPool, id)
	if err != nil {
		return nil, 0, err
	}

	var pool models.BabyPool
	if err := json.Unmarshal(body, &pool); err != nil {
		return nil, 0, err
	}

	return &pool, version, nil
}

func (s *BabyPoolService) save(ctx context.Context, pool *models.BabyPool, expectedVersion int64) (int64, error) {
	body, err := json.Marshal(pool)
	if err != nil {
		return 0, err
	}

	return s.store.Put(ctx, repository.KindBabyPool, pool.ID, body, expectedVersion)
}
