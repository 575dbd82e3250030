package models

import (
	"slices"
	"time"
)

// BabyGuess is one guest's prediction
type BabyGuess struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Date        string    `json:"date"` // YYYY-MM-DD
	WeightOz    int       `json:"weightOz"`
	Sex         string    `json:"sex,omitempty"` // "boy", "girl" or empty
	NameIdea    string    `json:"nameIdea,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// BabyOutcome is the actual result, withheld from reads until revealed
type BabyOutcome struct {
	Date     string `json:"date"`
	WeightOz int    `json:"weightOz"`
	Sex      string `json:"sex,omitempty"`
}

// GuessResult is a scored guess; lower scores are closer
type GuessResult struct {
	GuessID string `json:"guessId"`
	Name    string `json:"name"`
	Score   int    `json:"score"`
}

// BabyPool is the prediction-pool document as persisted
type BabyPool struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	OrganizerKeyHash string        `json:"organizerKeyHash,omitempty"`
	DueDate          string        `json:"dueDate,omitempty"`
	Guesses          []BabyGuess   `json:"guesses"`
	Actual           *BabyOutcome  `json:"actual,omitempty"`
	Revealed         bool          `json:"revealed"`
	Results          []GuessResult `json:"results,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// Clone returns a deep copy of the pool document
func (b *BabyPool) Clone() *BabyPool {
	clone := *b
	clone.Guesses = slices.Clone(b.Guesses)
	clone.Results = slices.Clone(b.Results)
	if b.Actual != nil {
		actual := *b.Actual
		clone.Actual = &actual
	}
	return &clone
}

// Sanitized returns a copy safe to return to any reader; the outcome stays
// hidden until the organizer reveals it.
func (b *BabyPool) Sanitized() *BabyPool {
	clone := b.Clone()
	clone.OrganizerKeyHash = ""
	if !clone.Revealed {
		clone.Actual = nil
	}
	return clone
}
