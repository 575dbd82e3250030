package models

import (
	"maps"
	"slices"
	"time"
)

// SantaParticipant is a gift-exchange member. Email is optional; members
// without one are skipped when assignment emails go out.
type SantaParticipant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Exclusion forbids Giver from being matched to Receiver
type Exclusion struct {
	GiverID    string `json:"giverId"`
	ReceiverID string `json:"receiverId"`
}

// SecretSantaExchange is the exchange document as persisted. Assignments
// are never included in public reads; each giver learns their receiver
// through a signed reveal token.
type SecretSantaExchange struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	OrganizerKeyHash string             `json:"organizerKeyHash,omitempty"`
	Participants     []SantaParticipant `json:"participants"`
	Exclusions       []Exclusion        `json:"exclusions,omitempty"`
	Assignments      map[string]string  `json:"assignments,omitempty"` // giver ID -> receiver ID
	Budget           string             `json:"budget,omitempty"`
	ExchangeDate     string             `json:"exchangeDate,omitempty"`
	NotifiedAt       *time.Time         `json:"notifiedAt,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
}

// ParticipantByID looks up a participant, returning nil if absent
func (e *SecretSantaExchange) ParticipantByID(id string) *SantaParticipant {
	for i := range e.Participants {
		if e.Participants[i].ID == id {
			return &e.Participants[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the exchange document
func (e *SecretSantaExchange) Clone() *SecretSantaExchange {
	clone := *e
	clone.Participants = slices.Clone(e.Participants)
	clone.Exclusions = slices.Clone(e.Exclusions)
	clone.Assignments = maps.Clone(e.Assignments)
	return &clone
}

// Sanitized returns a copy safe to return to any reader: no key material,
// no assignments, and no participant emails.
func (e *SecretSantaExchange) Sanitized() *SecretSantaExchange {
	clone := e.Clone()
	clone.OrganizerKeyHash = ""
	clone.Assignments = nil
	for i := range clone.Participants {
		clone.Participants[i].Email = ""
	}
	return clone
}
