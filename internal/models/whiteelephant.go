package models

import (
	"slices"
	"time"
)

// MaxReactions caps the ephemeral reactions list on a game document
const MaxReactions = 30

// Participant is a named player, fixed at game creation
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Gift is an opened present. Gifts carry a generated identifier so steal
// counts survive description edits and duplicate descriptions.
type Gift struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	StealCount  int    `json:"stealCount"`
	HolderID    string `json:"holderId"`
}

// Rules holds the house rules fixed at game creation
type Rules struct {
	StealLimit  int  `json:"stealLimit"` // 0 = unlimited
	NoStealBack bool `json:"noStealBack"`
}

// Reaction is an ephemeral emoji event, not part of game logic
type Reaction struct {
	Emoji  string    `json:"emoji"`
	SentAt time.Time `json:"sentAt"`
}

// WhiteElephantGame is the full game document as persisted. The organizer
// key is stored as a bcrypt hash; the plaintext exists only in the create
// response.
type WhiteElephantGame struct {
	ID                 string        `json:"id"`
	OrganizerKeyHash   string        `json:"organizerKeyHash,omitempty"`
	Participants       []Participant `json:"participants"`
	TurnOrder          []string      `json:"turnOrder"` // participant IDs, shuffled once at creation
	CurrentPlayerIndex int           `json:"currentPlayerIndex"`
	Gifts              []Gift        `json:"gifts"`
	DisplacedPlayerID  string        `json:"displacedPlayerId,omitempty"`
	LastThiefID        string        `json:"lastThiefId,omitempty"`
	FinalRound         bool          `json:"finalRound"`
	IsStarted          bool          `json:"isStarted"`
	IsFinished         bool          `json:"isFinished"`
	History            []string      `json:"history"`
	Reactions          []Reaction    `json:"reactions,omitempty"`
	Rules              Rules         `json:"rules"`
	CreatedAt          time.Time     `json:"createdAt"`
}

// ParticipantByID looks up a participant, returning nil if absent
func (g *WhiteElephantGame) ParticipantByID(id string) *Participant {
	for i := range g.Participants {
		if g.Participants[i].ID == id {
			return &g.Participants[i]
		}
	}
	return nil
}

// GiftHeldBy returns the gift currently held by a participant, or nil
func (g *WhiteElephantGame) GiftHeldBy(participantID string) *Gift {
	for i := range g.Gifts {
		if g.Gifts[i].HolderID == participantID {
			return &g.Gifts[i]
		}
	}
	return nil
}

// ActivePlayerID returns the participant who must act next: the displaced
// player if a steal chain is open, otherwise the player at the turn index.
func (g *WhiteElephantGame) ActivePlayerID() string {
	if g.DisplacedPlayerID != "" {
		return g.DisplacedPlayerID
	}
	if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.TurnOrder) {
		return ""
	}
	return g.TurnOrder[g.CurrentPlayerIndex]
}

// Clone returns a deep copy of the game document
func (g *WhiteElephantGame) Clone() *WhiteElephantGame {
	clone := *g
	clone.Participants = slices.Clone(g.Participants)
	clone.TurnOrder = slices.Clone(g.TurnOrder)
	clone.Gifts = slices.Clone(g.Gifts)
	clone.History = slices.Clone(g.History)
	clone.Reactions = slices.Clone(g.Reactions)
	return &clone
}

// Sanitized returns a copy safe to return to any reader
func (g *WhiteElephantGame) Sanitized() *WhiteElephantGame {
	clone := g.Clone()
	clone.OrganizerKeyHash = ""
	return clone
}
