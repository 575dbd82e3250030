package models

import (
	"slices"
	"time"
)

// PotluckSlot is one entry on the sign-up sheet
type PotluckSlot struct {
	ID          string `json:"id"`
	Category    string `json:"category"` // e.g. "Mains", "Desserts"
	Description string `json:"description,omitempty"`
	ClaimedBy   string `json:"claimedBy,omitempty"`
}

// Label returns a human-readable name for history entries
func (s *PotluckSlot) Label() string {
	if s.Description != "" {
		return s.Description
	}
	return s.Category
}

// Potluck is the sign-up sheet document as persisted
type Potluck struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	OrganizerKeyHash string        `json:"organizerKeyHash,omitempty"`
	EventDate        string        `json:"eventDate,omitempty"`
	Slots            []PotluckSlot `json:"slots"`
	History          []string      `json:"history,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// SlotByID looks up a slot, returning nil if absent
func (p *Potluck) SlotByID(id string) *PotluckSlot {
	for i := range p.Slots {
		if p.Slots[i].ID == id {
			return &p.Slots[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the potluck document
func (p *Potluck) Clone() *Potluck {
	clone := *p
	clone.Slots = slices.Clone(p.Slots)
	clone.History = slices.Clone(p.History)
	return &clone
}

// Sanitized returns a copy safe to return to any reader
func (p *Potluck) Sanitized() *Potluck {
	clone := p.Clone()
	clone.OrganizerKeyHash = ""
	return clone
}
