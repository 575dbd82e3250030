package handlers

import (
	"encoding/json"
	"net/http"

	"partyplan/internal/models"
	"partyplan/internal/service"
)

// PotluckHandler handles potluck sign-up sheet HTTP requests
type PotluckHandler struct {
	potlucks *service.PotluckService
}

// NewPotluckHandler creates a new potluck handler
func NewPotluckHandler(potlucks *service.PotluckService) *PotluckHandler {
	return &PotluckHandler{potlucks: potlucks}
}

type potluckResponse struct {
	Potluck *models.Potluck `json:"potluck"`
	Version int64           `json:"version"`
}

type createPotluckRequest struct {
	Title     string `json:"title"`
	EventDate string `json:"eventDate"`
	Slots     []struct {
		Category    string `json:"category"`
		Description string `json:"description"`
	} `json:"slots"`
}

type createPotluckResponse struct {
	Potluck      *models.Potluck `json:"potluck"`
	Version      int64           `json:"version"`
	OrganizerKey string          `json:"organizerKey"`
}

// Create handles POST /api/potluck
func (h *PotluckHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPotluckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestBody})
		return
	}

	params := service.CreatePotluckParams{
		Title:     req.Title,
		EventDate: req.EventDate,
	}
	for _, slot := range req.Slots {
		params.Slots = append(params.Slots, service.SlotInput{
			Category:    slot.Category,
			Description: slot.Description,
		})
	}

	potluck, organizerKey, version, err := h.potlucks.Create(r.Context(), params)
	if err != nil {
		respondWithError(w, "Failed to create potluck", err)
		return
	}

	respondJSON(w, http.StatusCreated, createPotluckResponse{
		Potluck:      potluck.Sanitized(),
		Version:      version,
		OrganizerKey: organizerKey,
	})
}

// Get handles GET /api/potluck/{id}
func (h *PotluckHandler) Get(w http.ResponseWriter, r *http.Request) {
	potluck, version, err := h.potlucks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithError(w, "Failed to load potluck", err)
		return
	}

	respondJSON(w, http.StatusOK, potluckResponse{Potluck: potluck.Sanitized(), Version: version})
}

type claimRequest struct {
	SlotID  string `json:"slotId"`
	Name    string `json:"name"`
	Version int64  `json:"version"`
}

// Claim handles POST /api/potluck/{id}/claim
func (h *PotluckHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestBody})
		return
	}

	potluck, version, err := h.potlucks.Claim(r.Context(), r.PathValue("id"), req.SlotID, req.Name, req.Version)
	if err != nil {
		respondWithError(w, "Failed to claim slot", err)
		return
	}

	respondJSON(w, http.StatusOK, potluckResponse{Potluck: potluck.Sanitized(), Version: version})
}

type unclaimRequest struct {
	SlotID       string `json:"slotId"`
	Name         string `json:"name"`
	OrganizerKey string `json:"organizerKey"`
	Version      int64  `json:"version"`
}

// Unclaim handles POST /api/potluck/{id}/unclaim
func (h *PotluckHandler) Unclaim(w http.ResponseWriter, r *http.Request) {
	var req unclaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestBody})
		return
	}

	potluck, version, err := h.potlucks.Unclaim(r.Context(), r.PathValue("id"), req.SlotID, req.Name, req.OrganizerKey, req.Version)
	if err != nil {
		respondWithError(w, "Failed to release slot", err)
		return
	}

	respondJSON(w, http.StatusOK, potluckResponse{Potluck: potluck.Sanitized(), Version: version})
}

type updateSlotsRequest struct {
	OrganizerKey string `json:"organizerKey"`
	Version      int64  `json:"version"`
	Add          []struct {
		Category    string `json:"category"`
		Description string `json:"description"`
	} `json:"add"`
	RemoveIDs []string `json:"removeIds"`
}

// UpdateSlots handles POST /api/potluck/{id}/slots
func (h *PotluckHandler) UpdateSlots(w http.ResponseWriter, r *http.Request) {
	var req updateSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestBody})
		return
	}

	var add []service.SlotInput
	for _, slot := range req.Add {
		add = append(add, service.SlotInput{
			Category:    slot.Category,
			Description: slot.Description,
		})
	}

	potluck, version, err := h.potlucks.UpdateSlots(r.Context(), r.PathValue("id"), req.OrganizerKey, req.Version, add, req.RemoveIDs)
	if err != nil {
		respondWithError(w, "Failed to update slots", err)
		return
	}

	respondJSON(w, http.StatusOK, potluckResponse{Potluck: potluck.Sanitized(), Version: version})
}
