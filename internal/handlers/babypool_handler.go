package handlers

import (
	"encoding/json"
	"net/http"

	"partyplan/internal/models"
	"partyplan/internal/service"
)

// BabyPoolHandler handles baby pool HTTP requests
type BabyPoolHandler struct {
	pools *service.BabyPoolService
}

// NewBabyPoolHandler creates a new baby pool handler
func NewBabyPoolHandler(pools *service.BabyPoolService) *BabyPoolHandler {
	return &BabyPoolHandler{pools: pools}
}

type babyPoolResponse struct {
	Pool    *models.BabyPool `json:"pool"`
	Version int64            `json:"version"`
}

type createBabyPoolRequest struct {
	Title   string `json:"title"`
	DueDate string `json:"dueDate"`
}

type createBabyPoolResponse struct {
	Pool         *models.BabyPool `json:"pool"`
	Version      int64            `json:"version"`
	OrganizerKey string           `json:"organizerKey"`
}

// Create handles POST /api/baby-pool
func (h *BabyPoolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBabyPoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestBody})
		return
	}

	pool, organizerKey, version, err := h.pools.Create(r.Context(), service.CreateBabyPoolParams{
		Title:   req.Title,
		DueDate: req.DueDate,
	})
	if err != nil {
		respondWithError(w, "Failed to create baby pool", err)
		return
	}

	respondJSON(w, http.StatusCreated, createBabyPoolResponse{
		Pool:         pool.Sanitized(),
		Version:      version,
		OrganizerKey: organizerKey,
	})
}

// Get handles GET /api/baby-pool/{id}
func (h *BabyPoolHandler) Get(w http.ResponseWriter, r *http.Request) {
	pool, version, err := h.pools.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithError(w, "Failed to load baby pool", err)
		return
	}

	respondJSON(w, http.StatusOK, babyPoolResponse{Pool: pool.Sanitized(), Version: version})
}

type guessRequest struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	WeightOz int    `json:"weightOz"`
	Sex      string `json:"sex"`
	NameIdea string `json:"nameIdea"`
	Version  int64  `json:"version"`
}

// Guess handles POST /api/baby-pool/{id}/guess
func (h *BabyPoolHandler) Guess(w http.ResponseWriter, r *http.Request) {
	var req guessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestBody})
		return
	}

	pool, version, err := h.pools.SubmitGuess(r.Context(), r.PathValue("id"), service.GuessParams{
		Name:     req.Name,
		Date:     req.Date,
		WeightOz: req.WeightOz,
		Sex:      req.Sex,
		NameIdea: req.NameIdea,
	}, req.Version)
	if err != nil {
		respondWithError(w, "Failed to submit guess", err)
		return
	}

	respondJSON(w, http.StatusOK, babyPoolResponse{Pool: pool.Sanitized(), Version: version})
}

type revealPoolRequest struct {
	OrganizerKey string             `json:"organizerKey"`
	Version      int64              `json:"version"`
	Actual       models.BabyOutcome `json:"actual"`
}

// Reveal handles POST /api/baby-pool/{id}/reveal
func (h *BabyPoolHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	var req revealPoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestBody})
		return
	}

	pool, version, err := h.pools.Reveal(r.Context(), r.PathValue("id"), req.OrganizerKey, req.Actual, req.Version)
	if err != nil {
		respondWithError(w, "Failed to reveal outcome", err)
		return
	}

	respondJSON(w, http.StatusOK, babyPoolResponse{Pool: pool.Sanitized(), Version: version})
}
