package handlers

import (
	"encoding/json"
	"net/http"

	"partyplan/internal/models"
	"partyplan/internal/service"
)

// SantaHandler handles Secret Santa HTTP requests
type SantaHandler struct {
	exchanges *service.SantaService
}

// NewSantaHandler creates a new Secret Santa handler
func NewSantaHandler(exchanges *service.SantaService) *SantaHandler {
	return &SantaHandler{exchanges: exchanges}
}

type createSantaRequest struct {
	Name         string `json:"name"`
	Budget       string `json:"budget"`
	ExchangeDate string `json:"exchangeDate"`
	Participants []struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"participants"`
	Exclusions [][2]string `json:"exclusions"`
}

type createSantaResponse struct {
	Exchange     *models.SecretSantaExchange `json:"exchange"`
	Version      int64                       `json:"version"`
	OrganizerKey string                      `json:"organizerKey"`
}

type santaResponse struct {
	Exchange *models.SecretSantaExchange `json:"exchange"`
	Version  int64                       `json:"version"`
}

// Create handles POST /api/secret-santa
func (h *SantaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSantaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestBody})
		return
	}

	params := service.CreateSantaParams{
		Name:         req.Name,
		Budget:       req.Budget,
		ExchangeDate: req.ExchangeDate,
		Exclusions:   req.Exclusions,
	}
	for _, p := range req.Participants {
		params.Participants = append(params.Participants, service.SantaParticipantInput{
			Name:  p.Name,
			Email: p.Email,
		})
	}

	exchange, organizerKey, version, err := h.exchanges.Create(r.Context(), params)
	if err != nil {
		respondWithError(w, "Failed to create secret santa exchange", err)
		return
	}

	respondJSON(w, http.StatusCreated, createSantaResponse{
		Exchange:     exchange.Sanitized(),
		Version:      version,
		OrganizerKey: organizerKey,
	})
}

// Get handles GET /api/secret-santa/{id}
func (h *SantaHandler) Get(w http.ResponseWriter, r *http.Request) {
	exchange, version, err := h.exchanges.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithError(w, "Failed to load secret santa exchange", err)
		return
	}

	respondJSON(w, http.StatusOK, santaResponse{Exchange: exchange.Sanitized(), Version: version})
}

type revealResponse struct {
	Giver    string `json:"giver"`
	Receiver string `json:"receiver"`
}

// Reveal handles GET /api/secret-santa/{id}/reveal?token=...
func (h *SantaHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing reveal token"})
		return
	}

	giver, receiver, err := h.exchanges.Reveal(r.Context(), r.PathValue("id"), token)
	if err != nil {
		respondWithError(w, "Failed to reveal assignment", err)
		return
	}

	respondJSON(w, http.StatusOK, revealResponse{Giver: giver, Receiver: receiver})
}

type notifyRequest struct {
	OrganizerKey string `json:"organizerKey"`
}

type notifyResponse struct {
	EmailsSent int `json:"emailsSent"`
}

// Notify handles POST /api/secret-santa/{id}/notify
func (h *SantaHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestBody})
		return
	}

	sent, err := h.exchanges.Notify(r.Context(), r.PathValue("id"), req.OrganizerKey)
	if err != nil {
		respondWithError(w, "Failed to send assignment emails", err)
		return
	}

	respondJSON(w, http.StatusOK, notifyResponse{EmailsSent: sent})
}
