package handlers

import (
	"encoding/json"
	"net/http"

	"partyplan/internal/models"
	"partyplan/internal/service"
	"partyplan/internal/whiteelephant"
)

// WhiteElephantHandler handles white elephant game HTTP requests
type WhiteElephantHandler struct {
	games *service.WhiteElephantService
}

// NewWhiteElephantHandler creates a new white elephant handler
func NewWhiteElephantHandler(games *service.WhiteElephantService) *WhiteElephantHandler {
	return &WhiteElephantHandler{games: games}
}

// gameResponse wraps a sanitized game document with its version so clients
// can send the version back as a write precondition
type gameResponse struct {
	Game    *models.WhiteElephantGame `json:"game"`
	Version int64                     `json:"version"`
}

type createGameRequest struct {
	PlayerNames []string     `json:"playerNames"`
	Rules       models.Rules `json:"rules"`
}

type createGameResponse struct {
	Game         *models.WhiteElephantGame `json:"game"`
	Version      int64                     `json:"version"`
	OrganizerKey string                    `json:"organizerKey"`
}

// Create handles POST /api/white-elephant
func (h *WhiteElephantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestBody})
		return
	}

	game, organizerKey, version, err := h.games.Create(r.Context(), service.CreateWhiteElephantParams{
		PlayerNames: req.PlayerNames,
		Rules:       req.Rules,
	})
	if err != nil {
		respondWithError(w, "Failed to create white elephant game", err)
		return
	}

	respondJSON(w, http.StatusCreated, createGameResponse{
		Game:         game.Sanitized(),
		Version:      version,
		OrganizerKey: organizerKey,
	})
}

// Get handles GET /api/white-elephant/{id}. Reads are public; clients poll
// this endpoint and diff history length for new events.
func (h *WhiteElephantHandler) Get(w http.ResponseWriter, r *http.Request) {
	game, version, err := h.games.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithError(w, "Failed to load white elephant game", err)
		return
	}

	respondJSON(w, http.StatusOK, gameResponse{Game: game.Sanitized(), Version: version})
}

type actionRequest struct {
	OrganizerKey string          `json:"organizerKey"`
	Version      int64           `json:"version"`
	Action       string          `json:"action"`
	Payload      json.RawMessage `json:"payload"`
}

// Action handles POST /api/white-elephant/{id}/action
func (h *WhiteElephantHandler) Action(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestBody})
		return
	}

	id := r.PathValue("id")

	action, recognized, err := whiteelephant.ParseAction(req.Action, req.Payload)
	if err != nil {
		respondWithError(w, "Failed to parse action", err)
		return
	}

	// Unrecognized actions pass through: authorize, then return the
	// document unchanged
	if !recognized {
		game, version, err := h.games.PassThrough(r.Context(), id, req.OrganizerKey)
		if err != nil {
			respondWithError(w, "Failed to load white elephant game", err)
			return
		}
		respondJSON(w, http.StatusOK, gameResponse{Game: game.Sanitized(), Version: version})
		return
	}

	game, version, err := h.games.ApplyAction(r.Context(), id, req.OrganizerKey, req.Version, action)
	if err != nil {
		respondWithError(w, "Failed to apply action", err)
		return
	}

	respondJSON(w, http.StatusOK, gameResponse{Game: game.Sanitized(), Version: version})
}

type reactRequest struct {
	Emoji string `json:"emoji"`
}

// React handles POST /api/white-elephant/{id}/react
func (h *WhiteElephantHandler) React(w http.ResponseWriter, r *http.Request) {
	var req reactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestBody})
		return
	}

	game, version, err := h.games.React(r.Context(), r.PathValue("id"), req.Emoji)
	if err != nil {
		respondWithError(w, "Failed to record reaction", err)
		return
	}

	respondJSON(w, http.StatusOK, gameResponse{Game: game.Sanitized(), Version: version})
}
