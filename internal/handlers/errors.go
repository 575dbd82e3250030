package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"partyplan/internal/repository"
	"partyplan/internal/security"
	"partyplan/internal/service"
	"partyplan/internal/utils"
	"partyplan/internal/whiteelephant"
)

// errorResponse is the JSON error body returned by every endpoint
type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes a JSON body with the given status
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// respondWithError maps an error to its HTTP status and JSON body,
// logging server-side detail that should not reach the client
func respondWithError(w http.ResponseWriter, logMsg string, err error) {
	status, userMsg := statusForError(err)

	if status >= 500 {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, errorResponse{Error: userMsg})
}

// statusForError maps the error taxonomy to HTTP statuses:
// NotFound 404, Unauthorized 403, Validation 400, Conflict 409, Internal 500.
func statusForError(err error) (int, string) {
	var transitionErr *whiteelephant.ValidationError
	var fieldErr utils.ValidationError

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, ErrNotFound
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, security.ErrInvalidToken):
		return http.StatusForbidden, ErrUnauthorized
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, ErrConflict
	case errors.As(err, &transitionErr):
		return http.StatusBadRequest, transitionErr.Message
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, fieldErr.Error()
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, ErrInternalServerError
	}
}
