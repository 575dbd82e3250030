package handlers

const (
	ErrInvalidRequestBody  = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrNotFound            = "Not found"
	ErrConflict            = "Conflict: the game changed underneath you, refresh and retry"
	ErrInternalServerError = "Internal server error"
)
