package security

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// GenerateGameID creates a new opaque identifier for a game document
func GenerateGameID() string {
	return uuid.New().String()
}

// GenerateOrganizerKey creates the secret credential issued to the organizer
// at creation time. Only its bcrypt hash is stored.
func GenerateOrganizerKey() string {
	return uuid.New().String()
}

// HashOrganizerKey returns the bcrypt hash stored in the game document
func HashOrganizerKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyOrganizerKey reports whether the presented key matches the stored hash
func VerifyOrganizerKey(hash, key string) bool {
	if hash == "" || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
