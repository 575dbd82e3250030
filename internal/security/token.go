package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature, audience,
// or expiry checks
var ErrInvalidToken = errors.New("invalid reveal token")

// revealClaims binds a reveal token to one giver in one exchange
type revealClaims struct {
	jwt.RegisteredClaims
}

// NewRevealToken signs a token that lets one participant see their own
// Secret Santa assignment. Subject is the giver's participant ID; audience
// is the exchange ID.
func NewRevealToken(secret, exchangeID, participantID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("token secret is not configured")
	}

	now := time.Now()
	claims := revealClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   participantID,
			Audience:  jwt.ClaimStrings{exchangeID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign reveal token: %w", err)
	}
	return signed, nil
}

// ParseRevealToken validates a reveal token for the given exchange and
// returns the giver's participant ID.
func ParseRevealToken(secret, exchangeID, tokenString string) (string, error) {
	if secret == "" {
		return "", errors.New("token secret is not configured")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience(exchangeID),
		jwt.WithExpirationRequired(),
	)

	claims := &revealClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
