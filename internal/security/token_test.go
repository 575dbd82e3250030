package security

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret-for-reveal-tokens"

func TestRevealTokenRoundTrip(t *testing.T) {
	token, err := NewRevealToken(testSecret, "exchange-1", "participant-7", time.Hour)
	if err != nil {
		t.Fatalf("NewRevealToken failed: %v", err)
	}

	participantID, err := ParseRevealToken(testSecret, "exchange-1", token)
	if err != nil {
		t.Fatalf("ParseRevealToken failed: %v", err)
	}
	if participantID != "participant-7" {
		t.Errorf("participantID = %q, want %q", participantID, "participant-7")
	}
}

func TestRevealTokenRejections(t *testing.T) {
	token, err := NewRevealToken(testSecret, "exchange-1", "participant-7", time.Hour)
	if err != nil {
		t.Fatalf("NewRevealToken failed: %v", err)
	}

	expired, err := NewRevealToken(testSecret, "exchange-1", "participant-7", -time.Minute)
	if err != nil {
		t.Fatalf("NewRevealToken failed: %v", err)
	}

	tests := []struct {
		name       string
		secret     string
		exchangeID string
		token      string
	}{
		{name: "wrong secret", secret: "other-secret", exchangeID: "exchange-1", token: token},
		{name: "wrong exchange", secret: testSecret, exchangeID: "exchange-2", token: token},
		{name: "expired", secret: testSecret, exchangeID: "exchange-1", token: expired},
		{name: "garbage", secret: testSecret, exchangeID: "exchange-1", token: "not.a.token"},
		{name: "empty", secret: testSecret, exchangeID: "exchange-1", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRevealToken(tt.secret, tt.exchangeID, tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestRevealTokenRequiresSecret(t *testing.T) {
	if _, err := NewRevealToken("", "exchange-1", "participant-7", time.Hour); err == nil {
		t.Error("signing without a secret should fail")
	}
	if _, err := ParseRevealToken("", "exchange-1", "whatever"); err == nil {
		t.Error("parsing without a secret should fail")
	}
}
