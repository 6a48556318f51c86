package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret")
	id := uuid.New()

	token, err := m.GenerateAccessToken(id, "sana@example.com", "Sana", []string{"cashier"}, time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != id || claims.Name != "Sana" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestJWTRejectsWrongSecretAndExpiry(t *testing.T) {
	token, _ := NewJWTManager("secret").GenerateAccessToken(uuid.New(), "", "Sana", nil, time.Minute)
	if _, err := NewJWTManager("other").ValidateAccessToken(token); err == nil {
		t.Error("token signed with another secret must be rejected")
	}

	expired, _ := NewJWTManager("secret").GenerateAccessToken(uuid.New(), "", "Sana", nil, -time.Minute)
	if _, err := NewJWTManager("secret").ValidateAccessToken(expired); err == nil {
		t.Error("expired token must be rejected")
	}
}
