package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	token, claims, err := issuer.GenerateSessionToken("")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if claims.ClientID == "" {
		t.Error("Expected a generated client id")
	}

	got, err := issuer.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if got.ClientID != claims.ClientID || got.Role != "client" {
		t.Errorf("Unexpected claims %+v", got)
	}
}

func TestSessionTokenRejections(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)
	token, _, _ := issuer.GenerateSessionToken("client-1")

	if _, err := NewIssuer("other-secret", time.Minute).ValidateToken(token); err == nil {
		t.Error("Expected signature mismatch to fail")
	}

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := issuer.ValidateToken(token); err == nil {
		t.Error("Expected expired token to fail")
	}

	if _, err := issuer.ValidateToken("not-a-token"); err == nil {
		t.Error("Expected garbage to fail")
	}
}

func TestIssuerWithoutSecret(t *testing.T) {
	issuer := NewIssuer("", 0)
	if issuer.Enabled() {
		t.Error("Expected disabled issuer")
	}
	if issuer.TTL() != DefaultSessionTTL {
		t.Errorf("Expected default TTL, got %v", issuer.TTL())
	}
	if _, _, err := issuer.GenerateSessionToken("x"); !errors.Is(err, ErrNoSecret) {
		t.Errorf("Expected ErrNoSecret, got %v", err)
	}
}
