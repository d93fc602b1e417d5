package auth

import (
	"testing"
	"time"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("test-secret")

	token, err := v.IssueToken("auth-123", "user@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	identity, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if identity.AuthUID != "auth-123" {
		t.Errorf("Expected AuthUID 'auth-123', got '%s'", identity.AuthUID)
	}
	if identity.Email != "user@example.com" {
		t.Errorf("Expected email 'user@example.com', got '%s'", identity.Email)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewVerifier("secret-a")
	token, err := issuer.IssueToken("auth-123", "user@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	verifier := NewVerifier("secret-b")
	if _, err := verifier.Verify(token); err == nil {
		t.Error("Expected verification to fail with a different secret")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v := NewVerifier("test-secret")
	token, err := v.IssueToken("auth-123", "user@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, err := v.Verify(token); err == nil {
		t.Error("Expected verification to fail for expired token")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	v := NewVerifier("test-secret")
	if _, err := v.Verify("not-a-token"); err == nil {
		t.Error("Expected verification to fail for malformed token")
	}
}
