package jwt

import (
	"testing"
	"time"
)

func TestGenerateAndParseRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-123", "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	claims, err := Parse(token, "secret")
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Fatalf("unexpected user id: %q", claims.UserID)
	}
	if claims.Issuer != "thinkflow" {
		t.Fatalf("unexpected issuer: %q", claims.Issuer)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-123", "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := Parse(token, "other-secret"); err == nil {
		t.Fatalf("expected parse failure with wrong secret")
	} else if IsExpired(err) {
		t.Fatalf("signature mismatch must not report as expiry")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := GenerateToken("user-123", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	_, err = Parse(token, "secret")
	if err == nil {
		t.Fatalf("expected expired token to fail")
	}
	if !IsExpired(err) {
		t.Fatalf("expected expiry classification, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not-a-token", "secret"); err == nil {
		t.Fatalf("expected malformed token to fail")
	}
}
