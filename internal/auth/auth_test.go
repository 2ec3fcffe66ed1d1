package auth

import (
	"errors"
	"testing"
	"time"
)

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the password")
	}

	if !CheckPassword("s3cret", hash) {
		t.Error("correct password should verify")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password should not verify")
	}
}

func TestTokenIssuer_Roundtrip(t *testing.T) {
	issuer := NewTokenIssuer(time.Hour)

	token, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != 42 {
		t.Errorf("expected user id 42, got %d", userID)
	}
}

func TestTokenIssuer_Garbage(t *testing.T) {
	issuer := NewTokenIssuer(time.Hour)

	if _, err := issuer.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := &TokenIssuer{secret: []byte("test"), ttl: -time.Minute}

	token, err := issuer.Issue(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := issuer.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}
