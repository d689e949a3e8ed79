package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "learnhub-test",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager()
	token, jti, err := m.GenerateAccessToken(TokenSubject{UserID: 42, Email: "a@b.co", Role: "student", TokenVersion: 3, SessionID: "s-1"})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "student" || claims.TokenVersion != 3 || claims.SessionID != "s-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.TokenType != TokenTypeAccess || claims.ID != jti {
		t.Fatalf("token type/jti mismatch: %s %s", claims.TokenType, claims.ID)
	}
}

func TestExpiredTokenIsDistinguishable(t *testing.T) {
	m := newTestManager()
	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }

	token, _, err := m.GenerateAccessToken(TokenSubject{UserID: 1, Email: "a@b.co", Role: "student"})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	m.now = time.Now
	_, err = m.ValidateToken(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("ValidateToken error = %v, want ErrExpiredToken", err)
	}
}

func TestTokenSignedWithOtherSecretIsInvalid(t *testing.T) {
	other := NewJWTManager(JWTConfig{Secret: "other", Expiry: time.Hour, Issuer: "learnhub-test"})
	token, _, _ := other.GenerateAccessToken(TokenSubject{UserID: 1})

	_, err := newTestManager().ValidateToken(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("ValidateToken error = %v, want ErrInvalidToken", err)
	}
}

func TestRefreshTokenType(t *testing.T) {
	m := newTestManager()
	token, _, _ := m.GenerateRefreshToken(TokenSubject{UserID: 9})

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenType != TokenTypeRefresh {
		t.Fatalf("TokenType = %q", claims.TokenType)
	}

	exp, err := m.GetTokenExpiry(token)
	if err != nil {
		t.Fatalf("GetTokenExpiry: %v", err)
	}
	if d := time.Until(exp); d < 23*time.Hour || d > 25*time.Hour {
		t.Fatalf("refresh expiry off: %v", d)
	}
}

func TestPasswordHashing(t *testing.T) {
	Cost = 4
	t.Cleanup(func() { Cost = 12 })

	if _, err := HashPassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("HashPassword short = %v", err)
	}

	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := VerifyPassword(hash, "correct horse"); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if err := VerifyPassword(hash, "battery staple"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("VerifyPassword mismatch = %v", err)
	}
}
