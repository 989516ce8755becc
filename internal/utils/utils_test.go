package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)

	hash, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "pw" || !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash does not look like bcrypt: %q", hash)
	}
	if err := h.Compare(hash, "pw"); err != nil {
		t.Errorf("Compare with correct password: %v", err)
	}
	if err := h.Compare(hash, "other"); err == nil {
		t.Error("Compare with wrong password: got nil, want error")
	}

	again, _ := h.Hash("pw")
	if again == hash {
		t.Error("hashes of the same password should differ by salt")
	}
}

func TestJWTSignerRoundTrip(t *testing.T) {
	s := NewJWTSigner("secret", time.Hour)

	token, err := s.Sign("u1", "a@b.com")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "a@b.com" || claims.Subject != "u1" {
		t.Errorf("claims: got %+v", claims)
	}
}

func TestJWTSignerRejects(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	signer := NewJWTSigner("secret", 24*time.Hour).WithClock(func() time.Time { return issued })
	token, err := signer.Sign("u1", "a@b.com")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u1"}).SignedString([]byte("secret"))

	// Signature of one token over the payload of another.
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + strings.Split(noExp, ".")[1] + "." + parts[2]
	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour))},
	}).SignedString([]byte("secret"))

	tests := []struct {
		name   string
		token  string
		verify *JWTSigner
	}{
		{
			name:   "expired",
			token:  token,
			verify: NewJWTSigner("secret", 24*time.Hour).WithClock(func() time.Time { return issued.Add(25 * time.Hour) }),
		},
		{
			name:   "wrong secret",
			token:  token,
			verify: NewJWTSigner("other", 24*time.Hour).WithClock(func() time.Time { return issued }),
		},
		{
			name:   "garbage",
			token:  "not-a-token",
			verify: signer,
		},
		{
			name:   "tampered",
			token:  tampered,
			verify: signer,
		},
		{
			name:   "missing expiry",
			token:  noExp,
			verify: signer,
		},
		{
			name:   "missing user id",
			token:  noUser,
			verify: signer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.verify.Verify(tt.token); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	// Still valid one second before the window closes.
	edge := NewJWTSigner("secret", 24*time.Hour).WithClock(func() time.Time { return issued.Add(24*time.Hour - time.Second) })
	if _, err := edge.Verify(token); err != nil {
		t.Errorf("token inside window rejected: %v", err)
	}
}
