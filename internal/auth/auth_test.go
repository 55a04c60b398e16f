// server/internal/auth/auth_test.go
package auth

import (
	"testing"
	"time"
)

var testSecret = []byte("test-secret")

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("hash must not equal the plain password")
	}
	if !CheckPasswordHash("s3cret-password", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong-password", hash) {
		t.Error("wrong password accepted")
	}
}

func TestJWTRoundtrip(t *testing.T) {
	token, err := GenerateJWT(testSecret, "USR-1", "carrier", "CAR-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := ParseJWT(testSecret, token)
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}
	if claims.UserID != "USR-1" {
		t.Errorf("UserID = %q, want USR-1", claims.UserID)
	}
	if claims.Role != "carrier" {
		t.Errorf("Role = %q, want carrier", claims.Role)
	}
	if claims.ProfileID != "CAR-1" {
		t.Errorf("ProfileID = %q, want CAR-1", claims.ProfileID)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(testSecret, "USR-1", "shipper", "SHP-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	if _, err := ParseJWT([]byte("another-secret"), token); err == nil {
		t.Error("token signed with a different secret should be rejected")
	}
}

func TestJWTExpired(t *testing.T) {
	token, err := GenerateJWT(testSecret, "USR-1", "driver", "DRV-1", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	if _, err := ParseJWT(testSecret, token); err == nil {
		t.Error("expired token should be rejected")
	}
}

func TestJWTGarbage(t *testing.T) {
	if _, err := ParseJWT(testSecret, "not-a-token"); err == nil {
		t.Error("malformed token should be rejected")
	}
}
