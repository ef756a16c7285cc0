package auth

import (
	"errors"
	"strings"
	"testing"
)

const testSecret = "unit-test-secret-key-with-32-chars!!"

func TestGenerateAndParseToken(t *testing.T) {
	user := &User{ID: 42, Login: "resident", IsAdmin: false}

	token, err := GenerateAccessToken(user, testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}

	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if id != 42 {
		t.Errorf("user id = %d, want 42", id)
	}
	if claims.Admin {
		t.Error("admin flag set for regular user")
	}
}

func TestAdminFlagRoundTrips(t *testing.T) {
	admin := &User{ID: 1, Login: "admin", IsAdmin: true}

	token, err := GenerateAccessToken(admin, testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if !claims.Admin {
		t.Error("admin flag lost in round trip")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	user := &User{ID: 1, Login: "resident"}

	token, err := GenerateAccessToken(user, testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := ParseToken(token, "another-secret-that-is-also-32-ch!"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken("not.a.jwt", testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	a, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	b, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	if len(a) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(a))
	}
	if a == b {
		t.Error("two refresh tokens are identical")
	}
}

func TestIsValidLogin(t *testing.T) {
	valid := []string{"alice", "bob.smith", "user_42", "a-b"}
	invalid := []string{"", "ab", "with space", "почта", strings.Repeat("x", 65)}

	for _, l := range valid {
		if !IsValidLogin(l) {
			t.Errorf("IsValidLogin(%q) = false, want true", l)
		}
	}
	for _, l := range invalid {
		if IsValidLogin(l) {
			t.Errorf("IsValidLogin(%q) = true, want false", l)
		}
	}
}
