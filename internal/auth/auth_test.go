package auth

import (
	"net/http/httptest"
	"testing"

	"centrale/internal/model"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("marie", model.RoleCoach, "test-secret")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	claims, err := ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.Username != "marie" {
		t.Errorf("username = %q, want marie", claims.Username)
	}
	if claims.Role != model.RoleCoach {
		t.Errorf("role = %q, want coach", claims.Role)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("marie", model.RoleAdmin, "secret-a")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(token, "secret-b"); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestParseJWTBadRole(t *testing.T) {
	token, err := GenerateJWT("marie", model.Role("superuser"), "test-secret")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(token, "test-secret"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestExtractToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"abc123", ""},
		{"", ""},
		{"Basic abc123", ""},
	}
	for _, c := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		if c.header != "" {
			r.Header.Set("Authorization", c.header)
		}
		if got := ExtractToken(r); got != c.want {
			t.Errorf("ExtractToken(%q) = %q, want %q", c.header, got, c.want)
		}
	}
}

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword("s3cret", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}
