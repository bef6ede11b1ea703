package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	tm := NewTokenManager("test-secret", "chairtime")

	token, err := tm.GenerateToken("tenant-1", "user-1", "manager", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.TenantID != "tenant-1" || claims.UserID != "user-1" || claims.Role != "manager" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.Elevated() {
		t.Error("manager should be elevated")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", "chairtime").GenerateToken("tenant-1", "user-1", "staff", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := NewTokenManager("secret-b", "chairtime").ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail across secrets")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", "chairtime")
	token, err := tm.GenerateToken("tenant-1", "user-1", "staff", -time.Minute)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := tm.ValidateToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestGenerateRequiresTenant(t *testing.T) {
	tm := NewTokenManager("test-secret", "chairtime")
	if _, err := tm.GenerateToken("", "user-1", "staff", time.Hour); err == nil {
		t.Fatal("expected error without tenant id")
	}
}

func TestElevated(t *testing.T) {
	cases := map[string]bool{"admin": true, "manager": true, "staff": false, "": false}
	for role, want := range cases {
		c := &Claims{Role: role}
		if c.Elevated() != want {
			t.Errorf("role %q: expected elevated=%v", role, want)
		}
	}
}

func TestExtractToken(t *testing.T) {
	if tok, err := ExtractToken("Bearer abc"); err != nil || tok != "abc" {
		t.Errorf("expected abc, got %q/%v", tok, err)
	}
	for _, bad := range []string{"", "abc", "Basic abc", "Bearer"} {
		if _, err := ExtractToken(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
