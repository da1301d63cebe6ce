package auth

import (
	"strings"
	"testing"
	"time"

	"library-admin/internal/shared/model"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash must not equal plaintext")
	}
	if !CheckPassword("secret1", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := Config{Secret: "test-secret", TokenTTL: time.Hour}
	user := &model.User{ID: "usr-1", Username: "alice", Role: model.RoleEditor}

	token, err := GenerateToken(cfg, user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "usr-1" {
		t.Errorf("Subject = %q, want usr-1", claims.Subject)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want alice", claims.Username)
	}
	if claims.Role != "editor" {
		t.Errorf("Role = %q, want editor", claims.Role)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	cfg := Config{Secret: "secret-a", TokenTTL: time.Hour}
	user := &model.User{ID: "usr-1", Username: "alice", Role: model.RoleViewer}
	token, err := GenerateToken(cfg, user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(Config{Secret: "secret-b"}, token); err == nil {
		t.Error("token signed with different secret accepted")
	}
}

func TestParseToken_Expired(t *testing.T) {
	cfg := Config{Secret: "test-secret", TokenTTL: -time.Minute}
	user := &model.User{ID: "usr-1", Username: "alice", Role: model.RoleViewer}
	token, err := GenerateToken(cfg, user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(Config{Secret: "test-secret"}, token); err == nil {
		t.Error("expired token accepted")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken(Config{Secret: "s"}, "not.a.token"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestNewID(t *testing.T) {
	id1 := NewID("usr")
	id2 := NewID("usr")
	if !strings.HasPrefix(id1, "usr-") {
		t.Errorf("id %q missing prefix", id1)
	}
	if id1 == id2 {
		t.Error("consecutive IDs collided")
	}
}
