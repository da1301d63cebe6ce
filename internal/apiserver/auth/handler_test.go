package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"library-admin/internal/shared/model"
	"library-admin/internal/shared/storage"
)

func newTestHandler(t *testing.T) (*Handler, *storage.MockStore) {
	t.Helper()
	store := storage.NewMockStore()
	cfg := Config{Secret: "test-secret", TokenTTL: time.Hour}
	return NewHandler(store, cfg), store
}

func seedUser(t *testing.T, store *storage.MockStore, username, password string, role model.Role) *model.User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := &model.User{
		ID:           NewID("usr"),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := store.CreateUser(t.Context(), user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func TestLogin_Success(t *testing.T) {
	h, store := newTestHandler(t)
	seedUser(t, store, "alice", "secret1", model.RoleViewer)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username":"alice","password":"secret1"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Token string `json:"token"`
			User  struct {
				Username string `json:"username"`
				Role     string `json:"role"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("status = %q, want success", resp.Status)
	}
	if resp.Data.Token == "" {
		t.Error("token missing")
	}
	if resp.Data.User.Username != "alice" || resp.Data.User.Role != "viewer" {
		t.Errorf("user = %+v", resp.Data.User)
	}

	// 成功登录更新 last_login
	stored, err := store.GetUserByUsername(t.Context(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if stored.LastLogin == nil {
		t.Error("last_login not set after successful login")
	}
}

// TestLogin_WrongPassword 密码错误返回 401，且不触碰 last_login
func TestLogin_WrongPassword(t *testing.T) {
	h, store := newTestHandler(t)
	seedUser(t, store, "alice", "secret1", model.RoleViewer)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username":"alice","password":"wrong"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	stored, err := store.GetUserByUsername(t.Context(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if stored.LastLogin != nil {
		t.Error("last_login changed by failed login")
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username":"nobody","password":"x"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username":"alice"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMe(t *testing.T) {
	h, store := newTestHandler(t)
	user := seedUser(t, store, "alice", "secret1", model.RoleEditor)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(WithAuthUser(req.Context(), &AuthUser{
		ID: user.ID, Username: user.Username, Role: user.Role,
	}))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"alice"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	// password_hash 绝不外泄
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("password_hash leaked in response")
	}
}

func TestEnsureAdminUser(t *testing.T) {
	store := storage.NewMockStore()

	if err := EnsureAdminUser(t.Context(), store, "admin", "admin@library.local", "admin123"); err != nil {
		t.Fatalf("EnsureAdminUser: %v", err)
	}

	admin, err := store.GetUserByUsername(t.Context(), "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if admin == nil {
		t.Fatal("admin user not created")
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("role = %q, want admin", admin.Role)
	}
	if !CheckPassword("admin123", admin.PasswordHash) {
		t.Error("admin password hash mismatch")
	}

	// 用户表非空时不再创建
	if err := EnsureAdminUser(t.Context(), store, "admin2", "a2@library.local", "pw"); err != nil {
		t.Fatalf("EnsureAdminUser second call: %v", err)
	}
	count, _ := store.CountUsers(t.Context())
	if count != 1 {
		t.Errorf("user count = %d, want 1", count)
	}
}
