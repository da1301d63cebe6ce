package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"library-admin/internal/shared/model"
)

// UserStore 用户存储接口（按需裁剪，避免依赖完整 Store）
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUserLastLogin(ctx context.Context, id string, at time.Time) error
	CountUsers(ctx context.Context) (int64, error)
}

// Handler 认证 HTTP 处理器
type Handler struct {
	store UserStore
	cfg   Config
}

// NewHandler 创建认证处理器
func NewHandler(store UserStore, cfg Config) *Handler {
	return &Handler{store: store, cfg: cfg}
}

// RegisterRoutes 注册认证相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("GET /api/v1/auth/me", RequireToken(h.cfg, h.Me))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginData struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Login 用户登录，签发 7 天有效期的访问令牌
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelopeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeEnvelopeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		log.Printf("[auth.login] GetUserByUsername error: %v", err)
		writeEnvelopeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	// 用户不存在与密码错误返回同一错误，且不触碰 last_login
	if user == nil || !CheckPassword(req.Password, user.PasswordHash) {
		writeEnvelopeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := GenerateToken(h.cfg, user)
	if err != nil {
		log.Printf("[auth.login] GenerateToken error: %v", err)
		writeEnvelopeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := time.Now()
	if err := h.store.UpdateUserLastLogin(r.Context(), user.ID, now); err != nil {
		log.Printf("[auth.login] UpdateUserLastLogin error: %v", err)
	}
	user.LastLogin = &now

	log.Printf("[auth] User logged in: %s", user.Username)
	writeEnvelopeSuccess(w, http.StatusOK, loginData{Token: token, User: user})
}

// Me 获取当前令牌对应的用户信息
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	authUser := GetAuthUser(r.Context())
	if authUser == nil {
		unauthorized(w, "not authenticated")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), authUser.ID)
	if err != nil {
		log.Printf("[auth.me] GetUserByID error: %v", err)
		writeEnvelopeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeEnvelopeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeEnvelopeSuccess(w, http.StatusOK, user)
}

func writeEnvelopeSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}
