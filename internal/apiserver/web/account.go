package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"library-admin/internal/apiserver/auth"
	"library-admin/internal/shared/model"
	"library-admin/internal/shared/storage"
)

// LoginForm 登录页
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.sessions.CurrentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "login.html", nil)
}

// Login 处理登录表单
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		h.sessions.Flash(w, r, "Username and password are required")
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), username)
	if err != nil {
		log.Printf("[web.login] GetUserByUsername error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	// 登录失败不触碰 last_login
	if user == nil || !auth.CheckPassword(password, user.PasswordHash) {
		h.sessions.Flash(w, r, "Invalid username or password")
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}

	if err := h.sessions.SignIn(w, r, user); err != nil {
		log.Printf("[web.login] SignIn error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := h.store.UpdateUserLastLogin(r.Context(), user.ID, time.Now()); err != nil {
		log.Printf("[web.login] UpdateUserLastLogin error: %v", err)
	}

	log.Printf("[web] User logged in: %s", user.Username)
	h.sessions.Flash(w, r, "Welcome back, "+user.Username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterForm 注册页
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if h.sessions.CurrentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "register.html", nil)
}

// Register 处理注册表单，新用户一律 viewer 角色
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	email := r.FormValue("email")
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	if username == "" || email == "" || password == "" || confirm == "" {
		h.sessions.Flash(w, r, "All fields are required")
		http.Redirect(w, r, "/auth/register", http.StatusSeeOther)
		return
	}
	if len(password) < 6 {
		h.sessions.Flash(w, r, "Password must be at least 6 characters")
		http.Redirect(w, r, "/auth/register", http.StatusSeeOther)
		return
	}
	if password != confirm {
		h.sessions.Flash(w, r, "Passwords do not match")
		http.Redirect(w, r, "/auth/register", http.StatusSeeOther)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Printf("[web.register] HashPassword error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	user := &model.User{
		ID:           auth.NewID("usr"),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleViewer,
		CreatedAt:    time.Now(),
		Favorites:    []string{},
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			h.sessions.Flash(w, r, "Username or email already taken")
			http.Redirect(w, r, "/auth/register", http.StatusSeeOther)
			return
		}
		log.Printf("[web.register] CreateUser error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Printf("[web] User registered: %s (%s)", user.Username, user.ID)
	h.sessions.Flash(w, r, "Registration successful, please log in")
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// Logout 退出登录
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(w, r); err != nil {
		log.Printf("[web.logout] SignOut error: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Favorites 收藏列表页
func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request) {
	user := h.sessions.CurrentUser(r)
	pubs, err := h.store.ListFavorites(r.Context(), user.ID)
	if err != nil {
		log.Printf("[web.favorites] ListFavorites error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "favorites.html", pubs)
}

// AddFavorite 收藏出版物
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	user := h.sessions.CurrentUser(r)
	id := r.PathValue("id")

	pub, err := h.store.GetPublicationByID(r.Context(), id)
	if err != nil {
		log.Printf("[web.favorites] GetPublicationByID error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if pub == nil {
		h.sessions.Flash(w, r, "Publication not found")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := h.store.AddFavorite(r.Context(), user.ID, id); err != nil {
		log.Printf("[web.favorites] AddFavorite error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.sessions.Flash(w, r, "Added to favorites")
	http.Redirect(w, r, "/auth/favorites", http.StatusSeeOther)
}

// RemoveFavorite 取消收藏，返回 JSON（页面端 fetch 调用）
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	user := h.sessions.CurrentUser(r)
	id := r.PathValue("id")

	if err := h.store.RemoveFavorite(r.Context(), user.ID, id); err != nil {
		log.Printf("[web.favorites] RemoveFavorite error: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": "internal error"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success", "id": id})
}
