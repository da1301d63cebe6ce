package web

import (
	"net/http"

	"library-admin/internal/shared/model"
)

// 路由注册处的角色别名，少打几个包名
const (
	roleEditor = model.RoleEditor
	roleAdmin  = model.RoleAdmin
)

// requireLogin 未登录重定向到登录页
func (h *Handler) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.sessions.CurrentUser(r) == nil {
			h.sessions.Flash(w, r, "Please log in to continue")
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// requireRole 角色不足重定向回首页并提示
func (h *Handler) requireRole(required model.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := h.sessions.CurrentUser(r)
		if user == nil {
			h.sessions.Flash(w, r, "Please log in to continue")
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		if !user.Role.AtLeast(required) {
			h.sessions.Flash(w, r, "You do not have permission to access that page")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}
