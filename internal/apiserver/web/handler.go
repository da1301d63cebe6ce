// Package web 会话 Cookie 驱动的 HTML 界面
//
// 浏览、搜索、PDF 查看走公开路由；收藏需要登录；
// 后台管理按角色分级：viewer < editor < admin。
package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"library-admin/internal/shared/cache"
	"library-admin/internal/shared/filestore"
	"library-admin/internal/shared/storage"
	"library-admin/internal/thumbnail"
)

// Handler Web 界面处理器
type Handler struct {
	store     storage.Store
	cache     cache.Cache
	files     filestore.Store
	sessions  *Sessions
	templates map[string]*template.Template
	thumbOpts thumbnail.Options
}

// NewHandler 创建 Web 处理器
func NewHandler(store storage.Store, c cache.Cache, files filestore.Store, sessions *Sessions, thumbOpts thumbnail.Options) (*Handler, error) {
	templates, err := newTemplates()
	if err != nil {
		return nil, fmt.Errorf("compile templates: %w", err)
	}
	return &Handler{
		store:     store,
		cache:     c,
		files:     files,
		sessions:  sessions,
		templates: templates,
		thumbOpts: thumbOpts,
	}, nil
}

// RegisterRoutes 注册 Web 路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// 公开页面
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /authors", h.Authors)
	mux.HandleFunc("GET /author/{id}", h.AuthorDetail)
	mux.HandleFunc("GET /view_pdf/{id}", h.ViewPDF)
	mux.HandleFunc("GET /guideline", h.Guideline)

	// 账户
	mux.HandleFunc("GET /auth/login", h.LoginForm)
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("GET /auth/register", h.RegisterForm)
	mux.HandleFunc("POST /auth/register", h.Register)
	mux.HandleFunc("GET /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/favorites", h.requireLogin(h.Favorites))
	mux.HandleFunc("POST /auth/favorites/{id}", h.requireLogin(h.AddFavorite))
	mux.HandleFunc("DELETE /auth/favorites/{id}", h.requireLogin(h.RemoveFavorite))

	// 后台管理
	mux.HandleFunc("GET /admin/dashboard", h.requireRole(roleAdmin, h.Dashboard))
	mux.HandleFunc("GET /admin/add", h.requireLogin(h.AddPublicationForm))
	mux.HandleFunc("POST /admin/add", h.requireLogin(h.AddPublication))
	mux.HandleFunc("GET /admin/publications", h.requireRole(roleEditor, h.AdminPublications))
	mux.HandleFunc("GET /admin/edit/{id}", h.requireRole(roleEditor, h.EditPublicationForm))
	mux.HandleFunc("POST /admin/edit/{id}", h.requireRole(roleEditor, h.EditPublication))
	mux.HandleFunc("POST /admin/delete/{id}", h.requireRole(roleEditor, h.DeletePublication))
	mux.HandleFunc("GET /admin/authors", h.requireRole(roleEditor, h.AdminAuthors))
	mux.HandleFunc("GET /admin/authors/add", h.requireRole(roleEditor, h.AddAuthorForm))
	mux.HandleFunc("POST /admin/authors/add", h.requireRole(roleEditor, h.AddAuthor))
	mux.HandleFunc("GET /admin/authors/edit/{id}", h.requireRole(roleEditor, h.EditAuthorForm))
	mux.HandleFunc("POST /admin/authors/edit/{id}", h.requireRole(roleEditor, h.EditAuthor))
	mux.HandleFunc("POST /admin/authors/delete/{id}", h.requireRole(roleEditor, h.DeleteAuthor))
	mux.HandleFunc("GET /admin/users", h.requireRole(roleAdmin, h.AdminUsers))

	// 内置静态资源与上传文件
	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.HandleFunc("GET /uploads/{category}/{filename}", h.ServeUpload)
}
