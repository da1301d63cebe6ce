package web

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"library-admin/internal/apiserver/auth"
	"library-admin/internal/shared/model"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// 每个页面模板与 base.html 组合编译
var pageTemplates = []string{
	"index.html",
	"authors.html",
	"author_detail.html",
	"view_pdf.html",
	"guideline.html",
	"login.html",
	"register.html",
	"favorites.html",
	"admin_dashboard.html",
	"admin_publications.html",
	"publication_form.html",
	"admin_authors.html",
	"author_form.html",
	"admin_users.html",
}

var templateFuncs = template.FuncMap{
	"format_date": formatDate,
	"cover_url":   coverURL,
	"add":         func(a, b int) int { return a + b },
	"sub":         func(a, b int) int { return a - b },
}

// formatDate "YYYY-MM-DD" -> "02 Jan 2006"，解析失败原样返回
func formatDate(s string) string {
	t, err := time.Parse(model.PublishDateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("02 Jan 2006")
}

// coverURL 封面地址，缺失或默认封面走内置静态资源
func coverURL(coverFilename string) string {
	if coverFilename == "" || coverFilename == "default_cover.jpg" {
		return "/static/img/default_cover.jpg"
	}
	return "/uploads/covers/" + coverFilename
}

// newTemplates 预编译全部页面模板
func newTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pageTemplates))
	for _, page := range pageTemplates {
		t, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		out[page] = t
	}
	return out, nil
}

// templateData 所有页面共享的外层数据
type templateData struct {
	User    *auth.AuthUser // 匿名时为 nil
	Flashes []string
	Data    interface{}
}

// render 渲染页面模板
func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data interface{}) {
	t, ok := h.templates[page]
	if !ok {
		log.Printf("[web] unknown template: %s", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	td := templateData{
		User:    h.sessions.CurrentUser(r),
		Flashes: h.sessions.PopFlashes(w, r),
		Data:    data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base", td); err != nil {
		log.Printf("[web] render %s: %v", page, err)
	}
}
