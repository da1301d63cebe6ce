package web

import (
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"

	"library-admin/internal/shared/filestore"
	"library-admin/internal/shared/model"
)

// Authors 作者列表页
func (h *Handler) Authors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.store.ListAuthors(r.Context())
	if err != nil {
		log.Printf("[web.authors] ListAuthors error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "authors.html", authors)
}

// authorDetailData 作者详情页数据
type authorDetailData struct {
	Author *model.Author
	Latest []*model.Publication
	ByYear []model.YearCount
}

// AuthorDetail 作者详情：档案 + 最新 5 篇 + 每年出版图表数据
func (h *Handler) AuthorDetail(w http.ResponseWriter, r *http.Request) {
	author, err := h.store.GetAuthorByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[web.author] GetAuthorByID error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if author == nil {
		h.sessions.Flash(w, r, "Author not found")
		http.Redirect(w, r, "/authors", http.StatusSeeOther)
		return
	}

	data := authorDetailData{Author: author}
	if latest, err := h.store.ListPublicationsByAuthor(r.Context(), author.Name, 5); err == nil {
		data.Latest = latest
	} else {
		log.Printf("[web.author] ListPublicationsByAuthor error: %v", err)
	}
	if byYear, err := h.store.YearCountsByAuthor(r.Context(), author.Name); err == nil {
		data.ByYear = byYear
	} else {
		log.Printf("[web.author] YearCountsByAuthor error: %v", err)
	}

	h.render(w, r, "author_detail.html", data)
}

// ViewPDF 查看 PDF，浏览计数 +1
func (h *Handler) ViewPDF(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	pub, err := h.store.GetPublicationByID(r.Context(), id)
	if err != nil {
		log.Printf("[web.view_pdf] GetPublicationByID error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if pub == nil {
		h.sessions.Flash(w, r, "Publication not found")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := h.store.IncrementViewCount(r.Context(), id); err != nil {
		log.Printf("[web.view_pdf] IncrementViewCount error: %v", err)
	}
	pub.ViewCount++

	h.render(w, r, "view_pdf.html", pub)
}

// Guideline 投稿指南静态页
func (h *Handler) Guideline(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "guideline.html", nil)
}

// ServeUpload 输出上传文件（PDF、封面、作者头像）
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	filename := filestore.SanitizeFilename(r.PathValue("filename"))

	switch category {
	case filestore.CategoryPDF, filestore.CategoryCover, filestore.CategoryAuthor:
	default:
		http.NotFound(w, r)
		return
	}

	f, err := h.files.Open(r.Context(), category, filename)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if _, err := io.Copy(w, f); err != nil {
		log.Printf("[web.uploads] copy %s/%s: %v", category, filename, err)
	}
}
