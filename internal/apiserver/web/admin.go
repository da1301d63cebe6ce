package web

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"library-admin/internal/apiserver/auth"
	"library-admin/internal/shared/cache"
	"library-admin/internal/shared/filestore"
	"library-admin/internal/shared/model"
	"library-admin/internal/shared/storage"
)

// ============================================================================
// 仪表盘 / 列表页
// ============================================================================

// dashboardData 仪表盘数据
type dashboardData struct {
	PublicationCount int64
	AuthorCount      int64
	UserCount        int64
	Recent           []*model.Publication
}

// Dashboard 管理仪表盘（admin）
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{}
	var err error
	if data.PublicationCount, err = h.store.CountPublications(r.Context()); err != nil {
		log.Printf("[web.dashboard] CountPublications error: %v", err)
	}
	if data.AuthorCount, err = h.store.CountAuthors(r.Context()); err != nil {
		log.Printf("[web.dashboard] CountAuthors error: %v", err)
	}
	if data.UserCount, err = h.store.CountUsers(r.Context()); err != nil {
		log.Printf("[web.dashboard] CountUsers error: %v", err)
	}
	if data.Recent, err = h.store.RecentPublications(r.Context(), 5); err != nil {
		log.Printf("[web.dashboard] RecentPublications error: %v", err)
	}
	h.render(w, r, "admin_dashboard.html", data)
}

// adminListData 后台出版物列表数据
type adminListData struct {
	Publications []*model.Publication
	Total        int64
	Page         int
	TotalPages   int64
}

// AdminPublications 后台出版物列表（editor+），页大小 20
func (h *Handler) AdminPublications(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	pubs, total, err := h.store.ListPublications(r.Context(), storage.PublicationFilter{
		Sort:    "created_at",
		Page:    page,
		PerPage: storage.AdminPageSize,
	})
	if err != nil {
		log.Printf("[web.admin] ListPublications error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	totalPages := total / storage.AdminPageSize
	if total%storage.AdminPageSize != 0 {
		totalPages++
	}
	h.render(w, r, "admin_publications.html", adminListData{
		Publications: pubs,
		Total:        total,
		Page:         page,
		TotalPages:   totalPages,
	})
}

// AdminUsers 用户列表（admin）
func (h *Handler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("[web.admin] ListUsers error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "admin_users.html", users)
}

// ============================================================================
// 出版物增删改
// ============================================================================

// AddPublicationForm 新建出版物表单（任何已登录用户）
func (h *Handler) AddPublicationForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "publication_form.html", nil)
}

// AddPublication 新建出版物：保存 PDF，无封面时渲染首页生成
func (h *Handler) AddPublication(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.sessions.Flash(w, r, "Invalid form submission")
		http.Redirect(w, r, "/admin/add", http.StatusSeeOther)
		return
	}

	title := r.FormValue("title")
	authors := parseAuthors(r.FormValue("authors"))
	category := r.FormValue("category")
	publishDate := r.FormValue("publish_date")

	if title == "" || len(authors) == 0 {
		h.sessions.Flash(w, r, "Title and at least one author are required")
		http.Redirect(w, r, "/admin/add", http.StatusSeeOther)
		return
	}
	if publishDate != "" {
		if _, err := time.Parse(model.PublishDateLayout, publishDate); err != nil {
			h.sessions.Flash(w, r, "Publish date must be YYYY-MM-DD")
			http.Redirect(w, r, "/admin/add", http.StatusSeeOther)
			return
		}
	}

	pdfName, err := h.saveUpload(r, "pdf", filestore.CategoryPDF)
	if err != nil {
		log.Printf("[web.admin] save pdf: %v", err)
		h.sessions.Flash(w, r, "Failed to save PDF file")
		http.Redirect(w, r, "/admin/add", http.StatusSeeOther)
		return
	}
	if pdfName == "" {
		h.sessions.Flash(w, r, "A PDF file is required")
		http.Redirect(w, r, "/admin/add", http.StatusSeeOther)
		return
	}

	coverName, err := h.saveUpload(r, "cover", filestore.CategoryCover)
	if err != nil {
		log.Printf("[web.admin] save cover: %v", err)
		h.sessions.Flash(w, r, "Failed to save cover image")
		http.Redirect(w, r, "/admin/add", http.StatusSeeOther)
		return
	}
	if coverName == "" {
		coverName = h.generateCover(r.Context(), pdfName)
	}

	now := time.Now()
	pub := &model.Publication{
		ID:            auth.NewID("pub"),
		Title:         title,
		Authors:       authors,
		Category:      category,
		PublishDate:   publishDate,
		PDFFilename:   pdfName,
		CoverFilename: coverName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.store.CreatePublication(r.Context(), pub); err != nil {
		log.Printf("[web.admin] CreatePublication error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.invalidateAggregates(r)
	log.Printf("[web.admin] Publication created: %s (%s)", pub.Title, pub.ID)
	h.sessions.Flash(w, r, "Publication added")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// EditPublicationForm 编辑出版物表单（editor+）
func (h *Handler) EditPublicationForm(w http.ResponseWriter, r *http.Request) {
	pub, err := h.store.GetPublicationByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[web.admin] GetPublicationByID error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if pub == nil {
		h.sessions.Flash(w, r, "Publication not found")
		http.Redirect(w, r, "/admin/publications", http.StatusSeeOther)
		return
	}
	h.render(w, r, "publication_form.html", pub)
}

// EditPublication 更新出版物（editor+）
// 上传了新 PDF 且未附封面时重新生成封面。
func (h *Handler) EditPublication(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.sessions.Flash(w, r, "Invalid form submission")
		http.Redirect(w, r, "/admin/edit/"+id, http.StatusSeeOther)
		return
	}

	update := storage.PublicationUpdate{}
	if title := r.FormValue("title"); title != "" {
		update.Title = &title
	}
	if authors := parseAuthors(r.FormValue("authors")); len(authors) > 0 {
		update.Authors = authors
	}
	if category := r.FormValue("category"); category != "" {
		update.Category = &category
	}
	if publishDate := r.FormValue("publish_date"); publishDate != "" {
		if _, err := time.Parse(model.PublishDateLayout, publishDate); err != nil {
			h.sessions.Flash(w, r, "Publish date must be YYYY-MM-DD")
			http.Redirect(w, r, "/admin/edit/"+id, http.StatusSeeOther)
			return
		}
		update.PublishDate = &publishDate
	}

	pdfName, err := h.saveUpload(r, "pdf", filestore.CategoryPDF)
	if err != nil {
		log.Printf("[web.admin] save pdf: %v", err)
		h.sessions.Flash(w, r, "Failed to save PDF file")
		http.Redirect(w, r, "/admin/edit/"+id, http.StatusSeeOther)
		return
	}
	coverName, err := h.saveUpload(r, "cover", filestore.CategoryCover)
	if err != nil {
		log.Printf("[web.admin] save cover: %v", err)
		h.sessions.Flash(w, r, "Failed to save cover image")
		http.Redirect(w, r, "/admin/edit/"+id, http.StatusSeeOther)
		return
	}
	if pdfName != "" {
		update.PDFFilename = &pdfName
		if coverName == "" {
			coverName = h.generateCover(r.Context(), pdfName)
		}
	}
	if coverName != "" {
		update.CoverFilename = &coverName
	}

	if err := h.store.UpdatePublication(r.Context(), id, update); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.sessions.Flash(w, r, "Publication not found")
			http.Redirect(w, r, "/admin/publications", http.StatusSeeOther)
			return
		}
		log.Printf("[web.admin] UpdatePublication error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.invalidateAggregates(r)
	h.sessions.Flash(w, r, "Publication updated")
	http.Redirect(w, r, "/admin/publications", http.StatusSeeOther)
}

// DeletePublication 删除出版物及其文件（editor+）
func (h *Handler) DeletePublication(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	pub, err := h.store.GetPublicationByID(r.Context(), id)
	if err != nil {
		log.Printf("[web.admin] GetPublicationByID error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if pub == nil {
		h.sessions.Flash(w, r, "Publication not found")
		http.Redirect(w, r, "/admin/publications", http.StatusSeeOther)
		return
	}

	if err := h.store.DeletePublication(r.Context(), id); err != nil {
		log.Printf("[web.admin] DeletePublication error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// 记录已删，文件清理失败只记日志
	if pub.PDFFilename != "" {
		if err := h.files.Remove(r.Context(), filestore.CategoryPDF, pub.PDFFilename); err != nil {
			log.Printf("[web.admin] remove pdf %s: %v", pub.PDFFilename, err)
		}
	}
	if pub.CoverFilename != "" && pub.CoverFilename != DefaultCoverFilename {
		if err := h.files.Remove(r.Context(), filestore.CategoryCover, pub.CoverFilename); err != nil {
			log.Printf("[web.admin] remove cover %s: %v", pub.CoverFilename, err)
		}
	}

	h.invalidateAggregates(r)
	log.Printf("[web.admin] Publication deleted: %s", id)
	h.sessions.Flash(w, r, "Publication deleted")
	http.Redirect(w, r, "/admin/publications", http.StatusSeeOther)
}

// ============================================================================
// 作者增删改
// ============================================================================

// AdminAuthors 后台作者列表（editor+）
func (h *Handler) AdminAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.store.ListAuthors(r.Context())
	if err != nil {
		log.Printf("[web.admin] ListAuthors error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "admin_authors.html", authors)
}

// AddAuthorForm 新建作者表单（editor+）
func (h *Handler) AddAuthorForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "author_form.html", nil)
}

// AddAuthor 新建作者（editor+）
func (h *Handler) AddAuthor(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.sessions.Flash(w, r, "Invalid form submission")
		http.Redirect(w, r, "/admin/authors/add", http.StatusSeeOther)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		h.sessions.Flash(w, r, "Author name is required")
		http.Redirect(w, r, "/admin/authors/add", http.StatusSeeOther)
		return
	}

	image, err := h.saveUpload(r, "image", filestore.CategoryAuthor)
	if err != nil {
		log.Printf("[web.admin] save author image: %v", err)
		h.sessions.Flash(w, r, "Failed to save author image")
		http.Redirect(w, r, "/admin/authors/add", http.StatusSeeOther)
		return
	}

	now := time.Now()
	author := &model.Author{
		ID:         auth.NewID("aut"),
		Name:       name,
		Image:      image,
		Profile:    r.FormValue("profile"),
		Education:  r.FormValue("education"),
		Experience: r.FormValue("experience"),
		Skills:     r.FormValue("skills"),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.store.CreateAuthor(r.Context(), author); err != nil {
		log.Printf("[web.admin] CreateAuthor error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Printf("[web.admin] Author created: %s (%s)", author.Name, author.ID)
	h.sessions.Flash(w, r, "Author added")
	http.Redirect(w, r, "/admin/authors", http.StatusSeeOther)
}

// EditAuthorForm 编辑作者表单（editor+）
func (h *Handler) EditAuthorForm(w http.ResponseWriter, r *http.Request) {
	author, err := h.store.GetAuthorByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[web.admin] GetAuthorByID error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if author == nil {
		h.sessions.Flash(w, r, "Author not found")
		http.Redirect(w, r, "/admin/authors", http.StatusSeeOther)
		return
	}
	h.render(w, r, "author_form.html", author)
}

// EditAuthor 更新作者（editor+）
func (h *Handler) EditAuthor(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.sessions.Flash(w, r, "Invalid form submission")
		http.Redirect(w, r, "/admin/authors/edit/"+id, http.StatusSeeOther)
		return
	}

	update := storage.AuthorUpdate{}
	if name := r.FormValue("name"); name != "" {
		update.Name = &name
	}
	if profile := r.FormValue("profile"); profile != "" {
		update.Profile = &profile
	}
	if education := r.FormValue("education"); education != "" {
		update.Education = &education
	}
	if experience := r.FormValue("experience"); experience != "" {
		update.Experience = &experience
	}
	if skills := r.FormValue("skills"); skills != "" {
		update.Skills = &skills
	}

	image, err := h.saveUpload(r, "image", filestore.CategoryAuthor)
	if err != nil {
		log.Printf("[web.admin] save author image: %v", err)
		h.sessions.Flash(w, r, "Failed to save author image")
		http.Redirect(w, r, "/admin/authors/edit/"+id, http.StatusSeeOther)
		return
	}
	if image != "" {
		update.Image = &image
	}

	if err := h.store.UpdateAuthor(r.Context(), id, update); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.sessions.Flash(w, r, "Author not found")
			http.Redirect(w, r, "/admin/authors", http.StatusSeeOther)
			return
		}
		log.Printf("[web.admin] UpdateAuthor error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.sessions.Flash(w, r, "Author updated")
	http.Redirect(w, r, "/admin/authors", http.StatusSeeOther)
}

// DeleteAuthor 删除作者及头像文件（editor+）
// 不触碰其名下出版物（按姓名引用，无引用完整性）。
func (h *Handler) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	author, err := h.store.GetAuthorByID(r.Context(), id)
	if err != nil {
		log.Printf("[web.admin] GetAuthorByID error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if author == nil {
		h.sessions.Flash(w, r, "Author not found")
		http.Redirect(w, r, "/admin/authors", http.StatusSeeOther)
		return
	}

	if err := h.store.DeleteAuthor(r.Context(), id); err != nil {
		log.Printf("[web.admin] DeleteAuthor error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if author.Image != "" {
		if err := h.files.Remove(r.Context(), filestore.CategoryAuthor, author.Image); err != nil {
			log.Printf("[web.admin] remove author image %s: %v", author.Image, err)
		}
	}

	log.Printf("[web.admin] Author deleted: %s", id)
	h.sessions.Flash(w, r, "Author deleted")
	http.Redirect(w, r, "/admin/authors", http.StatusSeeOther)
}

// invalidateAggregates 出版物变更后失效侧边栏聚合缓存
func (h *Handler) invalidateAggregates(r *http.Request) {
	if err := h.cache.Delete(r.Context(), cache.AggregateKeys...); err != nil {
		log.Printf("[web.admin] cache invalidate error: %v", err)
	}
}
