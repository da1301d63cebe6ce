// Package publication 出版物 REST API
package publication

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"library-admin/internal/apiserver/auth"
	"library-admin/internal/shared/cache"
	"library-admin/internal/shared/model"
	"library-admin/internal/shared/storage"
)

// Store 出版物存储接口
type Store interface {
	CreatePublication(ctx context.Context, pub *model.Publication) error
	UpdatePublication(ctx context.Context, id string, update storage.PublicationUpdate) error
	DeletePublication(ctx context.Context, id string) error
	GetPublicationByID(ctx context.Context, id string) (*model.Publication, error)
	ListPublications(ctx context.Context, filter storage.PublicationFilter) ([]*model.Publication, int64, error)
	SearchPublications(ctx context.Context, q string, page, perPage int) ([]*model.Publication, int64, error)
	IncrementDownloadCount(ctx context.Context, id string) error
	CategoryCounts(ctx context.Context) ([]model.AggregateCount, error)
}

// Handler 出版物 HTTP 处理器
type Handler struct {
	store   Store
	cache   cache.Cache
	authCfg auth.Config
}

// NewHandler 创建出版物处理器
func NewHandler(store Store, c cache.Cache, authCfg auth.Config) *Handler {
	return &Handler{store: store, cache: c, authCfg: authCfg}
}

// RegisterRoutes 注册出版物相关路由
// 读接口公开，写接口要求 editor 及以上角色。
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/publications", h.List)
	mux.HandleFunc("GET /api/v1/publications/{id}", h.Get)
	mux.HandleFunc("POST /api/v1/publications",
		auth.RequireToken(h.authCfg, auth.RequireRole(model.RoleEditor, h.Create)))
	mux.HandleFunc("PUT /api/v1/publications/{id}",
		auth.RequireToken(h.authCfg, auth.RequireRole(model.RoleEditor, h.Update)))
	mux.HandleFunc("DELETE /api/v1/publications/{id}",
		auth.RequireToken(h.authCfg, auth.RequireRole(model.RoleEditor, h.Delete)))
	mux.HandleFunc("POST /api/v1/publications/{id}/download", h.Download)
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/categories", h.Categories)
}

// ============================================================================
// 请求类型
// ============================================================================

type createRequest struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Category      string   `json:"category"`
	PublishDate   string   `json:"publish_date"`
	PDFFilename   string   `json:"pdf_filename"`
	CoverFilename string   `json:"cover_filename"`
}

type updateRequest struct {
	Title         *string  `json:"title"`
	Authors       []string `json:"authors"`
	Category      *string  `json:"category"`
	PublishDate   *string  `json:"publish_date"`
	PDFFilename   *string  `json:"pdf_filename"`
	CoverFilename *string  `json:"cover_filename"`
}

// ============================================================================
// Handlers
// ============================================================================

// List 分页列出出版物，支持 search/author/category/publish_date/sort 过滤
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)
	q := r.URL.Query()
	filter := storage.PublicationFilter{
		Search:      q.Get("search"),
		Author:      q.Get("author"),
		Category:    q.Get("category"),
		PublishDate: q.Get("publish_date"),
		Sort:        q.Get("sort"),
		Page:        page,
		PerPage:     perPage,
	}

	pubs, total, err := h.store.ListPublications(r.Context(), filter)
	if err != nil {
		log.Printf("[publication.list] ListPublications error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writePage(w, pubs, newPagination(page, perPage, total))
}

// Get 按 ID 获取出版物
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	pub, err := h.store.GetPublicationByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[publication.get] GetPublicationByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if pub == nil {
		writeError(w, http.StatusNotFound, "publication not found")
		return
	}
	writeSuccess(w, http.StatusOK, pub)
}

// Create 新建出版物（editor+）
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || len(req.Authors) == 0 {
		writeError(w, http.StatusBadRequest, "title and authors are required")
		return
	}
	if req.PublishDate != "" {
		if _, err := time.Parse(model.PublishDateLayout, req.PublishDate); err != nil {
			writeError(w, http.StatusBadRequest, "publish_date must be YYYY-MM-DD")
			return
		}
	}

	now := time.Now()
	pub := &model.Publication{
		ID:            auth.NewID("pub"),
		Title:         req.Title,
		Authors:       req.Authors,
		Category:      req.Category,
		PublishDate:   req.PublishDate,
		PDFFilename:   req.PDFFilename,
		CoverFilename: req.CoverFilename,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.store.CreatePublication(r.Context(), pub); err != nil {
		log.Printf("[publication.create] CreatePublication error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create publication")
		return
	}

	h.invalidateAggregates(r.Context())
	log.Printf("[publication] Created: %s (%s)", pub.Title, pub.ID)
	writeSuccess(w, http.StatusCreated, pub)
}

// Update 更新出版物（editor+）
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PublishDate != nil && *req.PublishDate != "" {
		if _, err := time.Parse(model.PublishDateLayout, *req.PublishDate); err != nil {
			writeError(w, http.StatusBadRequest, "publish_date must be YYYY-MM-DD")
			return
		}
	}

	update := storage.PublicationUpdate{
		Title:         req.Title,
		Authors:       req.Authors,
		Category:      req.Category,
		PublishDate:   req.PublishDate,
		PDFFilename:   req.PDFFilename,
		CoverFilename: req.CoverFilename,
	}
	if err := h.store.UpdatePublication(r.Context(), id, update); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "publication not found")
			return
		}
		log.Printf("[publication.update] UpdatePublication error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update publication")
		return
	}

	h.invalidateAggregates(r.Context())

	pub, err := h.store.GetPublicationByID(r.Context(), id)
	if err != nil || pub == nil {
		writeSuccess(w, http.StatusOK, map[string]string{"id": id})
		return
	}
	writeSuccess(w, http.StatusOK, pub)
}

// Delete 删除出版物（editor+）
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeletePublication(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "publication not found")
			return
		}
		log.Printf("[publication.delete] DeletePublication error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete publication")
		return
	}

	h.invalidateAggregates(r.Context())
	log.Printf("[publication] Deleted: %s", id)
	writeSuccess(w, http.StatusOK, map[string]string{"id": id})
}

// Download 递增下载计数
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.IncrementDownloadCount(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "publication not found")
			return
		}
		log.Printf("[publication.download] IncrementDownloadCount error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"id": id})
}

// Search 全文搜索（无全文索引时退化为正则子串搜索）
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	page, perPage := parsePagination(r)
	pubs, total, err := h.store.SearchPublications(r.Context(), q, page, perPage)
	if err != nil {
		log.Printf("[publication.search] SearchPublications error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writePage(w, pubs, newPagination(page, perPage, total))
}

// Categories 分类列表（名称 + 数量），走聚合缓存
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	var counts []model.AggregateCount
	hit, err := h.cache.GetJSON(r.Context(), cache.KeyCategoryCounts, &counts)
	if err != nil {
		log.Printf("[publication.categories] cache get error: %v", err)
	}
	if !hit {
		counts, err = h.store.CategoryCounts(r.Context())
		if err != nil {
			log.Printf("[publication.categories] CategoryCounts error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := h.cache.SetJSON(r.Context(), cache.KeyCategoryCounts, counts, cache.DefaultTTL); err != nil {
			log.Printf("[publication.categories] cache set error: %v", err)
		}
	}
	writeSuccess(w, http.StatusOK, counts)
}

// invalidateAggregates 写操作后失效聚合缓存
func (h *Handler) invalidateAggregates(ctx context.Context) {
	if err := h.cache.Delete(ctx, cache.AggregateKeys...); err != nil {
		log.Printf("[publication] cache invalidate error: %v", err)
	}
}
