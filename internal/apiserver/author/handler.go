// Package author 作者 REST API
package author

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"library-admin/internal/shared/model"
)

// Store 作者存储接口
type Store interface {
	GetAuthorByID(ctx context.Context, id string) (*model.Author, error)
	ListAuthors(ctx context.Context) ([]*model.Author, error)
	ListPublicationsByAuthor(ctx context.Context, name string, limit int) ([]*model.Publication, error)
	YearCountsByAuthor(ctx context.Context, name string) ([]model.YearCount, error)
}

// Handler 作者 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建作者处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册作者相关路由（只读，公开）
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/authors", h.List)
	mux.HandleFunc("GET /api/v1/authors/{id}", h.Get)
}

// authorDetail 作者详情：档案 + 最新出版物 + 每年计数
type authorDetail struct {
	Author       *model.Author        `json:"author"`
	Publications []*model.Publication `json:"publications"`
	ByYear       []model.YearCount    `json:"by_year"`
}

// List 作者列表
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	authors, err := h.store.ListAuthors(r.Context())
	if err != nil {
		log.Printf("[author.list] ListAuthors error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeSuccess(w, http.StatusOK, authors)
}

// Get 作者详情，附最新 5 篇出版物与每年出版计数
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	author, err := h.store.GetAuthorByID(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[author.get] GetAuthorByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if author == nil {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}

	pubs, err := h.store.ListPublicationsByAuthor(r.Context(), author.Name, 5)
	if err != nil {
		log.Printf("[author.get] ListPublicationsByAuthor error: %v", err)
		pubs = []*model.Publication{}
	}
	byYear, err := h.store.YearCountsByAuthor(r.Context(), author.Name)
	if err != nil {
		log.Printf("[author.get] YearCountsByAuthor error: %v", err)
		byYear = []model.YearCount{}
	}

	writeSuccess(w, http.StatusOK, authorDetail{
		Author:       author,
		Publications: pubs,
		ByYear:       byYear,
	})
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": message,
	})
}
