// Package stats 全库统计 REST API
package stats

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"library-admin/internal/shared/cache"
	"library-admin/internal/shared/model"
)

// Store 统计所需的存储接口
type Store interface {
	CountPublications(ctx context.Context) (int64, error)
	CountAuthors(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	YearCounts(ctx context.Context) ([]model.YearCount, error)
	CategoryCounts(ctx context.Context) ([]model.AggregateCount, error)
}

// Handler 统计 HTTP 处理器
type Handler struct {
	store Store
	cache cache.Cache
}

// NewHandler 创建统计处理器
func NewHandler(store Store, c cache.Cache) *Handler {
	return &Handler{store: store, cache: c}
}

// RegisterRoutes 注册统计路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
}

// Stats 全库统计：总量、每年出版计数、分类计数
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := Collect(r.Context(), h.store, h.cache)
	if err != nil {
		log.Printf("[stats] Collect error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeSuccess(w, snapshot)
}

// Collect 采集统计快照，聚合部分走缓存（WebSocket 推送复用）
func Collect(ctx context.Context, store Store, c cache.Cache) (*model.LibraryStats, error) {
	pubs, err := store.CountPublications(ctx)
	if err != nil {
		return nil, err
	}
	authors, err := store.CountAuthors(ctx)
	if err != nil {
		return nil, err
	}
	users, err := store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	var byYear []model.YearCount
	hit, err := c.GetJSON(ctx, cache.KeyYearCounts, &byYear)
	if err != nil {
		log.Printf("[stats] cache get error: %v", err)
	}
	if !hit {
		byYear, err = store.YearCounts(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.SetJSON(ctx, cache.KeyYearCounts, byYear, cache.DefaultTTL); err != nil {
			log.Printf("[stats] cache set error: %v", err)
		}
	}

	var byCategory []model.AggregateCount
	hit, err = c.GetJSON(ctx, cache.KeyCategoryCounts, &byCategory)
	if err != nil {
		log.Printf("[stats] cache get error: %v", err)
	}
	if !hit {
		byCategory, err = store.CategoryCounts(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.SetJSON(ctx, cache.KeyCategoryCounts, byCategory, cache.DefaultTTL); err != nil {
			log.Printf("[stats] cache set error: %v", err)
		}
	}

	return &model.LibraryStats{
		TotalPublications: pubs,
		TotalAuthors:      authors,
		TotalUsers:        users,
		ByYear:            byYear,
		ByCategory:        byCategory,
	}, nil
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
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
