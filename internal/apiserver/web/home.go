package web

import (
	"log"
	"net/http"
	"strconv"

	"library-admin/internal/shared/cache"
	"library-admin/internal/shared/model"
	"library-admin/internal/shared/storage"
)

// homeData 首页模板数据
type homeData struct {
	Publications []*model.Publication
	Total        int64
	Page         int
	TotalPages   int64

	// 当前过滤条件（回填表单）
	Search      string
	Author      string
	Category    string
	PublishDate string
	Sort        string

	// 侧边栏
	AuthorCounts   []model.AggregateCount
	CategoryCounts []model.AggregateCount
	YearCounts     []model.YearCount
	PublishDates   []string
	Latest         []*model.Publication
}

// Home 首页：出版物网格 + 过滤/排序 + 侧边栏聚合
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	filter := storage.PublicationFilter{
		Search:      q.Get("search"),
		Author:      q.Get("author"),
		Category:    q.Get("category"),
		PublishDate: q.Get("publish_date"),
		Sort:        q.Get("sort"),
		Page:        page,
		PerPage:     storage.WebPageSize,
	}

	pubs, total, err := h.store.ListPublications(r.Context(), filter)
	if err != nil {
		log.Printf("[web.home] ListPublications error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	totalPages := total / storage.WebPageSize
	if total%storage.WebPageSize != 0 {
		totalPages++
	}

	data := homeData{
		Publications: pubs,
		Total:        total,
		Page:         page,
		TotalPages:   totalPages,
		Search:       filter.Search,
		Author:       filter.Author,
		Category:     filter.Category,
		PublishDate:  filter.PublishDate,
		Sort:         filter.Sort,
	}

	// 侧边栏聚合走缓存，失败只记日志不拦截页面
	data.AuthorCounts = h.cachedAuthorCounts(r)
	data.CategoryCounts = h.cachedCategoryCounts(r)
	data.YearCounts = h.cachedYearCounts(r)

	if dates, err := h.store.DistinctPublishDates(r.Context()); err == nil {
		data.PublishDates = dates
	} else {
		log.Printf("[web.home] DistinctPublishDates error: %v", err)
	}
	if latest, err := h.store.LatestPublications(r.Context(), 5); err == nil {
		data.Latest = latest
	} else {
		log.Printf("[web.home] LatestPublications error: %v", err)
	}

	h.render(w, r, "index.html", data)
}

func (h *Handler) cachedAuthorCounts(r *http.Request) []model.AggregateCount {
	var counts []model.AggregateCount
	hit, err := h.cache.GetJSON(r.Context(), cache.KeyAuthorCounts, &counts)
	if err != nil {
		log.Printf("[web] cache get %s: %v", cache.KeyAuthorCounts, err)
	}
	if hit {
		return counts
	}
	counts, err = h.store.AuthorCounts(r.Context())
	if err != nil {
		log.Printf("[web] AuthorCounts error: %v", err)
		return nil
	}
	if err := h.cache.SetJSON(r.Context(), cache.KeyAuthorCounts, counts, cache.DefaultTTL); err != nil {
		log.Printf("[web] cache set %s: %v", cache.KeyAuthorCounts, err)
	}
	return counts
}

func (h *Handler) cachedCategoryCounts(r *http.Request) []model.AggregateCount {
	var counts []model.AggregateCount
	hit, err := h.cache.GetJSON(r.Context(), cache.KeyCategoryCounts, &counts)
	if err != nil {
		log.Printf("[web] cache get %s: %v", cache.KeyCategoryCounts, err)
	}
	if hit {
		return counts
	}
	counts, err = h.store.CategoryCounts(r.Context())
	if err != nil {
		log.Printf("[web] CategoryCounts error: %v", err)
		return nil
	}
	if err := h.cache.SetJSON(r.Context(), cache.KeyCategoryCounts, counts, cache.DefaultTTL); err != nil {
		log.Printf("[web] cache set %s: %v", cache.KeyCategoryCounts, err)
	}
	return counts
}

func (h *Handler) cachedYearCounts(r *http.Request) []model.YearCount {
	var counts []model.YearCount
	hit, err := h.cache.GetJSON(r.Context(), cache.KeyYearCounts, &counts)
	if err != nil {
		log.Printf("[web] cache get %s: %v", cache.KeyYearCounts, err)
	}
	if hit {
		return counts
	}
	counts, err = h.store.YearCounts(r.Context())
	if err != nil {
		log.Printf("[web] YearCounts error: %v", err)
		return nil
	}
	if err := h.cache.SetJSON(r.Context(), cache.KeyYearCounts, counts, cache.DefaultTTL); err != nil {
		log.Printf("[web] cache set %s: %v", cache.KeyYearCounts, err)
	}
	return counts
}
