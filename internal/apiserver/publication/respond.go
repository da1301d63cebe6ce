package publication

import (
	"encoding/json"
	"net/http"
	"strconv"

	"library-admin/internal/shared/storage"
)

// envelope API 响应信封
type envelope struct {
	Status     string      `json:"status"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func newPagination(page, perPage int, total int64) *pagination {
	pages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		pages++
	}
	return &pagination{Page: page, PerPage: perPage, Total: total, TotalPages: pages}
}

// parsePagination 解析 page/per_page，约束在 [1, APIMaxLimit]
func parsePagination(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = storage.APIDefaultLimit
	}
	if perPage > storage.APIMaxLimit {
		perPage = storage.APIMaxLimit
	}
	return page, perPage
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Status: "success", Data: data})
}

func writePage(w http.ResponseWriter, data interface{}, p *pagination) {
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: data, Pagination: p})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Status: "error", Message: message})
}
