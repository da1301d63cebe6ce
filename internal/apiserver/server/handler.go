// Package server 路由配置与核心基础设施
//
// 本文件组装 HTTP 路由，将请求分发到各领域独立包。
// 仍保留在本包的模块：
//   - ws.go: 统计 WebSocket 推送
//   - metrics.go: Prometheus 指标
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"library-admin/internal/apiserver/auth"
	"library-admin/internal/apiserver/author"
	"library-admin/internal/apiserver/publication"
	"library-admin/internal/apiserver/stats"
	"library-admin/internal/apiserver/web"
	"library-admin/internal/config"
	"library-admin/internal/shared/cache"
	"library-admin/internal/shared/filestore"
	"library-admin/internal/shared/storage"
	"library-admin/internal/thumbnail"
)

// Handler HTTP 服务入口
//
// 负责：
//   - 组装各领域包的路由（auth/publication/author/stats/web）
//   - 指标中间件与 /metrics 端点
//   - 统计 WebSocket 推送
type Handler struct {
	cfg   *config.Config
	store storage.Store
	cache cache.Cache
	files filestore.Store

	metrics *Metrics
	statsWS *StatsWS
}

// NewHandler 创建 Handler 实例
func NewHandler(cfg *config.Config, store storage.Store, c cache.Cache, files filestore.Store) *Handler {
	h := &Handler{
		cfg:   cfg,
		store: store,
		cache: c,
		files: files,
	}
	h.metrics = NewMetrics("library")
	h.statsWS = NewStatsWS(store, c, h.metrics)
	return h
}

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查:
//   - GET /health - 服务健康检查
//
// 认证 (Auth):
//   - POST /api/v1/auth/login - 登录获取 Token
//   - GET  /api/v1/auth/me    - 当前用户信息
//
// 出版物 (Publication):
//   - GET    /api/v1/publications          - 列出出版物（分页/过滤）
//   - POST   /api/v1/publications          - 创建出版物（editor+）
//   - GET    /api/v1/publications/{id}     - 获取详情
//   - PUT    /api/v1/publications/{id}     - 更新（editor+）
//   - DELETE /api/v1/publications/{id}     - 删除（editor+）
//   - POST   /api/v1/publications/{id}/download - 记录下载
//   - GET    /api/v1/search                - 标题/作者检索
//   - GET    /api/v1/categories            - 分类计数
//
// 作者 (Author):
//   - GET /api/v1/authors      - 列出作者
//   - GET /api/v1/authors/{id} - 作者详情及出版物
//
// 统计 (Stats):
//   - GET /api/v1/stats - 全库统计
//
// WebSocket:
//   - GET /ws/stats - 统计实时推送
//
// 其余路径由 web 包提供页面路由（首页、管理后台、登录注册等）。
func (h *Handler) Router() (http.Handler, error) {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	authCfg := auth.Config{
		Secret:   h.cfg.SecretKey,
		TokenTTL: h.cfg.TokenTTL,
	}

	// Auth 接口
	authHandler := auth.NewHandler(h.store, authCfg)
	authHandler.RegisterRoutes(mux)

	// Publication 接口
	pubHandler := publication.NewHandler(h.store, h.cache, authCfg)
	pubHandler.RegisterRoutes(mux)

	// Author 接口
	authorHandler := author.NewHandler(h.store)
	authorHandler.RegisterRoutes(mux)

	// Stats 接口
	statsHandler := stats.NewHandler(h.store, h.cache)
	statsHandler.RegisterRoutes(mux)

	// Web 页面路由
	sessions := web.NewSessions(h.cfg.SecretKey, h.cfg.CookieSecure)
	thumbOpts := thumbnail.Options{
		Width:   h.cfg.ThumbnailWidth,
		Quality: h.cfg.ThumbnailQuality,
	}
	webHandler, err := web.NewHandler(h.store, h.cache, h.files, sessions, thumbOpts)
	if err != nil {
		return nil, err
	}
	webHandler.RegisterRoutes(mux)

	// 应用指标中间件
	instrumented := h.metrics.MetricsMiddleware(mux)

	// 顶层路由，WebSocket 绕过 metrics 中间件（避免 http.Hijacker 问题）
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /ws/stats", h.statsWS.HandleWebSocket)
	topMux.Handle("/", instrumented)

	return topMux, nil
}

// Health 健康检查
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := "ok"
	code := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
