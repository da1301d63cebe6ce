// Package server Prometheus 指标导出
package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"library-admin/internal/shared/model"
)

// Metrics 包含所有服务指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// 馆藏指标
	PublicationsTotal prometheus.Gauge
	AuthorsTotal      prometheus.Gauge
	UsersTotal        prometheus.Gauge

	// WebSocket 指标
	WSConnectionsActive prometheus.Gauge
}

// NewMetrics 创建指标实例
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		PublicationsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "publications_total",
				Help:      "Total publications in the catalogue",
			},
		),
		AuthorsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "authors_total",
				Help:      "Total author profiles",
			},
		),
		UsersTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "users_total",
				Help:      "Total registered users",
			},
		),
		WSConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_connections_active",
				Help:      "Active WebSocket connections",
			},
		),
	}
}

// UpdateLibraryGauges 用统计快照刷新馆藏规模指标
func (m *Metrics) UpdateLibraryGauges(stats *model.LibraryStats) {
	m.PublicationsTotal.Set(float64(stats.TotalPublications))
	m.AuthorsTotal.Set(float64(stats.TotalAuthors))
	m.UsersTotal.Set(float64(stats.TotalUsers))
}

// MetricsMiddleware 创建 HTTP 指标中间件
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		// 包装 ResponseWriter 以捕获状态码
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// responseWriter 包装 http.ResponseWriter 以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// normalizePath 规范化路径，将 ID 替换为占位符，避免高基数标签
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/v1/publications/") && len(path) > len("/api/v1/publications/"):
		return "/api/v1/publications/{id}"
	case strings.HasPrefix(path, "/api/v1/authors/") && len(path) > len("/api/v1/authors/"):
		return "/api/v1/authors/{id}"
	case strings.HasPrefix(path, "/view_pdf/") && len(path) > len("/view_pdf/"):
		return "/view_pdf/{id}"
	case strings.HasPrefix(path, "/author/") && len(path) > len("/author/"):
		return "/author/{id}"
	case strings.HasPrefix(path, "/auth/favorites/") && len(path) > len("/auth/favorites/"):
		return "/auth/favorites/{id}"
	case strings.HasPrefix(path, "/admin/authors/edit/") && len(path) > len("/admin/authors/edit/"):
		return "/admin/authors/edit/{id}"
	case strings.HasPrefix(path, "/admin/authors/delete/") && len(path) > len("/admin/authors/delete/"):
		return "/admin/authors/delete/{id}"
	case strings.HasPrefix(path, "/admin/edit/") && len(path) > len("/admin/edit/"):
		return "/admin/edit/{id}"
	case strings.HasPrefix(path, "/admin/delete/") && len(path) > len("/admin/delete/"):
		return "/admin/delete/{id}"
	case strings.HasPrefix(path, "/uploads/"):
		return "/uploads/{file}"
	case strings.HasPrefix(path, "/static/"):
		return "/static/{file}"
	default:
		return path
	}
}

// MetricsHandler 返回 Prometheus HTTP Handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
