package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"library-admin/internal/shared/model"
)

// RequireToken 创建 JWT 认证中间件
// 提取 Bearer 令牌，解析后将 AuthUser 注入 context。
// 缺失/过期/伪造的令牌统一返回 401，不区分原因。
func RequireToken(cfg Config, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "missing authorization header")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			unauthorized(w, "invalid authorization header")
			return
		}

		claims, err := ParseToken(cfg, parts[1])
		if err != nil {
			log.Printf("[auth] token parse error: %v", err)
			unauthorized(w, "invalid or expired token")
			return
		}

		// 角色取自令牌声明，降级在令牌过期后才生效
		user := &AuthUser{
			ID:       claims.Subject,
			Username: claims.Username,
			Role:     model.Role(claims.Role),
		}
		next(w, r.WithContext(WithAuthUser(r.Context(), user)))
	}
}

// RequireRole 角色门槛中间件，须套在 RequireToken 内层
func RequireRole(required model.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetAuthUser(r.Context())
		if user == nil {
			unauthorized(w, "not authenticated")
			return
		}
		if !user.Role.AtLeast(required) {
			forbidden(w, string(required)+" access required")
			return
		}
		next(w, r)
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	writeEnvelopeError(w, http.StatusUnauthorized, message)
}

func forbidden(w http.ResponseWriter, message string) {
	writeEnvelopeError(w, http.StatusForbidden, message)
}

func writeEnvelopeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": message,
	})
}
