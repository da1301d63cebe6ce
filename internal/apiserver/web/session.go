package web

import (
	"net/http"

	"github.com/gorilla/sessions"

	"library-admin/internal/apiserver/auth"
	"library-admin/internal/shared/model"
)

const sessionName = "library_session"

// 会话键，只存基本类型，避免 gob 注册
const (
	sessKeyUserID   = "user_id"
	sessKeyUsername = "username"
	sessKeyRole     = "role"
)

// Sessions 基于 gorilla/sessions 的 Cookie 会话
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions 创建会话存储
func NewSessions(secret string, secure bool) *Sessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

// CurrentUser 从会话读取当前用户，未登录返回 nil
func (s *Sessions) CurrentUser(r *http.Request) *auth.AuthUser {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		return nil
	}
	id, _ := sess.Values[sessKeyUserID].(string)
	if id == "" {
		return nil
	}
	username, _ := sess.Values[sessKeyUsername].(string)
	role, _ := sess.Values[sessKeyRole].(string)
	return &auth.AuthUser{ID: id, Username: username, Role: model.Role(role)}
}

// SignIn 将用户写入会话
func (s *Sessions) SignIn(w http.ResponseWriter, r *http.Request, user *model.User) error {
	sess, _ := s.store.Get(r, sessionName)
	sess.Values[sessKeyUserID] = user.ID
	sess.Values[sessKeyUsername] = user.Username
	sess.Values[sessKeyRole] = string(user.Role)
	return sess.Save(r, w)
}

// SignOut 清空会话
func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, sessionName)
	delete(sess.Values, sessKeyUserID)
	delete(sess.Values, sessKeyUsername)
	delete(sess.Values, sessKeyRole)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// Flash 添加一条提示消息
func (s *Sessions) Flash(w http.ResponseWriter, r *http.Request, message string) {
	sess, _ := s.store.Get(r, sessionName)
	sess.AddFlash(message)
	_ = sess.Save(r, w)
}

// PopFlashes 取出并清空提示消息
func (s *Sessions) PopFlashes(w http.ResponseWriter, r *http.Request) []string {
	sess, _ := s.store.Get(r, sessionName)
	raw := sess.Flashes()
	if len(raw) > 0 {
		_ = sess.Save(r, w)
	}
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			out = append(out, msg)
		}
	}
	return out
}
