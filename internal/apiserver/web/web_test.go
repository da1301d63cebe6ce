package web

import (
	"bytes"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"library-admin/internal/apiserver/auth"
	"library-admin/internal/shared/cache"
	"library-admin/internal/shared/filestore"
	"library-admin/internal/shared/model"
	"library-admin/internal/shared/storage"
	"library-admin/internal/thumbnail"
)

// testEnv 一套完整的 Web 测试环境：mock 存储 + 本地文件 + 带 Cookie 的客户端
type testEnv struct {
	srv    *httptest.Server
	store  *storage.MockStore
	files  *filestore.LocalStore
	client *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := storage.NewMockStore()
	files, err := filestore.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	sessions := NewSessions("test-session-secret", false)
	h, err := NewHandler(store, cache.NewMemoryCache(), files, sessions,
		thumbnail.Options{Width: 400, Quality: 85})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &testEnv{
		srv:    srv,
		store:  store,
		files:  files,
		client: &http.Client{Jar: jar},
	}
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := e.client.PostForm(e.srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// seedUser 直接写库创建用户
func (e *testEnv) seedUser(t *testing.T, username, password string, role model.Role) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := &model.User{
		ID:           auth.NewID("usr"),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := e.store.CreateUser(t.Context(), user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

// login 通过表单登录，使客户端携带会话 Cookie
func (e *testEnv) login(t *testing.T, username, password string) {
	t.Helper()
	resp := e.postForm(t, "/auth/login", url.Values{
		"username": {username},
		"password": {password},
	})
	resp.Body.Close()
}

func bodyOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

// ============================================================================
// 注册 / 登录
// ============================================================================

func TestRegisterAndLogin(t *testing.T) {
	e := newTestEnv(t)

	resp := e.postForm(t, "/auth/register", url.Values{
		"username":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
	})
	resp.Body.Close()

	user, err := e.store.GetUserByUsername(t.Context(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if user == nil {
		t.Fatal("user not created")
	}
	if user.Role != model.RoleViewer {
		t.Errorf("role = %q, want viewer", user.Role)
	}
	if user.LastLogin != nil {
		t.Error("last_login set before first login")
	}

	e.login(t, "alice", "secret1")

	user, _ = e.store.GetUserByUsername(t.Context(), "alice")
	if user.LastLogin == nil {
		t.Error("last_login not set after login")
	}

	// 登录后可访问收藏页
	resp = e.get(t, "/auth/favorites")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("favorites status = %d", resp.StatusCode)
	}
	body := bodyOf(t, resp)
	if !strings.Contains(body, "alice") {
		t.Error("logged-in username missing from page")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "alice", "secret1", model.RoleViewer)

	e.login(t, "alice", "wrong")

	user, _ := e.store.GetUserByUsername(t.Context(), "alice")
	if user.LastLogin != nil {
		t.Error("last_login changed by failed login")
	}
	// 会话未建立，收藏页被带去登录页
	resp := e.get(t, "/auth/favorites")
	body := bodyOf(t, resp)
	if !strings.Contains(body, "Login") {
		t.Error("anonymous user not redirected to login")
	}
}

func TestRegister_Validation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{"密码过短", url.Values{"username": {"u"}, "email": {"u@x.com"}, "password": {"abc"}, "confirm_password": {"abc"}}},
		{"两次密码不一致", url.Values{"username": {"u"}, "email": {"u@x.com"}, "password": {"secret1"}, "confirm_password": {"secret2"}}},
		{"缺字段", url.Values{"username": {"u"}, "password": {"secret1"}, "confirm_password": {"secret1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := e.postForm(t, "/auth/register", tt.form)
			resp.Body.Close()
			count, _ := e.store.CountUsers(t.Context())
			if count != 0 {
				t.Errorf("user created from invalid form: count=%d", count)
			}
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "alice", "secret1", model.RoleViewer)

	resp := e.postForm(t, "/auth/register", url.Values{
		"username":         {"alice"},
		"email":            {"other@example.com"},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
	})
	resp.Body.Close()

	count, _ := e.store.CountUsers(t.Context())
	if count != 1 {
		t.Errorf("duplicate registration created a user: count=%d", count)
	}
}

// ============================================================================
// 角色门禁
// ============================================================================

// TestRoleGating_ViewerCannotMutate viewer 被重定向且数据不变
func TestRoleGating_ViewerCannotMutate(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "viewer1", "secret1", model.RoleViewer)
	err := e.store.CreatePublication(t.Context(), &model.Publication{
		ID: "pub-1", Title: "Protected Study", Authors: []string{"Alice"},
	})
	if err != nil {
		t.Fatalf("CreatePublication: %v", err)
	}

	e.login(t, "viewer1", "secret1")

	resp := e.postForm(t, "/admin/delete/pub-1", url.Values{})
	body := bodyOf(t, resp)

	// 带 flash 落回首页
	if !strings.Contains(body, "permission") {
		t.Error("permission flash missing")
	}
	pub, _ := e.store.GetPublicationByID(t.Context(), "pub-1")
	if pub == nil {
		t.Fatal("publication deleted by viewer")
	}
}

func TestRoleGating_AnonymousRedirectedToLogin(t *testing.T) {
	e := newTestEnv(t)

	resp := e.get(t, "/admin/publications")
	body := bodyOf(t, resp)
	if !strings.Contains(body, "Please log in") {
		t.Error("login flash missing for anonymous user")
	}
}

func TestRoleGating_DashboardAdminOnly(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "editor1", "secret1", model.RoleEditor)
	e.login(t, "editor1", "secret1")

	resp := e.get(t, "/admin/dashboard")
	body := bodyOf(t, resp)
	if !strings.Contains(body, "permission") {
		t.Error("editor reached admin dashboard")
	}

	// editor 可进出版物管理
	resp = e.get(t, "/admin/publications")
	body = bodyOf(t, resp)
	if !strings.Contains(body, "Publications") {
		t.Error("editor blocked from publications management")
	}
}

// ============================================================================
// 浏览
// ============================================================================

// TestHome_PageSize 首页固定 9 条一页
func TestHome_PageSize(t *testing.T) {
	e := newTestEnv(t)
	for i := 0; i < 12; i++ {
		err := e.store.CreatePublication(t.Context(), &model.Publication{
			ID:      auth.NewID("pub"),
			Title:   "Study " + string(rune('A'+i)),
			Authors: []string{"Alice"},
		})
		if err != nil {
			t.Fatalf("CreatePublication: %v", err)
		}
	}

	resp := e.get(t, "/")
	body := bodyOf(t, resp)
	if got := strings.Count(body, `class="card-title"`); got != 9 {
		t.Errorf("page 1 shows %d cards, want 9", got)
	}

	resp = e.get(t, "/?page=2")
	body = bodyOf(t, resp)
	if got := strings.Count(body, `class="card-title"`); got != 3 {
		t.Errorf("page 2 shows %d cards, want 3", got)
	}
}

// TestViewPDF_CounterMonotonic 两次查看浏览计数 +2
func TestViewPDF_CounterMonotonic(t *testing.T) {
	e := newTestEnv(t)
	err := e.store.CreatePublication(t.Context(), &model.Publication{
		ID: "pub-1", Title: "Study", Authors: []string{"Alice"}, PDFFilename: "study.pdf",
	})
	if err != nil {
		t.Fatalf("CreatePublication: %v", err)
	}

	for i := 0; i < 2; i++ {
		resp := e.get(t, "/view_pdf/pub-1")
		resp.Body.Close()
	}

	pub, _ := e.store.GetPublicationByID(t.Context(), "pub-1")
	if pub.ViewCount != 2 {
		t.Errorf("view_count = %d, want 2", pub.ViewCount)
	}
}

// ============================================================================
// 上传与封面
// ============================================================================

// multipartForm 构造 multipart 表单
func multipartForm(t *testing.T, fields map[string]string, fileField, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField %s: %v", k, err)
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// TestAddPublication_CorruptPDF 损坏的 PDF 仍创建记录，封面回退默认
func TestAddPublication_CorruptPDF(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "alice", "secret1", model.RoleViewer)
	e.login(t, "alice", "secret1")

	body, contentType := multipartForm(t, map[string]string{
		"title":        "Broken Upload",
		"authors":      "Alice, Bob",
		"category":     "Hydrology",
		"publish_date": "2024-03-01",
	}, "pdf", "broken.pdf", []byte("this is not a pdf"))

	resp, err := e.client.Post(e.srv.URL+"/admin/add", contentType, body)
	if err != nil {
		t.Fatalf("POST /admin/add: %v", err)
	}
	resp.Body.Close()

	pubs, total, err := e.store.ListPublications(t.Context(), storage.PublicationFilter{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListPublications: %v", err)
	}
	if total != 1 {
		t.Fatalf("publication count = %d, want 1", total)
	}
	pub := pubs[0]
	if pub.Title != "Broken Upload" {
		t.Errorf("title = %q", pub.Title)
	}
	if len(pub.Authors) != 2 {
		t.Errorf("authors = %v", pub.Authors)
	}
	if pub.CoverFilename != DefaultCoverFilename {
		t.Errorf("cover = %q, want %q", pub.CoverFilename, DefaultCoverFilename)
	}
	if pub.PDFFilename != "broken.pdf" {
		t.Errorf("pdf = %q", pub.PDFFilename)
	}
}

// TestAddPublication_GeneratedCover 无封面时由 PDF 首页生成
func TestAddPublication_GeneratedCover(t *testing.T) {
	pdfBytes, err := os.ReadFile("testdata/minimal.pdf")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	e := newTestEnv(t)
	e.seedUser(t, "alice", "secret1", model.RoleViewer)
	e.login(t, "alice", "secret1")

	body, contentType := multipartForm(t, map[string]string{
		"title":   "Rendered Upload",
		"authors": "Alice",
	}, "pdf", "minimal.pdf", pdfBytes)

	resp, err := e.client.Post(e.srv.URL+"/admin/add", contentType, body)
	if err != nil {
		t.Fatalf("POST /admin/add: %v", err)
	}
	resp.Body.Close()

	pubs, _, err := e.store.ListPublications(t.Context(), storage.PublicationFilter{Page: 1, PerPage: 10})
	if err != nil || len(pubs) != 1 {
		t.Fatalf("ListPublications: %v (%d)", err, len(pubs))
	}
	pub := pubs[0]
	if pub.CoverFilename != "minimal_cover.jpg" {
		t.Fatalf("cover = %q, want minimal_cover.jpg", pub.CoverFilename)
	}

	// 生成的封面按配置宽度缩放
	path, ok := e.files.LocalPath(filestore.CategoryCover, pub.CoverFilename)
	if !ok {
		t.Fatal("cover not on local store")
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open cover: %v", err)
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode cover: %v", err)
	}
	if cfg.Width != 400 {
		t.Errorf("cover width = %d, want 400", cfg.Width)
	}
}

func TestServeUpload_UnknownCategory(t *testing.T) {
	e := newTestEnv(t)

	resp := e.get(t, "/uploads/secrets/passwd")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
