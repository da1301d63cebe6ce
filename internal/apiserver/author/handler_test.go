package author

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"library-admin/internal/shared/model"
	"library-admin/internal/shared/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.MockStore) {
	t.Helper()
	store := storage.NewMockStore()
	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func TestList(t *testing.T) {
	srv, store := newTestServer(t)
	for _, name := range []string{"Alice", "Bob"} {
		err := store.CreateAuthor(t.Context(), &model.Author{
			ID: "aut-" + name, Name: name, CreatedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("CreateAuthor: %v", err)
		}
	}

	resp, err := http.Get(srv.URL + "/api/v1/authors")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var env struct {
		Status string          `json:"status"`
		Data   []*model.Author `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Status != "success" || len(env.Data) != 2 {
		t.Errorf("status %q, %d authors", env.Status, len(env.Data))
	}
}

func TestGet_Detail(t *testing.T) {
	srv, store := newTestServer(t)
	err := store.CreateAuthor(t.Context(), &model.Author{
		ID: "aut-1", Name: "Alice", Profile: "Hydrologist", CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateAuthor: %v", err)
	}
	for _, pd := range []string{"2021-03-01", "2021-07-15", "2023-01-10"} {
		err := store.CreatePublication(t.Context(), &model.Publication{
			ID: "pub-" + pd, Title: "Study " + pd, Authors: []string{"Alice"}, PublishDate: pd,
		})
		if err != nil {
			t.Fatalf("CreatePublication: %v", err)
		}
	}

	resp, err := http.Get(srv.URL + "/api/v1/authors/aut-1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var env struct {
		Data authorDetail `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Author == nil || env.Data.Author.Name != "Alice" {
		t.Fatalf("author = %+v", env.Data.Author)
	}
	if len(env.Data.Publications) != 3 {
		t.Errorf("%d publications, want 3", len(env.Data.Publications))
	}

	// 每年计数：2021 两篇，2023 一篇
	years := map[int]int64{}
	for _, yc := range env.Data.ByYear {
		years[yc.Year] = yc.Count
	}
	if years[2021] != 2 || years[2023] != 1 {
		t.Errorf("by_year = %v", env.Data.ByYear)
	}
}

func TestGet_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/authors/aut-nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
