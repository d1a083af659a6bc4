package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/NewsBrief/internal/storage"
)

type fakeReader struct {
	articles  []storage.Article
	err       error
	lastLimit int
}

func (f *fakeReader) Latest(ctx context.Context, limit int) ([]storage.Article, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.articles) {
		return f.articles[:limit], nil
	}
	return f.articles, nil
}

func (f *fakeReader) Count(ctx context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.articles)), nil
}

type listResponse struct {
	Code string            `json:"code"`
	Data []storage.Article `json:"data"`
}

func newTestRouter(store Reader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewServer(store, nil).RegisterRoutes(r)
	return r
}

func doGet(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doGet(t, newTestRouter(&fakeReader{}), "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["status"] != "ok" {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
}

func TestListNewsDefaultLimit(t *testing.T) {
	store := &fakeReader{}
	for i := 0; i < 10; i++ {
		store.articles = append(store.articles, storage.Article{ID: uint(10 - i), Title: "t"})
	}
	w := doGet(t, newTestRouter(store), "/api/v1/news")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp listResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "ok" || len(resp.Data) != DefaultLimit {
		t.Fatalf("code=%q len=%d", resp.Code, len(resp.Data))
	}
	if store.lastLimit != DefaultLimit {
		t.Fatalf("limit passed = %d", store.lastLimit)
	}
}

func TestListNewsLimitParsing(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{"?limit=3", 3},
		{"?limit=0", 0},
		{"?limit=abc", DefaultLimit},
		{"?limit=-1", DefaultLimit},
		{"?limit=100000", storage.RetentionCeiling * 2},
	}
	for _, tc := range cases {
		store := &fakeReader{}
		w := doGet(t, newTestRouter(store), "/api/v1/news"+tc.query)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tc.query, w.Code)
		}
		if store.lastLimit != tc.want {
			t.Fatalf("%s: limit = %d, want %d", tc.query, store.lastLimit, tc.want)
		}
	}
}

func TestListNewsEmptyArchiveReturnsArray(t *testing.T) {
	w := doGet(t, newTestRouter(&fakeReader{}), "/api/v1/news")
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw["data"]) != "[]" {
		t.Fatalf("data = %s, want []", raw["data"])
	}
}

func TestListNewsStoreError(t *testing.T) {
	w := doGet(t, newTestRouter(&fakeReader{err: errors.New("db down")}), "/api/v1/news")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestStats(t *testing.T) {
	store := &fakeReader{articles: make([]storage.Article, 4)}
	w := doGet(t, newTestRouter(store), "/api/v1/stats")
	var resp struct {
		Data struct {
			NewsCount int64 `json:"news_count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.NewsCount != 4 {
		t.Fatalf("news_count = %d", resp.Data.NewsCount)
	}
}
