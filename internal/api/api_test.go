package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Zenframe/internal/auth"
	"Zenframe/internal/domain"
	"Zenframe/internal/infrastructure/storage"
	"Zenframe/internal/logging"
	"Zenframe/internal/metrics"
	"Zenframe/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticReport struct {
	report usecase.CycleReport
	ok     bool
}

func (s staticReport) LastReport() (usecase.CycleReport, bool) { return s.report, s.ok }

type testServer struct {
	router *gin.Engine
	store  *storage.MemoryRepository
	tokens *auth.JWTManager
}

func newTestServer(t *testing.T, reports ReportSource) *testServer {
	t.Helper()

	reg := prometheus.NewRegistry()
	store := storage.NewMemoryRepository()
	tokens := auth.NewJWTManager("test-secret", time.Hour)

	router := NewRouter(Deps{
		Store:    store,
		Reports:  reports,
		Tokens:   tokens,
		Metrics:  metrics.NewHTTP(reg),
		Gatherer: reg,
		Logger:   logging.Discard(),
	})
	return &testServer{router: router, store: store, tokens: tokens}
}

func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) seed(t *testing.T, url string, positivity int, category string) string {
	t.Helper()
	_, err := s.store.Upsert(context.Background(), domain.EnrichedArticle{
		SourceURL:  url,
		Headline:   "Headline " + url,
		Excerpt:    "Excerpt.",
		Positivity: positivity,
		Category:   category,
		FullBody:   "Body.",
	})
	require.NoError(t, err)

	list, err := s.store.List(context.Background(), domain.ListFilter{})
	require.NoError(t, err)
	for _, a := range list {
		if a.SourceURL == url {
			return a.ID
		}
	}
	t.Fatalf("seeded article %s not found", url)
	return ""
}

func TestSignupAndLogin(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/signup", map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "Ada@Example.com",
		"password":   "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var signup SignupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signup))
	assert.NotEmpty(t, signup.UserID)
	userID, err := s.tokens.ValidateToken(signup.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, signup.UserID, userID)

	w = s.do(http.MethodPost, "/login", map[string]string{"email": "ada@example.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.NotEmpty(t, login.AccessToken)

	w = s.do(http.MethodPost, "/login", map[string]string{"email": "ada@example.com", "password": "wrong-pw"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/login", map[string]string{"email": "nobody@example.com", "password": "secret1"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupValidation(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"short password", map[string]string{"first_name": "A", "last_name": "B", "email": "a@b.io", "password": "12345"}},
		{"bad email", map[string]string{"first_name": "A", "last_name": "B", "email": "not-an-email", "password": "123456"}},
		{"missing name", map[string]string{"last_name": "B", "email": "a@b.io", "password": "123456"}},
		{"password over bcrypt limit", map[string]string{"first_name": "A", "last_name": "B", "email": "a@b.io", "password": strings.Repeat("p", 80)}},
	}
	for _, tc := range cases {
		w := s.do(http.MethodPost, "/signup", tc.body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.name)
	}

	longest := map[string]string{"first_name": "A", "last_name": "B", "email": "max@b.io", "password": strings.Repeat("p", 72)}
	assert.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/signup", longest, "").Code)

	valid := map[string]string{"first_name": "A", "last_name": "B", "email": "a@b.io", "password": "123456"}
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/signup", valid, "").Code)

	w := s.do(http.MethodPost, "/signup", valid, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered")
}

func TestListNews(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	s.seed(t, "https://n/1", 90, "science")
	s.seed(t, "https://n/2", 40, "science")
	s.seed(t, "https://n/3", 80, "sports")

	w := s.do(http.MethodGet, "/api/news?positivity=70&category=Science", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var items []domain.EnrichedArticle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "https://n/1", items[0].SourceURL)
	assert.Empty(t, items[0].FullBody)

	w = s.do(http.MethodGet, "/api/news?limit=abc&offset=-4&positivity=x", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Len(t, items, 3)

	w = s.do(http.MethodGet, "/api/news?limit=0", nil, "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Len(t, items, 1)
}

func TestListNewsEmptyIsArray(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/api/news", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestListFilterDefaults(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/news?limit=500&offset=7", nil)
	f := listFilter(c)
	assert.Equal(t, maxLimit, f.Limit)
	assert.Equal(t, 7, f.Offset)
	assert.Nil(t, f.MinPositivity)

	c.Request = httptest.NewRequest(http.MethodGet, "/api/news", nil)
	f = listFilter(c)
	assert.Equal(t, defaultLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)
}

func TestGetNews(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	id := s.seed(t, "https://n/1", 70, "science")

	w := s.do(http.MethodGet, "/api/news/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var detail NewsDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, id, detail.ID)
	assert.Equal(t, "Body.", detail.FullBody)
	assert.NotNil(t, detail.Comments)

	w = s.do(http.MethodGet, "/api/news/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid ID format")

	w = s.do(http.MethodGet, "/api/news/7b0c2c64-1f4a-4b8e-9d0e-1f2a3b4c5d6e", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddComment(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	id := s.seed(t, "https://n/1", 70, "science")

	token, err := s.tokens.GenerateToken("3f1c6d7e-0000-4000-8000-000000000001")
	require.NoError(t, err)

	w := s.do(http.MethodPost, "/api/news/"+id+"/add_comment", map[string]string{"comment_content": "nice"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/news/"+id+"/add_comment", map[string]string{"comment_content": "nice"}, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/news/"+id+"/add_comment", map[string]string{"comment_content": "  "}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/news/7b0c2c64-1f4a-4b8e-9d0e-1f2a3b4c5d6e/add_comment", map[string]string{"comment_content": "x"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/news/"+id+"/add_comment", map[string]string{"comment_content": "first"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/api/news/"+id+"/add_comment", map[string]string{"comment_content": "second"}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	var created CommentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.CommentID)

	w = s.do(http.MethodGet, "/api/news/"+id, nil, "")
	var detail NewsDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "second", detail.Comments[0].Content)
	assert.Equal(t, "3f1c6d7e-0000-4000-8000-000000000001", detail.Comments[0].UserID)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	w := s.do(http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	s = newTestServer(t, staticReport{report: usecase.CycleReport{Inserted: 4, Pages: 2}, ok: true})
	w = s.do(http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status    string              `json:"status"`
		LastCycle usecase.CycleReport `json:"last_cycle"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 4, body.LastCycle.Inserted)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	s.do(http.MethodGet, "/api/news", nil, "")
	w := s.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `zenframe_http_requests_total{method="GET",route="/api/news",status="200"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
