package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agusx1211/notebake"
)

func newTestServer(t *testing.T, apiKey string) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"A.md": "Intro\n\n![[B]]\n",
		"B.md": "bee [[C|sea]]",
		"C.md": "never inlined",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	b, err := notebake.Open(root, notebake.Options{})
	require.NoError(t, err)
	return New(b, nil, Config{APIKey: apiKey, Settings: notebake.DefaultSettings()}), root
}

func do(s *Server, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, "secret")
	rec := do(s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestBakeMarkdown(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := do(s, http.MethodGet, "/api/bake?input=A", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Intro\n\nbee sea\n", rec.Body.String())
}

func TestBakeJSONWithOverrides(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := do(s, http.MethodGet, "/api/bake?input=A.md&embeds=false&format=json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Input   string `json:"input"`
		Content string `json:"content"`
		Words   int    `json:"words"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Intro\n\n![[B]]\n", body.Content)
	assert.Equal(t, 2, body.Words)
}

func TestBakeErrors(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := do(s, http.MethodGet, "/api/bake", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodGet, "/api/bake?input=A&links=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodGet, "/api/bake?input=missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}

func TestBakeToFile(t *testing.T) {
	s, root := newTestServer(t, "")

	rec := do(s, http.MethodPost, "/api/bake", `{"input":"A","links":false}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"input":"A","output":"A.baked.md"}`, rec.Body.String())

	data, err := os.ReadFile(filepath.Join(root, "A.baked.md"))
	require.NoError(t, err)
	assert.Equal(t, "Intro\n\nbee [[C|sea]]\n", string(data))

	rec = do(s, http.MethodPost, "/api/bake", `{"output":"x.md"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodPost, "/api/bake", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCount(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := do(s, http.MethodGet, "/api/count?input=A", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"input":"A","words":3}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	s, _ := newTestServer(t, "secret")

	rec := do(s, http.MethodGet, "/api/count?input=A", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(s, http.MethodGet, "/api/count?input=A", "", map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(s, http.MethodGet, "/api/count?input=A", "", map[string]string{"Authorization": "Bearer secret"})
	assert.Equal(t, http.StatusOK, rec.Code)
}
