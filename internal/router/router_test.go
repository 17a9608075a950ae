package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/stemsi/exstem-paper/internal/config"
	"github.com/stemsi/exstem-paper/internal/handler"
)

func newTestRouter() *gin.Engine {
	handlers := &Handlers{
		Paper:    &handler.PaperHandler{},
		Section:  &handler.SectionHandler{},
		Question: &handler.QuestionHandler{},
		Template: &handler.TemplateHandler{},
		Catalog:  &handler.CatalogHandler{},
		Preview:  &handler.PreviewHandler{},
	}
	return SetupRouter(handlers, nil, &config.Config{GinMode: gin.TestMode, AllowedOrigins: []string{"https://paper.example.com"}})
}

func TestHealth(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRoutesRequireToken(t *testing.T) {
	r := newTestRouter()
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/question-types"},
		{http.MethodGet, "/api/v1/papers/p1/draft"},
		{http.MethodPost, "/api/v1/papers/p1/sections"},
		{http.MethodPut, "/api/v1/papers/p1/groups/g1"},
		{http.MethodDelete, "/api/v1/papers/p1/questions/q1"},
		{http.MethodPost, "/api/v1/templates/t1/instantiate"},
		{http.MethodGet, "/api/v1/classes"},
		{http.MethodDelete, "/api/v1/study-materials/m1"},
		{http.MethodGet, "/ws/v1/papers/p1/preview"},
	}
	for _, rt := range routes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.method, rt.path)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/papers/p1/draft", nil)
	req.Header.Set("Origin", "https://paper.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://paper.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
