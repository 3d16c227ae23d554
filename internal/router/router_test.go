package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/user/filmlog/internal/config"
	"github.com/user/filmlog/internal/handler"
	"github.com/user/filmlog/internal/service"
	"github.com/user/filmlog/internal/utils"
)

func TestRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	films := service.NewFilmService(
		service.NewFileArchive("", time.UTC),
		service.NewHTTPFeed("", 10, 0, utils.NewHTTPClient(time.Second, "")),
		service.NewMerger(service.NewResolver(time.UTC), nil),
		nil,
	)
	r := New(handler.NewHandler(&config.Config{DefaultLimit: 10}, films))

	for path, code := range map[string]int{
		"/health":           http.StatusOK,
		"/metrics":          http.StatusOK,
		"/api/films":        http.StatusOK,
		"/api/films/recent": http.StatusOK,
		"/api/films/titles": http.StatusOK,
		"/api/films/latest": http.StatusNotFound,
		"/nope":             http.StatusNotFound,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, code, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), path)
	}
}
