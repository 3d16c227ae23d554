package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/filmlog/internal/handler"
	"github.com/user/filmlog/internal/middleware"
)

// New 创建 gin 引擎并注册中间件与路由
func New(h *handler.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	RegisterRoutes(r, h)
	return r
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查与指标
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==================== 观影记录 API ====================
	api := r.Group("/api/films")
	{
		api.GET("", h.Films)
		api.GET("/titles", h.FilmTitles)
		api.GET("/recent", h.RecentFilms)
		api.GET("/latest", h.LatestFilm)
	}
}
