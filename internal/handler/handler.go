package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/filmlog/internal/config"
	"github.com/user/filmlog/internal/model"
	"github.com/user/filmlog/internal/service"
	"github.com/user/filmlog/internal/utils"
)

// recentDefaultLimit 最近观影默认条数
const recentDefaultLimit = 8

// Handler HTTP 处理器
type Handler struct {
	Config  *config.Config
	Service *service.FilmService
}

// NewHandler 创建处理器
func NewHandler(cfg *config.Config, films *service.FilmService) *Handler {
	return &Handler{
		Config:  cfg,
		Service: films,
	}
}

// limitQuery 列表接口的查询参数
type limitQuery struct {
	Limit *int `form:"limit" binding:"omitempty,min=0,max=5000"`
}

// FilmsPayload 列表响应数据
type FilmsPayload struct {
	Count int          `json:"count"`
	Films []model.Film `json:"films"`
}

// bindLimit 解析 limit，缺省时使用 fallback
func bindLimit(c *gin.Context, fallback int) (int, bool) {
	var q limitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, "limit 参数无效")
		return 0, false
	}
	if q.Limit == nil {
		return fallback, true
	}
	return *q.Limit, true
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Films 合并后的全部观影记录
// 列表为空时前端应展示"暂无记录"
func (h *Handler) Films(c *gin.Context) {
	limit, ok := bindLimit(c, h.Config.DefaultLimit)
	if !ok {
		return
	}

	films := h.Service.GetAllFilms(c.Request.Context(), limit)
	utils.Success(c, FilmsPayload{Count: len(films), Films: films})
}

// FilmTitles 全部片名（与 Films 顺序一致）
func (h *Handler) FilmTitles(c *gin.Context) {
	limit, ok := bindLimit(c, h.Config.DefaultLimit)
	if !ok {
		return
	}

	films := h.Service.GetAllFilms(c.Request.Context(), limit)
	titles := make([]string, 0, len(films))
	for _, f := range films {
		titles = append(titles, f.Title)
	}
	utils.Success(c, titles)
}

// RecentFilms 订阅源中最近的观影
func (h *Handler) RecentFilms(c *gin.Context) {
	limit, ok := bindLimit(c, recentDefaultLimit)
	if !ok {
		return
	}

	films := h.Service.RecentFilms(c.Request.Context(), limit)
	utils.Success(c, FilmsPayload{Count: len(films), Films: films})
}

// LatestFilm 最近一条观影
func (h *Handler) LatestFilm(c *gin.Context) {
	film, ok := h.Service.LatestFilm(c.Request.Context())
	if !ok {
		utils.NotFound(c, "暂无观影记录")
		return
	}
	utils.Success(c, film)
}
