package service

import (
	"context"
	"log"
	"time"
)

// RefreshService 定时重新计算观影列表，预热海报缓存
type RefreshService struct {
	films    *FilmService
	limit    int
	interval time.Duration
}

// NewRefreshService 创建定时刷新服务；interval <= 0 时 Start 不做任何事
func NewRefreshService(films *FilmService, limit int, interval time.Duration) *RefreshService {
	return &RefreshService{films: films, limit: limit, interval: interval}
}

// Start 启动定时刷新，ctx 结束时退出
func (s *RefreshService) Start(ctx context.Context) {
	if s.interval <= 0 {
		log.Println("[RefreshService] 未启用定时刷新")
		return
	}

	ticker := time.NewTicker(s.interval)

	// 启动时先运行一次
	go s.runRefresh(ctx)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runRefresh(ctx)
			}
		}
	}()
}

func (s *RefreshService) runRefresh(ctx context.Context) {
	start := time.Now()
	films := s.films.GetAllFilms(ctx, s.limit)
	log.Printf("[RefreshService] 刷新完成，共 %d 条，耗时 %v", len(films), time.Since(start))
}
