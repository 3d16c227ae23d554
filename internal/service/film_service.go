package service

import (
	"context"
	"log"

	"github.com/user/filmlog/internal/metrics"
	"github.com/user/filmlog/internal/model"
	"golang.org/x/sync/errgroup"
)

// Enricher 对截断后的列表做补充
type Enricher interface {
	Enrich(ctx context.Context, films []model.Film) []model.Film
}

// FilmService 观影记录服务：归档 + 订阅源 -> 合并 -> 排序截断 -> 补海报
type FilmService struct {
	archive  ArchiveSource
	feed     FeedSource
	merger   *Merger
	enricher Enricher
}

// NewFilmService 创建观影记录服务；enricher 可以为 nil（不补海报）
func NewFilmService(archive ArchiveSource, feed FeedSource, merger *Merger, enricher Enricher) *FilmService {
	return &FilmService{
		archive:  archive,
		feed:     feed,
		merger:   merger,
		enricher: enricher,
	}
}

// GetAllFilms 返回最多 limit 条合并后的观影记录，按观看时间倒序
// 任一来源失败只会让该来源贡献空列表，本方法不返回错误
func (s *FilmService) GetAllFilms(ctx context.Context, limit int) []model.Film {
	if limit <= 0 {
		return []model.Film{}
	}

	archive, recent := s.readSources(ctx)

	// 1. 合并（全部记录都参与，limit 只限制输出）
	merged := s.merger.Merge(archive, recent)
	metrics.MergedFilms.Set(float64(len(merged)))

	// 2. 排序并截断
	page := Paginate(SortByWatchedDesc(merged), limit)

	// 3. 只对截断后的记录补海报
	if s.enricher != nil {
		page = s.enricher.Enrich(ctx, page)
	}

	log.Printf("[FilmService] 归档 %d 条，订阅源 %d 条，合并后 %d 条，返回 %d 条",
		len(archive), len(recent), len(merged), len(page))
	return page
}

// RecentFilms 只取订阅源中最近的 n 条
func (s *FilmService) RecentFilms(ctx context.Context, n int) []model.Film {
	if s.feed == nil {
		return []model.Film{}
	}
	films, err := s.feed.Recent(ctx)
	if err != nil {
		log.Printf("[FilmService] 订阅源不可用: %v", err)
		return []model.Film{}
	}
	return Paginate(films, n)
}

// LatestFilm 订阅源中最近的一条
func (s *FilmService) LatestFilm(ctx context.Context) (model.Film, bool) {
	films := s.RecentFilms(ctx, 1)
	if len(films) == 0 {
		return model.Film{}, false
	}
	return films[0], true
}

// readSources 并发读取归档与订阅源，两者都完成后返回
func (s *FilmService) readSources(ctx context.Context) (archive, recent []model.Film) {
	var g errgroup.Group

	if s.archive != nil {
		g.Go(func() error {
			films, err := s.archive.Films(ctx)
			if err != nil {
				log.Printf("[FilmService] 读取归档失败，按空列表处理: %v", err)
				return nil
			}
			archive = films
			return nil
		})
	}

	if s.feed != nil {
		g.Go(func() error {
			films, err := s.feed.Recent(ctx)
			if err != nil {
				log.Printf("[FilmService] 订阅源不可用，按空列表处理: %v", err)
				return nil
			}
			recent = films
			return nil
		})
	}

	_ = g.Wait()
	return archive, recent
}
