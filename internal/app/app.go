package app

import (
	"log"

	"github.com/user/filmlog/internal/config"
	"github.com/user/filmlog/internal/service"
	"github.com/user/filmlog/internal/utils"
)

// App 组装好的服务集合
type App struct {
	Config  *config.Config
	Films   *service.FilmService
	Posters *service.PosterEnricher
	Refresh *service.RefreshService
}

// Option 组装选项
type Option func(*options)

type options struct {
	noPosters bool
}

// WithoutPosters 不补充海报（命令行离线查看时使用）
func WithoutPosters() Option {
	return func(o *options) { o.noPosters = true }
}

// New 按配置组装归档、订阅源、合并器与海报补充
func New(cfg *config.Config, opts ...Option) *App {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	loc := cfg.Location()
	client := utils.NewHTTPClient(cfg.PosterTimeout, cfg.UserAgent)

	archive := service.NewFileArchive(cfg.ArchivePath, loc)
	feed := service.NewHTTPFeed(cfg.FeedURL, cfg.FeedMaxItems, cfg.FeedCacheTTL, client)
	merger := service.NewMerger(service.NewResolver(loc), service.PolicyByName(cfg.MergePolicy))

	a := &App{Config: cfg}

	var enricher service.Enricher
	if !o.noPosters {
		a.Posters = service.NewPosterEnricher(client, utils.NewMemoryPosterCache(), cfg.PosterConcurrency, cfg.PosterRPS)
		enricher = a.Posters
	}

	a.Films = service.NewFilmService(archive, feed, merger, enricher)
	a.Refresh = service.NewRefreshService(a.Films, cfg.DefaultLimit, cfg.RefreshInterval)

	log.Printf("[App] 归档: %s，订阅源: %q，合并策略: %s，时区: %s",
		cfg.ArchivePath, cfg.FeedURL, merger.Policy().Name(), loc)
	return a
}
