package service

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/filmlog/internal/metrics"
	"github.com/user/filmlog/internal/model"
	"github.com/user/filmlog/internal/utils"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// DefaultPosterConcurrency 默认并发宽度
const DefaultPosterConcurrency = 8

// posterAttempts 首次请求加一次重试
const posterAttempts = 2

// ErrNoPoster 页面中没有海报 meta 标签
var ErrNoPoster = errors.New("页面中没有海报")

// metaImageSelectors 依次尝试的 meta 标签，先 Open Graph 后 Twitter
var metaImageSelectors = []string{
	`meta[property="og:image"]`,
	`meta[name="og:image"]`,
	`meta[name="twitter:image"]`,
	`meta[property="twitter:image"]`,
}

// ExtractMetaImage 从页面中提取 og:image，退而取 twitter:image
// 属性顺序（content 在前或在后）不影响结果
func ExtractMetaImage(r io.Reader) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", false
	}

	for _, sel := range metaImageSelectors {
		content, ok := doc.Find(sel).First().Attr("content")
		if !ok {
			continue
		}
		if content = strings.TrimSpace(content); content != "" {
			return content, true
		}
	}
	return "", false
}

// PosterEnricher 为缺少海报的记录补充海报
type PosterEnricher struct {
	client  *utils.HTTPClient
	cache   utils.PosterCache
	width   int
	limiter *rate.Limiter
	sf      singleflight.Group
}

// NewPosterEnricher concurrency 为同时进行的页面请求数；rps <= 0 表示不限速
func NewPosterEnricher(client *utils.HTTPClient, cache utils.PosterCache, concurrency int, rps float64) *PosterEnricher {
	if concurrency <= 0 {
		concurrency = DefaultPosterConcurrency
	}
	limit := rate.Inf
	burst := 0
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = concurrency
	}
	return &PosterEnricher{
		client:  client,
		cache:   cache,
		width:   concurrency,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Enrich 返回补充了海报的新列表
// 已有海报或没有有效外链的记录跳过；单条失败只会让该条没有海报
func (e *PosterEnricher) Enrich(ctx context.Context, films []model.Film) []model.Film {
	out := append([]model.Film(nil), films...)

	var g errgroup.Group
	g.SetLimit(e.width)

	for i := range out {
		if out[i].PosterURL != "" || !out[i].HasPermalink() {
			continue
		}
		i := i
		g.Go(func() error {
			if url, ok := e.Lookup(ctx, out[i].Permalink); ok {
				out[i].PosterURL = url
			}
			return nil
		})
	}

	_ = g.Wait()
	return out
}

// Lookup 查询单个外链的海报，先查缓存（含负缓存）
func (e *PosterEnricher) Lookup(ctx context.Context, permalink string) (string, bool) {
	if url, found := e.cache.Get(permalink); found {
		if url == "" {
			metrics.PosterLookups.WithLabelValues("cache_negative").Inc()
			return "", false
		}
		metrics.PosterLookups.WithLabelValues("cache_hit").Inc()
		return url, true
	}

	// 调用方已经离开时不发请求，也不写负缓存
	if ctx.Err() != nil {
		return "", false
	}

	// 同一外链的并发查询只发一次请求；请求不随发起者取消，由客户端超时兜底
	fetchCtx := context.WithoutCancel(ctx)
	val, _, _ := e.sf.Do(permalink, func() (interface{}, error) {
		if url, found := e.cache.Get(permalink); found {
			return url, nil
		}
		return e.fetchWithRetry(fetchCtx, permalink), nil
	})

	url, _ := val.(string)
	return url, url != ""
}

func (e *PosterEnricher) fetchWithRetry(ctx context.Context, permalink string) string {
	var lastErr error
	for attempt := 1; attempt <= posterAttempts; attempt++ {
		url, err := e.fetchOnce(ctx, permalink)
		if err == nil {
			e.cache.Set(permalink, url)
			metrics.PosterLookups.WithLabelValues("fetched").Inc()
			return url
		}
		lastErr = err
	}

	e.cache.SetMissing(permalink)
	metrics.PosterLookups.WithLabelValues("not_found").Inc()
	log.Printf("[Poster] 获取海报失败，已记入负缓存 (%s): %v", permalink, lastErr)
	return ""
}

func (e *PosterEnricher) fetchOnce(ctx context.Context, permalink string) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}

	start := time.Now()
	body, err := e.client.GetText(ctx, permalink, "")
	metrics.PosterFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}

	url, ok := ExtractMetaImage(strings.NewReader(body))
	if !ok {
		return "", ErrNoPoster
	}
	return url, nil
}
