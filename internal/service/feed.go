package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/user/filmlog/internal/metrics"
	"github.com/user/filmlog/internal/model"
	"github.com/user/filmlog/internal/utils"
	"golang.org/x/sync/singleflight"
)

// snippetMaxLen 评论摘要最大字符数
const snippetMaxLen = 240

// ErrFeedUnavailable 订阅源暂不可用（熔断中）
var ErrFeedUnavailable = errors.New("订阅源暂不可用")

var (
	reItem         = regexp.MustCompile(`(?is)<item\b[^>]*>(.*?)</item>`)
	reMediaContent = regexp.MustCompile(`(?i)<media:content\b[^>]*\burl="([^"]+)"`)
	reImgSrc       = regexp.MustCompile(`(?i)<img\b[^>]*\bsrc="([^"]+)"`)

	reTitleRating  = regexp.MustCompile(`\s-\s*(★*½?)\s*$`)
	reVerbPrefix   = regexp.MustCompile(`(?i)^.+?\s(rewatched|reviewed|watched)\s`)
	reLoggedPrefix = regexp.MustCompile(`(?i)^.+?\slogged\s`)
	reRatingTail   = regexp.MustCompile(`\s*-\s*[★½]+$`)
	reTrailingYear = regexp.MustCompile(`\((\d{4})\)\s*$`)
	reCommaYear    = regexp.MustCompile(`,\s*(\d{4})\s*$`)

	feedTags = map[string]*regexp.Regexp{
		"link":        regexp.MustCompile(`(?is)<link>(.*?)</link>`),
		"title":       regexp.MustCompile(`(?is)<title>(.*?)</title>`),
		"pubDate":     regexp.MustCompile(`(?is)<pubDate>(.*?)</pubDate>`),
		"description": regexp.MustCompile(`(?is)<description>(.*?)</description>`),
	}
)

// ParseFeed 解析订阅源文档，按观看时间倒序返回
// maxItems 限制最多解析的条目数，<= 0 表示不限制
func ParseFeed(doc string, maxItems int) []model.Film {
	if maxItems <= 0 {
		maxItems = -1
	}

	matches := reItem.FindAllStringSubmatch(doc, maxItems)
	films := make([]model.Film, 0, len(matches))
	for _, m := range matches {
		if film, ok := parseFeedItem(m[1]); ok {
			films = append(films, film)
		}
	}

	return SortByWatchedDesc(films)
}

// parseFeedItem 解析单个条目，缺少链接或标题时丢弃
func parseFeedItem(item string) (model.Film, bool) {
	link := utils.CleanupText(extractTag(item, "link"))
	rawTitle := extractTag(item, "title")
	if link == "" || rawTitle == "" {
		return model.Film{}, false
	}

	title, year, rating := ParseFeedTitle(rawTitle)
	if title == "" {
		return model.Film{}, false
	}

	return model.Film{
		Title:         title,
		Year:          year,
		Rating:        rating,
		Permalink:     link,
		WatchedAt:     utils.ParseDate(utils.CleanupText(extractTag(item, "pubDate")), time.UTC),
		PosterURL:     extractPosterURL(item),
		ReviewSnippet: extractReviewSnippet(item),
	}, true
}

// ParseFeedTitle 从 "JT watched Ex Machina (2015) - ★★★★" 形式的标题中拆出片名、年份、评分
func ParseFeedTitle(raw string) (title, year, rating string) {
	cleaned := utils.CleanupText(raw)

	// 只有半星时评分为 "½"
	if m := reTitleRating.FindStringSubmatch(cleaned); m != nil && m[1] != "" {
		rating = m[1]
	}

	rest := reVerbPrefix.ReplaceAllString(cleaned, "")
	rest = reLoggedPrefix.ReplaceAllString(rest, "")
	rest = reRatingTail.ReplaceAllString(rest, "")

	if m := reTrailingYear.FindStringSubmatch(rest); m != nil {
		year = m[1]
		rest = reTrailingYear.ReplaceAllString(rest, "")
	} else if m := reCommaYear.FindStringSubmatch(rest); m != nil {
		// 订阅源也会输出 "Ex Machina, 2015" 形式
		year = m[1]
		rest = reCommaYear.ReplaceAllString(rest, "")
	}

	title = utils.CleanupText(rest)
	if title == "" {
		title = cleaned
	}
	return title, year, rating
}

func extractTag(item, tag string) string {
	re, ok := feedTags[tag]
	if !ok {
		return ""
	}
	if m := re.FindStringSubmatch(item); m != nil {
		return m[1]
	}
	return ""
}

// extractPosterURL 优先 media:content，其次正文里的 img
func extractPosterURL(item string) string {
	if m := reMediaContent.FindStringSubmatch(item); m != nil {
		return html.UnescapeString(m[1])
	}
	if m := reImgSrc.FindStringSubmatch(item); m != nil {
		return html.UnescapeString(m[1])
	}
	// 描述被实体转义时（&lt;img src=&quot;...&quot;&gt;）解码后再找一次
	desc := descriptionHTML(extractTag(item, "description"))
	if m := reImgSrc.FindStringSubmatch(desc); m != nil {
		return html.UnescapeString(m[1])
	}
	return ""
}

// descriptionHTML 取出描述中的 HTML
// CDATA 内已是原始 HTML；否则描述经过一层 XML 转义，先解掉这一层
func descriptionHTML(desc string) string {
	if strings.Contains(desc, "<![CDATA[") {
		return utils.StripCDATA(desc)
	}
	return html.UnescapeString(desc)
}

func extractReviewSnippet(item string) string {
	desc := extractTag(item, "description")
	if desc == "" {
		return ""
	}
	// 去标签后只做一次 HTML 实体解码
	clean := utils.CleanupText(descriptionHTML(desc))
	if clean == "" {
		return ""
	}
	return utils.Truncate(clean, snippetMaxLen)
}

// FeedSource 最近观影记录来源
type FeedSource interface {
	// Recent 拉取最近的观影记录，按观看时间倒序
	Recent(ctx context.Context) ([]model.Film, error)
}

// HTTPFeed 通过 HTTP 轮询的订阅源
type HTTPFeed struct {
	url      string
	maxItems int
	client   *utils.HTTPClient
	cache    *utils.TTLCache[[]model.Film]
	breaker  *gobreaker.CircuitBreaker[[]model.Film]
	sf       singleflight.Group
}

// NewHTTPFeed 创建订阅源；cacheTTL 为 0 时每次调用都重新拉取
func NewHTTPFeed(url string, maxItems int, cacheTTL time.Duration, client *utils.HTTPClient) *HTTPFeed {
	f := &HTTPFeed{
		url:      url,
		maxItems: maxItems,
		client:   client,
		breaker: gobreaker.NewCircuitBreaker[[]model.Film](gobreaker.Settings{
			Name:        "feed",
			MaxRequests: 1,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Printf("[FeedSource] 熔断状态变化: %s -> %s", from, to)
			},
			IsSuccessful: isFeedSuccess,
		}),
	}
	if cacheTTL > 0 {
		f.cache = utils.NewTTLCache[[]model.Film](1, cacheTTL)
	}
	return f
}

// Recent 拉取订阅源；未配置地址时返回空列表
func (f *HTTPFeed) Recent(ctx context.Context) ([]model.Film, error) {
	if f.url == "" {
		metrics.FeedFetches.WithLabelValues("disabled").Inc()
		return nil, nil
	}

	if f.cache != nil {
		if films, ok := f.cache.Get(f.url); ok {
			metrics.FeedFetches.WithLabelValues("cached").Inc()
			return append([]model.Film(nil), films...), nil
		}
	}

	// 调用方已经离开时不发请求，也不计入熔断
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 并发请求合并为一次拉取；拉取不随发起者取消，由客户端超时兜底
	fetchCtx := context.WithoutCancel(ctx)
	val, err, _ := f.sf.Do(f.url, func() (interface{}, error) {
		return f.breaker.Execute(func() ([]model.Film, error) {
			return f.fetch(fetchCtx)
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.FeedFetches.WithLabelValues("breaker_open").Inc()
			return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
		}
		metrics.FeedFetches.WithLabelValues("error").Inc()
		return nil, err
	}

	films := val.([]model.Film)
	metrics.FeedFetches.WithLabelValues("success").Inc()
	if f.cache != nil {
		f.cache.Set(f.url, films)
	}
	return append([]model.Film(nil), films...), nil
}

// isFeedSuccess 调用方取消不算订阅源故障
func isFeedSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

func (f *HTTPFeed) fetch(ctx context.Context) ([]model.Film, error) {
	body, err := f.client.GetText(ctx, f.url, "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8")
	if err != nil {
		return nil, fmt.Errorf("拉取订阅源失败: %w", err)
	}
	films := ParseFeed(body, f.maxItems)
	log.Printf("[FeedSource] 拉取订阅源成功，共 %d 条", len(films))
	return films, nil
}
