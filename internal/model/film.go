package model

import "time"

// Sentinel 未知链接占位符，带此链接的记录不能作为身份锚点
const Sentinel = "#"

// Film 观影记录（归档 CSV 与订阅源共用的结构）
type Film struct {
	Title         string     `json:"title"`
	Year          string     `json:"year,omitempty"`
	Rating        string     `json:"rating,omitempty"` // 星级字符串，如 "★★★½"
	Permalink     string     `json:"permalink"`        // 条目外链，"#" 表示未知
	WatchedAt     *time.Time `json:"watched_at,omitempty"`
	PosterURL     string     `json:"poster_url,omitempty"`
	ReviewSnippet string     `json:"review_snippet,omitempty"`
}

// HasPermalink 是否带有可用的外链
func (f Film) HasPermalink() bool {
	return f.Permalink != "" && f.Permalink != Sentinel
}
