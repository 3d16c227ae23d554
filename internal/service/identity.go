package service

import (
	"strings"
	"time"

	"github.com/user/filmlog/internal/model"
	"github.com/user/filmlog/internal/utils"
)

const (
	permalinkKeyPrefix = "url:"
	compositeKeyPrefix = "tyd:"
	unknownDay         = "unknown"
)

// Resolver 计算观影记录的身份键
// 两条记录只要有任一键相同，即视为同一次观影
type Resolver struct {
	loc *time.Location
}

// NewResolver loc 是计算"观看日"使用的参考时区
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{loc: loc}
}

// Keys 返回记录的身份键，外链键在前
// 外链为 "#" 的记录只有组合键，不能通过外链把无关记录并到一起
func (r *Resolver) Keys(f model.Film) []string {
	keys := make([]string, 0, 2)
	if f.HasPermalink() {
		keys = append(keys, permalinkKeyPrefix+f.Permalink)
	}
	return append(keys, r.CompositeKey(f))
}

// CompositeKey 归一化片名 | 年份 | 观看日
func (r *Resolver) CompositeKey(f model.Film) string {
	year := strings.ToLower(strings.TrimSpace(f.Year))
	title := utils.NormalizeTitle(f.Title, year)

	day := utils.DayKey(f.WatchedAt, r.loc)
	if day == "" {
		day = unknownDay
	}
	return compositeKeyPrefix + title + "|" + year + "|" + day
}
