package utils

import (
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// FullStar 整星
	FullStar = "★"
	// HalfStar 半星
	HalfStar = "½"
)

var (
	reCDATA     = regexp.MustCompile(`<!\[CDATA\[|\]\]>`)
	reTags      = regexp.MustCompile(`<[^>]*>`)
	reSpaces    = regexp.MustCompile(`\s+`)
	reYearParen = regexp.MustCompile(`\(\d{4}\)`)
	reCommaYear = regexp.MustCompile(`,\s*\d{4}`)
	reNonWord   = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
)

// DecodeHTML 解码 HTML 实体（&amp; &quot; &#39; &lt; &gt; 以及十进制/十六进制数字引用）
func DecodeHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}

// StripTags 移除标签并合并空白
func StripTags(s string) string {
	s = reTags.ReplaceAllString(s, " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// StripCDATA 移除 CDATA 包裹标记，保留内容
func StripCDATA(s string) string {
	return strings.TrimSpace(reCDATA.ReplaceAllString(s, ""))
}

// CleanupText 清理订阅源中的文本字段
// CDATA 需在去标签之前处理，否则 "<![CDATA[...]]>" 会被当作一个标签整体删除
func CleanupText(s string) string {
	s = StripCDATA(s)
	s = StripTags(s)
	s = DecodeHTML(s)
	// 解码后可能出现新的 CDATA 标记或空白
	s = reCDATA.ReplaceAllString(s, "")
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// Truncate 按字符截断，超出部分用 "..." 表示
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "..."
}

// RatingToStars 将评分转换为星级字符串
// 已含星号的原样返回；大于 5 的数值按 10 分制处理后折半；非数字原样返回
func RatingToStars(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	if strings.Contains(trimmed, FullStar) {
		return trimmed
	}

	numeric, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(numeric) || math.IsInf(numeric, 0) {
		return trimmed
	}

	score := numeric
	if score > 5 {
		score = score / 2
	}
	if score <= 0 {
		return ""
	}

	full := math.Floor(score)
	stars := strings.Repeat(FullStar, int(full))
	if score-full >= 0.5 {
		stars += HalfStar
	}
	return stars
}

// foldAccents 去除变音符号（Amélie -> Amelie）
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeTitle 归一化片名，用于组合身份键
// 1. 小写并去除变音符号
// 2. 去掉 "(2015)" 与 ", 2015" 形式的年份
// 3. 去掉非字母数字字符，合并空白
// 4. 已知年份时去掉与年份相同的独立词
func NormalizeTitle(title, year string) string {
	if title == "" {
		return ""
	}

	s := foldAccents(strings.ToLower(title))
	s = reYearParen.ReplaceAllString(s, "")
	s = reCommaYear.ReplaceAllString(s, "")
	s = reNonWord.ReplaceAllString(s, "")

	fields := strings.Fields(s)
	year = strings.ToLower(strings.TrimSpace(year))
	if year != "" {
		kept := fields[:0]
		for _, f := range fields {
			if f != year {
				kept = append(kept, f)
			}
		}
		fields = kept
	}
	return strings.Join(fields, " ")
}

// 带时区信息的格式
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
}

// 不带时区的格式，按参考时区解释
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate 宽松地解析日期字符串，失败返回 nil
// 不带时区的值（如归档中的 "2020-05-01"）视为参考时区的当地时间
func ParseDate(raw string, loc *time.Location) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// DayKey 返回时间在参考时区下的日历日 (YYYY-MM-DD)
func DayKey(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}
