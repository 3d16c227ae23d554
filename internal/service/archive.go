package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/user/filmlog/internal/metrics"
	"github.com/user/filmlog/internal/model"
	"github.com/user/filmlog/internal/utils"
)

// headerAliases 归档表头别名（均为小写），按语义字段匹配第一个命中的列
var headerAliases = map[string][]string{
	"title":     {"name", "title", "film"},
	"year":      {"year"},
	"watchedAt": {"watcheddate", "watched date", "date"},
	"rating":    {"rating", "rating10", "rating/5"},
	"review":    {"review", "reviewtext", "review text"},
	"url":       {"letterboxduri", "letterboxd uri", "letterboxd url", "url", "uri"},
}

var reLineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// ArchiveSource 历史归档来源
type ArchiveSource interface {
	// Films 读取归档；文件不存在时返回空列表
	Films(ctx context.Context) ([]model.Film, error)
}

// FileArchive 本地 CSV 归档，只读，每次调用重新读取
type FileArchive struct {
	path string
	loc  *time.Location
}

// NewFileArchive 创建文件归档来源
func NewFileArchive(path string, loc *time.Location) *FileArchive {
	return &FileArchive{path: path, loc: loc}
}

// Films 读取并解析归档文件
func (a *FileArchive) Films(ctx context.Context) ([]model.Film, error) {
	if a.path == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(a.path)
	if errors.Is(err, fs.ErrNotExist) {
		metrics.ArchiveReads.WithLabelValues("missing").Inc()
		return nil, nil
	}
	if err != nil {
		metrics.ArchiveReads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("读取归档文件失败: %w", err)
	}

	films := ParseArchive(string(data), a.loc)
	metrics.ArchiveReads.WithLabelValues("success").Inc()
	log.Printf("[Archive] 读取归档 %s，共 %d 条", a.path, len(films))
	return films, nil
}

// ParseArchive 解析归档 CSV 文本，结果顺序与文件一致
func ParseArchive(data string, loc *time.Location) []model.Film {
	// 去掉 UTF-8 BOM
	data = strings.TrimPrefix(data, "\uFEFF")

	var lines []string
	for _, line := range reLineBreak.Split(data, -1) {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	headers := splitCSVRow(lines[0])
	for i := range headers {
		headers[i] = strings.ToLower(headers[i])
	}
	cols := archiveColumns{
		title:   findHeaderIndex(headers, "title"),
		year:    findHeaderIndex(headers, "year"),
		watched: findHeaderIndex(headers, "watchedAt"),
		rating:  findHeaderIndex(headers, "rating"),
		review:  findHeaderIndex(headers, "review"),
		url:     findHeaderIndex(headers, "url"),
	}
	if cols.title == -1 {
		log.Printf("[Archive] 表头中没有片名列，忽略整个归档")
		return nil
	}

	films := make([]model.Film, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if film, ok := cols.toFilm(splitCSVRow(line), loc); ok {
			films = append(films, film)
		}
	}
	return films
}

// archiveColumns 各语义字段所在列，-1 表示不存在
type archiveColumns struct {
	title, year, watched, rating, review, url int
}

func (c archiveColumns) toFilm(row []string, loc *time.Location) (model.Film, bool) {
	title := cell(row, c.title)
	if title == "" {
		return model.Film{}, false
	}

	permalink := cell(row, c.url)
	if permalink == "" {
		permalink = model.Sentinel
	}

	return model.Film{
		Title:         title,
		Year:          cell(row, c.year),
		Rating:        utils.RatingToStars(cell(row, c.rating)),
		Permalink:     permalink,
		WatchedAt:     utils.ParseDate(cell(row, c.watched), loc),
		ReviewSnippet: cell(row, c.review),
	}, true
}

// cell 取单元格，列不存在或越界时返回空串
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func findHeaderIndex(headers []string, key string) int {
	for i, h := range headers {
		for _, alias := range headerAliases[key] {
			if h == alias {
				return i
			}
		}
	}
	return -1
}

// splitCSVRow 按引号规则切分一行
// 引号内的 "" 是转义的字面引号；单个引号切换引号状态；引号外的逗号是分隔符
func splitCSVRow(row string) []string {
	var (
		values   []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(row); i++ {
		ch := row[i]
		if ch == '"' && inQuotes && i+1 < len(row) && row[i+1] == '"' {
			current.WriteByte('"')
			i++
			continue
		}
		if ch == '"' {
			inQuotes = !inQuotes
			continue
		}
		if ch == ',' && !inQuotes {
			values = append(values, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		current.WriteByte(ch)
	}

	values = append(values, strings.TrimSpace(current.String()))
	return values
}
