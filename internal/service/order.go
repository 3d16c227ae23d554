package service

import (
	"sort"

	"github.com/user/filmlog/internal/model"
)

// SortByWatchedDesc 按观看时间倒序（稳定排序），无时间的记录视为最早
// 返回新切片，不修改入参
func SortByWatchedDesc(films []model.Film) []model.Film {
	sorted := append([]model.Film(nil), films...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return watchedNanos(sorted[i]) > watchedNanos(sorted[j])
	})
	return sorted
}

// Paginate 截取前 limit 条，limit <= 0 返回空列表
func Paginate(films []model.Film, limit int) []model.Film {
	if limit <= 0 || films == nil {
		return []model.Film{}
	}
	if len(films) > limit {
		return films[:limit]
	}
	return films
}

func watchedNanos(f model.Film) int64 {
	if f.WatchedAt == nil {
		return 0
	}
	return f.WatchedAt.UnixNano()
}
