// Package metrics 观影记录管道的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedFetches 订阅源拉取次数
	// outcome: success / error / cached / breaker_open / disabled
	FeedFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmlog_feed_fetches_total",
			Help: "Total number of feed source polls by outcome",
		},
		[]string{"outcome"},
	)

	// ArchiveReads 归档文件读取次数
	// outcome: success / missing / error
	ArchiveReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmlog_archive_reads_total",
			Help: "Total number of archive file reads by outcome",
		},
		[]string{"outcome"},
	)

	// PosterLookups 海报查询次数
	// result: cache_hit / cache_negative / fetched / not_found
	PosterLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmlog_poster_lookups_total",
			Help: "Total number of poster lookups by result",
		},
		[]string{"result"},
	)

	// PosterFetchDuration 单次海报页面请求耗时
	PosterFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filmlog_poster_fetch_duration_seconds",
			Help:    "Duration of poster page fetches in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// MergedFilms 最近一次合并后的记录数
	MergedFilms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmlog_merged_films",
			Help: "Number of films produced by the most recent merge",
		},
	)
)
