// Package metrics 定义推荐引擎的 Prometheus 指标。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendRequests 按结果路径（ranked / fallback / empty / error）统计请求数
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogrec_recommend_requests_total",
			Help: "Total number of recommendation requests by result path",
		},
		[]string{"path"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalogrec_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	RecommendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogrec_recommend_errors_total",
			Help: "Total number of recommendation errors by stage",
		},
		[]string{"stage"}, // "load", "fit", "pipeline", "timeout"
	)

	FitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalogrec_tfidf_fit_duration_seconds",
			Help:    "Duration of TF-IDF vector space fitting in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	VocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalogrec_tfidf_vocabulary_size",
			Help: "Vocabulary size of the most recently fitted vector space",
		},
	)

	SpaceCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogrec_space_cache_requests_total",
			Help: "Vector space cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "bypass"
	)
)

// RecordRequest 记录一次推荐请求。
func RecordRequest(path string, d time.Duration) {
	RecommendRequests.WithLabelValues(path).Inc()
	RecommendDuration.WithLabelValues(path).Observe(d.Seconds())
}

// RecordError 记录一次失败及其所在阶段。
func RecordError(stage string) {
	RecommendErrors.WithLabelValues(stage).Inc()
}

// RecordFit 记录一次向量空间拟合。
func RecordFit(d time.Duration, vocabulary int) {
	FitDuration.Observe(d.Seconds())
	VocabularySize.Set(float64(vocabulary))
}

// RecordSpaceCache 记录缓存查询结果：hit / miss / bypass。
func RecordSpaceCache(result string) {
	SpaceCacheRequests.WithLabelValues(result).Inc()
}
