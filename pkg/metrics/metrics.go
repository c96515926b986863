// Package metrics Prometheus指标
//
// 指标分组:
//   - HTTP: 请求数、耗时、并发数
//   - 缓存: 命中/未命中/错误、失效删除的key数
//   - 导入: CSV行数(imported/skipped)、导入耗时、目录导入数量
//   - 聚合: set_collection_counts刷新耗时与结果
//   - 熔断器: 状态、请求结果
//   - 消息: 事件发布/消费
//   - Scryfall: 上游请求结果
//
// 所有指标注册到prometheus默认Registry,由/metrics(promhttp)暴露
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInProgress prometheus.Gauge

	CacheRequestsTotal     *prometheus.CounterVec
	CacheKeysInvalidated   prometheus.Counter
	ImportRowsTotal        *prometheus.CounterVec
	ImportDuration         *prometheus.HistogramVec
	CatalogRecordsTotal    *prometheus.CounterVec
	AggregateRefreshTotal  *prometheus.CounterVec
	AggregateRefreshTiming prometheus.Histogram

	CircuitBreakerState    *prometheus.GaugeVec
	CircuitBreakerRequests *prometheus.CounterVec

	MessagesPublishedTotal *prometheus.CounterVec
	MessagesConsumedTotal  *prometheus.CounterVec

	ScryfallRequestsTotal *prometheus.CounterVec
)

// InitMetrics 注册全部指标(可重复调用)
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时(秒)",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtg_cache_requests_total",
			Help: "响应缓存读取次数",
		},
		[]string{"result"}, // hit | miss | error
	)

	CacheKeysInvalidated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mtg_cache_keys_invalidated_total",
			Help: "因数据变更删除的缓存key数",
		},
	)

	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtg_import_rows_total",
			Help: "CSV导入行数",
		},
		[]string{"bucket", "result"}, // imported | skipped
	)

	ImportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mtg_import_duration_seconds",
			Help:    "CSV导入耗时(秒)",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 120},
		},
		[]string{"bucket"},
	)

	CatalogRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtg_catalog_records_upserted_total",
			Help: "目录导入写入的记录数",
		},
		[]string{"kind"}, // card | set
	)

	AggregateRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtg_set_counts_refresh_total",
			Help: "set_collection_counts刷新次数",
		},
		[]string{"result"}, // success | failure
	)

	AggregateRefreshTiming = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mtg_set_counts_refresh_duration_seconds",
			Help:    "set_collection_counts刷新耗时(秒)",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态(0=CLOSED, 1=OPEN, 2=HALF_OPEN)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"}, // success | failure | rejected
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "事件发布总数",
		},
		[]string{"routing_key", "result"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "事件消费总数",
		},
		[]string{"queue", "result"},
	)

	ScryfallRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scryfall_requests_total",
			Help: "Scryfall API请求数",
		},
		[]string{"status"},
	)
}

// =========================================
// 业务辅助函数(内部自动初始化)
// =========================================

// ObserveHTTP 记录一次HTTP请求
func ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	InitMetrics()
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// RecordCache 记录缓存读取结果
func RecordCache(result string) {
	InitMetrics()
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

// RecordInvalidated 记录失效删除的key数
func RecordInvalidated(n int64) {
	InitMetrics()
	if n > 0 {
		CacheKeysInvalidated.Add(float64(n))
	}
}

// RecordImport 记录一次CSV导入
func RecordImport(bucket string, imported, skipped int, elapsed time.Duration) {
	InitMetrics()
	ImportRowsTotal.WithLabelValues(bucket, "imported").Add(float64(imported))
	ImportRowsTotal.WithLabelValues(bucket, "skipped").Add(float64(skipped))
	ImportDuration.WithLabelValues(bucket).Observe(elapsed.Seconds())
}

// RecordCatalog 记录目录导入写入数
func RecordCatalog(kind string, n int64) {
	InitMetrics()
	CatalogRecordsTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordRefresh 记录一次聚合刷新
func RecordRefresh(elapsed time.Duration, err error) {
	InitMetrics()
	result := "success"
	if err != nil {
		result = "failure"
	}
	AggregateRefreshTotal.WithLabelValues(result).Inc()
	AggregateRefreshTiming.Observe(elapsed.Seconds())
}

// SetBreakerState 更新熔断器状态
func SetBreakerState(name string, state int) {
	InitMetrics()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordBreaker 记录熔断器请求结果
func RecordBreaker(name, result string) {
	InitMetrics()
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordPublish 记录事件发布
func RecordPublish(routingKey string, err error) {
	InitMetrics()
	result := "success"
	if err != nil {
		result = "failure"
	}
	MessagesPublishedTotal.WithLabelValues(routingKey, result).Inc()
}

// RecordConsume 记录事件消费
func RecordConsume(queue string, err error) {
	InitMetrics()
	result := "success"
	if err != nil {
		result = "failure"
	}
	MessagesConsumedTotal.WithLabelValues(queue, result).Inc()
}

// RecordScryfall 记录上游请求(status为HTTP状态码或"error")
func RecordScryfall(status string) {
	InitMetrics()
	ScryfallRequestsTotal.WithLabelValues(status).Inc()
}
