package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry 保存应用自己的 Prometheus 指标
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "habitlog",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "habitlog",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	providerFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "habitlog",
			Subsystem: "provider",
			Name:      "fetches_total",
			Help:      "Provider fetches during automatic sync, by outcome.",
		},
		[]string{"provider", "outcome"},
	)

	providerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "habitlog",
			Subsystem: "provider",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of provider fetches.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"provider"},
	)

	syncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "habitlog",
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Automatic habit sync runs.",
		},
		[]string{"trigger", "success"},
	)

	entriesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "habitlog",
			Subsystem: "entries",
			Name:      "recorded_total",
			Help:      "Habit entries written, by source.",
		},
		[]string{"source"},
	)
)

// 同步结果标签
const (
	OutcomeValue   = "value"
	OutcomeNoData  = "no_data"
	OutcomeError   = "error"
	OutcomePanic   = "panic"
	OutcomeSkipped = "skipped"
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		providerFetches,
		providerDuration,
		syncRuns,
		entriesRecorded,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler 暴露 /metrics
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware 按路由模板统计请求数与耗时，未匹配的路由归为 "unmatched"
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if route == "/metrics" {
			return
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordProviderFetch 记录一次数据源调用
func RecordProviderFetch(provider, outcome string, duration time.Duration) {
	if provider == "" {
		provider = "unknown"
	}
	if duration <= 0 {
		duration = time.Millisecond
	}
	providerFetches.WithLabelValues(provider, outcome).Inc()
	providerDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordSyncRun 记录一次同步，trigger 为 api/cron/cli
func RecordSyncRun(trigger string, success bool) {
	if trigger == "" {
		trigger = "unknown"
	}
	syncRuns.WithLabelValues(trigger, strconv.FormatBool(success)).Inc()
}

// RecordEntries 记录写入的条目数
func RecordEntries(source string, n int) {
	if n <= 0 {
		return
	}
	entriesRecorded.WithLabelValues(source).Add(float64(n))
}
