// Package metrics 同步与HTTP的 Prometheus 指标
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sportssync"

// Metrics 所有方法对 nil 接收者安全，未启用指标时直接传 nil
type Metrics struct {
	reconciled      *prometheus.CounterVec
	partialWrites   prometheus.Counter
	sourceFetches   *prometheus.CounterVec
	sourceLatency   *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	lastSyncSuccess *prometheus.GaugeVec
}

// New 在 reg 上注册全部指标；同一个 reg 只能调用一次
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		reconciled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "records_total",
			Help:      "Reconciled records by kind and outcome.",
		}, []string{"kind", "result"}),
		partialWrites: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "partial_writes_total",
			Help:      "Games whose three time-series rows were only partially written.",
		}),
		sourceFetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetches_total",
			Help:      "Live source fetches by source, kind and result.",
		}, []string{"source", "kind", "result"}),
		sourceLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetch_duration_seconds",
			Help:      "Live source fetch latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source", "kind"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		lastSyncSuccess: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last completed sync run by kind.",
		}, []string{"kind"}),
	}
}

// RecordReconcile 累加一次同步的结果计数
func (m *Metrics) RecordReconcile(kind string, inserted, updated, skipped, failed int) {
	if m == nil {
		return
	}
	m.reconciled.WithLabelValues(kind, "inserted").Add(float64(inserted))
	m.reconciled.WithLabelValues(kind, "updated").Add(float64(updated))
	m.reconciled.WithLabelValues(kind, "skipped").Add(float64(skipped))
	m.reconciled.WithLabelValues(kind, "failed").Add(float64(failed))
	m.lastSyncSuccess.WithLabelValues(kind).SetToCurrentTime()
}

func (m *Metrics) IncPartialWrite() {
	if m == nil {
		return
	}
	m.partialWrites.Inc()
}

// ObserveFetch result 取 ok/empty/error
func (m *Metrics) ObserveFetch(source, kind, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.sourceFetches.WithLabelValues(source, kind, result).Inc()
	m.sourceLatency.WithLabelValues(source, kind).Observe(d.Seconds())
}

// GinMiddleware 按路由模板（而非原始路径）统计，避免标签基数失控
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
