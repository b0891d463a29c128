// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 周期指标
	cyclesTotal      *prometheus.CounterVec
	cycleDuration    prometheus.Histogram
	cyclesSkipped    *prometheus.CounterVec
	stagingCleanups  *prometheus.CounterVec
	lastCycleSuccess prometheus.Gauge

	// 归档指标
	archivedTotal    *prometheus.CounterVec
	archiveFailures  *prometheus.CounterVec
	lastSequence     prometheus.Gauge
	verifyFailures   prometheus.Counter
	retryAttempts    *prometheus.CounterVec
	commitsTotal     *prometheus.CounterVec
	upvotesTotal     *prometheus.CounterVec
	generatorCalls   *prometheus.CounterVec
	generatorLatency *prometheus.HistogramVec

	// 数据库指标
	dbConnectionsOpen  prometheus.Gauge
	dbConnectionsInUse prometheus.Gauge
	dbConnectionsIdle  prometheus.Gauge

	logger *zap.Logger
}

// NewCollector 创建指标收集器，注册到默认 Registerer
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	return NewCollectorWith(prometheus.DefaultRegisterer, namespace, logger)
}

// NewCollectorWith 在指定 Registerer 上创建指标收集器
func NewCollectorWith(reg prometheus.Registerer, namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := promauto.With(reg)
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// HTTP 指标
	c.httpRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 周期指标
	c.cyclesTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "runs_total",
			Help:      "Total number of archival cycles by outcome",
		},
		[]string{"outcome"},
	)

	c.cycleDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "duration_seconds",
			Help:      "Archival cycle duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	c.cyclesSkipped = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "skipped_total",
			Help:      "Cycles skipped before running, by reason",
		},
		[]string{"reason"},
	)

	c.stagingCleanups = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "staging",
			Name:      "validations_total",
			Help:      "Staging validations by resulting state",
		},
		[]string{"state"},
	)

	c.lastCycleSuccess = f.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful cycle",
		},
	)

	// 归档指标
	c.archivedTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "entries_total",
			Help:      "Triplets archived, by verification result",
		},
		[]string{"verified"},
	)

	c.archiveFailures = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "failures_total",
			Help:      "Archive attempts that failed, by reason",
		},
		[]string{"reason"},
	)

	c.lastSequence = f.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "last_sequence",
			Help:      "Sequence number of the most recently archived triplet",
		},
	)

	c.verifyFailures = f.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "verify_failures_total",
			Help:      "Archived files that were not visible within the verify window",
		},
	)

	c.retryAttempts = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_attempts_total",
			Help:      "Failed attempts that were followed by a retry, by operation",
		},
		[]string{"operation"},
	)

	c.commitsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "commits_total",
			Help:      "Metadata commits by outcome",
		},
		[]string{"outcome"},
	)

	c.upvotesTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "upvotes_total",
			Help:      "Upvote requests by outcome",
		},
		[]string{"outcome"},
	)

	c.generatorCalls = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "requests_total",
			Help:      "Upstream generator requests by kind and status",
		},
		[]string{"kind", "status"},
	)

	c.generatorLatency = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "request_duration_seconds",
			Help:      "Upstream generator request duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	// 数据库指标
	c.dbConnectionsOpen = f.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "connections_open",
			Help:      "Number of open database connections",
		},
	)

	c.dbConnectionsInUse = f.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "connections_in_use",
			Help:      "Number of database connections in use",
		},
	)

	c.dbConnectionsIdle = f.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "connections_idle",
			Help:      "Number of idle database connections",
		},
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// =============================================================================
// 🔁 周期指标记录
// =============================================================================

// RecordCycle 记录一次周期的结果与耗时
func (c *Collector) RecordCycle(outcome string, duration time.Duration, finishedAt time.Time) {
	c.cyclesTotal.WithLabelValues(outcome).Inc()
	c.cycleDuration.Observe(duration.Seconds())
	if outcome == "success" {
		c.lastCycleSuccess.Set(float64(finishedAt.Unix()))
	}
}

// RecordCycleSkipped 记录被跳过的周期
func (c *Collector) RecordCycleSkipped(reason string) {
	c.cyclesSkipped.WithLabelValues(reason).Inc()
}

// RecordStagingValidation 记录暂存校验结果
func (c *Collector) RecordStagingValidation(state string) {
	c.stagingCleanups.WithLabelValues(state).Inc()
}

// =============================================================================
// 📦 归档指标记录
// =============================================================================

// RecordArchived 记录一次成功归档
func (c *Collector) RecordArchived(sequence int, verified bool) {
	label := "true"
	if !verified {
		label = "false"
		c.verifyFailures.Inc()
	}
	c.archivedTotal.WithLabelValues(label).Inc()
	c.lastSequence.Set(float64(sequence))
}

// RecordArchiveFailure 记录归档失败
func (c *Collector) RecordArchiveFailure(reason string) {
	c.archiveFailures.WithLabelValues(reason).Inc()
}

// RecordRetry 记录一次失败后的重试
func (c *Collector) RecordRetry(operation string) {
	c.retryAttempts.WithLabelValues(operation).Inc()
}

// RecordCommit 记录元数据提交结果
func (c *Collector) RecordCommit(outcome string) {
	c.commitsTotal.WithLabelValues(outcome).Inc()
}

// RecordUpvote 记录投票结果：recorded / unknown_id / error
func (c *Collector) RecordUpvote(outcome string) {
	c.upvotesTotal.WithLabelValues(outcome).Inc()
}

// RecordGeneratorRequest 记录上游生成请求
func (c *Collector) RecordGeneratorRequest(kind, status string, duration time.Duration) {
	c.generatorCalls.WithLabelValues(kind, status).Inc()
	c.generatorLatency.WithLabelValues(kind).Observe(duration.Seconds())
}

// =============================================================================
// 🗄️ 数据库指标记录
// =============================================================================

// RecordDBConnections 记录数据库连接数
func (c *Collector) RecordDBConnections(open, inUse, idle int) {
	c.dbConnectionsOpen.Set(float64(open))
	c.dbConnectionsInUse.Set(float64(inUse))
	c.dbConnectionsIdle.Set(float64(idle))
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码转换为字符串
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
