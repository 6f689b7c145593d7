package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus 指标定义
var (
	// HTTP 请求相关指标
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时分布",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// 数据库相关指标
	dbConnectionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_in_use",
			Help: "当前使用中的数据库连接数",
		},
	)

	dbQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "数据库查询总数",
		},
		[]string{"operation", "table"},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "数据库查询耗时分布",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"operation", "table"},
	)

	// Redis 相关指标
	redisCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_commands_total",
			Help: "Redis命令执行总数",
		},
		[]string{"command", "status"},
	)

	redisCacheHitRate = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "redis_cache_hit_rate",
			Help: "Redis缓存命中率",
		},
		[]string{"cache_type"},
	)

	// 审核相关指标
	moderationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_requests_total",
			Help: "审核请求总数",
		},
		[]string{"outcome"},
	)

	moderationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moderation_request_duration_seconds",
			Help:    "审核请求耗时分布",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 15.0, 30.0},
		},
	)

	// 降级模式事件：fail-open放行有安全含义，必须可观测
	degradedModeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "degraded_mode_events_total",
			Help: "降级模式事件总数（审核/封禁检查不可用）",
		},
		[]string{"subsystem"},
	)

	contentRetractedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_retracted_total",
			Help: "因封禁被撤回的内容总数",
		},
		[]string{"content_type"},
	)

	reportsFiledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_filed_total",
			Help: "用户举报总数",
		},
		[]string{"reason"},
	)

	bansCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bans_created_total",
			Help: "新建封禁总数",
		},
		[]string{"scope"},
	)
)

// PrometheusMiddleware Gin中间件，用于收集HTTP指标
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// 处理请求
		c.Next()

		// 记录指标
		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())

		// Prometheus 指标记录
		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusCode,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)

		// MongoDB 存储（异步）
		SaveHTTPMetric(c, duration)
	}
}

// 业务指标记录函数
func RecordModerationRequest(duration time.Duration, success bool) {
	outcome := "success"
	if !success {
		outcome = "unavailable"
	}
	moderationRequestsTotal.WithLabelValues(outcome).Inc()
	moderationDuration.Observe(duration.Seconds())
}

func RecordDegradedMode(subsystem string) {
	degradedModeTotal.WithLabelValues(subsystem).Inc()
}

func RecordContentRetracted(contentType string) {
	contentRetractedTotal.WithLabelValues(contentType).Inc()
}

func RecordReportFiled(reason string) {
	reportsFiledTotal.WithLabelValues(reason).Inc()
}

func RecordBanCreated(scope string) {
	bansCreatedTotal.WithLabelValues(scope).Inc()
}

func RecordDBQuery(operation, table string, duration time.Duration) {
	dbQueriesTotal.WithLabelValues(operation, table).Inc()
	dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func UpdateDBConnections(inUse int) {
	dbConnectionsInUse.Set(float64(inUse))
}

func RecordRedisCommand(command, status string) {
	redisCommandsTotal.WithLabelValues(command, status).Inc()
}

func UpdateCacheHitRate(cacheType string, hitRate float64) {
	redisCacheHitRate.WithLabelValues(cacheType).Set(hitRate)
}
