package router

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"whisper-wall/db"
	"whisper-wall/mongodb"
	"whisper-wall/pkg/cache"
	"whisper-wall/pkg/database"
	"whisper-wall/pkg/goroutinepool"
	"whisper-wall/pkg/monitoring"
	"whisper-wall/redis"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InitMonitoringRoutes 初始化监控路由
func InitMonitoringRoutes(r *gin.Engine) {
	// Prometheus 指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 健康检查
	r.GET("/health", getHealthCheck)

	monitoringGroup := r.Group("/api/admin/monitoring")
	{
		// 系统概览
		monitoringGroup.GET("/overview", getSystemOverview)

		// 审核流水
		monitoringGroup.GET("/moderation-audits", getModerationAudits)
	}
}

// getSystemOverview 获取系统概览
func getSystemOverview(c *gin.Context) {
	timeRange := c.DefaultQuery("time_range", "1h")

	stats, err := monitoring.GetMonitoringStats(timeRange)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "获取系统概览失败: " + err.Error(),
		})
		return
	}

	stats["db_pool"] = database.GetDBStats()
	stats["task_pool"] = goroutinepool.GetPool().GetStats()
	if cache.GlobalCache != nil {
		stats["cache"] = cache.GlobalCache.GetStats()
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"data":    stats,
		"message": "success",
	})
}

// getModerationAudits 获取最近的审核流水
func getModerationAudits(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		limit = 100
	}

	audits, err := monitoring.GetRecentModerationAudits(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "获取审核流水失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"audits": audits,
			"total":  len(audits),
		},
		"message": "success",
	})
}

// getHealthCheck 健康检查
func getHealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	services := gin.H{}
	healthy := true

	if database.DatabaseHealthCheck(db.Dao) == nil {
		services["database"] = "connected"
	} else {
		services["database"] = "unavailable"
		healthy = false
	}

	if client := redis.GetClient(); client != nil && client.Ping(ctx).Err() == nil {
		services["redis"] = "connected"
	} else {
		services["redis"] = "unavailable"
		healthy = false
	}

	if mongodb.IsConnected() {
		services["mongodb"] = "connected"
	} else {
		services["mongodb"] = "unavailable"
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().Format("2006-01-02 15:04:05"),
		"services":  services,
	})
}
