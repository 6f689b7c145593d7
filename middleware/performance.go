package middleware

import (
	"log"
	"sync"
	"time"

	"whisper-wall/pkg/response"

	"github.com/gin-gonic/gin"
)

// PerformanceConfig 性能监控配置
type PerformanceConfig struct {
	SlowThreshold time.Duration
	EnableLogging bool
	SkipPaths     []string
}

// DefaultPerformanceConfig 默认配置，探活和指标接口不算业务耗时
func DefaultPerformanceConfig() PerformanceConfig {
	return PerformanceConfig{
		SlowThreshold: 500 * time.Millisecond,
		EnableLogging: true,
		SkipPaths:     []string{"/health", "/metrics", "/favicon.ico"},
	}
}

// Performance 慢请求监控中间件。
// 投稿接口是同步发布路径，超过阈值说明封禁查询或DB出了问题。
func Performance(config ...PerformanceConfig) gin.HandlerFunc {
	cfg := DefaultPerformanceConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		if cfg.EnableLogging && latency > cfg.SlowThreshold {
			log.Printf("[SLOW] %s %s status=%d request_id=%s latency=%v",
				c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
				c.GetString("request_id"), latency)
		}

		if gin.Mode() == gin.DebugMode {
			c.Header("X-Response-Time", latency.String())
		}
	}
}

// ipWindow 单个IP的滑动窗口
type ipWindow struct {
	timestamps []time.Time
}

// RateLimit 按客户端IP的内存滑动窗口限流。
// 匿名墙没有账号维度，IP是唯一可用的限流键。
func RateLimit(rpm int) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		windows = make(map[string]*ipWindow)
		lastGC  = time.Now()
	)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()
		cutoff := now.Add(-time.Minute)

		mu.Lock()

		// 定期清掉一分钟内没再来过的IP
		if now.Sub(lastGC) > 5*time.Minute {
			for key, w := range windows {
				if len(w.timestamps) == 0 || w.timestamps[len(w.timestamps)-1].Before(cutoff) {
					delete(windows, key)
				}
			}
			lastGC = now
		}

		w, ok := windows[ip]
		if !ok {
			w = &ipWindow{}
			windows[ip] = w
		}

		valid := w.timestamps[:0]
		for _, ts := range w.timestamps {
			if ts.After(cutoff) {
				valid = append(valid, ts)
			}
		}
		w.timestamps = valid

		if len(w.timestamps) >= rpm {
			mu.Unlock()
			c.Header("Retry-After", "60")
			response.Abort(c, response.TOO_MANY_REQUESTS)
			return
		}

		w.timestamps = append(w.timestamps, now)
		mu.Unlock()

		c.Next()
	}
}
