package middleware

import (
	"fmt"
	"log"
	"runtime/debug"

	"whisper-wall/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Recovery panic恢复中间件。
// 投稿和审核回写都在请求协程里，panic只能打掉单个请求。
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		stack := string(debug.Stack())
		log.Printf("[PANIC] %s %s request_id=%s: %v\n%s",
			c.Request.Method, c.Request.URL.Path, c.GetString("request_id"), recovered, stack)

		if gin.Mode() == gin.DebugMode {
			response.ErrorWithData(c, response.INTERNAL_ERROR, gin.H{
				"panic": fmt.Sprintf("%v", recovered),
				"stack": stack,
			})
		} else {
			response.Error(c, response.INTERNAL_ERROR)
		}
	})
}

// ErrorHandler 收口 c.Error 上报的错误，统一记日志并兜底响应
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()

		log.Printf("[ERROR] %s %s request_id=%s - %v",
			c.Request.Method, c.Request.URL.Path, c.GetString("request_id"), err.Err)

		if c.Writer.Written() {
			return
		}
		switch err.Type {
		case gin.ErrorTypeBind:
			response.Error(c, response.INVALID_PARAMS, "请求参数错误: "+err.Error())
		case gin.ErrorTypePublic:
			response.Error(c, response.ERROR, err.Error())
		default:
			response.Error(c, response.INTERNAL_ERROR)
		}
	}
}

// SecureHeaders 安全响应头
func SecureHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// RequestID 请求链路ID。网关已经带了就沿用，否则生成新的。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}
