package middleware

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
)

// 记录请求体的上限，匿名投稿正文最长1000字符，4KB足够
const maxLoggedBody = 4 << 10

// SetupLogFile 打开当天的日志文件，按日期分文件
func SetupLogFile(logDir string) *os.File {
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		log.Fatalf("创建日志目录失败: %v", err)
	}

	logFile := filepath.Join(logDir, time.Now().Format("2006-01-02")+".log")
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("打开日志文件失败: %v", err)
	}
	return file
}

// RequestLogger 墙端请求日志中间件。
// 投稿和举报接口的请求体会被截断记录，方便排查审核误判。
func RequestLogger(logDir string) gin.HandlerFunc {
	logFile := SetupLogFile(logDir)
	logger := log.New(logFile, "", log.LstdFlags)

	return func(c *gin.Context) {
		start := time.Now()

		var body string
		if c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(io.LimitReader(c.Request.Body, maxLoggedBody))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(bodyBytes), c.Request.Body))
			body = string(bodyBytes)
		}

		c.Next()

		logger.Printf("%s %s status=%d ip=%s query=%q body=%q latency=%v",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			c.ClientIP(),
			c.Request.URL.RawQuery,
			body,
			time.Since(start),
		)
	}
}
