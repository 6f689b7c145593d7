package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 统一业务错误码
const (
	SUCCESS           = 200
	ERROR             = 500
	INVALID_PARAMS    = 20001
	AUTH_ERROR        = 20002
	NOT_FOUND         = 20003
	FORBIDDEN         = 20004
	TOO_MANY_REQUESTS = 20005
	INTERNAL_ERROR    = 20006
)

var codeMsg = map[int]string{
	SUCCESS:           "OK",
	ERROR:             "服务器内部错误",
	INVALID_PARAMS:    "请求参数错误",
	AUTH_ERROR:        "认证失败",
	NOT_FOUND:         "资源不存在",
	FORBIDDEN:         "操作被禁止",
	TOO_MANY_REQUESTS: "请求过于频繁，请稍后再试",
	INTERNAL_ERROR:    "内部服务错误",
}

// Response 统一响应结构。HTTP状态码固定200，业务结果看code字段。
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Path    string      `json:"path"`
}

// GetMsg 错误码对应的默认文案
func GetMsg(code int) string {
	if msg, ok := codeMsg[code]; ok {
		return msg
	}
	return codeMsg[ERROR]
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	write(c, Response{
		Code:    SUCCESS,
		Message: GetMsg(SUCCESS),
		Data:    data,
		Path:    c.Request.URL.Path,
	})
}

// Error 错误响应，message可覆盖默认文案
func Error(c *gin.Context, code int, message ...string) {
	msg := GetMsg(code)
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	write(c, Response{
		Code:    code,
		Message: msg,
		Path:    c.Request.URL.Path,
	})
}

// ErrorWithData 带数据的错误响应，比如封禁详情
func ErrorWithData(c *gin.Context, code int, data interface{}, message ...string) {
	msg := GetMsg(code)
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	write(c, Response{
		Code:    code,
		Message: msg,
		Data:    data,
		Path:    c.Request.URL.Path,
	})
}

// Abort 中断请求并返回错误，用于中间件
func Abort(c *gin.Context, code int, message ...string) {
	Error(c, code, message...)
	c.Abort()
}

func write(c *gin.Context, resp Response) {
	// 放进上下文，日志类中间件可以拿到最终响应
	c.Set("response", resp)
	c.JSON(http.StatusOK, resp)
}
