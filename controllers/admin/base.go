package admin

import (
	"whisper-wall/pkg/response"

	"github.com/gin-gonic/gin"
)

// Resp 审核后台控制器的响应快捷入口
var Resp = &rps{}

type rps struct{}

func (rps) Succ(c *gin.Context, data interface{}) {
	response.Success(c, data)
}

func (rps) Err(c *gin.Context, errCode int, message string) {
	response.Error(c, errCode, message)
}
