package app

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"whisper-wall/inout"
	"whisper-wall/model/admin_model"
	"whisper-wall/pkg/response"
	"whisper-wall/services/admin_service"
	"whisper-wall/services/app_service"

	"github.com/gin-gonic/gin"
)

// Classify 直接审核一段文本。这是审核能力的公开HTTP形态：
// 400=文本为空，500=上游/解析失败，错误体固定为 {error:{code,message,details}}。
func Classify(c *gin.Context) {
	var req inout.ClassifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		classifyError(c, http.StatusBadRequest, "invalid_request", "请求体不是合法JSON", err.Error())
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		classifyError(c, http.StatusBadRequest, "empty_text", "text不能为空", "")
		return
	}

	result, err := app_service.Moderation.Classify(c.Request.Context(), text, req.ContentType)
	if err != nil {
		if errors.Is(err, app_service.ErrModerationUnavailable) {
			classifyError(c, http.StatusInternalServerError, "moderation_unavailable", "审核服务暂不可用", err.Error())
			return
		}
		classifyError(c, http.StatusInternalServerError, "internal_error", "内部错误", err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

func classifyError(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// GetBanStatus 自助封禁状态查询。被封的客户端用它渲染整屏拦截页，
// "重新检查"就是再调一次这个接口。
func GetBanStatus(c *gin.Context) {
	identity := c.GetString("client_ip")

	action := admin_model.BanAction(c.DefaultQuery("action", string(admin_model.ActionPostConfession)))
	switch action {
	case admin_model.ActionPostConfession, admin_model.ActionPostReply, admin_model.ActionSiteAccess:
	default:
		response.Error(c, response.INVALID_PARAMS, "未知的动作类型")
		return
	}

	status, err := admin_service.BanRegistry.IsBanned(c.Request.Context(), identity, action)
	if err != nil {
		// 查询失败时不给出封禁结论，让客户端稍后重试
		response.Error(c, response.ERROR, "查询失败，请稍后重试")
		return
	}

	resp := inout.BanStatusResp{IsBanned: status.Banned}
	if status.Banned {
		resp.Reason = status.Record.Reason
		resp.Scope = string(status.Record.Scope)
		if status.Record.IsPermanent() {
			resp.ExpiresAt = "permanent"
		} else {
			resp.ExpiresAt = status.Record.ExpiresAt.Format(time.RFC3339)
		}
	}
	response.Success(c, resp)
}
