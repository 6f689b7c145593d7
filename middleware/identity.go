package middleware

import (
	"log"
	"time"

	"whisper-wall/model/admin_model"
	"whisper-wall/pkg/response"
	"whisper-wall/services/admin_service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientIdentity 把归一化后的客户端IP和匿名令牌放进请求上下文。
// 令牌由客户端通过 X-Client-Token 透传（显式传递，不做全局隐式状态），
// 没带的话生成一个新的并通过响应头还给客户端。
func ClientIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("client_ip", admin_service.NormalizeIdentity(c.ClientIP()))

		token := c.GetHeader("X-Client-Token")
		if token == "" {
			token = uuid.NewString()
			c.Header("X-Client-Token", token)
		}
		c.Set("client_token", token)

		c.Next()
	}
}

// SiteBanGate 全站封禁闸门：entire_site范围的封禁在这里拦截全部请求。
// 封禁查询失败时按fail-open放行（与审核同一可用性取舍），但记录降级日志。
func SiteBanGate(failOpen bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := c.GetString("client_ip")
		status, err := admin_service.BanRegistry.IsBanned(c.Request.Context(), identity, admin_model.ActionSiteAccess)
		if err != nil {
			if failOpen {
				log.Printf("[封禁] 全站闸门查询失败，fail-open放行: ip=%s err=%v", identity, err)
				c.Next()
				return
			}
			response.Abort(c, response.ERROR, "服务暂不可用")
			return
		}
		if status.Banned {
			expiresAt := "permanent"
			if !status.Record.IsPermanent() {
				expiresAt = status.Record.ExpiresAt.Format(time.RFC3339)
			}
			response.ErrorWithData(c, response.FORBIDDEN, gin.H{
				"reason":     status.Record.Reason,
				"scope":      status.Record.Scope,
				"expires_at": expiresAt,
			}, "你已被禁止访问本站")
			c.Abort()
			return
		}
		c.Next()
	}
}
