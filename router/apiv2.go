package router

import (
	"whisper-wall/controllers/app"
	"whisper-wall/middleware"
	"whisper-wall/pkg/config"

	"github.com/gin-gonic/gin"
)

// InitApp 匿名墙前台路由
func InitApp(r *gin.Engine) {
	cfg := config.GetConfig()

	appGroup := r.Group("/api/app")
	appGroup.Use(middleware.ClientIdentity())

	// 封禁状态查询必须对被封禁用户可见，不走站点封禁门
	publicGroup := appGroup.Group("/")
	{
		publicGroup.GET("/ban/status", app.GetBanStatus)
		// 独立审核接口，任意来源可调用
		publicGroup.POST("/moderation/classify", app.Classify)
	}

	// 使用通用请求日志中间件的组
	logGroup := appGroup.Group("/")
	logGroup.Use(middleware.RequestLogger(cfg.Log.RequestLogDir))
	logGroup.Use(middleware.SiteBanGate(cfg.Ban.FailOpen))
	{
		// 表白墙
		logGroup.POST("/confession/create", app.CreateConfession)
		logGroup.GET("/confession/list", app.GetConfessionList)
		logGroup.GET("/confession/detail/:id", app.GetConfessionDetail)

		// 回复
		logGroup.POST("/confession/:id/reply", app.CreateReply)
		logGroup.GET("/confession/:id/replies", app.GetReplyList)

		// 表态
		logGroup.POST("/confession/:id/reaction", app.SetReaction)
		logGroup.DELETE("/confession/:id/reaction", app.RemoveReaction)
		logGroup.GET("/confession/:id/reactions", app.GetReactions)

		// 举报
		logGroup.POST("/report/create", app.FileReport)
	}
}
