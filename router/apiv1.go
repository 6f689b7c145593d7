package router

import (
	"whisper-wall/api"
	"whisper-wall/controllers/admin"
	"whisper-wall/middleware"
	"whisper-wall/pkg/config"
	"whisper-wall/pkg/session"
	"whisper-wall/redis"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// Init 审核后台路由
func Init(r *gin.Engine) {
	// 会话数据（验证码）优先放Redis，Redis不可用时退化为cookie存储
	if redis.IsConnected() {
		cfg := config.GetConfig().Redis
		session.InitSecureSession(r, cfg.Addr, cfg.Password)
	} else {
		r.Use(sessions.Sessions("mysession", cookie.NewStore([]byte("captch"))))
	}
	r.Use(middleware.Cors())

	apiAdminGroup := r.Group("/api/admin")
	{
		apiAdminGroup.POST("/auth/login", api.Auth.Login)
		apiAdminGroup.GET("/auth/captcha", session.SecureCaptchaMiddleware(), api.Auth.Captcha)

		apiAdminGroup.Use(middleware.SecureJWTAuth())
		apiAdminGroup.POST("/auth/logout", api.Auth.Logout)
		apiAdminGroup.POST("/auth/password", api.Auth.Password)
		apiAdminGroup.GET("/auth/profile", api.Auth.Profile)

		// 举报处理
		apiAdminGroup.GET("/report/list", admin.GetReportList)
		apiAdminGroup.GET("/report/detail/:id", admin.GetReportDetail)
		apiAdminGroup.POST("/report/resolve/:id", admin.ResolveReport)

		// 封禁管理
		apiAdminGroup.POST("/ban", admin.CreateBan)
		apiAdminGroup.DELETE("/ban/:id", admin.DeactivateBan)
		apiAdminGroup.GET("/ban/list", admin.GetBanList)

		// 审核员账号管理
		apiAdminGroup.GET("/reviewer/list", admin.GetReviewerList)
		apiAdminGroup.POST("/reviewer", admin.AddReviewer)
		apiAdminGroup.PATCH("/reviewer/enable/:id", admin.SetReviewerEnable)
		apiAdminGroup.PATCH("/reviewer/password/:id", admin.ResetReviewerPassword)

		// 敏感词管理
		apiAdminGroup.GET("/sensitive/list", admin.GetSensitiveWordList)
		apiAdminGroup.POST("/sensitive/add", admin.AddSensitiveWord)
		apiAdminGroup.DELETE("/sensitive/:id", admin.DeleteSensitiveWord)
		apiAdminGroup.POST("/sensitive/refresh", admin.RefreshSensitiveWordCache)
	}
}
