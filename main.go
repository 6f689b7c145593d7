package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whisper-wall/config"
	"whisper-wall/db"
	"whisper-wall/middleware"
	"whisper-wall/mongodb"
	"whisper-wall/pkg/cache"
	pkgconfig "whisper-wall/pkg/config"
	"whisper-wall/pkg/database"
	"whisper-wall/pkg/goroutinepool"
	"whisper-wall/pkg/monitoring"
	"whisper-wall/redis"
	"whisper-wall/router"
	"whisper-wall/services/admin_service"
	"whisper-wall/services/app_service"

	"github.com/gin-gonic/gin"
)

// 构建时注入的变量
var (
	Version            = "dev"
	BuildTime          = "unknown"
	GitCommit          = "unknown"
	GoVersion          = "unknown"
	DefaultServiceName = "whisper-wall"
	DefaultRouterMode  = "all"
	DefaultPort        = "8801"
)

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	// 处理命令行参数
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "-version", "--version", "-v":
			fmt.Printf("Whisper Wall\n")
			fmt.Printf("Version: %s\n", Version)
			fmt.Printf("Build Time: %s\n", BuildTime)
			fmt.Printf("Git Commit: %s\n", GitCommit)
			fmt.Printf("Go Version: %s\n", GoVersion)
			fmt.Printf("Default Service: %s\n", DefaultServiceName)
			fmt.Printf("Default Router Mode: %s\n", DefaultRouterMode)
			fmt.Printf("Default Port: %s\n", DefaultPort)
			return
		case "-help", "--help", "-h":
			fmt.Printf("Whisper Wall - 匿名表白墙服务\n\n")
			fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
			fmt.Printf("Options:\n")
			fmt.Printf("  -version, -v     显示版本信息\n")
			fmt.Printf("  -help, -h        显示帮助信息\n\n")
			fmt.Printf("Environment Variables:\n")
			fmt.Printf("  SERVICE_NAME     服务名称 (默认: %s)\n", DefaultServiceName)
			fmt.Printf("  ROUTER_MODE      路由模式 (默认: %s)\n", DefaultRouterMode)
			fmt.Printf("  PORT             服务端口 (默认: %s)\n", DefaultPort)
			fmt.Printf("\nAvailable Router Modes:\n")
			fmt.Printf("  all      - 所有路由 (默认)\n")
			fmt.Printf("  admin    - 审核后台路由\n")
			fmt.Printf("  app      - 墙端路由\n")
			fmt.Printf("  monitor  - 监控路由\n")
			return
		}
	}

	// 获取服务模式和端口配置，优先使用构建时的默认值
	serviceName := getEnv("SERVICE_NAME", DefaultServiceName)
	routerMode := getEnv("ROUTER_MODE", DefaultRouterMode)
	port := getEnv("PORT", DefaultPort)

	log.Printf("启动 %s (模式: %s, 端口: %s)...", serviceName, routerMode, port)

	// 初始化 Redis 客户端
	redisConfig := config.LoadConfig()
	redis.InitRedis(redisConfig)

	// 初始化配置
	if err := pkgconfig.InitConfig(); err != nil {
		log.Fatalf("配置初始化失败: %v", err)
	}
	appCfg := pkgconfig.GetConfig()
	if os.Getenv("PORT") == "" && appCfg.Server.Port != "" {
		port = appCfg.Server.Port
	}

	// 设置时区
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		panic("无法加载时区: " + err.Error())
	}
	time.Local = loc

	// 初始化数据库和路由
	db.Init()

	// 优化数据库连接池
	if err := database.OptimizeDB(db.Dao); err != nil {
		log.Printf("数据库优化失败: %v", err)
	}

	// 初始化 MongoDB 客户端
	mongodb.InitMongoDB()

	// 初始化缓存
	cache.InitCache()

	// 初始化投稿流水线（封禁检查 + 内容审核）
	app_service.InitSubmissionPipeline()

	// 初始化审核员通知（RabbitMQ，不可用时降级为仅日志）
	admin_service.InitReviewerNotifier()

	// 设置Gin模式
	gin.SetMode(appCfg.Server.Mode)
	app := gin.New()

	// 添加全局中间件
	app.Use(middleware.Recovery())
	app.Use(middleware.ErrorHandler())
	app.Use(middleware.RequestID())
	app.Use(middleware.SecureHeaders())
	app.Use(middleware.Performance())

	// 添加CORS中间件 - 解决跨域问题
	app.Use(middleware.Cors())

	// 受信任的反向代理，决定ClientIP的取值，封禁和限流都依赖它
	if len(appCfg.Security.TrustedProxies) > 0 {
		if err := app.SetTrustedProxies(appCfg.Security.TrustedProxies); err != nil {
			log.Fatalf("设置受信任代理失败: %v", err)
		}
	}

	// 根据服务类型设置不同的限流
	if appCfg.Security.EnableRateLimit {
		switch routerMode {
		case "admin":
			app.Use(middleware.RateLimit(500)) // 审核后台较低限制
		case "app":
			app.Use(middleware.RateLimit(2000)) // 墙端较高限制
		default:
			app.Use(middleware.RateLimit(appCfg.Security.RateLimit))
		}
	}

	// 添加 Prometheus 监控中间件
	app.Use(monitoring.PrometheusMiddleware())

	// 根据模式初始化不同的路由
	switch routerMode {
	case "admin":
		log.Printf("初始化审核后台路由...")
		router.Init(app)
		router.InitMonitoringRoutes(app)
	case "app":
		log.Printf("初始化墙端路由...")
		router.InitApp(app)
		router.InitMonitoringRoutes(app)
	case "monitor":
		log.Printf("初始化监控路由...")
		router.InitMonitoringRoutes(app)
	default:
		log.Printf("初始化所有路由...")
		router.Init(app)
		router.InitApp(app)
		router.InitMonitoringRoutes(app)
	}

	// 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      app,
		ReadTimeout:  appCfg.Server.ReadTimeout,
		WriteTimeout: appCfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// 启动服务器
	go func() {
		log.Printf("服务器启动在端口 :%s", port)
		var err error
		if appCfg.Security.EnableHTTPS {
			err = server.ListenAndServeTLS(appCfg.Security.TLSCertFile, appCfg.Security.TLSKeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("正在关闭服务器...")

	// 设置关闭超时
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 关闭HTTP服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("服务器强制关闭: %v", err)
	}

	// 关闭审核员通知
	admin_service.CloseReviewerNotifier()

	// 关闭goroutine池
	goroutinepool.Stop()

	// 关闭Redis连接
	redis.CloseRedis()

	log.Printf("服务器已安全关闭")
}
