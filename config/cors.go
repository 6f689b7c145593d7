package config

import (
	"os"
	"strings"
)

// CorsSettings 跨域配置
type CorsSettings struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

// GetCorsConfig 获取跨域配置。
// 墙端页面和审核后台通常部署在不同域名下，生产环境通过
// ALLOWED_ORIGINS 环境变量指定，逗号分隔。
func GetCorsConfig() CorsSettings {
	var allowedOrigins []string

	if envOrigins := os.Getenv("ALLOWED_ORIGINS"); envOrigins != "" {
		allowedOrigins = strings.Split(envOrigins, ",")
		for i, origin := range allowedOrigins {
			allowedOrigins[i] = strings.TrimSpace(origin)
		}
	} else {
		allowedOrigins = []string{
			"http://localhost:3000",
			"http://localhost:8801",
			"https://localhost:3000",
			"https://localhost:8801",
		}

		// 开发环境放开全部来源
		if os.Getenv("GIN_MODE") != "release" {
			allowedOrigins = append(allowedOrigins, "*")
		}
	}

	return CorsSettings{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS", "HEAD",
		},
		AllowedHeaders: []string{
			"Origin",
			"Content-Type",
			"Content-Length",
			"Accept",
			"Accept-Encoding",
			"Authorization",
			"X-Request-ID",
			"X-Requested-With",
			"Cache-Control",
		},
		ExposedHeaders: []string{
			"Content-Length",
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           3600,
	}
}
