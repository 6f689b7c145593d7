package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoadConfig 读取Redis连接配置。.env不存在时直接用进程环境变量。
func LoadConfig() RedisConfig {
	if err := godotenv.Load(); err != nil {
		log.Printf("未找到 .env 文件，使用进程环境变量")
	}

	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			log.Fatalf("REDIS_DB 取值无效: %v", err)
		}
		redisDB = n
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	return RedisConfig{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}
}
