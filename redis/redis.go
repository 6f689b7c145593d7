package redis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"whisper-wall/config"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	rdb         *redis.Client
	initOnce    sync.Once
	initialized bool
	initErr     error
	ErrNil      = errors.New("redis: nil")
)

// InitRedis 初始化 Redis 客户端
func InitRedis(config config.RedisConfig) error {
	initOnce.Do(func() {
		log.Printf("Initializing Redis client with address: %s, DB: %d", config.Addr, config.DB)

		rdb = redis.NewClient(&redis.Options{
			Addr:         config.Addr,
			Password:     config.Password,
			DB:           config.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
		})

		// 测试连接
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := rdb.Ping(ctx).Err(); err != nil {
			initErr = fmt.Errorf("failed to connect to Redis at %s: %w", config.Addr, err)
			log.Printf("ERROR: %v", initErr)
			return
		}

		initialized = true
		log.Printf("Successfully connected to Redis at %s, DB: %d", config.Addr, config.DB)
	})

	return initErr
}

// GetClient 获取 Redis 客户端实例
func GetClient() *redis.Client {
	if !initialized && initErr == nil {
		// 尝试使用默认配置初始化
		cfg := config.RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}

		log.Print("Redis client not initialized, attempting with default configuration")
		if err := InitRedis(cfg); err != nil {
			log.Printf("ERROR: Failed to initialize Redis with default config: %v", err)
		}
	}

	if rdb == nil {
		log.Print("WARNING: Redis client is nil, some features may not work")
	}

	return rdb
}

// IsConnected 检查 Redis 是否已连接
func IsConnected() bool {
	if rdb == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return rdb.Ping(ctx).Err() == nil
}

// CloseRedis 关闭 Redis 连接
func CloseRedis() error {
	if rdb != nil {
		log.Print("Closing Redis connection")
		return rdb.Close()
	}
	return nil
}

// StoreReviewerSession 登录成功后缓存审核员信息，在线状态查询用
func StoreReviewerSession(reviewerID string, info map[string]interface{}, expiration time.Duration) error {
	key := "reviewer_session:" + reviewerID
	ctx := context.Background()
	if err := rdb.HMSet(ctx, key, info).Err(); err != nil {
		return fmt.Errorf("failed to store reviewer session: %v", err)
	}
	if err := rdb.Expire(ctx, key, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set expiration for reviewer session: %v", err)
	}
	return nil
}

// GetReviewerSession 读取审核员会话缓存
func GetReviewerSession(reviewerID string) (map[string]string, error) {
	key := "reviewer_session:" + reviewerID
	ctx := context.Background()
	info, err := rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get reviewer session: %v", err)
	}
	if len(info) == 0 {
		return nil, ErrNil
	}
	return info, nil
}

// DeleteReviewerSession 登出时清掉会话缓存
func DeleteReviewerSession(reviewerID string) error {
	key := "reviewer_session:" + reviewerID
	ctx := context.Background()
	if err := rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete reviewer session: %v", err)
	}
	return nil
}
