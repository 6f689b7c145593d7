package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"runtime"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"whisper-wall/pkg/monitoring"
)

// OptimizedDBConfig 优化的数据库配置
type OptimizedDBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	SlowQueryThreshold time.Duration // 慢查询阈值
	StatsInterval      time.Duration // 统计间隔
}

// DBStats 数据库统计信息，管理端监控概览用
type DBStats struct {
	MaxOpenConnections int           `json:"max_open_connections"`
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`

	QueryCount       int64         `json:"query_count"`
	SlowQueryCount   int64         `json:"slow_query_count"`
	AvgQueryDuration time.Duration `json:"avg_query_duration"`
}

var (
	dbStats        DBStats
	queryCount     int64
	slowQueryCount int64
	totalQueryTime int64
)

// GetOptimizedConfig 根据系统资源获取优化配置
func GetOptimizedConfig() OptimizedDBConfig {
	cpuCount := runtime.NumCPU()

	return OptimizedDBConfig{
		MaxOpenConns:       cpuCount * 10,
		MaxIdleConns:       cpuCount * 2,
		ConnMaxLifetime:    time.Hour,
		ConnMaxIdleTime:    30 * time.Minute,
		SlowQueryThreshold: 500 * time.Millisecond,
		StatsInterval:      30 * time.Second,
	}
}

// OptimizeDB 优化数据库连接：连接池参数、查询统计回调、后台监控
func OptimizeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层sql.DB失败: %w", err)
	}

	config := GetOptimizedConfig()

	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	log.Printf("数据库连接池已优化: MaxOpen=%d, MaxIdle=%d, MaxLifetime=%v",
		config.MaxOpenConns, config.MaxIdleConns, config.ConnMaxLifetime)

	if err := registerStatsCallbacks(db, config.SlowQueryThreshold); err != nil {
		return err
	}

	go startDBMonitoring(sqlDB, config.StatsInterval)

	return nil
}

// registerStatsCallbacks 注册GORM回调，给每类操作记录耗时和慢查询
func registerStatsCallbacks(db *gorm.DB, slowThreshold time.Duration) error {
	const startKey = "stats:start_time"

	before := func(tx *gorm.DB) {
		tx.InstanceSet(startKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(startKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			duration := time.Since(start)
			isSlowQuery := duration > slowThreshold
			RecordQuery(duration, isSlowQuery)
			monitoring.RecordDBQuery(operation, tx.Statement.Table, duration)
			if isSlowQuery {
				log.Printf("慢查询检测: op=%s table=%s 耗时=%v", operation, tx.Statement.Table, duration)
			}
		}
	}

	if err := db.Callback().Query().Before("gorm:query").Register("stats:before_query", before); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("stats:after_query", after("query")); err != nil {
		return err
	}
	if err := db.Callback().Create().Before("gorm:create").Register("stats:before_create", before); err != nil {
		return err
	}
	if err := db.Callback().Create().After("gorm:create").Register("stats:after_create", after("create")); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("stats:before_update", before); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("stats:after_update", after("update")); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("stats:before_delete", before); err != nil {
		return err
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("stats:after_delete", after("delete")); err != nil {
		return err
	}
	return nil
}

// startDBMonitoring 周期刷新连接池统计
func startDBMonitoring(sqlDB *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		stats := sqlDB.Stats()

		dbStats.MaxOpenConnections = stats.MaxOpenConnections
		dbStats.OpenConnections = stats.OpenConnections
		dbStats.InUse = stats.InUse
		dbStats.Idle = stats.Idle
		dbStats.WaitCount = stats.WaitCount
		dbStats.WaitDuration = stats.WaitDuration

		dbStats.QueryCount = atomic.LoadInt64(&queryCount)
		dbStats.SlowQueryCount = atomic.LoadInt64(&slowQueryCount)

		totalTime := atomic.LoadInt64(&totalQueryTime)
		if dbStats.QueryCount > 0 {
			dbStats.AvgQueryDuration = time.Duration(totalTime / dbStats.QueryCount)
		}

		if stats.MaxOpenConnections > 0 {
			usageRate := float64(stats.OpenConnections) / float64(stats.MaxOpenConnections)
			if usageRate > 0.8 {
				log.Printf("警告: 数据库连接池使用率过高 %.2f%% (%d/%d)",
					usageRate*100, stats.OpenConnections, stats.MaxOpenConnections)
			}
		}
		if stats.WaitDuration > time.Second {
			log.Printf("警告: 数据库连接等待时间过长 %v", stats.WaitDuration)
		}
	}
}

// RecordQuery 记录查询统计
func RecordQuery(duration time.Duration, isSlowQuery bool) {
	atomic.AddInt64(&queryCount, 1)
	atomic.AddInt64(&totalQueryTime, int64(duration))

	if isSlowQuery {
		atomic.AddInt64(&slowQueryCount, 1)
	}
}

// GetDBStats 获取数据库统计信息
func GetDBStats() DBStats {
	return dbStats
}

// DatabaseHealthCheck 数据库健康检查
func DatabaseHealthCheck(db *gorm.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取数据库连接失败: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("数据库连接检查失败: %w", err)
	}

	return nil
}
