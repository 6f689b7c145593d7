package monitoring

import (
	"context"
	"log"
	"time"

	"whisper-wall/mongodb"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HTTPMetric HTTP请求指标（简化版）
type HTTPMetric struct {
	Timestamp  time.Time `bson:"timestamp"`
	Method     string    `bson:"method"`
	Endpoint   string    `bson:"endpoint"`
	StatusCode int       `bson:"status_code"`
	Duration   float64   `bson:"duration"`
	UserAgent  string    `bson:"user_agent,omitempty"`
	ClientIP   string    `bson:"client_ip,omitempty"`
}

// ModerationAudit 审核审计记录：每条结论和每次降级事件都留档
type ModerationAudit struct {
	Timestamp time.Time `bson:"timestamp"`
	ContentID string    `bson:"content_id"` // "confession:123" / "reply:45"
	Outcome   string    `bson:"outcome"`    // nsfw / clean / unavailable
	Detail    string    `bson:"detail,omitempty"`
}

// DatabaseMetric 数据库指标（简化版）
type DatabaseMetric struct {
	Timestamp        time.Time `bson:"timestamp"`
	ConnectionsInUse int       `bson:"connections_in_use"`
	ConnectionsIdle  int       `bson:"connections_idle"`
	MaxOpenConns     int       `bson:"max_open_conns"`
}

// SaveHTTPMetric 保存HTTP指标到MongoDB
func SaveHTTPMetric(c *gin.Context, duration float64) {
	metric := HTTPMetric{
		Timestamp:  time.Now(),
		Method:     c.Request.Method,
		Endpoint:   c.FullPath(),
		StatusCode: c.Writer.Status(),
		Duration:   duration,
		UserAgent:  c.GetHeader("User-Agent"),
		ClientIP:   c.ClientIP(),
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("保存HTTP指标失败: %v", r)
			}
		}()

		collection := mongodb.GetCollection("whisper_log_db", "logs")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := collection.InsertOne(ctx, metric)
		if err != nil {
			log.Printf("保存HTTP指标到MongoDB失败: %v", err)
		}
	}()
}

// SaveModerationAudit 保存审核审计记录到MongoDB（异步，尽力而为）
func SaveModerationAudit(contentID, outcome, detail string) {
	audit := ModerationAudit{
		Timestamp: time.Now(),
		ContentID: contentID,
		Outcome:   outcome,
		Detail:    detail,
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("保存审核审计失败: %v", r)
			}
		}()

		collection := mongodb.GetCollection("whisper_log_db", "moderation_audit")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := collection.InsertOne(ctx, audit)
		if err != nil {
			log.Printf("保存审核审计到MongoDB失败: %v", err)
		}
	}()
}

// SaveDatabaseMetric 保存数据库指标到MongoDB
func SaveDatabaseMetric(connectionsInUse, connectionsIdle, maxOpenConns int) {
	metric := DatabaseMetric{
		Timestamp:        time.Now(),
		ConnectionsInUse: connectionsInUse,
		ConnectionsIdle:  connectionsIdle,
		MaxOpenConns:     maxOpenConns,
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("保存数据库指标失败: %v", r)
			}
		}()

		collection := mongodb.GetCollection("whisper_log_db", "logs")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := collection.InsertOne(ctx, metric)
		if err != nil {
			log.Printf("保存数据库指标到MongoDB失败: %v", err)
		}
	}()
}

// GetMonitoringStats 获取监控统计数据
func GetMonitoringStats(timeRange string) (map[string]interface{}, error) {
	collection := mongodb.GetCollection("whisper_log_db", "logs")
	auditCollection := mongodb.GetCollection("whisper_log_db", "moderation_audit")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 计算时间范围
	now := time.Now()
	var startTime time.Time
	switch timeRange {
	case "1h":
		startTime = now.Add(-time.Hour)
	case "24h":
		startTime = now.Add(-24 * time.Hour)
	case "7d":
		startTime = now.Add(-7 * 24 * time.Hour)
	default:
		startTime = now.Add(-time.Hour)
	}

	timeFilter := bson.M{
		"timestamp": bson.M{
			"$gte": startTime,
			"$lte": now,
		},
	}

	// 统计HTTP请求
	httpFilter := bson.M{"timestamp": timeFilter["timestamp"], "method": bson.M{"$exists": true}}
	httpCount, _ := collection.CountDocuments(ctx, httpFilter)

	// 统计审核结论
	nsfwFilter := bson.M{"timestamp": timeFilter["timestamp"], "outcome": "nsfw"}
	nsfwCount, _ := auditCollection.CountDocuments(ctx, nsfwFilter)

	unavailableFilter := bson.M{"timestamp": timeFilter["timestamp"], "outcome": "unavailable"}
	unavailableCount, _ := auditCollection.CountDocuments(ctx, unavailableFilter)

	// 获取最新的数据库指标
	dbFilter := bson.M{"connections_in_use": bson.M{"$exists": true}}
	var latestDbMetric DatabaseMetric
	err := collection.FindOne(ctx, dbFilter, nil).Decode(&latestDbMetric)
	if err != nil {
		log.Printf("获取数据库指标失败: %v", err)
	}

	return map[string]interface{}{
		"timeRange": timeRange,
		"timestamp": now,
		"stats": map[string]interface{}{
			"http_requests":          httpCount,
			"moderation_nsfw":        nsfwCount,
			"moderation_unavailable": unavailableCount,
			"db_connections":         latestDbMetric.ConnectionsInUse,
			"db_max_conns":           latestDbMetric.MaxOpenConns,
		},
	}, nil
}

// recentAuditFindOptions 按时间倒序取最新N条，排序和截断都下推给Mongo
func recentAuditFindOptions(limit int64) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
}

// GetRecentModerationAudits 获取最近的审核审计记录
func GetRecentModerationAudits(limit int64) ([]ModerationAudit, error) {
	collection := mongodb.GetCollection("whisper_log_db", "moderation_audit")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := collection.Find(ctx, bson.M{}, recentAuditFindOptions(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var audits []ModerationAudit
	if err = cursor.All(ctx, &audits); err != nil {
		return nil, err
	}

	return audits, nil
}
