package mongodb

import (
	"context"
	"log"
	"time"

	"whisper-wall/pkg/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var clients = make(map[string]*mongo.Client)

// InitMongoDB 按配置逐库建立连接，存放请求日志和审核流水
func InitMongoDB() {
	cfg := config.GetConfig()

	for dbName, dbConfig := range cfg.MongoDB.Databases {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(dbConfig.URI))
		cancel()
		if err != nil {
			log.Fatalf("连接MongoDB %s 失败: %v", dbName, err)
		}
		clients[dbName] = client
	}
	log.Printf("MongoDB连接已初始化，共 %d 个数据库", len(cfg.MongoDB.Databases))
}

// IsConnected 检查所有已初始化的 MongoDB 连接是否可达
func IsConnected() bool {
	if len(clients) == 0 {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, client := range clients {
		if err := client.Ping(ctx, nil); err != nil {
			return false
		}
	}
	return true
}

func GetCollection(dbName, collectionKey string) *mongo.Collection {
	cfg := config.GetConfig()

	dbConfig, exists := cfg.MongoDB.Databases[dbName]
	if !exists {
		log.Fatalf("配置中不存在数据库 %s", dbName)
	}
	collectionName, exists := dbConfig.Collections[collectionKey]
	if !exists {
		log.Fatalf("数据库 %s 配置中不存在集合 %s", dbName, collectionKey)
	}
	client, exists := clients[dbName]
	if !exists {
		log.Fatalf("数据库 %s 的MongoDB客户端未初始化", dbName)
	}
	return client.Database(dbName).Collection(collectionName)
}
