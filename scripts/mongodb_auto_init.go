package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"whisper-wall/mongodb"
	"whisper-wall/pkg/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB集合初始化工具。
// 部署新环境时跑一次，保证日志和审核流水的集合索引就绪。

type collectionSpec struct {
	Database   string
	Collection string
	Indexes    []indexSpec
}

type indexSpec struct {
	Keys   bson.D
	Unique bool
	Name   string
}

var requiredCollections = []collectionSpec{
	{
		Database:   "whisper_log_db",
		Collection: "logs",
		Indexes: []indexSpec{
			{Keys: bson.D{{Key: "timestamp", Value: -1}}, Name: "timestamp_desc"},
			{Keys: bson.D{{Key: "path", Value: 1}}, Name: "path_idx"},
			{Keys: bson.D{{Key: "status_code", Value: 1}}, Name: "status_code_idx"},
			{Keys: bson.D{{Key: "type", Value: 1}}, Name: "type_idx"},
		},
	},
	{
		Database:   "whisper_log_db",
		Collection: "moderation_audit",
		Indexes: []indexSpec{
			{Keys: bson.D{{Key: "timestamp", Value: -1}}, Name: "timestamp_desc"},
			{Keys: bson.D{{Key: "content_id", Value: 1}}, Name: "content_id_idx"},
			{Keys: bson.D{{Key: "outcome", Value: 1}}, Name: "outcome_idx"},
		},
	},
}

func autoInitMongoDB() error {
	log.Printf("开始初始化MongoDB集合和索引...")

	if err := config.InitConfig(); err != nil {
		return fmt.Errorf("初始化配置失败: %v", err)
	}
	mongodb.InitMongoDB()

	var totalIndexes int

	for _, spec := range requiredCollections {
		log.Printf("处理集合: %s.%s", spec.Database, spec.Collection)

		collection := mongodb.GetCollection(spec.Database, spec.Collection)
		if collection == nil {
			log.Printf("无法获取集合: %s.%s", spec.Database, spec.Collection)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		for _, idx := range spec.Indexes {
			model := mongo.IndexModel{
				Keys:    idx.Keys,
				Options: options.Index().SetUnique(idx.Unique).SetName(idx.Name),
			}

			if _, err := collection.Indexes().CreateOne(ctx, model); err != nil {
				if indexAlreadyExists(err) {
					log.Printf("索引 %s 已存在，跳过", idx.Name)
				} else {
					log.Printf("创建索引 %s 失败: %v", idx.Name, err)
					continue
				}
			} else {
				log.Printf("创建索引 %s 成功", idx.Name)
			}
			totalIndexes++
		}
		cancel()
	}

	log.Printf("MongoDB初始化完成，共处理 %d 个索引", totalIndexes)
	return nil
}

func indexAlreadyExists(err error) bool {
	return mongo.IsDuplicateKeyError(err) ||
		strings.Contains(err.Error(), "already exists") ||
		strings.Contains(err.Error(), "IndexKeySpecsConflict")
}

func main() {
	if err := autoInitMongoDB(); err != nil {
		log.Fatalf("MongoDB初始化失败: %v", err)
	}
}
