// Package mongostore 实现基于 MongoDB 的 storage.Store
//
// 使用 mongo-go-driver v2，通过 bson tag 实现 model 结构体的序列化/反序列化。
// 所有 Collection 名称和索引在 ensureIndexes 中统一管理。
//
// 出版物读路径的新旧作者字段归一化统一发生在本包（见 publication.go），
// 上层 handler 只见到非空的 authors 数组。
package mongostore

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection 名称常量
const (
	ColUsers        = "users"
	ColAuthors      = "authors"
	ColPublications = "publications"
)

// Store 实现 storage.Store 接口的 MongoDB 驱动
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore 创建 MongoDB 存储实例
//
// uri: MongoDB 连接 URI，如 "mongodb://localhost:27017"
// dbName: 数据库名称，如 "library"
func NewStore(uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}

	// 验证连接
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{client: client, db: db}

	// 创建索引
	if err := s.ensureIndexes(ctx); err != nil {
		log.Printf("WARNING: mongostore: ensure indexes failed: %v", err)
	}

	return s, nil
}

// Ping 检查 MongoDB 连接是否存活
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close 关闭 MongoDB 连接
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// col 获取指定 Collection
func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// ensureIndexes 创建所有必要的索引
func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	indexes := []idx{
		// users
		{ColUsers, bson.D{{Key: "username", Value: 1}}, true},
		{ColUsers, bson.D{{Key: "email", Value: 1}}, true},

		// authors
		{ColAuthors, bson.D{{Key: "name", Value: 1}}, false},

		// publications（authors 为多键索引，旧 author 字段保留索引供迁移期查询）
		{ColPublications, bson.D{{Key: "authors", Value: 1}}, false},
		{ColPublications, bson.D{{Key: "author", Value: 1}}, false},
		{ColPublications, bson.D{{Key: "category", Value: 1}}, false},
		{ColPublications, bson.D{{Key: "publish_date", Value: 1}}, false},
		{ColPublications, bson.D{{Key: "created_at", Value: -1}}, false},
	}

	for _, i := range indexes {
		opts := options.Index()
		if i.unique {
			opts.SetUnique(true)
		}
		_, err := s.col(i.col).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: i.keys, Options: opts})
		if err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}

	// 全文索引（每个 Collection 仅允许一个 text index），失败不阻塞启动
	textIdx := mongo.IndexModel{
		Keys: bson.D{
			{Key: "title", Value: "text"},
			{Key: "category", Value: "text"},
			{Key: "authors", Value: "text"},
		},
		Options: options.Index().SetName("publications_text"),
	}
	if _, err := s.col(ColPublications).Indexes().CreateOne(ctx, textIdx); err != nil {
		log.Printf("[mongostore] text index creation skipped: %v", err)
	}

	return nil
}
