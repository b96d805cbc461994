// Package mongostore はMongoDBをバックエンドとするstore.Storeの実装を提供する。
//
// IDはObjectIDの16進文字列として外部に公開する。
// 16進文字列として解釈できないIDは存在しないレコードとして扱う。
package mongostore

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/nao1215/todo/internal/store"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
)

// Store はMongoDBをバックエンドとするストア。
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	tasks  *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Open はMongoDBに接続し、必要なインデックスを作成したストアを返す。
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		return nil, fmt.Errorf("データベース名が指定されていません")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("MongoDBへの接続に失敗: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("MongoDBへの疎通確認に失敗: %w", err)
	}

	s := New(client, database)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// New は接続済みのクライアントからストアを生成する。インデックスは作成しない。
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client: client,
		users:  db.Collection(usersCollection),
		tasks:  db.Collection(tasksCollection),
	}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	name, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("usersのインデックス作成に失敗: %w", err)
	}
	slog.InfoContext(ctx, "インデックスを確認しました", "collection", usersCollection, "index", name)

	name, err = s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("tasksのインデックス作成に失敗: %w", err)
	}
	slog.InfoContext(ctx, "インデックスを確認しました", "collection", tasksCollection, "index", name)
	return nil
}

// Users はユーザーリポジトリを返す。
func (s *Store) Users() store.UserRepository {
	return &userRepository{coll: s.users}
}

// Tasks はタスクリポジトリを返す。
func (s *Store) Tasks() store.TaskRepository {
	return &taskRepository{coll: s.tasks}
}

// Ping はMongoDBへの疎通を確認する。
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close はクライアントを切断する。
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
