package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nao1215/todo/internal/model"
	"github.com/nao1215/todo/internal/store"
)

// userRepository はusersコレクションに対するリポジトリ。
type userRepository struct {
	coll *mongo.Collection
}

// CreateUser はユーザーを作成する。IDはObjectIDで採番する。
func (r *userRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, store.ErrDuplicate
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗: %w", err)
	}
	return doc.toModel(), nil
}

// GetUserByEmail はメールアドレスでユーザーを取得する。
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByID はIDでユーザーを取得する。
func (r *userRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return doc.toModel(), nil
}
