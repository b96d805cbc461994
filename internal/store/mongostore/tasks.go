package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nao1215/todo/internal/model"
	"github.com/nao1215/todo/internal/store"
)

// taskRepository はtasksコレクションに対するリポジトリ。
type taskRepository struct {
	coll *mongo.Collection
}

// ListTasks は所有者のタスクを作成順に返す。
func (r *taskRepository) ListTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"user_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	tasks := make([]model.Task, 0)
	for cur.Next(ctx) {
		var doc taskDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("タスクの読み取りに失敗: %w", err)
		}
		tasks = append(tasks, doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("タスク一覧の走査に失敗: %w", err)
	}
	return tasks, nil
}

// CreateTask はタスクを作成する。IDはObjectIDで採番する。
func (r *taskRepository) CreateTask(ctx context.Context, task *model.Task) (*model.Task, error) {
	now := time.Now().UTC()
	doc := taskDoc{
		ID:        primitive.NewObjectID(),
		UserID:    task.UserID,
		Text:      task.Text,
		Completed: task.Completed,
		Important: task.Important,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗: %w", err)
	}
	created := doc.toModel()
	return &created, nil
}

// UpdateTask は指定されたフィールドのみを更新し、更新後のタスクを返す。
func (r *taskRepository) UpdateTask(ctx context.Context, ownerID, taskID string, fields model.TaskFields) (*model.Task, error) {
	oid, ok := parseID(taskID)
	if !ok {
		return nil, store.ErrNotFound
	}

	var doc taskDoc
	var err error
	if fields.IsEmpty() {
		err = r.coll.FindOne(ctx, taskFilter(oid, ownerID)).Decode(&doc)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = r.coll.FindOneAndUpdate(ctx, taskFilter(oid, ownerID), taskUpdate(fields, time.Now().UTC()), opts).Decode(&doc)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("タスクの更新に失敗: %w", err)
	}

	updated := doc.toModel()
	return &updated, nil
}

// DeleteTask はタスクを1件削除する。
func (r *taskRepository) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	oid, ok := parseID(taskID)
	if !ok {
		return store.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, taskFilter(oid, ownerID))
	if err != nil {
		return fmt.Errorf("タスクの削除に失敗: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
