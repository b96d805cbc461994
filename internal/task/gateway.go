// Package task は所有者で絞り込んだタスクのCRUDを提供する。
//
// すべての操作は認証ゲートが解決したユーザーIDを所有者として受け取り、
// 他人のタスクは存在しないものとして扱う。
package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/todo/internal/apperr"
	"github.com/nao1215/todo/internal/model"
	"github.com/nao1215/todo/internal/store"
)

// Gateway はタスクストアへのアクセスを所有者単位に制限する。
type Gateway struct {
	tasks store.TaskRepository
}

// NewGateway はGatewayを生成する。
func NewGateway(tasks store.TaskRepository) *Gateway {
	return &Gateway{tasks: tasks}
}

// List は所有者のタスクをすべて返す。
func (g *Gateway) List(ctx context.Context, ownerID string) ([]model.Task, error) {
	if ownerID == "" {
		return nil, apperr.ErrMissingCredential
	}

	tasks, err := g.tasks.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗: %w", err)
	}
	return tasks, nil
}

// Create はタスクを作成する。textは必須で、completedとimportantは省略時falseとなる。
func (g *Gateway) Create(ctx context.Context, ownerID string, fields model.TaskFields) (*model.Task, error) {
	if ownerID == "" {
		return nil, apperr.ErrMissingCredential
	}
	if fields.Text == nil {
		return nil, apperr.Validation("textは必須です")
	}

	t := &model.Task{UserID: ownerID, Text: *fields.Text}
	if fields.Completed != nil {
		t.Completed = *fields.Completed
	}
	if fields.Important != nil {
		t.Important = *fields.Important
	}

	created, err := g.tasks.CreateTask(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗: %w", err)
	}
	return created, nil
}

// Update は指定されたフィールドのみを更新する。
// 所有者とタスクIDの両方に一致するタスクが無い場合はapperr.ErrNotFoundを返す。
func (g *Gateway) Update(ctx context.Context, ownerID, taskID string, fields model.TaskFields) (*model.Task, error) {
	if ownerID == "" {
		return nil, apperr.ErrMissingCredential
	}

	updated, err := g.tasks.UpdateTask(ctx, ownerID, taskID, fields)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("タスクの更新に失敗: %w", err)
	}
	return updated, nil
}

// Delete はタスクを削除する。
// 所有者とタスクIDの両方に一致するタスクが無い場合はapperr.ErrNotFoundを返す。
func (g *Gateway) Delete(ctx context.Context, ownerID, taskID string) error {
	if ownerID == "" {
		return apperr.ErrMissingCredential
	}

	err := g.tasks.DeleteTask(ctx, ownerID, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("タスクの削除に失敗: %w", err)
	}
	return nil
}
