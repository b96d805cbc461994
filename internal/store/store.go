// Package store はユーザーとタスクの永続化に必要なインターフェースを定義する。
//
// 実装はsqlstore（SQLite/PostgreSQL）とmongostore（MongoDB）にある。
// タスクに対する読み書きは常に所有者IDとタスクIDの両方で絞り込む。
package store

import (
	"context"
	"errors"

	"github.com/nao1215/todo/internal/model"
)

var (
	// ErrNotFound は条件に一致するレコードが存在しないことを表す。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate は一意制約に違反したことを表す。
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository はユーザーの永続化を担う。
type UserRepository interface {
	// CreateUser はユーザーを作成し、IDを割り当てた結果を返す。
	// メールアドレスが既に存在する場合はErrDuplicateを返す。
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	// GetUserByEmail はメールアドレスでユーザーを取得する。
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// GetUserByID はIDでユーザーを取得する。
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// TaskRepository はタスクの永続化を担う。
type TaskRepository interface {
	// ListTasks は所有者のタスクを作成順に返す。
	ListTasks(ctx context.Context, ownerID string) ([]model.Task, error)
	// CreateTask はタスクを作成し、IDを割り当てた結果を返す。
	CreateTask(ctx context.Context, task *model.Task) (*model.Task, error)
	// UpdateTask はtext・completed・importantのうち指定されたフィールドのみを更新する。
	// taskIDとownerIDの両方に一致するレコードが無い場合はErrNotFoundを返す。
	UpdateTask(ctx context.Context, ownerID, taskID string, fields model.TaskFields) (*model.Task, error)
	// DeleteTask はtaskIDとownerIDの両方に一致するレコードを1件削除する。
	// 削除対象が無い場合はErrNotFoundを返す。
	DeleteTask(ctx context.Context, ownerID, taskID string) error
}

// Store はリポジトリの取得と接続のライフサイクルを管理する。
type Store interface {
	Users() UserRepository
	Tasks() TaskRepository
	// Ping はストレージへの疎通を確認する。
	Ping(ctx context.Context) error
	// Close は接続を解放する。
	Close(ctx context.Context) error
}
