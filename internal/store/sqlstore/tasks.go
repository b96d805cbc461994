package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/todo/internal/dbx"
	"github.com/nao1215/todo/internal/model"
	"github.com/nao1215/todo/internal/store"
)

// taskRepository はtasksテーブルに対するリポジトリ。
type taskRepository struct {
	db      *sql.DB
	dialect Dialect
}

const (
	listTasksQuery = `SELECT id, user_id, text, completed, important FROM tasks
		WHERE user_id = ?
		ORDER BY created_at, id`
	insertTaskQuery = `INSERT INTO tasks (id, user_id, text, completed, important, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	// updateTaskQuery はNULLを渡したフィールドを現在値のまま残す。
	updateTaskQuery = `UPDATE tasks
		SET text = COALESCE(?, text),
			completed = COALESCE(?, completed),
			important = COALESCE(?, important),
			updated_at = ?
		WHERE id = ? AND user_id = ?`
	selectTaskQuery = `SELECT id, user_id, text, completed, important FROM tasks
		WHERE id = ? AND user_id = ?`
	deleteTaskQuery = `DELETE FROM tasks WHERE id = ? AND user_id = ?`
)

// ListTasks は所有者のタスクを作成順に返す。
func (r *taskRepository) ListTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(listTasksQuery), ownerID)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.Important); err != nil {
			return nil, fmt.Errorf("タスクの読み取りに失敗: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("タスク一覧の走査に失敗: %w", err)
	}
	return tasks, nil
}

// CreateTask はタスクを作成する。IDはUUIDで採番する。
func (r *taskRepository) CreateTask(ctx context.Context, task *model.Task) (*model.Task, error) {
	created := *task
	created.ID = uuid.New().String()
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx, r.dialect.rebind(insertTaskQuery),
		created.ID, created.UserID, created.Text, created.Completed, created.Important, now, now)
	if err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗: %w", err)
	}
	return &created, nil
}

// UpdateTask は指定されたフィールドのみを更新し、更新後のタスクを返す。
// 更新と再取得は同一トランザクション内で行う。
func (r *taskRepository) UpdateTask(ctx context.Context, ownerID, taskID string, fields model.TaskFields) (*model.Task, error) {
	var updated model.Task
	err := dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, r.dialect.rebind(updateTaskQuery),
			nullString(fields.Text),
			nullBool(fields.Completed),
			nullBool(fields.Important),
			time.Now().UTC(),
			taskID,
			ownerID,
		)
		if err != nil {
			return fmt.Errorf("タスクの更新に失敗: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("更新件数の取得に失敗: %w", err)
		}
		if n == 0 {
			return store.ErrNotFound
		}

		err = tx.QueryRowContext(ctx, r.dialect.rebind(selectTaskQuery), taskID, ownerID).
			Scan(&updated.ID, &updated.UserID, &updated.Text, &updated.Completed, &updated.Important)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("更新後のタスクの取得に失敗: %w", err)
		}
		return nil
	}, dbx.Isolation(r.dialect.updateIsolation()))
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTask はタスクを1件削除する。
func (r *taskRepository) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(deleteTaskQuery), taskID, ownerID)
	if err != nil {
		return fmt.Errorf("タスクの削除に失敗: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
