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

// userRepository はusersテーブルに対するリポジトリ。
type userRepository struct {
	db      dbx.DBTX
	dialect Dialect
}

const (
	insertUserQuery = `INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`
	selectUserByEmailQuery = `SELECT id, name, email, password_hash FROM users
		WHERE email = ?`
	selectUserByIDQuery = `SELECT id, name, email, password_hash FROM users
		WHERE id = ?`
)

// CreateUser はユーザーを作成する。IDはUUIDで採番する。
func (r *userRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	created := *user
	created.ID = uuid.New().String()

	_, err := r.db.ExecContext(ctx, r.dialect.rebind(insertUserQuery),
		created.ID, created.Name, created.Email, created.PasswordHash, time.Now().UTC())
	if err != nil {
		if r.dialect.isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗: %w", err)
	}
	return &created, nil
}

// GetUserByEmail はメールアドレスでユーザーを取得する。
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, selectUserByEmailQuery, email)
}

// GetUserByID はIDでユーザーを取得する。
func (r *userRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return r.getUser(ctx, selectUserByIDQuery, id)
}

func (r *userRepository) getUser(ctx context.Context, query string, arg string) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, r.dialect.rebind(query), arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return u, nil
}
