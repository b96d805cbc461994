// Package dbx はリポジトリ間で共有するdatabase/sqlの小さな抽象を提供する。
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX はリポジトリが使用するdatabase/sqlのメソッド集合。
// *sql.DBと*sql.Txの両方が満たす。
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Beginner はトランザクションを開始できる接続。*sql.DBが満たす。
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// TxOption はトランザクションの開始オプションを変更する。
type TxOption func(*sql.TxOptions)

// Isolation は分離レベルを指定する。sql.LevelDefaultの場合はドライバの既定値を使う。
func Isolation(level sql.IsolationLevel) TxOption {
	return func(o *sql.TxOptions) { o.Isolation = level }
}

// WithTx はトランザクション内でfnを実行する。
// fnがエラーを返すかパニックした場合はロールバックし、成功した場合はコミットする。
// ロールバック自体が失敗した場合は、そのエラーもfnのエラーに連結して返す。
// パニックはロールバック後に再送出する。
func WithTx(ctx context.Context, db Beginner, fn func(ctx context.Context, tx DBTX) error, opts ...TxOption) (err error) {
	var txOpts sql.TxOptions
	for _, opt := range opts {
		opt(&txOpts)
	}

	tx, err := db.BeginTx(ctx, &txOpts)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("ロールバックに失敗: %w", rerr))
			}
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("トランザクションのコミットに失敗: %w", cerr)
		}
	}()

	return fn(ctx, tx)
}
