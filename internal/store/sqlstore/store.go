// Package sqlstore はdatabase/sqlを用いたstore.Storeの実装を提供する。
//
// SQLite（modernc.org/sqlite）とPostgreSQL（pgx）の両方を同じクエリで扱い、
// プレースホルダと一意制約違反の判定のみをダイアレクトごとに切り替える。
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// database/sqlドライバを登録する。
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/nao1215/todo/internal/store"
	"github.com/nao1215/todo/pkg/migration"
)

// Store はSQLデータベースをバックエンドとするストア。
type Store struct {
	// db はデータベース接続プール。
	db *sql.DB
	// dialect はSQLダイアレクト。
	dialect Dialect
}

var _ store.Store = (*Store)(nil)

// Open はデータベースに接続し、マイグレーションを適用したストアを返す。
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	if dialect != SQLite && dialect != Postgres {
		return nil, fmt.Errorf("未対応のダイアレクトです: %q", dialect)
	}

	if dialect == SQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if dialect == SQLite {
		// SQLiteは書き込みが直列化されるため1接続に固定する。
		// インメモリDBを接続ごとに分断させない目的もある。
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("データベースへの疎通確認に失敗: %w", err)
	}

	if err := migration.Run(ctx, db, dialect.migrationDialect()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	return New(db, dialect), nil
}

// sqliteDSN は接続ごとに外部キー制約が有効になるよう、DSNに _pragma=foreign_keys(1) を付与する。
// 既にforeign_keysのプラグマが指定されている場合はそのまま返す。
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// New は接続済みの*sql.DBからストアを生成する。マイグレーションは行わない。
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Users はユーザーリポジトリを返す。
func (s *Store) Users() store.UserRepository {
	return &userRepository{db: s.db, dialect: s.dialect}
}

// Tasks はタスクリポジトリを返す。
func (s *Store) Tasks() store.TaskRepository {
	return &taskRepository{db: s.db, dialect: s.dialect}
}

// Ping はデータベースへの疎通を確認する。
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close は接続プールを閉じる。
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}
