// Package migration はデータベースのマイグレーションを管理する。
// embed.FSに同梱したダイアレクト別のSQLファイルをgooseで適用する。
package migration

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// Dialect はマイグレーション対象のSQLダイアレクト。
type Dialect string

const (
	// DialectSQLite はSQLite（modernc.org/sqlite）を表す。
	DialectSQLite Dialect = "sqlite"
	// DialectPostgres はPostgreSQL（pgx）を表す。
	DialectPostgres Dialect = "postgres"
)

//go:embed sql/sqlite/*.sql sql/postgres/*.sql
var migrations embed.FS

// gooseDialect はDialectに対応するgooseのダイアレクトを返す。
func gooseDialect(d Dialect) (goose.Dialect, error) {
	switch d {
	case DialectSQLite:
		return goose.DialectSQLite3, nil
	case DialectPostgres:
		return goose.DialectPostgres, nil
	default:
		return "", fmt.Errorf("未対応のダイアレクトです: %q", d)
	}
}

// Files はダイアレクトに対応するマイグレーションファイルのFSを返す。
func Files(d Dialect) (fs.FS, error) {
	if _, err := gooseDialect(d); err != nil {
		return nil, err
	}
	return fs.Sub(migrations, "sql/"+string(d))
}

// Run は未適用のマイグレーションをバージョン順に適用する。
// 適用済みのバージョンはgooseのバージョン管理テーブルで追跡され、スキップされる。
// ファイル名形式: 000001_description.sql
func Run(ctx context.Context, db *sql.DB, d Dialect) error {
	dialect, err := gooseDialect(d)
	if err != nil {
		return err
	}

	fsys, err := Files(d)
	if err != nil {
		return fmt.Errorf("マイグレーションファイルの取得に失敗: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("マイグレーションの初期化に失敗: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("マイグレーションの適用に失敗: %w", err)
	}

	for _, r := range results {
		slog.InfoContext(ctx, "マイグレーションを適用しました",
			"dialect", string(d),
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration", r.Duration,
		)
	}
	return nil
}
