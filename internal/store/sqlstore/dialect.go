package sqlstore

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nao1215/todo/pkg/migration"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect はSQLダイアレクト。
type Dialect string

const (
	// SQLite はmodernc.org/sqliteドライバを使用する。
	SQLite Dialect = "sqlite"
	// Postgres はpgxのdatabase/sqlドライバを使用する。
	Postgres Dialect = "postgres"
)

// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const pgUniqueViolation = "23505"

// driverName はsql.Openに渡すドライバ名を返す。
func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

// migrationDialect はマイグレーションで使用するダイアレクトを返す。
func (d Dialect) migrationDialect() migration.Dialect {
	if d == Postgres {
		return migration.DialectPostgres
	}
	return migration.DialectSQLite
}

// updateIsolation はタスク更新のトランザクションで使う分離レベルを返す。
// PostgreSQLはサーバー側の既定値がserializableでも同一行の同時更新が失敗しないようREAD COMMITTEDに固定する。
// SQLiteのトランザクションは常に直列化されるため既定値のままとする。
func (d Dialect) updateIsolation() sql.IsolationLevel {
	if d == Postgres {
		return sql.LevelReadCommitted
	}
	return sql.LevelDefault
}

// rebind はクエリ中の ? プレースホルダをダイアレクトの形式に変換する。
// クエリはすべてこのパッケージ内の定数であり、文字列リテラル中に ? は含まない。
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isUniqueViolation はエラーが一意制約違反かどうかを返す。
func (d Dialect) isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
