// Package config は環境変数からサーバー設定を読み込む。
//
// 起動時に.envファイルが存在すれば読み込み、既に設定済みの環境変数は上書きしない。
// 不正な値はデフォルト値で黙って置き換えず、エラーとして返す。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Driver はストレージのバックエンド種別。
type Driver string

const (
	// DriverSQLite は組み込みのSQLiteを使用する。
	DriverSQLite Driver = "sqlite"
	// DriverPostgres はPostgreSQLを使用する。
	DriverPostgres Driver = "postgres"
	// DriverMongo はMongoDBを使用する。
	DriverMongo Driver = "mongo"
)

// defaultSecret は開発用の署名鍵。本番では必ずJWT_SECRETを設定すること。
const defaultSecret = "dev-secret-key"

// Config はサーバーの設定値。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// JWTSecret はトークン署名用の秘密鍵。
	JWTSecret string
	// TokenTTL はトークンの有効期間。
	TokenTTL time.Duration
	// Driver はストレージのバックエンド種別。
	Driver Driver
	// DatabaseURL はストレージの接続文字列。
	DatabaseURL string
	// MongoDatabase はMongoDB使用時のデータベース名。
	MongoDatabase string
	// CORSOrigins はクロスオリジンを許可するオリジン。"*"はすべてを許可する。
	CORSOrigins []string
	// LogLevel はslogのログレベル。
	LogLevel slog.Level
	// LogFormat は"json"または"text"。
	LogFormat string
	// ShutdownTimeout はグレースフルシャットダウンの待ち時間。
	ShutdownTimeout time.Duration
}

// Load は.envファイルと環境変数から設定を読み込む。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(".envファイルの読み込みに失敗: %w", err)
	}
	return FromEnv()
}

// FromEnv は環境変数のみから設定を読み込む。
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:          getEnvOr("PORT", "8080"),
		JWTSecret:     getEnvOr("JWT_SECRET", defaultSecret),
		Driver:        Driver(strings.ToLower(getEnvOr("DB_DRIVER", string(DriverSQLite)))),
		MongoDatabase: getEnvOr("MONGO_DATABASE", "todo"),
		LogFormat:     strings.ToLower(getEnvOr("LOG_FORMAT", "json")),
		CORSOrigins:   splitList(getEnvOr("CORS_ORIGINS", "http://localhost:3000")),
	}

	var err error
	if cfg.TokenTTL, err = parseDuration("TOKEN_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDuration("SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnvOr("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVELが不正です: %w", err)
	}

	switch cfg.Driver {
	case DriverSQLite:
		cfg.DatabaseURL = getEnvOr("DATABASE_URL", "file:todo.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	case DriverPostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DB_DRIVER=postgresの場合はDATABASE_URLが必要です")
		}
	case DriverMongo:
		cfg.DatabaseURL = getEnvOr("DATABASE_URL", "mongodb://localhost:27017")
	default:
		return nil, fmt.Errorf("DB_DRIVERが不正です: %q", cfg.Driver)
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LOG_FORMATが不正です: %q", cfg.LogFormat)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTLは正の値を指定してください: %s", cfg.TokenTTL)
	}
	if cfg.JWTSecret == defaultSecret {
		slog.Warn("JWT_SECRETが未設定のため開発用の秘密鍵を使用します")
	}
	return cfg, nil
}

// Addr はリッスンアドレスを返す。
func (c *Config) Addr() string {
	return ":" + c.Port
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func parseDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnvOr(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("%sが不正です: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
