package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

// clearEnv はテスト対象の環境変数を空にする。
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "JWT_SECRET", "TOKEN_TTL", "DB_DRIVER", "DATABASE_URL", "MONGO_DATABASE",
		"CORS_ORIGINS", "LOG_LEVEL", "LOG_FORMAT", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv()でエラーが発生: %v", err)
	}
	if cfg.Port != "8080" || cfg.Addr() != ":8080" {
		t.Errorf("Port = %q, Addr = %q", cfg.Port, cfg.Addr())
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %s, want 24h", cfg.TokenTTL)
	}
	if cfg.Driver != DriverSQLite {
		t.Errorf("Driver = %q, want %q", cfg.Driver, DriverSQLite)
	}
	if cfg.DatabaseURL == "" {
		t.Error("SQLiteの既定のDATABASE_URLが空")
	}
	if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "json" {
		t.Errorf("LogLevel = %v, LogFormat = %q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %s, want 10s", cfg.ShutdownTimeout)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("DB_DRIVER", "Mongo")
	t.Setenv("MONGO_DATABASE", "tasks")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "TEXT")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv()でエラーが発生: %v", err)
	}
	if cfg.Port != "9090" || cfg.JWTSecret != "s3cret" || cfg.TokenTTL != time.Hour {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Driver != DriverMongo || cfg.DatabaseURL != "mongodb://localhost:27017" || cfg.MongoDatabase != "tasks" {
		t.Errorf("Driver = %q, DatabaseURL = %q, MongoDatabase = %q", cfg.Driver, cfg.DatabaseURL, cfg.MongoDatabase)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !slices.Equal(cfg.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.CORSOrigins, want)
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "text" {
		t.Errorf("LogLevel = %v, LogFormat = %q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "未対応のDB_DRIVER", env: map[string]string{"DB_DRIVER": "oracle"}},
		{name: "postgresでDATABASE_URL無し", env: map[string]string{"DB_DRIVER": "postgres"}},
		{name: "不正なTOKEN_TTL", env: map[string]string{"TOKEN_TTL": "1日"}},
		{name: "負のTOKEN_TTL", env: map[string]string{"TOKEN_TTL": "-1h"}},
		{name: "不正なSHUTDOWN_TIMEOUT", env: map[string]string{"SHUTDOWN_TIMEOUT": "soon"}},
		{name: "不正なLOG_LEVEL", env: map[string]string{"LOG_LEVEL": "verbose"}},
		{name: "不正なLOG_FORMAT", env: map[string]string{"LOG_FORMAT": "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Error("エラーが返らなかった")
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7070\nJWT_SECRET=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf(".envファイルの作成に失敗: %v", err)
	}
	t.Chdir(dir)
	// godotenvは空文字列で設定済みの変数も既存とみなすため、対象の変数を未設定に戻す。
	for _, key := range []string{"PORT", "JWT_SECRET"} {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("環境変数の削除に失敗: %v", err)
		}
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load()でエラーが発生: %v", err)
	}
	if cfg.Port != "7070" || cfg.JWTSecret != "from-dotenv" {
		t.Errorf("Port = %q, JWTSecret = %q", cfg.Port, cfg.JWTSecret)
	}
}

func TestLoadWithoutDotEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	if _, err := Load(); err != nil {
		t.Errorf("Load()でエラーが発生: %v", err)
	}
}
