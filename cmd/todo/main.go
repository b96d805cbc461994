// To-Do APIサーバーのエントリポイント。
// ユーザー登録・ログインと、ユーザーごとのタスク管理をHTTPで提供する。
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/todo/internal/auth"
	"github.com/nao1215/todo/internal/config"
	"github.com/nao1215/todo/internal/store"
	"github.com/nao1215/todo/internal/store/mongostore"
	"github.com/nao1215/todo/internal/store/sqlstore"
	"github.com/nao1215/todo/internal/task"
	"github.com/nao1215/todo/internal/todo"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("To-Doサービスの起動に失敗: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Error("ストアのクローズに失敗", "error", err)
		}
	}()
	logger.Info("ストアに接続しました", "driver", cfg.Driver)

	gate := auth.NewGate(st.Users(), cfg.JWTSecret, auth.WithTTL(cfg.TokenTTL))
	server := todo.NewServer(cfg, gate, task.NewGateway(st.Tasks()), st, logger)
	return server.Run(ctx)
}

// newLogger は設定に従ってslogのロガーを生成する。
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// openStore は設定されたバックエンドのストアを開く。
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Driver {
	case config.DriverSQLite, config.DriverPostgres:
		dialect := sqlstore.SQLite
		if cfg.Driver == config.DriverPostgres {
			dialect = sqlstore.Postgres
		}
		var s *sqlstore.Store
		if s, err = sqlstore.Open(ctx, dialect, cfg.DatabaseURL); err == nil {
			st = s
		}
	case config.DriverMongo:
		var s *mongostore.Store
		if s, err = mongostore.Open(ctx, cfg.DatabaseURL, cfg.MongoDatabase); err == nil {
			st = s
		}
	default:
		err = fmt.Errorf("未対応のDB_DRIVERです: %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("ストアの初期化に失敗: %w", err)
	}
	return st, nil
}
