package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/todo/internal/apperr"
	"github.com/nao1215/todo/internal/auth"
	"github.com/nao1215/todo/internal/config"
	"github.com/nao1215/todo/internal/middleware"
	"github.com/nao1215/todo/internal/model"
	"github.com/nao1215/todo/internal/task"
)

// healthTimeout はヘルスチェックでストアに疎通確認する際の待ち時間。
const healthTimeout = 2 * time.Second

// Pinger はストレージの疎通確認を行う。store.Storeが実装する。
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server はTo-Do APIのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// addr はサーバーのリッスンアドレス。
	addr string
	// gate は認証ゲート。
	gate *auth.Gate
	// tasks はタスクゲートウェイ。
	tasks *task.Gateway
	// pinger はヘルスチェックで使用するストア。
	pinger Pinger
	// logger はサーバーのライフサイクルを記録するロガー。
	logger *slog.Logger
	// shutdownTimeout はグレースフルシャットダウンの待ち時間。
	shutdownTimeout time.Duration
}

// NewServer は新しいサーバーを生成する。
func NewServer(cfg *config.Config, gate *auth.Gate, tasks *task.Gateway, pinger Pinger, logger *slog.Logger) *Server {
	router := gin.New()
	// RequestLoggerはRecoveryの外側に置く。パニックしたリクエストも500として記録される。
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	s := &Server{
		router:          router,
		addr:            cfg.Addr(),
		gate:            gate,
		tasks:           tasks,
		pinger:          pinger,
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	s.setupRoutes()
	return s
}

// Handler はHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされるとグレースフルシャットダウンする。
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("リッスンに失敗: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve は指定されたリスナーでリクエストを受け付ける。
// ctxがキャンセルされると新規接続の受け付けを止め、処理中のリクエストを待って終了する。
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTPサーバーを起動します", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTPサーバーが停止しました: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("HTTPサーバーを停止します", "timeout", s.shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("グレースフルシャットダウンに失敗: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTPサーバーが異常終了しました: %w", err)
	}
	return nil
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 認証エンドポイント（トークン不要）
	authGroup := s.router.Group("/api/auth")
	{
		authGroup.POST("/signup", s.handleSignup())
		authGroup.POST("/login", s.handleLogin())
		authGroup.GET("/user", middleware.JWTAuth(s.gate), s.handleGetCurrentUser())
	}

	// タスク（トークン必須）
	api := s.router.Group("/api/tasks")
	api.Use(middleware.JWTAuth(s.gate))
	{
		api.GET("", s.handleListTasks())
		api.POST("", s.handleCreateTask())
		api.PUT("/:id", s.handleUpdateTask())
		api.DELETE("/:id", s.handleDeleteTask())
	}

	// ヘルスチェック
	s.router.GET("/health", s.handleHealth())
}

// signupRequest はユーザー登録リクエストのボディ。
type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// taskResponse はレスポンスで返すタスクの表現。所有者IDは含めない。
type taskResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Important bool   `json:"important"`
}

func toTaskResponse(t *model.Task) taskResponse {
	return taskResponse{ID: t.ID, Text: t.Text, Completed: t.Completed, Important: t.Important}
}

// errBadBody はJSONとして解釈できないリクエストボディを表す。
var errBadBody = apperr.Validation("リクエストボディが不正です")

// handleSignup はユーザー登録を行うハンドラを返す。
func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.AbortWithError(c, errBadBody)
			return
		}

		if _, err := s.gate.Register(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
			middleware.AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "ユーザー登録が完了しました"})
	}
}

// handleLogin はログインしてトークンを発行するハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.AbortWithError(c, errBadBody)
			return
		}

		sess, err := s.gate.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, sess)
	}
}

// handleGetCurrentUser は認証済みユーザーの情報を返すハンドラを返す。
func (s *Server) handleGetCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUser(c)
		if !ok {
			middleware.AbortWithError(c, apperr.ErrMissingCredential)
			return
		}
		c.JSON(http.StatusOK, user.Summary())
	}
}

// handleListTasks は認証済みユーザーのタスク一覧を返すハンドラを返す。
func (s *Server) handleListTasks() gin.HandlerFunc {
	return func(c *gin.Context) {
		tasks, err := s.tasks.List(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}

		resp := make([]taskResponse, 0, len(tasks))
		for i := range tasks {
			resp = append(resp, toTaskResponse(&tasks[i]))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// handleCreateTask はタスクを作成するハンドラを返す。
func (s *Server) handleCreateTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		var fields model.TaskFields
		if err := c.ShouldBindJSON(&fields); err != nil {
			middleware.AbortWithError(c, errBadBody)
			return
		}

		created, err := s.tasks.Create(c.Request.Context(), middleware.GetUserID(c), fields)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toTaskResponse(created))
	}
}

// handleUpdateTask はタスクを部分更新するハンドラを返す。
func (s *Server) handleUpdateTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		var fields model.TaskFields
		if err := c.ShouldBindJSON(&fields); err != nil {
			middleware.AbortWithError(c, errBadBody)
			return
		}

		updated, err := s.tasks.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), fields)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, toTaskResponse(updated))
	}
}

// handleDeleteTask はタスクを削除するハンドラを返す。
func (s *Server) handleDeleteTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.tasks.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "タスクを削除しました"})
	}
}

// handleHealth はストアへの疎通を確認するハンドラを返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.WarnContext(ctx, "ストアへの疎通確認に失敗", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "service": "todo"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "todo"})
	}
}
