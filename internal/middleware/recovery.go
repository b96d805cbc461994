package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/todo/internal/apperr"
)

// Recovery はハンドラ内のパニックを回収し、500 INTERNALとして応答するGinミドルウェアを返す。
// パニックの値とスタックトレースはloggerにのみ出力し、クライアントには返さない。
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.ErrorContext(c.Request.Context(), "パニックから回復しました",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			writeClass(c, apperr.Internal)
		}()
		c.Next()
	}
}
