package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/todo/internal/apperr"
)

// AbortWithError はエラーを分類してJSONで返し、後続のハンドラを中断する。
// 分類できないエラーは詳細を返さず、サーバー側のログにのみ記録する。
func AbortWithError(c *gin.Context, err error) {
	class, known := apperr.Classify(err)
	if !known {
		slog.ErrorContext(c.Request.Context(), "リクエストの処理に失敗",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	writeClass(c, class)
}

// writeClass は {"error": ..., "code": ...} 形式のボディで応答を打ち切る。
func writeClass(c *gin.Context, class apperr.Class) {
	c.AbortWithStatusJSON(class.Status, gin.H{
		"error": class.Message,
		"code":  class.Code,
	})
}
