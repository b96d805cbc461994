package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/todo/internal/apperr"
	"github.com/nao1215/todo/internal/model"
)

const (
	// contextKeyUserID はGinコンテキストに保存するユーザーIDのキー。
	contextKeyUserID = "user_id"
	// contextKeyUser はGinコンテキストに保存するユーザーのキー。
	contextKeyUser = "user"
)

// Verifier はトークンを検証し、対応するユーザーを返す。
// auth.Gateが実装する。
type Verifier interface {
	Verify(ctx context.Context, token string) (*model.User, error)
}

// JWTAuth はAuthorizationヘッダーのトークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストに "user_id" と "user" を設定する。
func JWTAuth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			AbortWithError(c, apperr.ErrMissingCredential)
			return
		}

		user, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextKeyUserID, user.ID)
		c.Set(contextKeyUser, user)
		c.Next()
	}
}

// bearerToken はAuthorizationヘッダーからトークンを取り出す。
// "Bearer <token>" 形式と、トークンのみの形式の両方を受け付ける。
// スキームのみでトークンが無い場合は空文字列を返す。
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if strings.EqualFold(header, "Bearer") {
		return ""
	}
	if scheme, token, found := strings.Cut(header, " "); found {
		if !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return header
}

// GetUserID はGinコンテキストからユーザーIDを取得する。
// JWTAuthミドルウェアが事前に適用されている必要がある。
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get(contextKeyUserID)
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetUser はGinコンテキストから認証済みユーザーを取得する。
func GetUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(contextKeyUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}
