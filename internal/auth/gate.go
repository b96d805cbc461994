// Package auth はトークンの発行・検証とユーザー登録・ログインを担う認証ゲートを提供する。
//
// トークンはHS256で署名したJWTで、サーバー側にセッション状態を持たない。
// 失効手段は有効期限のみである。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/nao1215/todo/internal/apperr"
	"github.com/nao1215/todo/internal/model"
	"github.com/nao1215/todo/internal/store"
)

const (
	// DefaultTTL はトークンの既定の有効期間。
	DefaultTTL = 24 * time.Hour
	// issuer はトークンのiss クレームに設定する値。
	issuer = "todo-api"
)

// Claims はトークンのクレーム。
type Claims struct {
	jwt.RegisteredClaims
	// UserID はトークン所有者のユーザーID。
	UserID string `json:"user_id"`
}

// Session はログイン成功時にクライアントへ返す内容。
type Session struct {
	Token string            `json:"token"`
	User  model.UserSummary `json:"user"`
}

// Gate は認証ゲート。
type Gate struct {
	users      store.UserRepository
	secret     []byte
	ttl        time.Duration
	now        func() time.Time
	bcryptCost int
	// dummyHash は存在しないメールアドレスでのログイン時に比較に使うハッシュ。
	dummyHash []byte
}

// Option はGateの設定を変更する。
type Option func(*Gate)

// WithTTL はトークンの有効期間を設定する。
func WithTTL(ttl time.Duration) Option {
	return func(g *Gate) { g.ttl = ttl }
}

// WithClock は現在時刻の取得方法を差し替える。
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithBcryptCost はパスワードハッシュのコストを設定する。
func WithBcryptCost(cost int) Option {
	return func(g *Gate) { g.bcryptCost = cost }
}

// NewGate は認証ゲートを生成する。
func NewGate(users store.UserRepository, secret string, opts ...Option) *Gate {
	g := &Gate{
		users:      users,
		secret:     []byte(secret),
		ttl:        DefaultTTL,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.dummyHash = newDummyHash(g.bcryptCost)
	return g
}

// fallbackDummyHash はダミーハッシュを生成できなかった場合に使う、コスト10の有効なbcryptハッシュ。
const fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// newDummyHash は未登録メールアドレスの照合に使うハッシュをcostで生成する。
// 生成に失敗した場合は警告を出してfallbackDummyHashを返す。
func newDummyHash(cost int) []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("dummy-password"), cost)
	if err != nil {
		slog.Warn("ダミーハッシュの生成に失敗したため既定のハッシュを使用します", "cost", cost, "error", err)
		return []byte(fallbackDummyHash)
	}
	return h
}

// Register はユーザーを登録し、割り当てられたユーザーIDを返す。
// 登録済みのメールアドレスは他の項目の内容に関わらずErrEmailTakenになる。
func (g *Gate) Register(ctx context.Context, name, email, password string) (string, error) {
	if email != "" {
		_, err := g.users.GetUserByEmail(ctx, email)
		if err == nil {
			return "", apperr.ErrEmailTaken
		}
		if !errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("ユーザーの取得に失敗: %w", err)
		}
	}
	if name == "" || email == "" || password == "" {
		return "", apperr.Validation("name、email、passwordは必須です")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.Validation("パスワードは72バイト以内で指定してください")
	}
	if err != nil {
		return "", fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}

	// 確認後に同じメールアドレスが登録された場合は一意制約で検出する。
	user, err := g.users.CreateUser(ctx, &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return "", apperr.ErrEmailTaken
	}
	if err != nil {
		return "", fmt.Errorf("ユーザー登録に失敗: %w", err)
	}
	return user.ID, nil
}

// Authenticate はメールアドレスとパスワードを照合し、トークンを発行する。
// メールアドレスの未登録とパスワードの不一致は区別せずErrInvalidCredentialsを返す。
func (g *Gate) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	user, err := g.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		// 応答時間からメールアドレスの登録有無を推測されないよう、同じコストの比較を行う。
		_ = bcrypt.CompareHashAndPassword(g.dummyHash, []byte(password))
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}

	token, err := g.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user.Summary()}, nil
}

// Issue はユーザーIDを埋め込んだ署名済みトークンを発行する。
func (g *Gate) Issue(userID string) (string, error) {
	now := g.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   userID,
		},
		UserID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、トークンが示すユーザーを返す。
func (g *Gate) Verify(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperr.ErrMissingCredential
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.now),
		jwt.WithExpirationRequired(),
	)
	claims := &Claims{}
	_, err := parser.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return g.secret, nil
	})
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, apperr.ErrExpiredCredential
	}
	if err != nil || claims.UserID == "" {
		return nil, apperr.ErrInvalidCredential
	}

	user, err := g.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.ErrInvalidCredential
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return user, nil
}
