// Package apperr はAPI全体で共有するエラー分類を提供する。
//
// 認証ゲートとタスクゲートウェイはここで定義した番兵エラーを返し、
// HTTP層はClassifyでステータスコードとレスポンス用メッセージに変換する。
// 分類できないエラーはすべて内部エラーとして扱い、詳細をクライアントに返さない。
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingCredential はリクエストに認証情報が含まれていないことを表す。
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidCredential はトークンの署名・形式が不正、または対象ユーザーが存在しないことを表す。
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrExpiredCredential はトークンの有効期限切れを表す。
	ErrExpiredCredential = errors.New("expired credential")
	// ErrEmailTaken はメールアドレスが既に登録済みであることを表す。
	ErrEmailTaken = errors.New("email taken")
	// ErrInvalidCredentials はログイン時のメールアドレスまたはパスワードの不一致を表す。
	// どちらが誤っているかは区別しない。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation は必須項目の欠落など入力の不備を表す。
	ErrValidation = errors.New("validation error")
	// ErrNotFound は所有者で絞り込んだ検索で対象が見つからないことを表す。
	ErrNotFound = errors.New("not found")
)

// validationError はクライアントに返してよいメッセージを持つ入力エラー。
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

// Validation はErrValidationとして判定される、メッセージ付きのエラーを生成する。
func Validation(msg string) error {
	return &validationError{msg: msg}
}

// Class はエラーのHTTP表現。
type Class struct {
	// Status はHTTPステータスコード。
	Status int
	// Code は機械可読なエラーコード。
	Code string
	// Message はクライアントに返すメッセージ。
	Message string
}

// Internal は分類不能なエラーに対する共通の表現。
var Internal = Class{
	Status:  http.StatusInternalServerError,
	Code:    "INTERNAL",
	Message: "内部サーバーエラーが発生しました",
}

// Classify はエラーをHTTPステータス・コード・メッセージに変換する。
// 2番目の戻り値は既知のエラーであればtrueになる。falseの場合はサーバー側でログに記録すること。
func Classify(err error) (Class, bool) {
	var ve *validationError
	switch {
	case errors.As(err, &ve):
		return Class{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: ve.msg}, true
	case errors.Is(err, ErrValidation):
		return Class{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: "リクエストが不正です"}, true
	case errors.Is(err, ErrMissingCredential):
		return Class{Status: http.StatusUnauthorized, Code: "MISSING_CREDENTIAL", Message: "Authorizationヘッダーが必要です"}, true
	case errors.Is(err, ErrExpiredCredential):
		return Class{Status: http.StatusUnauthorized, Code: "EXPIRED_CREDENTIAL", Message: "トークンの有効期限が切れています"}, true
	case errors.Is(err, ErrInvalidCredential):
		return Class{Status: http.StatusUnauthorized, Code: "INVALID_CREDENTIAL", Message: "トークンが無効です"}, true
	case errors.Is(err, ErrInvalidCredentials):
		return Class{Status: http.StatusUnauthorized, Code: "INVALID_CREDENTIALS", Message: "メールアドレスまたはパスワードが正しくありません"}, true
	case errors.Is(err, ErrEmailTaken):
		return Class{Status: http.StatusBadRequest, Code: "EMAIL_TAKEN", Message: "このメールアドレスは既に登録されています"}, true
	case errors.Is(err, ErrNotFound):
		return Class{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "タスクが見つかりません"}, true
	default:
		return Internal, false
	}
}
