package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

// TestClassify はエラーからHTTP表現への変換を検証する。
func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantKnown  bool
	}{
		{"認証情報なし", ErrMissingCredential, http.StatusUnauthorized, "MISSING_CREDENTIAL", true},
		{"不正なトークン", ErrInvalidCredential, http.StatusUnauthorized, "INVALID_CREDENTIAL", true},
		{"期限切れトークン", ErrExpiredCredential, http.StatusUnauthorized, "EXPIRED_CREDENTIAL", true},
		{"ログイン失敗", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", true},
		{"メールアドレス重複", ErrEmailTaken, http.StatusBadRequest, "EMAIL_TAKEN", true},
		{"入力エラー", ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR", true},
		{"見つからない", ErrNotFound, http.StatusNotFound, "NOT_FOUND", true},
		{"ラップされたエラー", fmt.Errorf("タスク更新: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND", true},
		{"未知のエラー", errors.New("connection refused"), http.StatusInternalServerError, "INTERNAL", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, known := Classify(tt.err)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", got.Status, tt.wantStatus)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if known != tt.wantKnown {
				t.Errorf("known = %v, want %v", known, tt.wantKnown)
			}
		})
	}
}

// TestValidation はメッセージ付き入力エラーを検証する。
func TestValidation(t *testing.T) {
	t.Parallel()

	t.Run("ErrValidationとして判定されること", func(t *testing.T) {
		t.Parallel()

		err := Validation("textは必須です")
		if !errors.Is(err, ErrValidation) {
			t.Fatal("errors.Is(err, ErrValidation) = false")
		}
	})

	t.Run("メッセージがそのままレスポンスに使われること", func(t *testing.T) {
		t.Parallel()

		got, _ := Classify(fmt.Errorf("作成: %w", Validation("textは必須です")))
		if got.Message != "textは必須です" {
			t.Errorf("Message = %q, want %q", got.Message, "textは必須です")
		}
	})

	t.Run("内部エラーの詳細がメッセージに含まれないこと", func(t *testing.T) {
		t.Parallel()

		got, _ := Classify(errors.New("pq: password authentication failed for user admin"))
		if got.Message != Internal.Message {
			t.Errorf("Message = %q, want %q", got.Message, Internal.Message)
		}
	})
}
