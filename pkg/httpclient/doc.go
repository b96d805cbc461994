// Package httpclient はTo-Do APIをJSONで呼び出すクライアントを提供する。
//
// コマンドラインクライアントtodoctlが使用する。
// トークンはコンテキスト経由で渡し、エラーレスポンスはStatusErrorとして返す。
package httpclient
