// Package middleware はTo-Do APIのGinルーターに差し込むミドルウェア群を提供する。
//
// JWTAuthは認証ゲートでトークンを検証し、解決したユーザーをコンテキストに格納する。
// エラーはAbortWithErrorで {"error", "code"} 形式に揃えて返す。
// RecoveryとRequestLoggerはslogに出力する。
package middleware
