// Package todo はTo-Do APIのHTTPサーバーを提供する。
//
// ユーザー登録・ログインと、認証済みユーザー自身のタスクに対する
// 一覧・作成・更新・削除をJSONで公開する。タスクのエンドポイントはすべて
// トークンの検証を経てから、解決したユーザーIDで絞り込んで処理する。
package todo
