// Package model はユーザーとタスクのドメインモデルを定義する。
//
// 識別子はすべて不透明な文字列として扱い、ストレージ固有の表現（UUID、ObjectID等）への
// 変換はストレージ層の境界で行う。
package model
