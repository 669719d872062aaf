package model

import "net/http"

// Result はコア操作が呼び出し元に返す結果エンベロープ。
// StatusCodeはコア側で選択し、トランスポートへの描画は呼び出し元が行う。
type Result[T any] struct {
	Data       T
	Message    string
	StatusCode int
}

// OK は読み取り成功（200）の結果を生成する。
func OK[T any](data T, message string) *Result[T] {
	return &Result[T]{Data: data, Message: message, StatusCode: http.StatusOK}
}

// Created は作成成功（201）の結果を生成する。
func Created[T any](data T, message string) *Result[T] {
	return &Result[T]{Data: data, Message: message, StatusCode: http.StatusCreated}
}
