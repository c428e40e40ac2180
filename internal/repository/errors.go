package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// 一意制約違反（username重複など）
	ErrDuplicate = errors.New("duplicate")

	// 直列化失敗・デッドロック。やり直せば通る可能性がある
	ErrConflict = errors.New("conflict")
)
