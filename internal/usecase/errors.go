package usecase

import (
	"errors"
	"fmt"
)

// usecaseが返すエラーの種類。handlerはerrors.Isで見分けてHTTPに変換する。
var (
	ErrEmptyTransaction   = errors.New("transaction has no line items")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUnauthorized       = errors.New("not permitted")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrNotFound           = errors.New("not found")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrConcurrentUpdate   = errors.New("concurrent update, retry")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// InsufficientStockError はどの商品が足りなかったかを持つ
type InsufficientStockError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ValidationError は入力の形が不正。Msgはそのままクライアントに返す
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func invalid(msg string) error { return NewValidationError(msg) }

// 呼び出し側がやり直せば通る可能性があるか
func IsRetryable(err error) bool {
	return errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrConcurrentUpdate)
}
