// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// エラーカテゴリ。画面上のバナー表示の種類に対応する。
const (
	CategoryAuth         = "auth"
	CategoryConnectivity = "connectivity"
	CategoryRejected     = "rejected"
	CategoryValidation   = "validation"
	CategorySystem       = "system"
)

// AppError は画面に表示するエラーの統一フォーマットを表す。
// 原因カテゴリと対処方法を含む。
type AppError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, connectivity, rejected, validation, system
	Action   string // ユーザー向け対処方法
	Fields   []FieldError
}

// FieldError は入力項目ごとの検証エラーを表す。
type FieldError struct {
	Field   string
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *AppError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("[%s] %s (%s)", e.Code, e.Message, strings.Join(parts, "; "))
}

// 定義済みエラーコード
const (
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeConnectivity    = "BACKEND_UNREACHABLE"
	ErrCodeTimeout         = "BACKEND_TIMEOUT"
	ErrCodeRejected        = "BACKEND_REJECTED"
	ErrCodeValidation      = "VALIDATION_FAILED"
	ErrCodeUnexpected      = "UNEXPECTED"
	ErrCodeCSRF            = "CSRF_FAILED"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeNotFound        = "NOT_FOUND"
)

// NewUnauthenticatedError は未認証アクセスのエラーを生成する。
func NewUnauthenticatedError() *AppError {
	return &AppError{
		Code:     ErrCodeUnauthenticated,
		Message:  MsgLoginRequired,
		Category: CategoryAuth,
		Action:   "Sign in to continue.",
	}
}

// NewConnectivityError はバックエンドに到達できない場合のエラーを生成する。
// messageが空の場合は既定の文言を使う。
func NewConnectivityError(message string) *AppError {
	if message == "" {
		message = MsgCannotConnect
	}
	return &AppError{
		Code:     ErrCodeConnectivity,
		Message:  message,
		Category: CategoryConnectivity,
		Action:   "Check your connection and try again later.",
	}
}

// NewTimeoutError はバックエンド呼び出しのタイムアウトエラーを生成する。
func NewTimeoutError(message string) *AppError {
	if message == "" {
		message = MsgRequestTimedOut
	}
	return &AppError{
		Code:     ErrCodeTimeout,
		Message:  message,
		Category: CategoryConnectivity,
		Action:   "Check your connection and try again.",
	}
}

// NewRejectedError はバックエンドが要求を拒否した場合のエラーを生成する。
// detailが空の場合はfallbackを表示する。
func NewRejectedError(detail, fallback string) *AppError {
	message := strings.TrimSpace(detail)
	if message == "" {
		message = fallback
	}
	return &AppError{
		Code:     ErrCodeRejected,
		Message:  message,
		Category: CategoryRejected,
		Action:   "Review your input and try again.",
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(fields ...FieldError) *AppError {
	return &AppError{
		Code:     ErrCodeValidation,
		Message:  "Please correct the highlighted fields.",
		Category: CategoryValidation,
		Action:   "Fix the input and submit again.",
		Fields:   fields,
	}
}

// NewUnexpectedError は分類できないエラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewUnexpectedError() *AppError {
	return &AppError{
		Code:     ErrCodeUnexpected,
		Message:  MsgUnexpected,
		Category: CategorySystem,
		Action:   "Please try again.",
	}
}

// NewCSRFError はCSRFトークン検証失敗のエラーを生成する。
func NewCSRFError() *AppError {
	return &AppError{
		Code:     ErrCodeCSRF,
		Message:  "Your form has expired.",
		Category: CategoryAuth,
		Action:   "Reload the page and submit again.",
	}
}

// NewRateLimitedError はレート制限超過のエラーを生成する。
func NewRateLimitedError() *AppError {
	return &AppError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests.",
		Category: CategorySystem,
		Action:   "Wait a moment and try again.",
	}
}

// NewNotFoundError は存在しないページへのアクセスのエラーを生成する。
func NewNotFoundError() *AppError {
	return &AppError{
		Code:     ErrCodeNotFound,
		Message:  "Page not found.",
		Category: CategorySystem,
		Action:   "Go back to the home page.",
	}
}
