// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Codeはハンドラー層でHTTPステータスへのマッピングに使用する。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, job, application, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeEmployerNotFound    = "EMPLOYER_NOT_FOUND"
	ErrCodeJobNotFound         = "JOB_NOT_FOUND"
	ErrCodeApplicationNotFound = "APPLICATION_NOT_FOUND"
	ErrCodeAlreadyApplied      = "ALREADY_APPLIED"
	ErrCodeEmailAlreadyExists  = "EMAIL_ALREADY_EXISTS"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeInvalidSortField    = "INVALID_SORT_FIELD"
	ErrCodeInvalidStatus       = "INVALID_STATUS"
	ErrCodeInvalidPage         = "INVALID_PAGE"
)

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: "auth",
	}
}

// NewEmployerNotFoundError は求人作成時に雇用者が見つからない場合のエラーを生成する。
func NewEmployerNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeEmployerNotFound,
		Message:  "Employer not found",
		Category: "auth",
	}
}

// NewJobNotFoundError は求人未検出エラーを生成する。
func NewJobNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeJobNotFound,
		Message:  "Job not found",
		Category: "job",
	}
}

// NewApplicationNotFoundError は応募未検出エラーを生成する。
func NewApplicationNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeApplicationNotFound,
		Message:  "Application not found",
		Category: "application",
	}
}

// NewAlreadyAppliedError は同一求人への重複応募エラーを生成する。
func NewAlreadyAppliedError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyApplied,
		Message:  "Already applied for this job",
		Category: "application",
	}
}

// NewEmailAlreadyExistsError は登録済みメールアドレスでの登録エラーを生成する。
func NewEmailAlreadyExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailAlreadyExists,
		Message:  "Email already exists",
		Category: "auth",
	}
}

// NewForbiddenError は所有者・ロールのチェックに失敗した場合のエラーを生成する。
func NewForbiddenError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  message,
		Category: "auth",
	}
}

// NewUnauthenticatedError は認証が必要な場合のエラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "Authentication required",
		Category: "auth",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// メールアドレスとパスワードのどちらが誤っているかは区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid email or password",
		Category: "auth",
	}
}

// NewInvalidRequestError はリクエスト内容の検証エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("Invalid request: %s", reason),
		Category: "validation",
	}
}

// NewInvalidSortFieldError はソート対象外のフィールドが指定された場合のエラーを生成する。
func NewInvalidSortFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSortField,
		Message:  fmt.Sprintf("Invalid sort field: %s", field),
		Category: "validation",
	}
}

// NewInvalidStatusError は未定義の応募状態が指定された場合のエラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("Invalid application status: %s", status),
		Category: "validation",
	}
}

// NewInvalidPageError はページ番号が不正な場合のエラーを生成する。
func NewInvalidPageError(page int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPage,
		Message:  fmt.Sprintf("Invalid page: %d", page),
		Category: "validation",
	}
}
