package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Detailsには検証エラーで問題のあったフィールド・タグを全て列挙する。
type APIError struct {
	Code    string   // エラーコード
	Message string   // エラーメッセージ
	Details []string // 検証エラーの詳細（問題のあるフィールドを全件列挙）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeLoginFailed          = "LOGIN_FAILED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeVerificationRequired = "VERIFICATION_REQUIRED"
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeInternal             = "INTERNAL_ERROR"
)

// NewUnauthorizedError は認証されていない呼び出しのエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: "認証が必要です。",
	}
}

// NewLoginFailedError はログイン失敗エラーを生成する。
// メールアドレス不一致とパスワード不一致を区別しない。
func NewLoginFailedError() *APIError {
	return &APIError{
		Code:    ErrCodeLoginFailed,
		Message: "メールアドレスまたはパスワードが正しくありません。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError(reason string) *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Message: reason,
	}
}

// NewVerificationRequiredError は本人確認未完了エラーを生成する。
// 議会フィードは確認済み選挙区に基づくため、未確認ユーザーには提供しない。
func NewVerificationRequiredError() *APIError {
	return &APIError{
		Code:    ErrCodeVerificationRequired,
		Message: "フィードの利用には本人確認が必要です。",
	}
}

// NewValidationError は検証エラーを生成する。
// detailsには問題のあったフィールド・タグを最初の1件だけでなく全件含めること。
func NewValidationError(details []string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "リクエストの検証に失敗しました。",
		Details: details,
	}
}

// NewInvalidRequestError はリクエスト形式エラーを生成する。
func NewInvalidRequestError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidRequest,
		Message: message,
	}
}
