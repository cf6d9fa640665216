package errors

import (
	"net/http"

	"passwordless/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Credential verification errors. The message deliberately does not say
	// whether the account exists or which part of the credential failed.
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"電子郵件或驗證碼錯誤",
		"",
	)

	ErrAccountLocked = NewBaseError(
		http.StatusLocked,
		"ACCOUNT_LOCKED",
		"帳號已被暫時鎖定，請稍後再試",
		"",
	)

	// OTP-related errors
	ErrOtpResendThrottled = NewBaseError(
		http.StatusTooManyRequests,
		"OTP_RESEND_THROTTLED",
		"驗證碼傳送過於頻繁，請稍後再試",
		"",
	)

	ErrOtpChallengeNotFound = NewBaseError(
		http.StatusNotFound,
		"OTP_CHALLENGE_NOT_FOUND",
		"找不到有效的驗證碼",
		"",
	)

	// TOTP-related errors
	ErrTotpNotEnrolled = NewBaseError(
		http.StatusNotFound,
		"TOTP_NOT_ENROLLED",
		"找不到認證器註冊紀錄",
		"",
	)

	// WebAuthn-related errors
	ErrWebAuthnCredentialNotFound = NewBaseError(
		http.StatusNotFound,
		"WEBAUTHN_CREDENTIAL_NOT_FOUND",
		"找不到該認證器憑證",
		"",
	)

	ErrWebAuthnReplayDetected = NewBaseError(
		http.StatusForbidden,
		"WEBAUTHN_REPLAY_DETECTED",
		"偵測到認證器簽章計數器回退，憑證可能已被複製",
		"",
	)

	// Refresh token-related errors
	ErrRefreshTokenInvalid = NewBaseError(
		http.StatusUnauthorized,
		"REFRESH_TOKEN_INVALID",
		"無效或已過期的重新整理權杖",
		"",
	)

	ErrAccessTokenInvalid = NewBaseError(
		http.StatusUnauthorized,
		"ACCESS_TOKEN_INVALID",
		"無效或已過期的存取權杖",
		"",
	)

	// Caller (registered app) errors
	ErrInvalidAPIKey = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_API_KEY",
		"無效的 API 金鑰",
		"",
	)

	ErrRateLimitExceeded = NewBaseError(
		http.StatusTooManyRequests,
		"RATE_LIMIT_EXCEEDED",
		"請求次數超過限制，請稍後再試",
		"",
	)

	ErrAppAlreadyExists = NewBaseError(
		http.StatusConflict,
		"APP_ALREADY_EXISTS",
		"此應用程式名稱已被註冊",
		"",
	)

	ErrAppNotFound = NewBaseError(
		http.StatusNotFound,
		"APP_NOT_FOUND",
		"找不到該應用程式",
		"",
	)

	// Account-related errors
	ErrAccountNotFound = NewBaseError(
		http.StatusNotFound,
		"ACCOUNT_NOT_FOUND",
		"找不到該帳號",
		"",
	)

	ErrAccountAlreadyExists = NewBaseError(
		http.StatusConflict,
		"ACCOUNT_ALREADY_EXISTS",
		"此電子郵件已被註冊",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"輸入資料驗證失敗",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"系統內部錯誤",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"存取被拒絕",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"找不到該資源",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "資料庫執行失敗"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
