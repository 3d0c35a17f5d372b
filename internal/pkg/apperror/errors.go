package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest        ErrorCode = "BAD_REQUEST"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeRateLimited       ErrorCode = "RATE_LIMITED"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeStorage           ErrorCode = "STORAGE_ERROR"
	ErrCodeHTTP              ErrorCode = "HTTP_ERROR"
	ErrCodeTimeout           ErrorCode = "TIMEOUT"
	ErrCodeCanceled          ErrorCode = "CANCELED"
	ErrCodeRequestFailed     ErrorCode = "REQUEST_FAILED"
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
)

// AppError описывает единый нормализованный объект ошибки.
// HTTPStatus равен нулю, если сервер не вернул статус (таймаут, сеть).
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// FromStatus строит ошибку по ответу сервера с не-2xx статусом.
func FromStatus(status int, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return &AppError{
		Code:       statusToCode(status),
		Message:    message,
		HTTPStatus: status,
	}
}

// Timeout означает, что запрос превысил отведённое время и был прерван.
func Timeout(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeTimeout,
		Message: "время ожидания запроса истекло",
		Cause:   cause,
	}
}

// Malformed означает, что успешный по статусу ответ не прошёл разбор или проверку схемы.
func Malformed(cause error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedResponse,
		Message: message,
		Cause:   cause,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeTimeout, ErrCodeCanceled, ErrCodeRequestFailed, ErrCodeMalformedResponse:
		// Статус от сервера не получен.
		return 0
	default:
		return http.StatusInternalServerError
	}
}

func statusToCode(status int) ErrorCode {
	switch status {
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrCodeBadRequest
	case http.StatusTooManyRequests:
		return ErrCodeRateLimited
	default:
		return ErrCodeHTTP
	}
}

// Message возвращает человекочитаемое сообщение для показа пользователю.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Status возвращает HTTP статус ответа сервера или 0, если его не было.
func Status(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return 0
}

func hasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

func IsForbidden(err error) bool {
	return hasCode(err, ErrCodeForbidden)
}

func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

func IsUnauthorized(err error) bool {
	return hasCode(err, ErrCodeUnauthorized)
}

func IsTimeout(err error) bool {
	return hasCode(err, ErrCodeTimeout)
}

func IsMalformed(err error) bool {
	return hasCode(err, ErrCodeMalformedResponse)
}

func IsCanceled(err error) bool {
	return hasCode(err, ErrCodeCanceled)
}

// HasStatus сообщает, что ошибка пришла от сервера вместе с HTTP статусом.
func HasStatus(err error) bool {
	return Status(err) != 0
}

// IsNetworkClass сообщает, что сервер так и не ответил статусом.
func IsNetworkClass(err error) bool {
	return hasCode(err, ErrCodeTimeout) || hasCode(err, ErrCodeRequestFailed)
}

var (
	ErrProposalNotFound   = New(ErrCodeNotFound, "предложение не найдено")
	ErrUserNotFound       = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthorized       = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden          = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "неверные учетные данные")
	ErrNoAccessToken      = Malformed(nil, "сервер не вернул токен доступа")
)
