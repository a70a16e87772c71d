// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 资源错误 (3xxx)
	CodeNovelNotFound   ErrorCode = "3001"
	CodeChapterNotFound ErrorCode = "3002"
	CodeGenreNotFound   ErrorCode = "3003"
	CodeCoverNotFound   ErrorCode = "3004"

	// 业务错误 (4xxx)
	CodeGenerationFailed     ErrorCode = "4001"
	CodeValidationFailed     ErrorCode = "4002"
	CodeGenerationInProgress ErrorCode = "4003"
	CodeLLMCallFailed        ErrorCode = "4005"
	CodeResponseParseFailed  ErrorCode = "4007"

	// 外部服务错误 (5xxx)
	CodeDatabaseError    ErrorCode = "5001"
	CodeCacheError       ErrorCode = "5002"
	CodeLLMProviderError ErrorCode = "5005"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息（返回副本，预定义错误不会被污染）
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeNotFound, CodeNovelNotFound, CodeChapterNotFound, CodeGenreNotFound, CodeCoverNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeGenerationInProgress:
		return http.StatusConflict
	case CodeResponseParseFailed:
		return http.StatusUnprocessableEntity
	case CodeLLMProviderError, CodeLLMCallFailed:
		return http.StatusBadGateway
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrNovelNotFound   = New(CodeNovelNotFound, "novel not found")
	ErrChapterNotFound = New(CodeChapterNotFound, "chapter not found")
	ErrGenreNotFound   = New(CodeGenreNotFound, "genre not found")
	ErrCoverNotFound   = New(CodeCoverNotFound, "cover not found")

	ErrGenerationFailed     = New(CodeGenerationFailed, "generation failed")
	ErrGenerationInProgress = New(CodeGenerationInProgress, "generation already in progress")
	ErrResponseParseFailed  = New(CodeResponseParseFailed, "model response could not be parsed")
	ErrLLMProviderError     = New(CodeLLMProviderError, "LLM provider error")
)

// IsAppError 检查错误链中是否包含 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
