package api

import (
	"net/http"

	"authpages/internal/schema"

	"github.com/gin-gonic/gin"
)

// 错误码定义
const (
	ErrCodeInvalidRequest = "ERR_INVALID_REQUEST"
	ErrCodeUnauthorized   = "ERR_UNAUTHORIZED"
	ErrCodeInternalError  = "ERR_INTERNAL_ERROR"

	// 表单与认证错误码
	ErrCodeValidation     = "ERR_VALIDATION"
	ErrCodeAuthFailed     = "ERR_AUTH_FAILED"
	ErrCodeAuthBackend    = "ERR_AUTH_BACKEND"
	ErrCodeSessionExpired = "ERR_SESSION_EXPIRED"
)

// APIError 统一的 API 错误响应结构
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse 返回统一格式的错误响应
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
	})
}

// ErrorResponseWithDetails 返回带详情的错误响应
func ErrorResponseWithDetails(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// Unauthorized 401 未授权
func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// InternalError 500 服务器内部错误
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// InvalidPayload 无效的请求体
func InvalidPayload(c *gin.Context) {
	ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload")
}

// ValidationFailed 400 表单校验失败, details 为按字段排列的错误列表
func ValidationFailed(c *gin.Context, errs schema.Errors) {
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeValidation, "validation failed", []schema.FieldError(errs))
}
