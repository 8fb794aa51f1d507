package models

import (
	"fmt"
	"net/http"
	"time"

	"coindash-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Validation errors
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeEmptyEndpoints ErrorCode = "EMPTY_ENDPOINTS"
	ErrorCodeInvalidCoinID  ErrorCode = "INVALID_COIN_ID"
	ErrorCodeMalformedJSON  ErrorCode = "MALFORMED_JSON"

	// Rate limiting errors
	ErrorCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Upstream errors
	ErrorCodeUpstreamError   ErrorCode = "UPSTREAM_ERROR"
	ErrorCodeUpstreamTimeout ErrorCode = "UPSTREAM_TIMEOUT"
	ErrorCodeAllEndpointsFailed ErrorCode = "ALL_ENDPOINTS_FAILED"

	// Policy errors
	ErrorCodePolicyDenied ErrorCode = "POLICY_DENIED"

	// Internal errors
	ErrorCodeCacheError    ErrorCode = "CACHE_ERROR"
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// HTTPStatusCode returns the appropriate HTTP status code for each error type
func (e ErrorCode) HTTPStatusCode() int {
	switch e {
	case ErrorCodeInvalidRequest, ErrorCodeEmptyEndpoints, ErrorCodeInvalidCoinID, ErrorCodeMalformedJSON:
		return http.StatusBadRequest
	case ErrorCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrorCodeUpstreamError, ErrorCodeUpstreamTimeout, ErrorCodeAllEndpointsFailed:
		return http.StatusBadGateway
	case ErrorCodePolicyDenied:
		return http.StatusForbidden
	case ErrorCodeCacheError, ErrorCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// ErrorResponse represents the standardized error response format
type ErrorResponse struct {
	Error         ErrorDetail `json:"error"`
	Timestamp     time.Time   `json:"timestamp"`
	CorrelationID string      `json:"correlation_id,omitempty"`
}

// AppError represents an application error with context
type AppError struct {
	Code       ErrorCode
	Message    string
	Details    string
	Cause      error
	Context    map[string]interface{}
	StatusCode int
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: code.HTTPStatusCode(),
		Context:    make(map[string]interface{}),
	}
}

// NewAppErrorWithCause creates a new application error with underlying cause
func NewAppErrorWithCause(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Cause:      cause,
		StatusCode: code.HTTPStatusCode(),
		Context:    make(map[string]interface{}),
	}
}

// NewAppErrorWithDetails creates a new application error with details
func NewAppErrorWithDetails(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StatusCode: code.HTTPStatusCode(),
		Context:    make(map[string]interface{}),
	}
}

// HandleError logs an application error and sends the standardized HTTP response
func HandleError(c *gin.Context, err error, log *logger.Logger) {
	var appErr *AppError
	if appError, ok := err.(*AppError); ok {
		appErr = appError
	} else {
		appErr = NewAppErrorWithCause(ErrorCodeInternalError, "Internal server error", err)
	}

	appErr.WithContext("method", c.Request.Method).
		WithContext("path", c.Request.URL.Path).
		WithContext("client_ip", c.ClientIP())

	logFields := []zap.Field{
		zap.String("error_code", string(appErr.Code)),
		zap.String("error_message", appErr.Message),
		zap.Any("error_context", appErr.Context),
	}
	if appErr.Cause != nil {
		logFields = append(logFields, zap.Error(appErr.Cause))
	}

	if appErr.StatusCode >= 500 {
		log.Error("Application error", logFields...)
	} else {
		log.Warn("Application error", logFields...)
	}

	response := &ErrorResponse{
		Error: ErrorDetail{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
		Timestamp:     time.Now().UTC(),
		CorrelationID: logger.GetCorrelationIDFromContext(c.Request.Context()),
	}

	c.JSON(appErr.StatusCode, response)
}
