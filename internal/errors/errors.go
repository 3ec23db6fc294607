package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stringerc/syncscript-gateway/internal/logger"
	"github.com/stringerc/syncscript-gateway/internal/utils"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation_error"
	ErrorTypeAuthentication ErrorType = "authentication_error"
	ErrorTypeConfiguration  ErrorType = "configuration_error"
	ErrorTypeUpstream       ErrorType = "upstream_error"
	ErrorTypeTimeout        ErrorType = "timeout_error"
	ErrorTypeUnreachable    ErrorType = "unreachable_error"
	ErrorTypeInternal       ErrorType = "internal_error"
)

// Stable machine-readable codes; clients rely on these, never change them
const (
	CodeConfigError = "CONFIG_ERROR"
	CodeUpstream    = "UPSTREAM_ERROR"
	CodeTimeout     = "TIMEOUT"
	CodeUnreachable = "UNREACHABLE"
)

// APIError represents a structured API error
type APIError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// ErrorResponse represents the JSON error response format
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// NewAPIError creates a new APIError
func NewAPIError(errorType ErrorType, message string) *APIError {
	return &APIError{
		Type:    errorType,
		Message: message,
	}
}

// NewAPIErrorWithCode creates a new APIError with a stable code
func NewAPIErrorWithCode(errorType ErrorType, message, code string) *APIError {
	return &APIError{
		Type:    errorType,
		Message: message,
		Code:    code,
	}
}

// HandleError writes a standardized error response to the HTTP response writer
func HandleError(w http.ResponseWriter, err error, statusCode int) {
	w.Header().Set(utils.HeaderContentType, utils.ContentTypeJSON)
	w.WriteHeader(statusCode)

	var apiError *APIError
	if ae, ok := err.(*APIError); ok {
		apiError = ae
	} else {
		apiError = inferErrorType(err, statusCode)
	}

	response := ErrorResponse{
		Success: false,
		Error:   apiError.Message,
		Code:    apiError.Code,
	}

	if jsonBytes, jsonErr := json.Marshal(response); jsonErr == nil {
		w.Write(jsonBytes)
	} else {
		logger.Error("Error marshaling error response", "error", jsonErr)
		w.Write([]byte(`{"success":false,"error":"Internal server error"}`))
	}

	logger.Error("API Error",
		"status_code", statusCode,
		"error_type", string(apiError.Type),
		"error_code", apiError.Code,
		"message", apiError.Message,
	)
}

// inferErrorType attempts to infer the error type based on the status code
func inferErrorType(err error, statusCode int) *APIError {
	message := err.Error()

	switch statusCode {
	case http.StatusBadRequest:
		return NewAPIError(ErrorTypeValidation, message)
	case http.StatusUnauthorized:
		return NewAPIError(ErrorTypeAuthentication, message)
	case http.StatusBadGateway:
		return NewAPIErrorWithCode(ErrorTypeUpstream, message, CodeUpstream)
	case http.StatusGatewayTimeout:
		return NewAPIErrorWithCode(ErrorTypeTimeout, message, CodeTimeout)
	case http.StatusServiceUnavailable:
		return NewAPIErrorWithCode(ErrorTypeUnreachable, message, CodeUnreachable)
	default:
		return NewAPIError(ErrorTypeInternal, message)
	}
}

// Common error constructors for convenience

// NewValidationError creates a validation error
func NewValidationError(message string) *APIError {
	return NewAPIError(ErrorTypeValidation, message)
}

// NewMissingFieldError creates a validation error naming the missing field
func NewMissingFieldError(fieldName string) *APIError {
	return NewValidationError(fmt.Sprintf("Field '%s' is required", fieldName))
}

// NewAuthenticationError creates an authentication error. The message is
// always generic: callers must not leak whether the token was malformed,
// expired, or unknown.
func NewAuthenticationError() *APIError {
	return NewAPIError(ErrorTypeAuthentication, "Unauthorized")
}

// NewConfigurationError creates a configuration error with its stable code
func NewConfigurationError(message string) *APIError {
	return NewAPIErrorWithCode(ErrorTypeConfiguration, message, CodeConfigError)
}

// NewUpstreamError creates an upstream HTTP error carrying the upstream status
func NewUpstreamError(upstreamStatus int) *APIError {
	return NewAPIErrorWithCode(ErrorTypeUpstream,
		fmt.Sprintf("Upstream error (status %d)", upstreamStatus), CodeUpstream)
}

// NewTimeoutError creates an upstream timeout error
func NewTimeoutError(service string) *APIError {
	return NewAPIErrorWithCode(ErrorTypeTimeout,
		fmt.Sprintf("Request to %s timed out", service), CodeTimeout)
}

// NewUnreachableError creates an upstream unreachable error
func NewUnreachableError(service string) *APIError {
	return NewAPIErrorWithCode(ErrorTypeUnreachable,
		fmt.Sprintf("Service %s is unreachable", service), CodeUnreachable)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *APIError {
	return NewAPIError(ErrorTypeInternal, message)
}
