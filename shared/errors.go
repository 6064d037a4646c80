package shared

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorCategory represents different types of errors that can occur in the
// scraping pipeline.
type ErrorCategory string

const (
	ErrorCategoryConfiguration ErrorCategory = "configuration"
	ErrorCategoryNetwork       ErrorCategory = "network"
	ErrorCategoryDatabase      ErrorCategory = "database"
	ErrorCategoryValidation    ErrorCategory = "validation"
	ErrorCategoryExtraction    ErrorCategory = "extraction"
	ErrorCategoryTimeout       ErrorCategory = "timeout"
)

// ServiceError is a standardized error with pipeline context. Retryable
// errors are eligible for scheduler-driven job retries; the rest surface as
// input or content errors.
type ServiceError struct {
	Category    ErrorCategory `json:"category"`
	Code        string        `json:"code"`
	Message     string        `json:"message"`
	ServiceName string        `json:"service_name"`
	Operation   string        `json:"operation"`
	Retryable   bool          `json:"retryable"`
	Timestamp   time.Time     `json:"timestamp"`
	Cause       error         `json:"-"` // Original error, not serialized
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error is retryable.
func (e *ServiceError) IsRetryable() bool {
	return e.Retryable
}

// NewServiceError creates a new service error.
func NewServiceError(category ErrorCategory, code, message, serviceName, operation string, retryable bool, cause error) *ServiceError {
	return &ServiceError{
		Category:    category,
		Code:        code,
		Message:     message,
		ServiceName: serviceName,
		Operation:   operation,
		Retryable:   retryable,
		Timestamp:   time.Now(),
		Cause:       cause,
	}
}

// NewInputError reports a problem rejected before any network or database IO,
// such as a malformed URL or a missing selector configuration.
func NewInputError(code, message, serviceName, operation string) *ServiceError {
	return NewServiceError(ErrorCategoryConfiguration, code, message, serviceName, operation, false, nil)
}

// NewTransientNetworkError reports a retryable network failure.
func NewTransientNetworkError(code, message, serviceName, operation string, cause error) *ServiceError {
	return NewServiceError(ErrorCategoryNetwork, code, message, serviceName, operation, true, cause)
}

// LogError logs the error with structured fields.
func (e *ServiceError) LogError() {
	logrus.WithFields(logrus.Fields{
		"error_category":   e.Category,
		"error_code":       e.Code,
		"error_message":    e.Message,
		"service_name":     e.ServiceName,
		"operation":        e.Operation,
		"retryable":        e.Retryable,
		"underlying_error": e.Cause,
	}).Error("Service error occurred")
}
