// Package errors provides standardized error handling for the job workers and HTTP functions.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeAuthentication     ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeResourceNotFound   ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeBusinessRule       ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeActiveOrdersExist  ErrorCode = "ACTIVE_ORDERS_EXIST"
	ErrCodeInvalidTransition  ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeInvalidTrigger     ErrorCode = "INVALID_TRIGGER_CONDITION"
	ErrCodeTemplateNotFound   ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateValidation ErrorCode = "TEMPLATE_VALIDATION_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeExternalService        ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout                ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error's metadata and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewValidationError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Invalid request", details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Unauthorized", details, false)
}

// NewForbiddenError rejects an authenticated caller that lacks the role an operation needs.
func NewForbiddenError(details string) *StandardError {
	return newError(ErrCodeForbidden, "Forbidden", details, false)
}

func NewResourceNotFoundError(resource, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("%s not found", resource), details, false)
}

func NewBusinessRuleError(message, details string) *StandardError {
	return newError(ErrCodeBusinessRule, message, details, false)
}

// NewActiveOrdersError blocks account deletion while the user still has open orders.
func NewActiveOrdersError(count int) *StandardError {
	return newError(ErrCodeActiveOrdersExist,
		"Cannot delete account with active orders. Please complete or cancel them first.",
		fmt.Sprintf("activeOrders: %d", count), false).
		WithMetadata("activeOrders", count)
}

func NewInvalidTransitionError(from, to string) *StandardError {
	return newError(ErrCodeInvalidTransition, "Invalid order status transition",
		fmt.Sprintf("from: %s, to: %s", from, to), false)
}

func NewInvalidTriggerError(triggerType, details string) *StandardError {
	return newError(ErrCodeInvalidTrigger, "Invalid trigger condition",
		fmt.Sprintf("triggerType: %s, %s", triggerType, details), false)
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(notificationType, channel string) *StandardError {
	return newError(ErrCodeTemplateNotFound, "Template not found or inactive",
		fmt.Sprintf("type: %s, channel: %s", notificationType, channel), false)
}

func NewTemplateValidationError(details string) *StandardError {
	return newError(ErrCodeTemplateValidation, "Template uses unknown tokens", details, false)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), true)
}

// NewNotificationSendFailedError is recorded against a single delivery attempt. Delivery is never
// retried automatically, so it is not retryable.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:         "VALIDATION_FAILED",
	ErrCodeResourceNotFound:         "RESOURCE_NOT_FOUND",
	ErrCodeBusinessRule:             "BUSINESS_RULE_VIOLATION",
	ErrCodeActiveOrdersExist:        "ACTIVE_ORDERS_EXIST",
	ErrCodeInvalidTransition:        "INVALID_STATUS_TRANSITION",
	ErrCodeInvalidTrigger:           "INVALID_TRIGGER_CONDITION",
	ErrCodeTemplateNotFound:         "TEMPLATE_NOT_FOUND",
	ErrCodeTemplateValidation:       "TEMPLATE_VALIDATION_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeDatabaseInsertFailed:     "DATABASE_INSERT_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the retry count for a code. Only technical failures are retried by the
// engine; business outcomes and delivery failures are final.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeExternalService:
		return 3
	case ErrCodeTimeout:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// HTTPStatus maps an error code to the status returned by the HTTP functions.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeAuthentication:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeValidationFailed,
		ErrCodeResourceNotFound,
		ErrCodeBusinessRule,
		ErrCodeActiveOrdersExist,
		ErrCodeInvalidTransition,
		ErrCodeInvalidTrigger,
		ErrCodeTemplateNotFound,
		ErrCodeTemplateValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// AsStandardError unwraps err into a StandardError, wrapping unknown errors as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "AUTH") || code == ErrCodeForbidden:
		return "AUTH"
	case strings.Contains(codeStr, "TEMPLATE"):
		return "TEMPLATE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "ORDER") || strings.Contains(codeStr, "TRANSITION"):
		return "ORDER"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "TIMEOUT"):
		return "EXTERNAL"
	default:
		return "UNKNOWN"
	}
}
