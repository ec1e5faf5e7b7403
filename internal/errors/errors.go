// Package errors provides the Engine's unified error taxonomy (spec §7):
// kinds, not exception types, each carrying an HTTP-status hint for the
// (out-of-scope) HTTP surface to translate if it chooses to.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code.
type ErrorCode string

const (
	// InvalidInput: malformed RawEvent, rejected at pipeline entry.
	ErrCodeInvalidInput ErrorCode = "ENGINE_INVALID_INPUT"
	// ValidationRejected: rule engine rejected the event; normal outcome.
	ErrCodeValidationRejected ErrorCode = "ENGINE_VALIDATION_REJECTED"
	// SourceUnavailable: upstream source fetch failed.
	ErrCodeSourceUnavailable ErrorCode = "ENGINE_SOURCE_UNAVAILABLE"
	// LedgerWriteFailed: ledger append errored; fatal for this signal's emit.
	ErrCodeLedgerWriteFailed ErrorCode = "ENGINE_LEDGER_WRITE_FAILED"
	// HotPathFailed: publish retries exhausted or circuit open.
	ErrCodeHotPathFailed ErrorCode = "ENGINE_HOT_PATH_FAILED"
	// PublishRejected: consumer returned 4xx other than 409.
	ErrCodePublishRejected ErrorCode = "ENGINE_PUBLISH_REJECTED"
	// Duplicate: consumer already holds this signal_id; treated as success.
	ErrCodeDuplicate ErrorCode = "ENGINE_DUPLICATE"
	// CircuitOpen: a circuit breaker is refusing calls.
	ErrCodeCircuitOpen ErrorCode = "ENGINE_CIRCUIT_OPEN"
	// Internal: unexpected internal failure.
	ErrCodeInternal ErrorCode = "ENGINE_INTERNAL"
)

// ServiceError is a structured error with a code, message, and HTTP status.
type ServiceError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Err        error                  `json:"-"`
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// WithDetails adds additional details to the error.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new ServiceError.
func New(code ErrorCode, message string, httpStatus int) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// Wrap wraps an existing error with a ServiceError.
func Wrap(code ErrorCode, message string, httpStatus int, err error) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// InvalidInput reports a malformed RawEvent rejected at pipeline entry.
func InvalidInput(field, reason string) *ServiceError {
	return New(ErrCodeInvalidInput, "invalid input", http.StatusBadRequest).
		WithDetails("field", field).
		WithDetails("reason", reason)
}

// ValidationRejected reports a rule-engine rejection. Not an error to the
// caller — a normal pipeline outcome recorded for observability.
func ValidationRejected(rule, reason string) *ServiceError {
	return New(ErrCodeValidationRejected, "validation rejected", http.StatusOK).
		WithDetails("rule", rule).
		WithDetails("reason", reason)
}

// SourceUnavailable reports an upstream source fetch failure.
func SourceUnavailable(source string, err error) *ServiceError {
	return Wrap(ErrCodeSourceUnavailable, "source unavailable", http.StatusBadGateway, err).
		WithDetails("source", source)
}

// LedgerWriteFailed reports a failed WAL append. Fatal for this signal's
// emit; the caller may resubmit the same event because processing is
// idempotent.
func LedgerWriteFailed(partition string, err error) *ServiceError {
	return Wrap(ErrCodeLedgerWriteFailed, "ledger write failed", http.StatusInternalServerError, err).
		WithDetails("partition", partition)
}

// HotPathFailed reports exhausted publish retries or an open circuit.
// Non-fatal: the ledger append already succeeded and reconciliation will
// catch up this signal.
func HotPathFailed(signalID string, attempts int, err error) *ServiceError {
	return Wrap(ErrCodeHotPathFailed, "hot path delivery failed", http.StatusBadGateway, err).
		WithDetails("signal_id", signalID).
		WithDetails("attempts", attempts)
}

// PublishRejected reports a non-409 4xx from the consumer.
func PublishRejected(signalID string, status int, detail string) *ServiceError {
	return New(ErrCodePublishRejected, "publish rejected", status).
		WithDetails("signal_id", signalID).
		WithDetails("detail", detail)
}

// Duplicate reports a 409 duplicate response from the consumer.
func Duplicate(signalID, ackID string) *ServiceError {
	return New(ErrCodeDuplicate, "duplicate signal", http.StatusConflict).
		WithDetails("signal_id", signalID).
		WithDetails("ack_id", ackID)
}

// CircuitOpen reports a fail-fast rejection by a circuit breaker.
func CircuitOpen(breaker string) *ServiceError {
	return New(ErrCodeCircuitOpen, "circuit open", http.StatusServiceUnavailable).
		WithDetails("breaker", breaker)
}

// Internal wraps an unexpected internal failure.
func Internal(message string, err error) *ServiceError {
	return Wrap(ErrCodeInternal, message, http.StatusInternalServerError, err)
}

// IsServiceError reports whether err is (or wraps) a ServiceError.
func IsServiceError(err error) bool {
	var serviceErr *ServiceError
	return errors.As(err, &serviceErr)
}

// GetServiceError extracts a ServiceError from an error chain.
func GetServiceError(err error) *ServiceError {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}
	return nil
}

// GetHTTPStatus returns the HTTP status code associated with err.
func GetHTTPStatus(err error) int {
	if serviceErr := GetServiceError(err); serviceErr != nil {
		return serviceErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Code returns the ErrorCode of err, or "" if err is not a ServiceError.
func Code(err error) ErrorCode {
	if serviceErr := GetServiceError(err); serviceErr != nil {
		return serviceErr.Code
	}
	return ""
}
