package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestServiceError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ServiceError
		want string
	}{
		{
			name: "error without underlying error",
			err:  New(ErrCodeInvalidInput, "test message", http.StatusBadRequest),
			want: "[ENGINE_INVALID_INPUT] test message",
		},
		{
			name: "error with underlying error",
			err:  Wrap(ErrCodeInternal, "test message", http.StatusInternalServerError, errors.New("underlying")),
			want: "[ENGINE_INTERNAL] test message: underlying",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServiceError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, "test", http.StatusInternalServerError, underlying)

	if got := err.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}
}

func TestServiceError_WithDetails(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test", http.StatusBadRequest)
	err.WithDetails("field", "title").WithDetails("reason", "empty")

	if len(err.Details) != 2 {
		t.Errorf("Details length = %d, want 2", len(err.Details))
	}
	if err.Details["field"] != "title" {
		t.Errorf("Details[field] = %v, want title", err.Details["field"])
	}
	if err.Details["reason"] != "empty" {
		t.Errorf("Details[reason] = %v, want empty", err.Details["reason"])
	}
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("probability", "out of [0,1]")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, http.StatusBadRequest)
	}
	if err.Details["field"] != "probability" {
		t.Errorf("Details[field] = %v, want probability", err.Details["field"])
	}
}

func TestValidationRejected(t *testing.T) {
	err := ValidationRejected("liquidity", "below minimum")

	if err.Code != ErrCodeValidationRejected {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeValidationRejected)
	}
	if err.Details["rule"] != "liquidity" {
		t.Errorf("Details[rule] = %v, want liquidity", err.Details["rule"])
	}
}

func TestSourceUnavailable(t *testing.T) {
	underlying := errors.New("connection refused")
	err := SourceUnavailable("polymarket", underlying)

	if err.Code != ErrCodeSourceUnavailable {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeSourceUnavailable)
	}
	if err.Err != underlying {
		t.Errorf("Err = %v, want %v", err.Err, underlying)
	}
}

func TestLedgerWriteFailed(t *testing.T) {
	underlying := errors.New("disk full")
	err := LedgerWriteFailed("hot/2026/07/31/1-abc.wal", underlying)

	if err.Code != ErrCodeLedgerWriteFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeLedgerWriteFailed)
	}
	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, http.StatusInternalServerError)
	}
}

func TestHotPathFailed(t *testing.T) {
	underlying := errors.New("timeout")
	err := HotPathFailed("OMEN-ABCDEF0123", 3, underlying)

	if err.Code != ErrCodeHotPathFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeHotPathFailed)
	}
	if err.Details["attempts"] != 3 {
		t.Errorf("Details[attempts] = %v, want 3", err.Details["attempts"])
	}
}

func TestPublishRejected(t *testing.T) {
	err := PublishRejected("OMEN-ABCDEF0123", http.StatusBadRequest, "malformed")

	if err.Code != ErrCodePublishRejected {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodePublishRejected)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, http.StatusBadRequest)
	}
}

func TestDuplicate(t *testing.T) {
	err := Duplicate("OMEN-ABCDEF0123", "ack-1")

	if err.Code != ErrCodeDuplicate {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeDuplicate)
	}
	if err.Details["ack_id"] != "ack-1" {
		t.Errorf("Details[ack_id] = %v, want ack-1", err.Details["ack_id"])
	}
}

func TestCircuitOpen(t *testing.T) {
	err := CircuitOpen("consumer-http")

	if err.Code != ErrCodeCircuitOpen {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeCircuitOpen)
	}
	if err.HTTPStatus != http.StatusServiceUnavailable {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, http.StatusServiceUnavailable)
	}
}

func TestInternal(t *testing.T) {
	underlying := errors.New("unexpected nil pointer")
	err := Internal("internal error", underlying)

	if err.Code != ErrCodeInternal {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInternal)
	}
	if err.Err != underlying {
		t.Errorf("Err = %v, want %v", err.Err, underlying)
	}
}

func TestIsServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "service error", err: New(ErrCodeInternal, "test", http.StatusInternalServerError), want: true},
		{name: "standard error", err: errors.New("standard error"), want: false},
		{name: "nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsServiceError(tt.err); got != tt.want {
				t.Errorf("IsServiceError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetServiceError(t *testing.T) {
	serviceErr := New(ErrCodeInternal, "test", http.StatusInternalServerError)
	standardErr := errors.New("standard error")

	tests := []struct {
		name string
		err  error
		want *ServiceError
	}{
		{name: "service error", err: serviceErr, want: serviceErr},
		{name: "standard error", err: standardErr, want: nil},
		{name: "nil error", err: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetServiceError(tt.err)
			if got != tt.want {
				t.Errorf("GetServiceError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "service error", err: New(ErrCodeDuplicate, "test", http.StatusConflict), want: http.StatusConflict},
		{name: "standard error", err: errors.New("standard error"), want: http.StatusInternalServerError},
		{name: "nil error", err: nil, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetHTTPStatus(tt.err); got != tt.want {
				t.Errorf("GetHTTPStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCode(t *testing.T) {
	if got := Code(New(ErrCodeLedgerWriteFailed, "x", http.StatusInternalServerError)); got != ErrCodeLedgerWriteFailed {
		t.Errorf("Code() = %v, want %v", got, ErrCodeLedgerWriteFailed)
	}
	if got := Code(errors.New("plain")); got != "" {
		t.Errorf("Code() = %v, want empty", got)
	}
}
