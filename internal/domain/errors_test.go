package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "error without wrapped error",
			appErr:   ErrStoreBusy,
			expected: "Attendance log is locked by another process",
		},
		{
			name: "error with wrapped error",
			appErr: &AppError{
				Code:       "TEST_ERROR",
				Message:    "Test message",
				StatusCode: 500,
				Err:        errors.New("underlying error"),
			},
			expected: "Test message: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	appErr := &AppError{
		Code:       "TEST",
		Message:    "test",
		StatusCode: 500,
		Err:        underlying,
	}

	if got := appErr.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}

	if got := ErrCaptureFailure.Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestAppError_WithError(t *testing.T) {
	underlying := errors.New("file is open in another program")
	newErr := ErrStoreBusy.WithError(underlying)

	if newErr.Code != ErrStoreBusy.Code {
		t.Errorf("Code = %v, want %v", newErr.Code, ErrStoreBusy.Code)
	}

	if newErr.Err != underlying {
		t.Errorf("Err = %v, want %v", newErr.Err, underlying)
	}

	if !errors.Is(newErr, underlying) {
		t.Errorf("errors.Is should return true for wrapped error")
	}

	if !errors.Is(newErr, ErrStoreBusy) {
		t.Errorf("errors.Is should match the sentinel by code")
	}

	if errors.Is(newErr, ErrRecognitionUnavailable) {
		t.Errorf("errors.Is should not match a different code")
	}
}

func TestErrorsIs_ThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("append entry: %w", ErrStoreBusy.WithError(errors.New("locked")))

	if !errors.Is(err, ErrStoreBusy) {
		t.Errorf("errors.Is should see through fmt.Errorf wrapping")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("errors.As should match AppError")
	}

	if appErr.Code != "STORE_BUSY" {
		t.Errorf("Code = %v, want STORE_BUSY", appErr.Code)
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err        *AppError
		code       string
		statusCode int
	}{
		{ErrInternal, "INTERNAL_ERROR", 500},
		{ErrNotFound, "NOT_FOUND", 404},
		{ErrUnknownPerson, "UNKNOWN_PERSON", 404},
		{ErrInvalidImage, "INVALID_IMAGE", 422},
		{ErrInvalidConfig, "INVALID_CONFIG", 500},
		{ErrRecognitionUnavailable, "RECOGNITION_UNAVAILABLE", 503},
		{ErrStoreBusy, "STORE_BUSY", 503},
		{ErrStoreUnavailable, "STORE_UNAVAILABLE", 503},
		{ErrCaptureFailure, "CAPTURE_FAILURE", 500},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %v, want %v", tt.err.StatusCode, tt.statusCode)
			}
		})
	}
}
