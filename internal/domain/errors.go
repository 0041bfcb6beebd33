package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so errors built with
// WithError still satisfy errors.Is against the pre-defined sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrUnknownPerson = &AppError{
		Code:       "UNKNOWN_PERSON",
		Message:    "Person has never been seen",
		StatusCode: 404,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrInvalidConfig = &AppError{
		Code:       "INVALID_CONFIG",
		Message:    "Invalid configuration",
		StatusCode: 500,
	}

	// Recognition call failed or timed out; the poll cycle is treated as empty.
	ErrRecognitionUnavailable = &AppError{
		Code:       "RECOGNITION_UNAVAILABLE",
		Message:    "Face recognition service unavailable",
		StatusCode: 503,
	}

	// The attendance log is locked by another process.
	ErrStoreBusy = &AppError{
		Code:       "STORE_BUSY",
		Message:    "Attendance log is locked by another process",
		StatusCode: 503,
	}

	ErrStoreUnavailable = &AppError{
		Code:       "STORE_UNAVAILABLE",
		Message:    "Attendance log unavailable",
		StatusCode: 503,
	}

	// Camera unreadable; fatal to the capture loop.
	ErrCaptureFailure = &AppError{
		Code:       "CAPTURE_FAILURE",
		Message:    "Camera could not be read",
		StatusCode: 500,
	}
)
