package facecloud

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable     = errors.New("facecloud service unavailable")
	ErrUnauthorized    = errors.New("facecloud rejected the api key")
	ErrInvalidResponse = errors.New("invalid response from facecloud")
)

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("facecloud returned status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether retrying the same request can succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
