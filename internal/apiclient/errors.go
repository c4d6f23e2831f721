package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// FallbackMessage is shown when the API gives nothing better.
const FallbackMessage = "Something went wrong. Please try again."

var (
	ErrUnauthorized = errors.New("apiclient: unauthorized")
	ErrNotFound     = errors.New("apiclient: not found")
)

// APIError is a failed round trip. StatusCode is 0 when no response arrived.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("api: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// UserMessage returns text suitable for a toast.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *APIError
	if errors.As(err, &ae) && ae.StatusCode >= 400 && ae.StatusCode < 500 && ae.Message != "" {
		return ae.Message
	}
	return FallbackMessage
}

// FieldErrors returns server-side form errors, if the API reported any.
func FieldErrors(err error) map[string]string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Fields
	}
	return nil
}
